package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/slidemaker/internal/auth"
	"github.com/mmynk/slidemaker/internal/ids"
	"github.com/mmynk/slidemaker/internal/storage/memory"
	"github.com/mmynk/slidemaker/internal/storage/sqlite"
	"github.com/mmynk/slidemaker/internal/storage/tables"
	"github.com/mmynk/slidemaker/pkg/api"
	"github.com/mmynk/slidemaker/pkg/api/apiconnect"
)

type testServer struct {
	client    *apiconnect.Client
	store     *tables.Store
	kv        *sqlite.SQLiteStore
	sessionKV *memory.Store
}

// setupTestServer serves every RPC over a temp SQLite database.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	kv, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	gen := ids.New()
	store := tables.New(kv, gen)
	sessionKV := memory.New()
	services := NewServices(Deps{
		Store:     store,
		KV:        kv,
		SessionKV: sessionKV,
		IDs:       gen,
		Accounts:  auth.NewPasswordAuthenticator(store, gen, auth.WithCost(bcrypt.MinCost)),
		JWT:       auth.NewJWTManager("test-secret", time.Hour),
	})

	mux := http.NewServeMux()
	services.Mount(mux, nil)
	server := httptest.NewServer(mux)

	t.Cleanup(func() {
		server.Close()
		_ = kv.Close()
	})

	return &testServer{
		client:    apiconnect.NewClient(http.DefaultClient, server.URL),
		store:     store,
		kv:        kv,
		sessionKV: sessionKV,
	}
}

// call invokes procedure, authenticated when token is set.
func call[Req, Res any](t *testing.T, ts *testServer, token, procedure string, msg *Req) (*Res, error) {
	t.Helper()
	req := connect.NewRequest(msg)
	if token != "" {
		req.Header().Set("Authorization", "Bearer "+token)
	}
	resp, err := apiconnect.Invoke[Req, Res](context.Background(), ts.client, procedure, req)
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// register signs up a user and returns the session token and user ID.
func (ts *testServer) register(t *testing.T, first, email string) (string, string) {
	t.Helper()
	resp, err := call[api.RegisterRequest, api.AuthResponse](t, ts, "", apiconnect.AuthServiceRegisterProcedure, &api.RegisterRequest{
		FirstName:       first,
		LastName:        "Tester",
		Email:           email,
		Password:        "password123",
		ConfirmPassword: "password123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.User.UserID
}

func requireCode(t *testing.T, want connect.Code, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want, connect.CodeOf(err), "error: %v", err)
}
