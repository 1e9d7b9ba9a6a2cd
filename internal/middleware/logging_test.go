package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/slidemaker/internal/auth"
	"github.com/mmynk/slidemaker/internal/models"
)

func TestLoggingInterceptor(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	client := serve(t, RequireAuth(jwtManager), LoggingInterceptor(logger))
	ctx := context.Background()

	token, err := jwtManager.Generate(&models.User{ID: "#AD0001", Email: "ada@example.com"})
	require.NoError(t, err)
	require.NoError(t, search(ctx, client, token))

	out := buf.String()
	assert.Contains(t, out, `msg="RPC ok"`)
	assert.Contains(t, out, "procedure=/slidemaker.v1.SearchService/Search")
	assert.Contains(t, out, "user_id=#AD0001")
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr error
	}{
		{"", "", auth.ErrMissingToken},
		{"Bearer abc", "abc", nil},
		{"bearer abc", "abc", nil},
		{"Basic abc", "", auth.ErrInvalidToken},
		{"Bearer", "", auth.ErrInvalidToken},
		{"Bearer  ", "", auth.ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := bearerToken(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
