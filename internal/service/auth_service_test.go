package service

import (
	"context"
	"sync"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/slidemaker/pkg/api"
	"github.com/mmynk/slidemaker/pkg/api/apiconnect"
)

func TestRegister(t *testing.T) {
	ts := setupTestServer(t)

	resp, err := call[api.RegisterRequest, api.AuthResponse](t, ts, "", apiconnect.AuthServiceRegisterProcedure, &api.RegisterRequest{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           "ada@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
		RememberDevice:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, "#AD0001", resp.User.UserID)
	assert.Equal(t, "Ada Lovelace", resp.User.FullName)
	assert.Equal(t, "#AD0001", resp.User.QRCodeData)
	assert.NotEmpty(t, resp.Token)
	assert.Regexp(t, `^DEV\d+[0-9a-z]{16}$`, resp.DeviceToken)

	current, err := call[api.Empty, api.CurrentUserResponse](t, ts, resp.Token, apiconnect.AuthServiceGetCurrentUserProcedure, &api.Empty{})
	require.NoError(t, err)
	require.NotNil(t, current.User)
	assert.Equal(t, "ada@example.com", current.User.Email)
	assert.False(t, current.Guest)

	anonymous, err := call[api.Empty, api.CurrentUserResponse](t, ts, "", apiconnect.AuthServiceGetCurrentUserProcedure, &api.Empty{})
	require.NoError(t, err)
	assert.Nil(t, anonymous.User)
	assert.False(t, anonymous.Guest)

	recent, err := call[api.Empty, api.RecentUsersResponse](t, ts, "", apiconnect.AuthServiceListRecentUsersProcedure, &api.Empty{})
	require.NoError(t, err)
	require.Len(t, recent.Users, 1)
	assert.Equal(t, "Ada", recent.Users[0].FirstName)
}

func TestRegisterValidation(t *testing.T) {
	ts := setupTestServer(t)
	ts.register(t, "Ada", "ada@example.com")

	tests := []struct {
		name string
		req  api.RegisterRequest
		want connect.Code
	}{
		{
			name: "missing fields",
			req:  api.RegisterRequest{Email: "x@example.com", Password: "password123", ConfirmPassword: "password123"},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "mismatched passwords",
			req:  api.RegisterRequest{FirstName: "A", LastName: "B", Email: "x@example.com", Password: "password123", ConfirmPassword: "password124"},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "short password",
			req:  api.RegisterRequest{FirstName: "A", LastName: "B", Email: "x@example.com", Password: "short", ConfirmPassword: "short"},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "duplicate email",
			req:  api.RegisterRequest{FirstName: "A", LastName: "B", Email: "ada@example.com", Password: "password123", ConfirmPassword: "password123"},
			want: connect.CodeAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := call[api.RegisterRequest, api.AuthResponse](t, ts, "", apiconnect.AuthServiceRegisterProcedure, &tt.req)
			requireCode(t, tt.want, err)
		})
	}
}

func TestLogin(t *testing.T) {
	ts := setupTestServer(t)
	ts.register(t, "Ada", "ada@example.com")

	_, err := call[api.LoginRequest, api.AuthResponse](t, ts, "", apiconnect.AuthServiceLoginProcedure, &api.LoginRequest{
		Email: "ada@example.com", Password: "wrong-password",
	})
	requireCode(t, connect.CodeUnauthenticated, err)

	_, err = call[api.LoginRequest, api.AuthResponse](t, ts, "", apiconnect.AuthServiceLoginProcedure, &api.LoginRequest{
		Email: "ADA@example.com", Password: "password123",
	})
	requireCode(t, connect.CodeUnauthenticated, err)

	resp, err := call[api.LoginRequest, api.AuthResponse](t, ts, "", apiconnect.AuthServiceLoginProcedure, &api.LoginRequest{
		Email: "ada@example.com", Password: "password123", RememberDevice: true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.DeviceToken)

	device, err := call[api.DeviceLoginRequest, api.AuthResponse](t, ts, "", apiconnect.AuthServiceLoginWithDeviceProcedure, &api.DeviceLoginRequest{
		DeviceToken: resp.DeviceToken,
	})
	require.NoError(t, err)
	assert.Equal(t, resp.User.UserID, device.User.UserID)

	_, err = call[api.DeviceLoginRequest, api.AuthResponse](t, ts, "", apiconnect.AuthServiceLoginWithDeviceProcedure, &api.DeviceLoginRequest{
		DeviceToken: "DEV0bogus",
	})
	requireCode(t, connect.CodeUnauthenticated, err)
}

func TestLoginWithDevice_RequiresClientToken(t *testing.T) {
	ts := setupTestServer(t)

	resp, err := call[api.RegisterRequest, api.AuthResponse](t, ts, "", apiconnect.AuthServiceRegisterProcedure, &api.RegisterRequest{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           "ada@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
		RememberDevice:  true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.DeviceToken)
	createGroup(t, ts, resp.Token, "Secret")

	for _, token := range []string{"", "   "} {
		_, err := call[api.DeviceLoginRequest, api.AuthResponse](t, ts, "", apiconnect.AuthServiceLoginWithDeviceProcedure, &api.DeviceLoginRequest{
			DeviceToken: token,
		})
		requireCode(t, connect.CodeUnauthenticated, err)
	}

	current, err := call[api.Empty, api.CurrentUserResponse](t, ts, "", apiconnect.AuthServiceGetCurrentUserProcedure, &api.Empty{})
	require.NoError(t, err)
	assert.Nil(t, current.User)

	_, err = call[api.ListGroupsRequest, api.ListGroupsResponse](t, ts, "", apiconnect.GroupServiceListGroupsProcedure, &api.ListGroupsRequest{})
	requireCode(t, connect.CodeUnauthenticated, err)
}

func TestRegister_ConcurrentSameEmail(t *testing.T) {
	ts := setupTestServer(t)

	const workers = 6
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = call[api.RegisterRequest, api.AuthResponse](t, ts, "", apiconnect.AuthServiceRegisterProcedure, &api.RegisterRequest{
				FirstName:       "Same",
				LastName:        "Person",
				Email:           "same@example.com",
				Password:        "password123",
				ConfirmPassword: "password123",
			})
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.Equal(t, connect.CodeAlreadyExists, connect.CodeOf(err))
	}
	assert.Equal(t, 1, created)

	users, err := ts.store.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestGuestAndLogout(t *testing.T) {
	ts := setupTestServer(t)
	ts.register(t, "Ada", "ada@example.com")

	guest, err := call[api.Empty, api.CurrentUserResponse](t, ts, "", apiconnect.AuthServiceContinueAsGuestProcedure, &api.Empty{})
	require.NoError(t, err)
	assert.True(t, guest.Guest)

	current, err := call[api.Empty, api.CurrentUserResponse](t, ts, "", apiconnect.AuthServiceGetCurrentUserProcedure, &api.Empty{})
	require.NoError(t, err)
	assert.Nil(t, current.User)
	assert.True(t, current.Guest)

	_, err = call[api.Empty, api.Empty](t, ts, "", apiconnect.AuthServiceLogoutProcedure, &api.Empty{})
	require.NoError(t, err)

	current, err = call[api.Empty, api.CurrentUserResponse](t, ts, "", apiconnect.AuthServiceGetCurrentUserProcedure, &api.Empty{})
	require.NoError(t, err)
	assert.Nil(t, current.User)
	assert.False(t, current.Guest)
}

func TestForgetRecentUser(t *testing.T) {
	ts := setupTestServer(t)
	ts.register(t, "Ada", "ada@example.com")
	ts.register(t, "Bo", "bo@example.com")

	resp, err := call[api.ForgetRecentUserRequest, api.RecentUsersResponse](t, ts, "", apiconnect.AuthServiceForgetRecentUserProcedure, &api.ForgetRecentUserRequest{
		Email: "bo@example.com",
	})
	require.NoError(t, err)
	require.Len(t, resp.Users, 1)
	assert.Equal(t, "ada@example.com", resp.Users[0].Email)
}

func TestResetPassword(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "Ada", "ada@example.com")

	_, err := call[api.ResetPasswordRequest, api.Empty](t, ts, "", apiconnect.AuthServiceResetPasswordProcedure, &api.ResetPasswordRequest{
		CurrentPassword: "password123", NewPassword: "password456",
	})
	requireCode(t, connect.CodeUnauthenticated, err)

	_, err = call[api.ResetPasswordRequest, api.Empty](t, ts, token, apiconnect.AuthServiceResetPasswordProcedure, &api.ResetPasswordRequest{
		CurrentPassword: "nope-nope", NewPassword: "password456",
	})
	requireCode(t, connect.CodeUnauthenticated, err)

	_, err = call[api.ResetPasswordRequest, api.Empty](t, ts, token, apiconnect.AuthServiceResetPasswordProcedure, &api.ResetPasswordRequest{
		CurrentPassword: "password123", NewPassword: "password456",
	})
	require.NoError(t, err)

	_, err = call[api.LoginRequest, api.AuthResponse](t, ts, "", apiconnect.AuthServiceLoginProcedure, &api.LoginRequest{
		Email: "ada@example.com", Password: "password456",
	})
	require.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	ts := setupTestServer(t)
	ts.register(t, "Bo", "bo@example.com")
	token, _ := ts.register(t, "Ada", "ada@example.com")

	taken := "bo@example.com"
	_, err := call[api.UpdateProfileRequest, api.UserResponse](t, ts, token, apiconnect.AuthServiceUpdateProfileProcedure, &api.UpdateProfileRequest{
		Email: &taken,
	})
	requireCode(t, connect.CodeAlreadyExists, err)

	name := "Ada King"
	resp, err := call[api.UpdateProfileRequest, api.UserResponse](t, ts, token, apiconnect.AuthServiceUpdateProfileProcedure, &api.UpdateProfileRequest{
		FullName: &name,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada King", resp.User.FullName)
	assert.Equal(t, "ada@example.com", resp.User.Email)

	current, err := call[api.Empty, api.CurrentUserResponse](t, ts, token, apiconnect.AuthServiceGetCurrentUserProcedure, &api.Empty{})
	require.NoError(t, err)
	require.NotNil(t, current.User)
	assert.Equal(t, "Ada King", current.User.FullName)
}
