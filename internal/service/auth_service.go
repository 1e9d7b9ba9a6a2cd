package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/slidemaker/internal/auth"
	"github.com/mmynk/slidemaker/internal/middleware"
	"github.com/mmynk/slidemaker/internal/models"
	"github.com/mmynk/slidemaker/internal/recents"
	"github.com/mmynk/slidemaker/internal/session"
	"github.com/mmynk/slidemaker/pkg/api"
)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	accounts    auth.AccountManager
	users       auth.UserStorage
	jwtManager  *auth.JWTManager
	device      *session.Device
	recentUsers *recents.RecentUsers
	logger      *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	accounts auth.AccountManager,
	users auth.UserStorage,
	jwtManager *auth.JWTManager,
	device *session.Device,
	recentUsers *recents.RecentUsers,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		accounts:    accounts,
		users:       users,
		jwtManager:  jwtManager,
		device:      device,
		recentUsers: recentUsers,
		logger:      logger,
	}
}

// Register creates a new user account and signs it in.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.AuthResponse], error) {
	s.logger.Info("Register request", "email", req.Msg.Email)

	user, err := s.accounts.Signup(ctx, auth.Signup{
		FirstName:       req.Msg.FirstName,
		LastName:        req.Msg.LastName,
		Email:           req.Msg.Email,
		Password:        req.Msg.Password,
		ConfirmPassword: req.Msg.ConfirmPassword,
	})
	if err != nil {
		s.logger.Warn("Registration failed", "email", req.Msg.Email, "error", err)
		return nil, toConnectError(err)
	}

	resp, err := s.signIn(ctx, user, req.Msg.RememberDevice)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User registered successfully", "user_id", user.ID, "email", user.Email)
	return resp, nil
}

// Login authenticates a user and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.AuthResponse], error) {
	s.logger.Info("Login request", "email", req.Msg.Email)

	if req.Msg.Email == "" || req.Msg.Password == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrMissingFields)
	}

	user, err := s.accounts.Authenticate(ctx, req.Msg.Email, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "email", req.Msg.Email, "error", err)
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
	}

	resp, err := s.signIn(ctx, user, req.Msg.RememberDevice)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User logged in successfully", "user_id", user.ID, "email", user.Email)
	return resp, nil
}

// LoginWithDevice signs in the user the caller's remembered device token
// belongs to. The token is only ever held by the client it was issued to.
func (s *AuthService) LoginWithDevice(ctx context.Context, req *connect.Request[api.DeviceLoginRequest]) (*connect.Response[api.AuthResponse], error) {
	token := strings.TrimSpace(req.Msg.DeviceToken)
	if token == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	user, err := s.accounts.AuthenticateDevice(ctx, token)
	if err != nil {
		s.logger.Warn("Device login failed", "error", err)
		return nil, toConnectError(err)
	}

	resp, err := s.signIn(ctx, user, false)
	if err != nil {
		return nil, err
	}
	resp.Msg.DeviceToken = user.DeviceToken
	s.logger.Info("User logged in with device token", "user_id", user.ID)
	return resp, nil
}

// ContinueAsGuest signs out any user and enters guest mode.
func (s *AuthService) ContinueAsGuest(ctx context.Context, _ *connect.Request[api.Empty]) (*connect.Response[api.CurrentUserResponse], error) {
	if err := s.device.ContinueAsGuest(ctx); err != nil {
		return nil, toConnectError(err)
	}
	s.logger.Info("Continuing as guest")
	return connect.NewResponse(&api.CurrentUserResponse{Guest: true}), nil
}

// Logout clears the device session. Issued JWTs stay valid until they expire.
func (s *AuthService) Logout(ctx context.Context, _ *connect.Request[api.Empty]) (*connect.Response[api.Empty], error) {
	if err := s.device.SignOut(ctx); err != nil {
		return nil, toConnectError(err)
	}
	s.logger.Info("Logout request", "user_id", middleware.GetUserID(ctx))
	return connect.NewResponse(&api.Empty{}), nil
}

// GetCurrentUser returns the user the session token belongs to. Callers
// without a token get no user and the device's guest flag.
func (s *AuthService) GetCurrentUser(ctx context.Context, _ *connect.Request[api.Empty]) (*connect.Response[api.CurrentUserResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		guest, err := s.device.IsGuest(ctx)
		if err != nil {
			return nil, toConnectError(err)
		}
		return connect.NewResponse(&api.CurrentUserResponse{Guest: guest}), nil
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if user == nil {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrUserNotFound)
	}
	return connect.NewResponse(&api.CurrentUserResponse{User: api.NewUser(user)}), nil
}

// ListRecentUsers returns the quick-login list, most recent first.
func (s *AuthService) ListRecentUsers(ctx context.Context, _ *connect.Request[api.Empty]) (*connect.Response[api.RecentUsersResponse], error) {
	users, err := s.recentUsers.List(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.RecentUsersResponse{Users: users}), nil
}

// ForgetRecentUser removes one entry from the quick-login list.
func (s *AuthService) ForgetRecentUser(ctx context.Context, req *connect.Request[api.ForgetRecentUserRequest]) (*connect.Response[api.RecentUsersResponse], error) {
	if err := s.recentUsers.Forget(ctx, req.Msg.Email); err != nil {
		return nil, toConnectError(err)
	}
	return s.ListRecentUsers(ctx, connect.NewRequest(&api.Empty{}))
}

// ResetPassword changes the caller's password.
func (s *AuthService) ResetPassword(ctx context.Context, req *connect.Request[api.ResetPasswordRequest]) (*connect.Response[api.Empty], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	if err := s.accounts.ResetPassword(ctx, userID, req.Msg.CurrentPassword, req.Msg.NewPassword); err != nil {
		s.logger.Warn("Password reset failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}
	s.logger.Info("Password reset", "user_id", userID)
	return connect.NewResponse(&api.Empty{}), nil
}

// UpdateProfile changes the caller's profile fields.
func (s *AuthService) UpdateProfile(ctx context.Context, req *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.UserResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	user, err := s.accounts.UpdateProfile(ctx, userID, auth.ProfileUpdate{
		FullName:   req.Msg.FullName,
		Email:      req.Msg.Email,
		Avatar:     req.Msg.Avatar,
		QRCodeData: req.Msg.QRCodeData,
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	current, err := s.device.Current(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	if current != nil && current.ID == user.ID {
		if err := s.device.SignIn(ctx, user); err != nil {
			return nil, toConnectError(err)
		}
	}
	return connect.NewResponse(&api.UserResponse{User: api.NewUser(user)}), nil
}

// signIn records the user on the device and issues a session token.
func (s *AuthService) signIn(ctx context.Context, user *models.User, remember bool) (*connect.Response[api.AuthResponse], error) {
	if remember {
		updated, err := s.accounts.IssueDeviceToken(ctx, user.ID)
		if err != nil {
			return nil, toConnectError(err)
		}
		user = updated
	}
	if err := s.device.SignIn(ctx, user); err != nil {
		return nil, toConnectError(err)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	resp := &api.AuthResponse{User: api.NewUser(user), Token: token}
	if remember {
		resp.DeviceToken = user.DeviceToken
	}
	return connect.NewResponse(resp), nil
}
