package auth

import (
	"context"

	"github.com/mmynk/slidemaker/internal/models"
)

// Authenticator signs users in. PasswordAuthenticator is the only
// implementation; the service layer depends on this interface.
type Authenticator interface {
	// Signup validates the form and creates the account.
	Signup(ctx context.Context, form Signup) (*models.User, error)

	// Authenticate checks an email and password pair.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// AuthenticateDevice signs in the holder of a remembered device token.
	AuthenticateDevice(ctx context.Context, token string) (*models.User, error)

	// IssueDeviceToken remembers the current device for the user.
	IssueDeviceToken(ctx context.Context, userID string) (*models.User, error)

	// ValidateCredential reports whether a new password is acceptable.
	ValidateCredential(credential string) error
}

// AccountManager adds the changes a signed-in user makes to their own account.
type AccountManager interface {
	Authenticator

	ResetPassword(ctx context.Context, userID, current, next string) error
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*models.User, error)
}

var _ AccountManager = (*PasswordAuthenticator)(nil)
