package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/slidemaker/internal/ids"
	"github.com/mmynk/slidemaker/internal/models"
	"github.com/mmynk/slidemaker/internal/storage"
)

// MinPasswordLength is the shortest password accepted at signup or reset.
const MinPasswordLength = 8

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailExists        = errors.New("email already registered")
	ErrMissingFields      = errors.New("please complete all fields")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrUserNotFound       = errors.New("user not found")
)

// UserStorage defines the user persistence operations the authenticator needs.
// storage.Store satisfies it.
type UserStorage interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, fields models.UserFields) (*models.User, error)
	UpdateUser(ctx context.Context, userID string, patch models.UserPatch) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByDeviceToken(ctx context.Context, token string) (*models.User, error)
}

// Signup is the signup form as submitted.
type Signup struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Validate checks the form before anything is stored.
func (s *Signup) Validate() error {
	s.FirstName = strings.TrimSpace(s.FirstName)
	s.LastName = strings.TrimSpace(s.LastName)
	s.Email = strings.TrimSpace(s.Email)
	if s.FirstName == "" || s.LastName == "" || s.Email == "" || s.Password == "" || s.ConfirmPassword == "" {
		return ErrMissingFields
	}
	if s.Password != s.ConfirmPassword {
		return ErrPasswordMismatch
	}
	return nil
}

// ProfileUpdate lists the profile fields a user may change. Nil fields are kept.
type ProfileUpdate struct {
	FullName   *string
	Email      *string
	Avatar     *string
	QRCodeData *string
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage UserStorage
	ids     *ids.Generator
	cost    int
}

// Option configures a PasswordAuthenticator.
type Option func(*PasswordAuthenticator)

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(a *PasswordAuthenticator) { a.cost = cost }
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(storage UserStorage, gen *ids.Generator, opts ...Option) *PasswordAuthenticator {
	a := &PasswordAuthenticator{
		storage: storage,
		ids:     gen,
		cost:    bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// Signup validates the form and registers the account.
func (a *PasswordAuthenticator) Signup(ctx context.Context, form Signup) (*models.User, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	return a.Register(ctx, form.Email, form.FirstName+" "+form.LastName, form.Password)
}

// Register creates a new user account with a hashed password. The new
// user's QR code carries their user ID. The lookup before hashing only
// saves bcrypt work; uniqueness is enforced by the store's write.
func (a *PasswordAuthenticator) Register(ctx context.Context, email, displayName, credential string) (*models.User, error) {
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	existing, err := a.storage.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := a.hash(credential)
	if err != nil {
		return nil, err
	}

	user, err := a.storage.CreateUser(ctx, models.UserFields{
		FullName:     strings.TrimSpace(displayName),
		Email:        email,
		PasswordHash: hash,
	})
	if errors.Is(err, storage.ErrDuplicate) {
		return nil, ErrEmailExists
	}
	if err != nil {
		return nil, err
	}

	qr := user.ID
	updated, err := a.storage.UpdateUser(ctx, user.ID, models.UserPatch{QRCodeData: &qr})
	if err != nil {
		return nil, err
	}
	if updated != nil {
		user = updated
	}
	return user, nil
}

// Authenticate verifies the email and password, returning the user if valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (*models.User, error) {
	user, err := a.storage.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// IssueDeviceToken gives the user a new auto-login token, replacing any previous one.
func (a *PasswordAuthenticator) IssueDeviceToken(ctx context.Context, userID string) (*models.User, error) {
	token := a.ids.DeviceToken()
	user, err := a.storage.UpdateUser(ctx, userID, models.UserPatch{DeviceToken: &token})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// AuthenticateDevice signs in the user holding the device token.
func (a *PasswordAuthenticator) AuthenticateDevice(ctx context.Context, token string) (*models.User, error) {
	user, err := a.storage.GetUserByDeviceToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}

// ResetPassword replaces the password after checking the current one.
func (a *PasswordAuthenticator) ResetPassword(ctx context.Context, userID, current, next string) error {
	if err := a.ValidateCredential(next); err != nil {
		return err
	}
	user, err := a.storage.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := a.hash(next)
	if err != nil {
		return err
	}
	if _, err := a.storage.UpdateUser(ctx, userID, models.UserPatch{PasswordHash: &hash}); err != nil {
		return err
	}
	return nil
}

// UpdateProfile changes profile fields. A new email must not belong to another user.
func (a *PasswordAuthenticator) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*models.User, error) {
	if update.Email != nil {
		email := strings.TrimSpace(*update.Email)
		if email == "" {
			return nil, ErrMissingFields
		}
		other, err := a.storage.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != userID {
			return nil, ErrEmailExists
		}
		update.Email = &email
	}

	user, err := a.storage.UpdateUser(ctx, userID, models.UserPatch{
		FullName:   update.FullName,
		Email:      update.Email,
		Avatar:     update.Avatar,
		QRCodeData: update.QRCodeData,
	})
	if errors.Is(err, storage.ErrDuplicate) {
		return nil, ErrEmailExists
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (a *PasswordAuthenticator) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}
