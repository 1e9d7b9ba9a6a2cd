package models

import (
	"strings"
	"time"
)

// User represents a registered user account.
type User struct {
	// ID is the human-readable user identifier ("#AD0001").
	ID string `json:"userID"`

	// FullName is the display name of the user.
	FullName string `json:"fullName"`

	// Email is the user's email address (unique, compared case-sensitively).
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string `json:"passwordHash"`

	// Avatar is an image URL or data URI, empty when unset.
	Avatar string `json:"avatar"`

	// QRCodeData is the payload rendered into the user's share QR code.
	QRCodeData string `json:"qrcodeData"`

	// DeviceToken enables auto-login for a returning device, empty when none was issued.
	DeviceToken string `json:"deviceToken"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FirstName returns the first word of the full name.
func (u *User) FirstName() string {
	first, _, _ := strings.Cut(strings.TrimSpace(u.FullName), " ")
	return first
}

// LastName returns everything after the first word of the full name.
func (u *User) LastName() string {
	_, last, _ := strings.Cut(strings.TrimSpace(u.FullName), " ")
	return strings.TrimSpace(last)
}

// UserFields are the caller-supplied fields for creating a user.
// Empty optional fields are stored as empty strings.
type UserFields struct {
	FullName     string
	Email        string
	PasswordHash string
	Avatar       string
	QRCodeData   string
	DeviceToken  string
}

// UserPatch is a shallow update: every non-nil field overwrites the stored value.
type UserPatch struct {
	FullName     *string
	Email        *string
	PasswordHash *string
	Avatar       *string
	QRCodeData   *string
	DeviceToken  *string
}

// RecentUser is a lightweight quick-login entry, independent of the User table.
type RecentUser struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Name      string `json:"name"`
}

// LegacyUser is the shape of records in the pre-table "users" array.
// Passwords were stored in clear text; they are hashed when folded into db_users.
type LegacyUser struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// DisplayName picks the best available name from a legacy record.
func (l LegacyUser) DisplayName() string {
	if n := strings.TrimSpace(l.FirstName + " " + l.LastName); n != "" {
		return n
	}
	if l.Name != "" {
		return l.Name
	}
	return l.Username
}
