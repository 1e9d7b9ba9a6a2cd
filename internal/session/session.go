// Package session keeps the signed-in state of this device and the
// short-lived handoff values passed from one screen to the next.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mmynk/slidemaker/internal/models"
	"github.com/mmynk/slidemaker/internal/recents"
	"github.com/mmynk/slidemaker/internal/storage"
)

// Keys in the persistent device store.
const (
	KeyCurrentUser = "currentUser"
	KeyGuest       = "guest"
)

// GuestOwner owns the presentations created while nobody is signed in.
const GuestOwner = "guest"

// Device is the sign-in state persisted on this device.
type Device struct {
	kv     storage.KeyValue
	recent *recents.RecentUsers
}

// NewDevice creates a Device over the persistent store kv.
func NewDevice(kv storage.KeyValue, recent *recents.RecentUsers) *Device {
	return &Device{kv: kv, recent: recent}
}

// SignIn makes user the current user, leaves guest mode and remembers the
// user for quick login. The stored copy never carries the password hash or
// the device token: the token stays with the client it was issued to.
func (d *Device) SignIn(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("sign in: nil user")
	}
	cp := *user
	cp.PasswordHash = ""
	cp.DeviceToken = ""

	if err := storage.SetJSON(ctx, d.kv, KeyCurrentUser, cp); err != nil {
		return fmt.Errorf("failed to save current user: %w", err)
	}
	if err := d.kv.Remove(ctx, KeyGuest); err != nil {
		return fmt.Errorf("failed to clear guest flag: %w", err)
	}
	if d.recent != nil {
		if err := d.recent.Remember(ctx, &cp); err != nil {
			return err
		}
	}
	return nil
}

// ContinueAsGuest signs out any user and enters guest mode.
func (d *Device) ContinueAsGuest(ctx context.Context) error {
	if err := d.kv.Remove(ctx, KeyCurrentUser); err != nil {
		return fmt.Errorf("failed to clear current user: %w", err)
	}
	if err := d.kv.Set(ctx, KeyGuest, "true"); err != nil {
		return fmt.Errorf("failed to set guest flag: %w", err)
	}
	return nil
}

// Current returns the signed-in user, or nil. A malformed record reads as
// signed out.
func (d *Device) Current(ctx context.Context) (*models.User, error) {
	entry, err := d.kv.Get(ctx, KeyCurrentUser)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read current user: %w", err)
	}
	var user models.User
	if err := json.Unmarshal([]byte(entry.Value), &user); err != nil {
		return nil, nil
	}
	return &user, nil
}

// IsGuest reports whether the device is in guest mode.
func (d *Device) IsGuest(ctx context.Context) (bool, error) {
	entry, err := d.kv.Get(ctx, KeyGuest)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read guest flag: %w", err)
	}
	return entry.Value == "true", nil
}

// Owner returns the key under which the current viewer's presentations are
// stored: the user ID when signed in, GuestOwner otherwise.
func (d *Device) Owner(ctx context.Context) (string, error) {
	user, err := d.Current(ctx)
	if err != nil {
		return "", err
	}
	if user == nil || user.ID == "" {
		return GuestOwner, nil
	}
	return user.ID, nil
}

// SignOut clears the current user and guest mode.
func (d *Device) SignOut(ctx context.Context) error {
	for _, key := range []string{KeyCurrentUser, KeyGuest} {
		if err := d.kv.Remove(ctx, key); err != nil {
			return fmt.Errorf("failed to remove %s: %w", key, err)
		}
	}
	return nil
}
