package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/slidemaker/internal/models"
	"github.com/mmynk/slidemaker/internal/storage"
)

// MigrateLegacyUsers folds the accounts of the old flat "users" list into the
// users table and then deletes the list, so it runs at most once. Accounts
// whose email is already in the table are skipped. Legacy clear-text
// passwords are hashed on the way in. It returns the number of accounts added.
func (a *PasswordAuthenticator) MigrateLegacyUsers(ctx context.Context, kv storage.KeyValue) (int, error) {
	entry, err := kv.Get(ctx, storage.KeyLegacyUsers)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read legacy users: %w", err)
	}

	var legacy []models.LegacyUser
	if err := json.Unmarshal([]byte(entry.Value), &legacy); err != nil {
		slog.Warn("Dropping malformed legacy user list", "error", err)
		legacy = nil
	}

	added := 0
	for _, l := range legacy {
		email := strings.TrimSpace(l.Email)
		if email == "" {
			continue
		}
		existing, err := a.storage.GetUserByEmail(ctx, email)
		if err != nil {
			return added, err
		}
		if existing != nil {
			continue
		}

		var hash string
		if l.Password != "" {
			if hash, err = a.hash(l.Password); err != nil {
				return added, err
			}
		}
		user, err := a.storage.CreateUser(ctx, models.UserFields{
			FullName:     l.DisplayName(),
			Email:        email,
			PasswordHash: hash,
		})
		if errors.Is(err, storage.ErrDuplicate) {
			continue
		}
		if err != nil {
			return added, err
		}
		qr := user.ID
		if _, err := a.storage.UpdateUser(ctx, user.ID, models.UserPatch{QRCodeData: &qr}); err != nil {
			return added, err
		}
		added++
	}

	if err := kv.Remove(ctx, storage.KeyLegacyUsers); err != nil {
		return added, fmt.Errorf("failed to remove legacy users: %w", err)
	}
	slog.Info("Migrated legacy users", "added", added, "total", len(legacy))
	return added, nil
}
