package recents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mmynk/slidemaker/internal/models"
	"github.com/mmynk/slidemaker/internal/storage"
)

// MaxRecentUsers bounds the quick-login cache.
const MaxRecentUsers = 5

// RecentUsers is the quick-login list shown on the sign-in screen. It lives
// under its own key, outside the four tables, and is keyed by email.
type RecentUsers struct {
	kv storage.KeyValue
}

// NewRecentUsers creates a RecentUsers cache over kv.
func NewRecentUsers(kv storage.KeyValue) *RecentUsers {
	return &RecentUsers{kv: kv}
}

// List returns the cached users, most recent first. A malformed cache reads
// as empty.
func (c *RecentUsers) List(ctx context.Context) ([]models.RecentUser, error) {
	entry, err := c.kv.Get(ctx, storage.KeyRecentUsers)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return []models.RecentUser{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read recent users: %w", err)
	}

	var list []models.RecentUser
	if err := json.Unmarshal([]byte(entry.Value), &list); err != nil || list == nil {
		return []models.RecentUser{}, nil
	}
	return list, nil
}

// Remember puts the user at the front of the cache.
func (c *RecentUsers) Remember(ctx context.Context, user *models.User) error {
	if user == nil || user.Email == "" {
		return nil
	}
	list, err := c.List(ctx)
	if err != nil {
		return err
	}

	entry := models.RecentUser{
		Email:     user.Email,
		FirstName: user.FirstName(),
		LastName:  user.LastName(),
		Name:      user.FullName,
	}
	out := make([]models.RecentUser, 0, len(list)+1)
	out = append(out, entry)
	for _, u := range list {
		if u.Email != entry.Email {
			out = append(out, u)
		}
	}
	if len(out) > MaxRecentUsers {
		out = out[:MaxRecentUsers]
	}

	if err := storage.SetJSON(ctx, c.kv, storage.KeyRecentUsers, out); err != nil {
		return fmt.Errorf("failed to save recent users: %w", err)
	}
	return nil
}

// Forget drops the entry with the given email.
func (c *RecentUsers) Forget(ctx context.Context, email string) error {
	list, err := c.List(ctx)
	if err != nil {
		return err
	}
	out := make([]models.RecentUser, 0, len(list))
	for _, u := range list {
		if u.Email != email {
			out = append(out, u)
		}
	}
	if len(out) == len(list) {
		return nil
	}
	if err := storage.SetJSON(ctx, c.kv, storage.KeyRecentUsers, out); err != nil {
		return fmt.Errorf("failed to save recent users: %w", err)
	}
	return nil
}
