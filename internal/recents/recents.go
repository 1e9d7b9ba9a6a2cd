// Package recents maintains per-user most-recently-used lists and the
// quick-login cache of recently signed-in users.
package recents

import (
	"context"
	"fmt"

	"github.com/mmynk/slidemaker/internal/models"
	"github.com/mmynk/slidemaker/internal/storage"
)

// MaxItems bounds every per-user recents list.
const MaxItems = 10

// Kind selects one of the per-user recents lists.
type Kind string

const (
	KindGroups        Kind = "groups"
	KindPresentations Kind = "presentations"
	KindTemplates     Kind = "templates"
)

// Valid reports whether k names a known list.
func (k Kind) Valid() bool {
	switch k {
	case KindGroups, KindPresentations, KindTemplates:
		return true
	}
	return false
}

func (k Kind) list(r *models.Recents) *[]string {
	switch k {
	case KindGroups:
		return &r.RecentGroups
	case KindPresentations:
		return &r.RecentPresentations
	case KindTemplates:
		return &r.RecentTemplates
	}
	return nil
}

// Tracker records entity accesses in the Recents table.
type Tracker struct {
	store storage.Store
}

// NewTracker creates a Tracker over store.
func NewTracker(store storage.Store) *Tracker {
	return &Tracker{store: store}
}

// Touch moves id to the front of the user's list for kind, dropping any
// earlier occurrence and trimming the list to MaxItems.
func (t *Tracker) Touch(ctx context.Context, userID string, kind Kind, id string) (*models.Recents, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown recents kind %q", kind)
	}
	return t.store.MutateRecents(ctx, userID, func(r *models.Recents) {
		list := kind.list(r)
		*list = pushFront(*list, id, MaxItems)
	})
}

// Forget removes id from the user's list for kind.
// Clearing the last active group is left to SetLastActiveGroup.
func (t *Tracker) Forget(ctx context.Context, userID string, kind Kind, id string) (*models.Recents, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown recents kind %q", kind)
	}
	return t.store.MutateRecents(ctx, userID, func(r *models.Recents) {
		list := kind.list(r)
		*list = without(*list, id)
	})
}

// SetLastActiveGroup records groupID as the user's last active group.
// An empty groupID clears it.
func (t *Tracker) SetLastActiveGroup(ctx context.Context, userID, groupID string) (*models.Recents, error) {
	return t.store.MutateRecents(ctx, userID, func(r *models.Recents) {
		if groupID == "" {
			r.LastActiveGroup = nil
			return
		}
		id := groupID
		r.LastActiveGroup = &id
	})
}

// Get returns the user's recents. A user without a record gets empty lists.
func (t *Tracker) Get(ctx context.Context, userID string) (*models.Recents, error) {
	return t.store.GetRecents(ctx, userID)
}

// pushFront returns list with id first, no duplicates, at most limit entries.
func pushFront(list []string, id string, limit int) []string {
	out := make([]string, 0, len(list)+1)
	out = append(out, id)
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func without(list []string, id string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
