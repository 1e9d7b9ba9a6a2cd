// Package groups implements group lifecycle and membership on top of the
// entity store, keeping each user's recent groups current.
package groups

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmynk/slidemaker/internal/models"
	"github.com/mmynk/slidemaker/internal/recents"
	"github.com/mmynk/slidemaker/internal/storage"
)

var (
	ErrEmptyName      = errors.New("group name is required")
	ErrGroupNotFound  = errors.New("group not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrAlreadyMember  = errors.New("user is already a member")
	ErrNotMember      = errors.New("user is not a member")
	ErrRemoveCreator  = errors.New("the group creator cannot be removed")
	ErrNotGroupMember = errors.New("only members can access this group")
)

// Manager coordinates group operations.
type Manager struct {
	store   storage.Store
	tracker *recents.Tracker
	now     func() time.Time
}

// NewManager creates a Manager.
func NewManager(store storage.Store, tracker *recents.Tracker) *Manager {
	return &Manager{store: store, tracker: tracker, now: time.Now}
}

// Create makes a group with the creator as its first member and admin, and
// puts it at the top of the creator's recent groups.
func (m *Manager) Create(ctx context.Context, creatorID, name string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	group, err := m.store.CreateGroup(ctx, models.GroupFields{
		Name:      name,
		CreatedBy: creatorID,
		Members:   []string{creatorID},
		Roles:     []models.Role{{UserID: creatorID, Role: models.RoleAdmin}},
	})
	if err != nil {
		return nil, err
	}
	if _, err := m.tracker.Touch(ctx, creatorID, recents.KindGroups, group.ID); err != nil {
		return nil, err
	}
	return group, nil
}

// Open returns the group for a member and records it as their last active group.
func (m *Manager) Open(ctx context.Context, userID, groupID string) (*models.Group, error) {
	group, err := m.get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(userID) {
		return nil, ErrNotGroupMember
	}
	if _, err := m.tracker.Touch(ctx, userID, recents.KindGroups, groupID); err != nil {
		return nil, err
	}
	if _, err := m.tracker.SetLastActiveGroup(ctx, userID, groupID); err != nil {
		return nil, err
	}
	return group, nil
}

// Members resolves the member IDs, skipping users that no longer exist.
func (m *Manager) Members(ctx context.Context, groupID string) ([]models.User, error) {
	group, err := m.get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	users, err := m.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	out := make([]models.User, 0, len(group.Members))
	for _, id := range group.Members {
		if u, ok := byID[id]; ok {
			u.PasswordHash = ""
			out = append(out, u)
		}
	}
	return out, nil
}

// Rename changes the group name.
func (m *Manager) Rename(ctx context.Context, actorID, groupID, name string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	return m.mutate(ctx, groupID, func(g *models.Group) (models.Activity, error) {
		old := g.Name
		g.Name = name
		return models.Activity{
			Type:    models.ActivityGroupRenamed,
			UserID:  actorID,
			Message: fmt.Sprintf("Group %q was renamed to %q", old, name),
		}, nil
	})
}

// Duplicate creates "<name> (Copy)" with the same members and roles but no
// slides. The actor becomes its creator and an admin of the copy.
func (m *Manager) Duplicate(ctx context.Context, actorID, groupID string) (*models.Group, error) {
	src, err := m.get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	name := src.Name
	if name == "" {
		name = "Unnamed Group"
	}

	roles := make([]models.Role, 0, len(src.Roles)+1)
	actorIsAdmin := false
	for _, r := range src.Roles {
		if r.UserID == actorID {
			r.Role = models.RoleAdmin
			actorIsAdmin = true
		}
		roles = append(roles, r)
	}
	if !actorIsAdmin {
		roles = append(roles, models.Role{UserID: actorID, Role: models.RoleAdmin})
	}

	group, err := m.store.CreateGroup(ctx, models.GroupFields{
		Name:      name + " (Copy)",
		CreatedBy: actorID,
		Members:   append([]string(nil), src.Members...),
		Roles:     roles,
	})
	if err != nil {
		return nil, err
	}
	if _, err := m.tracker.Touch(ctx, actorID, recents.KindGroups, group.ID); err != nil {
		return nil, err
	}
	return group, nil
}

// AddMember adds an existing user to the group with the member role.
func (m *Manager) AddMember(ctx context.Context, actorID, groupID, userID string) (*models.Group, error) {
	userID = strings.TrimSpace(userID)
	user, err := m.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return m.mutate(ctx, groupID, func(g *models.Group) (models.Activity, error) {
		if g.HasMember(userID) {
			return models.Activity{}, ErrAlreadyMember
		}
		g.Members = append(g.Members, userID)
		g.Roles = append(g.Roles, models.Role{UserID: userID, Role: models.RoleMember})
		return models.Activity{
			Type:    models.ActivityMemberAdded,
			UserID:  actorID,
			Message: fmt.Sprintf("%s joined the group", displayName(user)),
		}, nil
	})
}

// RemoveMember drops a member and their role. The creator always stays.
func (m *Manager) RemoveMember(ctx context.Context, actorID, groupID, userID string) (*models.Group, error) {
	return m.mutate(ctx, groupID, func(g *models.Group) (models.Activity, error) {
		if userID == g.CreatedBy {
			return models.Activity{}, ErrRemoveCreator
		}
		if !g.HasMember(userID) {
			return models.Activity{}, ErrNotMember
		}

		members := make([]string, 0, len(g.Members))
		for _, id := range g.Members {
			if id != userID {
				members = append(members, id)
			}
		}
		roles := make([]models.Role, 0, len(g.Roles))
		for _, r := range g.Roles {
			if r.UserID != userID {
				roles = append(roles, r)
			}
		}
		g.Members, g.Roles = members, roles

		return models.Activity{
			Type:    models.ActivityMemberRemoved,
			UserID:  actorID,
			Message: fmt.Sprintf("%s was removed from the group", userID),
		}, nil
	})
}

// ForgetRecent removes the group from the user's recent list and clears it
// as last active group when it was.
func (m *Manager) ForgetRecent(ctx context.Context, userID, groupID string) (*models.Recents, error) {
	r, err := m.tracker.Forget(ctx, userID, recents.KindGroups, groupID)
	if err != nil {
		return nil, err
	}
	if r.LastActiveGroup != nil && *r.LastActiveGroup == groupID {
		return m.tracker.SetLastActiveGroup(ctx, userID, "")
	}
	return r, nil
}

// RecentGroups returns the user's groups in recents order. IDs of deleted
// groups or groups the user left are skipped. limit <= 0 returns all.
func (m *Manager) RecentGroups(ctx context.Context, userID string, limit int) ([]models.Group, error) {
	r, err := m.tracker.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	mine, err := m.store.ListGroupsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Group, len(mine))
	for _, g := range mine {
		byID[g.ID] = g
	}

	out := []models.Group{}
	for _, id := range r.RecentGroups {
		if limit > 0 && len(out) == limit {
			break
		}
		if g, ok := byID[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *Manager) get(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := m.store.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// mutate applies fn and appends the activity it returns, in one write.
func (m *Manager) mutate(ctx context.Context, groupID string, fn func(*models.Group) (models.Activity, error)) (*models.Group, error) {
	var cause error
	group, err := m.store.MutateGroup(ctx, groupID, func(g *models.Group) error {
		activity, err := fn(g)
		if err != nil {
			cause = err
			return err
		}
		activity.Timestamp = m.now().UTC().Truncate(time.Millisecond)
		g.ActivityLog = append(g.ActivityLog, activity)
		return nil
	})
	if cause != nil {
		return nil, cause
	}
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

func displayName(u *models.User) string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.ID
}
