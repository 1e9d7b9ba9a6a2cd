// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/slidemaker/internal/models"
)

// ErrDuplicate is returned when a write would store a second record with a
// value that must be unique, such as a user's email.
var ErrDuplicate = errors.New("duplicate record")

// Keys of the four tables and the auxiliary records in the key-value store.
const (
	KeyUsers       = "db_users"
	KeyGroups      = "db_groups"
	KeyRecents     = "db_recents"
	KeyTemplates   = "db_templates"
	KeyLegacyUsers = "users"
	KeyRecentUsers = "recentUsers"
)

// Store defines the entity operations over the Users, Groups, Recents and
// Templates tables. This abstraction allows the table layout to change
// without touching the services built on top of it.
//
// Lookups return nil (or an empty slice) and a nil error when nothing matches.
// Errors are reserved for failures of the underlying key-value store and
// for ErrDuplicate.
type Store interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	// GetUserByEmail compares emails case-sensitively.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByDeviceToken(ctx context.Context, token string) (*models.User, error)
	// CreateUser assigns the next free "#ADnnnn" ID. It returns ErrDuplicate
	// when the email is already taken.
	CreateUser(ctx context.Context, fields models.UserFields) (*models.User, error)
	// UpdateUser returns nil when the user does not exist, and ErrDuplicate
	// when an email patch collides with another user.
	UpdateUser(ctx context.Context, userID string, patch models.UserPatch) (*models.User, error)

	ListGroups(ctx context.Context) ([]models.Group, error)
	GetGroupByID(ctx context.Context, groupID string) (*models.Group, error)
	// ListGroupsByUser returns groups that have userID among their members.
	ListGroupsByUser(ctx context.Context, userID string) ([]models.Group, error)
	// CreateGroup logs a group_created activity on the new group.
	CreateGroup(ctx context.Context, fields models.GroupFields) (*models.Group, error)
	UpdateGroup(ctx context.Context, groupID string, patch models.GroupPatch) (*models.Group, error)
	// MutateGroup applies fn to the stored group inside one read-modify-write.
	// Returning an error from fn aborts the write.
	MutateGroup(ctx context.Context, groupID string, fn func(*models.Group) error) (*models.Group, error)
	AddGroupActivity(ctx context.Context, groupID string, activity models.Activity) (*models.Group, error)
	// DeleteGroup reports whether a group was removed.
	DeleteGroup(ctx context.Context, groupID string) (bool, error)

	// GetRecents returns empty lists when the user has no record.
	GetRecents(ctx context.Context, userID string) (*models.Recents, error)
	UpdateRecents(ctx context.Context, userID string, patch models.RecentsPatch) (*models.Recents, error)
	// MutateRecents applies fn to the user's recents inside one read-modify-write.
	MutateRecents(ctx context.Context, userID string, fn func(*models.Recents)) (*models.Recents, error)

	ListTemplates(ctx context.Context) ([]models.Template, error)
	GetTemplateByID(ctx context.Context, templateID string) (*models.Template, error)
	ListTemplatesByCategory(ctx context.Context, category string) ([]models.Template, error)
	CreateTemplate(ctx context.Context, fields models.TemplateFields) (*models.Template, error)
	UpdateTemplate(ctx context.Context, templateID string, patch models.TemplatePatch) (*models.Template, error)
}
