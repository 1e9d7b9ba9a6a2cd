package tables

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/slidemaker/internal/ids"
	"github.com/mmynk/slidemaker/internal/models"
	"github.com/mmynk/slidemaker/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store implements storage.Store with one JSON document per table.
type Store struct {
	users     *Table[models.User]
	groups    *Table[models.Group]
	templates *Table[models.Template]
	recents   *Blob[map[string]models.Recents]

	ids *ids.Generator
	now func() time.Time
}

// Option configures a Store.
type Option func(*options)

type options struct {
	blob blobConfig
	now  func() time.Time
}

// WithClock overrides the time source used for createdAt/updatedAt.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithRetries sets how many times a conflicting write is retried.
func WithRetries(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.blob.retries = n
		}
	}
}

// WithObserver reports writes, conflicts and decode failures.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.blob.observer = obs }
}

// WithLogger sets the logger used for degraded reads and retries.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.blob.logger = l }
}

func newOptions(opts []Option) options {
	o := options{
		blob: blobConfig{retries: DefaultRetries, observer: nopObserver{}, logger: slog.Default()},
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New creates a Store over kv.
func New(kv storage.KeyValue, gen *ids.Generator, opts ...Option) *Store {
	o := newOptions(opts)

	return &Store{
		users: newTable(newBlob[[]models.User](kv, storage.KeyUsers, o.blob),
			func(u *models.User) string { return u.ID }, nil),
		groups: newTable(newBlob[[]models.Group](kv, storage.KeyGroups, o.blob),
			func(g *models.Group) string { return g.ID }, normalizeGroup),
		templates: newTable(newBlob[[]models.Template](kv, storage.KeyTemplates, o.blob),
			func(t *models.Template) string { return t.ID }, nil),
		recents: newBlob[map[string]models.Recents](kv, storage.KeyRecents, o.blob),
		ids:     gen,
		now:     o.now,
	}
}

// timestamp returns the current time at millisecond precision in UTC, the
// resolution the documents have always been stored with.
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// stamp returns a timestamp strictly after prev, so updatedAt only advances.
func (s *Store) stamp(prev time.Time) time.Time {
	now := s.timestamp()
	if !now.After(prev) {
		now = prev.Add(time.Millisecond)
	}
	return now
}

// ============================================
// Users
// ============================================

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *Store) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return s.users.Get(ctx, userID)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.users.Find(ctx, func(u *models.User) bool { return u.Email == email })
}

// GetUserByDeviceToken never matches the empty token.
func (s *Store) GetUserByDeviceToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}
	return s.users.Find(ctx, func(u *models.User) bool { return u.DeviceToken == token })
}

func (s *Store) CreateUser(ctx context.Context, fields models.UserFields) (*models.User, error) {
	user, err := s.users.Insert(ctx, func(rows []models.User) (models.User, error) {
		existing := make([]string, len(rows))
		for i := range rows {
			if fields.Email != "" && rows[i].Email == fields.Email {
				return models.User{}, storage.ErrDuplicate
			}
			existing[i] = rows[i].ID
		}
		now := s.timestamp()
		return models.User{
			ID:           s.ids.UserID(existing),
			FullName:     fields.FullName,
			Email:        fields.Email,
			PasswordHash: fields.PasswordHash,
			Avatar:       fields.Avatar,
			QRCodeData:   fields.QRCodeData,
			DeviceToken:  fields.DeviceToken,
			CreatedAt:    now,
			UpdatedAt:    now,
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *Store) UpdateUser(ctx context.Context, userID string, patch models.UserPatch) (*models.User, error) {
	user, err := s.users.UpdateWithin(ctx, userID, func(rows []models.User, u *models.User) error {
		if patch.Email != nil && *patch.Email != "" {
			for i := range rows {
				if rows[i].ID != u.ID && rows[i].Email == *patch.Email {
					return storage.ErrDuplicate
				}
			}
		}
		setIf(&u.FullName, patch.FullName)
		setIf(&u.Email, patch.Email)
		setIf(&u.PasswordHash, patch.PasswordHash)
		setIf(&u.Avatar, patch.Avatar)
		setIf(&u.QRCodeData, patch.QRCodeData)
		setIf(&u.DeviceToken, patch.DeviceToken)
		u.UpdatedAt = s.stamp(u.UpdatedAt)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// ============================================
// Groups
// ============================================

func (s *Store) ListGroups(ctx context.Context) ([]models.Group, error) {
	return s.groups.List(ctx)
}

func (s *Store) GetGroupByID(ctx context.Context, groupID string) (*models.Group, error) {
	return s.groups.Get(ctx, groupID)
}

func (s *Store) ListGroupsByUser(ctx context.Context, userID string) ([]models.Group, error) {
	return s.groups.Filter(ctx, func(g *models.Group) bool { return g.HasMember(userID) })
}

func (s *Store) CreateGroup(ctx context.Context, fields models.GroupFields) (*models.Group, error) {
	group, err := s.groups.Insert(ctx, func([]models.Group) (models.Group, error) {
		now := s.timestamp()

		members := append([]string(nil), fields.Members...)
		if fields.CreatedBy != "" && !contains(members, fields.CreatedBy) {
			members = append([]string{fields.CreatedBy}, members...)
		}

		return models.Group{
			ID:        s.ids.GroupID(),
			Name:      fields.Name,
			CreatedBy: fields.CreatedBy,
			Members:   members,
			Roles:     append([]models.Role(nil), fields.Roles...),
			Slides:    append([]models.Slide(nil), fields.Slides...),
			ActivityLog: []models.Activity{{
				Type:      models.ActivityGroupCreated,
				UserID:    fields.CreatedBy,
				Message:   fmt.Sprintf("Group %q was created", fields.Name),
				Timestamp: now,
			}},
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	return group, nil
}

func (s *Store) UpdateGroup(ctx context.Context, groupID string, patch models.GroupPatch) (*models.Group, error) {
	return s.MutateGroup(ctx, groupID, func(g *models.Group) error {
		setIf(&g.Name, patch.Name)
		setIf(&g.Members, patch.Members)
		setIf(&g.Roles, patch.Roles)
		setIf(&g.Slides, patch.Slides)
		setIf(&g.ActivityLog, patch.ActivityLog)
		return nil
	})
}

func (s *Store) MutateGroup(ctx context.Context, groupID string, fn func(*models.Group) error) (*models.Group, error) {
	group, err := s.groups.Update(ctx, groupID, func(g *models.Group) error {
		if err := fn(g); err != nil {
			return err
		}
		g.UpdatedAt = s.stamp(g.UpdatedAt)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}
	return group, nil
}

// AddGroupActivity fills in a missing timestamp.
func (s *Store) AddGroupActivity(ctx context.Context, groupID string, activity models.Activity) (*models.Group, error) {
	return s.MutateGroup(ctx, groupID, func(g *models.Group) error {
		if activity.Timestamp.IsZero() {
			activity.Timestamp = s.timestamp()
		}
		g.ActivityLog = append(g.ActivityLog, activity)
		return nil
	})
}

func (s *Store) DeleteGroup(ctx context.Context, groupID string) (bool, error) {
	ok, err := s.groups.Delete(ctx, groupID)
	if err != nil {
		return false, fmt.Errorf("failed to delete group: %w", err)
	}
	return ok, nil
}

// ============================================
// Recents
// ============================================

func (s *Store) GetRecents(ctx context.Context, userID string) (*models.Recents, error) {
	all, err := s.recents.Load(ctx)
	if err != nil {
		return nil, err
	}
	r := all[userID]
	normalizeRecents(&r)
	return &r, nil
}

func (s *Store) UpdateRecents(ctx context.Context, userID string, patch models.RecentsPatch) (*models.Recents, error) {
	return s.MutateRecents(ctx, userID, func(r *models.Recents) {
		setIf(&r.RecentGroups, patch.RecentGroups)
		setIf(&r.RecentPresentations, patch.RecentPresentations)
		setIf(&r.RecentTemplates, patch.RecentTemplates)
		setIf(&r.LastActiveGroup, patch.LastActiveGroup)
	})
}

func (s *Store) MutateRecents(ctx context.Context, userID string, fn func(*models.Recents)) (*models.Recents, error) {
	var out models.Recents
	err := s.recents.Mutate(ctx, func(all *map[string]models.Recents) (bool, error) {
		if *all == nil {
			*all = make(map[string]models.Recents)
		}
		r := (*all)[userID]
		normalizeRecents(&r)
		fn(&r)
		normalizeRecents(&r)
		(*all)[userID] = r
		out = r
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update recents: %w", err)
	}
	return &out, nil
}

// ============================================
// Templates
// ============================================

func (s *Store) ListTemplates(ctx context.Context) ([]models.Template, error) {
	return s.templates.List(ctx)
}

func (s *Store) GetTemplateByID(ctx context.Context, templateID string) (*models.Template, error) {
	return s.templates.Get(ctx, templateID)
}

func (s *Store) ListTemplatesByCategory(ctx context.Context, category string) ([]models.Template, error) {
	return s.templates.Filter(ctx, func(t *models.Template) bool { return t.Category == category })
}

func (s *Store) CreateTemplate(ctx context.Context, fields models.TemplateFields) (*models.Template, error) {
	tmpl, err := s.templates.Insert(ctx, func([]models.Template) (models.Template, error) {
		category := fields.Category
		if category == "" {
			category = models.DefaultTemplateCategory
		}
		now := s.timestamp()
		return models.Template{
			ID:           s.ids.TemplateID(),
			Name:         fields.Name,
			PreviewImage: fields.PreviewImage,
			Category:     category,
			CreatedAt:    now,
			UpdatedAt:    now,
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return tmpl, nil
}

func (s *Store) UpdateTemplate(ctx context.Context, templateID string, patch models.TemplatePatch) (*models.Template, error) {
	tmpl, err := s.templates.Update(ctx, templateID, func(t *models.Template) error {
		setIf(&t.Name, patch.Name)
		setIf(&t.PreviewImage, patch.PreviewImage)
		setIf(&t.Category, patch.Category)
		t.UpdatedAt = s.stamp(t.UpdatedAt)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}
	return tmpl, nil
}

// setIf overwrites *dst when src is non-nil.
func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
