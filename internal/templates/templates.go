// Package templates manages the template catalog and records template use.
package templates

import (
	"context"
	"errors"
	"strings"

	"github.com/mmynk/slidemaker/internal/models"
	"github.com/mmynk/slidemaker/internal/recents"
	"github.com/mmynk/slidemaker/internal/session"
	"github.com/mmynk/slidemaker/internal/storage"
)

var (
	ErrNotFound  = errors.New("template not found")
	ErrEmptyName = errors.New("template name is required")
)

// Catalog wraps the templates table.
type Catalog struct {
	store   storage.Store
	tracker *recents.Tracker
}

// NewCatalog creates a Catalog.
func NewCatalog(store storage.Store, tracker *recents.Tracker) *Catalog {
	return &Catalog{store: store, tracker: tracker}
}

// List returns every template, or only those in category when it is set.
func (c *Catalog) List(ctx context.Context, category string) ([]models.Template, error) {
	if category == "" {
		return c.store.ListTemplates(ctx)
	}
	return c.store.ListTemplatesByCategory(ctx, category)
}

func (c *Catalog) Create(ctx context.Context, fields models.TemplateFields) (*models.Template, error) {
	fields.Name = strings.TrimSpace(fields.Name)
	if fields.Name == "" {
		return nil, ErrEmptyName
	}
	return c.store.CreateTemplate(ctx, fields)
}

func (c *Catalog) Update(ctx context.Context, id string, patch models.TemplatePatch) (*models.Template, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, ErrEmptyName
	}
	tmpl, err := c.store.UpdateTemplate(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if tmpl == nil {
		return nil, ErrNotFound
	}
	return tmpl, nil
}

// Use records the template in the user's recents and hands its name to the
// editor. Guests only get the handoff.
func (c *Catalog) Use(ctx context.Context, userID, templateID string, h *session.Handoff) (*models.Template, error) {
	tmpl, err := c.store.GetTemplateByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if tmpl == nil {
		return nil, ErrNotFound
	}
	if userID != "" && userID != session.GuestOwner {
		if _, err := c.tracker.Touch(ctx, userID, recents.KindTemplates, templateID); err != nil {
			return nil, err
		}
	}
	if h != nil {
		if err := h.SelectTemplate(ctx, tmpl.Name); err != nil {
			return nil, err
		}
	}
	return tmpl, nil
}

// Recent returns the user's recently used templates, skipping deleted ones.
func (c *Catalog) Recent(ctx context.Context, userID string, limit int) ([]models.Template, error) {
	r, err := c.tracker.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	all, err := c.store.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Template, len(all))
	for _, t := range all {
		byID[t.ID] = t
	}
	out := []models.Template{}
	for _, id := range r.RecentTemplates {
		if limit > 0 && len(out) == limit {
			break
		}
		if t, ok := byID[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}
