// Package search finds presentations, groups and templates by name.
package search

import (
	"context"
	"strings"

	"github.com/mmynk/slidemaker/internal/models"
	"github.com/mmynk/slidemaker/internal/presentations"
	"github.com/mmynk/slidemaker/internal/session"
	"github.com/mmynk/slidemaker/internal/storage"
)

// Results groups matches by kind. Every slice is non-nil.
type Results struct {
	Presentations []models.Presentation `json:"presentations"`
	Groups        []models.Group        `json:"groups"`
	Templates     []models.Template     `json:"templates"`
}

// Empty reports whether nothing matched.
func (r *Results) Empty() bool {
	return len(r.Presentations) == 0 && len(r.Groups) == 0 && len(r.Templates) == 0
}

// Searcher runs case-insensitive substring searches.
type Searcher struct {
	store storage.Store
	decks *presentations.Manager
}

// New creates a Searcher.
func New(store storage.Store, decks *presentations.Manager) *Searcher {
	return &Searcher{store: store, decks: decks}
}

// Search matches the owner's presentation titles, the names of groups the
// owner belongs to, and template names or categories. Guests never see
// groups. A blank query matches nothing.
func (s *Searcher) Search(ctx context.Context, owner, query string) (*Results, error) {
	res := &Results{
		Presentations: []models.Presentation{},
		Groups:        []models.Group{},
		Templates:     []models.Template{},
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return res, nil
	}
	match := func(fields ...string) bool {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), q) {
				return true
			}
		}
		return false
	}

	decks, err := s.decks.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	for _, p := range decks {
		if match(p.Title) {
			res.Presentations = append(res.Presentations, p)
		}
	}

	if owner != session.GuestOwner {
		groups, err := s.store.ListGroupsByUser(ctx, owner)
		if err != nil {
			return nil, err
		}
		for _, g := range groups {
			if match(g.Name) {
				res.Groups = append(res.Groups, g)
			}
		}
	}

	templates, err := s.store.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range templates {
		if match(t.Name, t.Category) {
			res.Templates = append(res.Templates, t)
		}
	}
	return res, nil
}
