// Package presentations stores standalone decks, one JSON list per owner
// under "presentations_<owner>".
package presentations

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/slidemaker/internal/ids"
	"github.com/mmynk/slidemaker/internal/models"
	"github.com/mmynk/slidemaker/internal/recents"
	"github.com/mmynk/slidemaker/internal/session"
	"github.com/mmynk/slidemaker/internal/storage"
	"github.com/mmynk/slidemaker/internal/storage/tables"
)

const keyPrefix = "presentations_"

// DefaultTitle names presentations saved without a title.
const DefaultTitle = "Untitled"

var (
	ErrNotFound      = errors.New("presentation not found")
	ErrSlideNotFound = errors.New("slide not found")
	ErrLastSlide     = errors.New("cannot delete the last slide")
)

// Key returns the store key of an owner's presentations.
func Key(owner string) string {
	return keyPrefix + owner
}

// SlidePatch is a shallow update of a deck slide.
type SlidePatch struct {
	Title   *string
	Content *string
}

// Manager reads and writes presentations.
type Manager struct {
	kv       storage.KeyValue
	ids      *ids.Generator
	tracker  *recents.Tracker
	blobOpts []tables.Option
	now      func() time.Time
}

// NewManager creates a Manager. opts configure the underlying documents.
func NewManager(kv storage.KeyValue, gen *ids.Generator, tracker *recents.Tracker, opts ...tables.Option) *Manager {
	return &Manager{kv: kv, ids: gen, tracker: tracker, blobOpts: opts, now: time.Now}
}

func (m *Manager) deck(owner string) *tables.Blob[[]models.Presentation] {
	return tables.NewBlob[[]models.Presentation](m.kv, Key(owner), m.blobOpts...)
}

func (m *Manager) timestamp() time.Time {
	return m.now().UTC().Truncate(time.Millisecond)
}

// List returns the owner's presentations, most recently saved first.
func (m *Manager) List(ctx context.Context, owner string) ([]models.Presentation, error) {
	list, err := m.deck(owner).Load(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return []models.Presentation{}, nil
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Date.After(list[j].Date) })
	return list, nil
}

// Get returns the presentation, or nil when the owner has none with that ID.
func (m *Manager) Get(ctx context.Context, owner, id string) (*models.Presentation, error) {
	list, err := m.deck(owner).Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, nil
}

// Save inserts or replaces p by ID. A new presentation gets a UUID, a blank
// title becomes DefaultTitle and an empty deck gets "Slide 1".
func (m *Manager) Save(ctx context.Context, owner string, p models.Presentation) (*models.Presentation, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		p.Title = DefaultTitle
	}
	if len(p.Slides) == 0 {
		p.Slides = []models.DeckSlide{m.newSlide(1)}
	}
	p.Date = m.timestamp()

	err := m.deck(owner).Mutate(ctx, func(list *[]models.Presentation) (bool, error) {
		for i := range *list {
			if (*list)[i].ID == p.ID {
				(*list)[i] = p
				return true, nil
			}
		}
		*list = append(*list, p)
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save presentation: %w", err)
	}
	if err := m.touch(ctx, owner, p.ID); err != nil {
		return nil, err
	}
	return &p, nil
}

// Rename changes the title; blank becomes DefaultTitle.
func (m *Manager) Rename(ctx context.Context, owner, id, title string) (*models.Presentation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}
	return m.update(ctx, owner, id, func(p *models.Presentation) error {
		p.Title = title
		return nil
	})
}

// Duplicate stores a copy titled "<title> (Copy)" with a new ID.
func (m *Manager) Duplicate(ctx context.Context, owner, id string) (*models.Presentation, error) {
	src, err := m.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, ErrNotFound
	}
	title := src.Title
	if title == "" {
		title = DefaultTitle
	}
	cp := models.Presentation{
		Title:  title + " (Copy)",
		Slides: append([]models.DeckSlide(nil), src.Slides...),
	}
	return m.Save(ctx, owner, cp)
}

// Delete removes the presentation and drops it from the owner's recents.
func (m *Manager) Delete(ctx context.Context, owner, id string) (bool, error) {
	var deleted bool
	err := m.deck(owner).Mutate(ctx, func(list *[]models.Presentation) (bool, error) {
		deleted = false
		kept := (*list)[:0]
		for _, p := range *list {
			if p.ID == id {
				deleted = true
				continue
			}
			kept = append(kept, p)
		}
		*list = kept
		return deleted, nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete presentation: %w", err)
	}
	if deleted && owner != session.GuestOwner {
		if _, err := m.tracker.Forget(ctx, owner, recents.KindPresentations, id); err != nil {
			return true, err
		}
	}
	return deleted, nil
}

// AddSlide appends "Slide N" to the deck.
func (m *Manager) AddSlide(ctx context.Context, owner, id string) (*models.DeckSlide, error) {
	var added models.DeckSlide
	_, err := m.update(ctx, owner, id, func(p *models.Presentation) error {
		added = m.newSlide(len(p.Slides) + 1)
		p.Slides = append(p.Slides, added)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

// DuplicateSlide inserts a copy of the slide right after it.
func (m *Manager) DuplicateSlide(ctx context.Context, owner, id, slideID string) (*models.DeckSlide, error) {
	var dup models.DeckSlide
	_, err := m.update(ctx, owner, id, func(p *models.Presentation) error {
		i := slideIndex(p, slideID)
		if i < 0 {
			return ErrSlideNotFound
		}
		dup = models.DeckSlide{
			ID:      m.ids.SlideID(),
			Title:   p.Slides[i].Title + " (Copy)",
			Content: p.Slides[i].Content,
		}
		p.Slides = append(p.Slides[:i+1], append([]models.DeckSlide{dup}, p.Slides[i+1:]...)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dup, nil
}

// UpdateSlide applies patch to one slide.
func (m *Manager) UpdateSlide(ctx context.Context, owner, id, slideID string, patch SlidePatch) (*models.DeckSlide, error) {
	var out models.DeckSlide
	_, err := m.update(ctx, owner, id, func(p *models.Presentation) error {
		i := slideIndex(p, slideID)
		if i < 0 {
			return ErrSlideNotFound
		}
		if patch.Title != nil {
			p.Slides[i].Title = *patch.Title
		}
		if patch.Content != nil {
			p.Slides[i].Content = *patch.Content
		}
		out = p.Slides[i]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSlide removes a slide. A deck always keeps at least one slide.
func (m *Manager) DeleteSlide(ctx context.Context, owner, id, slideID string) (*models.Presentation, error) {
	return m.update(ctx, owner, id, func(p *models.Presentation) error {
		i := slideIndex(p, slideID)
		if i < 0 {
			return ErrSlideNotFound
		}
		if len(p.Slides) == 1 {
			return ErrLastSlide
		}
		p.Slides = append(p.Slides[:i], p.Slides[i+1:]...)
		return nil
	})
}

// update applies fn to one presentation and bumps its date.
func (m *Manager) update(ctx context.Context, owner, id string, fn func(*models.Presentation) error) (*models.Presentation, error) {
	var out *models.Presentation
	err := m.deck(owner).Mutate(ctx, func(list *[]models.Presentation) (bool, error) {
		out = nil
		for i := range *list {
			p := &(*list)[i]
			if p.ID != id {
				continue
			}
			if err := fn(p); err != nil {
				return false, err
			}
			p.Date = m.timestamp()
			cp := *p
			out = &cp
			return true, nil
		}
		return false, ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Manager) touch(ctx context.Context, owner, id string) error {
	if owner == session.GuestOwner {
		return nil
	}
	_, err := m.tracker.Touch(ctx, owner, recents.KindPresentations, id)
	return err
}

func (m *Manager) newSlide(n int) models.DeckSlide {
	return models.DeckSlide{ID: m.ids.SlideID(), Title: fmt.Sprintf("Slide %d", n)}
}

func slideIndex(p *models.Presentation, slideID string) int {
	for i := range p.Slides {
		if p.Slides[i].ID == slideID {
			return i
		}
	}
	return -1
}
