// Package editor implements the editing session for one group's slide deck.
//
// A Session mirrors the group's slides into a working copy. Every mutation
// re-reads the stored group, changes one slide, writes the whole group back
// and then refreshes the working copy. A failed mutation leaves the session
// exactly as it was.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmynk/slidemaker/internal/ids"
	"github.com/mmynk/slidemaker/internal/models"
	"github.com/mmynk/slidemaker/internal/session"
	"github.com/mmynk/slidemaker/internal/storage"
)

var (
	ErrGroupNotFound = errors.New("group not found")
	ErrSlideNotFound = errors.New("slide not found")
	ErrLastSlide     = errors.New("cannot delete the last slide")
	ErrInvalidStatus = errors.New("invalid slide status")
	ErrEmptyComment  = errors.New("comment text is empty")
)

// Session is the editing state of one group. It is not safe for concurrent use.
type Session struct {
	store  storage.Store
	ids    *ids.Generator
	now    func() time.Time
	actor  string
	logger *slog.Logger

	groupID  string
	slideID  string
	selected int
	slides   []models.Slide
}

// Option configures a Session.
type Option func(*Session)

// WithActor sets the user ID recorded in activity entries.
func WithActor(userID string) Option {
	return func(s *Session) { s.actor = userID }
}

// WithClock overrides the time source for comments and activity entries.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Open loads the group and starts a session on its first slide. A group
// stored without slides gets "Slide 1" persisted before Open returns.
func Open(ctx context.Context, store storage.Store, gen *ids.Generator, groupID string, opts ...Option) (*Session, error) {
	s := &Session{
		store:    store,
		ids:      gen,
		now:      time.Now,
		logger:   slog.Default(),
		selected: -1,
	}
	for _, opt := range opts {
		opt(s)
	}

	group, err := store.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group: %w", err)
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	if len(group.Slides) == 0 {
		group, err = store.MutateGroup(ctx, groupID, func(g *models.Group) error {
			if len(g.Slides) == 0 {
				g.Slides = append(g.Slides, s.newSlide(1))
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to add first slide: %w", err)
		}
		if group == nil {
			return nil, ErrGroupNotFound
		}
		s.logger.Info("Added first slide to empty group", "group_id", groupID)
	}

	s.groupID = groupID
	s.refresh(group)
	return s, nil
}

// GroupID returns the ID of the group being edited.
func (s *Session) GroupID() string { return s.groupID }

// Slides returns a copy of the working slides.
func (s *Session) Slides() []models.Slide {
	return append([]models.Slide(nil), s.slides...)
}

// Current returns the selected slide, or nil when the deck is empty.
func (s *Session) Current() *models.Slide {
	if s.selected < 0 || s.selected >= len(s.slides) {
		return nil
	}
	sl := s.slides[s.selected]
	return &sl
}

// Select makes the slide with the given ID current.
func (s *Session) Select(slideID string) error {
	for i := range s.slides {
		if s.slides[i].ID == slideID {
			s.selected = i
			s.slideID = slideID
			return nil
		}
	}
	return ErrSlideNotFound
}

// CreateSlide appends "Slide N" and selects it.
func (s *Session) CreateSlide(ctx context.Context) (*models.Slide, error) {
	var created models.Slide
	_, err := s.mutate(ctx, func(g *models.Group) (string, string, error) {
		created = s.newSlide(len(g.Slides) + 1)
		g.Slides = append(g.Slides, created)
		return models.ActivitySlideCreated, fmt.Sprintf("Slide %q was created", created.Title), nil
	})
	if err != nil {
		return nil, err
	}
	_ = s.Select(created.ID)
	return &created, nil
}

// DuplicateSlide inserts a copy right after the source slide and selects it.
// The copy keeps the content but starts unowned, in progress and without comments.
func (s *Session) DuplicateSlide(ctx context.Context, slideID string) (*models.Slide, error) {
	var dup models.Slide
	_, err := s.mutate(ctx, func(g *models.Group) (string, string, error) {
		i := g.SlideIndex(slideID)
		if i < 0 {
			return "", "", ErrSlideNotFound
		}
		src := g.Slides[i]
		dup = models.Slide{
			ID:       s.ids.SlideID(),
			Title:    src.Title + " (Copy)",
			Status:   models.StatusInProgress,
			Content:  src.Content,
			Comments: []models.Comment{},
		}
		g.Slides = append(g.Slides[:i+1], append([]models.Slide{dup}, g.Slides[i+1:]...)...)
		return models.ActivitySlideCreated, fmt.Sprintf("Slide %q was duplicated", src.Title), nil
	})
	if err != nil {
		return nil, err
	}
	_ = s.Select(dup.ID)
	return &dup, nil
}

// AssignOwner sets the slide owner. A nil userID unassigns the slide.
func (s *Session) AssignOwner(ctx context.Context, slideID string, userID *string) (*models.Slide, error) {
	return s.updateSlide(ctx, slideID, func(sl *models.Slide) (string, error) {
		if userID == nil {
			sl.Owner = nil
			return fmt.Sprintf("Slide %q was unassigned", sl.Title), nil
		}
		owner := *userID
		sl.Owner = &owner
		return fmt.Sprintf("Slide %q was assigned to %s", sl.Title, owner), nil
	})
}

// SetStatus moves the slide between in-progress and completed.
func (s *Session) SetStatus(ctx context.Context, slideID string, status models.SlideStatus) (*models.Slide, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.updateSlide(ctx, slideID, func(sl *models.Slide) (string, error) {
		sl.Status = status
		return fmt.Sprintf("Slide %q was marked %s", sl.Title, status), nil
	})
}

// SetTitle renames the slide. A blank title falls back to "Slide N" by position.
func (s *Session) SetTitle(ctx context.Context, slideID, title string) (*models.Slide, error) {
	title = strings.TrimSpace(title)
	var out *models.Slide
	_, err := s.mutate(ctx, func(g *models.Group) (string, string, error) {
		i := g.SlideIndex(slideID)
		if i < 0 {
			return "", "", ErrSlideNotFound
		}
		name := title
		if name == "" {
			name = defaultTitle(i + 1)
		}
		old := g.Slides[i].Title
		g.Slides[i].Title = name
		sl := g.Slides[i]
		out = &sl
		return models.ActivitySlideUpdated, fmt.Sprintf("Slide %q was renamed to %q", old, name), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SaveContent stores the editor body of the slide.
func (s *Session) SaveContent(ctx context.Context, slideID, html, text string) (*models.Slide, error) {
	return s.updateSlide(ctx, slideID, func(sl *models.Slide) (string, error) {
		sl.Content = models.SlideContent{HTML: html, Text: text}
		at := s.timestamp()
		sl.UpdatedAt = &at
		return fmt.Sprintf("Slide %q was edited", sl.Title), nil
	})
}

// DeleteSlide removes the slide. The last remaining slide cannot be deleted.
func (s *Session) DeleteSlide(ctx context.Context, slideID string) error {
	_, err := s.mutate(ctx, func(g *models.Group) (string, string, error) {
		i := g.SlideIndex(slideID)
		if i < 0 {
			return "", "", ErrSlideNotFound
		}
		if len(g.Slides) == 1 {
			return "", "", ErrLastSlide
		}
		title := g.Slides[i].Title
		g.Slides = append(g.Slides[:i], g.Slides[i+1:]...)
		return models.ActivitySlideDeleted, fmt.Sprintf("Slide %q was deleted", title), nil
	})
	return err
}

// AddComment appends a trimmed, non-empty comment to the slide thread.
func (s *Session) AddComment(ctx context.Context, slideID, authorID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyComment
	}
	var comment models.Comment
	_, err := s.mutate(ctx, func(g *models.Group) (string, string, error) {
		i := g.SlideIndex(slideID)
		if i < 0 {
			return "", "", ErrSlideNotFound
		}
		comment = models.Comment{
			ID:        s.ids.CommentID(),
			AuthorID:  authorID,
			Text:      text,
			Timestamp: s.timestamp(),
		}
		g.Slides[i].Comments = append(g.Slides[i].Comments, comment)
		return models.ActivityCommentAdded, fmt.Sprintf("Comment added to slide %q", g.Slides[i].Title), nil
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Handoff passes the slide to the standalone editor screen.
func (s *Session) Handoff(ctx context.Context, h *session.Handoff, slideID string) (*session.Transfer, error) {
	for i := range s.slides {
		if s.slides[i].ID == slideID {
			return h.OpenGroupSlide(ctx, s.groupID, &s.slides[i])
		}
	}
	return nil, ErrSlideNotFound
}

// updateSlide applies fn to one slide and logs a slide_updated activity.
func (s *Session) updateSlide(ctx context.Context, slideID string, fn func(*models.Slide) (string, error)) (*models.Slide, error) {
	var out *models.Slide
	_, err := s.mutate(ctx, func(g *models.Group) (string, string, error) {
		i := g.SlideIndex(slideID)
		if i < 0 {
			return "", "", ErrSlideNotFound
		}
		msg, err := fn(&g.Slides[i])
		if err != nil {
			return "", "", err
		}
		sl := g.Slides[i]
		out = &sl
		return models.ActivitySlideUpdated, msg, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// mutate runs fn inside one read-modify-write of the group and appends the
// activity it describes. The working copy is refreshed only on success.
func (s *Session) mutate(ctx context.Context, fn func(*models.Group) (string, string, error)) (*models.Group, error) {
	group, err := s.store.MutateGroup(ctx, s.groupID, func(g *models.Group) error {
		kind, msg, err := fn(g)
		if err != nil {
			return err
		}
		g.ActivityLog = append(g.ActivityLog, models.Activity{
			Type:      kind,
			UserID:    s.actor,
			Message:   msg,
			Timestamp: s.timestamp(),
		})
		return nil
	})
	if err != nil {
		for _, sentinel := range []error{ErrSlideNotFound, ErrLastSlide} {
			if errors.Is(err, sentinel) {
				return nil, sentinel
			}
		}
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	s.refresh(group)
	return group, nil
}

// refresh mirrors the stored slides and keeps the selection on the same
// slide, or on the nearest position when that slide is gone.
func (s *Session) refresh(g *models.Group) {
	s.slides = append([]models.Slide(nil), g.Slides...)
	if i := g.SlideIndex(s.slideID); i >= 0 {
		s.selected = i
		return
	}
	if len(s.slides) == 0 {
		s.selected, s.slideID = -1, ""
		return
	}
	switch {
	case s.selected < 0:
		s.selected = 0
	case s.selected >= len(s.slides):
		s.selected = len(s.slides) - 1
	}
	s.slideID = s.slides[s.selected].ID
}

func (s *Session) newSlide(n int) models.Slide {
	return models.Slide{
		ID:       s.ids.SlideID(),
		Title:    defaultTitle(n),
		Status:   models.StatusInProgress,
		Comments: []models.Comment{},
	}
}

func (s *Session) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func defaultTitle(n int) string {
	return fmt.Sprintf("Slide %d", n)
}
