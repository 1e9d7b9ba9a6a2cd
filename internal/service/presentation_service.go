package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/slidemaker/internal/models"
	"github.com/mmynk/slidemaker/internal/presentations"
	"github.com/mmynk/slidemaker/internal/recents"
	"github.com/mmynk/slidemaker/internal/session"
	"github.com/mmynk/slidemaker/pkg/api"
)

// PresentationService implements the Connect PresentationService. Decks are
// stored per viewer; unauthenticated callers share the guest decks.
type PresentationService struct {
	decks   *presentations.Manager
	tracker *recents.Tracker
	handoff *session.Handoff
}

// NewPresentationService creates a new PresentationService.
func NewPresentationService(decks *presentations.Manager, tracker *recents.Tracker, handoff *session.Handoff) *PresentationService {
	return &PresentationService{decks: decks, tracker: tracker, handoff: handoff}
}

// List returns the caller's decks, newest first.
func (s *PresentationService) List(ctx context.Context, _ *connect.Request[api.Empty]) (*connect.Response[api.ListPresentationsResponse], error) {
	list, err := s.decks.List(ctx, ownerOf(ctx))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ListPresentationsResponse{Presentations: list}), nil
}

// Get returns one deck.
func (s *PresentationService) Get(ctx context.Context, req *connect.Request[api.PresentationRequest]) (*connect.Response[api.PresentationResponse], error) {
	p, err := s.find(ctx, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.PresentationResponse{Presentation: p}), nil
}

// Save inserts or replaces a deck.
func (s *PresentationService) Save(ctx context.Context, req *connect.Request[api.SavePresentationRequest]) (*connect.Response[api.PresentationResponse], error) {
	owner := ownerOf(ctx)
	p, err := s.decks.Save(ctx, owner, req.Msg.Presentation)
	if err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("Presentation saved", "owner", owner, "id", p.ID, "slides", len(p.Slides))
	return connect.NewResponse(&api.PresentationResponse{Presentation: p}), nil
}

// Rename changes a deck's title.
func (s *PresentationService) Rename(ctx context.Context, req *connect.Request[api.RenamePresentationRequest]) (*connect.Response[api.PresentationResponse], error) {
	p, err := s.decks.Rename(ctx, ownerOf(ctx), req.Msg.ID, req.Msg.Title)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.PresentationResponse{Presentation: p}), nil
}

// Duplicate copies a deck under a new ID.
func (s *PresentationService) Duplicate(ctx context.Context, req *connect.Request[api.PresentationRequest]) (*connect.Response[api.PresentationResponse], error) {
	p, err := s.decks.Duplicate(ctx, ownerOf(ctx), req.Msg.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.PresentationResponse{Presentation: p}), nil
}

// Delete removes a deck. Deleting an unknown deck reports Deleted false.
func (s *PresentationService) Delete(ctx context.Context, req *connect.Request[api.PresentationRequest]) (*connect.Response[api.DeleteResponse], error) {
	deleted, err := s.decks.Delete(ctx, ownerOf(ctx), req.Msg.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.DeleteResponse{Deleted: deleted}), nil
}

// Open hands a deck to the editor and records it in the caller's recents.
func (s *PresentationService) Open(ctx context.Context, req *connect.Request[api.PresentationRequest]) (*connect.Response[api.HandoffResponse], error) {
	p, err := s.find(ctx, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	owner := ownerOf(ctx)
	if owner != session.GuestOwner {
		if _, err := s.tracker.Touch(ctx, owner, recents.KindPresentations, p.ID); err != nil {
			return nil, toConnectError(err)
		}
	}
	transfer, err := s.handoff.For(owner).OpenPresentation(ctx, p)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.HandoffResponse{Transfer: transfer}), nil
}

// AddSlide appends a blank slide to a deck.
func (s *PresentationService) AddSlide(ctx context.Context, req *connect.Request[api.PresentationRequest]) (*connect.Response[api.DeckSlideResponse], error) {
	slide, err := s.decks.AddSlide(ctx, ownerOf(ctx), req.Msg.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.DeckSlideResponse{Slide: slide}), nil
}

// DuplicateSlide inserts a copy of a slide right after it.
func (s *PresentationService) DuplicateSlide(ctx context.Context, req *connect.Request[api.DeckSlideRequest]) (*connect.Response[api.DeckSlideResponse], error) {
	slide, err := s.decks.DuplicateSlide(ctx, ownerOf(ctx), req.Msg.ID, req.Msg.SlideID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.DeckSlideResponse{Slide: slide}), nil
}

// UpdateSlide changes a slide's title or content.
func (s *PresentationService) UpdateSlide(ctx context.Context, req *connect.Request[api.UpdateDeckSlideRequest]) (*connect.Response[api.DeckSlideResponse], error) {
	slide, err := s.decks.UpdateSlide(ctx, ownerOf(ctx), req.Msg.ID, req.Msg.SlideID, presentations.SlidePatch{
		Title:   req.Msg.Title,
		Content: req.Msg.Content,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.DeckSlideResponse{Slide: slide}), nil
}

// DeleteSlide removes a slide. The last slide of a deck cannot be removed.
func (s *PresentationService) DeleteSlide(ctx context.Context, req *connect.Request[api.DeckSlideRequest]) (*connect.Response[api.PresentationResponse], error) {
	p, err := s.decks.DeleteSlide(ctx, ownerOf(ctx), req.Msg.ID, req.Msg.SlideID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.PresentationResponse{Presentation: p}), nil
}

func (s *PresentationService) find(ctx context.Context, id string) (*models.Presentation, error) {
	p, err := s.decks.Get(ctx, ownerOf(ctx), id)
	if err != nil {
		return nil, toConnectError(err)
	}
	if p == nil {
		return nil, connect.NewError(connect.CodeNotFound, presentations.ErrNotFound)
	}
	return p, nil
}
