package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/slidemaker/internal/editor"
	"github.com/mmynk/slidemaker/internal/ids"
	"github.com/mmynk/slidemaker/internal/session"
	"github.com/mmynk/slidemaker/internal/storage"
	"github.com/mmynk/slidemaker/pkg/api"
)

// SlideService implements the Connect SlideService on top of editor sessions.
// Every call opens a fresh session so it sees the latest stored group.
type SlideService struct {
	store   storage.Store
	ids     *ids.Generator
	handoff *session.Handoff
	logger  *slog.Logger
}

// NewSlideService creates a new SlideService.
func NewSlideService(store storage.Store, gen *ids.Generator, handoff *session.Handoff, logger *slog.Logger) *SlideService {
	return &SlideService{store: store, ids: gen, handoff: handoff, logger: logger}
}

func (s *SlideService) open(ctx context.Context, groupID string) (*editor.Session, error) {
	userID, err := requireGroupMember(ctx, s.store, groupID)
	if err != nil {
		return nil, err
	}
	sess, err := editor.Open(ctx, s.store, s.ids, groupID,
		editor.WithActor(userID),
		editor.WithLogger(s.logger),
	)
	if err != nil {
		return nil, toConnectError(err)
	}
	return sess, nil
}

// ListSlides returns the group's slides in order.
func (s *SlideService) ListSlides(ctx context.Context, req *connect.Request[api.GroupRequest]) (*connect.Response[api.SlidesResponse], error) {
	sess, err := s.open(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.SlidesResponse{Slides: sess.Slides()}), nil
}

// CreateSlide appends a new slide.
func (s *SlideService) CreateSlide(ctx context.Context, req *connect.Request[api.GroupRequest]) (*connect.Response[api.SlideResponse], error) {
	sess, err := s.open(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	slide, err := sess.CreateSlide(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	s.logger.Info("Slide created", "group_id", req.Msg.GroupID, "slide_id", slide.ID)
	return connect.NewResponse(&api.SlideResponse{Slide: slide}), nil
}

// DuplicateSlide inserts a copy right after the source slide.
func (s *SlideService) DuplicateSlide(ctx context.Context, req *connect.Request[api.SlideRequest]) (*connect.Response[api.SlideResponse], error) {
	sess, err := s.open(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	slide, err := sess.DuplicateSlide(ctx, req.Msg.SlideID)
	if err != nil {
		return nil, toConnectError(err)
	}
	s.logger.Info("Slide duplicated", "group_id", req.Msg.GroupID, "source_id", req.Msg.SlideID, "slide_id", slide.ID)
	return connect.NewResponse(&api.SlideResponse{Slide: slide}), nil
}

// AssignOwner sets or clears a slide's owner.
func (s *SlideService) AssignOwner(ctx context.Context, req *connect.Request[api.AssignOwnerRequest]) (*connect.Response[api.SlideResponse], error) {
	sess, err := s.open(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	slide, err := sess.AssignOwner(ctx, req.Msg.SlideID, req.Msg.OwnerID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.SlideResponse{Slide: slide}), nil
}

// SetStatus changes a slide's workflow status.
func (s *SlideService) SetStatus(ctx context.Context, req *connect.Request[api.SetStatusRequest]) (*connect.Response[api.SlideResponse], error) {
	sess, err := s.open(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	slide, err := sess.SetStatus(ctx, req.Msg.SlideID, req.Msg.Status)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.SlideResponse{Slide: slide}), nil
}

// SetTitle renames a slide.
func (s *SlideService) SetTitle(ctx context.Context, req *connect.Request[api.SetTitleRequest]) (*connect.Response[api.SlideResponse], error) {
	sess, err := s.open(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	slide, err := sess.SetTitle(ctx, req.Msg.SlideID, req.Msg.Title)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.SlideResponse{Slide: slide}), nil
}

// SaveContent stores the slide body written in the standalone editor.
func (s *SlideService) SaveContent(ctx context.Context, req *connect.Request[api.SaveContentRequest]) (*connect.Response[api.SlideResponse], error) {
	sess, err := s.open(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	slide, err := sess.SaveContent(ctx, req.Msg.SlideID, req.Msg.HTML, req.Msg.Text)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.SlideResponse{Slide: slide}), nil
}

// DeleteSlide removes a slide and returns the remaining ones.
func (s *SlideService) DeleteSlide(ctx context.Context, req *connect.Request[api.SlideRequest]) (*connect.Response[api.SlidesResponse], error) {
	sess, err := s.open(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	if err := sess.DeleteSlide(ctx, req.Msg.SlideID); err != nil {
		return nil, toConnectError(err)
	}
	s.logger.Info("Slide deleted", "group_id", req.Msg.GroupID, "slide_id", req.Msg.SlideID)
	return connect.NewResponse(&api.SlidesResponse{Slides: sess.Slides()}), nil
}

// AddComment attaches a comment by the caller to a slide.
func (s *SlideService) AddComment(ctx context.Context, req *connect.Request[api.AddCommentRequest]) (*connect.Response[api.CommentResponse], error) {
	sess, err := s.open(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	comment, err := sess.AddComment(ctx, req.Msg.SlideID, userID, req.Msg.Text)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.CommentResponse{Comment: comment}), nil
}

// OpenSlide hands a slide to the standalone editor and returns the transfer.
func (s *SlideService) OpenSlide(ctx context.Context, req *connect.Request[api.SlideRequest]) (*connect.Response[api.HandoffResponse], error) {
	sess, err := s.open(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	transfer, err := sess.Handoff(ctx, s.handoff.For(ownerOf(ctx)), req.Msg.SlideID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.HandoffResponse{Transfer: transfer}), nil
}
