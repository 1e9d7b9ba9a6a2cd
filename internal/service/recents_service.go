package service

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"github.com/mmynk/slidemaker/internal/models"
	"github.com/mmynk/slidemaker/internal/recents"
	"github.com/mmynk/slidemaker/pkg/api"
)

var errInvalidKind = errors.New("unknown recents kind")

// RecentsService implements the Connect RecentsService.
type RecentsService struct {
	tracker *recents.Tracker
}

// NewRecentsService creates a new RecentsService.
func NewRecentsService(tracker *recents.Tracker) *RecentsService {
	return &RecentsService{tracker: tracker}
}

// GetRecents returns the caller's recents, with defaults when none exist.
func (s *RecentsService) GetRecents(ctx context.Context, _ *connect.Request[api.Empty]) (*connect.Response[api.RecentsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	r, err := s.tracker.Get(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.RecentsResponse{Recents: r}), nil
}

// Touch moves an item to the front of one recents list.
func (s *RecentsService) Touch(ctx context.Context, req *connect.Request[api.RecentRequest]) (*connect.Response[api.RecentsResponse], error) {
	return s.apply(ctx, req.Msg, s.tracker.Touch)
}

// Forget removes an item from one recents list.
func (s *RecentsService) Forget(ctx context.Context, req *connect.Request[api.RecentRequest]) (*connect.Response[api.RecentsResponse], error) {
	return s.apply(ctx, req.Msg, s.tracker.Forget)
}

// SetLastActiveGroup records or clears the caller's last active group.
func (s *RecentsService) SetLastActiveGroup(ctx context.Context, req *connect.Request[api.LastActiveGroupRequest]) (*connect.Response[api.RecentsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	r, err := s.tracker.SetLastActiveGroup(ctx, userID, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.RecentsResponse{Recents: r}), nil
}

type recentsOp func(ctx context.Context, userID string, kind recents.Kind, id string) (*models.Recents, error)

func (s *RecentsService) apply(ctx context.Context, msg *api.RecentRequest, op recentsOp) (*connect.Response[api.RecentsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	kind := recents.Kind(msg.Kind)
	if !kind.Valid() {
		return nil, toConnectError(fmt.Errorf("%w: %q", errInvalidKind, msg.Kind))
	}
	r, err := op(ctx, userID, kind, msg.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.RecentsResponse{Recents: r}), nil
}
