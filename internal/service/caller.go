package service

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/slidemaker/internal/auth"
	"github.com/mmynk/slidemaker/internal/groups"
	"github.com/mmynk/slidemaker/internal/middleware"
	"github.com/mmynk/slidemaker/internal/session"
	"github.com/mmynk/slidemaker/internal/storage"
)

// requireGroupMember returns the caller's ID if they belong to the group.
func requireGroupMember(ctx context.Context, store storage.Store, groupID string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	group, err := store.GetGroupByID(ctx, groupID)
	if err != nil {
		return "", toConnectError(err)
	}
	if group == nil {
		return "", connect.NewError(connect.CodeNotFound, groups.ErrGroupNotFound)
	}
	if !group.HasMember(userID) {
		return "", connect.NewError(connect.CodePermissionDenied, groups.ErrNotGroupMember)
	}
	return userID, nil
}

// callerID returns the authenticated user or an Unauthenticated error.
func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// ownerOf returns the key owner for per-viewer data: the caller, or the
// guest owner when unauthenticated.
func ownerOf(ctx context.Context) string {
	if userID := middleware.GetUserID(ctx); userID != "" {
		return userID
	}
	return session.GuestOwner
}
