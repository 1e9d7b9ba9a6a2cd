package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/slidemaker/internal/auth"
	"github.com/mmynk/slidemaker/internal/editor"
	"github.com/mmynk/slidemaker/internal/groups"
	"github.com/mmynk/slidemaker/internal/presentations"
	"github.com/mmynk/slidemaker/internal/storage"
	"github.com/mmynk/slidemaker/internal/templates"
)

var errorCodes = []struct {
	code connect.Code
	errs []error
}{
	{connect.CodeInvalidArgument, []error{
		auth.ErrWeakPassword, auth.ErrMissingFields, auth.ErrPasswordMismatch,
		groups.ErrEmptyName, templates.ErrEmptyName,
		editor.ErrInvalidStatus, editor.ErrEmptyComment,
		errInvalidKind,
	}},
	{connect.CodeNotFound, []error{
		editor.ErrGroupNotFound, editor.ErrSlideNotFound,
		groups.ErrGroupNotFound, groups.ErrUserNotFound, groups.ErrNotMember,
		auth.ErrUserNotFound, templates.ErrNotFound,
		presentations.ErrNotFound, presentations.ErrSlideNotFound,
	}},
	{connect.CodeAlreadyExists, []error{auth.ErrEmailExists, groups.ErrAlreadyMember}},
	{connect.CodeUnauthenticated, []error{auth.ErrInvalidCredentials, auth.ErrInvalidToken, auth.ErrMissingToken}},
	{connect.CodePermissionDenied, []error{groups.ErrNotGroupMember}},
	{connect.CodeFailedPrecondition, []error{editor.ErrLastSlide, presentations.ErrLastSlide, groups.ErrRemoveCreator}},
	{connect.CodeAborted, []error{storage.ErrVersionConflict}},
}

// toConnectError maps a domain error to the matching Connect code.
// Unknown errors become CodeInternal.
func toConnectError(err error) *connect.Error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}
	for _, entry := range errorCodes {
		for _, target := range entry.errs {
			if errors.Is(err, target) {
				return connect.NewError(entry.code, err)
			}
		}
	}
	return connect.NewError(connect.CodeInternal, err)
}
