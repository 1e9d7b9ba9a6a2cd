package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/slidemaker/internal/groups"
	"github.com/mmynk/slidemaker/internal/models"
	"github.com/mmynk/slidemaker/internal/storage"
	"github.com/mmynk/slidemaker/pkg/api"
)

// GroupService implements the Connect GroupService.
type GroupService struct {
	store   storage.Store
	manager *groups.Manager
}

// NewGroupService creates a new GroupService.
func NewGroupService(store storage.Store, manager *groups.Manager) *GroupService {
	return &GroupService{store: store, manager: manager}
}

// CreateGroup creates a new group with the caller as admin.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received", "name", req.Msg.Name, "user_id", userID)

	group, err := s.manager.Create(ctx, userID, req.Msg.Name)
	if err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group created", "group_id", group.ID)
	return connect.NewResponse(&api.GroupResponse{Group: group}), nil
}

// GetGroup opens a group the caller belongs to.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GroupRequest]) (*connect.Response[api.GroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, err := s.manager.Open(ctx, userID, req.Msg.GroupID)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GroupResponse{Group: group}), nil
}

// ListGroups lists the caller's groups.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	var list []models.Group
	if req.Msg.Limit > 0 {
		list, err = s.manager.RecentGroups(ctx, userID, req.Msg.Limit)
	} else {
		list, err = s.store.ListGroupsByUser(ctx, userID)
	}
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("ListGroups successful", "count", len(list))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: list}), nil
}

// RenameGroup changes a group's name.
func (s *GroupService) RenameGroup(ctx context.Context, req *connect.Request[api.RenameGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	userID, err := s.requireMember(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	group, err := s.manager.Rename(ctx, userID, req.Msg.GroupID, req.Msg.Name)
	if err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("Group renamed", "group_id", group.ID, "name", group.Name)
	return connect.NewResponse(&api.GroupResponse{Group: group}), nil
}

// DuplicateGroup copies a group's name, members and roles.
func (s *GroupService) DuplicateGroup(ctx context.Context, req *connect.Request[api.GroupRequest]) (*connect.Response[api.GroupResponse], error) {
	userID, err := s.requireMember(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	group, err := s.manager.Duplicate(ctx, userID, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("Group duplicated", "source_id", req.Msg.GroupID, "group_id", group.ID)
	return connect.NewResponse(&api.GroupResponse{Group: group}), nil
}

// AddMember adds an existing user to a group.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.MemberRequest]) (*connect.Response[api.GroupResponse], error) {
	userID, err := s.requireMember(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	group, err := s.manager.AddMember(ctx, userID, req.Msg.GroupID, req.Msg.UserID)
	if err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("Member added", "group_id", group.ID, "member_id", req.Msg.UserID)
	return connect.NewResponse(&api.GroupResponse{Group: group}), nil
}

// RemoveMember removes a member other than the creator.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.MemberRequest]) (*connect.Response[api.GroupResponse], error) {
	userID, err := s.requireMember(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	group, err := s.manager.RemoveMember(ctx, userID, req.Msg.GroupID, req.Msg.UserID)
	if err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("Member removed", "group_id", group.ID, "member_id", req.Msg.UserID)
	return connect.NewResponse(&api.GroupResponse{Group: group}), nil
}

// ListMembers resolves a group's members to public user records.
func (s *GroupService) ListMembers(ctx context.Context, req *connect.Request[api.GroupRequest]) (*connect.Response[api.MembersResponse], error) {
	if _, err := s.requireMember(ctx, req.Msg.GroupID); err != nil {
		return nil, err
	}
	members, err := s.manager.Members(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}
	out := make([]*api.User, 0, len(members))
	for i := range members {
		out = append(out, api.NewUser(&members[i]))
	}
	return connect.NewResponse(&api.MembersResponse{Members: out}), nil
}

// ForgetRecentGroup removes a group from the caller's recents.
func (s *GroupService) ForgetRecentGroup(ctx context.Context, req *connect.Request[api.GroupRequest]) (*connect.Response[api.RecentsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	r, err := s.manager.ForgetRecent(ctx, userID, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.RecentsResponse{Recents: r}), nil
}

// requireMember returns the caller's ID if they belong to the group.
func (s *GroupService) requireMember(ctx context.Context, groupID string) (string, error) {
	return requireGroupMember(ctx, s.store, groupID)
}
