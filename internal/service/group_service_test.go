package service

import (
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/slidemaker/internal/models"
	"github.com/mmynk/slidemaker/pkg/api"
	"github.com/mmynk/slidemaker/pkg/api/apiconnect"
)

func createGroup(t *testing.T, ts *testServer, token, name string) *models.Group {
	t.Helper()
	resp, err := call[api.CreateGroupRequest, api.GroupResponse](t, ts, token, apiconnect.GroupServiceCreateGroupProcedure, &api.CreateGroupRequest{Name: name})
	require.NoError(t, err)
	require.NotNil(t, resp.Group)
	return resp.Group
}

func TestCreateGroup(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.register(t, "Ada", "ada@example.com")

	_, err := call[api.CreateGroupRequest, api.GroupResponse](t, ts, "", apiconnect.GroupServiceCreateGroupProcedure, &api.CreateGroupRequest{Name: "Roommates"})
	requireCode(t, connect.CodeUnauthenticated, err)

	_, err = call[api.CreateGroupRequest, api.GroupResponse](t, ts, token, apiconnect.GroupServiceCreateGroupProcedure, &api.CreateGroupRequest{Name: "   "})
	requireCode(t, connect.CodeInvalidArgument, err)

	group := createGroup(t, ts, token, "Roommates")
	assert.Regexp(t, `^GRP\d+[A-Z0-9]{5}$`, group.ID)
	assert.Equal(t, "Roommates", group.Name)
	assert.Equal(t, userID, group.CreatedBy)
	assert.Equal(t, []string{userID}, group.Members)
	require.Len(t, group.Roles, 1)
	assert.Equal(t, models.RoleAdmin, group.Roles[0].Role)
	require.Len(t, group.ActivityLog, 1)
	assert.Equal(t, models.ActivityGroupCreated, group.ActivityLog[0].Type)

	recent, err := call[api.Empty, api.RecentsResponse](t, ts, token, apiconnect.RecentsServiceGetRecentsProcedure, &api.Empty{})
	require.NoError(t, err)
	assert.Equal(t, []string{group.ID}, recent.Recents.RecentGroups)
}

func TestGetGroup(t *testing.T) {
	ts := setupTestServer(t)
	owner, _ := ts.register(t, "Ada", "ada@example.com")
	stranger, _ := ts.register(t, "Bo", "bo@example.com")
	group := createGroup(t, ts, owner, "Team A")

	resp, err := call[api.GroupRequest, api.GroupResponse](t, ts, owner, apiconnect.GroupServiceGetGroupProcedure, &api.GroupRequest{GroupID: group.ID})
	require.NoError(t, err)
	assert.Equal(t, group.ID, resp.Group.ID)

	recent, err := call[api.Empty, api.RecentsResponse](t, ts, owner, apiconnect.RecentsServiceGetRecentsProcedure, &api.Empty{})
	require.NoError(t, err)
	require.NotNil(t, recent.Recents.LastActiveGroup)
	assert.Equal(t, group.ID, *recent.Recents.LastActiveGroup)

	_, err = call[api.GroupRequest, api.GroupResponse](t, ts, stranger, apiconnect.GroupServiceGetGroupProcedure, &api.GroupRequest{GroupID: group.ID})
	requireCode(t, connect.CodePermissionDenied, err)

	_, err = call[api.GroupRequest, api.GroupResponse](t, ts, owner, apiconnect.GroupServiceGetGroupProcedure, &api.GroupRequest{GroupID: "GRP-missing"})
	requireCode(t, connect.CodeNotFound, err)
}

func TestListGroups(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "Ada", "ada@example.com")
	other, _ := ts.register(t, "Bo", "bo@example.com")

	g1 := createGroup(t, ts, token, "One")
	g2 := createGroup(t, ts, token, "Two")
	g3 := createGroup(t, ts, token, "Three")
	createGroup(t, ts, other, "Not mine")

	all, err := call[api.ListGroupsRequest, api.ListGroupsResponse](t, ts, token, apiconnect.GroupServiceListGroupsProcedure, &api.ListGroupsRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Groups, 3)

	_, err = call[api.GroupRequest, api.GroupResponse](t, ts, token, apiconnect.GroupServiceGetGroupProcedure, &api.GroupRequest{GroupID: g1.ID})
	require.NoError(t, err)

	recent, err := call[api.ListGroupsRequest, api.ListGroupsResponse](t, ts, token, apiconnect.GroupServiceListGroupsProcedure, &api.ListGroupsRequest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, recent.Groups, 2)
	assert.Equal(t, g1.ID, recent.Groups[0].ID)
	assert.Equal(t, g3.ID, recent.Groups[1].ID)

	forgot, err := call[api.GroupRequest, api.RecentsResponse](t, ts, token, apiconnect.GroupServiceForgetRecentGroupProcedure, &api.GroupRequest{GroupID: g1.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{g3.ID, g2.ID}, forgot.Recents.RecentGroups)
	assert.Nil(t, forgot.Recents.LastActiveGroup)
}

func TestRenameAndDuplicateGroup(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.register(t, "Ada", "ada@example.com")
	group := createGroup(t, ts, token, "Draft")

	renamed, err := call[api.RenameGroupRequest, api.GroupResponse](t, ts, token, apiconnect.GroupServiceRenameGroupProcedure, &api.RenameGroupRequest{
		GroupID: group.ID, Name: "Final",
	})
	require.NoError(t, err)
	assert.Equal(t, "Final", renamed.Group.Name)
	assert.Equal(t, models.ActivityGroupRenamed, renamed.Group.ActivityLog[len(renamed.Group.ActivityLog)-1].Type)

	dup, err := call[api.GroupRequest, api.GroupResponse](t, ts, token, apiconnect.GroupServiceDuplicateGroupProcedure, &api.GroupRequest{GroupID: group.ID})
	require.NoError(t, err)
	assert.NotEqual(t, group.ID, dup.Group.ID)
	assert.Equal(t, "Final (Copy)", dup.Group.Name)
	assert.Equal(t, userID, dup.Group.CreatedBy)
	assert.Empty(t, dup.Group.Slides)
}

func TestMembers(t *testing.T) {
	ts := setupTestServer(t)
	token, ownerID := ts.register(t, "Ada", "ada@example.com")
	other, otherID := ts.register(t, "Bo", "bo@example.com")
	group := createGroup(t, ts, token, "Team")

	_, err := call[api.MemberRequest, api.GroupResponse](t, ts, other, apiconnect.GroupServiceAddMemberProcedure, &api.MemberRequest{
		GroupID: group.ID, UserID: otherID,
	})
	requireCode(t, connect.CodePermissionDenied, err)

	_, err = call[api.MemberRequest, api.GroupResponse](t, ts, token, apiconnect.GroupServiceAddMemberProcedure, &api.MemberRequest{
		GroupID: group.ID, UserID: "#AD9999",
	})
	requireCode(t, connect.CodeNotFound, err)

	added, err := call[api.MemberRequest, api.GroupResponse](t, ts, token, apiconnect.GroupServiceAddMemberProcedure, &api.MemberRequest{
		GroupID: group.ID, UserID: otherID,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{ownerID, otherID}, added.Group.Members)

	_, err = call[api.MemberRequest, api.GroupResponse](t, ts, token, apiconnect.GroupServiceAddMemberProcedure, &api.MemberRequest{
		GroupID: group.ID, UserID: otherID,
	})
	requireCode(t, connect.CodeAlreadyExists, err)

	members, err := call[api.GroupRequest, api.MembersResponse](t, ts, other, apiconnect.GroupServiceListMembersProcedure, &api.GroupRequest{GroupID: group.ID})
	require.NoError(t, err)
	require.Len(t, members.Members, 2)
	assert.Equal(t, "bo@example.com", members.Members[1].Email)

	_, err = call[api.MemberRequest, api.GroupResponse](t, ts, other, apiconnect.GroupServiceRemoveMemberProcedure, &api.MemberRequest{
		GroupID: group.ID, UserID: ownerID,
	})
	requireCode(t, connect.CodeFailedPrecondition, err)

	removed, err := call[api.MemberRequest, api.GroupResponse](t, ts, token, apiconnect.GroupServiceRemoveMemberProcedure, &api.MemberRequest{
		GroupID: group.ID, UserID: otherID,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{ownerID}, removed.Group.Members)
}
