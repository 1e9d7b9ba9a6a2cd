package service

import (
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/slidemaker/pkg/api"
	"github.com/mmynk/slidemaker/pkg/api/apiconnect"
)

func TestRecents(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "Ada", "ada@example.com")

	empty, err := call[api.Empty, api.RecentsResponse](t, ts, token, apiconnect.RecentsServiceGetRecentsProcedure, &api.Empty{})
	require.NoError(t, err)
	assert.Empty(t, empty.Recents.RecentGroups)
	assert.NotNil(t, empty.Recents.RecentTemplates)
	assert.Nil(t, empty.Recents.LastActiveGroup)

	for _, id := range []string{"G1", "G2", "G1", "G3"} {
		_, err := call[api.RecentRequest, api.RecentsResponse](t, ts, token, apiconnect.RecentsServiceTouchProcedure, &api.RecentRequest{Kind: "groups", ID: id})
		require.NoError(t, err)
	}
	resp, err := call[api.Empty, api.RecentsResponse](t, ts, token, apiconnect.RecentsServiceGetRecentsProcedure, &api.Empty{})
	require.NoError(t, err)
	assert.Equal(t, []string{"G3", "G1", "G2"}, resp.Recents.RecentGroups)

	forgot, err := call[api.RecentRequest, api.RecentsResponse](t, ts, token, apiconnect.RecentsServiceForgetProcedure, &api.RecentRequest{Kind: "groups", ID: "G1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"G3", "G2"}, forgot.Recents.RecentGroups)

	_, err = call[api.RecentRequest, api.RecentsResponse](t, ts, token, apiconnect.RecentsServiceTouchProcedure, &api.RecentRequest{Kind: "slides", ID: "x"})
	requireCode(t, connect.CodeInvalidArgument, err)

	active, err := call[api.LastActiveGroupRequest, api.RecentsResponse](t, ts, token, apiconnect.RecentsServiceSetLastActiveGroupProcedure, &api.LastActiveGroupRequest{GroupID: "G2"})
	require.NoError(t, err)
	require.NotNil(t, active.Recents.LastActiveGroup)
	assert.Equal(t, "G2", *active.Recents.LastActiveGroup)

	cleared, err := call[api.LastActiveGroupRequest, api.RecentsResponse](t, ts, token, apiconnect.RecentsServiceSetLastActiveGroupProcedure, &api.LastActiveGroupRequest{})
	require.NoError(t, err)
	assert.Nil(t, cleared.Recents.LastActiveGroup)

	_, err = call[api.Empty, api.RecentsResponse](t, ts, "", apiconnect.RecentsServiceGetRecentsProcedure, &api.Empty{})
	requireCode(t, connect.CodeUnauthenticated, err)
}
