package service

import (
	"encoding/json"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/slidemaker/internal/models"
	"github.com/mmynk/slidemaker/pkg/api"
	"github.com/mmynk/slidemaker/pkg/api/apiconnect"
)

func savePresentation(t *testing.T, ts *testServer, token string, p models.Presentation) *models.Presentation {
	t.Helper()
	resp, err := call[api.SavePresentationRequest, api.PresentationResponse](t, ts, token, apiconnect.PresentationServiceSaveProcedure, &api.SavePresentationRequest{
		Presentation: p,
	})
	require.NoError(t, err)
	return resp.Presentation
}

func listPresentations(t *testing.T, ts *testServer, token string) []models.Presentation {
	t.Helper()
	resp, err := call[api.Empty, api.ListPresentationsResponse](t, ts, token, apiconnect.PresentationServiceListProcedure, &api.Empty{})
	require.NoError(t, err)
	return resp.Presentations
}

func TestPresentationsAreScopedByViewer(t *testing.T) {
	ts := setupTestServer(t)
	ada, _ := ts.register(t, "Ada", "ada@example.com")
	bo, _ := ts.register(t, "Bo", "bo@example.com")

	mine := savePresentation(t, ts, ada, models.Presentation{Title: "Quarterly"})
	savePresentation(t, ts, "", models.Presentation{})

	adaDecks := listPresentations(t, ts, ada)
	require.Len(t, adaDecks, 1)
	assert.Equal(t, mine.ID, adaDecks[0].ID)
	assert.Empty(t, listPresentations(t, ts, bo))

	guestDecks := listPresentations(t, ts, "")
	require.Len(t, guestDecks, 1)
	assert.Equal(t, "Untitled", guestDecks[0].Title)

	_, err := call[api.PresentationRequest, api.PresentationResponse](t, ts, bo, apiconnect.PresentationServiceGetProcedure, &api.PresentationRequest{ID: mine.ID})
	requireCode(t, connect.CodeNotFound, err)
}

func TestPresentationLifecycle(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "Ada", "ada@example.com")

	p := savePresentation(t, ts, token, models.Presentation{Title: "Draft"})
	require.Len(t, p.Slides, 1)
	assert.Equal(t, "Slide 1", p.Slides[0].Title)

	renamed, err := call[api.RenamePresentationRequest, api.PresentationResponse](t, ts, token, apiconnect.PresentationServiceRenameProcedure, &api.RenamePresentationRequest{
		ID: p.ID, Title: "Final",
	})
	require.NoError(t, err)
	assert.Equal(t, "Final", renamed.Presentation.Title)

	added, err := call[api.PresentationRequest, api.DeckSlideResponse](t, ts, token, apiconnect.PresentationServiceAddSlideProcedure, &api.PresentationRequest{ID: p.ID})
	require.NoError(t, err)

	content := "<p>hello</p>"
	edited, err := call[api.UpdateDeckSlideRequest, api.DeckSlideResponse](t, ts, token, apiconnect.PresentationServiceUpdateSlideProcedure, &api.UpdateDeckSlideRequest{
		ID: p.ID, SlideID: added.Slide.ID, Content: &content,
	})
	require.NoError(t, err)
	assert.Equal(t, content, edited.Slide.Content)

	copied, err := call[api.DeckSlideRequest, api.DeckSlideResponse](t, ts, token, apiconnect.PresentationServiceDuplicateSlideProcedure, &api.DeckSlideRequest{
		ID: p.ID, SlideID: added.Slide.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, content, copied.Slide.Content)

	after, err := call[api.DeckSlideRequest, api.PresentationResponse](t, ts, token, apiconnect.PresentationServiceDeleteSlideProcedure, &api.DeckSlideRequest{
		ID: p.ID, SlideID: p.Slides[0].ID,
	})
	require.NoError(t, err)
	assert.Len(t, after.Presentation.Slides, 2)

	dup, err := call[api.PresentationRequest, api.PresentationResponse](t, ts, token, apiconnect.PresentationServiceDuplicateProcedure, &api.PresentationRequest{ID: p.ID})
	require.NoError(t, err)
	assert.NotEqual(t, p.ID, dup.Presentation.ID)
	assert.Len(t, listPresentations(t, ts, token), 2)

	deleted, err := call[api.PresentationRequest, api.DeleteResponse](t, ts, token, apiconnect.PresentationServiceDeleteProcedure, &api.PresentationRequest{ID: dup.Presentation.ID})
	require.NoError(t, err)
	assert.True(t, deleted.Deleted)

	again, err := call[api.PresentationRequest, api.DeleteResponse](t, ts, token, apiconnect.PresentationServiceDeleteProcedure, &api.PresentationRequest{ID: dup.Presentation.ID})
	require.NoError(t, err)
	assert.False(t, again.Deleted)
}

func TestDeleteLastDeckSlide(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "Ada", "ada@example.com")
	p := savePresentation(t, ts, token, models.Presentation{Title: "Solo"})

	_, err := call[api.DeckSlideRequest, api.PresentationResponse](t, ts, token, apiconnect.PresentationServiceDeleteSlideProcedure, &api.DeckSlideRequest{
		ID: p.ID, SlideID: p.Slides[0].ID,
	})
	requireCode(t, connect.CodeFailedPrecondition, err)
}

func TestOpenPresentation(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "Ada", "ada@example.com")
	group := createGroup(t, ts, token, "Team")
	first := listSlides(t, ts, token, group.ID)[0]
	p := savePresentation(t, ts, token, models.Presentation{Title: "Keynote"})

	// A pending group slide handoff is replaced by the presentation.
	_, err := call[api.SlideRequest, api.HandoffResponse](t, ts, token, apiconnect.SlideServiceOpenSlideProcedure, &api.SlideRequest{
		GroupID: group.ID, SlideID: first.ID,
	})
	require.NoError(t, err)

	resp, err := call[api.PresentationRequest, api.HandoffResponse](t, ts, token, apiconnect.PresentationServiceOpenProcedure, &api.PresentationRequest{ID: p.ID})
	require.NoError(t, err)
	assert.Empty(t, resp.Transfer.GroupID)
	assert.Empty(t, resp.Transfer.SlideID)

	var loaded models.Presentation
	require.NoError(t, json.Unmarshal(resp.Transfer.Payload, &loaded))
	assert.Equal(t, p.ID, loaded.ID)

	recent, err := call[api.Empty, api.RecentsResponse](t, ts, token, apiconnect.RecentsServiceGetRecentsProcedure, &api.Empty{})
	require.NoError(t, err)
	assert.Equal(t, []string{p.ID}, recent.Recents.RecentPresentations)
}
