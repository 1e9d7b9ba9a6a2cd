package presentations

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/slidemaker/internal/ids"
	"github.com/mmynk/slidemaker/internal/models"
	"github.com/mmynk/slidemaker/internal/recents"
	"github.com/mmynk/slidemaker/internal/session"
	"github.com/mmynk/slidemaker/internal/storage/memory"
	"github.com/mmynk/slidemaker/internal/storage/tables"
)

type fixture struct {
	manager *Manager
	tracker *recents.Tracker
	clock   time.Time
}

func newFixture() *fixture {
	kv := memory.New()
	gen := ids.New()
	tracker := recents.NewTracker(tables.New(kv, gen))
	f := &fixture{tracker: tracker, clock: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	f.manager = NewManager(kv, gen, tracker)
	f.manager.now = func() time.Time {
		f.clock = f.clock.Add(time.Second)
		return f.clock
	}
	return f
}

func TestSaveAndList(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	first, err := f.manager.Save(ctx, "#AD0001", models.Presentation{Title: "  "})
	require.NoError(t, err)
	_, err = uuid.Parse(first.ID)
	assert.NoError(t, err)
	assert.Equal(t, DefaultTitle, first.Title)
	require.Len(t, first.Slides, 1)
	assert.Equal(t, "Slide 1", first.Slides[0].Title)

	second, err := f.manager.Save(ctx, "#AD0001", models.Presentation{Title: "Quarterly"})
	require.NoError(t, err)

	list, err := f.manager.List(ctx, "#AD0001")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	// Saving again by ID replaces and moves it to the top.
	first.Title = "Renamed"
	_, err = f.manager.Save(ctx, "#AD0001", *first)
	require.NoError(t, err)
	list, err = f.manager.List(ctx, "#AD0001")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Renamed", list[0].Title)

	r, err := f.tracker.Get(ctx, "#AD0001")
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID, second.ID}, r.RecentPresentations)

	other, err := f.manager.List(ctx, "#AD0002")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestGuestPresentationsSkipRecents(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p, err := f.manager.Save(ctx, session.GuestOwner, models.Presentation{Title: "Draft"})
	require.NoError(t, err)

	got, err := f.manager.Get(ctx, session.GuestOwner, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	r, err := f.tracker.Get(ctx, session.GuestOwner)
	require.NoError(t, err)
	assert.Empty(t, r.RecentPresentations)
}

func TestRenameDuplicateDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p, err := f.manager.Save(ctx, "#AD0001", models.Presentation{Title: "Deck"})
	require.NoError(t, err)

	renamed, err := f.manager.Rename(ctx, "#AD0001", p.ID, "Pitch")
	require.NoError(t, err)
	assert.Equal(t, "Pitch", renamed.Title)
	assert.True(t, renamed.Date.After(p.Date))

	_, err = f.manager.Rename(ctx, "#AD0001", "missing", "x")
	assert.ErrorIs(t, err, ErrNotFound)

	dup, err := f.manager.Duplicate(ctx, "#AD0001", p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pitch (Copy)", dup.Title)
	assert.NotEqual(t, p.ID, dup.ID)
	assert.Equal(t, renamed.Slides, dup.Slides)

	ok, err := f.manager.Delete(ctx, "#AD0001", p.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.manager.Delete(ctx, "#AD0001", p.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := f.manager.Get(ctx, "#AD0001", p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	r, err := f.tracker.Get(ctx, "#AD0001")
	require.NoError(t, err)
	assert.Equal(t, []string{dup.ID}, r.RecentPresentations)
}

func TestDeckSlides(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p, err := f.manager.Save(ctx, "#AD0001", models.Presentation{Title: "Deck"})
	require.NoError(t, err)
	firstID := p.Slides[0].ID

	_, err = f.manager.DeleteSlide(ctx, "#AD0001", p.ID, firstID)
	assert.ErrorIs(t, err, ErrLastSlide)

	added, err := f.manager.AddSlide(ctx, "#AD0001", p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Slide 2", added.Title)

	content := "<p>hello</p>"
	updated, err := f.manager.UpdateSlide(ctx, "#AD0001", p.ID, firstID, SlidePatch{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, content, updated.Content)
	assert.Equal(t, "Slide 1", updated.Title)

	dup, err := f.manager.DuplicateSlide(ctx, "#AD0001", p.ID, firstID)
	require.NoError(t, err)
	assert.Equal(t, "Slide 1 (Copy)", dup.Title)
	assert.Equal(t, content, dup.Content)

	got, err := f.manager.Get(ctx, "#AD0001", p.ID)
	require.NoError(t, err)
	require.Len(t, got.Slides, 3)
	assert.Equal(t, []string{firstID, dup.ID, added.ID}, []string{got.Slides[0].ID, got.Slides[1].ID, got.Slides[2].ID})

	got, err = f.manager.DeleteSlide(ctx, "#AD0001", p.ID, dup.ID)
	require.NoError(t, err)
	assert.Len(t, got.Slides, 2)

	_, err = f.manager.UpdateSlide(ctx, "#AD0001", p.ID, "nope", SlidePatch{})
	assert.ErrorIs(t, err, ErrSlideNotFound)
	_, err = f.manager.AddSlide(ctx, "#AD0001", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
