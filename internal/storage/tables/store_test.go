package tables

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/slidemaker/internal/ids"
	"github.com/mmynk/slidemaker/internal/models"
	"github.com/mmynk/slidemaker/internal/storage"
	"github.com/mmynk/slidemaker/internal/storage/memory"
)

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// frozenClock always returns the same instant.
func frozenClock() time.Time { return epoch }

type countingObserver struct {
	writes, conflicts, decodeFailures int
}

func (c *countingObserver) TableWrite(string)         { c.writes++ }
func (c *countingObserver) TableConflict(string)      { c.conflicts++ }
func (c *countingObserver) TableDecodeFailure(string) { c.decodeFailures++ }

func newTestStore(t *testing.T, opts ...Option) (*Store, *memory.Store) {
	t.Helper()
	kv := memory.New()
	opts = append([]Option{WithClock(frozenClock)}, opts...)
	return New(kv, ids.New(ids.WithClock(frozenClock)), opts...), kv
}

func strPtr(s string) *string { return &s }

func TestUsers(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	t.Run("CreateUser assigns sequential IDs", func(t *testing.T) {
		a, err := store.CreateUser(ctx, models.UserFields{FullName: "Ada Lovelace", Email: "ada@example.com"})
		require.NoError(t, err)
		b, err := store.CreateUser(ctx, models.UserFields{FullName: "Alan Turing", Email: "alan@example.com"})
		require.NoError(t, err)

		assert.Equal(t, "#AD0001", a.ID)
		assert.Equal(t, "#AD0002", b.ID)
		assert.Equal(t, epoch, a.CreatedAt)
		assert.Equal(t, a.CreatedAt, a.UpdatedAt)
	})

	t.Run("Create then get round-trips", func(t *testing.T) {
		created, err := store.CreateUser(ctx, models.UserFields{
			FullName:   "Grace Hopper",
			Email:      "grace@example.com",
			Avatar:     "https://example.com/grace.png",
			QRCodeData: "#AD0003",
		})
		require.NoError(t, err)

		got, err := store.GetUserByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("Email lookup is case-sensitive", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "#AD0001", got.ID)

		got, err = store.GetUserByEmail(ctx, "ADA@example.com")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Device token lookup ignores empty token", func(t *testing.T) {
		_, err := store.UpdateUser(ctx, "#AD0001", models.UserPatch{DeviceToken: strPtr("DEV1abc")})
		require.NoError(t, err)

		got, err := store.GetUserByDeviceToken(ctx, "DEV1abc")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "#AD0001", got.ID)

		got, err = store.GetUserByDeviceToken(ctx, "")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestUsers_EmailIsUnique(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	ada, err := store.CreateUser(ctx, models.UserFields{FullName: "Ada Lovelace", Email: "ada@example.com"})
	require.NoError(t, err)
	alan, err := store.CreateUser(ctx, models.UserFields{FullName: "Alan Turing", Email: "alan@example.com"})
	require.NoError(t, err)

	_, err = store.CreateUser(ctx, models.UserFields{FullName: "Imposter", Email: "ada@example.com"})
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	_, err = store.UpdateUser(ctx, alan.ID, models.UserPatch{Email: strPtr("ada@example.com")})
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	kept, err := store.UpdateUser(ctx, ada.ID, models.UserPatch{Email: strPtr("ada@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", kept.Email)

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
	got, err := store.GetUserByID(ctx, alan.ID)
	require.NoError(t, err)
	assert.Equal(t, "alan@example.com", got.Email)
}

func TestUpdate_SamePatchTwice(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	u, err := store.CreateUser(ctx, models.UserFields{FullName: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	patch := models.UserPatch{FullName: strPtr("Ada King"), Avatar: strPtr("a.png")}
	first, err := store.UpdateUser(ctx, u.ID, patch)
	require.NoError(t, err)
	second, err := store.UpdateUser(ctx, u.ID, patch)
	require.NoError(t, err)

	assert.True(t, first.UpdatedAt.After(u.UpdatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	first.UpdatedAt, second.UpdatedAt = time.Time{}, time.Time{}
	assert.Equal(t, first, second)
	assert.Equal(t, "Ada King", second.FullName)
	assert.Equal(t, "ada@example.com", second.Email)
}

func TestNotFoundLeavesTableUntouched(t *testing.T) {
	ctx := context.Background()
	store, kv := newTestStore(t)

	_, err := store.CreateGroup(ctx, models.GroupFields{Name: "Team A", CreatedBy: "#AD0001", Members: []string{"#AD0001"}})
	require.NoError(t, err)
	before, err := kv.Get(ctx, storage.KeyGroups)
	require.NoError(t, err)

	g, err := store.GetGroupByID(ctx, "GRP-missing")
	require.NoError(t, err)
	assert.Nil(t, g)

	g, err = store.UpdateGroup(ctx, "GRP-missing", models.GroupPatch{Name: strPtr("x")})
	require.NoError(t, err)
	assert.Nil(t, g)

	deleted, err := store.DeleteGroup(ctx, "GRP-missing")
	require.NoError(t, err)
	assert.False(t, deleted)

	u, err := store.UpdateUser(ctx, "#AD9999", models.UserPatch{FullName: strPtr("x")})
	require.NoError(t, err)
	assert.Nil(t, u)

	after, err := kv.Get(ctx, storage.KeyGroups)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestMalformedDocumentIsTreatedAsEmpty(t *testing.T) {
	ctx := context.Background()
	obs := &countingObserver{}
	store, kv := newTestStore(t, WithObserver(obs))

	require.NoError(t, kv.Set(ctx, storage.KeyUsers, "{not json"))

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.NotNil(t, users)
	assert.Equal(t, 1, obs.decodeFailures)

	u, err := store.CreateUser(ctx, models.UserFields{Email: "new@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "#AD0001", u.ID)

	users, err = store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestGroups(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	t.Run("CreateGroup logs creation", func(t *testing.T) {
		g, err := store.CreateGroup(ctx, models.GroupFields{
			Name:      "Team A",
			CreatedBy: "#AD0001",
			Members:   []string{"#AD0001"},
		})
		require.NoError(t, err)

		assert.Regexp(t, `^GRP\d+[A-Z0-9]{5}$`, g.ID)
		assert.Equal(t, []string{"#AD0001"}, g.Members)
		require.Len(t, g.ActivityLog, 1)
		assert.Equal(t, models.ActivityGroupCreated, g.ActivityLog[0].Type)
		assert.Equal(t, "#AD0001", g.ActivityLog[0].UserID)
		assert.Equal(t, `Group "Team A" was created`, g.ActivityLog[0].Message)
		assert.NotNil(t, g.Slides)
	})

	t.Run("Creator is always a member", func(t *testing.T) {
		g, err := store.CreateGroup(ctx, models.GroupFields{
			Name:      "Team B",
			CreatedBy: "#AD0002",
			Members:   []string{"#AD0003"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"#AD0002", "#AD0003"}, g.Members)

		updated, err := store.UpdateGroup(ctx, g.ID, models.GroupPatch{Members: &[]string{"#AD0003"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"#AD0002", "#AD0003"}, updated.Members)

		stored, err := store.GetGroupByID(ctx, g.ID)
		require.NoError(t, err)
		assert.True(t, stored.HasMember("#AD0002"))
	})

	t.Run("ListGroupsByUser filters on membership", func(t *testing.T) {
		groups, err := store.ListGroupsByUser(ctx, "#AD0003")
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, "Team B", groups[0].Name)

		groups, err = store.ListGroupsByUser(ctx, "#AD0042")
		require.NoError(t, err)
		assert.Empty(t, groups)
	})

	t.Run("AddGroupActivity appends and stamps", func(t *testing.T) {
		all, _ := store.ListGroups(ctx)
		id := all[0].ID

		g, err := store.AddGroupActivity(ctx, id, models.Activity{Type: models.ActivityMemberAdded, UserID: "#AD0002"})
		require.NoError(t, err)
		require.Len(t, g.ActivityLog, 2)
		assert.Equal(t, epoch, g.ActivityLog[1].Timestamp)
		assert.True(t, g.UpdatedAt.After(g.CreatedAt))
	})

	t.Run("Unknown slide status is normalized", func(t *testing.T) {
		all, _ := store.ListGroups(ctx)
		id := all[0].ID

		g, err := store.UpdateGroup(ctx, id, models.GroupPatch{Slides: &[]models.Slide{{ID: "s1", Title: "Intro", Status: "draft"}}})
		require.NoError(t, err)
		assert.Equal(t, models.StatusInProgress, g.Slides[0].Status)
		assert.NotNil(t, g.Slides[0].Comments)
	})

	t.Run("DeleteGroup removes", func(t *testing.T) {
		all, _ := store.ListGroups(ctx)
		ok, err := store.DeleteGroup(ctx, all[0].ID)
		require.NoError(t, err)
		assert.True(t, ok)

		remaining, _ := store.ListGroups(ctx)
		assert.Len(t, remaining, len(all)-1)
	})
}

func TestRecents(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	r, err := store.GetRecents(ctx, "#AD0001")
	require.NoError(t, err)
	assert.Equal(t, &models.Recents{
		RecentGroups:        []string{},
		RecentPresentations: []string{},
		RecentTemplates:     []string{},
	}, r)

	last := "GRP1"
	r, err = store.UpdateRecents(ctx, "#AD0001", models.RecentsPatch{
		RecentGroups:    &[]string{"GRP1"},
		LastActiveGroup: func() **string { p := &last; return &p }(),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"GRP1"}, r.RecentGroups)
	require.NotNil(t, r.LastActiveGroup)
	assert.Equal(t, "GRP1", *r.LastActiveGroup)

	other, err := store.GetRecents(ctx, "#AD0002")
	require.NoError(t, err)
	assert.Empty(t, other.RecentGroups)
}

func TestTemplates(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	plain, err := store.CreateTemplate(ctx, models.TemplateFields{Name: "Blank"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultTemplateCategory, plain.Category)
	assert.Regexp(t, `^TMP\d+[A-Z0-9]{5}$`, plain.ID)

	_, err = store.CreateTemplate(ctx, models.TemplateFields{Name: "Pitch", Category: "business"})
	require.NoError(t, err)

	business, err := store.ListTemplatesByCategory(ctx, "business")
	require.NoError(t, err)
	require.Len(t, business, 1)
	assert.Equal(t, "Pitch", business[0].Name)

	updated, err := store.UpdateTemplate(ctx, plain.ID, models.TemplatePatch{PreviewImage: strPtr("blank.png")})
	require.NoError(t, err)
	assert.Equal(t, "blank.png", updated.PreviewImage)
	assert.Equal(t, "Blank", updated.Name)
}

// racingKV simulates another writer that saves between our read and our write.
type racingKV struct {
	*memory.Store
	races int
}

func (r *racingKV) CompareAndSwap(ctx context.Context, key, value string, version int64) error {
	if r.races > 0 {
		r.races--
		if err := r.Store.Set(ctx, key, `[{"userID":"#AD0001","email":"other@tab"}]`); err != nil {
			return err
		}
	}
	return r.Store.CompareAndSwap(ctx, key, value, version)
}

func TestConflictingWriterIsNotClobbered(t *testing.T) {
	ctx := context.Background()
	kv := &racingKV{Store: memory.New(), races: 1}
	obs := &countingObserver{}
	store := New(kv, ids.New(), WithObserver(obs))

	u, err := store.CreateUser(ctx, models.UserFields{Email: "me@tab"})
	require.NoError(t, err)

	// The retry sees the other tab's user and picks the next free ID.
	assert.Equal(t, "#AD0002", u.ID)
	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, 1, obs.conflicts)
	assert.Equal(t, 1, obs.writes)
}

func TestConflictRetriesExhausted(t *testing.T) {
	ctx := context.Background()
	kv := &racingKV{Store: memory.New(), races: 10}
	store := New(kv, ids.New(), WithRetries(2))

	_, err := store.CreateUser(ctx, models.UserFields{Email: "me@tab"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrVersionConflict))
}
