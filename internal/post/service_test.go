package post

import (
	"context"
	"errors"
	"math"
	"net/http"
	"sync"
	"testing"
	"time"

	"social-service/internal/events"
	"social-service/internal/shared/apperr"
	"social-service/internal/shared/db"
	"social-service/internal/shared/db/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = Author{ID: "a1b2c3d4-0000-4000-8000-000000000001", Name: "Alice", Avatar: "/a.png"}
	bob   = Author{ID: "a1b2c3d4-0000-4000-8000-000000000002", Name: "Bob"}
)

// tickClock returns a clock that advances one second per call.
func tickClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func openStore(t *testing.T) *db.Store {
	return dbtest.Open(t, &Post{}, &Like{}, &Comment{})
}

func newTestService(t *testing.T, opts ...Option) (Service, *db.Store) {
	store := openStore(t)
	opts = append([]Option{WithClock(tickClock())}, opts...)
	return NewService(NewRepository(store), opts...), store
}

func TestCreate(t *testing.T) {
	rec := &events.Recorder{}
	svc, _ := newTestService(t, WithEvents(rec))
	ctx := context.Background()

	t.Run("whitespace text is rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, alice, "   ", "")
		assert.ErrorIs(t, err, ErrEmptyText)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("plain text has no image", func(t *testing.T) {
		p, err := svc.Create(ctx, alice, "hello", "")
		require.NoError(t, err)
		assert.NotZero(t, p.ID)
		assert.Empty(t, p.ImagePath)
		assert.Empty(t, p.Likes)
		assert.Empty(t, p.Comments)
		assert.Equal(t, "Alice", p.AuthorName)

		got, err := svc.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "hello", got.Text)
		assert.Equal(t, alice.ID, got.AuthorID)
		assert.Empty(t, got.ImagePath)
	})

	t.Run("image path is kept", func(t *testing.T) {
		p, err := svc.Create(ctx, bob, "look", "/media/posts/x.png")
		require.NoError(t, err)
		assert.Equal(t, "/media/posts/x.png", p.ImagePath)
	})

	assert.Equal(t, []events.Type{events.PostCreated, events.PostCreated}, rec.Types())
}

func TestListPaginates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var created []uint64
	for i := 0; i < 15; i++ {
		p, err := svc.Create(ctx, alice, "post", "")
		require.NoError(t, err)
		created = append(created, p.ID)
	}

	first, err := svc.List(ctx, 1, 10)
	require.NoError(t, err)
	second, err := svc.List(ctx, 2, 10)
	require.NoError(t, err)
	third, err := svc.List(ctx, 3, 10)
	require.NoError(t, err)

	assert.Len(t, first.Items, 10)
	assert.True(t, first.HasMore)
	assert.Len(t, second.Items, 5)
	assert.False(t, second.HasMore)
	assert.Empty(t, third.Items)
	assert.False(t, third.HasMore)
	assert.EqualValues(t, 15, first.Total)

	seen := map[uint64]bool{}
	var order []uint64
	for _, p := range append(first.Items, second.Items...) {
		assert.False(t, seen[p.ID], "post %d on two pages", p.ID)
		seen[p.ID] = true
		order = append(order, p.ID)
	}
	// newest first: reverse of creation order
	for i, id := range order {
		assert.Equal(t, created[len(created)-1-i], id)
	}
}

func TestListBreaksTimestampTiesByInsertion(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := openStore(t)
	svc := NewService(NewRepository(store), WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	var ids []uint64
	for i := 0; i < 4; i++ {
		p, err := svc.Create(ctx, bob, "same second", "")
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	a, err := svc.List(ctx, 1, 2)
	require.NoError(t, err)
	b, err := svc.List(ctx, 2, 2)
	require.NoError(t, err)

	got := []uint64{a.Items[0].ID, a.Items[1].ID, b.Items[0].ID, b.Items[1].ID}
	assert.Equal(t, []uint64{ids[3], ids[2], ids[1], ids[0]}, got)
}

func TestListRejectsBadArgs(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.List(context.Background(), 0, 10)
	assert.ErrorIs(t, err, ErrBadPageArgs)
	_, err = svc.List(context.Background(), 1, 0)
	assert.ErrorIs(t, err, ErrBadPageArgs)
	_, err = svc.List(context.Background(), 1, MaxLimit+1)
	assert.ErrorIs(t, err, ErrBadPageArgs)
	_, err = svc.List(context.Background(), math.MaxInt/4+2, 4)
	assert.ErrorIs(t, err, ErrBadPageArgs)
}

type fakeRemover struct{ removed []string }

func (f *fakeRemover) Remove(_ context.Context, path string) error {
	f.removed = append(f.removed, path)
	return nil
}

func TestDelete(t *testing.T) {
	images := &fakeRemover{}
	rec := &events.Recorder{}
	svc, store := newTestService(t, WithImages(images), WithEvents(rec))
	ctx := context.Background()

	p, err := svc.Create(ctx, alice, "bye", "/media/posts/bye.png")
	require.NoError(t, err)
	keep, err := svc.Create(ctx, alice, "stay", "")
	require.NoError(t, err)

	require.NoError(t, store.DB.Create(&Like{PostID: p.ID, UserID: bob.ID, LikedAt: time.Now()}).Error)
	require.NoError(t, store.DB.Create(&Comment{PostID: p.ID, AuthorID: bob.ID, Text: "nice", CreatedAt: time.Now()}).Error)

	t.Run("non author", func(t *testing.T) {
		err := svc.Delete(ctx, p.ID, bob.ID)
		assert.ErrorIs(t, err, ErrNotAuthor)
		e, ok := apperr.As(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, e.Status)
	})

	t.Run("missing", func(t *testing.T) {
		assert.ErrorIs(t, svc.Delete(ctx, 9999, alice.ID), ErrNotFound)
	})

	t.Run("author", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, p.ID, alice.ID))

		_, err := svc.GetByID(ctx, p.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		mine, err := svc.ListByAuthor(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, keep.ID, mine[0].ID)

		var likes, comments int64
		store.DB.Model(&Like{}).Where("post_id = ?", p.ID).Count(&likes)
		store.DB.Model(&Comment{}).Where("post_id = ?", p.ID).Count(&comments)
		assert.Zero(t, likes)
		assert.Zero(t, comments)

		assert.Equal(t, []string{"/media/posts/bye.png"}, images.removed)
		assert.Contains(t, rec.Types(), events.PostDeleted)
	})
}

func TestListByAuthorOrderAndEngagement(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	older, err := svc.Create(ctx, alice, "older", "")
	require.NoError(t, err)
	newer, err := svc.Create(ctx, alice, "newer", "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob, "not alice", "")
	require.NoError(t, err)

	require.NoError(t, store.DB.Create(&Like{PostID: older.ID, UserID: bob.ID, LikedAt: time.Now()}).Error)
	require.NoError(t, store.DB.Create(&Like{PostID: older.ID, UserID: alice.ID, LikedAt: time.Now()}).Error)

	posts, err := svc.ListByAuthor(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, newer.ID, posts[0].ID)
	assert.Equal(t, older.ID, posts[1].ID)

	require.Len(t, posts[1].Likes, 2)
	assert.Equal(t, alice.ID, posts[1].Likes[0].UserID, "most recent like first")
	assert.Empty(t, posts[0].Likes)
}

type failingRepo struct{ Repository }

func (failingRepo) Count(context.Context) (int64, error) { return 0, errors.New("count failed") }
func (failingRepo) Window(context.Context, int, int) ([]Post, error) {
	return []Post{}, nil
}

func TestListPropagatesQueryError(t *testing.T) {
	svc := NewService(failingRepo{})
	_, err := svc.List(context.Background(), 1, 10)
	assert.EqualError(t, err, "count failed")
}
