package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/raysh454/repview/internal/replacements"
	"github.com/raysh454/repview/internal/store"
	"github.com/raysh454/repview/internal/testutil"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.Open(store.Config{Path: ":memory:"}, &testutil.DummyLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func schedule(group string, rs ...replacements.Replacement) *replacements.Schedule {
	return &replacements.Schedule{RawDate: "Замены 14.10.24", Date: "2024-10-14", Groups: map[string][]replacements.Replacement{group: rs}}
}

func TestOpen_NilLogger(t *testing.T) {
	t.Parallel()
	_, err := store.Open(store.Config{Path: ":memory:"}, nil)
	require.Error(t, err)
}

func TestOpen_CreatesDirectory(t *testing.T) {
	t.Parallel()
	path := t.TempDir() + "/nested/dir/repview.db"
	s, err := store.Open(store.Config{Path: path}, &testutil.DummyLogger{})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.FileExists(t, path)
}

func TestSaveAndGet(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	snap := &store.Snapshot{Body: "<p>body</p>", Schedule: schedule("101", replacements.Replacement{Pair: "1", Teacher: "Иванова И.И."})}
	require.NoError(t, s.Save(ctx, snap))
	require.NotEmpty(t, snap.ID)
	require.NotEmpty(t, snap.Checksum)
	require.False(t, snap.FetchedAt.IsZero())

	got, err := s.Get(ctx, snap.ID)
	require.NoError(t, err)
	require.Equal(t, snap.ID, got.ID)
	require.Equal(t, snap.Body, got.Body)
	require.Equal(t, snap.Checksum, got.Checksum)
	require.Equal(t, snap.Schedule, got.Schedule)
	require.Equal(t, snap.FetchedAt.UnixMilli(), got.FetchedAt.UnixMilli())
}

func TestSave_Nil(t *testing.T) {
	t.Parallel()
	require.Error(t, newTestStore(t).Save(context.Background(), nil))
}

func TestGet_NotFound(t *testing.T) {
	t.Parallel()
	_, err := newTestStore(t).Get(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestLatest(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Latest(ctx)
	require.ErrorIs(t, err, store.ErrNotFound)

	base := time.Date(2024, 10, 14, 8, 0, 0, 0, time.UTC)
	older := &store.Snapshot{FetchedAt: base, Body: "old"}
	newer := &store.Snapshot{FetchedAt: base.Add(time.Hour), Body: "new"}
	require.NoError(t, s.Save(ctx, newer))
	require.NoError(t, s.Save(ctx, older))

	got, err := s.Latest(ctx)
	require.NoError(t, err)
	require.Equal(t, newer.ID, got.ID)
}

func TestList(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 10, 14, 8, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		snap := &store.Snapshot{FetchedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, s.Save(ctx, snap))
		ids = append(ids, snap.ID)
	}

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, ids[2], all[0].ID)
	require.Equal(t, ids[0], all[2].ID)

	limited, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
}

func TestChecksum_StableForEqualSchedules(t *testing.T) {
	t.Parallel()
	a, err := store.Checksum(schedule("101", replacements.Replacement{Pair: "1"}))
	require.NoError(t, err)
	b, err := store.Checksum(schedule("101", replacements.Replacement{Pair: "1"}))
	require.NoError(t, err)
	c, err := store.Checksum(schedule("101", replacements.Replacement{Pair: "2"}))
	require.NoError(t, err)

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
}

func TestMeta(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	v, err := s.Meta(ctx, "last_checked_at")
	require.NoError(t, err)
	require.Empty(t, v)

	require.NoError(t, s.SetMeta(ctx, "last_checked_at", "1"))
	require.NoError(t, s.SetMeta(ctx, "last_checked_at", "2"))
	v, err = s.Meta(ctx, "last_checked_at")
	require.NoError(t, err)
	require.Equal(t, "2", v)
}
