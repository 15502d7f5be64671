package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/raysh454/repview/internal/store"
)

func TestTextDiff(t *testing.T) {
	t.Parallel()
	chunks := store.TextDiff("<p>Группа 101</p><p>Физика</p>", "<p>Группа 101</p><p>Химия</p>")

	var added, removed string
	for _, c := range chunks {
		switch c.Type {
		case "added":
			added += c.Content
		case "removed":
			removed += c.Content
		}
	}
	require.Contains(t, added, "Химия")
	require.Contains(t, removed, "Физика")
	require.NotContains(t, added, "Группа")
}

func TestTextDiff_IdenticalBodies(t *testing.T) {
	t.Parallel()
	require.Empty(t, store.TextDiff("<p>same</p>", "<div>same</div>"))
}

func TestDiff_AgainstPreviousSnapshot(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	first := &store.Snapshot{Body: "<p>first</p>"}
	second := &store.Snapshot{Body: "<p>second</p>"}
	require.NoError(t, s.Save(ctx, first))
	require.NoError(t, s.Save(ctx, second))

	d, err := s.Diff(ctx, "", second.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, d.BaseID)
	require.Equal(t, second.ID, d.HeadID)
	require.NotEmpty(t, d.Chunks)

	d, err = s.Diff(ctx, "", first.ID)
	require.NoError(t, err)
	require.Empty(t, d.BaseID)
	require.Equal(t, []store.Chunk{{Type: "added", Content: "first"}}, d.Chunks)
}

func TestDiff_ExplicitBase(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	a := &store.Snapshot{Body: "<p>alpha</p>"}
	b := &store.Snapshot{Body: "<p>beta</p>"}
	require.NoError(t, s.Save(ctx, a))
	require.NoError(t, s.Save(ctx, b))

	d, err := s.Diff(ctx, b.ID, a.ID)
	require.NoError(t, err)
	require.Equal(t, b.ID, d.BaseID)

	_, err = s.Diff(ctx, "missing", a.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Diff(ctx, "", "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}
