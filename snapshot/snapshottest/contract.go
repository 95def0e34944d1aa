// Package snapshottest holds the behavior every snapshot.Repository must
// show.
package snapshottest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcrobe/lazydom/lazyref"
	"github.com/vcrobe/lazydom/snapshot"
	"github.com/vcrobe/lazydom/store"
)

func newSnapshot(t *testing.T) *snapshot.Snapshot {
	t.Helper()
	state := store.New(map[string]any{"count": 42, "label": "bar"})
	s, err := snapshot.Capture([]*lazyref.Ref{lazyref.Deferred("Counter_update", state, map[string]any{"dir": -1})})
	require.NoError(t, err)
	return s
}

// RunRepositoryContract exercises repo through save, load, delete and list.
func RunRepositoryContract(t *testing.T, repo snapshot.Repository) {
	ctx := context.Background()

	t.Run("Save and Load", func(t *testing.T) {
		s := newSnapshot(t)
		require.NoError(t, repo.Save(ctx, s))

		loaded, err := repo.Load(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, s.ID, loaded.ID)
		assert.True(t, s.Created.Equal(loaded.Created))
		assert.Equal(t, s.Refs, loaded.Refs)
		assert.Equal(t, s.Stores, loaded.Stores)

		refs, err := snapshot.Restore(loaded)
		require.NoError(t, err)
		require.Len(t, refs, 1)
		state := lazyref.Arg[*store.Store](lazyref.NewCall("x", refs[0].Scope(), nil), 0)
		assert.Equal(t, 42, state.Get("count"))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := repo.Load(ctx, "non-existent")
		assert.ErrorIs(t, err, snapshot.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		s := newSnapshot(t)
		require.NoError(t, repo.Save(ctx, s))

		require.NoError(t, repo.Delete(ctx, s.ID))

		_, err := repo.Load(ctx, s.ID)
		assert.ErrorIs(t, err, snapshot.ErrNotFound)
	})

	t.Run("List", func(t *testing.T) {
		a, b := newSnapshot(t), newSnapshot(t)
		require.NoError(t, repo.Save(ctx, a))
		require.NoError(t, repo.Save(ctx, b))
		defer func() {
			_ = repo.Delete(ctx, a.ID)
			_ = repo.Delete(ctx, b.ID)
		}()

		ids, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, a.ID)
		assert.Contains(t, ids, b.ID)
	})
}
