package snapshot_test

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcrobe/lazydom/lazyref"
	"github.com/vcrobe/lazydom/snapshot"
	"github.com/vcrobe/lazydom/snapshot/snapshottest"
	"github.com/vcrobe/lazydom/store"
)

func TestCapture_SharedStoresStaySharedAfterRestore(t *testing.T) {
	// Arrange
	shared := store.New(map[string]any{"count": 15, "tags": []any{"a", 2.5, nil}})
	refs := []*lazyref.Ref{
		lazyref.Runtime("dec", nil, map[string]any{"step": 5}, shared, map[string]any{"dir": -1}),
		lazyref.Deferred("inc", shared, true),
	}

	// Act
	s, err := snapshot.Capture(refs)
	require.NoError(t, err)
	data, err := snapshot.Marshal(s)
	require.NoError(t, err)
	decoded, err := snapshot.Unmarshal(data)
	require.NoError(t, err)
	restored, err := snapshot.Restore(decoded)
	require.NoError(t, err)

	// Assert
	_, err = uuid.Parse(s.ID)
	assert.NoError(t, err)
	require.Len(t, s.Stores, 1)
	require.Len(t, restored, 2)
	assert.Equal(t, "dec", restored[0].Symbol())
	assert.True(t, restored[0].IsDeferred())

	first := lazyref.NewCall("dec", restored[0].Scope(), nil)
	second := lazyref.NewCall("inc", restored[1].Scope(), nil)
	assert.Same(t, lazyref.Arg[*store.Store](first, 1), lazyref.Arg[*store.Store](second, 0))
	assert.Equal(t, map[string]any{"step": 5}, lazyref.Arg[map[string]any](first, 0))
	assert.True(t, lazyref.Arg[bool](second, 1))

	st := lazyref.Arg[*store.Store](first, 1)
	assert.Equal(t, map[string]any{"count": 15, "tags": []any{"a", 2.5, nil}}, st.Snapshot())
}

func TestCapture_RejectsUnserializableScope(t *testing.T) {
	ref := lazyref.Runtime("bad", nil, func() {})

	_, err := snapshot.Capture([]*lazyref.Ref{ref})

	var accessErr *store.AccessError
	assert.ErrorAs(t, err, &accessErr)
}

func TestCapture_UnsignedIntegers(t *testing.T) {
	t.Run("fits int64", func(t *testing.T) {
		s, err := snapshot.Capture([]*lazyref.Ref{lazyref.Deferred("h", uint64(42), uint(7))})
		require.NoError(t, err)

		refs, err := snapshot.Restore(s)
		require.NoError(t, err)
		assert.Equal(t, []any{42, 7}, refs[0].Scope())
	})
	t.Run("overflows int64", func(t *testing.T) {
		_, err := snapshot.Capture([]*lazyref.Ref{lazyref.Deferred("h", uint64(math.MaxUint64))})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "overflows int64")
	})
}

func TestCapture_HandlesCycles(t *testing.T) {
	parent := store.New(map[string]any{"name": "parent"})
	child := store.New(map[string]any{"parent": parent})
	parent.Set("child", child)

	s, err := snapshot.Capture([]*lazyref.Ref{lazyref.Deferred("walk", parent)})
	require.NoError(t, err)
	refs, err := snapshot.Restore(s)
	require.NoError(t, err)

	p := lazyref.Arg[*store.Store](lazyref.NewCall("walk", refs[0].Scope(), nil), 0)
	c := p.Get("child").(*store.Store)
	assert.Same(t, p, c.Get("parent"))
}

func TestRestore_UnknownStoreFails(t *testing.T) {
	s := &snapshot.Snapshot{Refs: []snapshot.RefRecord{{
		Symbol: "x",
		Scope:  []snapshot.Value{{Type: snapshot.TypeStore, Ref: "s404"}},
	}}}

	_, err := snapshot.Restore(s)

	assert.ErrorContains(t, err, `unknown store "s404"`)
}

func TestMemoryRepository_Contract(t *testing.T) {
	snapshottest.RunRepositoryContract(t, snapshot.NewMemoryRepository())
}
