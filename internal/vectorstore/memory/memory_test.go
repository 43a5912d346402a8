package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsmith-ai/docsmith/internal/core"
)

func rec(id string, values ...float32) core.VectorRecord {
	return core.VectorRecord{ID: id, Values: values, Metadata: core.ChunkMetadata{Text: id}}
}

func TestUpsertIsIdempotentOverwrite(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.EnsureIndex(ctx, 2))

	require.NoError(t, s.Upsert(ctx, "ns", []core.VectorRecord{rec("a", 1, 0)}))
	require.NoError(t, s.Upsert(ctx, "ns", []core.VectorRecord{rec("a", 0, 1)}))

	ids, err := s.ListIDs(ctx, "ns")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)

	// Last write wins.
	matches, err := s.Query(ctx, "ns", []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
}

func TestUpsertDimensionGuard(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.EnsureIndex(ctx, 3))
	err := s.Upsert(ctx, "ns", []core.VectorRecord{rec("a", 1, 0)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension")
}

func TestNamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.EnsureIndex(ctx, 1))
	require.NoError(t, s.Upsert(ctx, "alpha", []core.VectorRecord{rec("a", 1)}))
	require.NoError(t, s.Upsert(ctx, "beta", []core.VectorRecord{rec("b", 1)}))

	ids, err := s.ListIDs(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)

	require.NoError(t, s.DeleteAll(ctx, "alpha"))
	ids, err = s.ListIDs(ctx, "alpha")
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = s.ListIDs(ctx, "beta")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)
}

func TestDeleteByIDs(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.EnsureIndex(ctx, 1))
	require.NoError(t, s.Upsert(ctx, "ns", []core.VectorRecord{rec("a", 1), rec("b", 1), rec("c", 1)}))

	require.NoError(t, s.Delete(ctx, "ns", []string{"a", "c"}))
	ids, err := s.ListIDs(ctx, "ns")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)
}

func TestQueryRanksByCosine(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.EnsureIndex(ctx, 2))
	require.NoError(t, s.Upsert(ctx, "ns", []core.VectorRecord{
		rec("east", 1, 0),
		rec("north", 0, 1),
		rec("diag", 1, 1),
	}))

	matches, err := s.Query(ctx, "ns", []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "east", matches[0].ID)
	assert.Equal(t, "diag", matches[1].ID)
}
