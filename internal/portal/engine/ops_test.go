package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/communityhub/internal/common"
	"github.com/dmitrijs2005/communityhub/internal/portal/models"
)

func TestApplyOp(t *testing.T) {
	base := []models.Document{
		{"id": "a", "n": float64(1)},
		{"id": "b", "n": float64(2)},
	}

	t.Run("add appends", func(t *testing.T) {
		out, err := applyOp(base, OpAdd, models.Document{"n": float64(3)}, "c")
		require.NoError(t, err)
		require.Len(t, out, 3)
		assert.Equal(t, "c", out[2].ID())
		assert.Len(t, base, 2, "input untouched")
	})

	t.Run("set replaces in place", func(t *testing.T) {
		out, err := applyOp(base, OpSet, models.Document{"n": float64(9)}, "a")
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, float64(9), out[0]["n"])
		assert.Equal(t, float64(1), base[0]["n"], "input untouched")
	})

	t.Run("set upserts when absent", func(t *testing.T) {
		out, err := applyOp(base, OpSet, models.Document{"n": float64(5)}, "z")
		require.NoError(t, err)
		assert.Len(t, out, 3)
	})

	t.Run("update patches only given fields", func(t *testing.T) {
		out, err := applyOp(base, OpUpdate, models.Document{"extra": "x"}, "b")
		require.NoError(t, err)
		assert.Equal(t, float64(2), out[1]["n"])
		assert.Equal(t, "x", out[1]["extra"])
		_, has := base[1]["extra"]
		assert.False(t, has, "input untouched")
	})

	t.Run("update missing id", func(t *testing.T) {
		_, err := applyOp(base, OpUpdate, models.Document{"x": 1}, "nope")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("delete filters", func(t *testing.T) {
		out, err := applyOp(base, OpDelete, nil, "a")
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "b", out[0].ID())
	})

	t.Run("delete absent id is a noop", func(t *testing.T) {
		out, err := applyOp(base, OpDelete, nil, "nope")
		require.NoError(t, err)
		assert.Len(t, out, 2)
	})
}

func TestUnionMerge(t *testing.T) {
	incoming := []models.Document{{"id": "y"}, {"id": "z"}}
	local := []models.Document{{"id": "x"}, {"id": "y"}}

	merged, appended := unionMerge(incoming, local)
	require.True(t, appended)
	require.Len(t, merged, 3)

	seen := map[string]bool{}
	for _, d := range merged {
		require.False(t, seen[d.ID()], "no duplicates")
		seen[d.ID()] = true
	}
	assert.True(t, seen["x"] && seen["y"] && seen["z"])
}

func TestUnionMerge_NoLocalSurvivors(t *testing.T) {
	incoming := []models.Document{{"id": "y"}}
	local := []models.Document{{"id": "y"}}

	merged, appended := unionMerge(incoming, local)
	assert.False(t, appended)
	assert.Len(t, merged, 1)
}
