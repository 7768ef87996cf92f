package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/lanova-arcade/internal/model"
)

func TestApplyGravityPreservesColumnOrder(t *testing.T) {
	b := patternBoard(6)
	survivors := []model.PieceID{
		b.Get(pos(0, 2)).ID,
		b.Get(pos(2, 2)).ID,
		b.Get(pos(5, 2)).ID,
	}
	b.Clear(pos(1, 2))
	b.Clear(pos(3, 2))
	b.Clear(pos(4, 2))

	next := ApplyGravity(b)

	assert.True(t, next.IsEmpty(pos(0, 2)))
	assert.True(t, next.IsEmpty(pos(1, 2)))
	assert.True(t, next.IsEmpty(pos(2, 2)))
	assert.Equal(t, survivors, []model.PieceID{
		next.Get(pos(3, 2)).ID,
		next.Get(pos(4, 2)).ID,
		next.Get(pos(5, 2)).ID,
	})
	require.NoError(t, next.CheckConsistency())

	// Copy-on-write: the input board is untouched
	assert.True(t, b.IsEmpty(pos(1, 2)))
	assert.False(t, b.IsEmpty(pos(0, 2)))
}

func TestApplyGravityLeavesFullColumns(t *testing.T) {
	b := patternBoard(6)
	next := ApplyGravity(b)
	assert.Equal(t, b.Cells, next.Cells)
	assert.Equal(t, b.NextPieceID, next.NextPieceID)
}
