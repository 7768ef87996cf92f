package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionSettlementKeyChangesPerRound(t *testing.T) {
	s := &Session{ID: "ABC", Round: 1}
	assert.Equal(t, "ABC:1", s.SettlementKey())
	s.Round++
	assert.Equal(t, "ABC:2", s.SettlementKey())
}

func TestSessionDuration(t *testing.T) {
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	s := &Session{}
	assert.Zero(t, s.Duration(start))

	s.StartedAt = start
	assert.Equal(t, time.Minute, s.Duration(start.Add(time.Minute)))

	s.EndedAt = start.Add(30 * time.Second)
	assert.Equal(t, 30*time.Second, s.Duration(start.Add(time.Hour)))
}

func TestSessionCoinPreview(t *testing.T) {
	assert.Equal(t, 0, (&Session{Score: 99}).CoinPreview())
	assert.Equal(t, 12, (&Session{Score: 1299}).CoinPreview())
}

func TestSessionCloneIsDeep(t *testing.T) {
	b := NewBoard(3)
	b.Place(Position{Row: 0, Col: 0}, 1, SpecialNone)
	sel := Position{Row: 1, Col: 1}
	s := &Session{Board: b, Selected: &sel, Pending: &PendingResolution{CascadeIndex: 2}}

	c := s.Clone()
	c.Board.Clear(Position{Row: 0, Col: 0})
	c.Selected.Row = 2
	c.Pending.CascadeIndex = 5

	assert.False(t, s.Board.IsEmpty(Position{Row: 0, Col: 0}))
	assert.Equal(t, 1, s.Selected.Row)
	assert.Equal(t, 2, s.Pending.CascadeIndex)
}

func TestBoardPlaceAllocatesFreshIDs(t *testing.T) {
	b := NewBoard(3)
	first := b.Place(Position{Row: 0, Col: 0}, 1, SpecialNone)
	second := b.Place(Position{Row: 0, Col: 0}, 1, SpecialNone)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 0, second.Row)
	require.NoError(t, b.CheckConsistency())
}

func TestBoardSwappedRewritesCoordinates(t *testing.T) {
	b := NewBoard(3)
	a := b.Place(Position{Row: 0, Col: 0}, 1, SpecialNone)
	c := b.Place(Position{Row: 0, Col: 1}, 2, SpecialNone)

	next := b.Swapped(Position{Row: 0, Col: 0}, Position{Row: 0, Col: 1})

	assert.Equal(t, c.ID, next.Get(Position{Row: 0, Col: 0}).ID)
	assert.Equal(t, a.ID, next.Get(Position{Row: 0, Col: 1}).ID)
	require.NoError(t, next.CheckConsistency())
	assert.Equal(t, a.ID, b.Get(Position{Row: 0, Col: 0}).ID)
}

func TestBoardCheckConsistencyDetectsDrift(t *testing.T) {
	b := NewBoard(3)
	b.Place(Position{Row: 1, Col: 1}, 1, SpecialNone)
	b.Cells[1][1].Col = 2

	assert.ErrorIs(t, b.CheckConsistency(), ErrBoardInconsistent)
}

func TestPositionAdjacent(t *testing.T) {
	p := Position{Row: 2, Col: 2}
	assert.True(t, p.Adjacent(Position{Row: 1, Col: 2}))
	assert.True(t, p.Adjacent(Position{Row: 2, Col: 3}))
	assert.False(t, p.Adjacent(Position{Row: 3, Col: 3}))
	assert.False(t, p.Adjacent(Position{Row: 2, Col: 4}))
	assert.False(t, p.Adjacent(p))
}
