package model

import (
	"fmt"
	"time"
)

// SessionID uniquely identifies a play session
type SessionID string

// SessionState represents the lifecycle phase of a session
type SessionState string

const (
	SessionStateNotStarted SessionState = "not_started"
	SessionStateActive     SessionState = "active"
	SessionStateEnded      SessionState = "ended"
)

// EndReason records why a session ended
type EndReason string

const (
	EndReasonOutOfMoves EndReason = "out_of_moves"
	EndReasonAbandoned  EndReason = "abandoned"
)

// Session is a single player's run of a game mode. The session exclusively
// owns its board.
type Session struct {
	ID       SessionID
	PlayerID PlayerID
	Mode     ModeID
	State    SessionState

	// Stepped sessions resolve one cascade step per Step call;
	// otherwise a swap resolves to completion before returning
	Stepped bool

	// Processing is set while a cascade is being resolved
	Processing bool
	Pending    *PendingResolution

	Board    *Board
	Selected *Position

	Score          int
	MovesRemaining int
	Level          int
	TargetScore    int

	// Round counts starts; each start is a new settlement instance
	Round     int
	EndReason EndReason

	StartedAt time.Time
	EndedAt   time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PendingResolution tracks an in-flight cascade for a committed swap
type PendingResolution struct {
	CascadeIndex int
	MoveScore    int // points scored by this swap so far
	Colors       int // palette size for refills, fixed for the whole cascade
}

// IsActive returns true if the session accepts input state changes
func (s *Session) IsActive() bool {
	return s.State == SessionStateActive
}

// SettlementKey is the idempotency key for this run's award call
func (s *Session) SettlementKey() string {
	return fmt.Sprintf("%s:%d", s.ID, s.Round)
}

// Duration returns the elapsed play time of the current run
func (s *Session) Duration(now time.Time) time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	end := now
	if !s.EndedAt.IsZero() {
		end = s.EndedAt
	}
	return end.Sub(s.StartedAt)
}

// CoinPreview is a cosmetic estimate of coins; the ledger decides the real amount
func (s *Session) CoinPreview() int {
	return s.Score / 100
}

// Clone returns a deep copy of the session
func (s *Session) Clone() *Session {
	c := *s
	if s.Board != nil {
		c.Board = s.Board.Clone()
	}
	if s.Selected != nil {
		sel := *s.Selected
		c.Selected = &sel
	}
	if s.Pending != nil {
		p := *s.Pending
		c.Pending = &p
	}
	return &c
}
