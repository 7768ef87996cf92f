package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventSessionStarted EventType = "session_started"
	EventCellSelected   EventType = "cell_selected"
	EventSwapRejected   EventType = "swap_rejected"
	EventSwapAccepted   EventType = "swap_accepted"
	EventCascadeStep    EventType = "cascade_step"
	EventLevelUp        EventType = "level_up"
	EventSessionEnded   EventType = "session_ended"
	EventSettled        EventType = "session_settled"
)

// Event is the base structure for all events
type Event struct {
	Type      EventType
	Timestamp time.Time
	SessionID SessionID
	PlayerID  PlayerID
	Payload   any // Type-specific data
}

// CellSelectedPayload contains data for cell selected events
type CellSelectedPayload struct {
	Selected *Position // nil when deselected
}

// SwapPayload contains data for swap accepted and rejected events
type SwapPayload struct {
	A Position
	B Position
}

// CascadeStepPayload contains data for one resolution step
type CascadeStepPayload struct {
	CascadeIndex int
	Cleared      []Position
	Specials     []Piece
	ScoreDelta   int
	MoveScore    int // running total for the swap that started the cascade
	Score        int
	Board        *Board
	Done         bool
}

// LevelUpPayload contains data for level up events
type LevelUpPayload struct {
	Level          int
	TargetScore    int
	MovesRemaining int
}

// SessionEndedPayload contains data for session ended events
type SessionEndedPayload struct {
	Reason          EndReason
	Score           int
	DurationSeconds int
}

// SettledPayload contains data for settlement events
type SettledPayload struct {
	Settlement Settlement
}
