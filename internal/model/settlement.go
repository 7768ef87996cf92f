package model

import "time"

// SettlementStatus tracks the outcome of an award call
type SettlementStatus string

const (
	SettlementPending  SettlementStatus = "pending"
	SettlementAwarded  SettlementStatus = "awarded"
	SettlementRejected SettlementStatus = "rejected" // ledger answered success=false
	SettlementFailed   SettlementStatus = "failed"   // call failed, retryable
)

// AwardRequest is the payload of the ledger's awardCoins operation
type AwardRequest struct {
	IdempotencyKey  string
	PlayerID        PlayerID
	Game            ModeID
	Score           int
	DurationSeconds int
}

// AwardResult is the ledger's answer to an award call
type AwardResult struct {
	Success      bool
	CoinsAwarded int
	NewBalance   int
	Error        string
}

// Settlement records one session run's award against the ledger
type Settlement struct {
	Key             string
	SessionID       SessionID
	PlayerID        PlayerID
	Mode            ModeID
	Score           int
	DurationSeconds int
	Reason          EndReason

	Status       SettlementStatus
	Attempts     int
	CoinsAwarded int
	NewBalance   int
	Error        string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsFinal returns true once the ledger has given a definitive answer
func (s *Settlement) IsFinal() bool {
	return s.Status == SettlementAwarded || s.Status == SettlementRejected
}
