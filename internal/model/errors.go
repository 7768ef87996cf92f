package model

import "errors"

// Common errors used across the application
var (
	// Mode errors
	ErrUnknownMode = errors.New("unknown game mode")

	// Session errors
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionNotActive = errors.New("session is not active")
	ErrSessionActive    = errors.New("session is already active")
	ErrNotSessionOwner  = errors.New("session belongs to another player")
	ErrProcessing       = errors.New("a cascade is still resolving")
	ErrNothingToResolve = errors.New("no cascade is pending")

	// Move errors
	ErrInvalidPosition = errors.New("invalid board position")
	ErrNotAdjacent     = errors.New("cells are not adjacent")
	ErrInvalidMove     = errors.New("swap does not produce a match")

	// Board errors
	ErrBoardInconsistent = errors.New("board is inconsistent")

	// Settlement errors
	ErrSettlementNotFound = errors.New("settlement not found")
	ErrAlreadySettled     = errors.New("settlement already final")
	ErrNothingToSettle    = errors.New("session has no finished run to settle")
	ErrLedgerCallFailed   = errors.New("ledger call failed")
	ErrLedgerRejected     = errors.New("ledger rejected the award")
	ErrUnsettledRun       = errors.New("last run's award has not gone through")
)
