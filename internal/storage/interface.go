package storage

import (
	"context"

	"github.com/mcoot/lanova-arcade/internal/model"
)

// Storage defines the interface for live session persistence
type Storage interface {
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	DeleteSession(ctx context.Context, id model.SessionID) error
	ListSessionsForPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Session, error)
}

// SettlementStore records award calls made to the ledger, keyed by
// idempotency key
type SettlementStore interface {
	SaveSettlement(ctx context.Context, settlement *model.Settlement) error
	GetSettlement(ctx context.Context, key string) (*model.Settlement, error)
	// ListSettlementsForPlayer returns the newest settlements first; limit <= 0 means no limit
	ListSettlementsForPlayer(ctx context.Context, playerID model.PlayerID, limit int) ([]*model.Settlement, error)
}
