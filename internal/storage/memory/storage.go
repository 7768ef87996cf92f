package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mcoot/lanova-arcade/internal/model"
	"github.com/mcoot/lanova-arcade/internal/storage"
)

// Storage is an in-memory implementation of the storage interfaces.
// Values are copied on the way in and out so callers never share boards
// with the store.
type Storage struct {
	mu sync.RWMutex

	sessions    map[model.SessionID]*model.Session
	settlements map[string]*model.Settlement
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		sessions:    make(map[model.SessionID]*model.Session),
		settlements: make(map[string]*model.Settlement),
	}
}

// Ensure Storage implements the interfaces
var (
	_ storage.Storage         = (*Storage)(nil)
	_ storage.SettlementStore = (*Storage)(nil)
)

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *Storage) ListSessionsForPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*model.Session
	for _, session := range s.sessions {
		if session.PlayerID == playerID {
			result = append(result, session.Clone())
		}
	}
	slices.SortFunc(result, func(a, b *model.Session) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return result, nil
}

// Settlement operations

func (s *Storage) SaveSettlement(ctx context.Context, settlement *model.Settlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := *settlement
	s.settlements[settlement.Key] = &st
	return nil
}

func (s *Storage) GetSettlement(ctx context.Context, key string) (*model.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.settlements[key]
	if !ok {
		return nil, model.ErrSettlementNotFound
	}
	out := *st
	return &out, nil
}

func (s *Storage) ListSettlementsForPlayer(ctx context.Context, playerID model.PlayerID, limit int) ([]*model.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*model.Settlement
	for _, st := range s.settlements {
		if st.PlayerID == playerID {
			out := *st
			result = append(result, &out)
		}
	}
	slices.SortFunc(result, func(a, b *model.Settlement) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
