package memory

import (
	"context"
	"testing"
	"time"

	"github.com/mcoot/lanova-arcade/internal/model"
	"github.com/stretchr/testify/suite"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

// Session tests

func (s *StorageSuite) TestSaveAndGetSession() {
	session := &model.Session{
		ID:        "s1",
		PlayerID:  "player-1",
		Mode:      model.ModeCandyCrush,
		Board:     model.NewBoard(3),
		CreatedAt: time.Now(),
	}

	err := s.storage.SaveSession(s.ctx, session)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetSession(s.ctx, "s1")
	s.Require().NoError(err)
	s.Equal(session.PlayerID, retrieved.PlayerID)
	s.Equal(session.Mode, retrieved.Mode)
}

func (s *StorageSuite) TestSessionsAreCopied() {
	session := &model.Session{ID: "s1", PlayerID: "player-1", Board: model.NewBoard(3)}
	_ = s.storage.SaveSession(s.ctx, session)

	// Mutating the caller's copy must not leak into the store
	session.Score = 500
	session.Board.Place(model.Position{Row: 0, Col: 0}, 1, model.SpecialNone)

	retrieved, err := s.storage.GetSession(s.ctx, "s1")
	s.Require().NoError(err)
	s.Equal(0, retrieved.Score)
	s.True(retrieved.Board.IsEmpty(model.Position{Row: 0, Col: 0}))
}

func (s *StorageSuite) TestGetSessionNotFound() {
	_, err := s.storage.GetSession(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestDeleteSession() {
	_ = s.storage.SaveSession(s.ctx, &model.Session{ID: "s1", PlayerID: "player-1"})

	err := s.storage.DeleteSession(s.ctx, "s1")
	s.Require().NoError(err)

	_, err = s.storage.GetSession(s.ctx, "s1")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestListSessionsForPlayer() {
	base := time.Now()
	_ = s.storage.SaveSession(s.ctx, &model.Session{ID: "old", PlayerID: "player-1", CreatedAt: base.Add(-time.Minute)})
	_ = s.storage.SaveSession(s.ctx, &model.Session{ID: "new", PlayerID: "player-1", CreatedAt: base})
	_ = s.storage.SaveSession(s.ctx, &model.Session{ID: "other", PlayerID: "player-2", CreatedAt: base})

	sessions, err := s.storage.ListSessionsForPlayer(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Require().Len(sessions, 2)
	s.Equal(model.SessionID("new"), sessions[0].ID)
	s.Equal(model.SessionID("old"), sessions[1].ID)
}

// Settlement tests

func (s *StorageSuite) TestSaveAndGetSettlement() {
	st := &model.Settlement{
		Key:       "s1:1",
		SessionID: "s1",
		PlayerID:  "player-1",
		Score:     1500,
		Status:    model.SettlementAwarded,
	}
	s.Require().NoError(s.storage.SaveSettlement(s.ctx, st))

	retrieved, err := s.storage.GetSettlement(s.ctx, "s1:1")
	s.Require().NoError(err)
	s.Equal(1500, retrieved.Score)
	s.Equal(model.SettlementAwarded, retrieved.Status)
}

func (s *StorageSuite) TestSaveSettlementOverwrites() {
	_ = s.storage.SaveSettlement(s.ctx, &model.Settlement{Key: "s1:1", Status: model.SettlementFailed, Attempts: 1})
	_ = s.storage.SaveSettlement(s.ctx, &model.Settlement{Key: "s1:1", Status: model.SettlementAwarded, Attempts: 2})

	retrieved, err := s.storage.GetSettlement(s.ctx, "s1:1")
	s.Require().NoError(err)
	s.Equal(model.SettlementAwarded, retrieved.Status)
	s.Equal(2, retrieved.Attempts)
}

func (s *StorageSuite) TestGetSettlementNotFound() {
	_, err := s.storage.GetSettlement(s.ctx, "missing")
	s.ErrorIs(err, model.ErrSettlementNotFound)
}

func (s *StorageSuite) TestListSettlementsForPlayer() {
	base := time.Now()
	for i, key := range []string{"a:1", "b:1", "c:1"} {
		_ = s.storage.SaveSettlement(s.ctx, &model.Settlement{
			Key:       key,
			PlayerID:  "player-1",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}
	_ = s.storage.SaveSettlement(s.ctx, &model.Settlement{Key: "d:1", PlayerID: "player-2"})

	all, err := s.storage.ListSettlementsForPlayer(s.ctx, "player-1", 0)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("c:1", all[0].Key)

	limited, err := s.storage.ListSettlementsForPlayer(s.ctx, "player-1", 2)
	s.Require().NoError(err)
	s.Require().Len(limited, 2)
	s.Equal("b:1", limited[1].Key)
}
