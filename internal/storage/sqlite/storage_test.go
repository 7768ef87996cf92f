package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/lanova-arcade/internal/model"
	"github.com/mcoot/lanova-arcade/internal/testutil"
)

type StoreSuite struct {
	suite.Suite
	path  string
	store *Store
	ctx   context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.path = filepath.Join(s.T().TempDir(), "nested", "arcade.db")
	store, err := Open(Config{Path: s.path}, testutil.NopLogger())
	s.Require().NoError(err)
	s.store = store
	s.ctx = context.Background()
}

func (s *StoreSuite) TearDownTest() {
	if s.store != nil {
		_ = s.store.Close()
	}
}

func settlement(key string, player model.PlayerID, created time.Time) *model.Settlement {
	return &model.Settlement{
		Key:             key,
		SessionID:       "s1",
		PlayerID:        player,
		Mode:            model.ModeCandyCrash,
		Score:           2300,
		DurationSeconds: 95,
		Reason:          model.EndReasonOutOfMoves,
		Status:          model.SettlementPending,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
}

func (s *StoreSuite) TestSaveAndGet() {
	now := time.Now()
	s.Require().NoError(s.store.SaveSettlement(s.ctx, settlement("s1:1", "player-1", now)))

	got, err := s.store.GetSettlement(s.ctx, "s1:1")
	s.Require().NoError(err)
	s.Equal(model.SessionID("s1"), got.SessionID)
	s.Equal(model.ModeCandyCrash, got.Mode)
	s.Equal(2300, got.Score)
	s.Equal(95, got.DurationSeconds)
	s.Equal(model.EndReasonOutOfMoves, got.Reason)
	s.Equal(model.SettlementPending, got.Status)
	s.True(now.Equal(got.CreatedAt))
}

func (s *StoreSuite) TestGetNotFound() {
	_, err := s.store.GetSettlement(s.ctx, "missing")
	s.ErrorIs(err, model.ErrSettlementNotFound)
}

func (s *StoreSuite) TestSaveUpdatesOutcome() {
	now := time.Now()
	st := settlement("s1:1", "player-1", now)
	s.Require().NoError(s.store.SaveSettlement(s.ctx, st))

	st.Status = model.SettlementAwarded
	st.Attempts = 2
	st.CoinsAwarded = 23
	st.NewBalance = 140
	st.UpdatedAt = now.Add(time.Second)
	s.Require().NoError(s.store.SaveSettlement(s.ctx, st))

	got, err := s.store.GetSettlement(s.ctx, "s1:1")
	s.Require().NoError(err)
	s.Equal(model.SettlementAwarded, got.Status)
	s.Equal(2, got.Attempts)
	s.Equal(23, got.CoinsAwarded)
	s.Equal(140, got.NewBalance)
	s.True(now.Equal(got.CreatedAt))
}

func (s *StoreSuite) TestListNewestFirstWithLimit() {
	base := time.Now()
	for i, key := range []string{"a:1", "b:1", "c:1"} {
		s.Require().NoError(s.store.SaveSettlement(s.ctx, settlement(key, "player-1", base.Add(time.Duration(i)*time.Second))))
	}
	s.Require().NoError(s.store.SaveSettlement(s.ctx, settlement("d:1", "player-2", base)))

	all, err := s.store.ListSettlementsForPlayer(s.ctx, "player-1", 0)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal([]string{"c:1", "b:1", "a:1"}, []string{all[0].Key, all[1].Key, all[2].Key})

	limited, err := s.store.ListSettlementsForPlayer(s.ctx, "player-1", 1)
	s.Require().NoError(err)
	s.Require().Len(limited, 1)
	s.Equal("c:1", limited[0].Key)
}

func (s *StoreSuite) TestReopenKeepsData() {
	s.Require().NoError(s.store.SaveSettlement(s.ctx, settlement("s1:1", "player-1", time.Now())))
	s.Require().NoError(s.store.Close())

	reopened, err := Open(Config{Path: s.path}, testutil.NopLogger())
	s.Require().NoError(err)
	s.store = reopened

	_, err = s.store.GetSettlement(s.ctx, "s1:1")
	s.NoError(err)
}
