package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/lanova-arcade/internal/dependencies/mocks"
	"github.com/mcoot/lanova-arcade/internal/model"
	"github.com/mcoot/lanova-arcade/internal/notify"
	"github.com/mcoot/lanova-arcade/internal/storage/memory"
	"github.com/mcoot/lanova-arcade/internal/testutil"
)

// scriptedClient answers award calls from a queue of errors
type scriptedClient struct {
	errs  []error
	calls []model.AwardRequest
}

func (c *scriptedClient) AwardCoins(ctx context.Context, req model.AwardRequest) (*model.AwardResult, error) {
	c.calls = append(c.calls, req)
	var err error
	if len(c.errs) > 0 {
		err = c.errs[0]
		c.errs = c.errs[1:]
	}
	if err != nil {
		return &model.AwardResult{Success: false, Error: "nope"}, err
	}
	return &model.AwardResult{Success: true, CoinsAwarded: req.Score / 100, NewBalance: 99}, nil
}

type SettlerSuite struct {
	suite.Suite
	store     *memory.Storage
	client    *scriptedClient
	publisher *notify.MemoryPublisher
	clock     *mocks.MockClock
	settler   *Settler
	ctx       context.Context
}

func TestSettlerSuite(t *testing.T) {
	suite.Run(t, new(SettlerSuite))
}

func (s *SettlerSuite) SetupTest() {
	s.store = memory.New()
	s.client = &scriptedClient{}
	s.publisher = notify.NewMemoryPublisher()
	s.clock = mocks.NewMockClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	s.settler = NewSettler(s.store, s.client, s.publisher, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *SettlerSuite) endedSession() *model.Session {
	started := s.clock.Now().Add(-90 * time.Second)
	return &model.Session{
		ID:        "s1",
		PlayerID:  "player-1",
		Mode:      model.ModeCandyCrash,
		State:     model.SessionStateEnded,
		Score:     1550,
		Round:     1,
		EndReason: model.EndReasonOutOfMoves,
		StartedAt: started,
		EndedAt:   started.Add(75 * time.Second),
	}
}

func (s *SettlerSuite) TestSettleAwards() {
	st, err := s.settler.Settle(s.ctx, s.endedSession())
	s.Require().NoError(err)
	s.Equal(model.SettlementAwarded, st.Status)
	s.Equal(15, st.CoinsAwarded)
	s.Equal(1, st.Attempts)

	s.Require().Len(s.client.calls, 1)
	call := s.client.calls[0]
	s.Equal("s1:1", call.IdempotencyKey)
	s.Equal(model.ModeCandyCrash, call.Game)
	s.Equal(1550, call.Score)
	s.Equal(75, call.DurationSeconds)

	events := s.publisher.Events()
	s.Require().Len(events, 1)
	s.Equal(model.EventSettled, events[0].Type)
}

func (s *SettlerSuite) TestSettleTwiceCallsLedgerOnce() {
	session := s.endedSession()
	_, err := s.settler.Settle(s.ctx, session)
	s.Require().NoError(err)

	st, err := s.settler.Settle(s.ctx, session)
	s.Require().NoError(err)
	s.Equal(model.SettlementAwarded, st.Status)
	s.Len(s.client.calls, 1)
}

func (s *SettlerSuite) TestSettleRequiresEndedSession() {
	session := s.endedSession()
	session.State = model.SessionStateActive

	_, err := s.settler.Settle(s.ctx, session)
	s.ErrorIs(err, model.ErrNothingToSettle)
	s.Empty(s.client.calls)
}

func (s *SettlerSuite) TestRejectedIsFinal() {
	s.client.errs = []error{model.ErrLedgerRejected}

	st, err := s.settler.Settle(s.ctx, s.endedSession())
	s.ErrorIs(err, model.ErrLedgerRejected)
	s.Equal(model.SettlementRejected, st.Status)
	s.Equal("nope", st.Error)

	_, err = s.settler.Retry(s.ctx, "s1:1")
	s.ErrorIs(err, model.ErrAlreadySettled)
	s.Len(s.client.calls, 1)
}

func (s *SettlerSuite) TestFailedCanBeRetried() {
	s.client.errs = []error{model.ErrLedgerCallFailed}

	st, err := s.settler.Settle(s.ctx, s.endedSession())
	s.ErrorIs(err, model.ErrLedgerCallFailed)
	s.Equal(model.SettlementFailed, st.Status)

	stored, err := s.store.GetSettlement(s.ctx, "s1:1")
	s.Require().NoError(err)
	s.Equal(model.SettlementFailed, stored.Status)

	s.clock.Advance(time.Minute)
	st, err = s.settler.Retry(s.ctx, "s1:1")
	s.Require().NoError(err)
	s.Equal(model.SettlementAwarded, st.Status)
	s.Equal(2, st.Attempts)
	s.Equal(75, st.DurationSeconds)

	s.Require().Len(s.client.calls, 2)
	s.Equal(s.client.calls[0].IdempotencyKey, s.client.calls[1].IdempotencyKey)
}

func (s *SettlerSuite) TestRetryUnknownKey() {
	_, err := s.settler.Retry(s.ctx, "missing:1")
	s.ErrorIs(err, model.ErrSettlementNotFound)
}

func (s *SettlerSuite) TestHistory() {
	_, _ = s.settler.Settle(s.ctx, s.endedSession())
	second := s.endedSession()
	second.Round = 2
	s.clock.Advance(time.Minute)
	_, _ = s.settler.Settle(s.ctx, second)

	history, err := s.settler.History(s.ctx, "player-1", 10)
	s.Require().NoError(err)
	s.Require().Len(history, 2)
	s.Equal("s1:2", history[0].Key)
}
