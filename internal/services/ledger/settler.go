package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/lanova-arcade/internal/dependencies/clock"
	"github.com/mcoot/lanova-arcade/internal/model"
	"github.com/mcoot/lanova-arcade/internal/notify"
	"github.com/mcoot/lanova-arcade/internal/storage"
)

// Settler reports finished runs to the ledger exactly once per idempotency
// key and keeps a record of every outcome.
type Settler struct {
	store     storage.SettlementStore
	client    Client
	publisher notify.Publisher
	clock     clock.Clock
	logger    *slog.Logger
}

// NewSettler creates a new Settler
func NewSettler(store storage.SettlementStore, client Client, publisher notify.Publisher, clk clock.Clock, logger *slog.Logger) *Settler {
	return &Settler{
		store:     store,
		client:    client,
		publisher: publisher,
		clock:     clk,
		logger:    logger.With(slog.String("component", "settler")),
	}
}

// Settle awards coins for an ended session's current run. An existing
// settlement for the run is returned as is; failed ones are retried only via
// Retry. The returned error wraps model.ErrLedgerCallFailed or
// model.ErrLedgerRejected when the ledger did not award, alongside the
// recorded settlement.
func (s *Settler) Settle(ctx context.Context, session *model.Session) (*model.Settlement, error) {
	if session.State != model.SessionStateEnded || session.Round == 0 {
		return nil, model.ErrNothingToSettle
	}

	key := session.SettlementKey()
	existing, err := s.store.GetSettlement(ctx, key)
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, model.ErrSettlementNotFound):
		return nil, fmt.Errorf("load settlement %s: %w", key, err)
	}

	now := s.clock.Now()
	st := &model.Settlement{
		Key:             key,
		SessionID:       session.ID,
		PlayerID:        session.PlayerID,
		Mode:            session.Mode,
		Score:           session.Score,
		DurationSeconds: int(session.Duration(now).Seconds()),
		Reason:          session.EndReason,
		Status:          model.SettlementPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.SaveSettlement(ctx, st); err != nil {
		return nil, fmt.Errorf("record settlement %s: %w", key, err)
	}

	return s.attempt(ctx, st)
}

// Retry re-attempts a settlement whose ledger call never got a definitive answer
func (s *Settler) Retry(ctx context.Context, key string) (*model.Settlement, error) {
	st, err := s.store.GetSettlement(ctx, key)
	if err != nil {
		return nil, err
	}
	if st.IsFinal() {
		return st, model.ErrAlreadySettled
	}
	return s.attempt(ctx, st)
}

// Get returns the settlement for a key
func (s *Settler) Get(ctx context.Context, key string) (*model.Settlement, error) {
	return s.store.GetSettlement(ctx, key)
}

// History returns a player's settlements, newest first
func (s *Settler) History(ctx context.Context, playerID model.PlayerID, limit int) ([]*model.Settlement, error) {
	return s.store.ListSettlementsForPlayer(ctx, playerID, limit)
}

func (s *Settler) attempt(ctx context.Context, st *model.Settlement) (*model.Settlement, error) {
	st.Attempts++
	logger := s.logger.With(
		slog.String("key", st.Key),
		slog.String("player_id", string(st.PlayerID)),
		slog.Int("attempt", st.Attempts))

	result, callErr := s.client.AwardCoins(ctx, model.AwardRequest{
		IdempotencyKey:  st.Key,
		PlayerID:        st.PlayerID,
		Game:            st.Mode,
		Score:           st.Score,
		DurationSeconds: st.DurationSeconds,
	})

	switch {
	case callErr == nil:
		st.Status = model.SettlementAwarded
		st.CoinsAwarded = result.CoinsAwarded
		st.NewBalance = result.NewBalance
		st.Error = ""
		logger.Info("award settled",
			slog.Int("score", st.Score),
			slog.Int("coins_awarded", st.CoinsAwarded))
	case errors.Is(callErr, model.ErrLedgerRejected):
		st.Status = model.SettlementRejected
		st.Error = callErr.Error()
		if result != nil && result.Error != "" {
			st.Error = result.Error
		}
		logger.Warn("award rejected", slog.String("reason", st.Error))
	default:
		st.Status = model.SettlementFailed
		st.Error = callErr.Error()
		logger.Error("award failed", slog.Any("error", callErr))
	}
	st.UpdatedAt = s.clock.Now()

	if err := s.store.SaveSettlement(ctx, st); err != nil {
		return nil, fmt.Errorf("record settlement %s: %w", st.Key, err)
	}

	if err := s.publisher.Publish(ctx, model.Event{
		Type:      model.EventSettled,
		Timestamp: st.UpdatedAt,
		SessionID: st.SessionID,
		PlayerID:  st.PlayerID,
		Payload:   model.SettledPayload{Settlement: *st},
	}); err != nil {
		logger.Warn("settlement notification failed", slog.Any("error", err))
	}

	return st, callErr
}
