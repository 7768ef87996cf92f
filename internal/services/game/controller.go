package game

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mcoot/lanova-arcade/internal/dependencies/clock"
	"github.com/mcoot/lanova-arcade/internal/dependencies/random"
	"github.com/mcoot/lanova-arcade/internal/model"
	"github.com/mcoot/lanova-arcade/internal/notify"
	"github.com/mcoot/lanova-arcade/internal/services/board"
	"github.com/mcoot/lanova-arcade/internal/services/ledger"
	"github.com/mcoot/lanova-arcade/internal/services/modes"
	"github.com/mcoot/lanova-arcade/internal/storage"
)

const sessionIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// TurnResult is what a state-changing call did to a session
type TurnResult struct {
	Session *model.Session
	// Swapped is set when a swap was committed and a move spent
	Swapped bool
	// Steps are the cascade steps run by this call
	Steps []board.StepResult
	// MoveScore is what the current swap has scored across all its steps
	MoveScore int
	LevelUp   bool
	// Settlement is set when this call ended the run
	Settlement *model.Settlement
}

// Controller runs the session state machine: start, selection, swaps,
// cascade pacing, level-ups and the end-of-run award.
type Controller struct {
	storage      storage.Storage
	modes        *modes.Registry
	boardService board.ServiceInterface
	settler      *ledger.Settler
	publisher    notify.Publisher
	clock        clock.Clock
	random       random.Random
	logger       *slog.Logger

	locks *keyedMutex
}

// NewController creates a new GameController
func NewController(
	storage storage.Storage,
	modes *modes.Registry,
	boardService board.ServiceInterface,
	settler *ledger.Settler,
	publisher notify.Publisher,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:      storage,
		modes:        modes,
		boardService: boardService,
		settler:      settler,
		publisher:    publisher,
		clock:        clock,
		random:       random,
		logger:       logger.With(slog.String("component", "game")),
		locks:        newKeyedMutex(),
	}
}

// CreateSession creates a session in the NotStarted state
func (c *Controller) CreateSession(ctx context.Context, playerID model.PlayerID, modeID model.ModeID, stepped bool) (*model.Session, error) {
	mode, err := c.modes.Get(modeID)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	session := &model.Session{
		ID:             model.SessionID(c.random.String(12, sessionIDAlphabet)),
		PlayerID:       playerID,
		Mode:           mode.ID,
		State:          model.SessionStateNotStarted,
		Stepped:        stepped,
		Level:          1,
		MovesRemaining: mode.InitialMoves,
		TargetScore:    mode.InitialTarget,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := c.storage.SaveSession(ctx, session); err != nil {
		c.logger.Error("failed to save session",
			slog.String("session_id", string(session.ID)),
			slog.Any("error", err),
		)
		return nil, err
	}

	c.logger.Info("session created",
		slog.String("session_id", string(session.ID)),
		slog.String("player_id", string(playerID)),
		slog.String("mode", string(mode.ID)),
		slog.Bool("stepped", stepped),
	)
	return session, nil
}

// GetSession returns a session owned by the player
func (c *Controller) GetSession(ctx context.Context, id model.SessionID, playerID model.PlayerID) (*model.Session, error) {
	return c.load(ctx, id, playerID)
}

// ListSessions returns the player's sessions, newest first
func (c *Controller) ListSessions(ctx context.Context, playerID model.PlayerID) ([]*model.Session, error) {
	return c.storage.ListSessionsForPlayer(ctx, playerID)
}

// Start begins a new run: NotStarted or Ended -> Active. Score, moves, level
// and target are reset and a fresh board is generated.
func (c *Controller) Start(ctx context.Context, id model.SessionID, playerID model.PlayerID) (*model.Session, error) {
	unlock := c.locks.Lock(string(id))
	defer unlock()

	session, err := c.load(ctx, id, playerID)
	if err != nil {
		return nil, err
	}
	if session.State == model.SessionStateActive {
		return nil, model.ErrSessionActive
	}
	mode, err := c.modes.Get(session.Mode)
	if err != nil {
		return nil, err
	}

	generated := c.boardService.Initialize(mode, 1)
	if generated.Exhausted {
		c.logger.Warn("starting with best-effort board",
			slog.String("session_id", string(id)),
			slog.Int("attempts", generated.Attempts),
		)
	}

	now := c.clock.Now()
	session.State = model.SessionStateActive
	session.Board = generated.Board
	session.Selected = nil
	session.Processing = false
	session.Pending = nil
	session.Score = 0
	session.Level = 1
	session.MovesRemaining = mode.InitialMoves
	session.TargetScore = mode.InitialTarget
	session.Round++
	session.EndReason = ""
	session.StartedAt = now
	session.EndedAt = time.Time{}
	session.UpdatedAt = now

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	c.publish(ctx, session, model.EventSessionStarted, nil)
	c.logger.Info("session started",
		slog.String("session_id", string(id)),
		slog.Int("round", session.Round),
		slog.Int("board_size", mode.BoardSize),
	)
	return session, nil
}

// SelectCell applies a click. The first click selects, clicking the same cell
// again deselects, clicking an adjacent cell attempts a swap and clicking any
// other cell moves the selection there.
func (c *Controller) SelectCell(ctx context.Context, id model.SessionID, playerID model.PlayerID, pos model.Position) (*TurnResult, error) {
	unlock := c.locks.Lock(string(id))
	defer unlock()

	session, mode, err := c.loadActive(ctx, id, playerID)
	if err != nil {
		return nil, err
	}
	if !session.Board.IsValidPosition(pos) {
		return nil, model.ErrInvalidPosition
	}

	switch {
	case session.Selected == nil:
		session.Selected = &pos
	case *session.Selected == pos:
		session.Selected = nil
	case session.Selected.Adjacent(pos):
		from := *session.Selected
		session.Selected = nil
		return c.swap(ctx, session, mode, from, pos)
	default:
		session.Selected = &pos
	}

	session.UpdatedAt = c.clock.Now()
	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	c.publish(ctx, session, model.EventCellSelected, model.CellSelectedPayload{Selected: session.Selected})
	return &TurnResult{Session: session}, nil
}

// AttemptSwap swaps two adjacent cells. A swap that makes no match is
// rejected with model.ErrInvalidMove and leaves the board and moves as they
// were. A committed swap costs one move; non-stepped sessions resolve the
// whole cascade before returning, stepped ones wait for Step calls.
func (c *Controller) AttemptSwap(ctx context.Context, id model.SessionID, playerID model.PlayerID, a, b model.Position) (*TurnResult, error) {
	unlock := c.locks.Lock(string(id))
	defer unlock()

	session, mode, err := c.loadActive(ctx, id, playerID)
	if err != nil {
		return nil, err
	}
	session.Selected = nil
	return c.swap(ctx, session, mode, a, b)
}

// Step runs the next cascade step of a stepped session's pending resolution
func (c *Controller) Step(ctx context.Context, id model.SessionID, playerID model.PlayerID) (*TurnResult, error) {
	unlock := c.locks.Lock(string(id))
	defer unlock()

	session, err := c.load(ctx, id, playerID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, model.ErrSessionNotActive
	}
	if !session.Processing || session.Pending == nil {
		return nil, model.ErrNothingToResolve
	}
	mode, err := c.modes.Get(session.Mode)
	if err != nil {
		return nil, err
	}

	result := &TurnResult{Session: session, MoveScore: session.Pending.MoveScore}
	step := c.boardService.Advance(session.Board, board.StepParams{
		Mode:         mode,
		Level:        session.Level,
		Colors:       session.Pending.Colors,
		CascadeIndex: session.Pending.CascadeIndex,
	})

	var events []model.Event
	done := true
	if step.Ran() {
		session.Board = step.Board
		session.Score += step.ScoreDelta
		session.Pending.MoveScore += step.ScoreDelta
		session.Pending.CascadeIndex++
		result.MoveScore = session.Pending.MoveScore
		done = !c.boardService.FindMatches(step.Board).HasMatches() ||
			session.Pending.CascadeIndex >= mode.MaxCascades
		result.Steps = append(result.Steps, step)
		events = append(events, c.cascadeEvent(session, step, session.Pending.MoveScore, done))
	} else {
		c.logger.Debug("cascade stopped",
			slog.String("session_id", string(id)),
			slog.String("reason", string(step.Stop)),
		)
	}

	if done {
		events = append(events, c.finishTurn(session, mode, result)...)
	}
	return c.commit(ctx, session, result, events)
}

// Abandon ends an active session at any point, including mid-cascade. The
// score accumulated so far is still reported to the ledger.
func (c *Controller) Abandon(ctx context.Context, id model.SessionID, playerID model.PlayerID) (*TurnResult, error) {
	unlock := c.locks.Lock(string(id))
	defer unlock()

	session, err := c.load(ctx, id, playerID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, model.ErrSessionNotActive
	}

	result := &TurnResult{Session: session}
	events := []model.Event{c.end(session, model.EndReasonAbandoned)}
	c.logger.Info("session abandoned",
		slog.String("session_id", string(id)),
		slog.Int("score", session.Score),
		slog.Bool("mid_cascade", session.Pending != nil),
	)
	session.Processing = false
	session.Pending = nil
	return c.commit(ctx, session, result, events)
}

// Hint returns a swap that would make a match on the session's board. ok is
// false when the board has no legal move.
func (c *Controller) Hint(ctx context.Context, id model.SessionID, playerID model.PlayerID) (a, b model.Position, ok bool, err error) {
	session, err := c.load(ctx, id, playerID)
	if err != nil {
		return a, b, false, err
	}
	if !session.IsActive() {
		return a, b, false, model.ErrSessionNotActive
	}
	if session.Processing {
		return a, b, false, model.ErrProcessing
	}
	a, b, ok = c.boardService.Hint(session.Board)
	return a, b, ok, nil
}

// RetrySettlement re-attempts the award for the session's last run after a
// failed ledger call
func (c *Controller) RetrySettlement(ctx context.Context, id model.SessionID, playerID model.PlayerID) (*model.Settlement, error) {
	unlock := c.locks.Lock(string(id))
	defer unlock()

	session, err := c.load(ctx, id, playerID)
	if err != nil {
		return nil, err
	}
	if session.State != model.SessionStateEnded {
		return nil, model.ErrNothingToSettle
	}

	st, err := c.settler.Retry(ctx, session.SettlementKey())
	if errors.Is(err, model.ErrSettlementNotFound) {
		// The first attempt never got recorded
		return c.settler.Settle(ctx, session)
	}
	return st, err
}

// DeleteSession removes a session that is not being played. A finished run
// whose award is still pending or failed keeps its session so the award can
// be retried. Settlement history is not affected.
func (c *Controller) DeleteSession(ctx context.Context, id model.SessionID, playerID model.PlayerID) error {
	unlock := c.locks.Lock(string(id))
	defer unlock()

	session, err := c.load(ctx, id, playerID)
	if err != nil {
		return err
	}
	if session.State == model.SessionStateActive {
		return model.ErrSessionActive
	}
	st, err := c.Settlement(ctx, session)
	if err != nil {
		return err
	}
	if st != nil && (st.Status == model.SettlementFailed || st.Status == model.SettlementPending) {
		return model.ErrUnsettledRun
	}

	if err := c.storage.DeleteSession(ctx, id); err != nil {
		c.logger.Error("failed to delete session",
			slog.String("session_id", string(id)),
			slog.Any("error", err),
		)
		return err
	}
	c.logger.Info("session deleted",
		slog.String("session_id", string(id)),
		slog.String("player_id", string(playerID)),
		slog.Int("rounds", session.Round),
	)
	return nil
}

// Settlement returns the award record for the session's current run, or nil
// if there is none yet
func (c *Controller) Settlement(ctx context.Context, session *model.Session) (*model.Settlement, error) {
	if session.Round == 0 {
		return nil, nil
	}
	st, err := c.settler.Get(ctx, session.SettlementKey())
	if errors.Is(err, model.ErrSettlementNotFound) {
		return nil, nil
	}
	return st, err
}

// ListSettlements returns the player's award history, newest first
func (c *Controller) ListSettlements(ctx context.Context, playerID model.PlayerID, limit int) ([]*model.Settlement, error) {
	return c.settler.History(ctx, playerID, limit)
}

// Helper methods

func (c *Controller) load(ctx context.Context, id model.SessionID, playerID model.PlayerID) (*model.Session, error) {
	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.PlayerID != playerID {
		return nil, model.ErrNotSessionOwner
	}
	return session, nil
}

func (c *Controller) loadActive(ctx context.Context, id model.SessionID, playerID model.PlayerID) (*model.Session, model.GameMode, error) {
	session, err := c.load(ctx, id, playerID)
	if err != nil {
		return nil, model.GameMode{}, err
	}
	if !session.IsActive() {
		return nil, model.GameMode{}, model.ErrSessionNotActive
	}
	if session.Processing {
		return nil, model.GameMode{}, model.ErrProcessing
	}
	mode, err := c.modes.Get(session.Mode)
	if err != nil {
		return nil, model.GameMode{}, err
	}
	return session, mode, nil
}

// swap validates and commits a swap; the caller holds the session lock
func (c *Controller) swap(ctx context.Context, session *model.Session, mode model.GameMode, a, b model.Position) (*TurnResult, error) {
	logger := c.logger.With(
		slog.String("session_id", string(session.ID)),
		slog.String("a", a.String()),
		slog.String("b", b.String()),
	)

	swapped, _, err := c.boardService.TrySwap(session.Board, a, b)
	if err != nil {
		// Only the cleared selection is kept
		session.UpdatedAt = c.clock.Now()
		if saveErr := c.storage.SaveSession(ctx, session); saveErr != nil {
			return nil, saveErr
		}
		c.publish(ctx, session, model.EventSwapRejected, model.SwapPayload{A: a, B: b})
		logger.Info("swap rejected", slog.String("reason", err.Error()))
		return nil, err
	}

	session.Board = swapped
	session.MovesRemaining--
	result := &TurnResult{Session: session, Swapped: true}
	events := []model.Event{c.event(session, model.EventSwapAccepted, model.SwapPayload{A: a, B: b})}
	colors := mode.PaletteSize(session.Level)
	logger.Info("swap accepted", slog.Int("moves_remaining", session.MovesRemaining))

	if session.Stepped {
		session.Processing = true
		session.Pending = &model.PendingResolution{Colors: colors}
		return c.commit(ctx, session, result, events)
	}

	res := c.boardService.Resolve(session.Board, mode, session.Level, colors)
	session.Board = res.Board
	for i, step := range res.Steps {
		session.Score += step.ScoreDelta
		result.MoveScore += step.ScoreDelta
		events = append(events, c.cascadeEvent(session, step, result.MoveScore, i == len(res.Steps)-1))
	}
	result.Steps = res.Steps
	if res.Stop == board.StopCapReached {
		logger.Warn("cascade cap reached", slog.Int("cascades", res.CascadeCount))
	}

	events = append(events, c.finishTurn(session, mode, result)...)
	return c.commit(ctx, session, result, events)
}

// finishTurn closes a resolution: the end check runs first, so the move that
// spends the last move ends the run even if it also reaches the target.
func (c *Controller) finishTurn(session *model.Session, mode model.GameMode, result *TurnResult) []model.Event {
	session.Processing = false
	session.Pending = nil

	if session.MovesRemaining <= 0 {
		return []model.Event{c.end(session, model.EndReasonOutOfMoves)}
	}

	if session.Score >= session.TargetScore {
		session.Level++
		session.TargetScore = mode.NextTarget(session.TargetScore)
		session.MovesRemaining += mode.LevelUpBonusMoves
		result.LevelUp = true
		c.logger.Info("level up",
			slog.String("session_id", string(session.ID)),
			slog.Int("level", session.Level),
			slog.Int("target_score", session.TargetScore),
		)
		return []model.Event{c.event(session, model.EventLevelUp, model.LevelUpPayload{
			Level:          session.Level,
			TargetScore:    session.TargetScore,
			MovesRemaining: session.MovesRemaining,
		})}
	}
	return nil
}

func (c *Controller) end(session *model.Session, reason model.EndReason) model.Event {
	now := c.clock.Now()
	session.State = model.SessionStateEnded
	session.EndReason = reason
	session.EndedAt = now
	session.Selected = nil

	c.logger.Info("session ended",
		slog.String("session_id", string(session.ID)),
		slog.String("reason", string(reason)),
		slog.Int("score", session.Score),
	)
	return c.event(session, model.EventSessionEnded, model.SessionEndedPayload{
		Reason:          reason,
		Score:           session.Score,
		DurationSeconds: int(session.Duration(now).Seconds()),
	})
}

// commit saves the session, publishes its events and settles a run that
// just ended. A failed award is recorded on the settlement; the game outcome
// stands either way.
func (c *Controller) commit(ctx context.Context, session *model.Session, result *TurnResult, events []model.Event) (*TurnResult, error) {
	session.UpdatedAt = c.clock.Now()
	if err := c.storage.SaveSession(ctx, session); err != nil {
		c.logger.Error("failed to save session",
			slog.String("session_id", string(session.ID)),
			slog.Any("error", err),
		)
		return nil, err
	}

	for _, event := range events {
		c.emit(ctx, event)
	}

	if session.State == model.SessionStateEnded {
		st, err := c.settler.Settle(ctx, session)
		if err != nil {
			c.logger.Error("settlement incomplete",
				slog.String("session_id", string(session.ID)),
				slog.Any("error", err),
			)
		}
		result.Settlement = st
	}
	return result, nil
}

func (c *Controller) cascadeEvent(session *model.Session, step board.StepResult, moveScore int, done bool) model.Event {
	specials := make([]model.Piece, 0, len(step.Promotions))
	for _, p := range step.Promotions {
		specials = append(specials, p.Piece)
	}
	return c.event(session, model.EventCascadeStep, model.CascadeStepPayload{
		CascadeIndex: step.CascadeIndex,
		Cleared:      step.Cleared,
		Specials:     specials,
		ScoreDelta:   step.ScoreDelta,
		MoveScore:    moveScore,
		Score:        session.Score,
		Board:        step.Board,
		Done:         done,
	})
}

func (c *Controller) event(session *model.Session, t model.EventType, payload any) model.Event {
	return model.Event{
		Type:      t,
		Timestamp: c.clock.Now(),
		SessionID: session.ID,
		PlayerID:  session.PlayerID,
		Payload:   payload,
	}
}

func (c *Controller) publish(ctx context.Context, session *model.Session, t model.EventType, payload any) {
	c.emit(ctx, c.event(session, t, payload))
}

func (c *Controller) emit(ctx context.Context, event model.Event) {
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Warn("failed to publish event",
			slog.String("type", string(event.Type)),
			slog.String("session_id", string(event.SessionID)),
			slog.Any("error", err),
		)
	}
}
