package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/lanova-arcade/internal/model"
	"github.com/mcoot/lanova-arcade/internal/services/game"
)

// MaxBotIterations is a safety limit for the Play loop
const MaxBotIterations = 1000

var (
	ErrUnknownStrategy = errors.New("unknown bot strategy")
	ErrIterationLimit  = errors.New("bot gave up before the run ended")
)

// ActionType is the kind of call a bot made
type ActionType string

const (
	ActionSwap    ActionType = "swap"
	ActionStep    ActionType = "step"
	ActionAbandon ActionType = "abandon"
)

// Action is a single call the bot made and where it left the session
type Action struct {
	Type           ActionType
	Swap           Swap
	Cascades       int
	ScoreDelta     int
	LevelUp        bool
	Score          int
	MovesRemaining int
	Level          int
}

// GameController is the part of game.Controller a bot drives
type GameController interface {
	CreateSession(ctx context.Context, playerID model.PlayerID, modeID model.ModeID, stepped bool) (*model.Session, error)
	Start(ctx context.Context, id model.SessionID, playerID model.PlayerID) (*model.Session, error)
	AttemptSwap(ctx context.Context, id model.SessionID, playerID model.PlayerID, a, b model.Position) (*game.TurnResult, error)
	Step(ctx context.Context, id model.SessionID, playerID model.PlayerID) (*game.TurnResult, error)
	Abandon(ctx context.Context, id model.SessionID, playerID model.PlayerID) (*game.TurnResult, error)
}

var _ GameController = (*game.Controller)(nil)

// PlayRequest describes a run for the bot to play
type PlayRequest struct {
	PlayerID model.PlayerID
	Mode     model.ModeID
	Stepped  bool
	Strategy string
	// Observe, if set, is called after every action
	Observe func(Action, *model.Session)
}

// PlayResult is the finished run
type PlayResult struct {
	Session    *model.Session
	Actions    []Action
	Settlement *model.Settlement
}

// Service plays whole runs through the game controller, the same path a
// player's client takes. Used for simulations and load checks.
type Service struct {
	gameController GameController
	strategies     map[string]Strategy
	logger         *slog.Logger
}

// NewService creates a new bot Service
func NewService(gameController GameController, strategies map[string]Strategy, logger *slog.Logger) *Service {
	return &Service{
		gameController: gameController,
		strategies:     strategies,
		logger:         logger.With(slog.String("component", "bot-service")),
	}
}

// Play creates a session, starts it and makes moves until the run ends. A
// board with no legal move is abandoned.
func (s *Service) Play(ctx context.Context, req PlayRequest) (*PlayResult, error) {
	strategy, ok := s.strategies[req.Strategy]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, req.Strategy)
	}

	session, err := s.gameController.CreateSession(ctx, req.PlayerID, req.Mode, req.Stepped)
	if err != nil {
		return nil, err
	}
	session, err = s.gameController.Start(ctx, session.ID, req.PlayerID)
	if err != nil {
		return nil, err
	}

	result := &PlayResult{Session: session}
	for range MaxBotIterations {
		if !session.IsActive() {
			break
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		var action Action
		var turn *game.TurnResult
		switch {
		case session.Processing:
			action.Type = ActionStep
			turn, err = s.gameController.Step(ctx, session.ID, req.PlayerID)
		default:
			a, c, ok := strategy.ChooseSwap(session.Board)
			if !ok {
				s.logger.Info("no legal move, abandoning",
					slog.String("session_id", string(session.ID)),
					slog.Int("score", session.Score),
				)
				action.Type = ActionAbandon
				turn, err = s.gameController.Abandon(ctx, session.ID, req.PlayerID)
				break
			}
			action.Type = ActionSwap
			action.Swap = Swap{A: a, B: c}
			turn, err = s.gameController.AttemptSwap(ctx, session.ID, req.PlayerID, a, c)
		}
		if err != nil {
			return result, err
		}

		session = turn.Session
		action.Cascades = len(turn.Steps)
		for _, step := range turn.Steps {
			action.ScoreDelta += step.ScoreDelta
		}
		action.LevelUp = turn.LevelUp
		action.Score = session.Score
		action.MovesRemaining = session.MovesRemaining
		action.Level = session.Level

		result.Session = session
		result.Actions = append(result.Actions, action)
		if turn.Settlement != nil {
			result.Settlement = turn.Settlement
		}
		if req.Observe != nil {
			req.Observe(action, session)
		}
	}

	if session.IsActive() {
		return result, ErrIterationLimit
	}

	s.logger.Info("bot run finished",
		slog.String("session_id", string(session.ID)),
		slog.String("strategy", req.Strategy),
		slog.Int("actions", len(result.Actions)),
		slog.Int("score", session.Score),
		slog.Int("level", session.Level),
	)
	return result, nil
}

// Strategies returns the names this service can play with
func (s *Service) Strategies() []string {
	var names []string
	for _, name := range model.ValidBotStrategies() {
		if _, ok := s.strategies[name]; ok {
			names = append(names, name)
		}
	}
	return names
}
