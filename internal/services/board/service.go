package board

import (
	"log/slog"

	"github.com/mcoot/lanova-arcade/internal/dependencies/random"
	"github.com/mcoot/lanova-arcade/internal/model"
	"github.com/mcoot/lanova-arcade/internal/services/scoring"
)

// Service is the match-3 engine: generation, swaps and cascade resolution.
// It holds no board state; every operation takes a board and returns a new one.
type Service struct {
	generator *Generator
	resolver  *Resolver
}

// New creates a new BoardService
func New(random random.Random, scorer scoring.ServiceInterface, logger *slog.Logger) *Service {
	generator := NewGenerator(random, logger)
	return &Service{
		generator: generator,
		resolver:  NewResolver(generator, scorer, logger),
	}
}

// Initialize generates a match-free board for a mode at the given level
func (s *Service) Initialize(mode model.GameMode, level int) GenerateResult {
	return s.generator.Generate(mode.BoardSize, mode.PaletteSize(level), mode.Generation)
}

// FindMatches detects all matches on a board
func (s *Service) FindMatches(b *model.Board) model.MatchResult {
	return FindMatches(b)
}

// ValidateSwap checks that both positions are on the board and adjacent
func (s *Service) ValidateSwap(b *model.Board, a, c model.Position) error {
	if !b.IsValidPosition(a) || !b.IsValidPosition(c) {
		return model.ErrInvalidPosition
	}
	if !a.Adjacent(c) {
		return model.ErrNotAdjacent
	}
	return nil
}

// TrySwap returns the swapped board if the swap creates at least one match.
// The input board is never modified; a swap without a match returns
// model.ErrInvalidMove.
func (s *Service) TrySwap(b *model.Board, a, c model.Position) (*model.Board, model.MatchResult, error) {
	if err := s.ValidateSwap(b, a, c); err != nil {
		return nil, model.MatchResult{}, err
	}
	swapped := b.Swapped(a, c)
	found := FindMatches(swapped)
	if !found.HasMatches() {
		return nil, model.MatchResult{}, model.ErrInvalidMove
	}
	return swapped, found, nil
}

// Hint returns the first swap that makes a match, scanning row-major and
// trying the right neighbour before the one below. ok is false on a board
// with no legal move.
func (s *Service) Hint(b *model.Board) (a, c model.Position, ok bool) {
	for row := 0; row < b.Size; row++ {
		for col := 0; col < b.Size; col++ {
			a = model.Position{Row: row, Col: col}
			for _, c = range []model.Position{{Row: row, Col: col + 1}, {Row: row + 1, Col: col}} {
				if !b.IsValidPosition(c) {
					continue
				}
				if _, _, err := s.TrySwap(b, a, c); err == nil {
					return a, c, true
				}
			}
		}
	}
	return model.Position{}, model.Position{}, false
}

// Advance runs a single cascade step
func (s *Service) Advance(b *model.Board, p StepParams) StepResult {
	return s.resolver.Advance(b, p)
}

// Resolve runs cascade steps until the board is at rest
func (s *Service) Resolve(b *model.Board, mode model.GameMode, level, colors int) Resolution {
	return s.resolver.Resolve(b, mode, level, colors)
}

// Interface for dependency injection
type ServiceInterface interface {
	Initialize(mode model.GameMode, level int) GenerateResult
	FindMatches(b *model.Board) model.MatchResult
	ValidateSwap(b *model.Board, a, c model.Position) error
	TrySwap(b *model.Board, a, c model.Position) (*model.Board, model.MatchResult, error)
	Hint(b *model.Board) (a, c model.Position, ok bool)
	Advance(b *model.Board, p StepParams) StepResult
	Resolve(b *model.Board, mode model.GameMode, level, colors int) Resolution
}

var _ ServiceInterface = (*Service)(nil)
