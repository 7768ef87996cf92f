package board

import (
	"log/slog"
	"math"

	"github.com/mcoot/lanova-arcade/internal/dependencies/random"
	"github.com/mcoot/lanova-arcade/internal/model"
)

// Generator produces boards and refill pieces that avoid forming matches
type Generator struct {
	random random.Random
	logger *slog.Logger
}

// NewGenerator creates a Generator
func NewGenerator(random random.Random, logger *slog.Logger) *Generator {
	return &Generator{
		random: random,
		logger: logger.With(slog.String("component", "generator")),
	}
}

// GenerateResult is the outcome of board generation
type GenerateResult struct {
	Board     *model.Board
	Attempts  int  // full-board attempts made, at most cfg.BoardRetries
	Exhausted bool // no attempt was match-free; Board is the best effort
}

// Generate builds a size x size board using colors piece types.
// Cells are filled row-major and each is re-sampled up to cfg.CellRetries
// times if it would join a same-type group of MinMatchSize or more. The whole
// board is then checked with FindMatches and rebuilt up to cfg.BoardRetries
// attempts; if none is clean, the attempt with the fewest matched cells wins.
func (g *Generator) Generate(size, colors int, cfg model.GenerationConfig) GenerateResult {
	colors = max(colors, 1)
	attempts := max(cfg.BoardRetries, 1)

	var best *model.Board
	bestMatched := math.MaxInt

	for attempt := 1; attempt <= attempts; attempt++ {
		b := model.NewBoard(size)
		for row := 0; row < size; row++ {
			for col := 0; col < size; col++ {
				pos := model.Position{Row: row, Col: col}
				b.Place(pos, g.pickType(b, pos, colors, cfg.CellRetries), model.SpecialNone)
			}
		}

		found := FindMatches(b)
		if !found.HasMatches() {
			return GenerateResult{Board: b, Attempts: attempt}
		}
		if len(found.Matches) < bestMatched {
			best = b
			bestMatched = len(found.Matches)
		}
	}

	g.logger.Warn("board generation exhausted",
		slog.Int("size", size),
		slog.Int("colors", colors),
		slog.Int("attempts", attempts),
		slog.Int("matched_cells", bestMatched),
	)

	return GenerateResult{Board: best, Attempts: attempts, Exhausted: true}
}

// Refill places fresh pieces into every empty cell of b, bottom row first,
// using the same no-match sampling as Generate. b is modified in place, so
// callers pass a board they own. Returns the pieces placed.
func (g *Generator) Refill(b *model.Board, colors int, cellRetries int) []model.Piece {
	colors = max(colors, 1)
	var placed []model.Piece

	for row := b.Size - 1; row >= 0; row-- {
		for col := 0; col < b.Size; col++ {
			pos := model.Position{Row: row, Col: col}
			if !b.IsEmpty(pos) {
				continue
			}
			placed = append(placed, b.Place(pos, g.pickType(b, pos, colors, cellRetries), model.SpecialNone))
		}
	}

	return placed
}

// pickType samples a type for pos, preferring one that keeps every same-type
// group below MinMatchSize. When the retry budget runs out it returns the
// sampled type that formed the smallest group.
func (g *Generator) pickType(b *model.Board, pos model.Position, colors, retries int) model.PieceType {
	retries = max(retries, 1)
	bestType := model.PieceType(0)
	bestSize := math.MaxInt

	for i := 0; i < retries; i++ {
		t := model.PieceType(g.random.Intn(colors))
		size := groupSizeWith(b, pos, t)
		if size < model.MinMatchSize {
			return t
		}
		if size < bestSize {
			bestType = t
			bestSize = size
		}
	}

	return bestType
}

// groupSizeWith returns the size of the same-type group pos would belong to
// if a piece of type t were placed there. Only occupied neighbours count.
func groupSizeWith(b *model.Board, pos model.Position, t model.PieceType) int {
	visited := map[model.Position]bool{pos: true}
	size := 1

	queue := []model.Position{pos}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, off := range neighbourOffsets {
			next := model.Position{Row: cur.Row + off.Row, Col: cur.Col + off.Col}
			if !b.IsValidPosition(next) || visited[next] {
				continue
			}
			p := b.Get(next)
			if p.IsEmpty() || p.Type != t {
				continue
			}
			visited[next] = true
			size++
			queue = append(queue, next)
		}
	}

	return size
}
