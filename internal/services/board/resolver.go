package board

import (
	"log/slog"

	"github.com/mcoot/lanova-arcade/internal/model"
	"github.com/mcoot/lanova-arcade/internal/services/scoring"
)

// StopReason explains why a cascade step did not run
type StopReason string

const (
	StopNone       StopReason = ""
	StopQuiescent  StopReason = "quiescent"
	StopCapReached StopReason = "cap_reached"
	StopGate       StopReason = "gate"
)

// StepParams identifies one cascade step
type StepParams struct {
	Mode         model.GameMode
	Level        int
	Colors       int // palette size used for refills
	CascadeIndex int // 0 for the step triggered by the swap
}

// Promotion records a special piece created from a cluster. At is the
// cell it was placed in before gravity ran.
type Promotion struct {
	At    model.Position
	Piece model.Piece
}

// StepResult is the outcome of a single resolution step
type StepResult struct {
	// Board is the board after the step; the input board when Stop is set
	Board *model.Board
	Stop  StopReason

	CascadeIndex int
	Clusters     []model.MatchCluster
	Cleared      []model.Position // removed cells, excluding promotion cells
	Promotions   []Promotion
	Refilled     []model.Piece
	MatchCount   int
	ScoreDelta   int
}

// Ran returns true if the step changed the board
func (r StepResult) Ran() bool {
	return r.Stop == StopNone
}

// Resolution is the outcome of resolving a board to rest
type Resolution struct {
	Board        *model.Board
	TotalScore   int
	CascadeCount int
	Steps        []StepResult
	Stop         StopReason
}

// Resolver removes matches, promotes specials, applies gravity and refills
type Resolver struct {
	generator *Generator
	scorer    scoring.ServiceInterface
	logger    *slog.Logger
}

// NewResolver creates a Resolver
func NewResolver(generator *Generator, scorer scoring.ServiceInterface, logger *slog.Logger) *Resolver {
	return &Resolver{
		generator: generator,
		scorer:    scorer,
		logger:    logger.With(slog.String("component", "resolver")),
	}
}

// Advance runs cascade step p.CascadeIndex against b. The step does not run
// when b has no matches, when the mode's cascade cap is reached, or when the
// continuation gate stops the chain; Stop then says which. b is never mutated.
func (r *Resolver) Advance(b *model.Board, p StepParams) StepResult {
	found := FindMatches(b)
	if !found.HasMatches() {
		return StepResult{Board: b, Stop: StopQuiescent, CascadeIndex: p.CascadeIndex}
	}
	if p.CascadeIndex >= p.Mode.MaxCascades {
		r.logger.Debug("cascade cap reached",
			slog.String("mode", string(p.Mode.ID)),
			slog.Int("cascade_index", p.CascadeIndex),
			slog.Int("matched_cells", len(found.Matches)),
		)
		return StepResult{Board: b, Stop: StopCapReached, CascadeIndex: p.CascadeIndex}
	}
	if !r.scorer.ContinueCascade(p.Mode.Scoring, p.CascadeIndex) {
		return StepResult{Board: b, Stop: StopGate, CascadeIndex: p.CascadeIndex}
	}
	return r.apply(b, found, p)
}

// Resolve runs cascade steps from index 0 until the board is quiescent or
// the chain is stopped. A stopped chain may leave matches on the board.
func (r *Resolver) Resolve(b *model.Board, mode model.GameMode, level, colors int) Resolution {
	res := Resolution{Board: b}
	for idx := 0; ; idx++ {
		step := r.Advance(res.Board, StepParams{
			Mode:         mode,
			Level:        level,
			Colors:       colors,
			CascadeIndex: idx,
		})
		if !step.Ran() {
			res.Stop = step.Stop
			return res
		}
		res.Board = step.Board
		res.TotalScore += step.ScoreDelta
		res.CascadeCount++
		res.Steps = append(res.Steps, step)
	}
}

func (r *Resolver) apply(b *model.Board, found model.MatchResult, p StepParams) StepResult {
	next := b.Clone()

	type pending struct {
		at   model.Position
		t    model.PieceType
		kind model.SpecialKind
	}
	var promote []pending
	promoted := make(map[model.Position]bool)
	for _, c := range found.Clusters {
		kind := SpecialFor(c, p.Mode.Specials)
		if kind == model.SpecialNone {
			continue
		}
		at := Representative(c.Positions)
		promote = append(promote, pending{at: at, t: c.Type, kind: kind})
		promoted[at] = true
	}

	cleared := make([]model.Position, 0, len(found.Matches))
	for _, pos := range found.Matches {
		next.Clear(pos)
		if !promoted[pos] {
			cleared = append(cleared, pos)
		}
	}

	promotions := make([]Promotion, 0, len(promote))
	for _, pr := range promote {
		promotions = append(promotions, Promotion{At: pr.at, Piece: next.Place(pr.at, pr.t, pr.kind)})
	}

	next = ApplyGravity(next)
	refilled := r.generator.Refill(next, p.Colors, p.Mode.Generation.CellRetries)

	// Report specials where gravity left them
	for i := range promotions {
		promotions[i].Piece = findPiece(next, promotions[i].Piece.ID, promotions[i].Piece)
	}

	return StepResult{
		Board:        next,
		CascadeIndex: p.CascadeIndex,
		Clusters:     found.Clusters,
		Cleared:      cleared,
		Promotions:   promotions,
		Refilled:     refilled,
		MatchCount:   len(found.Matches),
		ScoreDelta:   r.scorer.StepScore(p.Mode.Scoring, len(found.Matches), p.CascadeIndex, p.Level),
	}
}

// SpecialFor decides which special piece, if any, a cluster creates
func SpecialFor(c model.MatchCluster, cfg model.SpecialConfig) model.SpecialKind {
	if cfg.MinSize <= 0 || c.Size < cfg.MinSize {
		return model.SpecialNone
	}
	switch {
	case cfg.BombSize > 0 && c.Size >= cfg.BombSize:
		return model.SpecialBomb
	case c.Shape == model.ShapeL || c.Shape == model.ShapeT:
		return model.SpecialWrapped
	default:
		return model.SpecialStriped
	}
}

// Representative returns the member closest to the cluster's centroid.
// Ties go to the first position in the given order.
func Representative(positions []model.Position) model.Position {
	n := len(positions)
	if n == 0 {
		return model.Position{}
	}
	sumRow, sumCol := 0, 0
	for _, p := range positions {
		sumRow += p.Row
		sumCol += p.Col
	}

	// Distances scaled by n to stay in integers
	best := positions[0]
	bestDist := -1
	for _, p := range positions {
		dr := p.Row*n - sumRow
		dc := p.Col*n - sumCol
		d := dr*dr + dc*dc
		if bestDist < 0 || d < bestDist {
			best = p
			bestDist = d
		}
	}
	return best
}

func findPiece(b *model.Board, id model.PieceID, fallback model.Piece) model.Piece {
	for row := 0; row < b.Size; row++ {
		for col := 0; col < b.Size; col++ {
			if b.Cells[row][col].ID == id {
				return b.Cells[row][col]
			}
		}
	}
	return fallback
}
