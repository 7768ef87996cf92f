package bot

import (
	"github.com/mcoot/lanova-arcade/internal/model"
	"github.com/mcoot/lanova-arcade/internal/services/board"
)

// Strategy defines how a bot picks the next swap. ok is false when the board
// has no legal move.
type Strategy interface {
	ChooseSwap(b *model.Board) (a, c model.Position, ok bool)
}

// FirstStrategy always plays the engine's hint
type FirstStrategy struct {
	boardService board.ServiceInterface
}

// NewFirstStrategy creates a new FirstStrategy
func NewFirstStrategy(boardService board.ServiceInterface) *FirstStrategy {
	return &FirstStrategy{boardService: boardService}
}

// ChooseSwap returns the first legal swap in row-major order
func (s *FirstStrategy) ChooseSwap(b *model.Board) (a, c model.Position, ok bool) {
	return s.boardService.Hint(b)
}

// Swap is a pair of adjacent cells
type Swap struct {
	A model.Position
	B model.Position
}

// LegalSwaps lists every swap on the board that makes a match, each pair
// once, right neighbours before lower ones
func LegalSwaps(boardService board.ServiceInterface, b *model.Board) []Swap {
	var swaps []Swap
	for row := 0; row < b.Size; row++ {
		for col := 0; col < b.Size; col++ {
			a := model.Position{Row: row, Col: col}
			for _, c := range []model.Position{{Row: row, Col: col + 1}, {Row: row + 1, Col: col}} {
				if !b.IsValidPosition(c) {
					continue
				}
				if _, _, err := boardService.TrySwap(b, a, c); err == nil {
					swaps = append(swaps, Swap{A: a, B: c})
				}
			}
		}
	}
	return swaps
}
