package bot

import (
	"github.com/mcoot/lanova-arcade/internal/dependencies/random"
	"github.com/mcoot/lanova-arcade/internal/model"
	"github.com/mcoot/lanova-arcade/internal/services/board"
)

// RandomStrategy picks uniformly among the legal swaps
type RandomStrategy struct {
	boardService board.ServiceInterface
	random       random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(boardService board.ServiceInterface, rnd random.Random) *RandomStrategy {
	return &RandomStrategy{boardService: boardService, random: rnd}
}

// ChooseSwap picks a random legal swap
func (s *RandomStrategy) ChooseSwap(b *model.Board) (a, c model.Position, ok bool) {
	swaps := LegalSwaps(s.boardService, b)
	if len(swaps) == 0 {
		return model.Position{}, model.Position{}, false
	}
	pick := swaps[s.random.Intn(len(swaps))]
	return pick.A, pick.B, true
}
