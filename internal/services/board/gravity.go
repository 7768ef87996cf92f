package board

import (
	"github.com/mcoot/lanova-arcade/internal/model"
)

// ApplyGravity returns a copy of b where, in every column, the occupied cells
// are compacted to the bottom keeping their top-to-bottom order. Vacated
// cells are left empty at the top of each column.
func ApplyGravity(b *model.Board) *model.Board {
	next := model.NewBoard(b.Size)
	next.NextPieceID = b.NextPieceID

	for col := 0; col < b.Size; col++ {
		write := b.Size - 1
		for row := b.Size - 1; row >= 0; row-- {
			p := b.Cells[row][col]
			if p.IsEmpty() {
				continue
			}
			next.Set(model.Position{Row: write, Col: col}, p)
			write--
		}
	}

	return next
}
