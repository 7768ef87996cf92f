package board

import "github.com/mcoot/lanova-arcade/internal/model"

// patternBoard returns a size x size board with no two adjacent cells of the
// same type, using types 0-3
func patternBoard(size int) *model.Board {
	b := model.NewBoard(size)
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			b.Place(model.Position{Row: row, Col: col}, model.PieceType((row+2*col)%4), model.SpecialNone)
		}
	}
	return b
}

// withType overwrites cells with a fresh piece of type t
func withType(b *model.Board, t model.PieceType, positions ...model.Position) *model.Board {
	for _, pos := range positions {
		b.Place(pos, t, model.SpecialNone)
	}
	return b
}

func pos(row, col int) model.Position {
	return model.Position{Row: row, Col: col}
}

func testMode() model.GameMode {
	return model.DefaultModes()[0]
}
