package model

// PieceID identifies a piece for the lifetime of a board. IDs are allocated
// from the board's arena counter and never reused.
type PieceID uint64

// PieceType is a colour index into the palette, 0..MaxPaletteSize-1
type PieceType int

// MaxPaletteSize is the largest palette any mode can use
const MaxPaletteSize = 6

var pieceTypeNames = [MaxPaletteSize]string{"red", "orange", "yellow", "green", "blue", "purple"}

// String returns the colour name for the type
func (t PieceType) String() string {
	if t < 0 || int(t) >= len(pieceTypeNames) {
		return "unknown"
	}
	return pieceTypeNames[t]
}

// SpecialKind marks a piece created from a large match
type SpecialKind string

const (
	SpecialNone    SpecialKind = ""
	SpecialStriped SpecialKind = "striped"
	SpecialWrapped SpecialKind = "wrapped"
	SpecialBomb    SpecialKind = "bomb"
)

// Piece is a single cell occupant. The zero value is an empty cell.
type Piece struct {
	ID      PieceID
	Type    PieceType
	Row     int
	Col     int
	Special SpecialKind
}

// IsEmpty returns true for a vacated cell
func (p Piece) IsEmpty() bool {
	return p.ID == 0
}

// Position returns the piece's coordinate
func (p Piece) Position() Position {
	return Position{Row: p.Row, Col: p.Col}
}
