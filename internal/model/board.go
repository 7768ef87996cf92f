package model

import "fmt"

// Position identifies a cell on the board
type Position struct {
	Row int // 0-indexed from top
	Col int // 0-indexed from left
}

// Adjacent returns true if o is exactly one step away horizontally or vertically
func (p Position) Adjacent(o Position) bool {
	dr := p.Row - o.Row
	dc := p.Col - o.Col
	return dr*dr+dc*dc == 1
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Board is a square grid of pieces owned by a single session.
// Mutating helpers are intended for use on a fresh Clone; callers that need
// copy-on-write semantics go through the engine, which always clones first.
type Board struct {
	Size  int
	Cells [][]Piece // Row-major: Cells[row][col], zero Piece means empty

	// NextPieceID is the arena counter used to allocate piece IDs
	NextPieceID PieceID
}

// NewBoard creates an empty board of the given size
func NewBoard(size int) *Board {
	cells := make([][]Piece, size)
	for i := range cells {
		cells[i] = make([]Piece, size)
	}
	return &Board{
		Size:        size,
		Cells:       cells,
		NextPieceID: 1,
	}
}

// Clone returns a deep copy of the board
func (b *Board) Clone() *Board {
	cells := make([][]Piece, b.Size)
	for row := range cells {
		cells[row] = make([]Piece, b.Size)
		copy(cells[row], b.Cells[row])
	}
	return &Board{
		Size:        b.Size,
		Cells:       cells,
		NextPieceID: b.NextPieceID,
	}
}

// Get returns the piece at the given position, or an empty piece if out of bounds
func (b *Board) Get(pos Position) Piece {
	if !b.IsValidPosition(pos) {
		return Piece{}
	}
	return b.Cells[pos.Row][pos.Col]
}

// Set stores a piece at the given position, rewriting its coordinates to match
func (b *Board) Set(pos Position, p Piece) {
	if !b.IsValidPosition(pos) {
		return
	}
	if !p.IsEmpty() {
		p.Row = pos.Row
		p.Col = pos.Col
	}
	b.Cells[pos.Row][pos.Col] = p
}

// Clear empties the cell at the given position
func (b *Board) Clear(pos Position) {
	if b.IsValidPosition(pos) {
		b.Cells[pos.Row][pos.Col] = Piece{}
	}
}

// Place allocates a new piece with a fresh ID and stores it at pos
func (b *Board) Place(pos Position, t PieceType, special SpecialKind) Piece {
	p := Piece{
		ID:      b.NextPieceID,
		Type:    t,
		Special: special,
	}
	b.NextPieceID++
	b.Set(pos, p)
	return b.Get(pos)
}

// IsValidPosition returns true if the position is within bounds
func (b *Board) IsValidPosition(pos Position) bool {
	return pos.Row >= 0 && pos.Row < b.Size && pos.Col >= 0 && pos.Col < b.Size
}

// IsEmpty returns true if the cell at the given position is empty
func (b *Board) IsEmpty(pos Position) bool {
	return b.Get(pos).IsEmpty()
}

// IsFull returns true if all cells are occupied
func (b *Board) IsFull() bool {
	return b.EmptyCount() == 0
}

// EmptyCount returns the number of empty cells
func (b *Board) EmptyCount() int {
	count := 0
	for row := 0; row < b.Size; row++ {
		for col := 0; col < b.Size; col++ {
			if b.Cells[row][col].IsEmpty() {
				count++
			}
		}
	}
	return count
}

// Swapped returns a copy of the board with the pieces at a and c exchanged
func (b *Board) Swapped(a, c Position) *Board {
	next := b.Clone()
	pa := next.Get(a)
	pc := next.Get(c)
	next.Set(a, pc)
	next.Set(c, pa)
	return next
}

// GetCol returns all pieces in the given column, top to bottom
func (b *Board) GetCol(col int) []Piece {
	if col < 0 || col >= b.Size {
		return nil
	}
	result := make([]Piece, b.Size)
	for row := 0; row < b.Size; row++ {
		result[row] = b.Cells[row][col]
	}
	return result
}

// Types returns the piece types as a grid, -1 for empty cells
func (b *Board) Types() [][]int {
	out := make([][]int, b.Size)
	for row := range out {
		out[row] = make([]int, b.Size)
		for col := range out[row] {
			p := b.Cells[row][col]
			if p.IsEmpty() {
				out[row][col] = -1
			} else {
				out[row][col] = int(p.Type)
			}
		}
	}
	return out
}

// CheckConsistency verifies every piece's coordinates match its storage
// position and that IDs are unique and below the arena counter
func (b *Board) CheckConsistency() error {
	seen := make(map[PieceID]bool, b.Size*b.Size)
	for row := 0; row < b.Size; row++ {
		for col := 0; col < b.Size; col++ {
			p := b.Cells[row][col]
			if p.IsEmpty() {
				continue
			}
			if p.Row != row || p.Col != col {
				return fmt.Errorf("%w: piece %d at (%d,%d) reports (%d,%d)",
					ErrBoardInconsistent, p.ID, row, col, p.Row, p.Col)
			}
			if seen[p.ID] || p.ID >= b.NextPieceID {
				return fmt.Errorf("%w: piece id %d reused", ErrBoardInconsistent, p.ID)
			}
			seen[p.ID] = true
		}
	}
	return nil
}
