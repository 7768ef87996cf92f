package model

// Shape classifies a match cluster for special-piece promotion
type Shape string

const (
	ShapeHorizontal Shape = "horizontal"
	ShapeVertical   Shape = "vertical"
	ShapeL          Shape = "l"
	ShapeT          Shape = "t"
	ShapeCross      Shape = "cross"
	ShapeIrregular  Shape = "irregular"
)

// MinMatchSize is the smallest connected group that counts as a match
const MinMatchSize = 3

// MatchCluster is a maximal 4-connected group of same-type pieces with
// at least MinMatchSize members. Positions are in row-major order.
type MatchCluster struct {
	Type      PieceType
	Positions []Position
	Size      int
	Shape     Shape
}

// MatchResult is the output of match detection over one board snapshot
type MatchResult struct {
	Matches  []Position // every matched cell, each exactly once
	Clusters []MatchCluster
}

// HasMatches returns true if any cluster was found
func (r MatchResult) HasMatches() bool {
	return len(r.Clusters) > 0
}
