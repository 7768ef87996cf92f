package board

import (
	"cmp"
	"slices"

	"github.com/mcoot/lanova-arcade/internal/model"
)

var neighbourOffsets = [4]model.Position{
	{Row: -1, Col: 0},
	{Row: 1, Col: 0},
	{Row: 0, Col: -1},
	{Row: 0, Col: 1},
}

// FindMatches returns every 4-connected same-type group of at least
// model.MinMatchSize pieces. Clusters are ordered by their first cell in
// row-major order, and each matched position appears exactly once.
func FindMatches(b *model.Board) model.MatchResult {
	result := model.MatchResult{}
	visited := make([][]bool, b.Size)
	for i := range visited {
		visited[i] = make([]bool, b.Size)
	}

	for row := 0; row < b.Size; row++ {
		for col := 0; col < b.Size; col++ {
			if visited[row][col] || b.Cells[row][col].IsEmpty() {
				continue
			}
			component := floodFill(b, model.Position{Row: row, Col: col}, visited)
			if len(component) < model.MinMatchSize {
				continue
			}
			slices.SortFunc(component, comparePositions)
			result.Clusters = append(result.Clusters, model.MatchCluster{
				Type:      b.Cells[row][col].Type,
				Positions: component,
				Size:      len(component),
				Shape:     ClassifyShape(component),
			})
			result.Matches = append(result.Matches, component...)
		}
	}

	return result
}

// floodFill collects the connected component of same-type pieces containing start
func floodFill(b *model.Board, start model.Position, visited [][]bool) []model.Position {
	t := b.Get(start).Type
	queue := []model.Position{start}
	visited[start.Row][start.Col] = true
	var component []model.Position

	for len(queue) > 0 {
		pos := queue[0]
		queue = queue[1:]
		component = append(component, pos)

		for _, off := range neighbourOffsets {
			next := model.Position{Row: pos.Row + off.Row, Col: pos.Col + off.Col}
			if !b.IsValidPosition(next) || visited[next.Row][next.Col] {
				continue
			}
			p := b.Get(next)
			if p.IsEmpty() || p.Type != t {
				continue
			}
			visited[next.Row][next.Col] = true
			queue = append(queue, next)
		}
	}

	return component
}

// ClassifyShape labels a cluster. Only strictly contiguous single-axis runs
// are horizontal or vertical; a single-axis group with a gap is irregular.
func ClassifyShape(positions []model.Position) model.Shape {
	if len(positions) == 0 {
		return model.ShapeIrregular
	}

	minRow, maxRow := positions[0].Row, positions[0].Row
	minCol, maxCol := positions[0].Col, positions[0].Col
	for _, p := range positions[1:] {
		minRow = min(minRow, p.Row)
		maxRow = max(maxRow, p.Row)
		minCol = min(minCol, p.Col)
		maxCol = max(maxCol, p.Col)
	}

	size := len(positions)
	switch {
	case minRow == maxRow:
		if maxCol-minCol+1 == size {
			return model.ShapeHorizontal
		}
		return model.ShapeIrregular
	case minCol == maxCol:
		if maxRow-minRow+1 == size {
			return model.ShapeVertical
		}
		return model.ShapeIrregular
	case size >= 5:
		return model.ShapeCross
	case size == 4:
		return model.ShapeT
	default:
		return model.ShapeL
	}
}

// comparePositions orders positions top-to-bottom, left-to-right
func comparePositions(a, b model.Position) int {
	if a.Row != b.Row {
		return cmp.Compare(a.Row, b.Row)
	}
	return cmp.Compare(a.Col, b.Col)
}
