package board

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/lanova-arcade/internal/dependencies/random"
	"github.com/mcoot/lanova-arcade/internal/model"
	"github.com/mcoot/lanova-arcade/internal/services/scoring"
	"github.com/mcoot/lanova-arcade/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.service = New(random.NewSeeded(21), scoring.New(random.NewSeeded(22)), testutil.NopLogger())
}

func (s *ServiceSuite) TestInitialize() {
	mode := testMode()
	result := s.service.Initialize(mode, 1)

	s.False(result.Exhausted)
	s.Equal(mode.BoardSize, result.Board.Size)
	s.False(s.service.FindMatches(result.Board).HasMatches())
}

func (s *ServiceSuite) TestValidateSwap() {
	b := patternBoard(6)

	s.NoError(s.service.ValidateSwap(b, pos(0, 0), pos(0, 1)))
	s.NoError(s.service.ValidateSwap(b, pos(3, 3), pos(4, 3)))
	s.ErrorIs(s.service.ValidateSwap(b, pos(0, 0), pos(1, 1)), model.ErrNotAdjacent)
	s.ErrorIs(s.service.ValidateSwap(b, pos(0, 0), pos(0, 2)), model.ErrNotAdjacent)
	s.ErrorIs(s.service.ValidateSwap(b, pos(0, 0), pos(0, 0)), model.ErrNotAdjacent)
	s.ErrorIs(s.service.ValidateSwap(b, pos(-1, 0), pos(0, 0)), model.ErrInvalidPosition)
	s.ErrorIs(s.service.ValidateSwap(b, pos(5, 5), pos(5, 6)), model.ErrInvalidPosition)
}

func (s *ServiceSuite) TestTrySwapCreatingMatch() {
	// Row 0 becomes 5 5 5 after swapping (0,2) and (1,2)
	b := withType(patternBoard(6), 5, pos(0, 0), pos(0, 1), pos(1, 2))
	before := b.Clone()

	swapped, found, err := s.service.TrySwap(b, pos(0, 2), pos(1, 2))

	s.Require().NoError(err)
	s.Require().Len(found.Clusters, 1)
	s.Equal(3, found.Clusters[0].Size)
	s.Equal(model.PieceType(5), swapped.Get(pos(0, 2)).Type)
	s.NoError(swapped.CheckConsistency())
	s.Equal(before.Cells, b.Cells)
}

func (s *ServiceSuite) TestTrySwapWithoutMatch() {
	b := patternBoard(6)
	before := b.Clone()

	swapped, _, err := s.service.TrySwap(b, pos(0, 0), pos(0, 1))

	s.ErrorIs(err, model.ErrInvalidMove)
	s.Nil(swapped)
	s.Equal(before.Cells, b.Cells)
}

func (s *ServiceSuite) TestHint() {
	_, _, ok := s.service.Hint(patternBoard(6))
	s.False(ok, "alternating pattern has no legal move")

	b := withType(patternBoard(6), 5, pos(0, 0), pos(0, 1), pos(1, 2))
	a, c, ok := s.service.Hint(b)
	s.Require().True(ok)
	_, _, err := s.service.TrySwap(b, a, c)
	s.NoError(err)
}
