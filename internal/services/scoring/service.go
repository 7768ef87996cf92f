package scoring

import (
	"github.com/shopspring/decimal"

	"github.com/mcoot/lanova-arcade/internal/dependencies/random"
	"github.com/mcoot/lanova-arcade/internal/model"
)

// Service computes per-step scores and evaluates the optional cascade gate
type Service struct {
	random random.Random
}

// New creates a new ScoringService
func New(random random.Random) *Service {
	return &Service{
		random: random,
	}
}

// Multiplier returns the cascade multiplier for a 0-based cascade index:
// max(floor, 1 - index*decay). Index 0 is always 1.
func Multiplier(cfg model.ScoringConfig, cascadeIndex int) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if cascadeIndex <= 0 {
		return one
	}
	decayed := one.Sub(decimal.NewFromFloat(cfg.DecayStep).Mul(decimal.NewFromInt(int64(cascadeIndex))))
	return decimal.Max(decimal.NewFromFloat(cfg.FloorMultiplier), decayed)
}

// StepScore returns floor(matchCount * (perPieceBase + level) * multiplier).
// Decimal arithmetic keeps multipliers like 1 - 3*0.2 exact before flooring.
func (s *Service) StepScore(cfg model.ScoringConfig, matchCount, cascadeIndex, level int) int {
	if matchCount <= 0 {
		return 0
	}
	base := decimal.NewFromInt(int64(matchCount) * int64(cfg.PerPieceBase+level))
	return int(base.Mul(Multiplier(cfg, cascadeIndex)).Floor().IntPart())
}

// ContinueCascade reports whether the cascade may run step cascadeIndex.
// It always allows the triggering step and always allows everything when
// the gate is disabled.
func (s *Service) ContinueCascade(cfg model.ScoringConfig, cascadeIndex int) bool {
	gate := cfg.ContinuationGate
	if !gate.Enabled || cascadeIndex <= 0 {
		return true
	}
	return s.random.Float64() <= gateChance(gate, cascadeIndex)
}

func gateChance(gate model.CascadeGate, cascadeIndex int) float64 {
	chance := gate.BaseChance - float64(cascadeIndex)*gate.ChanceDecay
	return max(chance, gate.MinChance)
}

// Interface for dependency injection
type ServiceInterface interface {
	StepScore(cfg model.ScoringConfig, matchCount, cascadeIndex, level int) int
	ContinueCascade(cfg model.ScoringConfig, cascadeIndex int) bool
}

var _ ServiceInterface = (*Service)(nil)
