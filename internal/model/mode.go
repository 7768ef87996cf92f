package model

import "time"

// ModeID is the game identifier reported to the ledger
type ModeID string

const (
	ModeCandyCrush ModeID = "candy-crush"
	ModeCandyCrash ModeID = "candy_crash"
)

// GameMode parameterizes one instance of the match-3 engine
type GameMode struct {
	ID          ModeID
	DisplayName string

	BoardSize int
	MinColors int
	MaxColors int

	InitialMoves      int
	InitialTarget     int
	TargetMultiplier  float64
	LevelUpBonusMoves int

	MaxCascades int
	Scoring     ScoringConfig
	Specials    SpecialConfig
	Generation  GenerationConfig

	// StepDelay is a pacing hint for clients animating cascade steps
	StepDelay time.Duration
}

// ScoringConfig holds the per-step scoring constants
type ScoringConfig struct {
	PerPieceBase    int
	DecayStep       float64
	FloorMultiplier float64

	// ContinuationGate optionally truncates cascades at random. Disabled by default.
	ContinuationGate CascadeGate
}

// CascadeGate stops a cascade before step i when random() > chance(i),
// where chance(i) = max(MinChance, BaseChance - i*ChanceDecay)
type CascadeGate struct {
	Enabled     bool
	BaseChance  float64
	ChanceDecay float64
	MinChance   float64
}

// SpecialConfig holds cluster-size thresholds for special pieces
type SpecialConfig struct {
	MinSize  int // clusters at least this big create a special piece
	BombSize int // clusters at least this big create a bomb
}

// GenerationConfig bounds the no-match grid generator
type GenerationConfig struct {
	CellRetries  int
	BoardRetries int
}

// PaletteSize returns the number of piece types available at a level
func (m GameMode) PaletteSize(level int) int {
	if level < 1 {
		level = 1
	}
	n := m.MinColors + (level-1)/2
	if n > m.MaxColors {
		n = m.MaxColors
	}
	return n
}

// NextTarget returns the target score after a level up
func (m GameMode) NextTarget(current int) int {
	return int(float64(current) * m.TargetMultiplier)
}

// DefaultGeneration returns the standard generator retry bounds
func DefaultGeneration() GenerationConfig {
	return GenerationConfig{
		CellRetries:  50,
		BoardRetries: 10,
	}
}

// DefaultModes returns the built-in game modes
func DefaultModes() []GameMode {
	base := GameMode{
		MinColors:        4,
		MaxColors:        6,
		InitialTarget:    1000,
		TargetMultiplier: 1.5,
		MaxCascades:      10,
		Scoring: ScoringConfig{
			PerPieceBase:    10,
			DecayStep:       0.25,
			FloorMultiplier: 0.3,
		},
		Specials: SpecialConfig{
			MinSize:  4,
			BombSize: 5,
		},
		Generation: DefaultGeneration(),
		StepDelay:  300 * time.Millisecond,
	}

	crush := base
	crush.ID = ModeCandyCrush
	crush.DisplayName = "Candy Crush"
	crush.BoardSize = 6
	crush.InitialMoves = 20
	crush.LevelUpBonusMoves = 5

	crash := base
	crash.ID = ModeCandyCrash
	crash.DisplayName = "Candy Crash"
	crash.BoardSize = 8
	crash.InitialMoves = 30
	crash.LevelUpBonusMoves = 10

	return []GameMode{crush, crash}
}
