package response

import (
	"time"

	"github.com/mcoot/lanova-arcade/internal/model"
	"github.com/mcoot/lanova-arcade/internal/services/board"
)

// Player represents a player in API responses
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		Role:        p.Role,
	}
}

// Token is the response for minting a development token
type Token struct {
	Player    Player    `json:"player"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Position is a board coordinate
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// PositionFromModel converts model.Position
func PositionFromModel(p model.Position) Position {
	return Position{Row: p.Row, Col: p.Col}
}

// PositionsFromModel converts a slice of positions, never returning nil
func PositionsFromModel(ps []model.Position) []Position {
	out := make([]Position, len(ps))
	for i, p := range ps {
		out[i] = PositionFromModel(p)
	}
	return out
}

// Piece is a single occupied cell
type Piece struct {
	ID      uint64 `json:"id"`
	Type    string `json:"type"`
	Special string `json:"special,omitempty"`
}

// PieceFromModel converts model.Piece
func PieceFromModel(p model.Piece) Piece {
	return Piece{
		ID:      uint64(p.ID),
		Type:    p.Type.String(),
		Special: string(p.Special),
	}
}

// PlacedPiece is a piece together with the cell it occupies
type PlacedPiece struct {
	Piece
	Row int `json:"row"`
	Col int `json:"col"`
}

// PlacedPieceFromModel converts model.Piece including its coordinates
func PlacedPieceFromModel(p model.Piece) PlacedPiece {
	return PlacedPiece{Piece: PieceFromModel(p), Row: p.Row, Col: p.Col}
}

// Board is the grid as rows of pieces. Empty cells are null, which only
// happens in the middle of a cascade.
type Board struct {
	Size int        `json:"size"`
	Rows [][]*Piece `json:"rows"`
}

// BoardFromModel converts model.Board to response Board
func BoardFromModel(b *model.Board) *Board {
	if b == nil {
		return nil
	}
	rows := make([][]*Piece, b.Size)
	for row := 0; row < b.Size; row++ {
		rows[row] = make([]*Piece, b.Size)
		for col := 0; col < b.Size; col++ {
			p := b.Cells[row][col]
			if p.IsEmpty() {
				continue
			}
			piece := PieceFromModel(p)
			rows[row][col] = &piece
		}
	}
	return &Board{Size: b.Size, Rows: rows}
}

// Settlement is the outcome of a run's award call
type Settlement struct {
	Key             string    `json:"key"`
	SessionID       string    `json:"session_id"`
	Mode            string    `json:"mode"`
	Score           int       `json:"score"`
	DurationSeconds int       `json:"duration_seconds"`
	Reason          string    `json:"reason"`
	Status          string    `json:"status"`
	Attempts        int       `json:"attempts"`
	CoinsAwarded    int       `json:"coins_awarded"`
	NewBalance      int       `json:"new_balance"`
	Error           string    `json:"error,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SettlementFromModel converts model.Settlement; nil stays nil
func SettlementFromModel(st *model.Settlement) *Settlement {
	if st == nil {
		return nil
	}
	return &Settlement{
		Key:             st.Key,
		SessionID:       string(st.SessionID),
		Mode:            string(st.Mode),
		Score:           st.Score,
		DurationSeconds: st.DurationSeconds,
		Reason:          string(st.Reason),
		Status:          string(st.Status),
		Attempts:        st.Attempts,
		CoinsAwarded:    st.CoinsAwarded,
		NewBalance:      st.NewBalance,
		Error:           st.Error,
		CreatedAt:       st.CreatedAt,
		UpdatedAt:       st.UpdatedAt,
	}
}

// SettlementsFromModel converts a settlement history
func SettlementsFromModel(sts []*model.Settlement) []Settlement {
	out := make([]Settlement, 0, len(sts))
	for _, st := range sts {
		out = append(out, *SettlementFromModel(st))
	}
	return out
}

// CoinPreview is the client-side estimate of the award. The ledger decides
// the real amount.
type CoinPreview struct {
	Coins    int  `json:"coins"`
	Cosmetic bool `json:"cosmetic"`
}

// Session represents a session in API responses
type Session struct {
	ID              string      `json:"id"`
	Mode            string      `json:"mode"`
	State           string      `json:"state"`
	Stepped         bool        `json:"stepped"`
	Processing      bool        `json:"processing"`
	Board           *Board      `json:"board,omitempty"`
	Selected        *Position   `json:"selected"`
	Score           int         `json:"score"`
	MovesRemaining  int         `json:"moves_remaining"`
	Level           int         `json:"level"`
	TargetScore     int         `json:"target_score"`
	Round           int         `json:"round"`
	EndReason       string      `json:"end_reason,omitempty"`
	CoinPreview     CoinPreview `json:"coin_preview"`
	DurationSeconds int         `json:"duration_seconds"`
	StartedAt       *time.Time  `json:"started_at,omitempty"`
	EndedAt         *time.Time  `json:"ended_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	Settlement      *Settlement `json:"settlement,omitempty"`
}

// SessionFromModel converts model.Session. now is used for the elapsed
// duration of a run still in progress.
func SessionFromModel(s *model.Session, st *model.Settlement, now time.Time) Session {
	var selected *Position
	if s.Selected != nil {
		p := PositionFromModel(*s.Selected)
		selected = &p
	}

	return Session{
		ID:              string(s.ID),
		Mode:            string(s.Mode),
		State:           string(s.State),
		Stepped:         s.Stepped,
		Processing:      s.Processing,
		Board:           BoardFromModel(s.Board),
		Selected:        selected,
		Score:           s.Score,
		MovesRemaining:  s.MovesRemaining,
		Level:           s.Level,
		TargetScore:     s.TargetScore,
		Round:           s.Round,
		EndReason:       string(s.EndReason),
		CoinPreview:     CoinPreview{Coins: s.CoinPreview(), Cosmetic: true},
		DurationSeconds: int(s.Duration(now).Seconds()),
		StartedAt:       optionalTime(s.StartedAt),
		EndedAt:         optionalTime(s.EndedAt),
		CreatedAt:       s.CreatedAt,
		Settlement:      SettlementFromModel(st),
	}
}

// SessionSummary is a session without its board, used in listings
type SessionSummary struct {
	ID        string    `json:"id"`
	Mode      string    `json:"mode"`
	State     string    `json:"state"`
	Score     int       `json:"score"`
	Level     int       `json:"level"`
	Round     int       `json:"round"`
	EndReason string    `json:"end_reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionSummaryFromModel converts model.Session without its board
func SessionSummaryFromModel(s *model.Session) SessionSummary {
	return SessionSummary{
		ID:        string(s.ID),
		Mode:      string(s.Mode),
		State:     string(s.State),
		Score:     s.Score,
		Level:     s.Level,
		Round:     s.Round,
		EndReason: string(s.EndReason),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// Step is one cascade step
type Step struct {
	CascadeIndex int           `json:"cascade_index"`
	Cleared      []Position    `json:"cleared"`
	Specials     []PlacedPiece `json:"specials"`
	Refilled     int           `json:"refilled"`
	MatchCount   int           `json:"match_count"`
	ScoreDelta   int           `json:"score_delta"`
}

// StepFromResult converts a board.StepResult
func StepFromResult(r board.StepResult) Step {
	specials := make([]PlacedPiece, len(r.Promotions))
	for i, p := range r.Promotions {
		specials[i] = PlacedPieceFromModel(p.Piece)
	}
	return Step{
		CascadeIndex: r.CascadeIndex,
		Cleared:      PositionsFromModel(r.Cleared),
		Specials:     specials,
		Refilled:     len(r.Refilled),
		MatchCount:   r.MatchCount,
		ScoreDelta:   r.ScoreDelta,
	}
}

// Turn is the response to any state-changing session call
type Turn struct {
	Session    Session     `json:"session"`
	Swapped    bool        `json:"swapped"`
	Steps      []Step      `json:"steps"`
	MoveScore  int         `json:"move_score"`
	LevelUp    bool        `json:"level_up"`
	Settlement *Settlement `json:"settlement,omitempty"`
}

// TurnFromResult converts the parts of a game.TurnResult
func TurnFromResult(session Session, swapped bool, steps []board.StepResult, moveScore int, levelUp bool, st *model.Settlement) Turn {
	out := make([]Step, len(steps))
	for i, s := range steps {
		out[i] = StepFromResult(s)
	}
	return Turn{
		Session:    session,
		Swapped:    swapped,
		Steps:      out,
		MoveScore:  moveScore,
		LevelUp:    levelUp,
		Settlement: SettlementFromModel(st),
	}
}

// Hint is a suggested swap. A and B are omitted when no move is available.
type Hint struct {
	Available bool      `json:"available"`
	A         *Position `json:"a,omitempty"`
	B         *Position `json:"b,omitempty"`
}

// HintFromModel builds a Hint; a and b are ignored unless ok
func HintFromModel(a, b model.Position, ok bool) Hint {
	if !ok {
		return Hint{}
	}
	pa, pb := PositionFromModel(a), PositionFromModel(b)
	return Hint{Available: true, A: &pa, B: &pb}
}

// Mode describes a game mode
type Mode struct {
	ID                string `json:"id"`
	DisplayName       string `json:"display_name"`
	BoardSize         int    `json:"board_size"`
	MinColors         int    `json:"min_colors"`
	MaxColors         int    `json:"max_colors"`
	InitialMoves      int    `json:"initial_moves"`
	InitialTarget     int    `json:"initial_target"`
	LevelUpBonusMoves int    `json:"level_up_bonus_moves"`
	MaxCascades       int    `json:"max_cascades"`
	StepDelayMillis   int64  `json:"step_delay_ms"`
}

// ModeFromModel converts model.GameMode
func ModeFromModel(m model.GameMode) Mode {
	return Mode{
		ID:                string(m.ID),
		DisplayName:       m.DisplayName,
		BoardSize:         m.BoardSize,
		MinColors:         m.MinColors,
		MaxColors:         m.MaxColors,
		InitialMoves:      m.InitialMoves,
		InitialTarget:     m.InitialTarget,
		LevelUpBonusMoves: m.LevelUpBonusMoves,
		MaxCascades:       m.MaxCascades,
		StepDelayMillis:   m.StepDelay.Milliseconds(),
	}
}

// Health is the health check response
type Health struct {
	Status string `json:"status"`
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
