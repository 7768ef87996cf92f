package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/lanova-arcade/internal/api/response"
	"github.com/mcoot/lanova-arcade/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// IsJSON reports whether output is machine-readable
func (o *Output) IsJSON() bool {
	return o.format == OutputJSON
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.IsJSON() {
		o.printJSON(data)
		return
	}
	o.printText(data)
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.IsJSON() {
		o.printJSON(map[string]string{"message": msg})
		return
	}
	fmt.Fprintln(o.w, msg)
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Health:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	case []response.Mode:
		o.printModes(v)
	case response.Session:
		o.printSession(v)
	case []response.SessionSummary:
		o.printSessionList(v)
	case response.Turn:
		o.printTurn(v)
	case response.Hint:
		o.printHint(v)
	case *response.Settlement:
		o.printSettlement(v)
	case []response.Settlement:
		o.printSettlements(v)
	case response.Token:
		fmt.Fprintf(o.w, "Player: %s\n", v.Player.ID)
		fmt.Fprintf(o.w, "Expires: %s\n", v.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
		fmt.Fprintf(o.w, "Token: %s\n", v.Token)
	case SimulationReport:
		o.printSimulation(v)
	default:
		o.printJSON(data)
	}
}

func (o *Output) printModes(modes []response.Mode) {
	for _, m := range modes {
		fmt.Fprintf(o.w, "%-12s %s: %dx%d, %d moves, target %d, +%d moves per level\n",
			m.ID, m.DisplayName, m.BoardSize, m.BoardSize, m.InitialMoves, m.InitialTarget, m.LevelUpBonusMoves)
	}
}

func (o *Output) printSession(s response.Session) {
	fmt.Fprintf(o.w, "Session: %s (%s)\n", s.ID, s.Mode)
	fmt.Fprintf(o.w, "State: %s", s.State)
	if s.EndReason != "" {
		fmt.Fprintf(o.w, " (%s)", s.EndReason)
	}
	if s.Processing {
		fmt.Fprint(o.w, " [resolving]")
	}
	fmt.Fprintln(o.w)
	fmt.Fprintf(o.w, "Score: %d / %d  Level: %d  Moves: %d  Round: %d\n",
		s.Score, s.TargetScore, s.Level, s.MovesRemaining, s.Round)
	fmt.Fprintf(o.w, "Coins (preview): %d\n", s.CoinPreview.Coins)

	if s.Board != nil {
		fmt.Fprintln(o.w)
		renderBoard(o.w, s.Board, s.Selected)
	}
	if s.Settlement != nil {
		fmt.Fprintln(o.w)
		o.printSettlement(s.Settlement)
	}
}

func (o *Output) printSessionList(sessions []response.SessionSummary) {
	if len(sessions) == 0 {
		fmt.Fprintln(o.w, "No sessions")
		return
	}
	for _, s := range sessions {
		line := fmt.Sprintf("%s  %-12s %-11s score %d, level %d, round %d", s.ID, s.Mode, s.State, s.Score, s.Level, s.Round)
		if s.EndReason != "" {
			line += " (" + s.EndReason + ")"
		}
		fmt.Fprintln(o.w, line)
	}
}

func (o *Output) printTurn(t response.Turn) {
	if t.Swapped {
		fmt.Fprintln(o.w, "Swap accepted")
	}
	for _, step := range t.Steps {
		fmt.Fprintf(o.w, "  cascade %d: cleared %d, +%d", step.CascadeIndex, len(step.Cleared), step.ScoreDelta)
		if len(step.Specials) > 0 {
			kinds := make([]string, len(step.Specials))
			for i, p := range step.Specials {
				kinds[i] = fmt.Sprintf("%s %s at %d,%d", p.Type, p.Special, p.Row, p.Col)
			}
			fmt.Fprintf(o.w, " (%s)", strings.Join(kinds, ", "))
		}
		fmt.Fprintln(o.w)
	}
	if t.LevelUp {
		fmt.Fprintf(o.w, "Level up! Now level %d, target %d\n", t.Session.Level, t.Session.TargetScore)
	}
	fmt.Fprintln(o.w)
	o.printSession(t.Session)
}

func (o *Output) printHint(h response.Hint) {
	if !h.Available {
		fmt.Fprintln(o.w, "No legal move")
		return
	}
	fmt.Fprintf(o.w, "Swap %d,%d with %d,%d\n", h.A.Row, h.A.Col, h.B.Row, h.B.Col)
}

func (o *Output) printSettlement(st *response.Settlement) {
	if st == nil {
		fmt.Fprintln(o.w, "No settlement")
		return
	}
	fmt.Fprintf(o.w, "Settlement %s: %s", st.Key, st.Status)
	if st.Status == string(model.SettlementAwarded) {
		fmt.Fprintf(o.w, ", %d coins (balance %d)", st.CoinsAwarded, st.NewBalance)
	}
	if st.Error != "" {
		fmt.Fprintf(o.w, ", %s", st.Error)
	}
	fmt.Fprintln(o.w)
}

func (o *Output) printSettlements(sts []response.Settlement) {
	if len(sts) == 0 {
		fmt.Fprintln(o.w, "No settlements")
		return
	}
	for _, st := range sts {
		fmt.Fprintf(o.w, "%s  %-12s %-8s score %d in %ds, %d coins  %s\n",
			st.CreatedAt.Format("2006-01-02 15:04"), st.Mode, st.Status, st.Score, st.DurationSeconds, st.CoinsAwarded, st.Key)
	}
}

func (o *Output) printSimulation(r SimulationReport) {
	fmt.Fprintf(o.w, "Mode: %s  Strategy: %s  Seed: %d\n", r.Mode, r.Strategy, r.Seed)
	fmt.Fprintf(o.w, "Ended: %s after %d swaps (%d actions)\n", r.EndReason, r.Swaps, r.Actions)
	fmt.Fprintf(o.w, "Score: %d  Level: %d  Best cascade: %d steps\n", r.Score, r.Level, r.LongestCascade)
	if r.Settlement != nil {
		o.printSettlement(r.Settlement)
	}
}

// renderBoard draws the grid with one colour letter per cell. Specials get a
// suffix: "=" striped, "#" wrapped, "*" bomb. Empty cells are dots and the
// selected cell is bracketed.
func renderBoard(w io.Writer, b *response.Board, selected *response.Position) {
	if b == nil || b.Size == 0 {
		return
	}

	fmt.Fprint(w, "    ")
	for col := 0; col < b.Size; col++ {
		fmt.Fprintf(w, " %2d ", col)
	}
	fmt.Fprintln(w)

	for row := 0; row < b.Size; row++ {
		fmt.Fprintf(w, " %2d ", row)
		for col := 0; col < b.Size; col++ {
			cell := cellLabel(b.Rows[row][col])
			if selected != nil && selected.Row == row && selected.Col == col {
				fmt.Fprintf(w, "[%s]", cell)
			} else {
				fmt.Fprintf(w, " %s ", cell)
			}
		}
		fmt.Fprintln(w)
	}
}

func cellLabel(p *response.Piece) string {
	if p == nil {
		return ". "
	}
	letter := "?"
	if p.Type != "" {
		letter = strings.ToUpper(p.Type[:1])
	}
	switch model.SpecialKind(p.Special) {
	case model.SpecialStriped:
		return letter + "="
	case model.SpecialWrapped:
		return letter + "#"
	case model.SpecialBomb:
		return letter + "*"
	default:
		return letter + " "
	}
}
