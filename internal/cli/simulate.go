package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mcoot/lanova-arcade/internal/api/response"
	"github.com/mcoot/lanova-arcade/internal/factory"
	"github.com/mcoot/lanova-arcade/internal/model"
	"github.com/mcoot/lanova-arcade/internal/services/bot"
)

const simulatedPlayer = model.PlayerID("simulator")

// SimulationReport summarizes a locally played run
type SimulationReport struct {
	Mode           string               `json:"mode"`
	Strategy       string               `json:"strategy"`
	Seed           uint64               `json:"seed"`
	SessionID      string               `json:"session_id"`
	EndReason      string               `json:"end_reason"`
	Score          int                  `json:"score"`
	Level          int                  `json:"level"`
	Swaps          int                  `json:"swaps"`
	Actions        int                  `json:"actions"`
	LongestCascade int                  `json:"longest_cascade"`
	Settlement     *response.Settlement `json:"settlement,omitempty"`
}

// SimulationOptions configures a local run
type SimulationOptions struct {
	Mode     string
	Strategy string
	Seed     uint64
	Stepped  bool
	// Trace, if set, receives every action and the board after it
	Trace  io.Writer
	Logger *slog.Logger
}

func newSimulateCmd() *cobra.Command {
	var opts SimulationOptions
	var boards bool

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play a seeded run locally with the engine, no server needed",
		Long: `Play a whole run in-process against an in-memory store and ledger.
The same seed, mode and strategy always produce the same game.

Strategies:
  - first: always play the first legal swap
  - random: pick uniformly among the legal swaps`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output(cmd)
			if boards && !out.IsJSON() {
				opts.Trace = cmd.OutOrStdout()
			}
			if cfg.Verbose {
				opts.Logger = slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), nil))
			}

			report, err := Simulate(cmd.Context(), opts)
			if err != nil {
				return err
			}
			out.Print(report)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Mode, "mode", string(model.ModeCandyCrush), "Game mode")
	cmd.Flags().StringVar(&opts.Strategy, "strategy", model.BotStrategyFirst, "Move strategy: first, random")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 1, "Engine seed")
	cmd.Flags().BoolVar(&opts.Stepped, "stepped", false, "Resolve cascades one step at a time")
	cmd.Flags().BoolVar(&boards, "boards", false, "Print the board after every action")

	return cmd
}

// Simulate plays one run with a seeded engine and returns its summary
func Simulate(ctx context.Context, opts SimulationOptions) (SimulationReport, error) {
	seed := opts.Seed
	app, err := factory.New(factory.Config{Logger: opts.Logger, Seed: &seed})
	if err != nil {
		return SimulationReport{}, err
	}
	defer func() { _ = app.Close() }()

	req := bot.PlayRequest{
		PlayerID: simulatedPlayer,
		Mode:     model.ModeID(opts.Mode),
		Stepped:  opts.Stepped,
		Strategy: opts.Strategy,
	}
	if opts.Trace != nil {
		req.Observe = func(action bot.Action, session *model.Session) {
			traceAction(opts.Trace, action, session)
		}
	}

	result, err := app.BotService.Play(ctx, req)
	if err != nil {
		return SimulationReport{}, err
	}

	report := SimulationReport{
		Mode:       opts.Mode,
		Strategy:   opts.Strategy,
		Seed:       opts.Seed,
		SessionID:  string(result.Session.ID),
		EndReason:  string(result.Session.EndReason),
		Score:      result.Session.Score,
		Level:      result.Session.Level,
		Actions:    len(result.Actions),
		Settlement: response.SettlementFromModel(result.Settlement),
	}
	cascade := 0
	for _, action := range result.Actions {
		switch action.Type {
		case bot.ActionSwap:
			report.Swaps++
			cascade = action.Cascades
		case bot.ActionStep:
			cascade += action.Cascades
		}
		report.LongestCascade = max(report.LongestCascade, cascade)
	}
	return report, nil
}

func traceAction(w io.Writer, action bot.Action, session *model.Session) {
	switch action.Type {
	case bot.ActionSwap:
		fmt.Fprintf(w, "swap %s <-> %s: %d cascades, +%d", action.Swap.A, action.Swap.B, action.Cascades, action.ScoreDelta)
	case bot.ActionStep:
		fmt.Fprintf(w, "step: +%d", action.ScoreDelta)
	case bot.ActionAbandon:
		fmt.Fprint(w, "no legal move, abandoned")
	}
	fmt.Fprintf(w, "  score %d, level %d, moves %d\n", action.Score, action.Level, action.MovesRemaining)
	if action.LevelUp {
		fmt.Fprintf(w, "level up! target %d\n", session.TargetScore)
	}
	renderBoard(w, response.BoardFromModel(session.Board), nil)
	fmt.Fprintln(w)
}
