package cli

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/lanova-arcade/internal/api/request"
	"github.com/mcoot/lanova-arcade/internal/api/response"
	"github.com/mcoot/lanova-arcade/internal/model"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "session",
		Aliases: []string{"s"},
		Short:   "Session commands",
	}

	cmd.AddCommand(newSessionCreateCmd())
	cmd.AddCommand(newSessionListCmd())
	cmd.AddCommand(newSessionGetCmd())
	cmd.AddCommand(newSessionStartCmd())
	cmd.AddCommand(newSessionSelectCmd())
	cmd.AddCommand(newSessionSwapCmd())
	cmd.AddCommand(newSessionStepCmd())
	cmd.AddCommand(newSessionHintCmd())
	cmd.AddCommand(newSessionAbandonCmd())
	cmd.AddCommand(newSessionRetryCmd())
	cmd.AddCommand(newSessionDeleteCmd())

	return cmd
}

func newSessionCreateCmd() *cobra.Command {
	var mode string
	var stepped, start bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new session",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Session
			req := request.CreateSessionRequest{Mode: mode, Stepped: stepped}
			if err := client.Post(cmd.Context(), "/api/v1/sessions", req, &result); err != nil {
				return err
			}
			if start {
				if err := client.Post(cmd.Context(), sessionPath(result.ID, "start"), nil, &result); err != nil {
					return err
				}
			}
			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(model.ModeCandyCrush), "Game mode")
	cmd.Flags().BoolVar(&stepped, "stepped", false, "Resolve cascades one step per 'session step'")
	cmd.Flags().BoolVar(&start, "start", false, "Start the session straight away")

	return cmd
}

func newSessionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.SessionSummary
			if err := client.Get(cmd.Context(), "/api/v1/sessions", &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}

func newSessionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a session and its board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Session
			if err := client.Get(cmd.Context(), sessionPath(args[0], ""), &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}

func newSessionStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <id>",
		Short: "Start a new run (also restarts an ended session)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Session
			if err := client.Post(cmd.Context(), sessionPath(args[0], "start"), nil, &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}

func newSessionSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <id> <row> <col>",
		Short: "Click a cell: select, deselect or swap with the selected cell",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePosition(args[1], args[2])
			if err != nil {
				return err
			}

			var result response.Turn
			req := request.SelectRequest{Row: pos.Row, Col: pos.Col}
			if err := client.Post(cmd.Context(), sessionPath(args[0], "select"), req, &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}

func newSessionSwapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "swap <id> <row1> <col1> <row2> <col2>",
		Short: "Swap two adjacent cells",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parsePosition(args[1], args[2])
			if err != nil {
				return err
			}
			b, err := parsePosition(args[3], args[4])
			if err != nil {
				return err
			}

			var result response.Turn
			if err := client.Post(cmd.Context(), sessionPath(args[0], "swap"), request.SwapRequest{A: &a, B: &b}, &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}

func newSessionStepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "step <id>",
		Short: "Advance a stepped session's cascade by one step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Turn
			if err := client.Post(cmd.Context(), sessionPath(args[0], "step"), nil, &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}

func newSessionHintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hint <id>",
		Short: "Suggest a swap that makes a match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Hint
			if err := client.Get(cmd.Context(), sessionPath(args[0], "hint"), &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}

func newSessionAbandonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "abandon <id>",
		Short: "End the current run; the score so far is still awarded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Turn
			if err := client.Post(cmd.Context(), sessionPath(args[0], "abandon"), nil, &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}

func newSessionRetryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retry <id>",
		Short: "Retry a failed coin award for the last run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result *response.Settlement
			if err := client.Post(cmd.Context(), sessionPath(args[0], "settlement/retry"), nil, &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}

func newSessionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session that is not being played",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Do(cmd.Context(), http.MethodDelete, sessionPath(args[0], ""), nil, nil); err != nil {
				return err
			}
			output(cmd).PrintMessage(fmt.Sprintf("Session %s deleted", args[0]))
			return nil
		},
	}
}

func sessionPath(id, action string) string {
	if action == "" {
		return "/api/v1/sessions/" + id
	}
	return "/api/v1/sessions/" + id + "/" + action
}

func parsePosition(rowArg, colArg string) (request.Position, error) {
	row, err := strconv.Atoi(rowArg)
	if err != nil {
		return request.Position{}, fmt.Errorf("invalid row: %w", err)
	}
	col, err := strconv.Atoi(colArg)
	if err != nil {
		return request.Position{}, fmt.Errorf("invalid col: %w", err)
	}
	return request.Position{Row: row, Col: col}, nil
}
