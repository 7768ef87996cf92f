package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/lanova-arcade/internal/api/response"
)

func newSettlementsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "settlements",
		Short: "List your coin awards, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return fmt.Errorf("--limit must be at least 1")
			}
			var result []response.Settlement
			if err := client.Get(cmd.Context(), fmt.Sprintf("/api/v1/settlements?limit=%d", limit), &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of settlements")

	return cmd
}
