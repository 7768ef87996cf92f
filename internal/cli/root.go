package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// Package state shared by the subcommands. PersistentPreRunE fills client.
var (
	cfg    *Config
	client *Client
)

// NewRootCmd builds the arcade command tree
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	root := &cobra.Command{
		Use:   "arcade",
		Short: "Play and inspect café arcade sessions",
		Long: `arcade drives the café arcade JSON API from a terminal.

Create and play match-3 sessions, follow a session's live events, list
coin settlements, mint development tokens, or run the engine locally
with an autoplay bot.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.LoadToken(); err != nil {
				return err
			}
			client = NewClient(cfg.ServerURL, cfg.Token)
			if cfg.Verbose {
				client.Trace = cmd.ErrOrStderr()
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "API base URL (env ARCADE_SERVER)")
	flags.StringVar(&cfg.Token, "token", cfg.Token, "bearer token (env ARCADE_TOKEN)")
	flags.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "where saved tokens live (env ARCADE_TOKEN_FILE)")
	flags.StringVarP(&cfg.Output, "output", "o", cfg.Output, "text or json")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "trace requests to stderr")

	root.AddCommand(
		newHealthCmd(),
		newModesCmd(),
		newSessionCmd(),
		newSettlementsCmd(),
		newEventsCmd(),
		newTokenCmd(),
		newSimulateCmd(),
	)
	return root
}

// Execute runs the CLI and exits non-zero on error
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func output(cmd *cobra.Command) *Output {
	return NewOutput(cfg.Output, cmd.OutOrStdout())
}
