package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/lanova-arcade/internal/api/response"
	"github.com/mcoot/lanova-arcade/internal/dependencies/clock"
	"github.com/mcoot/lanova-arcade/internal/model"
	"github.com/mcoot/lanova-arcade/internal/services/auth"
)

func newTokenCmd() *cobra.Command {
	var playerID, name, role, secret string
	var ttl time.Duration
	var save bool

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development token signed with the shared secret",
		Long: `Mint a bearer token the way the loyalty backend does, for local
development against a server started with the same JWT_SECRET.

With --save the token is written to the token file and used by later commands.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret or JWT_SECRET is required")
			}

			authCfg := auth.DefaultConfig()
			authCfg.Secret = secret
			authCfg.TokenTTL = ttl
			player := model.Player{ID: model.PlayerID(playerID), DisplayName: name, Role: role}

			token, expires, err := auth.New(clock.New(), authCfg).Issue(player)
			if err != nil {
				return err
			}

			if save {
				if err := cfg.SaveToken(token); err != nil {
					return fmt.Errorf("failed to save token: %w", err)
				}
			}

			output(cmd).Print(response.Token{
				Player:    response.PlayerFromModel(&player),
				Token:     token,
				ExpiresAt: expires,
			})
			return nil
		},
	}

	cmd.Flags().StringVar(&playerID, "player", "", "Player id, the ledger user id (required)")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&role, "role", "user", "Role claim")
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "Signing secret (env: JWT_SECRET)")
	cmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultConfig().TokenTTL, "Token lifetime")
	cmd.Flags().BoolVar(&save, "save", false, "Write the token to the token file")
	_ = cmd.MarkFlagRequired("player")

	return cmd
}
