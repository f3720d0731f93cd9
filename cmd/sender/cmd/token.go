package cmd

import (
	"fmt"
	"os"

	"github.com/Togather-Foundation/dashlog/internal/config"
	"github.com/Togather-Foundation/dashlog/internal/identity"
	"github.com/spf13/cobra"
)

var showTokens bool

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Check that the configured credentials can obtain tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		logger := config.NewLoggerTo(cfg.Logging, os.Stderr)
		client := identity.NewKeycloakClient(cfg.Identity, logger)

		pair, err := client.Acquire(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		username := identity.ClaimsUsername{Fallback: cfg.Identity.Username}.Username(cmd.Context(), pair)
		fmt.Fprintf(out, "Token endpoint: %s\n", client.TokenURL())
		fmt.Fprintf(out, "Username:       %s\n", username)
		if showTokens {
			fmt.Fprintf(out, "Access token:   %s\n", pair.AccessToken)
			fmt.Fprintf(out, "ID token:       %s\n", pair.IDToken)
		}
		return nil
	},
}

func init() {
	tokenCmd.Flags().BoolVar(&showTokens, "show", false, "print the raw tokens")
}
