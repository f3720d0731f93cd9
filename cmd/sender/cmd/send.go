package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/Togather-Foundation/dashlog/internal/config"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a single entry and print the outcome",
	Long: `Run one emitter interval: acquire tokens, POST one entry, print the status
line. Exits non-zero unless the receiver accepted the entry.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		logger := config.NewLoggerTo(cfg.Logging, os.Stderr)

		msg := newEmitter(cfg, logger).Tick(cmd.Context(), 1)
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		if !strings.HasPrefix(msg, "Successfully sent") {
			return fmt.Errorf("send failed")
		}
		return nil
	},
}
