package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/Togather-Foundation/dashlog/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	logLevel   string
	logFormat  string
	serverURL  string
	appName    string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "sender",
		Short: "dashlog sender - periodic usage reporter for a Dash app",
		Long: `The dashlog sender authenticates against the deployment's Keycloak realm
and reports one usage entry (app name, username, timestamp) to the receiver
on a fixed interval. A small status page shows the latest outcome.

Credentials come from DEURL, USERNAME and PASSWORD.`,
		SilenceUsage: true,
		// Run the run command by default if no subcommand is specified
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCmd.RunE(cmd, args)
		},
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (optional, environment wins)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error) (default: info)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, console) (default: json)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server-url", "", "receiver base URL (default: https://{DEURL}/listener-app)")
	rootCmd.PersistentFlags().StringVar(&appName, "app-name", "", "app name reported with every entry")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	if serverURL != "" {
		cfg.Sender.ServerURL = strings.TrimRight(serverURL, "/")
	}
	if appName != "" {
		cfg.Sender.AppName = appName
	}
	return cfg, nil
}
