package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Togather-Foundation/dashlog/internal/api"
	"github.com/Togather-Foundation/dashlog/internal/config"
	"github.com/Togather-Foundation/dashlog/internal/identity"
	"github.com/Togather-Foundation/dashlog/internal/metrics"
	"github.com/Togather-Foundation/dashlog/internal/storage/postgres"
	"github.com/Togather-Foundation/dashlog/internal/telemetry"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Server flags (override config/env)
	serverHost   string
	serverPort   int
	routesPrefix string
	storeBackend string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the receiver HTTP server",
	Long: `Start the receiver and begin accepting usage entries.

The server will:
- Load configuration from environment variables (or --config file if provided)
- Open the configured store and create the entries table if needed
- Serve ingestion, the grid dashboard, health and metrics endpoints
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  receiver serve

  # Serve under a path prefix on a specific port
  receiver serve --prefix /listener-app/ --port 9090

  # Try it out without a database
  receiver serve --store memory`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8050)")
	serveCmd.Flags().StringVar(&routesPrefix, "prefix", "", "routes path prefix (default: /)")
	serveCmd.Flags().StringVar(&storeBackend, "store", "", "store backend: postgres, sqlite or memory")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	applyServeFlags(&cfg)

	logger := config.NewLogger(cfg.Logging).With().Str("component", "receiver").Logger()
	logger.Info().Str("store", cfg.Store.Backend).Str("prefix", cfg.Server.RoutesPrefix).Msg("starting receiver")

	metrics.Init(Version, GitCommit, BuildDate, "receiver")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing, Version, "receiver")
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("tracing shutdown error")
		}
	}()

	openCtx, openCancel := context.WithTimeout(ctx, 30*time.Second)
	store, backend, err := openStore(openCtx, cfg, logger)
	openCancel()
	if err != nil {
		return err
	}
	defer backend.Close()

	if backend.Pool != nil {
		dbCollector := metrics.NewDBCollector(backend.Pool)
		go dbCollector.Start(ctx, 15*time.Second)
		defer dbCollector.Stop()
	}

	deps := api.ReceiverDeps{
		Config: cfg,
		Logger: logger,
		Store:  store,
		Build:  buildInfo(),
	}
	if backend.Pinger != nil {
		deps.Pinger = backend.Pinger
	}
	if backend.DatabaseURL != "" {
		databaseURL := backend.DatabaseURL
		deps.Migrations = func() (uint, bool, error) {
			return postgres.MigrationVersion(databaseURL)
		}
	}
	if cfg.Ingest.VerifyTokens {
		issuer := identity.Issuer(cfg.Identity)
		deps.Verifier = identity.NewVerifier(ctx, issuer)
		logger.Info().Str("issuer", issuer).Msg("ingestion token verification enabled")
	}

	handler, err := api.NewRouter(deps)
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	return gracefulShutdown(server, logger)
}

func applyServeFlags(cfg *config.Config) {
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}
	if routesPrefix != "" {
		cfg.Server.RoutesPrefix = config.NormalizePrefix(routesPrefix)
	}
	if storeBackend != "" {
		cfg.Store.Backend = storeBackend
	}
}

func gracefulShutdown(server *http.Server, logger zerolog.Logger) error {
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}
