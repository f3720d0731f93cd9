package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Togather-Foundation/dashlog/internal/api"
	"github.com/Togather-Foundation/dashlog/internal/config"
	"github.com/Togather-Foundation/dashlog/internal/metrics"
	"github.com/Togather-Foundation/dashlog/internal/telemetry"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	statusPort   int
	intervalSecs int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Report usage on an interval and serve the status page",
	Long: `Start the emitter loop and the status page.

Every interval the sender requests fresh tokens, POSTs one entry to
{server-url}/api/add_entry and records the outcome on the status page.
Failures are shown and the next interval proceeds; nothing is retried.

Examples:
  # Defaults: every 3 seconds, status page on :8051
  sender run

  # Report to a local receiver every 10 seconds
  sender run --server-url http://localhost:8050 --interval 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSender()
	},
}

func init() {
	runCmd.Flags().IntVar(&statusPort, "port", 0, "status page port (default: 8051)")
	runCmd.Flags().IntVar(&intervalSecs, "interval", 0, "seconds between sends (default: 3)")
}

func runSender() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if statusPort != 0 {
		cfg.Sender.Port = statusPort
	}
	if intervalSecs > 0 {
		cfg.Sender.IntervalSeconds = intervalSecs
	}

	logger := config.NewLogger(cfg.Logging).With().Str("component", "sender").Logger()
	logger.Info().
		Str("server_url", cfg.Sender.ServerURL).
		Str("app_name", cfg.Sender.AppName).
		Int("interval_seconds", cfg.Sender.IntervalSeconds).
		Msg("starting sender")

	metrics.Init(Version, GitCommit, BuildDate, "sender")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing, Version, "sender")
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

	em := newEmitter(cfg, logger)
	handler, err := api.NewSenderRouter(em.Status(), logger, buildInfo())
	if err != nil {
		return fmt.Errorf("build status router: %w", err)
	}

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Sender.Port)),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return em.Run(gctx)
	})
	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("status page listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("status server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	logger.Info().Msg("sender stopped")
	return err
}
