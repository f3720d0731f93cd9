// Package api wires the receiver and sender HTTP surfaces.
package api

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"net/http"

	"github.com/Togather-Foundation/dashlog/internal/api/handlers"
	"github.com/Togather-Foundation/dashlog/internal/api/middleware"
	"github.com/Togather-Foundation/dashlog/internal/audit"
	"github.com/Togather-Foundation/dashlog/internal/config"
	"github.com/Togather-Foundation/dashlog/internal/domain/entries"
	"github.com/Togather-Foundation/dashlog/internal/metrics"
	"github.com/Togather-Foundation/dashlog/web"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// ReceiverDeps are the collaborators the receiver router needs. Pinger,
// Migrations and Verifier are optional.
type ReceiverDeps struct {
	Config     config.Config
	Logger     zerolog.Logger
	Store      *entries.Store
	Pinger     handlers.Pinger
	Migrations handlers.MigrationReporter
	// Verifier is consulted on ingestion when Config.Ingest.VerifyTokens is
	// set.
	Verifier middleware.TokenVerifier
	Build    BuildInfo
}

// NewRouter builds the receiver handler: ingestion, grid, export and clear
// under the configured prefix, plus health, version and metrics at the root.
func NewRouter(deps ReceiverDeps) (http.Handler, error) {
	cfg := deps.Config
	prefix := cfg.Server.RoutesPrefix

	templates, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	key, err := csrfKey(cfg.Dashboard.CSRFKey)
	if err != nil {
		return nil, err
	}
	if cfg.Dashboard.CSRFKey == "" {
		deps.Logger.Warn().Msg("CSRF_KEY not set; using a random key, dashboard tokens will not survive a restart")
	}
	if cfg.Ingest.VerifyTokens && deps.Verifier == nil {
		return nil, fmt.Errorf("token verification enabled without a verifier")
	}

	entriesHandler := handlers.NewEntriesHandler(deps.Store, audit.NewLogger(deps.Logger))
	dashboardHandler := handlers.NewDashboardHandler(deps.Store, templates, prefix, cfg.Dashboard.RefreshSeconds, cfg.Dashboard.PageSize)
	healthChecker := handlers.NewHealthChecker(deps.Store, deps.Pinger, deps.Migrations, deps.Build.Version, deps.Build.GitCommit)

	secure := cfg.Environment == "production"
	csrfProtect := middleware.CSRFProtection(key, secure, prefix)

	var ingest http.Handler = http.HandlerFunc(entriesHandler.Add)
	if cfg.Ingest.VerifyTokens {
		ingest = middleware.VerifyTokens(deps.Verifier)(ingest)
	}
	ingest = middleware.RateLimit(cfg.Ingest.RateLimitPerMinute)(ingest)
	ingest = middleware.RequestSize(cfg.Ingest.MaxBodyBytes)(ingest)

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", handlers.Healthz())
	mux.Handle("GET /readyz", healthChecker.Readyz())
	mux.Handle("GET /health", healthChecker.Health())
	mux.Handle("GET /version", VersionHandler(deps.Build, "receiver"))
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Handle("POST "+prefix+"api/add_entry", ingest)
	mux.Handle("GET "+prefix+"api/entries", http.HandlerFunc(entriesHandler.List))
	mux.Handle("GET "+prefix+"api/export", http.HandlerFunc(entriesHandler.Export))
	mux.Handle("POST "+prefix+"api/clear", csrfProtect(http.HandlerFunc(entriesHandler.Clear)))
	mux.Handle("GET "+prefix+"static/", http.StripPrefix(prefix+"static", web.StaticHandler()))
	mux.Handle("GET "+prefix+"{$}", csrfProtect(http.HandlerFunc(dashboardHandler.ServeDashboard)))

	return chain(mux, deps.Logger, secure), nil
}

// StatusSource is implemented by *emitter.Status.
type StatusSource = handlers.StatusSource

// NewSenderRouter builds the sender's status page handler.
func NewSenderRouter(status StatusSource, logger zerolog.Logger, build BuildInfo) (http.Handler, error) {
	templates, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	statusHandler := handlers.NewStatusHandler(status, templates, 1)

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", handlers.Healthz())
	mux.Handle("GET /version", VersionHandler(build, "sender"))
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.Handle("GET /api/status", http.HandlerFunc(statusHandler.ServeJSON))
	mux.Handle("GET /static/", http.StripPrefix("/static", web.StaticHandler()))
	mux.Handle("GET /{$}", http.HandlerFunc(statusHandler.ServePage))

	return chain(mux, logger, false), nil
}

// chain applies the shared middleware, outermost first.
func chain(h http.Handler, logger zerolog.Logger, requireHTTPS bool) http.Handler {
	h = metrics.HTTPMiddleware(h)
	h = middleware.SecurityHeaders(requireHTTPS)(h)
	h = middleware.Recovery(h)
	h = middleware.RequestLogging()(h)
	h = middleware.Tracing(h)
	h = middleware.CorrelationID(logger)(h)
	return h
}

// csrfKey derives the 32-byte key gorilla/csrf needs from the configured
// secret, or generates one when none is set.
func csrfKey(secret string) ([]byte, error) {
	if secret != "" {
		sum := sha256.Sum256([]byte(secret))
		return sum[:], nil
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate csrf key: %w", err)
	}
	return key, nil
}
