package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Togather-Foundation/dashlog/internal/domain/entries"
)

// HealthCheck represents the health status of the receiver
type HealthCheck struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	GitCommit string                 `json:"git_commit"`
	Backend   string                 `json:"backend"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

// CheckResult represents the result of a single health check
type CheckResult struct {
	Status    string         `json:"status"`
	Message   string         `json:"message,omitempty"`
	LatencyMs int64          `json:"latency_ms,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// Pinger reports whether the store's server or file is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MigrationReporter returns the applied schema version. It is only set for
// the postgres backend.
type MigrationReporter func() (version uint, dirty bool, err error)

// HealthChecker runs store checks for /health and /readyz.
type HealthChecker struct {
	store      *entries.Store
	pinger     Pinger
	migrations MigrationReporter
	version    string
	gitCommit  string
}

// NewHealthChecker creates a health checker. pinger and migrations may be
// nil when the backend has no such notion.
func NewHealthChecker(store *entries.Store, pinger Pinger, migrations MigrationReporter, version, gitCommit string) *HealthChecker {
	return &HealthChecker{
		store:      store,
		pinger:     pinger,
		migrations: migrations,
		version:    version,
		gitCommit:  gitCommit,
	}
}

// Health returns a detailed health check handler
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			respondHealth(w, http.StatusServiceUnavailable, "shutting_down")
			return
		default:
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := h.runChecks(ctx)
		overallStatus, statusCode := summarize(checks)

		response := HealthCheck{
			Status:    overallStatus,
			Version:   h.version,
			GitCommit: h.gitCommit,
			Backend:   h.store.Backend(),
			Checks:    checks,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Readyz reports ready only when the store answers.
func (h *HealthChecker) Readyz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if check := h.checkStore(ctx); check.Status == "fail" {
			respondHealth(w, http.StatusServiceUnavailable, "not_ready")
			return
		}
		respondHealth(w, http.StatusOK, "ready")
	})
}

func (h *HealthChecker) runChecks(ctx context.Context) map[string]CheckResult {
	checks := map[string]CheckResult{
		"store":   h.checkStore(ctx),
		"entries": h.checkEntries(ctx),
	}
	if h.migrations != nil {
		checks["migrations"] = h.checkMigrations()
	}
	return checks
}

func summarize(checks map[string]CheckResult) (string, int) {
	overall := "healthy"
	for _, check := range checks {
		if check.Status == "fail" {
			return "unhealthy", http.StatusServiceUnavailable
		}
		if check.Status == "warn" {
			overall = "degraded"
		}
	}
	return overall, http.StatusOK
}

// checkStore pings the backend with a per-check timeout
func (h *HealthChecker) checkStore(ctx context.Context) CheckResult {
	if h.pinger == nil {
		return CheckResult{
			Status:  "pass",
			Message: fmt.Sprintf("%s store has no connection to check", h.store.Backend()),
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.pinger.Ping(pingCtx)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		message := "Store ping failed"
		if pingCtx.Err() == context.DeadlineExceeded {
			message = "Store ping timed out after 2 seconds"
		}
		return CheckResult{
			Status:    "fail",
			Message:   message,
			LatencyMs: latency,
			Details: map[string]any{
				"error":       err.Error(),
				"remediation": "Check DATABASE_URL or SQLITE_PATH and that the database is running",
			},
		}
	}

	return CheckResult{
		Status:    "pass",
		Message:   fmt.Sprintf("%s store reachable", h.store.Backend()),
		LatencyMs: latency,
	}
}

// checkEntries counts rows. A failed count after a good ping usually means
// the table is missing.
func (h *HealthChecker) checkEntries(ctx context.Context) CheckResult {
	start := time.Now()
	n, ok := h.store.Count(ctx)
	latency := time.Since(start).Milliseconds()
	if !ok {
		return CheckResult{
			Status:    "warn",
			Message:   "Could not count entries",
			LatencyMs: latency,
			Details: map[string]any{
				"remediation": "Restart the receiver or run: receiver migrate up",
			},
		}
	}
	return CheckResult{
		Status:    "pass",
		LatencyMs: latency,
		Details:   map[string]any{"count": n},
	}
}

// checkMigrations verifies the schema is applied and not dirty
func (h *HealthChecker) checkMigrations() CheckResult {
	start := time.Now()
	version, dirty, err := h.migrations()
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return CheckResult{
			Status:    "fail",
			Message:   "Failed to query migration version",
			LatencyMs: latency,
			Details:   map[string]any{"error": err.Error()},
		}
	}
	if dirty {
		return CheckResult{
			Status:    "fail",
			Message:   "Database in dirty migration state - manual intervention required",
			LatencyMs: latency,
			Details: map[string]any{
				"version":     version,
				"dirty":       true,
				"remediation": "Fix the schema by hand, then run: receiver migrate force",
			},
		}
	}
	if version == 0 {
		return CheckResult{
			Status:    "warn",
			Message:   "No migrations applied",
			LatencyMs: latency,
		}
	}
	return CheckResult{
		Status:    "pass",
		Message:   fmt.Sprintf("Migrations applied successfully (version %d)", version),
		LatencyMs: latency,
		Details:   map[string]any{"version": version, "dirty": false},
	}
}

// Healthz returns a lightweight liveness response
func Healthz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondHealth(w, http.StatusOK, "ok")
	})
}

type healthResponse struct {
	Status string `json:"status"`
}

func respondHealth(w http.ResponseWriter, status int, value string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(healthResponse{Status: value})
}
