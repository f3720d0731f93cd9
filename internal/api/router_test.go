package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/Togather-Foundation/dashlog/internal/config"
	"github.com/Togather-Foundation/dashlog/internal/domain/entries"
	"github.com/Togather-Foundation/dashlog/internal/emitter"
	"github.com/Togather-Foundation/dashlog/internal/storage/memory"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(prefix string) config.Config {
	return config.Config{
		Server:      config.ServerConfig{Host: "127.0.0.1", Port: 8050, RoutesPrefix: prefix},
		Dashboard:   config.DashboardConfig{RefreshSeconds: 5, PageSize: 10, CSRFKey: "test-secret"},
		Ingest:      config.IngestConfig{MaxBodyBytes: 1 << 20},
		Environment: "test",
	}
}

func newTestRouter(t *testing.T, cfg config.Config, verifier tokenVerifierFunc) (http.Handler, *entries.Store) {
	t.Helper()
	store := entries.NewStore(memory.NewEntryRepository(), time.UTC, zerolog.Nop())
	deps := ReceiverDeps{
		Config: cfg,
		Logger: zerolog.Nop(),
		Store:  store,
		Build:  BuildInfo{Version: "test"},
	}
	if verifier != nil {
		deps.Verifier = verifier
	}
	h, err := NewRouter(deps)
	require.NoError(t, err)
	return h, store
}

type tokenVerifierFunc func(ctx context.Context, raw string) (string, error)

func (f tokenVerifierFunc) Verify(ctx context.Context, raw string) (string, error) { return f(ctx, raw) }

func do(h http.Handler, method, target, body string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, m := range mutate {
		m(req)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const validEntry = `{"app_name":"/sales/","username":"alice","timestamp":"1640995200000"}`

func TestRouter_IngestAndListUnderPrefix(t *testing.T) {
	h, store := newTestRouter(t, testConfig("/listener-app/"), nil)

	rec := do(h, http.MethodPost, "/listener-app/api/add_entry", validEntry)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = do(h, http.MethodGet, "/listener-app/api/entries", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"readable_time":"2022-01-01 00:00:00"`)

	// Routes outside the prefix do not exist.
	rec = do(h, http.MethodPost, "/api/add_entry", validEntry)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Len(t, store.ListAll(context.Background()), 1)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	h, _ := newTestRouter(t, testConfig("/"), nil)

	rec := do(h, http.MethodGet, "/api/add_entry", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Header().Get("Allow"), http.MethodPost)
}

func TestRouter_ExportDownload(t *testing.T) {
	h, _ := newTestRouter(t, testConfig("/"), nil)
	require.Equal(t, http.StatusOK, do(h, http.MethodPost, "/api/add_entry", validEntry).Code)
	require.Equal(t, http.StatusOK, do(h, http.MethodPost, "/api/add_entry", validEntry).Code)

	rec := do(h, http.MethodGet, "/api/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 3)
}

func TestRouter_ClearRequiresCSRFToken(t *testing.T) {
	h, store := newTestRouter(t, testConfig("/"), nil)
	require.Equal(t, http.StatusOK, do(h, http.MethodPost, "/api/add_entry", validEntry).Code)

	rec := do(h, http.MethodPost, "/api/clear", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"CSRF token validation failed"}`, rec.Body.String())
	assert.Len(t, store.ListAll(context.Background()), 1)
}

func TestRouter_DashboardThenClear(t *testing.T) {
	h, store := newTestRouter(t, testConfig("/"), nil)
	require.Equal(t, http.StatusOK, do(h, http.MethodPost, "/api/add_entry", validEntry).Code)

	page := do(h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, page.Code)
	cookies := page.Result().Cookies()
	require.NotEmpty(t, cookies)

	doc, err := goquery.NewDocumentFromReader(page.Body)
	require.NoError(t, err)
	token := doc.Find(`meta[name="csrf-token"]`).AttrOr("content", "")
	require.NotEmpty(t, token)
	assert.Equal(t, 1, doc.Find("#entries-grid tbody tr:not(.empty)").Length())

	rec := do(h, http.MethodPost, "/api/clear", "", func(r *http.Request) {
		for _, c := range cookies {
			r.AddCookie(c)
		}
		r.Header.Set("X-CSRF-Token", token)
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"All entries cleared"}`, rec.Body.String())
	assert.Empty(t, store.ListAll(context.Background()))
}

func TestRouter_StaticAssets(t *testing.T) {
	h, _ := newTestRouter(t, testConfig("/listener-app/"), nil)

	rec := do(h, http.MethodGet, "/listener-app/static/grid.js", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "api/entries")
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	h, _ := newTestRouter(t, testConfig("/"), nil)
	require.Equal(t, http.StatusOK, do(h, http.MethodPost, "/api/add_entry", validEntry).Code)

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/readyz", "").Code)

	rec := do(h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"backend":"memory"`)

	rec = do(h, http.MethodGet, "/version", "")
	assert.Contains(t, rec.Body.String(), `"component":"receiver"`)

	rec = do(h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "dashlog_entries_ingested_total")
	assert.Contains(t, body, `dashlog_http_requests_total{method="POST",path="/api/add_entry",status="200"}`)
}

func TestRouter_VerifyTokens(t *testing.T) {
	cfg := testConfig("/")
	cfg.Ingest.VerifyTokens = true
	verifier := tokenVerifierFunc(func(_ context.Context, raw string) (string, error) {
		if raw == "good" {
			return "alice", nil
		}
		return "", errors.New("bad token")
	})
	h, store := newTestRouter(t, cfg, verifier)

	rec := do(h, http.MethodPost, "/api/add_entry", validEntry)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"invalid or missing token"}`, rec.Body.String())

	rec = do(h, http.MethodPost, "/api/add_entry", validEntry, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer bad")
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(h, http.MethodPost, "/api/add_entry", validEntry, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer good")
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, store.ListAll(context.Background()), 1)
}

func TestNewRouter_VerifyTokensNeedsVerifier(t *testing.T) {
	cfg := testConfig("/")
	cfg.Ingest.VerifyTokens = true

	_, err := NewRouter(ReceiverDeps{
		Config: cfg,
		Logger: zerolog.Nop(),
		Store:  entries.NewStore(memory.NewEntryRepository(), time.UTC, zerolog.Nop()),
	})
	assert.Error(t, err)
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig("/")
	cfg.Ingest.RateLimitPerMinute = 1
	h, _ := newTestRouter(t, cfg, nil)

	assert.Equal(t, http.StatusOK, do(h, http.MethodPost, "/api/add_entry", validEntry).Code)
	rec := do(h, http.MethodPost, "/api/add_entry", validEntry)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestCSRFKey(t *testing.T) {
	a, err := csrfKey("secret")
	require.NoError(t, err)
	b, err := csrfKey("secret")
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.Equal(t, a, b)

	random, err := csrfKey("")
	require.NoError(t, err)
	assert.Len(t, random, 32)
	assert.NotEqual(t, a, random)
}

func TestSenderRouter(t *testing.T) {
	status := emitter.New(emitter.Config{ServerURL: "http://receiver.test", AppName: "/sales/"}, nil, nil, zerolog.Nop()).Status()
	h, err := NewSenderRouter(status, zerolog.Nop(), BuildInfo{})
	require.NoError(t, err)

	rec := do(h, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"Ready to start logging..."`)
	assert.Contains(t, rec.Body.String(), `"app_name":"/sales/"`)

	rec = do(h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ready to start logging...")

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/static/status.js", "").Code)
	assert.Contains(t, do(h, http.MethodGet, "/version", "").Body.String(), `"component":"sender"`)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/nope", "").Code)
}
