// Package emitter periodically reports a usage event to the receiver.
package emitter

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Togather-Foundation/dashlog/internal/domain/entries"
	"github.com/Togather-Foundation/dashlog/internal/identity"
	"github.com/Togather-Foundation/dashlog/internal/metrics"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Togather-Foundation/dashlog/internal/emitter"

// TokenSource yields a fresh token pair for each send.
type TokenSource interface {
	Acquire(ctx context.Context) (identity.TokenPair, error)
}

type Config struct {
	// ServerURL is the receiver base URL without a trailing slash.
	ServerURL string
	AppName   string
	Interval  time.Duration
	Timeout   time.Duration
}

// Emitter sends one entry per tick. Ticks run on a single goroutine, so a
// slow send delays the next tick rather than overlapping it.
type Emitter struct {
	cfg       Config
	tokens    TokenSource
	usernames identity.UsernameSource
	client    *http.Client
	status    *Status
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

func New(cfg Config, tokens TokenSource, usernames identity.UsernameSource, logger zerolog.Logger) *Emitter {
	if cfg.Interval <= 0 {
		cfg.Interval = 3 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Emitter{
		cfg:       cfg,
		tokens:    tokens,
		usernames: usernames,
		client:    &http.Client{Timeout: cfg.Timeout},
		status:    newStatus(cfg.AppName, cfg.ServerURL),
		logger:    logger.With().Str("component", "emitter").Logger(),
		tracer:    otel.Tracer(tracerName),
		now:       time.Now,
	}
}

func (e *Emitter) Status() *Status {
	return e.status
}

// Run ticks until ctx is canceled. Tick 0 only resets the status; sends
// start with tick 1, one interval later.
func (e *Emitter) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()

	n := 0
	e.Tick(ctx, n)
	e.logger.Info().
		Str("server_url", e.cfg.ServerURL).
		Str("app_name", e.cfg.AppName).
		Dur("interval", e.cfg.Interval).
		Msg("emitter started")

	for {
		select {
		case <-ctx.Done():
			e.logger.Info().Int("ticks", n).Msg("emitter stopped")
			return nil
		case <-ticker.C:
			n++
			e.Tick(ctx, n)
		}
	}
}

// Tick performs the work for interval n and returns the resulting status
// message.
func (e *Emitter) Tick(ctx context.Context, n int) string {
	if n <= 0 {
		e.status.set(readyMessage, n, e.now(), false)
		return readyMessage
	}

	msg, ok := e.send(ctx, n)
	e.status.set(msg, n, e.now(), ok)
	if ok {
		metrics.LastSuccessfulSend.SetToCurrentTime()
	}
	return msg
}

func (e *Emitter) send(ctx context.Context, n int) (string, bool) {
	ctx, span := e.tracer.Start(ctx, "emitter.send", trace.WithAttributes(attribute.Int("emitter.interval", n)))
	defer span.End()

	tokens, err := e.tokens.Acquire(ctx)
	if err != nil {
		metrics.SendsTotal.WithLabelValues("no_tokens").Inc()
		span.SetStatus(codes.Error, "no tokens")
		return fmt.Sprintf("Failed to get authentication tokens (Interval #%d)", n), false
	}

	entry := entries.Entry{
		AppName:   e.cfg.AppName,
		Username:  e.usernames.Username(ctx, tokens),
		Timestamp: strconv.FormatInt(e.now().UnixMilli(), 10),
	}

	req, err := e.newRequest(ctx, entry, tokens)
	if err != nil {
		metrics.SendsTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		e.logger.Error().Err(err).Msg("could not build request")
		return fmt.Sprintf("Unexpected error: %v", err), false
	}

	start := time.Now()
	resp, err := e.client.Do(req)
	metrics.SendDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SendsTotal.WithLabelValues("connection").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "connection error")
		e.logger.Warn().Err(err).Int("interval", n).Msg("send failed")
		return fmt.Sprintf("Connection error: %v", err), false
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		metrics.SendsTotal.WithLabelValues("status").Inc()
		span.SetStatus(codes.Error, resp.Status)
		e.logger.Warn().Int("status", resp.StatusCode).Int("interval", n).Msg("receiver rejected entry")
		return fmt.Sprintf("Failed to send data. Status: %d", resp.StatusCode), false
	}

	metrics.SendsTotal.WithLabelValues("success").Inc()
	e.logger.Debug().
		Str("username", entry.Username).
		Str("timestamp", entry.Timestamp).
		Int("interval", n).
		Msg("entry sent")
	return fmt.Sprintf("Successfully sent: %s at %s for %s (Interval #%d)",
		entry.Username, entry.Timestamp, entry.AppName, n), true
}

func (e *Emitter) newRequest(ctx context.Context, entry entries.Entry, tokens identity.TokenPair) (*http.Request, error) {
	body, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.ServerURL+"/api/add_entry", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	req.AddCookie(&http.Cookie{Name: "kcToken", Value: base64.StdEncoding.EncodeToString([]byte(tokens.AccessToken))})
	req.AddCookie(&http.Cookie{Name: "kcIdToken", Value: base64.StdEncoding.EncodeToString([]byte(tokens.IDToken))})
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	return req, nil
}
