// Package audit records destructive operations on the entry store.
package audit

import (
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Entry is one audit record.
type Entry struct {
	Timestamp time.Time
	Action    string
	Actor     string
	IPAddress string
	Status    string // "success" or "failure"
	Details   map[string]string
}

// Logger writes audit entries as structured log lines tagged audit=true.
type Logger struct {
	logger zerolog.Logger
}

func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{logger: logger.With().Bool("audit", true).Logger()}
}

func (l *Logger) Log(entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	event := l.logger.Info()
	if entry.Status != "success" {
		event = l.logger.Warn()
	}
	dict := zerolog.Dict()
	for k, v := range entry.Details {
		dict = dict.Str(k, v)
	}
	event.
		Time("at", entry.Timestamp).
		Str("action", entry.Action).
		Str("actor", entry.Actor).
		Str("ip_address", entry.IPAddress).
		Str("status", entry.Status).
		Dict("details", dict).
		Msg("audit")
}

// LogFromRequest records an action triggered over HTTP. The dashboard has no
// login, so the actor is the client address.
func (l *Logger) LogFromRequest(r *http.Request, action, status string, details map[string]string) {
	ip := clientIP(r)
	l.Log(Entry{
		Action:    action,
		Actor:     "dashboard",
		IPAddress: ip,
		Status:    status,
		Details:   details,
	})
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
