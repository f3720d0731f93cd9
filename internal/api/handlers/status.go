package handlers

import (
	"html/template"
	"net/http"

	"github.com/Togather-Foundation/dashlog/internal/api/problem"
	"github.com/Togather-Foundation/dashlog/internal/emitter"
)

// StatusSource is implemented by *emitter.Status.
type StatusSource interface {
	Snapshot() emitter.Snapshot
}

// StatusHandler serves the sender's status page and its JSON feed.
type StatusHandler struct {
	Source         StatusSource
	Templates      *template.Template
	RefreshSeconds int
}

func NewStatusHandler(source StatusSource, templates *template.Template, refreshSeconds int) *StatusHandler {
	if refreshSeconds <= 0 {
		refreshSeconds = 1
	}
	return &StatusHandler{Source: source, Templates: templates, RefreshSeconds: refreshSeconds}
}

// ServePage handles GET / on the sender.
func (h *StatusHandler) ServePage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.Templates, "status.html", map[string]any{
		"Title":          "Usage Logger",
		"RefreshSeconds": h.RefreshSeconds,
		"Snapshot":       h.Source.Snapshot(),
	})
}

// ServeJSON handles GET /api/status.
func (h *StatusHandler) ServeJSON(w http.ResponseWriter, r *http.Request) {
	problem.WriteBody(w, http.StatusOK, h.Source.Snapshot())
}
