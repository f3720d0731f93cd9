package handlers

import (
	"bytes"
	"html/template"
	"net/http"
	"time"

	"github.com/Togather-Foundation/dashlog/internal/api/middleware"
	"github.com/Togather-Foundation/dashlog/internal/domain/entries"
	"github.com/rs/zerolog"
)

const dashboardTitle = "User Entries Log"

// Column is one grid column: the JSON field it shows and its header text.
type Column struct {
	Field string
	Title string
}

// Columns are the grid's columns in display order.
var Columns = []Column{
	{Field: "app_name", Title: "App Name"},
	{Field: "username", Title: "Username"},
	{Field: "timestamp", Title: "Timestamp"},
	{Field: "readable_time", Title: "Readable Time"},
}

// DashboardHandler renders the grid page with the current rows. grid.js
// takes over refreshing, paging, sorting and filtering in the browser.
type DashboardHandler struct {
	Store          *entries.Store
	Templates      *template.Template
	Prefix         string
	RefreshSeconds int
	PageSize       int
}

type dashboardData struct {
	Title          string
	Prefix         string
	CSRFToken      string
	RefreshSeconds int
	PageSize       int
	Backend        string
	Columns        []Column
	Rows           []entries.Row
	Count          int
	RefreshedAt    string
}

func NewDashboardHandler(store *entries.Store, templates *template.Template, prefix string, refreshSeconds, pageSize int) *DashboardHandler {
	return &DashboardHandler{
		Store:          store,
		Templates:      templates,
		Prefix:         prefix,
		RefreshSeconds: refreshSeconds,
		PageSize:       pageSize,
	}
}

// ServeDashboard handles GET {prefix}.
func (h *DashboardHandler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	rows := h.Store.Rows(r.Context())
	data := dashboardData{
		Title:          dashboardTitle,
		Prefix:         h.Prefix,
		CSRFToken:      middleware.CSRFToken(r),
		RefreshSeconds: h.RefreshSeconds,
		PageSize:       h.PageSize,
		Backend:        h.Store.Backend(),
		Columns:        Columns,
		Rows:           rows,
		Count:          len(rows),
		RefreshedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	renderPage(w, r, h.Templates, "dashboard.html", data)
}

// renderPage executes into a buffer so a template failure can still produce
// a clean 500.
func renderPage(w http.ResponseWriter, r *http.Request, templates *template.Template, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("template", name).Msg("template error")
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
