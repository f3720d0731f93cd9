package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Togather-Foundation/dashlog/internal/api/problem"
	"github.com/Togather-Foundation/dashlog/internal/audit"
	"github.com/Togather-Foundation/dashlog/internal/domain/entries"
	"github.com/Togather-Foundation/dashlog/internal/export"
	"github.com/Togather-Foundation/dashlog/internal/metrics"
)

// EntriesHandler serves ingestion and the grid's data, export and clear
// endpoints.
type EntriesHandler struct {
	Store *entries.Store
	Audit *audit.Logger
	now   func() time.Time
}

func NewEntriesHandler(store *entries.Store, auditLogger *audit.Logger) *EntriesHandler {
	return &EntriesHandler{Store: store, Audit: auditLogger, now: time.Now}
}

type addEntryResponse struct {
	Message string        `json:"message"`
	Entry   entries.Entry `json:"entry"`
}

type listEntriesResponse struct {
	Rows        []entries.Row `json:"rows"`
	Count       int           `json:"count"`
	RefreshedAt string        `json:"refreshed_at"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Add handles POST {prefix}api/add_entry.
func (h *EntriesHandler) Add(w http.ResponseWriter, r *http.Request) {
	input, err := entries.ParseInput(r.Body)
	if err != nil {
		if errors.Is(err, entries.ErrMissingFields) {
			metrics.IngestRejectedTotal.WithLabelValues("missing_fields").Inc()
			problem.Write(w, r, http.StatusBadRequest, entries.MissingFieldsMessage, err)
			return
		}
		metrics.IngestRejectedTotal.WithLabelValues("decode").Inc()
		problem.Write(w, r, http.StatusInternalServerError, err.Error(), err)
		return
	}

	if _, ok := h.Store.Add(r.Context(), input.AppName, input.Username, input.Timestamp); !ok {
		metrics.IngestRejectedTotal.WithLabelValues("store").Inc()
		problem.Write(w, r, http.StatusInternalServerError, "Failed to add entry to database", entries.ErrStoreUnavailable)
		return
	}

	metrics.EntriesIngestedTotal.Inc()
	problem.WriteBody(w, http.StatusOK, addEntryResponse{
		Message: "Entry added successfully",
		Entry:   input,
	})
}

// List handles GET {prefix}api/entries. The grid replaces its rows with the
// response wholesale.
func (h *EntriesHandler) List(w http.ResponseWriter, r *http.Request) {
	rows := h.Store.Rows(r.Context())
	problem.WriteBody(w, http.StatusOK, listEntriesResponse{
		Rows:        rows,
		Count:       len(rows),
		RefreshedAt: h.now().UTC().Format(time.RFC3339),
	})
}

// Export handles GET {prefix}api/export as a CSV download.
func (h *EntriesHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := export.Render(h.Store.Rows(r.Context()))
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, "Failed to export entries", err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Clear handles POST {prefix}api/clear. There is no confirmation step.
func (h *EntriesHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ok := h.Store.ClearAll(r.Context())
	if h.Audit != nil {
		status := "success"
		if !ok {
			status = "failure"
		}
		h.Audit.LogFromRequest(r, "entries.clear", status, map[string]string{"backend": h.Store.Backend()})
	}
	if !ok {
		problem.Write(w, r, http.StatusInternalServerError, "Failed to clear entries", entries.ErrStoreUnavailable)
		return
	}
	problem.WriteBody(w, http.StatusOK, messageResponse{Message: "All entries cleared"})
}
