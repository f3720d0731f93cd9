package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/Togather-Foundation/dashlog/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveDashboard(t *testing.T, h *DashboardHandler) *goquery.Document {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeDashboard(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	return doc
}

func TestDashboardHandler_RendersGrid(t *testing.T) {
	templates, err := web.Templates()
	require.NoError(t, err)

	store := newMemoryStore(t)
	_, _ = store.Add(context.Background(), "/sales/", "alice", "1640995200000")
	_, _ = store.Add(context.Background(), "/ops/", "bob", "not-a-number")

	h := NewDashboardHandler(store, templates, "/listener-app/", 5, 10)
	doc := serveDashboard(t, h)

	var headers []string
	doc.Find("#entries-grid thead th").Each(func(_ int, s *goquery.Selection) {
		headers = append(headers, s.Text())
	})
	assert.Equal(t, []string{"App Name", "Username", "Timestamp", "Readable Time"}, headers)

	rows := doc.Find("#entries-grid tbody tr:not(.empty)")
	require.Equal(t, 2, rows.Length())
	first := rows.First().Find("td")
	assert.Equal(t, "/ops/", first.Eq(0).Text())
	assert.Equal(t, "Invalid timestamp", first.Eq(3).Text())
	assert.Equal(t, "2022-01-01 00:00:00", rows.Eq(1).Find("td").Eq(3).Text())

	root := doc.Find("#dashboard")
	assert.Equal(t, "/listener-app/", root.AttrOr("data-prefix", ""))
	assert.Equal(t, "5", root.AttrOr("data-refresh-seconds", ""))
	assert.Equal(t, "10", root.AttrOr("data-page-size", ""))
	assert.Equal(t, "/listener-app/api/export", doc.Find("#export-link").AttrOr("href", ""))
	assert.Equal(t, "/listener-app/static/grid.js", doc.Find("script").AttrOr("src", ""))
	assert.Equal(t, "2", doc.Find("#row-count").Text())
	assert.Equal(t, "memory", doc.Find("#backend").Text())
	assert.Equal(t, 1, doc.Find("#refresh-button").Length())
	assert.Equal(t, 1, doc.Find("#clear-button").Length())
}

func TestDashboardHandler_EmptyStore(t *testing.T) {
	templates, err := web.Templates()
	require.NoError(t, err)

	h := NewDashboardHandler(newBrokenStore(t), templates, "/", 5, 10)
	doc := serveDashboard(t, h)

	assert.Equal(t, 0, doc.Find("#entries-grid tbody tr:not(.empty)").Length())
	assert.Equal(t, "No entries yet", doc.Find("#entries-grid tbody tr.empty td").Text())
	assert.Equal(t, "4", doc.Find("#entries-grid tbody tr.empty td").AttrOr("colspan", ""))
}

func TestDashboardHandler_EscapesValues(t *testing.T) {
	templates, err := web.Templates()
	require.NoError(t, err)

	store := newMemoryStore(t)
	_, _ = store.Add(context.Background(), "<script>alert(1)</script>", "u", "1")

	h := NewDashboardHandler(store, templates, "/", 5, 10)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeDashboard(rec, req)

	assert.NotContains(t, rec.Body.String(), "<script>alert(1)</script>")
	assert.Contains(t, rec.Body.String(), "&lt;script&gt;")
}
