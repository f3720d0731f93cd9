package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestSize(t *testing.T) {
	tests := []struct {
		name      string
		maxBytes  int64
		bodySize  int
		expectErr bool
	}{
		{"small request accepted", 1024, 512, false},
		{"exact limit accepted", 1024, 1024, false},
		{"oversized request fails on read", 1024, 2048, true},
		{"zero uses default", 0, int(DefaultMaxBodySize) + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var readErr error
			handler := RequestSize(tt.maxBytes)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, readErr = io.ReadAll(r.Body)
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/add_entry", strings.NewReader(strings.Repeat("x", tt.bodySize)))
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if tt.expectErr {
				var maxErr *http.MaxBytesError
				assert.True(t, errors.As(readErr, &maxErr), "expected MaxBytesError, got %v", readErr)
			} else {
				assert.NoError(t, readErr)
			}
		})
	}
}
