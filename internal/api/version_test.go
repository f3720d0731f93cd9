package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionHandler(t *testing.T) {
	tests := []struct {
		name string
		info BuildInfo
		want BuildInfo
	}{
		{
			name: "stamped",
			info: BuildInfo{Version: "0.3.0", GitCommit: "abc123", BuildDate: "2026-01-28T12:00:00Z"},
			want: BuildInfo{Version: "0.3.0", GitCommit: "abc123", BuildDate: "2026-01-28T12:00:00Z"},
		},
		{
			name: "unstamped",
			want: BuildInfo{Version: "dev", GitCommit: "unknown", BuildDate: "unknown"},
		},
		{
			name: "partial",
			info: BuildInfo{Version: "0.3.0"},
			want: BuildInfo{Version: "0.3.0", GitCommit: "unknown", BuildDate: "unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/version", nil)
			rec := httptest.NewRecorder()
			VersionHandler(tt.info, "receiver").ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			var got versionResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.want, got.BuildInfo)
			assert.Equal(t, "receiver", got.Component)
			assert.Equal(t, runtime.Version(), got.GoVersion)
		})
	}
}
