package api

import (
	"net/http"
	"runtime"

	"github.com/Togather-Foundation/dashlog/internal/api/problem"
)

// BuildInfo is stamped into the binaries with -ldflags.
type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
}

type versionResponse struct {
	BuildInfo
	Component string `json:"component"`
	GoVersion string `json:"go_version"`
}

func (b BuildInfo) withDefaults() BuildInfo {
	if b.Version == "" {
		b.Version = "dev"
	}
	if b.GitCommit == "" {
		b.GitCommit = "unknown"
	}
	if b.BuildDate == "" {
		b.BuildDate = "unknown"
	}
	return b
}

// VersionHandler serves GET /version for the named component ("receiver" or
// "sender").
func VersionHandler(info BuildInfo, component string) http.Handler {
	response := versionResponse{
		BuildInfo: info.withDefaults(),
		Component: component,
		GoVersion: runtime.Version(),
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		problem.WriteBody(w, http.StatusOK, response)
	})
}
