// Package web embeds the dashboard and sender status page templates and
// their static assets.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Templates parses every page template. Pages are looked up by file name,
// e.g. "dashboard.html".
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// StaticHandler serves the embedded assets. Mount it with the path prefix
// stripped so "grid.js" resolves to static/grid.js.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// The directory is compiled in; failure here is a build defect.
		panic(err)
	}
	files := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		// Assets are not fingerprinted; keep the cache short.
		w.Header().Set("Cache-Control", "public, max-age=300, must-revalidate")
		files.ServeHTTP(w, r)
	})
}
