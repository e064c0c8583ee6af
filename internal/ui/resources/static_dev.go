//go:build dev

package resources

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
)

// staticDir locates static/ next to this file so edits show up without a rebuild.
func staticDir() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return StaticDirectoryPath
	}
	return filepath.Join(filepath.Dir(filename), "static")
}

// Handler serves static assets from disk, uncached.
func Handler() http.Handler {
	dir := staticDir()
	slog.Info("serving static assets from disk", slog.String("path", dir))

	files := http.StripPrefix("/static/", http.FileServer(http.FS(os.DirFS(dir))))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		files.ServeHTTP(w, r)
	})
}
