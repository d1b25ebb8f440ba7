package server

import (
	"net/http"
	"os"
	"path/filepath"
)

// handleSPA serves the built frontend from dir. Paths that don't match
// a real file fall back to index.html so the tv, remote and admin views
// can be bookmarked directly.
func handleSPA(dir string) http.HandlerFunc {
	fileServer := http.FileServer(http.Dir(dir))

	return func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.Clean(r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(dir, "index.html"))
	}
}
