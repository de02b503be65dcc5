package server

import (
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// handleSPA serves the web client from fsys, falling back to index.html
// for any path that doesn't match a real file (SPA client-side routing).
func handleSPA(fsys fs.FS) http.HandlerFunc {
	fileServer := http.FileServerFS(fsys)

	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if info, err := fs.Stat(fsys, name); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}

		http.ServeFileFS(w, r, fsys, "index.html")
	}
}
