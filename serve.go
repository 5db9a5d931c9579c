package abuild

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

type fileHandler struct {
	sys  *System
	root string
}

// Handler returns an HTTP handler that serves the files listed by
// Files(root). Nothing else under root is served.
func (s *System) Handler(root string) http.Handler {
	return &fileHandler{sys: s, root: root}
}

func (h *fileHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+req.URL.Path), "/")
	if name == "" {
		name = "index.html"
	}

	found := false
	for _, f := range h.sys.Files(h.root) {
		if f == name {
			found = true
			break
		}
	}
	if !found {
		http.NotFound(w, req)
		return
	}

	f, err := os.Open(filepath.Join(h.root, filepath.FromSlash(name)))
	if err != nil {
		http.Error(w, "file missing", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		http.Error(w, "file missing", http.StatusInternalServerError)
		return
	}
	http.ServeContent(w, req, name, info.ModTime(), f)
}
