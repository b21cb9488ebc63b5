package server

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
)

type dashboard struct {
	body []byte
	etag string
}

// DashboardsHandler serves the bundled Grafana dashboards. The prefix path
// itself lists what is available.
func DashboardsHandler(prefix string, dashboards map[string][]byte) http.Handler {
	served := make(map[string]dashboard, len(dashboards))
	index := make([]string, 0, len(dashboards))
	for path, body := range dashboards {
		sum := sha256.Sum256(body)
		served[path] = dashboard{body: body, etag: `"` + hex.EncodeToString(sum[:8]) + `"`}
		index = append(index, path)
	}
	sort.Strings(index)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if strings.TrimSuffix(r.URL.Path, "/") == strings.TrimSuffix(prefix, "/") {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string][]string{"dashboards": index})
			return
		}

		d, ok := served[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("ETag", d.etag)
		if r.Header.Get("If-None-Match") == d.etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(d.body)
	})
}
