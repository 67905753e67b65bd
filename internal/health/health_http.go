package health

import (
	"encoding/json"
	"net/http"

	"github.com/iamsorenl/Autogen-Chat-Demo/logger"
)

// Handler serves the snapshot as JSON on GET.
func Handler(src Source, opts Options) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		if r.Method == http.MethodHead {
			return
		}
		if err := json.NewEncoder(w).Encode(Collect(src, opts)); err != nil {
			logger.Warn("write status response failed", "err", err)
		}
	})
}
