// Package health serves the liveness, readiness and version endpoints.
package health

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/country-cache-server/internal/api/common"
	"github.com/stacklok/country-cache-server/internal/versions"
)

// ReadinessFunc checks storage readiness for one request
type ReadinessFunc func(r *http.Request) error

// Router creates a router for health check endpoints
func Router(ready ReadinessFunc) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", healthHandler)
	r.Get("/readiness", readinessHandler(ready))
	r.Get("/version", versionHandler)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, map[string]string{"status": "healthy"}, http.StatusOK)
}

func readinessHandler(ready ReadinessFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(r); err != nil {
				slog.WarnContext(r.Context(), "Readiness check failed", "error", err)
				common.WriteErrorResponse(w, "Service not ready: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		common.WriteJSONResponse(w, map[string]string{"status": "ready"}, http.StatusOK)
	}
}

func versionHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, versions.GetVersionInfo(), http.StatusOK)
}
