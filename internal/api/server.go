// Package api assembles the HTTP router of the country cache server.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/stacklok/country-cache-server/internal/api/common"
	"github.com/stacklok/country-cache-server/internal/api/countries"
	"github.com/stacklok/country-cache-server/internal/api/health"
	"github.com/stacklok/country-cache-server/internal/api/runs"
	"github.com/stacklok/country-cache-server/internal/service"
	"github.com/stacklok/country-cache-server/internal/sync/coordinator"
	"github.com/stacklok/country-cache-server/internal/sync/state"
)

// Dependencies are the components the handlers serve
type Dependencies struct {
	Service     service.CountryService
	Coordinator coordinator.Coordinator
	State       state.RefreshStateService
	Images      countries.ImageReader
}

// ServerOption configures the API server
type ServerOption func(*serverConfig)

type serverConfig struct {
	middlewares    []func(http.Handler) http.Handler
	metricsHandler http.Handler
}

// WithMiddlewares adds middleware to the server
func WithMiddlewares(mw ...func(http.Handler) http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithMetricsHandler serves h on /metrics. A nil handler leaves the route unset.
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.metricsHandler = h
	}
}

// NewServer creates and configures the HTTP router
func NewServer(deps Dependencies, opts ...ServerOption) *chi.Mux {
	cfg := &serverConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	r := chi.NewRouter()
	for _, mw := range cfg.middlewares {
		r.Use(mw)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		common.WriteErrorResponse(w, "Not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		common.WriteErrorResponse(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	r.Mount("/", health.Router(func(req *http.Request) error {
		return deps.Service.CheckReadiness(req.Context())
	}))
	r.Mount("/countries", countries.Router(deps.Service, deps.Coordinator, deps.Images))
	r.Mount("/status", runs.Router(deps.Service, deps.State))

	if cfg.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.metricsHandler)
	}

	return r
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.DebugContext(r.Context(), "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
