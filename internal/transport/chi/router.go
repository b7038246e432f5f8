// Package chi serves the library REST API on a chi router.
package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mdrcore/internal/metrics"
	healthuc "github.com/kailas-cloud/mdrcore/internal/usecase/health"
)

// Options configures the router middleware.
type Options struct {
	APIKeys          []string
	AllowedOrigins   []string
	AllowCredentials bool
}

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status healthuc.Status                 `json:"status"`
	Checks map[string]healthuc.CheckResult `json:"checks"`
}

// NewRouter builds the API handler with health, metrics and every mount.
func NewRouter(log *zap.Logger, health HealthChecker, opts Options, mounts ...Mount) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(log))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEvent(log))
	if c := CORS(opts.AllowedOrigins, opts.AllowCredentials); c != nil {
		r.Use(c)
	}
	r.Use(BearerAuthMiddleware(opts.APIKeys))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		report := health.Check(r.Context())
		status := http.StatusOK
		if report.Status != healthuc.Healthy {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, healthResponse{Status: report.Status, Checks: report.Checks})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	for _, m := range mounts {
		m(r, log)
	}
	return r
}
