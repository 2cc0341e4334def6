package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dicomviewer/internal/platform/metrics"
	"dicomviewer/internal/platform/middleware"
	"dicomviewer/pkg/platform/middleware/metadata"
	"dicomviewer/pkg/platform/middleware/requesttime"
)

// Registrar is implemented by handlers that mount their own routes.
type Registrar interface {
	Register(r chi.Router)
}

// RouterConfig carries the cross-cutting settings applied to every route.
type RouterConfig struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter wires the shared middleware chain, the Prometheus endpoint and
// every handler's routes.
func NewRouter(cfg RouterConfig, handlers ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.LatencyMiddleware(cfg.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	for _, h := range handlers {
		h.Register(r)
	}
	return r
}
