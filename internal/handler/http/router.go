package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sugat009/ecommerce-site-with-graphql/internal/service"
	"github.com/sugat009/ecommerce-site-with-graphql/pkg/health"
	"github.com/sugat009/ecommerce-site-with-graphql/pkg/middleware"
)

// ServiceName labels this service's metrics and spans.
const ServiceName = "cartstate"

// RouterConfig holds the optional parts of the router.
type RouterConfig struct {
	CORS           middleware.CORSConfig
	RequestTimeout time.Duration
	PprofEnabled   bool
	PprofCIDRs     []string
}

// NewRouter creates a chi router with all state routes registered.
func NewRouter(
	stateService *service.StateService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(ServiceName))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	if cfg.PprofEnabled {
		middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)
	}

	stateHandler := NewStateHandler(stateService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(ContentTypeJSON)

		r.Get("/state", stateHandler.GetState)
		r.Get("/state/{key}", stateHandler.GetKey)
		r.Get("/query", stateHandler.Query)
		r.Post("/mutations/{mutation}", stateHandler.Mutate)
	})

	return r
}
