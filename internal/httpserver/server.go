package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/armorhq/armor/internal/config"
	"github.com/armorhq/armor/internal/logger"
	"github.com/armorhq/armor/internal/metrics"
	"github.com/armorhq/armor/internal/proxy"
	"github.com/armorhq/armor/internal/ratelimit"
	"github.com/armorhq/armor/internal/report"
	"github.com/armorhq/armor/pkg/armor"
)

var serverStartTime = time.Now()

// Server wires handlers, middleware, and dependencies.
type Server struct {
	handlers
	httpServer *http.Server
}

type handlers struct {
	cfg     *config.Config
	policy  *armor.Policy
	proxy   *proxy.Proxy
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// New builds the HTTP server with configured router. upstreamProxy may be
// nil when no upstream is configured; the server then only exposes its own
// endpoints.
func New(cfg *config.Config, policy *armor.Policy, upstreamProxy *proxy.Proxy, metricsCollector *metrics.Metrics, appLogger zerolog.Logger) *Server {
	router := chi.NewRouter()

	s := &Server{
		handlers: handlers{
			cfg:     cfg,
			policy:  policy,
			proxy:   upstreamProxy,
			metrics: metricsCollector,
			logger:  appLogger,
		},
		httpServer: &http.Server{
			Addr:         cfg.Server.Address,
			ReadTimeout:  cfg.Server.ReadTimeout.Duration,
			WriteTimeout: cfg.Server.WriteTimeout.Duration,
			IdleTimeout:  cfg.Server.IdleTimeout.Duration,
			Handler:      router,
		},
	}

	s.configureRouter(router)

	return s
}

func (s *Server) configureRouter(router chi.Router) {
	cfg := s.cfg

	if len(cfg.Server.CORSAllowedOrigins) > 0 {
		router.Use(cors.New(cors.Options{
			AllowedOrigins:   cfg.Server.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: false,
			MaxAge:           300,
		}).Handler)
	}

	// Structured logging middleware (BEFORE RealIP so remote_addr extraction sees the raw request)
	router.Use(logger.Middleware(s.logger))
	router.Use(middleware.RealIP)
	// Recoverer must sit outside the sentry layer: report.Middleware
	// captures a panic and rethrows it, and Recoverer turns the rethrown
	// panic into a 500.
	router.Use(middleware.Recoverer)
	router.Use(report.Middleware)

	// Rate limiting middleware (applied globally)
	rateLimitCfg := ratelimit.Config{
		GlobalEnabled: cfg.RateLimit.GlobalEnabled,
		GlobalLimit:   cfg.RateLimit.GlobalLimit,
		GlobalWindow:  cfg.RateLimit.GlobalWindow.Duration,
		PerIPEnabled:  cfg.RateLimit.PerIPEnabled,
		PerIPLimit:    cfg.RateLimit.PerIPLimit,
		PerIPWindow:   cfg.RateLimit.PerIPWindow.Duration,
		Metrics:       s.metrics,
	}
	router.Use(ratelimit.GlobalLimiter(rateLimitCfg))
	router.Use(ratelimit.IPLimiter(rateLimitCfg))

	// Service endpoints with a short timeout. These responses are built
	// locally, so the hardening middleware applies here; proxied responses
	// are hardened on the upstream response instead to avoid duplicate
	// header values.
	router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(5 * time.Second))
		r.Use(armor.Middleware(s.policy))
		r.Get("/armor-health", s.health)
		// Prometheus metrics endpoint, protected by an optional admin API key
		r.With(adminMetricsAuth(cfg.Server.AdminMetricsAPIKey)).Handle("/metrics", promhttp.Handler())
	})

	if s.proxy != nil {
		router.Handle("/*", s.proxy)
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the configured router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
