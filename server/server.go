// Package server wires the router, the middleware chain and the HTTP server
// lifecycle of the service, including the Prometheus /metrics endpoint.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/giygas/appmetrics/config"
	"github.com/giygas/appmetrics/handlers"
	"github.com/giygas/appmetrics/health"
	"github.com/giygas/appmetrics/interfaces"
	"github.com/giygas/appmetrics/logging"
	"github.com/giygas/appmetrics/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server represents the HTTP server
type Server struct {
	server      *http.Server
	router      chi.Router
	config      *config.Config
	dataStore   interfaces.DataStore
	metrics     *metrics.AppMetrics
	rateLimiter *RateLimiter
	handler     *handlers.HTTPHandlerImpl
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, dataStore interfaces.DataStore, m *metrics.AppMetrics, rateLimiter *RateLimiter) *Server {
	router := chi.NewRouter()
	checker := health.NewHealthChecker(dataStore, m, cfg.SeriesWarnThreshold)

	s := &Server{
		server: &http.Server{
			Handler:      router,
			Addr:         cfg.Address + ":" + cfg.Port,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router:      router,
		config:      cfg,
		dataStore:   dataStore,
		metrics:     m,
		rateLimiter: rateLimiter,
		handler:     handlers.NewHTTPHandler(dataStore, checker, m, cfg.APIMaxDelay),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Handler returns the root handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures all middleware. The metrics middleware sits
// outside Recoverer so a panicking handler is still counted as a 500.
func (s *Server) setupMiddleware() {
	logger := slog.Default()
	if logging.DefaultLoggingService != nil && logging.DefaultLoggingService.Logger != nil {
		logger = logging.DefaultLoggingService.Logger
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(RealIPMiddleware)
	s.router.Use(metrics.Middleware(s.metrics))
	s.router.Use(logging.Middleware(logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(s.rateLimiter.Middleware)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handler.ServeIndex)
	s.router.Get("/health", s.handler.HealthCheck)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/data", s.handler.GetData)
		r.Post("/data", s.handler.PostData)
		r.Get("/cart/{userId}", s.handler.GetCart)
		r.Post("/cart/{userId}", s.handler.UpdateCart)
	})

	s.router.Method(http.MethodGet, "/metrics", metrics.Handler(s.metrics.Registry))
}

// Start starts the server and blocks until it stops.
// A clean Shutdown returns nil.
func (s *Server) Start() error {
	if s.config.Env == config.EnvDevelopment {
		s.startProfilingServer()
	}

	logging.Info(fmt.Sprintf("Starting server at: %s:%s", s.config.Address, s.config.Port))
	logging.Info(fmt.Sprintf("Metrics available at: http://%s:%s/metrics", s.config.Address, s.config.Port))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		// If graceful shutdown fails, force close
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}

// startProfilingServer starts the pprof profiling server in development mode
func (s *Server) startProfilingServer() {
	go func() {
		logging.Info("Profiling server started at http://localhost:6060/debug/pprof/")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			logging.Error("Profiling server failed", "error", err)
		}
	}()
}
