// Package server exposes the scheduler and the project store over HTTP.
//
// It provides:
//   - the /api/v1 JSON API guarded by API keys
//   - liveness, readiness and startup probes
//   - a Prometheus /metrics endpoint
//   - graceful shutdown with connection draining
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/taskplan/internal/apikey"
	"github.com/felixgeelhaar/taskplan/internal/health"
	"github.com/felixgeelhaar/taskplan/internal/log"
	"github.com/felixgeelhaar/taskplan/internal/metrics"
	"github.com/felixgeelhaar/taskplan/internal/project"
	"github.com/felixgeelhaar/taskplan/internal/scheduler"
)

// Server serves the taskplan HTTP API.
type Server struct {
	httpServer      *http.Server
	handler         http.Handler
	deps            Deps
	inShutdown      atomic.Bool
	shutdownTimeout time.Duration
}

// Config holds server configuration.
type Config struct {
	// Address is the listen address (e.g., ":8080", "0.0.0.0:8080")
	Address string

	// ShutdownTimeout is the maximum time to wait for connections to drain during shutdown.
	// Defaults to 30 seconds if not specified.
	ShutdownTimeout time.Duration

	// ReadTimeout is the maximum duration for reading the entire request.
	// Defaults to 10 seconds if not specified.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response.
	// Defaults to 10 seconds if not specified.
	WriteTimeout time.Duration

	// IdleTimeout is the maximum amount of time to wait for the next request.
	// Defaults to 60 seconds if not specified.
	IdleTimeout time.Duration
}

// Deps are the collaborators the handlers use. Scheduler, Store, Auth and
// Probes are required; the rest fall back to process defaults.
type Deps struct {
	Scheduler *scheduler.Service
	Store     project.Store
	Auth      apikey.Authenticator
	Probes    *health.ProbeManager

	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	Logger         *log.Logger
}

// NewServer creates a server. It does not start listening.
func NewServer(cfg Config, deps Deps) *Server {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.GetDefault()
	}
	if deps.MetricsHandler == nil {
		deps.MetricsHandler = metrics.Handler()
	}
	if deps.Logger == nil {
		deps.Logger = log.DefaultLogger()
	}

	s := &Server{
		deps:            deps,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
	s.handler = s.routes()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Handler returns the root handler, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured address and serves until shutdown.
// It returns nil after a graceful Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln. The startup probe passes once the
// listener is ready.
func (s *Server) Serve(ln net.Listener) error {
	s.deps.Probes.MarkInitialized()
	s.deps.Logger.Info("server listening", "address", ln.Addr().String())

	err := s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown performs graceful shutdown of the HTTP server.
//
// It:
//  1. Marks the server as shutting down (readiness probes will fail)
//  2. Disables HTTP keep-alives to stop accepting new requests
//  3. Waits for existing connections to drain (up to ShutdownTimeout)
func (s *Server) Shutdown(ctx context.Context) error {
	s.inShutdown.Store(true)
	s.deps.Probes.MarkShutdown()
	s.httpServer.SetKeepAlivesEnabled(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	s.deps.Logger.Info("draining connections", "timeout", s.shutdownTimeout.String())
	return s.httpServer.Shutdown(shutdownCtx)
}

// IsShuttingDown returns whether the server is shutting down.
func (s *Server) IsShuttingDown() bool {
	return s.inShutdown.Load()
}
