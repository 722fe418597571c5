package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskplan/internal/apikey"
	"github.com/felixgeelhaar/taskplan/internal/config"
	"github.com/felixgeelhaar/taskplan/internal/health"
	"github.com/felixgeelhaar/taskplan/internal/log"
	"github.com/felixgeelhaar/taskplan/internal/metrics"
	"github.com/felixgeelhaar/taskplan/internal/project"
	"github.com/felixgeelhaar/taskplan/internal/scheduler"
	"github.com/felixgeelhaar/taskplan/internal/server"
	"github.com/felixgeelhaar/taskplan/internal/version"
)

type serveOptions struct {
	address         string
	port            int
	shutdownTimeout time.Duration
}

func newServeCommand(g *globalOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the taskplan HTTP API.

The server provides:
  /api/v1/...      - projects, tasks and scheduling (API key required)
  /health/live    - Liveness probe (process alive and responsive)
  /health/ready   - Readiness probe (store and scheduler usable)
  /health/startup - Startup probe (finished initialization)
  /healthz        - Backward-compatible readiness endpoint
  /metrics        - Prometheus metrics

API keys are read from auth.keys in the config file as bcrypt hashes.
Create one with 'taskplan apikey generate'.

The server drains connections before exiting on SIGTERM or SIGINT.

Example:
  # Start server on the configured port (default 8080)
  taskplan serve

  # Start server on custom port
  taskplan serve --port 9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, g.cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.address, "address", "", "address to bind to (overrides config)")
	cmd.Flags().IntVar(&opts.port, "port", 0, "port to listen on (overrides config)")
	cmd.Flags().DurationVar(&opts.shutdownTimeout, "shutdown-timeout", 0, "maximum time to drain connections (overrides config)")

	return cmd
}

func runServe(cmd *cobra.Command, cfg *config.Config, opts *serveOptions) error {
	ctx := cmd.Context()
	logger := log.DefaultLogger()

	if cmd.Flags().Changed("address") {
		cfg.Server.Address = opts.address
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = opts.port
	}
	if cmd.Flags().Changed("shutdown-timeout") {
		cfg.Server.ShutdownTimeout = opts.shutdownTimeout
	}

	store, err := openStore(cfg.Storage)
	if err != nil {
		return err
	}

	keys, err := loadKeys(cfg.Auth)
	if err != nil {
		return err
	}
	if keys.Len() == 0 {
		logger.Warn("no API keys configured; every /api/v1 request will be rejected")
	}

	svc := scheduler.NewService(scheduler.WithDefaultDailyWorkHours(cfg.Scheduler.DefaultDailyHours))

	probes := health.NewProbeManager(version.GetInfo().Version)
	probes.AddChecker(health.NewStoreChecker(store))
	probes.AddChecker(health.NewSchedulerChecker(svc))

	srv := server.NewServer(server.Config{
		Address:         cfg.Server.ListenAddress(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
	}, server.Deps{
		Scheduler:      svc,
		Store:          store,
		Auth:           keys,
		Probes:         probes,
		Metrics:        metrics.GetDefault(),
		MetricsHandler: metrics.Handler(),
		Logger:         logger,
	})

	logger.Info("starting server",
		"address", cfg.Server.ListenAddress(),
		"storage", cfg.Storage.Driver,
		"api_keys", keys.Len(),
	)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case <-ctx.Done():
		logger.Info("shutdown requested")

		// ctx is already cancelled; drain under a fresh deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout+5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		if err := <-serverErr; err != nil {
			return fmt.Errorf("server error: %w", err)
		}

		logger.Info("server stopped gracefully")
		return nil
	}
}

// openStore builds the project store selected by cfg.
func openStore(cfg config.StorageConfig) (project.Store, error) {
	switch cfg.Driver {
	case config.DriverFile:
		store, err := project.NewFileStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return project.NewMemoryStore(), nil
	}
}

// loadKeys registers every configured key hash.
func loadKeys(cfg config.AuthConfig) (*apikey.Registry, error) {
	reg := apikey.NewRegistry()
	for _, k := range cfg.Keys {
		if _, err := reg.AddHashed(k.Owner, k.Prefix, k.Hash, k.Scopes...); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
