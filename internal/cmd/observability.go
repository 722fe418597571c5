package cmd

import (
	"context"
	"io"
	"time"

	"github.com/felixgeelhaar/taskplan/internal/config"
	"github.com/felixgeelhaar/taskplan/internal/log"
	"github.com/felixgeelhaar/taskplan/internal/metrics"
	"github.com/felixgeelhaar/taskplan/internal/telemetry"
	"github.com/felixgeelhaar/taskplan/internal/version"
)

// setupObservability configures logging, metrics, and optional telemetry.
// It returns a cleanup function that should be deferred by the caller.
func setupObservability(ctx context.Context, cfg *config.Config, logOutput io.Writer) func() {
	setupLogging(cfg, logOutput)
	metrics.InitDefault()
	return setupTelemetry(ctx, cfg)
}

func setupLogging(cfg *config.Config, w io.Writer) {
	logCfg := log.FromStrings(cfg.Log.Level, cfg.Log.Format, version.GetInfo().Version)
	logCfg.Output = log.NewOutput(w)
	log.SetDefaultLogger(log.New(logCfg))
}

func setupTelemetry(ctx context.Context, cfg *config.Config) func() {
	if !cfg.Telemetry.Enabled {
		return func() {}
	}

	telemCfg := telemetry.DefaultConfig()
	telemCfg.ServiceVersion = version.GetInfo().Version
	telemCfg.Enabled = true
	telemCfg.Endpoint = cfg.Telemetry.Endpoint
	telemCfg.Insecure = cfg.Telemetry.Insecure
	telemCfg.SampleRate = cfg.Telemetry.SampleRate

	if _, err := telemetry.InitProvider(ctx, telemCfg); err != nil {
		log.DefaultLogger().Warn("failed to initialize telemetry", "error", err)
		return func() {}
	}

	log.DefaultLogger().Debug("telemetry enabled",
		"endpoint", telemCfg.Endpoint,
		"sample_rate", telemCfg.SampleRate,
	)

	return func() {
		// ctx may already be cancelled by an interrupt.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			log.DefaultLogger().Warn("failed to flush telemetry", "error", err)
		}
	}
}
