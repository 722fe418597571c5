// Package telemetry wires OpenTelemetry tracing for taskplan.
//
// InitProvider installs a process-wide tracer provider. Span helpers in this
// package always go through GetTracerProvider, so callers never need to check
// whether tracing is enabled.
package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/felixgeelhaar/taskplan/internal/log"
)

// state is the installed provider and the function that flushes it.
type state struct {
	provider trace.TracerProvider
	shutdown func(context.Context) error
}

var (
	mu      sync.RWMutex
	current state
)

func noShutdown(context.Context) error { return nil }

func createResource(cfg Config) (*resource.Resource, error) {
	return resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(cfg.Environment),
		),
		resource.WithProcessRuntimeDescription(),
		resource.WithTelemetrySDK(),
	)
}

func newExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.Endpoint),
		otlptracehttp.WithCompression(otlptracehttp.GzipCompression),
		otlptracehttp.WithRetry(otlptracehttp.RetryConfig{
			Enabled:         true,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     2 * time.Second,
			MaxElapsedTime:  10 * time.Second,
		}),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return otlptracehttp.New(ctx, opts...)
}

// InitProvider installs the process-wide tracer provider. When cfg is
// disabled a no-op provider is installed. The returned function flushes
// pending spans and stops export.
func InitProvider(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	if !cfg.Enabled {
		install(state{provider: noop.NewTracerProvider(), shutdown: noShutdown})
		return noShutdown, nil
	}

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.sampleRate()))),
	}
	if cfg.Endpoint != "" {
		exporter, err := newExporter(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(5*time.Second),
			sdktrace.WithMaxExportBatchSize(512),
		))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	install(state{provider: tp, shutdown: tp.Shutdown})

	if err := runtime.Start(runtime.WithMinimumReadMemStatsInterval(time.Second)); err != nil {
		log.DefaultLogger().Warn("failed to start runtime instrumentation", "error", err)
	}

	return tp.Shutdown, nil
}

func install(s state) {
	mu.Lock()
	current = s
	mu.Unlock()
	if s.provider != nil {
		otel.SetTracerProvider(s.provider)
	}
}

// Shutdown flushes and stops the installed provider, if any.
func Shutdown(ctx context.Context) error {
	mu.RLock()
	shutdown := current.shutdown
	mu.RUnlock()

	if shutdown == nil {
		return nil
	}
	return shutdown(ctx)
}

// GetTracerProvider returns the installed provider, or a no-op one.
func GetTracerProvider() trace.TracerProvider {
	mu.RLock()
	defer mu.RUnlock()

	if current.provider == nil {
		return noop.NewTracerProvider()
	}
	return current.provider
}

// SetTracerProvider replaces the installed provider without a shutdown
// hook. Passing nil restores the no-op default.
func SetTracerProvider(tp trace.TracerProvider) {
	mu.Lock()
	defer mu.Unlock()
	current = state{provider: tp}
}
