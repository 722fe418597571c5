package telemetry

// Config holds configuration for the tracer
type Config struct {
	// ServiceName is the name of the service
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// Environment is the deployment environment (dev, staging, production)
	Environment string

	// Enabled determines whether tracing is enabled.
	// When false, a noop tracer is used.
	Enabled bool

	// Endpoint is the OTLP/HTTP collector endpoint (host:port).
	// If empty, spans are recorded but never exported.
	Endpoint string

	// Insecure sends spans over plain HTTP instead of HTTPS.
	Insecure bool

	// SampleRate is the fraction of traces to sample (0.0 to 1.0)
	SampleRate float64
}

// DefaultConfig returns the configuration used by the CLI.
// Tracing is disabled unless turned on in the config file.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "taskplan",
		ServiceVersion: "dev",
		Environment:    "development",
		Enabled:        false,
		SampleRate:     1.0,
	}
}

// sampleRate clamps the configured rate to [0, 1].
func (c Config) sampleRate() float64 {
	switch {
	case c.SampleRate < 0:
		return 0
	case c.SampleRate > 1:
		return 1
	default:
		return c.SampleRate
	}
}
