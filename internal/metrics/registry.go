package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	mu       sync.Mutex
	registry *prometheus.Registry
	current  *Metrics
)

// newProcessRegistry returns a registry preloaded with the Go runtime and
// process collectors plus build info.
func newProcessRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	return reg
}

// InitDefault creates the process-wide metrics on their own registry.
// Later calls return the same instance.
func InitDefault() *Metrics {
	mu.Lock()
	defer mu.Unlock()

	if current == nil {
		registry = newProcessRegistry()
		current = NewMetrics(registry)
	}
	return current
}

// GetDefault returns the process-wide metrics, creating them on first use.
func GetDefault() *Metrics {
	return InitDefault()
}

// NewRegistry creates an isolated registry holding only taskplan metrics.
func NewRegistry() (*prometheus.Registry, *Metrics) {
	reg := prometheus.NewRegistry()
	return reg, NewMetrics(reg)
}

// Handler serves the process-wide registry in the Prometheus exposition format.
func Handler() http.Handler {
	InitDefault()

	mu.Lock()
	reg := registry
	mu.Unlock()

	return HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// HandlerFor returns an HTTP handler for a specific registry
func HandlerFor(reg prometheus.Gatherer, opts promhttp.HandlerOpts) http.Handler {
	return promhttp.HandlerFor(reg, opts)
}

// Reset drops the process-wide metrics so the next InitDefault starts over.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	registry = nil
	current = nil
}
