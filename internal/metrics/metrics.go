package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/felixgeelhaar/taskplan/internal/errors"
)

// Generation outcomes used as the result label.
const (
	ResultSuccess = "success"
	ResultCycle   = "cycle"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// ResultFor maps the error returned by a schedule generation to its
// result label.
func ResultFor(err error) string {
	if err == nil {
		return ResultSuccess
	}
	switch errors.CodeOf(err) {
	case errors.ErrCodeCycleDetected:
		return ResultCycle
	case errors.ErrCodeInvalidRequest, errors.ErrCodeInvalidConfiguration:
		return ResultInvalid
	default:
		return ResultError
	}
}

// Metrics holds all Prometheus metrics for taskplan
type Metrics struct {
	// Schedule generation metrics
	ScheduleGenerations *prometheus.CounterVec
	ScheduleDuration    prometheus.Histogram
	ScheduleTaskCount   prometheus.Histogram
	ScheduleConflicts   prometheus.Counter

	// Dependency validation metrics
	DependencyValidations *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		ScheduleGenerations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskplan_schedule_generations_total",
				Help: "Total number of schedule generations by result",
			},
			[]string{"result"},
		),
		ScheduleDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "taskplan_schedule_duration_seconds",
				Help:    "Schedule generation duration in seconds",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
		ScheduleTaskCount: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "taskplan_schedule_task_count",
				Help:    "Number of tasks in scheduled requests",
				Buckets: []float64{1, 5, 10, 20, 50, 100, 500, 1000},
			},
		),
		ScheduleConflicts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "taskplan_schedule_conflicts_total",
				Help: "Total number of tasks flagged with a due-date conflict",
			},
		),

		DependencyValidations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskplan_dependency_validations_total",
				Help: "Total number of dependency-only validations",
			},
			[]string{"valid"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskplan_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "taskplan_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),

		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskplan_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"error_code", "component"},
		),
	}
}

// RecordSchedule records one schedule generation.
// conflicts is only counted for successful runs.
func (m *Metrics) RecordSchedule(result string, tasks, conflicts int, d time.Duration) {
	m.ScheduleGenerations.WithLabelValues(result).Inc()
	m.ScheduleDuration.Observe(d.Seconds())
	m.ScheduleTaskCount.Observe(float64(tasks))
	if result == ResultSuccess && conflicts > 0 {
		m.ScheduleConflicts.Add(float64(conflicts))
	}
}

// RecordValidation records a dependency-only check.
func (m *Metrics) RecordValidation(valid bool) {
	m.DependencyValidations.WithLabelValues(strconv.FormatBool(valid)).Inc()
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(route, method string, status int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// RecordError counts an error by code and the component that saw it.
func (m *Metrics) RecordError(code, component string) {
	if code == "" {
		code = "unknown"
	}
	m.Errors.WithLabelValues(code, component).Inc()
}
