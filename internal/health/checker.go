// Package health reports whether taskplan and the dependencies it serves
// from are usable.
//
// Checkers report a Result with one of three statuses. A Manager runs all
// registered checkers in parallel, and a ProbeManager layers liveness,
// readiness and startup probes on top for the HTTP server.
//
// Example usage:
//
//	probes := health.NewProbeManager(version.Version)
//	probes.AddChecker(health.NewStoreChecker(store))
//	probes.AddChecker(health.NewSchedulerChecker(svc))
//
//	result := probes.CheckReadiness(ctx)
//	log.Info("readiness", "status", result.Status)
package health

import (
	"context"
	"time"
)

// Checker verifies one dependency or capability.
type Checker interface {
	// Name returns the unique name of this check, lowercase with hyphens
	// (e.g. "project-store").
	Name() string

	// Check performs the check. It must respect the context deadline.
	Check(ctx context.Context) *Result
}

// Status represents the health check status.
type Status string

const (
	// StatusHealthy indicates the checked component is fully operational.
	StatusHealthy Status = "healthy"

	// StatusDegraded indicates the component works with reduced quality,
	// for example a slow store.
	StatusDegraded Status = "degraded"

	// StatusUnhealthy indicates the component is not working.
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) String() string {
	return string(s)
}

// Result represents the result of a health check.
type Result struct {
	Status  Status         `json:"status"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Latency time.Duration  `json:"latency_ns"`
}

// NewResult creates a result with the given status and message.
func NewResult(status Status, message string) *Result {
	return &Result{
		Status:  status,
		Message: message,
		Details: make(map[string]any),
	}
}

// WithDetail adds a detail to the result and returns the result for chaining.
func (r *Result) WithDetail(key string, value any) *Result {
	r.Details[key] = value
	return r
}

// WithLatency sets the latency and returns the result for chaining.
func (r *Result) WithLatency(latency time.Duration) *Result {
	r.Latency = latency
	return r
}

// Healthy creates a healthy result with the given message.
func Healthy(message string) *Result {
	return NewResult(StatusHealthy, message)
}

// Degraded creates a degraded result with the given message.
func Degraded(message string) *Result {
	return NewResult(StatusDegraded, message)
}

// Unhealthy creates an unhealthy result with the given message.
func Unhealthy(message string) *Result {
	return NewResult(StatusUnhealthy, message)
}

// CheckFunc adapts a function to the Checker interface.
type CheckFunc struct {
	name string
	fn   func(ctx context.Context) *Result
}

// NewCheckFunc returns a Checker named name that calls fn.
func NewCheckFunc(name string, fn func(ctx context.Context) *Result) *CheckFunc {
	return &CheckFunc{name: name, fn: fn}
}

func (c *CheckFunc) Name() string { return c.name }

func (c *CheckFunc) Check(ctx context.Context) *Result { return c.fn(ctx) }
