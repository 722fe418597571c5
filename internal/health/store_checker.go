package health

import (
	"context"
	"time"
)

// Pinger is the part of the project store a health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DefaultSlowThreshold marks a store responding slower than this as degraded.
const DefaultSlowThreshold = 500 * time.Millisecond

// StoreChecker checks that the project store answers.
type StoreChecker struct {
	store         Pinger
	slowThreshold time.Duration
}

// NewStoreChecker creates a checker for store.
func NewStoreChecker(store Pinger) *StoreChecker {
	return &StoreChecker{store: store, slowThreshold: DefaultSlowThreshold}
}

// WithSlowThreshold overrides the latency above which the store is degraded.
func (c *StoreChecker) WithSlowThreshold(d time.Duration) *StoreChecker {
	c.slowThreshold = d
	return c
}

func (c *StoreChecker) Name() string {
	return "project-store"
}

// Check pings the store. A failed ping is unhealthy; a slow one is degraded.
func (c *StoreChecker) Check(ctx context.Context) *Result {
	if c.store == nil {
		return Unhealthy("no project store configured")
	}

	start := time.Now()
	err := c.store.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return Unhealthy("project store unavailable").
			WithDetail("error", err.Error()).
			WithLatency(latency)
	}
	if latency > c.slowThreshold {
		return Degraded("project store is slow").
			WithDetail("threshold", c.slowThreshold.String()).
			WithLatency(latency)
	}
	return Healthy("project store reachable").WithLatency(latency)
}
