package health

import (
	"context"
	"sync/atomic"
	"time"
)

// ProbeManager extends Manager with liveness, readiness and startup probes.
// It tracks whether the server finished starting and whether it is draining.
type ProbeManager struct {
	*Manager

	startTime   time.Time
	now         func() time.Time
	initialized atomic.Bool
	inShutdown  atomic.Bool
	version     string
}

// NewProbeManager creates a probe manager reporting the given version.
func NewProbeManager(version string) *ProbeManager {
	return &ProbeManager{
		Manager:   NewManager(),
		startTime: time.Now(),
		now:       time.Now,
		version:   version,
	}
}

// MarkInitialized allows the startup probe to pass.
func (pm *ProbeManager) MarkInitialized() {
	pm.initialized.Store(true)
}

// MarkShutdown makes the readiness probe fail so traffic drains away.
func (pm *ProbeManager) MarkShutdown() {
	pm.inShutdown.Store(true)
}

// IsInitialized returns whether the application is fully initialized.
func (pm *ProbeManager) IsInitialized() bool {
	return pm.initialized.Load()
}

// IsShuttingDown returns whether the application is shutting down.
func (pm *ProbeManager) IsShuttingDown() bool {
	return pm.inShutdown.Load()
}

// Uptime returns how long the application has been running.
func (pm *ProbeManager) Uptime() time.Duration {
	return pm.now().Sub(pm.startTime)
}

// Version returns the application version.
func (pm *ProbeManager) Version() string {
	return pm.version
}

// ProbeResult is the JSON body of every probe endpoint.
type ProbeResult struct {
	Status    Status             `json:"status"`
	Version   string             `json:"version,omitempty"`
	Uptime    string             `json:"uptime,omitempty"`
	Checks    map[string]*Result `json:"checks,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

func (pm *ProbeManager) probe(status Status, checks map[string]*Result) *ProbeResult {
	if checks == nil {
		checks = make(map[string]*Result)
	}
	return &ProbeResult{
		Status:    status,
		Version:   pm.version,
		Uptime:    pm.Uptime().Round(time.Second).String(),
		Checks:    checks,
		Timestamp: pm.now().UTC(),
	}
}

// CheckLiveness reports whether the process is responsive. It never runs
// dependency checks; a draining server reports degraded but stays alive.
func (pm *ProbeManager) CheckLiveness(ctx context.Context) *ProbeResult {
	status := StatusHealthy
	if pm.IsShuttingDown() {
		status = StatusDegraded
	}
	return pm.probe(status, nil)
}

// CheckReadiness reports whether the server can take traffic. It is
// unhealthy while shutting down and otherwise aggregates every checker.
func (pm *ProbeManager) CheckReadiness(ctx context.Context) *ProbeResult {
	if pm.IsShuttingDown() {
		return pm.probe(StatusUnhealthy, nil)
	}

	checks := pm.Manager.Check(ctx)
	return pm.probe(pm.Manager.OverallStatus(checks), checks)
}

// CheckStartup reports whether initialization has completed.
func (pm *ProbeManager) CheckStartup(ctx context.Context) *ProbeResult {
	status := StatusUnhealthy
	if pm.IsInitialized() {
		status = StatusHealthy
	}
	return pm.probe(status, nil)
}
