package health

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestNewProbeManager(t *testing.T) {
	pm := NewProbeManager("1.0.0")

	if pm.Version() != "1.0.0" {
		t.Errorf("Version() = %q", pm.Version())
	}
	if pm.IsInitialized() {
		t.Error("probe manager should not be initialized by default")
	}
	if pm.IsShuttingDown() {
		t.Error("probe manager should not be shutting down by default")
	}
}

func TestProbeManagerUptime(t *testing.T) {
	pm := NewProbeManager("1.0.0")
	pm.now = func() time.Time { return pm.startTime.Add(90 * time.Second) }

	if pm.Uptime() != 90*time.Second {
		t.Errorf("Uptime() = %v, want 90s", pm.Uptime())
	}
	if got := pm.CheckLiveness(context.Background()).Uptime; got != "1m30s" {
		t.Errorf("liveness uptime = %q, want 1m30s", got)
	}
}

func TestCheckLiveness(t *testing.T) {
	pm := NewProbeManager("1.0.0")
	checker := &mockChecker{name: "store", result: Unhealthy("down")}
	pm.AddChecker(checker)

	if got := pm.CheckLiveness(context.Background()).Status; got != StatusHealthy {
		t.Errorf("liveness = %v, want healthy", got)
	}
	if checker.calls.Load() != 0 {
		t.Error("liveness should not run dependency checks")
	}

	pm.MarkShutdown()
	if got := pm.CheckLiveness(context.Background()).Status; got != StatusDegraded {
		t.Errorf("liveness during shutdown = %v, want degraded", got)
	}
}

func TestCheckReadiness(t *testing.T) {
	pm := NewProbeManager("1.0.0")
	pm.AddChecker(&mockChecker{name: "store", result: Healthy("ok")})
	pm.AddChecker(&mockChecker{name: "scheduler", result: Degraded("slow")})

	result := pm.CheckReadiness(context.Background())
	if result.Status != StatusDegraded {
		t.Errorf("readiness = %v, want degraded", result.Status)
	}
	if len(result.Checks) != 2 {
		t.Errorf("got %d checks, want 2", len(result.Checks))
	}

	pm.MarkShutdown()
	result = pm.CheckReadiness(context.Background())
	if result.Status != StatusUnhealthy {
		t.Errorf("readiness during shutdown = %v, want unhealthy", result.Status)
	}
	if len(result.Checks) != 0 {
		t.Error("readiness during shutdown should skip checks")
	}
}

func TestCheckStartup(t *testing.T) {
	pm := NewProbeManager("1.0.0")

	if got := pm.CheckStartup(context.Background()).Status; got != StatusUnhealthy {
		t.Errorf("startup before init = %v, want unhealthy", got)
	}

	pm.MarkInitialized()
	if got := pm.CheckStartup(context.Background()).Status; got != StatusHealthy {
		t.Errorf("startup after init = %v, want healthy", got)
	}
}

func TestProbeResultJSON(t *testing.T) {
	pm := NewProbeManager("2.1.0")
	pm.AddChecker(&mockChecker{name: "store", result: Healthy("ok")})

	data, err := json.Marshal(pm.CheckReadiness(context.Background()))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["status"] != "healthy" {
		t.Errorf("status = %v", decoded["status"])
	}
	if decoded["version"] != "2.1.0" {
		t.Errorf("version = %v", decoded["version"])
	}
	checks, ok := decoded["checks"].(map[string]any)
	if !ok || checks["store"] == nil {
		t.Errorf("checks = %v", decoded["checks"])
	}
}
