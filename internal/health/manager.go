package health

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// DefaultCheckTimeout bounds each individual check.
const DefaultCheckTimeout = 5 * time.Second

// Manager coordinates health checks and aggregates results.
type Manager struct {
	checkers []Checker
	timeout  time.Duration
	mu       sync.RWMutex
}

// NewManager creates a manager with DefaultCheckTimeout.
func NewManager() *Manager {
	return &Manager{
		checkers: make([]Checker, 0),
		timeout:  DefaultCheckTimeout,
	}
}

// WithTimeout sets a custom per-check timeout.
func (m *Manager) WithTimeout(timeout time.Duration) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = timeout
	return m
}

// AddChecker registers a checker. A checker with the same name replaces
// the existing one.
func (m *Manager) AddChecker(checker Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, c := range m.checkers {
		if c.Name() == checker.Name() {
			m.checkers[i] = checker
			return
		}
	}
	m.checkers = append(m.checkers, checker)
}

// RemoveChecker removes a checker by name and reports whether it existed.
func (m *Manager) RemoveChecker(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, checker := range m.checkers {
		if checker.Name() == name {
			m.checkers = append(m.checkers[:i], m.checkers[i+1:]...)
			return true
		}
	}
	return false
}

// Check runs all registered checks in parallel, each under the manager
// timeout, and returns results keyed by checker name.
func (m *Manager) Check(ctx context.Context) map[string]*Result {
	m.mu.RLock()
	checkers := make([]Checker, len(m.checkers))
	copy(checkers, m.checkers)
	timeout := m.timeout
	m.mu.RUnlock()

	results := make(map[string]*Result, len(checkers))
	var (
		resultsMu sync.Mutex
		wg        sync.WaitGroup
	)

	for _, checker := range checkers {
		wg.Add(1)
		go func(c Checker) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			result := runCheck(checkCtx, c)

			resultsMu.Lock()
			results[c.Name()] = result
			resultsMu.Unlock()
		}(checker)
	}

	wg.Wait()
	return results
}

// runCheck calls c, turning panics and nil results into unhealthy results.
func runCheck(ctx context.Context, c Checker) (result *Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = Unhealthy(fmt.Sprintf("check panicked: %v", r))
		}
		if result.Latency == 0 {
			result.Latency = time.Since(start)
		}
	}()

	result = c.Check(ctx)
	if result == nil {
		result = Unhealthy("check returned no result")
	}
	return result
}

// OverallStatus folds results into one status: unhealthy if any check is
// unhealthy, degraded if any is degraded, healthy otherwise.
func (m *Manager) OverallStatus(results map[string]*Result) Status {
	overall := StatusHealthy
	for _, result := range results {
		switch result.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			overall = StatusDegraded
		}
	}
	return overall
}

// CheckNames returns the names of all registered checkers, sorted.
func (m *Manager) CheckNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, len(m.checkers))
	for i, checker := range m.checkers {
		names[i] = checker.Name()
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered checkers.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.checkers)
}
