package scheduler

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCycleDetected is matched by every CycleError.
	ErrCycleDetected = errors.New("circular dependency detected")

	// ErrInvalidConfiguration is matched by every ConfigError.
	ErrInvalidConfiguration = errors.New("invalid scheduler configuration")
)

// CycleError reports a dependency chain that loops back on itself.
type CycleError struct {
	// Title is the task found already on the resolution path.
	Title string
	// Path runs from Title through its dependencies back to Title.
	Path []string
}

func (e *CycleError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("circular dependency detected involving task: %s", e.Title)
	}
	return fmt.Sprintf("circular dependency detected involving task: %s (%s)", e.Title, strings.Join(e.Path, " -> "))
}

// Is lets errors.Is(err, ErrCycleDetected) match.
func (e *CycleError) Is(target error) bool {
	return target == ErrCycleDetected
}

// ConfigError reports a calculator parameter out of range.
type ConfigError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidConfiguration) match.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}
