package domain

import (
	"fmt"
	"math"
)

// Effort bounds accepted from callers.
const (
	MinEstimatedHours = 0.5
	MaxEstimatedHours = 1000.0
	MaxDailyWorkHours = 24.0
)

// Hours is an effort estimate for a single task.
type Hours float64

// NewHours creates an Hours value with validation
func NewHours(value float64) (Hours, error) {
	h := Hours(value)
	if err := h.Validate(); err != nil {
		return 0, err
	}
	return h, nil
}

// Validate checks that the estimate is within [MinEstimatedHours, MaxEstimatedHours]
func (h Hours) Validate() error {
	v := float64(h)
	if math.IsNaN(v) || v < MinEstimatedHours || v > MaxEstimatedHours {
		return fmt.Errorf("estimated hours %v must be between %v and %v", v, MinEstimatedHours, MaxEstimatedHours)
	}
	return nil
}

// Float64 returns the raw value
func (h Hours) Float64() float64 {
	return float64(h)
}

// DailyHours is a per-day work budget.
type DailyHours float64

// NewDailyHours creates a DailyHours value with validation
func NewDailyHours(value float64) (DailyHours, error) {
	d := DailyHours(value)
	if err := d.Validate(); err != nil {
		return 0, err
	}
	return d, nil
}

// Validate checks that the budget is in (0, MaxDailyWorkHours]
func (d DailyHours) Validate() error {
	v := float64(d)
	if math.IsNaN(v) || v <= 0 || v > MaxDailyWorkHours {
		return fmt.Errorf("daily work hours %v must be greater than 0 and at most %v", v, MaxDailyWorkHours)
	}
	return nil
}

// Float64 returns the raw value
func (d DailyHours) Float64() float64 {
	return float64(d)
}

// DaysNeeded returns how many calendar days h takes at this budget.
func (d DailyHours) DaysNeeded(h Hours) int {
	return int(math.Ceil(float64(h) / float64(d)))
}
