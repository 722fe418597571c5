package domain

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

// genValidHours generates estimates inside the accepted range
func genValidHours() *rapid.Generator[Hours] {
	return rapid.Custom(func(t *rapid.T) Hours {
		return Hours(rapid.Float64Range(MinEstimatedHours, MaxEstimatedHours).Draw(t, "hours"))
	})
}

// genValidDailyHours generates budgets in (0, 24]
func genValidDailyHours() *rapid.Generator[DailyHours] {
	return rapid.Custom(func(t *rapid.T) DailyHours {
		return DailyHours(rapid.Float64Range(0.25, MaxDailyWorkHours).Draw(t, "daily"))
	})
}

// TestHours_ValidRangeAlwaysValidates tests that in-range estimates pass validation
func TestHours_ValidRangeAlwaysValidates(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		h := genValidHours().Draw(t, "valid_hours")
		if err := h.Validate(); err != nil {
			t.Fatalf("hours %v should pass validation: %v", h, err)
		}
	})
}

// TestHours_OutOfRangeFails tests that estimates outside the range are rejected
func TestHours_OutOfRangeFails(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.OneOf(
			rapid.Float64Range(-1e6, MinEstimatedHours-1e-9),
			rapid.Float64Range(MaxEstimatedHours+1e-9, 1e6),
		).Draw(t, "invalid_hours")

		if err := Hours(v).Validate(); err == nil {
			t.Fatalf("hours %v should fail validation", v)
		}
	})
}

// TestDailyHours_DaysNeededCoversEstimate tests that the day count is the smallest covering one
func TestDailyHours_DaysNeededCoversEstimate(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		h := genValidHours().Draw(t, "hours")
		d := genValidDailyHours().Draw(t, "daily")

		days := d.DaysNeeded(h)
		if days < 1 {
			t.Fatalf("DaysNeeded(%v at %v) = %d, want at least 1", h, d, days)
		}
		if want := int(math.Ceil(float64(h) / float64(d))); days != want {
			t.Fatalf("DaysNeeded(%v at %v) = %d, want %d", h, d, days, want)
		}
	})
}

// TestTitle_GeneratedTitlesValidate tests that non-blank titles under the limit validate
func TestTitle_GeneratedTitlesValidate(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringMatching(`[A-Za-z0-9][A-Za-z0-9 _-]{0,150}`).Draw(t, "title")
		if err := Title(s).Validate(); err != nil {
			t.Fatalf("title %q should pass validation: %v", s, err)
		}
	})
}
