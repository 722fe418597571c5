package scheduler

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func datePtr(s string) *time.Time {
	d := date(s)
	return &d
}

func TestCompute_SingleTask(t *testing.T) {
	tasks := []TaskSpec{{Title: "A", EstimatedHours: 16}}

	result, err := Compute([]string{"A"}, tasks, date("2025-01-01"), 8)
	require.NoError(t, err)
	require.Len(t, result.ScheduledTasks, 1)

	st := result.ScheduledTasks[0]
	assert.Equal(t, date("2025-01-01"), st.SuggestedStartDate)
	assert.Equal(t, date("2025-01-03"), st.SuggestedEndDate)
	assert.Equal(t, 1, st.Order)
	assert.False(t, st.HasConflict)
	assert.Empty(t, st.ConflictReason)

	assert.Equal(t, 2, result.TotalEstimatedDays)
	assert.Equal(t, date("2025-01-03"), result.ProjectEndDate)
	assert.False(t, result.HasConflicts)
	assert.Empty(t, result.Warnings)
}

func TestCompute_DaysNeededRoundsUp(t *testing.T) {
	tests := []struct {
		hours   float64
		daily   float64
		wantEnd string
	}{
		{hours: 1, daily: 8, wantEnd: "2025-01-02"},
		{hours: 8, daily: 8, wantEnd: "2025-01-02"},
		{hours: 9, daily: 8, wantEnd: "2025-01-03"},
		{hours: 0.5, daily: 8, wantEnd: "2025-01-02"},
		{hours: 10, daily: 2.5, wantEnd: "2025-01-05"},
		{hours: 24, daily: 6, wantEnd: "2025-01-05"},
	}

	for _, tt := range tests {
		tasks := []TaskSpec{{Title: "A", EstimatedHours: tt.hours}}
		result, err := Compute([]string{"A"}, tasks, date("2025-01-01"), tt.daily)
		require.NoError(t, err)
		assert.Equal(t, date(tt.wantEnd), result.ScheduledTasks[0].SuggestedEndDate,
			"hours=%v daily=%v", tt.hours, tt.daily)
	}
}

func TestCompute_DependencyChaining(t *testing.T) {
	tasks := []TaskSpec{
		{Title: "A", EstimatedHours: 16},
		{Title: "B", EstimatedHours: 4, Dependencies: []string{"A"}},
	}

	result, err := Compute([]string{"A", "B"}, tasks, date("2025-01-01"), 8)
	require.NoError(t, err)

	a, b := result.ScheduledTasks[0], result.ScheduledTasks[1]
	assert.Equal(t, a.SuggestedEndDate, b.SuggestedStartDate)
	assert.Equal(t, date("2025-01-04"), b.SuggestedEndDate)
	assert.Equal(t, 2, b.Order)
}

func TestCompute_SingleTrack(t *testing.T) {
	// Independent tasks are serialized along the order.
	tasks := []TaskSpec{
		{Title: "A", EstimatedHours: 8},
		{Title: "B", EstimatedHours: 8},
		{Title: "C", EstimatedHours: 8},
	}

	result, err := Compute([]string{"A", "B", "C"}, tasks, date("2025-01-01"), 8)
	require.NoError(t, err)

	assert.Equal(t, date("2025-01-01"), result.ScheduledTasks[0].SuggestedStartDate)
	assert.Equal(t, date("2025-01-02"), result.ScheduledTasks[1].SuggestedStartDate)
	assert.Equal(t, date("2025-01-03"), result.ScheduledTasks[2].SuggestedStartDate)
	assert.Equal(t, date("2025-01-04"), result.ProjectEndDate)
	assert.Equal(t, 3, result.TotalEstimatedDays)
}

func TestCompute_DependencyLaterThanCursor(t *testing.T) {
	// C depends on A only; the cursor already sits after A, so it wins.
	tasks := []TaskSpec{
		{Title: "A", EstimatedHours: 8},
		{Title: "B", EstimatedHours: 24},
		{Title: "C", EstimatedHours: 8, Dependencies: []string{"A"}},
	}

	result, err := Compute([]string{"A", "B", "C"}, tasks, date("2025-01-01"), 8)
	require.NoError(t, err)
	assert.Equal(t, date("2025-01-05"), result.ScheduledTasks[2].SuggestedStartDate)
}

func TestCompute_DueDateExceeded(t *testing.T) {
	tasks := []TaskSpec{{Title: "A", EstimatedHours: 24, DueDate: datePtr("2025-01-02")}}

	result, err := Compute([]string{"A"}, tasks, date("2025-01-01"), 8)
	require.NoError(t, err)

	st := result.ScheduledTasks[0]
	assert.True(t, st.HasConflict)
	assert.Equal(t, "estimated completion (2025-01-04) exceeds due date (2025-01-02)", st.ConflictReason)
	require.Len(t, st.Conflicts, 1)
	assert.Equal(t, ConflictDueDateExceeded, st.Conflicts[0].Kind)

	assert.True(t, result.HasConflicts)
	assert.Equal(t, []string{"Task 'A': estimated completion (2025-01-04) exceeds due date (2025-01-02)"}, result.Warnings)
}

func TestCompute_EndOnDueDateIsNotConflict(t *testing.T) {
	tasks := []TaskSpec{{Title: "A", EstimatedHours: 8, DueDate: datePtr("2025-01-02")}}

	result, err := Compute([]string{"A"}, tasks, date("2025-01-01"), 8)
	require.NoError(t, err)
	assert.False(t, result.ScheduledTasks[0].HasConflict)
	assert.False(t, result.HasConflicts)
}

func TestCompute_BothConflictsLastWins(t *testing.T) {
	tasks := []TaskSpec{
		{Title: "A", EstimatedHours: 40},
		{Title: "B", EstimatedHours: 8, DueDate: datePtr("2025-01-03"), Dependencies: []string{"A"}},
	}

	result, err := Compute([]string{"A", "B"}, tasks, date("2025-01-01"), 8)
	require.NoError(t, err)

	b := result.ScheduledTasks[1]
	assert.Equal(t, date("2025-01-06"), b.SuggestedStartDate)
	assert.True(t, b.HasConflict)
	require.Len(t, b.Conflicts, 2)
	assert.Equal(t, ConflictDueDateExceeded, b.Conflicts[0].Kind)
	assert.Equal(t, ConflictStartAfterDueDate, b.Conflicts[1].Kind)
	assert.Equal(t,
		"dependencies prevent starting before due date: cannot start until 2025-01-06 but due by 2025-01-03",
		b.ConflictReason)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "Task 'B': "+b.ConflictReason, result.Warnings[0])
}

func TestCompute_WarningsFollowOrder(t *testing.T) {
	tasks := []TaskSpec{
		{Title: "late", EstimatedHours: 16, DueDate: datePtr("2025-01-01")},
		{Title: "fine", EstimatedHours: 8},
		{Title: "later", EstimatedHours: 8, DueDate: datePtr("2025-01-02")},
	}

	result, err := Compute([]string{"late", "fine", "later"}, tasks, date("2025-01-01"), 8)
	require.NoError(t, err)
	require.Len(t, result.Warnings, 2)
	assert.Contains(t, result.Warnings[0], "Task 'late'")
	assert.Contains(t, result.Warnings[1], "Task 'later'")
}

func TestCompute_Aggregates(t *testing.T) {
	tasks := []TaskSpec{
		{Title: "A", EstimatedHours: 3.5},
		{Title: "B", EstimatedHours: 12},
		{Title: "C", EstimatedHours: 0.5, Dependencies: []string{"A"}},
	}

	result, err := Compute([]string{"A", "B", "C"}, tasks, date("2025-01-01"), 8)
	require.NoError(t, err)

	assert.InDelta(t, 16.0, result.TotalEstimatedHours, 1e-9)
	assert.Equal(t, date("2025-01-01"), result.ProjectStartDate)

	latest := result.ScheduledTasks[0].SuggestedEndDate
	for _, st := range result.ScheduledTasks {
		if st.SuggestedEndDate.After(latest) {
			latest = st.SuggestedEndDate
		}
	}
	assert.Equal(t, latest, result.ProjectEndDate)
	assert.Equal(t, []string{"A", "B", "C"}, result.RecommendedOrder)
}

func TestCompute_EmptyOrder(t *testing.T) {
	result, err := Compute(nil, nil, date("2025-01-01"), 8)
	require.NoError(t, err)

	assert.Empty(t, result.ScheduledTasks)
	assert.Equal(t, date("2025-01-01"), result.ProjectEndDate)
	assert.Equal(t, 0, result.TotalEstimatedDays)
	assert.False(t, result.HasConflicts)
	assert.NotNil(t, result.Warnings)
}

func TestCompute_SkipsUnknownTitles(t *testing.T) {
	tasks := []TaskSpec{{Title: "A", EstimatedHours: 8}}

	result, err := Compute([]string{"ghost", "A"}, tasks, date("2025-01-01"), 8)
	require.NoError(t, err)
	require.Len(t, result.ScheduledTasks, 1)
	assert.Equal(t, 1, result.ScheduledTasks[0].Order)
	assert.Equal(t, []string{"A"}, result.RecommendedOrder)
}

func TestCompute_InvalidDailyWorkHours(t *testing.T) {
	tasks := []TaskSpec{{Title: "A", EstimatedHours: 8}}

	for _, hours := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		result, err := Compute([]string{"A"}, tasks, date("2025-01-01"), hours)
		require.Error(t, err, "hours=%v", hours)
		assert.Nil(t, result)
		assert.True(t, errors.Is(err, ErrInvalidConfiguration))

		var cfgErr *ConfigError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "dailyWorkHours", cfgErr.Field)
	}
}

func TestCompute_Idempotent(t *testing.T) {
	tasks := []TaskSpec{
		{Title: "A", EstimatedHours: 12, DueDate: datePtr("2025-01-02")},
		{Title: "B", EstimatedHours: 30, Dependencies: []string{"A"}},
		{Title: "C", EstimatedHours: 5, DueDate: datePtr("2025-01-03")},
	}
	order := []string{"A", "B", "C"}

	first, err := Compute(order, tasks, date("2025-01-01"), 8)
	require.NoError(t, err)
	second, err := Compute(order, tasks, date("2025-01-01"), 8)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCompute_DoesNotMutateInput(t *testing.T) {
	due := date("2025-01-02")
	tasks := []TaskSpec{
		{Title: "A", EstimatedHours: 8, DueDate: &due},
		{Title: "B", EstimatedHours: 8, Dependencies: []string{"A"}},
	}
	snapshot := []TaskSpec{
		{Title: "A", EstimatedHours: 8, DueDate: &due},
		{Title: "B", EstimatedHours: 8, Dependencies: []string{"A"}},
	}

	_, err := Compute([]string{"A", "B"}, tasks, date("2025-01-01"), 8)
	require.NoError(t, err)
	assert.Equal(t, snapshot, tasks)
	assert.Equal(t, date("2025-01-02"), due)
}
