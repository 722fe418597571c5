package health

import (
	"context"
	"slices"
	"time"

	"github.com/felixgeelhaar/taskplan/internal/scheduler"
)

var canaryStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// canary is a fixed request whose schedule is known in advance: "design"
// must come before "build" even though it is listed second.
var canary = scheduler.Request{
	Tasks: []scheduler.TaskSpec{
		{Title: "build", EstimatedHours: 8, Dependencies: []string{"design"}},
		{Title: "design", EstimatedHours: 4},
	},
	StartDate:      &canaryStart,
	DailyWorkHours: 8,
}

// SchedulerChecker runs a canary request through the scheduler and
// compares the answer with the known schedule.
type SchedulerChecker struct {
	svc *scheduler.Service
}

// NewSchedulerChecker creates a checker for svc.
func NewSchedulerChecker(svc *scheduler.Service) *SchedulerChecker {
	return &SchedulerChecker{svc: svc}
}

func (c *SchedulerChecker) Name() string {
	return "scheduler"
}

func (c *SchedulerChecker) Check(ctx context.Context) *Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("check cancelled").WithDetail("error", err.Error())
	}

	result, err := c.svc.Generate(canary)
	if err != nil {
		return Unhealthy("canary schedule failed").WithDetail("error", err.Error())
	}

	want := []string{"design", "build"}
	if !slices.Equal(result.RecommendedOrder, want) {
		return Unhealthy("canary schedule returned an unexpected order").
			WithDetail("order", result.RecommendedOrder).
			WithDetail("expected", want)
	}

	return Healthy("scheduler operational").
		WithDetail("total_days", result.TotalEstimatedDays)
}
