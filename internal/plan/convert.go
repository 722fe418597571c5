package plan

import "github.com/felixgeelhaar/taskplan/internal/scheduler"

// ToScheduler converts the wire request into scheduler input.
// A nil DailyWorkHours leaves the service default in effect.
func (r *ScheduleRequest) ToScheduler() scheduler.Request {
	tasks := make([]scheduler.TaskSpec, len(r.Tasks))
	for i, t := range r.Tasks {
		tasks[i] = scheduler.TaskSpec{
			Title:          t.Title,
			EstimatedHours: t.EstimatedHours,
			DueDate:        t.DueDate.Ptr(),
			Dependencies:   t.Dependencies,
		}
	}

	req := scheduler.Request{
		Tasks:     tasks,
		StartDate: r.StartDate.Ptr(),
	}
	if r.DailyWorkHours != nil {
		req.DailyWorkHours = *r.DailyWorkHours
	}
	return req
}

// TaskSpecs returns just the task list in scheduler form.
func (r *ScheduleRequest) TaskSpecs() []scheduler.TaskSpec {
	return r.ToScheduler().Tasks
}

// FromResult converts a computed schedule into its wire form
func FromResult(res *scheduler.Result) *ScheduleResponse {
	resp := &ScheduleResponse{
		RecommendedOrder:    nonNil(res.RecommendedOrder),
		ScheduledTasks:      make([]ScheduledTask, len(res.ScheduledTasks)),
		TotalEstimatedDays:  res.TotalEstimatedDays,
		TotalEstimatedHours: res.TotalEstimatedHours,
		ProjectStartDate:    NewDate(res.ProjectStartDate),
		ProjectEndDate:      NewDate(res.ProjectEndDate),
		HasConflicts:        res.HasConflicts,
		Warnings:            nonNil(res.Warnings),
	}

	for i, st := range res.ScheduledTasks {
		out := ScheduledTask{
			Title:              st.Title,
			EstimatedHours:     st.EstimatedHours,
			Dependencies:       nonNil(st.Dependencies),
			SuggestedStartDate: NewDate(st.SuggestedStartDate),
			SuggestedEndDate:   NewDate(st.SuggestedEndDate),
			Order:              st.Order,
			HasConflict:        st.HasConflict,
			ConflictReason:     st.ConflictReason,
		}
		if st.DueDate != nil {
			due := NewDate(*st.DueDate)
			out.DueDate = &due
		}
		for _, c := range st.Conflicts {
			out.Conflicts = append(out.Conflicts, Conflict{Kind: string(c.Kind), Message: c.Message})
		}
		resp.ScheduledTasks[i] = out
	}

	return resp
}

// FromValidation converts a dependency check into its wire form
func FromValidation(v scheduler.Validation) *ValidationResponse {
	if v.Valid {
		return &ValidationResponse{
			Valid:            true,
			Message:          "Dependencies are valid",
			RecommendedOrder: nonNil(v.Order),
		}
	}

	resp := &ValidationResponse{
		Valid:   false,
		Message: "Circular dependency detected in task dependencies",
	}
	if v.Cycle != nil {
		resp.Message = v.Cycle.Error()
		resp.CyclePath = v.Cycle.Path
	}
	return resp
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
