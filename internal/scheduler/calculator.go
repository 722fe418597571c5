package scheduler

import (
	"fmt"
	"math"
	"time"
)

// cursor is the state threaded through the forward pass.
type cursor struct {
	// current trails the latest end date produced so far.
	current time.Time
	// completion maps each scheduled title to its end date.
	completion map[string]time.Time
}

// Compute dates every task of order in a single forward pass.
//
// A task starts at the later of its dependencies' completion and the end of
// the previously scheduled task, so tasks never overlap. It runs for
// ceil(EstimatedHours / dailyWorkHours) calendar days. Due-date violations
// are reported as conflicts on an otherwise valid result.
//
// Compute fails only when dailyWorkHours is not a positive finite number.
func Compute(order []string, tasks []TaskSpec, start time.Time, dailyWorkHours float64) (*Result, error) {
	if err := checkDailyWorkHours(dailyWorkHours); err != nil {
		return nil, err
	}

	index := indexTasks(tasks)
	acc := cursor{
		current:    start,
		completion: make(map[string]time.Time, len(order)),
	}

	result := &Result{
		RecommendedOrder: make([]string, 0, len(order)),
		ScheduledTasks:   make([]ScheduledTask, 0, len(order)),
		Warnings:         []string{},
		ProjectStartDate: start,
		ProjectEndDate:   start,
	}

	for _, title := range order {
		i, ok := index[title]
		if !ok {
			continue
		}

		var st ScheduledTask
		acc, st = step(acc, tasks[i], start, dailyWorkHours)
		st.Order = len(result.ScheduledTasks) + 1

		result.RecommendedOrder = append(result.RecommendedOrder, title)
		result.ScheduledTasks = append(result.ScheduledTasks, st)

		if st.SuggestedEndDate.After(result.ProjectEndDate) {
			result.ProjectEndDate = st.SuggestedEndDate
		}
		if st.HasConflict {
			result.HasConflicts = true
			result.Warnings = append(result.Warnings, fmt.Sprintf("Task '%s': %s", st.Title, st.ConflictReason))
		}
	}

	for _, t := range tasks {
		result.TotalEstimatedHours += t.EstimatedHours
	}
	result.TotalEstimatedDays = int(math.Ceil(result.ProjectEndDate.Sub(start).Hours() / 24))

	return result, nil
}

// step schedules one task and returns the advanced cursor.
func step(acc cursor, task TaskSpec, start time.Time, dailyWorkHours float64) (cursor, ScheduledTask) {
	ready := start
	for _, dep := range task.Dependencies {
		if end, ok := acc.completion[dep]; ok && end.After(ready) {
			ready = end
		}
	}

	begin := ready
	if acc.current.After(begin) {
		begin = acc.current
	}

	days := int(math.Ceil(task.EstimatedHours / dailyWorkHours))
	end := begin.AddDate(0, 0, days)

	st := ScheduledTask{
		Title:              task.Title,
		EstimatedHours:     task.EstimatedHours,
		DueDate:            task.DueDate,
		Dependencies:       task.Dependencies,
		SuggestedStartDate: begin,
		SuggestedEndDate:   end,
		Conflicts:          checkDueDate(task.DueDate, begin, end),
	}
	if n := len(st.Conflicts); n > 0 {
		st.HasConflict = true
		st.ConflictReason = st.Conflicts[n-1].Message
	}

	acc.completion[task.Title] = end
	acc.current = end
	return acc, st
}

// checkDueDate evaluates both due-date checks in order.
func checkDueDate(due *time.Time, begin, end time.Time) []Conflict {
	if due == nil {
		return nil
	}

	var conflicts []Conflict
	if end.After(*due) {
		conflicts = append(conflicts, Conflict{
			Kind: ConflictDueDateExceeded,
			Message: fmt.Sprintf("estimated completion (%s) exceeds due date (%s)",
				end.Format(dateLayout), due.Format(dateLayout)),
		})
	}
	if begin.After(*due) {
		conflicts = append(conflicts, Conflict{
			Kind: ConflictStartAfterDueDate,
			Message: fmt.Sprintf("dependencies prevent starting before due date: cannot start until %s but due by %s",
				begin.Format(dateLayout), due.Format(dateLayout)),
		})
	}
	return conflicts
}

func checkDailyWorkHours(hours float64) error {
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return &ConfigError{Field: "dailyWorkHours", Value: hours, Reason: "must be a finite number"}
	}
	if hours <= 0 {
		return &ConfigError{Field: "dailyWorkHours", Value: hours, Reason: "must be greater than 0"}
	}
	return nil
}
