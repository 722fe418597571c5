package plan

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/taskplan/internal/domain"
	"github.com/felixgeelhaar/taskplan/internal/errors"
)

// Validate checks the request before it reaches the scheduler.
// Every problem found is reported, not just the first.
func (r *ScheduleRequest) Validate() error {
	if len(r.Tasks) == 0 {
		return errors.NewInvalidRequestError([]string{"at least one task is required"})
	}

	var problems []string

	for i, t := range r.Tasks {
		if err := t.Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("task %d: %v", i+1, err))
		}
	}

	if dups := r.duplicateTitles(); len(dups) > 0 {
		problems = append(problems, fmt.Sprintf("duplicate task titles found: %s", strings.Join(dups, ", ")))
	}

	if unknown := r.unknownDependencies(); len(unknown) > 0 {
		problems = append(problems, fmt.Sprintf("invalid dependencies (tasks not found): %s", strings.Join(unknown, ", ")))
	}

	if r.DailyWorkHours != nil {
		if _, err := domain.NewDailyHours(*r.DailyWorkHours); err != nil {
			problems = append(problems, err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.NewInvalidRequestError(problems)
	}
	return nil
}

// Validate checks a single task against domain rules
func (t *TaskInput) Validate() error {
	if _, err := domain.NewTitle(t.Title); err != nil {
		return err
	}
	if _, err := domain.NewHours(t.EstimatedHours); err != nil {
		return fmt.Errorf("%q: %w", t.Title, err)
	}
	return nil
}

// duplicateTitles returns every title seen more than once, in first-seen order.
func (r *ScheduleRequest) duplicateTitles() []string {
	counts := make(map[string]int, len(r.Tasks))
	var order []string
	for _, t := range r.Tasks {
		if counts[t.Title] == 0 {
			order = append(order, t.Title)
		}
		counts[t.Title]++
	}

	var dups []string
	for _, title := range order {
		if counts[title] > 1 {
			dups = append(dups, title)
		}
	}
	return dups
}

// unknownDependencies returns distinct dependency titles naming no task, in first-seen order.
func (r *ScheduleRequest) unknownDependencies() []string {
	titles := make(map[string]struct{}, len(r.Tasks))
	for _, t := range r.Tasks {
		titles[t.Title] = struct{}{}
	}

	seen := make(map[string]struct{})
	var unknown []string
	for _, t := range r.Tasks {
		for _, dep := range t.Dependencies {
			if _, ok := titles[dep]; ok {
				continue
			}
			if _, ok := seen[dep]; ok {
				continue
			}
			seen[dep] = struct{}{}
			unknown = append(unknown, dep)
		}
	}
	return unknown
}
