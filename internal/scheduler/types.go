package scheduler

import "time"

// DefaultDailyWorkHours is used when a request leaves the daily budget unset.
const DefaultDailyWorkHours = 8.0

// dateLayout is the calendar-day layout used in conflict messages.
const dateLayout = "2006-01-02"

// TaskSpec is a single task submitted for scheduling.
// Titles are unique within a request and dependencies name other titles.
type TaskSpec struct {
	Title          string
	EstimatedHours float64
	DueDate        *time.Time
	Dependencies   []string
}

// Request is the input of a scheduling call.
type Request struct {
	Tasks []TaskSpec

	// StartDate defaults to today (UTC midnight) when nil.
	StartDate *time.Time

	// DailyWorkHours defaults to DefaultDailyWorkHours when zero.
	DailyWorkHours float64
}

// ConflictKind classifies a due-date violation.
type ConflictKind string

const (
	// ConflictDueDateExceeded means the computed end date falls after the due date.
	ConflictDueDateExceeded ConflictKind = "due-date-exceeded"
	// ConflictStartAfterDueDate means dependencies push the start past the due date.
	ConflictStartAfterDueDate ConflictKind = "start-after-due-date"
)

// Conflict is one due-date violation found on a task.
type Conflict struct {
	Kind    ConflictKind
	Message string
}

// ScheduledTask is a TaskSpec with its computed placement.
type ScheduledTask struct {
	Title              string
	EstimatedHours     float64
	DueDate            *time.Time
	Dependencies       []string
	SuggestedStartDate time.Time
	SuggestedEndDate   time.Time
	Order              int // 1-based position in RecommendedOrder

	HasConflict bool
	// ConflictReason holds the message of the last conflict check that fired.
	ConflictReason string
	// Conflicts lists every conflict that fired, in evaluation order.
	Conflicts []Conflict
}

// Result is the aggregate output of a scheduling call.
type Result struct {
	RecommendedOrder    []string
	ScheduledTasks      []ScheduledTask
	TotalEstimatedHours float64
	TotalEstimatedDays  int
	ProjectStartDate    time.Time
	ProjectEndDate      time.Time
	HasConflicts        bool
	Warnings            []string
}

// Validation is the outcome of a dependency-only check.
type Validation struct {
	Valid bool
	Order []string
	Cycle *CycleError
}
