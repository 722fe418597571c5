package plan

// ScheduleRequest is the wire form of a scheduling request
type ScheduleRequest struct {
	Tasks          []TaskInput `json:"tasks" yaml:"tasks"`
	StartDate      *Date       `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	DailyWorkHours *float64    `json:"dailyWorkHours,omitempty" yaml:"dailyWorkHours,omitempty"`
}

// TaskInput is a single task as submitted by a caller
type TaskInput struct {
	Title          string   `json:"title" yaml:"title"`
	EstimatedHours float64  `json:"estimatedHours" yaml:"estimatedHours"`
	DueDate        *Date    `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	Dependencies   []string `json:"dependencies" yaml:"dependencies"`
}

// ScheduleResponse is the wire form of a computed schedule
type ScheduleResponse struct {
	RecommendedOrder    []string        `json:"recommendedOrder" yaml:"recommendedOrder"`
	ScheduledTasks      []ScheduledTask `json:"scheduledTasks" yaml:"scheduledTasks"`
	TotalEstimatedDays  int             `json:"totalEstimatedDays" yaml:"totalEstimatedDays"`
	TotalEstimatedHours float64         `json:"totalEstimatedHours" yaml:"totalEstimatedHours"`
	ProjectStartDate    Date            `json:"projectStartDate" yaml:"projectStartDate"`
	ProjectEndDate      Date            `json:"projectEndDate" yaml:"projectEndDate"`
	HasConflicts        bool            `json:"hasConflicts" yaml:"hasConflicts"`
	Warnings            []string        `json:"warnings" yaml:"warnings"`
}

// ScheduledTask is a task with its suggested placement
type ScheduledTask struct {
	Title              string     `json:"title" yaml:"title"`
	EstimatedHours     float64    `json:"estimatedHours" yaml:"estimatedHours"`
	DueDate            *Date      `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	Dependencies       []string   `json:"dependencies" yaml:"dependencies"`
	SuggestedStartDate Date       `json:"suggestedStartDate" yaml:"suggestedStartDate"`
	SuggestedEndDate   Date       `json:"suggestedEndDate" yaml:"suggestedEndDate"`
	Order              int        `json:"order" yaml:"order"`
	HasConflict        bool       `json:"hasDependencyConflict" yaml:"hasDependencyConflict"`
	ConflictReason     string     `json:"conflictReason,omitempty" yaml:"conflictReason,omitempty"`
	Conflicts          []Conflict `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
}

// Conflict is one due-date violation on a scheduled task
type Conflict struct {
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
}

// ValidationResponse is the outcome of a dependency-only check
type ValidationResponse struct {
	Valid            bool     `json:"valid" yaml:"valid"`
	Message          string   `json:"message" yaml:"message"`
	RecommendedOrder []string `json:"recommendedOrder,omitempty" yaml:"recommendedOrder,omitempty"`
	CyclePath        []string `json:"cyclePath,omitempty" yaml:"cyclePath,omitempty"`
}
