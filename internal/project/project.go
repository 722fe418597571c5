// Package project stores projects and their tasks per owner.
//
// Two Store implementations are provided: MemoryStore for tests and
// single-process use, and FileStore which persists a JSON document on disk.
// Access to another owner's data fails exactly like access to missing data.
package project

import (
	"context"
	stderrors "errors"
	"time"
)

// ErrNotFound is matched by every not-found error a Store returns.
var ErrNotFound = stderrors.New("not found")

// Project groups tasks under one owner.
type Project struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	TaskCount   int       `json:"taskCount"`
}

// Task is a stored work item inside a project.
type Task struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"projectId"`
	Title       string     `json:"title"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	IsCompleted bool       `json:"isCompleted"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// NewProject is the input for CreateProject.
type NewProject struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// NewTask is the input for CreateTask.
type NewTask struct {
	Title   string     `json:"title"`
	DueDate *time.Time `json:"dueDate,omitempty"`
}

// TaskUpdate carries the fields to change; nil fields are left alone.
type TaskUpdate struct {
	Title        *string    `json:"title,omitempty"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	ClearDueDate bool       `json:"clearDueDate,omitempty"`
	IsCompleted  *bool      `json:"isCompleted,omitempty"`
}

// Store defines project and task persistence.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// CreateProject adds a project owned by ownerID.
	CreateProject(ctx context.Context, ownerID string, in NewProject) (*Project, error)

	// ListProjects returns the owner's projects, newest first.
	ListProjects(ctx context.Context, ownerID string) ([]Project, error)

	// GetProject returns one of the owner's projects.
	GetProject(ctx context.Context, ownerID, projectID string) (*Project, error)

	// DeleteProject removes a project and all of its tasks.
	DeleteProject(ctx context.Context, ownerID, projectID string) error

	// CreateTask adds a task to one of the owner's projects.
	CreateTask(ctx context.Context, ownerID, projectID string, in NewTask) (*Task, error)

	// ListTasks returns a project's tasks: incomplete first, then by due date
	// with undated tasks first, then by creation time.
	ListTasks(ctx context.Context, ownerID, projectID string) ([]Task, error)

	// UpdateTask applies a partial update to one of the owner's tasks.
	UpdateTask(ctx context.Context, ownerID, taskID string, in TaskUpdate) (*Task, error)

	// DeleteTask removes one of the owner's tasks.
	DeleteTask(ctx context.Context, ownerID, taskID string) error

	// Ping reports whether the store can serve requests.
	Ping(ctx context.Context) error
}
