package project

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Option configures a store.
type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
}

func defaultOptions() options {
	return options{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// WithClock overrides the clock used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator overrides how project and task IDs are minted.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

// MemoryStore implements Store in memory.
//
// This is suitable for single-instance deployments and tests; data is lost on exit.
type MemoryStore struct {
	mu   sync.RWMutex
	data state
	opts options
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &MemoryStore{opts: o}
}

// CreateProject adds a project.
func (m *MemoryStore) CreateProject(_ context.Context, ownerID string, in NewProject) (*Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.createProject(ownerID, in, m.opts.newID(), m.opts.now())
}

// ListProjects returns the owner's projects, newest first.
func (m *MemoryStore) ListProjects(_ context.Context, ownerID string) ([]Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.listProjects(ownerID), nil
}

// GetProject returns a single project.
func (m *MemoryStore) GetProject(_ context.Context, ownerID, projectID string) (*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.getProject(ownerID, projectID)
}

// DeleteProject removes a project and its tasks.
func (m *MemoryStore) DeleteProject(_ context.Context, ownerID, projectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.deleteProject(ownerID, projectID)
}

// CreateTask adds a task to a project.
func (m *MemoryStore) CreateTask(_ context.Context, ownerID, projectID string, in NewTask) (*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.createTask(ownerID, projectID, in, m.opts.newID(), m.opts.now())
}

// ListTasks returns a project's tasks in display order.
func (m *MemoryStore) ListTasks(_ context.Context, ownerID, projectID string) ([]Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.listTasks(ownerID, projectID)
}

// UpdateTask applies a partial update.
func (m *MemoryStore) UpdateTask(_ context.Context, ownerID, taskID string, in TaskUpdate) (*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.updateTask(ownerID, taskID, in)
}

// DeleteTask removes a task.
func (m *MemoryStore) DeleteTask(_ context.Context, ownerID, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.deleteTask(ownerID, taskID)
}

// Ping always succeeds.
func (m *MemoryStore) Ping(context.Context) error {
	return nil
}
