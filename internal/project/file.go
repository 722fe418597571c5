package project

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/felixgeelhaar/taskplan/internal/errors"
)

// FileStore implements Store on top of a single JSON document.
//
// Every call reads the document; writes go to a temp file that is renamed
// over the original so a crash never leaves a truncated file.
type FileStore struct {
	path string
	mu   sync.RWMutex
	opts options
}

// NewFileStore creates a file-backed store, creating the parent directory if needed.
func NewFileStore(path string, opts ...Option) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDirectoryFailed, fmt.Sprintf("failed to create %s", filepath.Dir(path)), err)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &FileStore{path: path, opts: o}, nil
}

// Path returns the backing file.
func (f *FileStore) Path() string {
	return f.path
}

// CreateProject adds a project.
func (f *FileStore) CreateProject(ctx context.Context, ownerID string, in NewProject) (*Project, error) {
	var out *Project
	err := f.update(ctx, func(s *state) error {
		p, err := s.createProject(ownerID, in, f.opts.newID(), f.opts.now())
		out = p
		return err
	})
	return out, err
}

// ListProjects returns the owner's projects, newest first.
func (f *FileStore) ListProjects(ctx context.Context, ownerID string) ([]Project, error) {
	s, err := f.view(ctx)
	if err != nil {
		return nil, err
	}
	return s.listProjects(ownerID), nil
}

// GetProject returns a single project.
func (f *FileStore) GetProject(ctx context.Context, ownerID, projectID string) (*Project, error) {
	s, err := f.view(ctx)
	if err != nil {
		return nil, err
	}
	return s.getProject(ownerID, projectID)
}

// DeleteProject removes a project and its tasks.
func (f *FileStore) DeleteProject(ctx context.Context, ownerID, projectID string) error {
	return f.update(ctx, func(s *state) error {
		return s.deleteProject(ownerID, projectID)
	})
}

// CreateTask adds a task to a project.
func (f *FileStore) CreateTask(ctx context.Context, ownerID, projectID string, in NewTask) (*Task, error) {
	var out *Task
	err := f.update(ctx, func(s *state) error {
		t, err := s.createTask(ownerID, projectID, in, f.opts.newID(), f.opts.now())
		out = t
		return err
	})
	return out, err
}

// ListTasks returns a project's tasks in display order.
func (f *FileStore) ListTasks(ctx context.Context, ownerID, projectID string) ([]Task, error) {
	s, err := f.view(ctx)
	if err != nil {
		return nil, err
	}
	return s.listTasks(ownerID, projectID)
}

// UpdateTask applies a partial update.
func (f *FileStore) UpdateTask(ctx context.Context, ownerID, taskID string, in TaskUpdate) (*Task, error) {
	var out *Task
	err := f.update(ctx, func(s *state) error {
		t, err := s.updateTask(ownerID, taskID, in)
		out = t
		return err
	})
	return out, err
}

// DeleteTask removes a task.
func (f *FileStore) DeleteTask(ctx context.Context, ownerID, taskID string) error {
	return f.update(ctx, func(s *state) error {
		return s.deleteTask(ownerID, taskID)
	})
}

// Ping checks that the document is readable.
func (f *FileStore) Ping(ctx context.Context) error {
	_, err := f.view(ctx)
	return err
}

func (f *FileStore) view(ctx context.Context) (*state, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.load()
}

// update runs fn against the current document and persists it when fn succeeds.
func (f *FileStore) update(ctx context.Context, fn func(*state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	s, err := f.load()
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		return err
	}
	return f.save(s)
}

func (f *FileStore) load() (*state, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return &state{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("failed to read %s", f.path), err)
	}
	if len(data) == 0 {
		return &state{}, nil
	}

	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.NewFileUnmarshalError(f.path, "JSON", err)
	}
	return &s, nil
}

func (f *FileStore) save(s *state) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileMarshal, "failed to encode store", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to create temp file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeFileWriteFailed, fmt.Sprintf("failed to write %s", tmpName), err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeFileWriteFailed, fmt.Sprintf("failed to close %s", tmpName), err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeFileWriteFailed, fmt.Sprintf("failed to replace %s", f.path), err)
	}
	return nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FileStore)(nil)
)
