package project

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskplan/internal/errors"
)

// testClock advances one minute per call.
func testClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Minute)
		return now
	}
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// stores runs fn against every Store implementation.
func stores(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryStore(WithClock(testClock()), WithIDGenerator(sequentialIDs())))
	})
	t.Run("file", func(t *testing.T) {
		fs, err := NewFileStore(filepath.Join(t.TempDir(), "data", "store.json"),
			WithClock(testClock()), WithIDGenerator(sequentialIDs()))
		require.NoError(t, err)
		fn(t, fs)
	})
}

func day(s string) *time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &d
}

func TestStore_ProjectLifecycle(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		first, err := s.CreateProject(ctx, "alice", NewProject{Title: "  Website  ", Description: "relaunch"})
		require.NoError(t, err)
		assert.Equal(t, "Website", first.Title)
		assert.Equal(t, "alice", first.OwnerID)
		assert.NotEmpty(t, first.ID)

		second, err := s.CreateProject(ctx, "alice", NewProject{Title: "Mobile app"})
		require.NoError(t, err)

		_, err = s.CreateProject(ctx, "bob", NewProject{Title: "Bob's"})
		require.NoError(t, err)

		list, err := s.ListProjects(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second.ID, list[0].ID, "newest first")
		assert.Equal(t, first.ID, list[1].ID)

		got, err := s.GetProject(ctx, "alice", first.ID)
		require.NoError(t, err)
		assert.Equal(t, "relaunch", got.Description)

		require.NoError(t, s.DeleteProject(ctx, "alice", first.ID))
		_, err = s.GetProject(ctx, "alice", first.ID)
		assert.True(t, stderrors.Is(err, ErrNotFound))
		assert.Equal(t, errors.ErrCodeProjectNotFound, errors.CodeOf(err))
	})
}

func TestStore_ProjectValidation(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		_, err := s.CreateProject(ctx, "alice", NewProject{Title: "ab"})
		assert.Equal(t, errors.ErrCodeProjectInvalid, errors.CodeOf(err))

		_, err = s.CreateProject(ctx, "alice", NewProject{Title: "Valid", Description: strings.Repeat("x", 501)})
		assert.Equal(t, errors.ErrCodeProjectInvalid, errors.CodeOf(err))

		list, err := s.ListProjects(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestStore_OwnershipIsolation(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		p, err := s.CreateProject(ctx, "alice", NewProject{Title: "Private"})
		require.NoError(t, err)
		task, err := s.CreateTask(ctx, "alice", p.ID, NewTask{Title: "Secret"})
		require.NoError(t, err)

		_, err = s.GetProject(ctx, "mallory", p.ID)
		assert.True(t, stderrors.Is(err, ErrNotFound))

		_, err = s.ListTasks(ctx, "mallory", p.ID)
		assert.True(t, stderrors.Is(err, ErrNotFound))

		_, err = s.CreateTask(ctx, "mallory", p.ID, NewTask{Title: "Intrude"})
		assert.True(t, stderrors.Is(err, ErrNotFound))

		done := true
		_, err = s.UpdateTask(ctx, "mallory", task.ID, TaskUpdate{IsCompleted: &done})
		assert.Equal(t, errors.ErrCodeTaskNotFound, errors.CodeOf(err))

		assert.True(t, stderrors.Is(s.DeleteTask(ctx, "mallory", task.ID), ErrNotFound))
		assert.True(t, stderrors.Is(s.DeleteProject(ctx, "mallory", p.ID), ErrNotFound))

		tasks, err := s.ListTasks(ctx, "alice", p.ID)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.False(t, tasks[0].IsCompleted)
	})
}

func TestStore_TaskOrderingAndCounts(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		p, err := s.CreateProject(ctx, "alice", NewProject{Title: "Launch"})
		require.NoError(t, err)

		mk := func(title string, due *time.Time) *Task {
			task, err := s.CreateTask(ctx, "alice", p.ID, NewTask{Title: title, DueDate: due})
			require.NoError(t, err)
			return task
		}
		undated := mk("undated", nil)
		late := mk("late", day("2025-03-01"))
		early := mk("early", day("2025-02-01"))
		finished := mk("finished", day("2025-01-15"))
		undated2 := mk("undated later", nil)

		done := true
		_, err = s.UpdateTask(ctx, "alice", finished.ID, TaskUpdate{IsCompleted: &done})
		require.NoError(t, err)

		tasks, err := s.ListTasks(ctx, "alice", p.ID)
		require.NoError(t, err)

		var titles []string
		for _, task := range tasks {
			titles = append(titles, task.Title)
		}
		assert.Equal(t, []string{undated.Title, undated2.Title, early.Title, late.Title, finished.Title}, titles)

		got, err := s.GetProject(ctx, "alice", p.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, got.TaskCount)

		require.NoError(t, s.DeleteProject(ctx, "alice", p.ID))
		_, err = s.UpdateTask(ctx, "alice", early.ID, TaskUpdate{IsCompleted: &done})
		assert.True(t, stderrors.Is(err, ErrNotFound), "tasks are deleted with their project")
	})
}

func TestStore_UpdateTask(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		p, err := s.CreateProject(ctx, "alice", NewProject{Title: "Launch"})
		require.NoError(t, err)
		task, err := s.CreateTask(ctx, "alice", p.ID, NewTask{Title: "Draft", DueDate: day("2025-04-01")})
		require.NoError(t, err)

		title := "Final draft"
		updated, err := s.UpdateTask(ctx, "alice", task.ID, TaskUpdate{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "Final draft", updated.Title)
		require.NotNil(t, updated.DueDate)

		updated, err = s.UpdateTask(ctx, "alice", task.ID, TaskUpdate{ClearDueDate: true})
		require.NoError(t, err)
		assert.Nil(t, updated.DueDate)

		blank := " "
		_, err = s.UpdateTask(ctx, "alice", task.ID, TaskUpdate{Title: &blank})
		assert.Equal(t, errors.ErrCodeProjectInvalid, errors.CodeOf(err))

		require.NoError(t, s.DeleteTask(ctx, "alice", task.ID))
		tasks, err := s.ListTasks(ctx, "alice", p.ID)
		require.NoError(t, err)
		assert.Empty(t, tasks)

		assert.NoError(t, s.Ping(ctx))
	})
}

func TestFileStore_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.json")

	fs, err := NewFileStore(path)
	require.NoError(t, err)
	p, err := fs.CreateProject(ctx, "alice", NewProject{Title: "Durable"})
	require.NoError(t, err)
	_, err = fs.CreateTask(ctx, "alice", p.ID, NewTask{Title: "Survive restart"})
	require.NoError(t, err)

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, path, reopened.Path())

	got, err := reopened.GetProject(ctx, "alice", p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Durable", got.Title)
	assert.Equal(t, 1, got.TaskCount)
}

func TestFileStore_CancelledContext(t *testing.T) {
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = fs.ListProjects(ctx, "alice")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	p, err := s.CreateProject(ctx, "alice", NewProject{Title: "Busy"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = s.CreateTask(ctx, "alice", p.ID, NewTask{Title: fmt.Sprintf("task %d", i)})
			_, _ = s.ListTasks(ctx, "alice", p.ID)
		}(i)
	}
	wg.Wait()

	got, err := s.GetProject(ctx, "alice", p.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.TaskCount)
}
