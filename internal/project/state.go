package project

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/taskplan/internal/domain"
	"github.com/felixgeelhaar/taskplan/internal/errors"
)

// state is the whole dataset shared by both store implementations.
// Slices keep insertion order, which breaks ties in listings.
type state struct {
	Projects []Project `json:"projects"`
	Tasks    []Task    `json:"tasks"`
}

func notFoundProject(id string) error {
	return errors.Wrap(errors.ErrCodeProjectNotFound, fmt.Sprintf("project not found: %s", id), ErrNotFound)
}

func notFoundTask(id string) error {
	return errors.Wrap(errors.ErrCodeTaskNotFound, fmt.Sprintf("task not found: %s", id), ErrNotFound)
}

func (s *state) projectIndex(ownerID, projectID string) int {
	for i, p := range s.Projects {
		if p.ID == projectID && p.OwnerID == ownerID {
			return i
		}
	}
	return -1
}

// taskIndex finds a task whose project belongs to ownerID.
func (s *state) taskIndex(ownerID, taskID string) int {
	for i, t := range s.Tasks {
		if t.ID != taskID {
			continue
		}
		if s.projectIndex(ownerID, t.ProjectID) < 0 {
			return -1
		}
		return i
	}
	return -1
}

func (s *state) countTasks(projectID string) int {
	n := 0
	for _, t := range s.Tasks {
		if t.ProjectID == projectID {
			n++
		}
	}
	return n
}

func (s *state) withCount(p Project) Project {
	p.TaskCount = s.countTasks(p.ID)
	return p
}

func (s *state) createProject(ownerID string, in NewProject, id string, now time.Time) (*Project, error) {
	title := strings.TrimSpace(in.Title)
	if _, err := domain.NewProjectTitle(title); err != nil {
		return nil, errors.NewProjectInvalidError(err.Error())
	}
	if err := domain.ValidateDescription(in.Description); err != nil {
		return nil, errors.NewProjectInvalidError(err.Error())
	}

	p := Project{
		ID:          id,
		OwnerID:     ownerID,
		Title:       title,
		Description: in.Description,
		CreatedAt:   now,
	}
	s.Projects = append(s.Projects, p)
	return &p, nil
}

func (s *state) listProjects(ownerID string) []Project {
	out := make([]Project, 0)
	for i := len(s.Projects) - 1; i >= 0; i-- {
		if s.Projects[i].OwnerID == ownerID {
			out = append(out, s.withCount(s.Projects[i]))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *state) getProject(ownerID, projectID string) (*Project, error) {
	i := s.projectIndex(ownerID, projectID)
	if i < 0 {
		return nil, notFoundProject(projectID)
	}
	p := s.withCount(s.Projects[i])
	return &p, nil
}

func (s *state) deleteProject(ownerID, projectID string) error {
	i := s.projectIndex(ownerID, projectID)
	if i < 0 {
		return notFoundProject(projectID)
	}
	s.Projects = append(s.Projects[:i], s.Projects[i+1:]...)

	kept := s.Tasks[:0]
	for _, t := range s.Tasks {
		if t.ProjectID != projectID {
			kept = append(kept, t)
		}
	}
	s.Tasks = kept
	return nil
}

func (s *state) createTask(ownerID, projectID string, in NewTask, id string, now time.Time) (*Task, error) {
	if s.projectIndex(ownerID, projectID) < 0 {
		return nil, notFoundProject(projectID)
	}
	title := strings.TrimSpace(in.Title)
	if _, err := domain.NewTitle(title); err != nil {
		return nil, errors.NewProjectInvalidError(err.Error())
	}

	t := Task{
		ID:        id,
		ProjectID: projectID,
		Title:     title,
		DueDate:   copyTime(in.DueDate),
		CreatedAt: now,
	}
	s.Tasks = append(s.Tasks, t)
	return &t, nil
}

func (s *state) listTasks(ownerID, projectID string) ([]Task, error) {
	if s.projectIndex(ownerID, projectID) < 0 {
		return nil, notFoundProject(projectID)
	}

	out := make([]Task, 0)
	for _, t := range s.Tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return taskLess(out[i], out[j])
	})
	return out, nil
}

// taskLess orders incomplete tasks first, then by due date with undated
// tasks ahead of dated ones, then by creation time.
func taskLess(a, b Task) bool {
	if a.IsCompleted != b.IsCompleted {
		return !a.IsCompleted
	}
	switch {
	case a.DueDate == nil && b.DueDate != nil:
		return true
	case a.DueDate != nil && b.DueDate == nil:
		return false
	case a.DueDate != nil && b.DueDate != nil && !a.DueDate.Equal(*b.DueDate):
		return a.DueDate.Before(*b.DueDate)
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

func (s *state) updateTask(ownerID, taskID string, in TaskUpdate) (*Task, error) {
	i := s.taskIndex(ownerID, taskID)
	if i < 0 {
		return nil, notFoundTask(taskID)
	}

	t := s.Tasks[i]
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if _, err := domain.NewTitle(title); err != nil {
			return nil, errors.NewProjectInvalidError(err.Error())
		}
		t.Title = title
	}
	if in.ClearDueDate {
		t.DueDate = nil
	} else if in.DueDate != nil {
		t.DueDate = copyTime(in.DueDate)
	}
	if in.IsCompleted != nil {
		t.IsCompleted = *in.IsCompleted
	}

	s.Tasks[i] = t
	return &t, nil
}

func (s *state) deleteTask(ownerID, taskID string) error {
	i := s.taskIndex(ownerID, taskID)
	if i < 0 {
		return notFoundTask(taskID)
	}
	s.Tasks = append(s.Tasks[:i], s.Tasks[i+1:]...)
	return nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
