package server

import (
	"net/http"
	"time"

	"github.com/felixgeelhaar/taskplan/internal/apikey"
	"github.com/felixgeelhaar/taskplan/internal/plan"
	"github.com/felixgeelhaar/taskplan/internal/project"
)

type projectInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type taskInput struct {
	Title   string     `json:"title"`
	DueDate *plan.Date `json:"dueDate,omitempty"`
}

// taskPatch is a partial update; absent fields are left unchanged.
type taskPatch struct {
	Title        *string    `json:"title,omitempty"`
	DueDate      *plan.Date `json:"dueDate,omitempty"`
	ClearDueDate bool       `json:"clearDueDate,omitempty"`
	IsCompleted  *bool      `json:"isCompleted,omitempty"`
}

// taskView renders due dates as calendar days.
type taskView struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"projectId"`
	Title       string     `json:"title"`
	DueDate     *plan.Date `json:"dueDate,omitempty"`
	IsCompleted bool       `json:"isCompleted"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func newTaskView(t project.Task) taskView {
	v := taskView{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt,
	}
	if t.DueDate != nil {
		d := plan.NewDate(*t.DueDate)
		v.DueDate = &d
	}
	return v
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.deps.Store.ListProjects(r.Context(), apikey.OwnerFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var in projectInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.deps.Store.CreateProject(r.Context(), apikey.OwnerFromContext(r.Context()), project.NewProject{
		Title:       in.Title,
		Description: in.Description,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/projects/"+p.ID)
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Store.GetProject(r.Context(), apikey.OwnerFromContext(r.Context()), r.PathValue("projectId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Store.DeleteProject(r.Context(), apikey.OwnerFromContext(r.Context()), r.PathValue("projectId")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.deps.Store.ListTasks(r.Context(), apikey.OwnerFromContext(r.Context()), r.PathValue("projectId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, newTaskView(t))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var in taskInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	t, err := s.deps.Store.CreateTask(r.Context(), apikey.OwnerFromContext(r.Context()), r.PathValue("projectId"), project.NewTask{
		Title:   in.Title,
		DueDate: in.DueDate.Ptr(),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTaskView(*t))
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var in taskPatch
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	t, err := s.deps.Store.UpdateTask(r.Context(), apikey.OwnerFromContext(r.Context()), r.PathValue("taskId"), project.TaskUpdate{
		Title:        in.Title,
		DueDate:      in.DueDate.Ptr(),
		ClearDueDate: in.ClearDueDate,
		IsCompleted:  in.IsCompleted,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTaskView(*t))
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Store.DeleteTask(r.Context(), apikey.OwnerFromContext(r.Context()), r.PathValue("taskId")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
