package server

import (
	"net/http"

	"github.com/felixgeelhaar/taskplan/internal/apikey"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	auth := apikey.NewMiddleware(s.deps.Auth)

	api := func(pattern string, scope string, h http.HandlerFunc) {
		guarded := auth.RequireAPIKey(auth.RequireScopes([]string{scope}, h))
		mux.Handle(pattern, s.instrument(pattern, guarded))
	}
	open := func(pattern string, h http.Handler) {
		mux.Handle(pattern, s.instrument(pattern, h))
	}

	api("POST /api/v1/projects/{projectId}/schedule", apikey.ScopeRead, s.handleSchedule)
	api("POST /api/v1/projects/validate-dependencies", apikey.ScopeRead, s.handleValidateDependencies)

	api("GET /api/v1/projects", apikey.ScopeRead, s.handleListProjects)
	api("POST /api/v1/projects", apikey.ScopeWrite, s.handleCreateProject)
	api("GET /api/v1/projects/{projectId}", apikey.ScopeRead, s.handleGetProject)
	api("DELETE /api/v1/projects/{projectId}", apikey.ScopeWrite, s.handleDeleteProject)

	api("GET /api/v1/projects/{projectId}/tasks", apikey.ScopeRead, s.handleListTasks)
	api("POST /api/v1/projects/{projectId}/tasks", apikey.ScopeWrite, s.handleCreateTask)
	api("PUT /api/v1/tasks/{taskId}", apikey.ScopeWrite, s.handleUpdateTask)
	api("DELETE /api/v1/tasks/{taskId}", apikey.ScopeWrite, s.handleDeleteTask)

	open("GET /health/live", http.HandlerFunc(s.handleLiveness))
	open("GET /health/ready", http.HandlerFunc(s.handleReadiness))
	open("GET /health/startup", http.HandlerFunc(s.handleStartup))
	open("GET /healthz", http.HandlerFunc(s.handleReadiness))
	open("GET /metrics", s.deps.MetricsHandler)

	return s.recoverer(mux)
}
