package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/felixgeelhaar/taskplan/internal/apikey"
	"github.com/felixgeelhaar/taskplan/internal/health"
	"github.com/felixgeelhaar/taskplan/internal/log"
	"github.com/felixgeelhaar/taskplan/internal/metrics"
	"github.com/felixgeelhaar/taskplan/internal/plan"
	"github.com/felixgeelhaar/taskplan/internal/project"
	"github.com/felixgeelhaar/taskplan/internal/scheduler"
)

const (
	aliceKey    = apikey.SecretPrefix + "alice-secret-0001"
	bobKey      = apikey.SecretPrefix + "bob-secret-00002"
	readOnlyKey = apikey.SecretPrefix + "reader-secret-03"
)

type testEnv struct {
	server *Server
	store  *project.MemoryStore
	probes *health.ProbeManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	reg := apikey.NewRegistry(apikey.WithBcryptCost(bcrypt.MinCost))
	for owner, secret := range map[string]string{"alice": aliceKey, "bob": bobKey} {
		_, err := reg.Register(owner, secret, apikey.ScopeRead, apikey.ScopeWrite)
		require.NoError(t, err)
	}
	_, err := reg.Register("alice", readOnlyKey, apikey.ScopeRead)
	require.NoError(t, err)

	promReg, m := metrics.NewRegistry()
	env := &testEnv{
		store:  project.NewMemoryStore(project.WithClock(func() time.Time { return now })),
		probes: health.NewProbeManager("test"),
	}
	env.server = NewServer(Config{Address: "127.0.0.1:0"}, Deps{
		Scheduler:      scheduler.NewService(scheduler.WithClock(func() time.Time { return now })),
		Store:          env.store,
		Auth:           reg,
		Probes:         env.probes,
		Metrics:        m,
		MetricsHandler: metrics.HandlerFor(promReg, promhttp.HandlerOpts{}),
		Logger:         log.Discard(),
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path, key string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = strings.NewReader(string(data))
	}

	req := httptest.NewRequest(method, path, r)
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) createProject(t *testing.T, key, title string) project.Project {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/projects", key, projectInput{Title: title})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var p project.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func scheduleBody() map[string]any {
	return map[string]any{
		"startDate":      "2025-01-06",
		"dailyWorkHours": 8,
		"tasks": []map[string]any{
			{"title": "build", "estimatedHours": 8, "dependencies": []string{"design"}},
			{"title": "design", "estimatedHours": 4, "dependencies": []string{}},
		},
	}
}

func TestNewServerDefaults(t *testing.T) {
	s := NewServer(Config{Address: ":8080"}, Deps{Probes: health.NewProbeManager("1.0.0")})

	if s.shutdownTimeout != 30*time.Second {
		t.Errorf("default shutdown timeout: expected 30s, got %v", s.shutdownTimeout)
	}
	if s.httpServer.ReadTimeout != 10*time.Second {
		t.Errorf("default read timeout: expected 10s, got %v", s.httpServer.ReadTimeout)
	}
	if s.httpServer.WriteTimeout != 10*time.Second {
		t.Errorf("default write timeout: expected 10s, got %v", s.httpServer.WriteTimeout)
	}
	if s.httpServer.IdleTimeout != 60*time.Second {
		t.Errorf("default idle timeout: expected 60s, got %v", s.httpServer.IdleTimeout)
	}
	if s.deps.Metrics == nil || s.deps.MetricsHandler == nil || s.deps.Logger == nil {
		t.Error("expected metrics and logger defaults to be filled in")
	}
}

func TestSchedule(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProject(t, aliceKey, "Launch")

	rec := env.do(t, http.MethodPost, "/api/v1/projects/"+p.ID+"/schedule", aliceKey, scheduleBody())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[plan.ScheduleResponse](t, rec)
	assert.Equal(t, []string{"design", "build"}, resp.RecommendedOrder)
	require.Len(t, resp.ScheduledTasks, 2)
	assert.Equal(t, "design", resp.ScheduledTasks[0].Title)
	assert.Equal(t, 1, resp.ScheduledTasks[0].Order)
	assert.InDelta(t, 12.0, resp.TotalEstimatedHours, 0.001)
	assert.False(t, resp.HasConflicts)
	assert.Equal(t, "2025-01-06", resp.ProjectStartDate.String())

	etag := rec.Header().Get("ETag")
	assert.True(t, strings.HasPrefix(etag, `"`) && strings.HasSuffix(etag, `"`), "etag %q", etag)

	again := env.do(t, http.MethodPost, "/api/v1/projects/"+p.ID+"/schedule", aliceKey, scheduleBody())
	assert.Equal(t, etag, again.Header().Get("ETag"), "identical requests should share an ETag")
}

func TestSchedule_Cycle(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProject(t, aliceKey, "Loop")

	body := map[string]any{
		"tasks": []map[string]any{
			{"title": "a", "estimatedHours": 1, "dependencies": []string{"b"}},
			{"title": "b", "estimatedHours": 1, "dependencies": []string{"a"}},
		},
	}
	rec := env.do(t, http.MethodPost, "/api/v1/projects/"+p.ID+"/schedule", aliceKey, body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decode[errorResponse](t, rec)
	assert.Equal(t, "SCHED-001", resp.Code)
	assert.Contains(t, resp.Message, "circular dependency")
}

func TestSchedule_InvalidRequestListsEveryProblem(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProject(t, aliceKey, "Broken")

	body := map[string]any{
		"tasks": []map[string]any{
			{"title": "a", "estimatedHours": 0, "dependencies": []string{}},
			{"title": "b", "estimatedHours": 2, "dependencies": []string{"missing"}},
		},
	}
	rec := env.do(t, http.MethodPost, "/api/v1/projects/"+p.ID+"/schedule", aliceKey, body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decode[errorResponse](t, rec)
	assert.Equal(t, "REQ-001", resp.Code)
	assert.Equal(t, "invalid schedule request", resp.Message)
	require.Len(t, resp.Details, 2)
	assert.Contains(t, resp.Details[1], "missing")
}

func TestSchedule_BadBodies(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProject(t, aliceKey, "Bodies")
	path := "/api/v1/projects/" + p.ID + "/schedule"

	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", "", "request body is empty"},
		{"malformed", `{"tasks": [`, "malformed JSON"},
		{"unknown field", `{"tasks": [], "priority": 1}`, "malformed JSON"},
		{"trailing data", `{"tasks": []} {}`, "single JSON object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, path, aliceKey, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			resp := decode[errorResponse](t, rec)
			assert.Equal(t, "REQ-001", resp.Code)
			assert.Contains(t, resp.Message, tt.want)
		})
	}
}

func TestSchedule_OtherOwnersProjectIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProject(t, aliceKey, "Private")

	rec := env.do(t, http.MethodPost, "/api/v1/projects/"+p.ID+"/schedule", bobKey, scheduleBody())
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "PROJECT-001", decode[errorResponse](t, rec).Code)
}

func TestValidateDependencies(t *testing.T) {
	env := newTestEnv(t)
	path := "/api/v1/projects/validate-dependencies"

	t.Run("valid", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, path, readOnlyKey, scheduleBody())
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		resp := decode[plan.ValidationResponse](t, rec)
		assert.True(t, resp.Valid)
		assert.Equal(t, []string{"design", "build"}, resp.RecommendedOrder)
	})

	t.Run("cycle", func(t *testing.T) {
		body := map[string]any{
			"tasks": []map[string]any{
				{"title": "a", "estimatedHours": 1, "dependencies": []string{"b"}},
				{"title": "b", "estimatedHours": 1, "dependencies": []string{"a"}},
			},
		}
		rec := env.do(t, http.MethodPost, path, aliceKey, body)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decode[plan.ValidationResponse](t, rec)
		assert.False(t, resp.Valid)
		assert.NotEmpty(t, resp.CyclePath)
	})

	t.Run("empty", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, path, aliceKey, map[string]any{"tasks": []any{}})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "REQ-001", decode[errorResponse](t, rec).Code)
	})
}

func TestProjectLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/projects", aliceKey, projectInput{Title: "Website", Description: "relaunch"})
	require.Equal(t, http.StatusCreated, rec.Code)
	p := decode[project.Project](t, rec)
	assert.Equal(t, "/api/v1/projects/"+p.ID, rec.Header().Get("Location"))
	assert.Equal(t, "alice", p.OwnerID)

	rec = env.do(t, http.MethodGet, "/api/v1/projects", aliceKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]project.Project](t, rec), 1)

	rec = env.do(t, http.MethodGet, "/api/v1/projects", bobKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]project.Project](t, rec))

	rec = env.do(t, http.MethodGet, "/api/v1/projects/"+p.ID, aliceKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Website", decode[project.Project](t, rec).Title)

	rec = env.do(t, http.MethodDelete, "/api/v1/projects/"+p.ID, aliceKey, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/projects/"+p.ID, aliceKey, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateProject_Invalid(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/projects", aliceKey, projectInput{Title: "   "})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "PROJECT-003", decode[errorResponse](t, rec).Code)
}

func TestTaskLifecycle(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProject(t, aliceKey, "Garden")
	tasksPath := "/api/v1/projects/" + p.ID + "/tasks"

	rec := env.do(t, http.MethodPost, tasksPath, aliceKey, `{"title": "plant", "dueDate": "2025-03-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	task := decode[taskView](t, rec)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2025-03-01", task.DueDate.String())
	assert.False(t, task.IsCompleted)

	rec = env.do(t, http.MethodGet, tasksPath, aliceKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]taskView](t, rec), 1)

	rec = env.do(t, http.MethodPut, "/api/v1/tasks/"+task.ID, aliceKey, `{"isCompleted": true, "clearDueDate": true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[taskView](t, rec)
	assert.True(t, updated.IsCompleted)
	assert.Nil(t, updated.DueDate)
	assert.Equal(t, "plant", updated.Title)

	rec = env.do(t, http.MethodPut, "/api/v1/tasks/"+task.ID, bobKey, `{"isCompleted": false}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/tasks/"+task.ID, aliceKey, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/tasks/"+task.ID, aliceKey, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "PROJECT-002", decode[errorResponse](t, rec).Code)
}

func TestAuthentication(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"unknown key", "Bearer " + apikey.SecretPrefix + "nobody-knows-me", http.StatusUnauthorized},
		{"valid key", "Bearer " + aliceKey, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			env.server.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestReadOnlyKeyCannotWrite(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/projects", readOnlyKey, projectInput{Title: "Nope"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/projects", readOnlyKey, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProbes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, health.StatusHealthy, decode[health.ProbeResult](t, rec).Status)

	rec = env.do(t, http.MethodGet, "/health/startup", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	env.probes.MarkInitialized()
	rec = env.do(t, http.MethodGet, "/health/startup", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	env.probes.AddChecker(health.NewStoreChecker(env.store))
	rec = env.do(t, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, decode[health.ProbeResult](t, rec).Checks, "project-store")

	env.probes.AddChecker(health.NewCheckFunc("broken", func(context.Context) *health.Result {
		return health.Unhealthy("down")
	}))
	rec = env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.createProject(t, aliceKey, "Counted")

	rec := env.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "taskplan_http_requests_total")
	assert.Contains(t, body, `route="/api/v1/projects"`)
}

func TestRecovererAnswersGeneric500(t *testing.T) {
	env := newTestEnv(t)
	h := env.server.recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decode[errorResponse](t, rec)
	assert.Equal(t, "INTERNAL-001", resp.Code)
	assert.Equal(t, "internal server error", resp.Message)
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/api/v1/tasks/{taskId}", routeLabel("PUT /api/v1/tasks/{taskId}"))
	assert.Equal(t, "/metrics", routeLabel("/metrics"))
}

func TestServeAndShutdown(t *testing.T) {
	env := newTestEnv(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- env.server.Serve(ln) }()

	url := "http://" + ln.Addr().String() + "/health/startup"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, env.server.Shutdown(context.Background()))
	assert.True(t, env.server.IsShuttingDown())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}

	rec := env.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
