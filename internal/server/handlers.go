package server

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/felixgeelhaar/taskplan/internal/apikey"
	"github.com/felixgeelhaar/taskplan/internal/metrics"
	"github.com/felixgeelhaar/taskplan/internal/plan"
	"github.com/felixgeelhaar/taskplan/internal/telemetry"
)

// handleSchedule handles POST /api/v1/projects/{projectId}/schedule.
//
// The project must belong to the caller. The body is a ScheduleRequest; the
// response carries an ETag over the encoded schedule.
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := apikey.OwnerFromContext(ctx)
	projectID := r.PathValue("projectId")

	if _, err := s.deps.Store.GetProject(ctx, owner, projectID); err != nil {
		s.writeError(w, r, err)
		return
	}

	var req plan.ScheduleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.deps.Metrics.RecordSchedule(metrics.ResultInvalid, 0, 0, 0)
		s.writeError(w, r, err)
		return
	}

	ctx, span := telemetry.StartScheduleSpan(ctx, "generate", len(req.Tasks))
	defer span.End()

	start := time.Now()
	resp, err := plan.Schedule(s.deps.Scheduler, &req)
	duration := time.Since(start)

	if err != nil {
		s.deps.Metrics.RecordSchedule(metrics.ResultFor(err), len(req.Tasks), 0, duration)
		telemetry.RecordError(span, err)
		s.writeError(w, r.WithContext(ctx), err)
		return
	}

	conflicts := 0
	for _, st := range resp.ScheduledTasks {
		if st.HasConflict {
			conflicts++
		}
	}

	s.deps.Metrics.RecordSchedule(metrics.ResultSuccess, len(resp.ScheduledTasks), conflicts, duration)
	telemetry.RecordSuccess(span,
		attribute.Int("conflicts", conflicts),
		attribute.Int("total_days", resp.TotalEstimatedDays),
	)
	s.deps.Logger.WithContext(ctx).Info("schedule generated",
		"project_id", projectID,
		"tasks", len(resp.ScheduledTasks),
		"conflicts", conflicts,
		"total_days", resp.TotalEstimatedDays,
		"duration_ms", duration.Milliseconds(),
	)

	if err := writeJSONWithETag(w, http.StatusOK, resp); err != nil {
		s.deps.Logger.WithContext(ctx).WithError(err).Warn("failed to write schedule response")
	}
}

// handleValidateDependencies handles POST /api/v1/projects/validate-dependencies.
// A cycle answers 400 with valid=false; an acyclic request answers 200.
func (s *Server) handleValidateDependencies(w http.ResponseWriter, r *http.Request) {
	var req plan.ScheduleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, span := telemetry.StartScheduleSpan(r.Context(), "validate", len(req.Tasks))
	defer span.End()

	resp, err := plan.CheckDependencies(s.deps.Scheduler, &req)
	if err != nil {
		telemetry.RecordError(span, err)
		s.writeError(w, r.WithContext(ctx), err)
		return
	}

	s.deps.Metrics.RecordValidation(resp.Valid)
	span.SetAttributes(attribute.Bool("valid", resp.Valid))

	status := http.StatusOK
	if !resp.Valid {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, resp)
}
