package server

import (
	"net/http"

	"github.com/felixgeelhaar/taskplan/internal/health"
)

// writeProbeResponse writes result with 200, or unhealthyStatus when the
// probe reports unhealthy.
func writeProbeResponse(w http.ResponseWriter, result *health.ProbeResult, unhealthyStatus int) {
	status := http.StatusOK
	if result.Status == health.StatusUnhealthy {
		status = unhealthyStatus
	}
	writeJSON(w, status, result)
}

// handleLiveness handles GET /health/live. It stays 200 during shutdown.
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	writeProbeResponse(w, s.deps.Probes.CheckLiveness(r.Context()), http.StatusOK)
}

// handleReadiness handles GET /health/ready and GET /healthz.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	writeProbeResponse(w, s.deps.Probes.CheckReadiness(r.Context()), http.StatusServiceUnavailable)
}

// handleStartup handles GET /health/startup.
func (s *Server) handleStartup(w http.ResponseWriter, r *http.Request) {
	writeProbeResponse(w, s.deps.Probes.CheckStartup(r.Context()), http.StatusServiceUnavailable)
}
