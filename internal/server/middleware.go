package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/taskplan/internal/errors"
	"github.com/felixgeelhaar/taskplan/internal/telemetry"
)

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// routeLabel drops the method from a mux pattern so "GET /x" becomes "/x".
func routeLabel(pattern string) string {
	if _, path, ok := strings.Cut(pattern, " "); ok {
		return path
	}
	return pattern
}

// instrument wraps h with a server span, one access log line and the HTTP
// metrics, all labelled with the route pattern rather than the raw path.
func (s *Server) instrument(pattern string, h http.Handler) http.Handler {
	route := routeLabel(pattern)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ctx, span := telemetry.GetTracerProvider().Tracer("http").Start(r.Context(), r.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route),
			))
		defer span.End()

		rec := &statusRecorder{ResponseWriter: w}
		h.ServeHTTP(rec, r.WithContext(ctx))
		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		duration := time.Since(start)
		span.SetAttributes(attribute.Int("http.status_code", rec.status))
		s.deps.Metrics.RecordHTTPRequest(route, r.Method, rec.status, duration)
		s.deps.Logger.WithContext(ctx).Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"route", route,
			"status", rec.status,
			"duration_ms", duration.Milliseconds(),
		)
	})
}

// recoverer turns a handler panic into a 500 response.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				err := errors.New(errors.ErrCodeInternal, fmt.Sprintf("panic: %v", rec))
				s.writeError(w, r, err)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
