package log

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/taskplan/internal/errors"
)

// Logger is a slog.Logger that knows how to flatten coded errors and
// attach trace IDs.
type Logger struct {
	*slog.Logger
}

// New builds a logger from config.
func New(config Config) *Logger {
	opts := &slog.HandlerOptions{
		Level:     config.Level.ToSlogLevel(),
		AddSource: config.AddSource,
	}

	w := config.Output.Writer()
	var handler slog.Handler = slog.NewJSONHandler(w, opts)
	if config.Format == FormatText {
		handler = slog.NewTextHandler(w, opts)
	}

	l := slog.New(handler)
	if config.ServiceName != "" {
		l = l.With("service", config.ServiceName, "version", config.ServiceVersion)
	}
	return &Logger{Logger: l}
}

// Default logs JSON at INFO to stderr.
func Default() *Logger {
	return New(DefaultConfig())
}

// Discard drops everything. Tests use it.
func Discard() *Logger {
	return New(Config{Level: LevelError, Format: FormatText, Output: OutputDiscard()})
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

func (l *Logger) WithGroup(name string) *Logger {
	return &Logger{Logger: l.Logger.WithGroup(name)}
}

// WithError attaches err. A coded error anywhere in the chain contributes
// error_code, suggestions, docs_url and cause next to its message.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}

	te, ok := errors.As(err)
	if !ok {
		return l.With("error", err.Error())
	}

	args := []any{"error_code", string(te.Code), "error", te.Message}
	if len(te.Suggestions) > 0 {
		args = append(args, "suggestions", te.Suggestions)
	}
	if te.DocsURL != "" {
		args = append(args, "docs_url", te.DocsURL)
	}
	if te.Cause != nil {
		args = append(args, "cause", te.Cause.Error())
	}
	return l.With(args...)
}

// WithContext adds trace_id and span_id when ctx carries a valid span.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return l
	}
	return l.With("trace_id", sc.TraceID().String(), "span_id", sc.SpanID().String())
}

func (l *Logger) Enabled(ctx context.Context, level Level) bool {
	return l.Logger.Enabled(ctx, level.ToSlogLevel())
}
