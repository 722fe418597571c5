package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/taskplan/internal/errors"
)

// Span attribute keys shared by the CLI and the HTTP server.
const (
	AttrCommand   = attribute.Key("command")
	AttrComponent = attribute.Key("component")
	AttrOperation = attribute.Key("operation")
	AttrTaskCount = attribute.Key("task_count")
	AttrErrorCode = attribute.Key("error.code")
)

func startSpan(ctx context.Context, tracerName, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return GetTracerProvider().Tracer(tracerName).Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// StartCommandSpan opens the root span of a CLI invocation. Callers end it.
func StartCommandSpan(ctx context.Context, cmdName string) (context.Context, trace.Span) {
	return startSpan(ctx, "commands", "command."+cmdName,
		AttrCommand.String(cmdName),
		AttrComponent.String("cli"),
	)
}

// StartScheduleSpan wraps one scheduler operation ("generate" or
// "validate") over taskCount tasks.
func StartScheduleSpan(ctx context.Context, operation string, taskCount int) (context.Context, trace.Span) {
	return startSpan(ctx, "scheduler", "schedule."+operation,
		AttrOperation.String(operation),
		AttrTaskCount.Int(taskCount),
		AttrComponent.String("scheduler"),
	)
}

// RecordSuccess sets attrs and an Ok status.
//
//	telemetry.RecordSuccess(span, attribute.Int("conflicts", 2))
func RecordSuccess(span trace.Span, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
	span.SetStatus(codes.Ok, "")
}

// RecordError marks span failed. A nil err is ignored; coded errors also
// carry their code as error.code.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	attrs := []attribute.KeyValue{attribute.Bool("error", true)}
	if code := errors.CodeOf(err); code != "" {
		attrs = append(attrs, AttrErrorCode.String(string(code)))
	}
	span.SetAttributes(attrs...)
}
