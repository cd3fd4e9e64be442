package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanExerciseCheck = "exercise.check"
	SpanExerciseSkip  = "exercise.skip"
	SpanLessonStart   = "lesson.start"
	SpanLessonFinish  = "lesson.finish"
	SpanPrefixRepo    = "repo."
)

// Attribute keys.
const (
	AttrExerciseID     = "exercise.id"
	AttrValidationKind = "exercise.validation"
	AttrScore          = "exercise.score"
	AttrPassed         = "exercise.passed"
	AttrMistakes       = "exercise.mistakes"
	AttrModuleID       = "lesson.module_id"
	AttrLessonID       = "lesson.id"
	AttrUserID         = "user.id"
	AttrSessionID      = "session.id"
	AttrRepoOperation  = "repo.operation"
)

// Start opens an internal span.
func Start(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if tracer == nil {
		tracer = Noop()
	}
	return tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// End records err on span, if any, and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
