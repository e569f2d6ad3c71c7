package fsm

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	tracerName   = "fsm"
	spanDrain    = "fsm.drain"
	spanDispatch = "fsm.dispatch"
	spanCommit   = "fsm.commit"
)

var noopTracer = noop.NewTracerProvider().Tracer(tracerName) //nolint:gochecknoglobals

// startSpan opens a span when tracing is on, otherwise a no-op one.
// The caller is responsible for calling span.End().
//
//nolint:spancheck // Span lifecycle managed by caller
func (i *Instance[S, E]) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	tracer := noopTracer
	if i.def.opts.tracing {
		tracer = i.def.opts.tracer()
	}

	ctx, span := tracer.Start(ctx, name)
	span.SetAttributes(
		attribute.String("fsm.machine", i.def.name),
		attribute.String("fsm.instance", i.idString),
	)

	return ctx, span
}

// endSpan records err on the span, if any, and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("fsm.error_kind", KindOf(err).String()))
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End()
}

func valueAttr(key string, v any) attribute.KeyValue {
	if v == nil {
		return attribute.String(key, "")
	}

	return attribute.String(key, fmt.Sprint(v))
}
