package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// A Span is a single traced operation.
type Span struct {
	recorder *Recorder
	span     trace.Span
}

// StartSpan starts a new span and records the start of an operation.
func (r *Recorder) StartSpan(
	ctx context.Context,
	name string,
	attrs ...Attr,
) (context.Context, *Span) {
	ctx, s := r.tracer.Start(
		ctx,
		name,
		trace.WithAttributes(asAttrKeyValues(attrs)...),
	)

	r.operationCount(ctx, 1, String("operation", name))
	r.operationsInFlightCount(ctx, 1)

	return ctx, &Span{r, s}
}

// SetAttributes sets attributes on the span.
func (s *Span) SetAttributes(attrs ...Attr) {
	s.span.SetAttributes(asAttrKeyValues(attrs)...)
}

// End completes the span and records the end of the operation.
func (s *Span) End() {
	s.recorder.operationsInFlightCount(context.Background(), -1)
	s.span.End()
}
