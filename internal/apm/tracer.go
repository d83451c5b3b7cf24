package apm

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span is the subset of an OTel span the business packages use.
type Span interface {
	SetAttributes(attrs ...attribute.KeyValue)
	AddEvent(name string, attrs ...attribute.KeyValue)
	// Fail records err and marks the span as failed. Cancellation is
	// recorded as an attribute, not an error status.
	Fail(err error)
	TraceID() string
	End()
}

// Tracer starts spans on a named tracer from the global provider.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer returns a Tracer backed by the global provider. Global tracers
// delegate, so a provider installed after this call is still used.
func NewTracer(name string) *Tracer {
	return &Tracer{tracer: otel.Tracer(name)}
}

// Start opens a child span of the span in ctx.
func (t *Tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, NewSpan(span)
}

// SpanFromContext wraps the span carried by ctx, a no-op span if none.
func SpanFromContext(ctx context.Context) Span {
	return NewSpan(trace.SpanFromContext(ctx))
}

type traceSpan struct {
	span trace.Span
}

// NewSpan wraps an OTel span.
func NewSpan(span trace.Span) Span {
	return &traceSpan{span}
}

func (t *traceSpan) SetAttributes(attrs ...attribute.KeyValue) {
	t.span.SetAttributes(attrs...)
}

func (t *traceSpan) AddEvent(name string, attrs ...attribute.KeyValue) {
	t.span.AddEvent(name, trace.WithAttributes(attrs...))
}

func (t *traceSpan) Fail(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		t.span.SetAttributes(attribute.Bool("context.cancelled", true))
		return
	}
	t.span.RecordError(err)
	t.span.SetStatus(codes.Error, err.Error())
}

func (t *traceSpan) TraceID() string {
	sc := t.span.SpanContext()
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

func (t *traceSpan) End() {
	t.span.End()
}
