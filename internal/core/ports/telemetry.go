package ports

import (
	"context"
	"io"
)

// Tracer is the entry point for creating spans.
type Tracer interface {
	// Start creates a new span.
	Start(ctx context.Context, name string) (context.Context, Span)
	// EmitPlan signals that a set of targets is planned for execution.
	EmitPlan(ctx context.Context, targetNames []string)
}

// Span represents a unit of work.
type Span interface {
	io.Writer
	// End completes the span.
	End()
	// RecordError records an error for the span.
	RecordError(err error)
	// SetAttribute adds a key-value pair to the span.
	SetAttribute(key string, value any)
}

type spanContextKey struct{}

// ContextWithSpan returns a context carrying the given span.
func ContextWithSpan(ctx context.Context, span Span) context.Context {
	return context.WithValue(ctx, spanContextKey{}, span)
}

// SpanFromContext returns the span carried by the context, or nil if none.
func SpanFromContext(ctx context.Context) Span {
	span, _ := ctx.Value(spanContextKey{}).(Span)
	return span
}
