package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// CacheOperation represents the type of feature-cache operation being traced.
type CacheOperation string

const (
	// CacheOperationGet represents a cache read.
	CacheOperationGet CacheOperation = "get"
	// CacheOperationSet represents a cache write.
	CacheOperationSet CacheOperation = "set"
	// CacheOperationPurge represents a per-lawyer invalidation.
	CacheOperationPurge CacheOperation = "purge"
)

// StartCacheSpan creates a new span for a feature-cache operation.
// Returns the new context and a function to end the span.
//
// Example usage:
//
//	ctx, endSpan := tracing.StartCacheSpan(ctx, tracing.CacheOperationGet)
//	defer endSpan(err)
func StartCacheSpan(ctx context.Context, operation CacheOperation) (context.Context, func(error)) {
	tracer := otel.Tracer("lexmatch/featurecache")

	ctx, span := tracer.Start(ctx, "cache "+string(operation),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("cache.operation", string(operation)),
		),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// StartSpan creates a new span for a general operation.
// Returns the new context and a function to end the span.
//
// Example usage:
//
//	ctx, endSpan := tracing.StartSpan(ctx, "load_calibration")
//	defer endSpan(err)
func StartSpan(ctx context.Context, name string) (context.Context, func(error)) {
	tracer := otel.Tracer("lexmatch")

	ctx, span := tracer.Start(ctx, name)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// AddSpanAttributes adds attributes to the current span in context.
// No-op when no span is recording.
func AddSpanAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(attrs...)
	}
}
