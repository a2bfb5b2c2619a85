package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/acedergren/alecs-mcp-server-akamai-sub006/cache"
)

// CacheMeta identifies a cache instance for telemetry purposes.
type CacheMeta struct {
	Name    string // Cache instance name, e.g. "akamai-api" (required)
	Policy  string // Eviction policy label (optional)
	Version string // Service or schema version (optional)
}

// SpanName returns the deterministic span name for upstream fetches from
// this cache. Format: cache.fetch.<name>
func (m CacheMeta) SpanName() string {
	return "cache.fetch." + m.Name
}

// Tracer wraps OpenTelemetry tracing with cache-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: StartSpan must honor cancellation/deadlines and return ctx.Err() when canceled.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for an upstream fetch of the given key.
	StartSpan(ctx context.Context, meta CacheMeta, key string) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with cache metadata and the key as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta CacheMeta, key string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("cache.name", meta.Name),
		attribute.String("cache.key", key),
		attribute.Bool("cache.fetch.error", false), // Updated in EndSpan on error
	}

	if meta.Policy != "" {
		attrs = append(attrs, attribute.String("cache.policy", meta.Policy))
	}
	if meta.Version != "" {
		attrs = append(attrs, attribute.String("cache.version", meta.Version))
	}

	ctx, span := t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)

	return ctx, span
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("cache.fetch.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// TraceFetch wraps a fetch function so every invocation runs inside a span.
// The wrapped function is what callers hand to cache.GetWithRefresh.
func TraceFetch[V any](t Tracer, meta CacheMeta, key string, fetch cache.FetchFunc[V]) cache.FetchFunc[V] {
	return func(ctx context.Context) (V, error) {
		ctx, span := t.StartSpan(ctx, meta, key)
		v, err := fetch(ctx)
		t.EndSpan(span, err)
		return v, err
	}
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// NewNoopTracer creates a no-op tracer.
func NewNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta CacheMeta, key string) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
