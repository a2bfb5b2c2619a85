package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records cache activity on OpenTelemetry instruments.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordHit counts a cache hit.
	RecordHit(ctx context.Context, meta CacheMeta)

	// RecordMiss counts a cache miss.
	RecordMiss(ctx context.Context, meta CacheMeta)

	// RecordEviction counts an evicted entry.
	RecordEviction(ctx context.Context, meta CacheMeta)

	// RecordExpired counts entries purged by the sweeper.
	RecordExpired(ctx context.Context, meta CacheMeta, count int)

	// RecordError counts an internal cache error at the given stage
	// (encode, compress, persist, fetch, ...).
	RecordError(ctx context.Context, meta CacheMeta, stage string)

	// RecordCoalesced counts a caller that shared another caller's fetch.
	RecordCoalesced(ctx context.Context, meta CacheMeta)

	// RecordRefresh counts a background refresh and its outcome.
	RecordRefresh(ctx context.Context, meta CacheMeta, err error)

	// RecordFetch records an upstream fetch with duration and error status.
	RecordFetch(ctx context.Context, meta CacheMeta, duration time.Duration, err error)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter         metric.Meter
	hits          metric.Int64Counter
	misses        metric.Int64Counter
	evictions     metric.Int64Counter
	expired       metric.Int64Counter
	errorCount    metric.Int64Counter
	coalesced     metric.Int64Counter
	refreshes     metric.Int64Counter
	fetchDuration metric.Float64Histogram
}

// NewMetrics creates a Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	return newMetrics(meter)
}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	hits, err := meter.Int64Counter(
		"cache.hits",
		metric.WithDescription("Cache hits, including negative-cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	misses, err := meter.Int64Counter(
		"cache.misses",
		metric.WithDescription("Cache misses, including lazy expiries"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, err
	}

	evictions, err := meter.Int64Counter(
		"cache.evictions",
		metric.WithDescription("Entries evicted by the eviction policy"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	expired, err := meter.Int64Counter(
		"cache.expired",
		metric.WithDescription("Entries purged by the background sweeper"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"cache.errors",
		metric.WithDescription("Internal cache errors by stage"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	coalesced, err := meter.Int64Counter(
		"cache.coalesced",
		metric.WithDescription("Callers that shared another caller's in-flight fetch"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	refreshes, err := meter.Int64Counter(
		"cache.refreshes",
		metric.WithDescription("Background refreshes by outcome"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		return nil, err
	}

	fetchDuration, err := meter.Float64Histogram(
		"cache.fetch.duration_ms",
		metric.WithDescription("Upstream fetch duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:         meter,
		hits:          hits,
		misses:        misses,
		evictions:     evictions,
		expired:       expired,
		errorCount:    errorCount,
		coalesced:     coalesced,
		refreshes:     refreshes,
		fetchDuration: fetchDuration,
	}, nil
}

func (m *metricsImpl) attrs(meta CacheMeta, extra ...attribute.KeyValue) metric.MeasurementOption {
	kvs := []attribute.KeyValue{
		attribute.String("cache.name", meta.Name),
	}
	if meta.Policy != "" {
		kvs = append(kvs, attribute.String("cache.policy", meta.Policy))
	}
	kvs = append(kvs, extra...)
	return metric.WithAttributes(kvs...)
}

func (m *metricsImpl) RecordHit(ctx context.Context, meta CacheMeta) {
	m.hits.Add(ctx, 1, m.attrs(meta))
}

func (m *metricsImpl) RecordMiss(ctx context.Context, meta CacheMeta) {
	m.misses.Add(ctx, 1, m.attrs(meta))
}

func (m *metricsImpl) RecordEviction(ctx context.Context, meta CacheMeta) {
	m.evictions.Add(ctx, 1, m.attrs(meta))
}

func (m *metricsImpl) RecordExpired(ctx context.Context, meta CacheMeta, count int) {
	if count <= 0 {
		return
	}
	m.expired.Add(ctx, int64(count), m.attrs(meta))
}

func (m *metricsImpl) RecordError(ctx context.Context, meta CacheMeta, stage string) {
	m.errorCount.Add(ctx, 1, m.attrs(meta, attribute.String("cache.stage", stage)))
}

func (m *metricsImpl) RecordCoalesced(ctx context.Context, meta CacheMeta) {
	m.coalesced.Add(ctx, 1, m.attrs(meta))
}

func (m *metricsImpl) RecordRefresh(ctx context.Context, meta CacheMeta, err error) {
	m.refreshes.Add(ctx, 1, m.attrs(meta, attribute.Bool("cache.refresh.error", err != nil)))
}

func (m *metricsImpl) RecordFetch(ctx context.Context, meta CacheMeta, duration time.Duration, err error) {
	opt := m.attrs(meta, attribute.Bool("cache.fetch.error", err != nil))
	m.fetchDuration.Record(ctx, float64(duration.Milliseconds()), opt)
}

// StatsFunc reports the current entry count and memory usage of a cache.
// cache.Cache.GetMetrics adapts directly.
type StatsFunc func() (entries int64, memoryBytes int64)

// RegisterGauges registers observable gauges for entry count and memory
// usage, sampled from stats at collection time. The returned registration
// should be unregistered when the cache is closed.
func RegisterGauges(meter metric.Meter, meta CacheMeta, stats StatsFunc) (metric.Registration, error) {
	entries, err := meter.Int64ObservableGauge(
		"cache.entries",
		metric.WithDescription("Current number of cached entries"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	memory, err := meter.Int64ObservableGauge(
		"cache.memory_bytes",
		metric.WithDescription("Estimated memory used by cached entries"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	kvs := []attribute.KeyValue{attribute.String("cache.name", meta.Name)}
	if meta.Policy != "" {
		kvs = append(kvs, attribute.String("cache.policy", meta.Policy))
	}
	opt := metric.WithAttributes(kvs...)

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		n, mem := stats()
		o.ObserveInt64(entries, n, opt)
		o.ObserveInt64(memory, mem, opt)
		return nil
	}, entries, memory)
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (noopMetrics) RecordHit(context.Context, CacheMeta)                         {}
func (noopMetrics) RecordMiss(context.Context, CacheMeta)                        {}
func (noopMetrics) RecordEviction(context.Context, CacheMeta)                    {}
func (noopMetrics) RecordExpired(context.Context, CacheMeta, int)                {}
func (noopMetrics) RecordError(context.Context, CacheMeta, string)               {}
func (noopMetrics) RecordCoalesced(context.Context, CacheMeta)                   {}
func (noopMetrics) RecordRefresh(context.Context, CacheMeta, error)              {}
func (noopMetrics) RecordFetch(context.Context, CacheMeta, time.Duration, error) {}

// NopMetrics returns a Metrics that discards everything.
func NopMetrics() Metrics { return noopMetrics{} }
