package observe

import (
	"context"
	"time"

	"github.com/acedergren/alecs-mcp-server-akamai-sub006/cache"
)

// Bridge maps cache events onto the otel instruments and the structured
// logger. It implements cache.Observer, so a cache stays decoupled from
// telemetry: wire it in through cache.Options.Observer.
//
// Misses are not emitted as events and therefore not counted here; use
// RegisterGauges and cache.GetMetrics for the full picture.
//
// Contract:
//   - Concurrency: OnEvent is safe for concurrent use.
//   - Blocking: OnEvent only touches non-blocking instruments and the logger.
//   - Errors: OnEvent never panics; unknown event types are ignored.
type Bridge struct {
	meta    CacheMeta
	metrics Metrics
	logger  Logger
}

// NewBridge creates a Bridge for one cache instance. A nil metrics or logger
// is replaced with a no-op implementation.
func NewBridge(meta CacheMeta, metrics Metrics, logger Logger) *Bridge {
	if metrics == nil {
		metrics = NopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Bridge{
		meta:    meta,
		metrics: metrics,
		logger:  logger.WithCache(meta),
	}
}

// BridgeFromObserver creates a Bridge backed by an Observer's meter and
// logger. This is the common wiring path.
func BridgeFromObserver(meta CacheMeta, obs Observer) (*Bridge, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	if meta.Name == "" {
		return nil, ErrMissingCacheName
	}
	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewBridge(meta, metrics, obs.Logger()), nil
}

var _ cache.Observer = (*Bridge)(nil)

// OnEvent dispatches one cache event. Error-flavored events are logged at
// error level; routine traffic is logged at debug so production log volume
// stays proportional to problems, not throughput.
func (b *Bridge) OnEvent(ev cache.Event) {
	ctx := context.Background()

	switch ev.Type {
	case cache.EventHit:
		b.metrics.RecordHit(ctx, b.meta)

	case cache.EventEvict:
		b.metrics.RecordEviction(ctx, b.meta)
		b.logger.Debug(ctx, "entry evicted", Field{Key: "key", Value: ev.Key})

	case cache.EventCleanup:
		b.metrics.RecordExpired(ctx, b.meta, ev.Count)
		b.logger.Debug(ctx, "expired entries purged", Field{Key: "count", Value: ev.Count})

	case cache.EventCoalesce:
		b.metrics.RecordCoalesced(ctx, b.meta)

	case cache.EventRefresh:
		b.metrics.RecordRefresh(ctx, b.meta, nil)
		b.logger.Debug(ctx, "background refresh completed", Field{Key: "key", Value: ev.Key})

	case cache.EventRefreshError:
		b.metrics.RecordRefresh(ctx, b.meta, ev.Err)
		b.logger.Error(ctx, "background refresh failed",
			Field{Key: "key", Value: ev.Key},
			Field{Key: "error", Value: errString(ev.Err)},
		)

	case cache.EventError:
		b.metrics.RecordError(ctx, b.meta, "fetch")
		b.logger.Error(ctx, "cache operation failed",
			Field{Key: "key", Value: ev.Key},
			Field{Key: "error", Value: errString(ev.Err)},
		)

	case cache.EventCompressError:
		b.metrics.RecordError(ctx, b.meta, "compress")
		b.logger.Error(ctx, "compression failed",
			Field{Key: "key", Value: ev.Key},
			Field{Key: "error", Value: errString(ev.Err)},
		)

	case cache.EventDecompressError:
		b.metrics.RecordError(ctx, b.meta, "decompress")
		b.logger.Error(ctx, "decompression failed, entry dropped",
			Field{Key: "key", Value: ev.Key},
			Field{Key: "error", Value: errString(ev.Err)},
		)

	case cache.EventSaveError:
		b.metrics.RecordError(ctx, b.meta, "persist")
		b.logger.Error(ctx, "snapshot save failed",
			Field{Key: "error", Value: errString(ev.Err)},
		)

	case cache.EventLoadError:
		b.metrics.RecordError(ctx, b.meta, "persist")
		b.logger.Error(ctx, "snapshot load failed",
			Field{Key: "error", Value: errString(ev.Err)},
		)

	case cache.EventSaved:
		b.logger.Info(ctx, "snapshot saved", Field{Key: "count", Value: ev.Count})

	case cache.EventLoaded:
		b.logger.Info(ctx, "snapshot loaded", Field{Key: "count", Value: ev.Count})

	case cache.EventSet:
		b.logger.Debug(ctx, "entry stored", Field{Key: "key", Value: ev.Key})

	case cache.EventDelete:
		b.logger.Debug(ctx, "entry deleted", Field{Key: "key", Value: ev.Key})

	case cache.EventCompressed:
		b.logger.Debug(ctx, "entry compressed", Field{Key: "key", Value: ev.Key})

	case cache.EventFlush:
		b.logger.Info(ctx, "cache flushed")
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// InstrumentFetch wraps a fetch function with a span and a fetch-duration
// measurement. The wrapped function is what callers hand to
// cache.GetWithRefresh when they want per-fetch telemetry.
func InstrumentFetch[V any](t Tracer, m Metrics, meta CacheMeta, key string, fetch cache.FetchFunc[V]) cache.FetchFunc[V] {
	if t == nil {
		t = NewNoopTracer()
	}
	if m == nil {
		m = NopMetrics()
	}
	traced := TraceFetch(t, meta, key, fetch)
	return func(ctx context.Context) (V, error) {
		start := time.Now()
		v, err := traced(ctx)
		m.RecordFetch(ctx, meta, time.Since(start), err)
		return v, err
	}
}
