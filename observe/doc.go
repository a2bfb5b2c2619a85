// Package observe provides observability for the cache engine.
//
// It is a pure instrumentation layer: structured JSON logging, OpenTelemetry
// metrics and traces for cache activity, and a bridge that maps cache events
// onto the otel instruments. The engine never depends on this package; wire
// the bridge in through cache.Options.Observer.
package observe
