// Package health provides health checking for cache instances.
//
// This package implements a generic health checking framework used to
// monitor the caches a server keeps. It provides interfaces for defining
// health checks, aggregating results from multiple checkers, and exposing
// health status via HTTP endpoints.
//
// # Core Concepts
//
// A Checker is any component that can report its health status. The Status
// type represents the health state: Healthy, Degraded, or Unhealthy.
//
// # Basic Usage
//
//	// Create a checker over a running cache
//	check := health.NewCacheChecker("property-cache", propertyCache, health.CacheCheckerConfig{
//	    MinHitRate:        0.5,
//	    MemoryBudgetBytes: 100 << 20,
//	})
//
//	// Check health
//	result := check.Check(ctx)
//	if result.Status == health.StatusUnhealthy {
//	    log.Printf("Cache critical: %s", result.Message)
//	}
//
// # Aggregating Health Checks
//
// Use Aggregator to combine multiple health checks into a single composite check:
//
//	agg := health.NewAggregator()
//	agg.Register(health.NewCacheChecker("property-cache", propertyCache))
//	agg.Register(health.NewCacheChecker("dns-cache", dnsCache))
//
//	// Check all components
//	results := agg.CheckAll(ctx)
//	overall := agg.OverallStatus(results)
//
// # HTTP Endpoints
//
// The package provides HTTP handlers for common health check patterns:
//
//	// Liveness probe (for Kubernetes)
//	http.Handle("/healthz", health.LivenessHandler())
//
//	// Readiness probe with component checks
//	http.Handle("/readyz", health.ReadinessHandler(aggregator))
//
//	// Detailed health status
//	http.Handle("/health", health.DetailedHandler(aggregator))
package health
