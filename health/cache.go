package health

import (
	"context"
	"fmt"

	"github.com/acedergren/alecs-mcp-server-akamai-sub006/cache"
)

// CacheStats is the slice of the cache surface the checker reads.
// Every cache instantiation satisfies it regardless of value type.
type CacheStats interface {
	GetMetrics() cache.Metrics
}

// CacheCheckerConfig configures the cache health checker.
type CacheCheckerConfig struct {
	// MinHitRate is the hit rate below which the cache is reported
	// degraded. Value should be between 0 and 1. Default: 0.5 (50%)
	MinHitRate float64

	// MinSamples is the number of lookups required before the hit rate
	// is judged at all. A cold cache is healthy, not degraded.
	// Default: 100
	MinSamples uint64

	// MemoryBudgetBytes is the memory budget the usage thresholds are
	// measured against. Zero disables the memory checks.
	MemoryBudgetBytes int64

	// WarningThreshold is the fraction of the memory budget that
	// triggers degraded status. Default: 0.8 (80%)
	WarningThreshold float64

	// CriticalThreshold is the fraction of the memory budget that
	// triggers unhealthy status. Default: 0.95 (95%)
	CriticalThreshold float64
}

// CacheChecker reports the health of a running cache from its counters.
// Memory pressure against the budget dominates the verdict; a poor hit
// rate on its own only degrades.
type CacheChecker struct {
	name   string
	stats  CacheStats
	config CacheCheckerConfig
}

var _ InfoChecker = (*CacheChecker)(nil)

// NewCacheChecker creates a health checker over the given cache.
func NewCacheChecker(name string, stats CacheStats, config ...CacheCheckerConfig) *CacheChecker {
	cfg := CacheCheckerConfig{}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.MinHitRate <= 0 || cfg.MinHitRate >= 1 {
		cfg.MinHitRate = 0.5
	}
	if cfg.MinSamples == 0 {
		cfg.MinSamples = 100
	}
	if cfg.WarningThreshold <= 0 || cfg.WarningThreshold >= 1 {
		cfg.WarningThreshold = 0.8
	}
	if cfg.CriticalThreshold <= 0 || cfg.CriticalThreshold >= 1 {
		cfg.CriticalThreshold = 0.95
	}
	if cfg.CriticalThreshold < cfg.WarningThreshold {
		cfg.CriticalThreshold = cfg.WarningThreshold + 0.1
		if cfg.CriticalThreshold > 1 {
			cfg.CriticalThreshold = 0.99
		}
	}

	return &CacheChecker{name: name, stats: stats, config: cfg}
}

// Name returns the name of this checker.
func (c *CacheChecker) Name() string {
	return c.name
}

// Check performs the cache health check.
func (c *CacheChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	m := c.stats.GetMetrics()
	details := cacheDetails(m)

	if budget := c.config.MemoryBudgetBytes; budget > 0 {
		usageRatio := float64(m.MemoryUsage) / float64(budget)
		details["memory_budget_bytes"] = budget
		details["memory_usage_percent"] = usageRatio * 100

		if usageRatio >= c.config.CriticalThreshold {
			return Unhealthy(
				fmt.Sprintf("cache memory critical: %.1f%% of budget", usageRatio*100),
				ErrCheckFailed,
			).WithDetails(details)
		}
		if usageRatio >= c.config.WarningThreshold {
			return Degraded(
				fmt.Sprintf("cache memory high: %.1f%% of budget", usageRatio*100),
			).WithDetails(details)
		}
	}

	if samples := m.Hits + m.Misses; samples >= c.config.MinSamples && m.HitRate < c.config.MinHitRate {
		return Degraded(
			fmt.Sprintf("cache hit rate low: %.1f%% over %d lookups", m.HitRate*100, samples),
		).WithDetails(details)
	}

	return Healthy(
		fmt.Sprintf("cache ok: %d entries, %.1f%% hit rate", m.TotalEntries, m.HitRate*100),
	).WithDetails(details)
}

// Info returns the current cache counters.
func (c *CacheChecker) Info(ctx context.Context) (map[string]any, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return cacheDetails(c.stats.GetMetrics()), nil
}

func cacheDetails(m cache.Metrics) map[string]any {
	return map[string]any{
		"hits":            m.Hits,
		"misses":          m.Misses,
		"hit_rate":        m.HitRate,
		"entries":         m.TotalEntries,
		"memory_bytes":    m.MemoryUsage,
		"evictions":       m.Evictions,
		"errors":          m.Errors,
		"api_calls_saved": m.APICallsSaved,
	}
}
