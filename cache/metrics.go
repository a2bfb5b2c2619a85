package cache

import "time"

// Metrics is a point-in-time snapshot of the cache counters.
type Metrics struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
	Errors    uint64 `json:"errors"`

	// APICallsSaved counts upstream calls the cache avoided. It moves
	// with Hits, including negative-cache hits.
	APICallsSaved uint64 `json:"apiCallsSaved"`

	// HitRate is Hits / (Hits + Misses), zero when nothing was looked up.
	HitRate float64 `json:"hitRate"`

	// MemoryUsage is the sum of the estimated serialized sizes of all
	// live entries, in bytes.
	MemoryUsage int64 `json:"memoryUsage"`

	// TotalEntries is the current entry count, including entries that
	// have expired but not yet been swept.
	TotalEntries int `json:"totalEntries"`
}

// DetailedMetrics extends Metrics with purely observational figures about
// the age and churn of the stored entries.
type DetailedMetrics struct {
	Metrics

	// AvgHitCount is the mean hit count across current entries.
	AvgHitCount float64 `json:"avgHitCount"`

	// OldestEntryAge and NewestEntryAge measure time since write.
	OldestEntryAge time.Duration `json:"oldestEntryAge"`
	NewestEntryAge time.Duration `json:"newestEntryAge"`

	// ExpiringSoon is the number of entries expiring within five minutes.
	ExpiringSoon int `json:"expiringSoon"`
}

const expiringSoonWindow = 5 * time.Minute

// GetMetrics returns a snapshot of the cache counters.
func (c *Cache[V]) GetMetrics() Metrics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.metricsLocked()
}

func (c *Cache[V]) metricsLocked() Metrics {
	m := Metrics{
		Hits:          c.hits,
		Misses:        c.misses,
		Evictions:     c.evictions,
		Errors:        c.errs,
		APICallsSaved: c.apiCallsSaved,
		MemoryUsage:   c.memoryUsage,
		TotalEntries:  len(c.entries),
	}
	if total := m.Hits + m.Misses; total > 0 {
		m.HitRate = float64(m.Hits) / float64(total)
	}
	return m
}

// GetDetailedMetrics returns the counter snapshot plus entry age and churn
// statistics. It walks all entries and is meant for diagnostics, not hot
// paths.
func (c *Cache[V]) GetDetailedMetrics() DetailedMetrics {
	now := c.now()

	c.mu.RLock()
	defer c.mu.RUnlock()

	dm := DetailedMetrics{Metrics: c.metricsLocked()}
	if len(c.entries) == 0 {
		return dm
	}

	var totalHits uint64
	var oldest, newest time.Time
	for _, e := range c.entries {
		totalHits += e.hitCount
		if oldest.IsZero() || e.timestamp.Before(oldest) {
			oldest = e.timestamp
		}
		if newest.IsZero() || e.timestamp.After(newest) {
			newest = e.timestamp
		}
		if e.live(now) && e.remaining(now) <= expiringSoonWindow {
			dm.ExpiringSoon++
		}
	}

	dm.AvgHitCount = float64(totalHits) / float64(len(c.entries))
	dm.OldestEntryAge = now.Sub(oldest)
	dm.NewestEntryAge = now.Sub(newest)
	return dm
}
