package cache

import "time"

// entry is the stored form of a single cache key. Values are kept as their
// serialized bytes (optionally compressed) so that every read decodes into
// a fresh value and callers can never mutate the cache's internal state.
type entry struct {
	data       []byte
	compressed bool

	timestamp    time.Time
	ttl          time.Duration
	hitCount     uint64
	lastAccessed time.Time

	// size is the estimated serialized size of the original value,
	// used for memory accounting.
	size int64

	// updateCount and lastUpdateInterval record the write history used
	// by the adaptive TTL calculation. lastUpdateInterval is the
	// wall-clock gap between the previous write and this one; zero means
	// this is the first write.
	updateCount        uint64
	lastUpdateInterval time.Duration

	// seq is a monotonically increasing insertion sequence number. It is
	// the deterministic tie-break for eviction and the FIFO order.
	seq uint64
}

// live reports whether the entry has not yet expired. The same predicate is
// used by lazy expiry on reads and by the background sweeper.
func (e *entry) live(now time.Time) bool {
	return !now.After(e.timestamp.Add(e.ttl))
}

// remaining returns the time until expiry. Negative once expired.
func (e *entry) remaining(now time.Time) time.Duration {
	return e.timestamp.Add(e.ttl).Sub(now)
}
