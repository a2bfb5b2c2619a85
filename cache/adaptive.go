package cache

import "time"

// Bounds for adaptive TTL adjustment. An adjusted TTL never drops below
// adaptiveMinTTL and never exceeds adaptiveMaxTTL.
const (
	adaptiveMinTTL = 60 * time.Second
	adaptiveMaxTTL = time.Hour
)

// adjustTTL derives the effective TTL for a key from the interval observed
// between its two most recent writes.
//
// Keys rewritten more than twice per TTL window get a TTL of twice their
// update interval (floored at one minute), so hot keys stay fresh. Keys
// rewritten less than once per two TTL windows get double the base TTL
// (capped at one hour), saving upstream calls for stable data. Everything
// in between keeps the base TTL, as does a key with no write history.
func adjustTTL(base, interval time.Duration) time.Duration {
	if interval <= 0 {
		return base
	}

	switch {
	case interval < base/2:
		ttl := interval * 2
		if ttl < adaptiveMinTTL {
			ttl = adaptiveMinTTL
		}
		return ttl

	case interval > base*2:
		ttl := base * 2
		if ttl > adaptiveMaxTTL {
			ttl = adaptiveMaxTTL
		}
		return ttl
	}

	return base
}
