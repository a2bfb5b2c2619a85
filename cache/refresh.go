package cache

import (
	"context"
	"time"
)

// RefreshOptions tunes a single GetWithRefresh call.
type RefreshOptions struct {
	// RefreshThreshold overrides the cache's refresh threshold: when the
	// remaining TTL drops below ttl * RefreshThreshold, a background
	// refresh is triggered while the cached value is still served.
	RefreshThreshold float64

	// SoftTTL is a stale-while-revalidate grace window. An entry that
	// expired no longer than SoftTTL ago is served immediately while a
	// background refresh runs. Zero disables stale serving.
	SoftTTL time.Duration
}

// GetWithRefresh is the composed read path: serve fresh data when possible,
// refresh in the background when an entry nears expiry or recently expired,
// and otherwise coalesce concurrent callers into a single upstream fetch.
//
// At most one upstream fetch per key is in flight at any time, no matter
// how many callers ask concurrently. On a fetch failure the key is
// negatively cached and a stale value, if one exists, is returned instead
// of the error.
func (c *Cache[V]) GetWithRefresh(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc[V], opts ...RefreshOptions) (V, error) {
	var zero V

	var ro RefreshOptions
	if len(opts) > 0 {
		ro = opts[0]
	}
	threshold := ro.RefreshThreshold
	if threshold <= 0 || threshold >= 1 {
		threshold = c.opts.RefreshThreshold
	}
	if ttl <= 0 {
		ttl = c.opts.DefaultTTL
	}

	if v, ok := c.serveCached(key, ttl, threshold, ro.SoftTTL, fetch); ok {
		return v, nil
	}

	// The negative cache is consulted before the empty store counts as a
	// miss: a key that just failed is a hit that returns absent.
	if c.negative.has(key) {
		c.mu.Lock()
		c.hits++
		c.apiCallsSaved++
		c.mu.Unlock()
		c.notify(Event{Type: EventHit, Key: key})
		return zero, ErrNegativeCached
	}

	c.mu.Lock()
	c.misses++
	c.mu.Unlock()

	if !c.opts.RequestCoalescing {
		return c.fetchAndStore(ctx, key, ttl, fetch)
	}

	// The first caller for a key runs the fetch; everyone else arriving
	// before it settles waits for the same result. The flight slot is
	// released when the fetch settles, success or failure.
	v, err, shared := c.flight.Do(key, func() (any, error) {
		val, ferr := c.fetchAndStore(ctx, key, ttl, fetch)
		return val, ferr
	})
	if shared {
		c.notify(Event{Type: EventCoalesce, Key: key})
	}
	if err != nil {
		return zero, err
	}
	return v.(V), nil
}

// serveCached tries to satisfy the call from the store: a live entry is
// served directly (with a background refresh once it is close to expiry),
// and an entry that expired within the softTTL grace window is served stale
// while a refresh runs. Returns ok=false when the caller must fetch; the
// caller accounts for the miss.
func (c *Cache[V]) serveCached(key string, ttl time.Duration, threshold float64, softTTL time.Duration, fetch FetchFunc[V]) (V, bool) {
	var zero V
	now := c.now()

	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		return zero, false
	}

	live := e.live(now)
	stale := !live && softTTL > 0 && now.Sub(e.timestamp.Add(e.ttl)) <= softTTL
	if !live && !stale {
		c.mu.Unlock()
		return zero, false
	}

	e.hitCount++
	e.lastAccessed = now
	remaining := e.remaining(now)
	data, compressed := e.data, e.compressed
	c.mu.Unlock()

	v, err := c.decodeEntry(data, compressed)
	if err != nil {
		c.mu.Lock()
		c.removeLocked(key)
		c.errs++
		c.mu.Unlock()
		c.notify(Event{Type: EventDecompressError, Key: key, Err: err})
		return zero, false
	}

	needsRefresh := stale || remaining < time.Duration(float64(ttl)*threshold)
	if needsRefresh {
		c.refreshInBackground(key, ttl, fetch)
	}

	c.mu.Lock()
	c.hits++
	c.apiCallsSaved++
	c.mu.Unlock()
	c.notify(Event{Type: EventHit, Key: key})
	return v, true
}

// fetchAndStore runs the upstream fetch and writes the result through Set.
// On failure it populates the negative cache and falls back to a stale
// cached value when one is still around; only without such a fallback does
// the error reach the caller.
func (c *Cache[V]) fetchAndStore(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc[V]) (V, error) {
	var zero V

	v, err := fetch(ctx)
	if err != nil {
		c.negative.add(key)
		c.mu.Lock()
		c.errs++
		c.mu.Unlock()
		c.notify(Event{Type: EventError, Key: key, Err: err})

		if stale, ok := c.peekStale(key); ok {
			return stale, nil
		}
		return zero, err
	}

	c.Set(ctx, key, v, ttl)
	return v, nil
}

// peekStale returns the stored value for a key regardless of expiry, without
// touching hit bookkeeping. Used as the fallback after a failed fetch.
func (c *Cache[V]) peekStale(key string) (V, bool) {
	var zero V

	c.mu.RLock()
	e, ok := c.entries[key]
	if !ok {
		c.mu.RUnlock()
		return zero, false
	}
	data, compressed := e.data, e.compressed
	c.mu.RUnlock()

	v, err := c.decodeEntry(data, compressed)
	if err != nil {
		return zero, false
	}
	return v, true
}

// refreshInBackground starts a detached refresh for a key unless one is
// already running. Failures are counted and reported as events; they never
// reach the caller that triggered the refresh.
func (c *Cache[V]) refreshInBackground(key string, ttl time.Duration, fetch FetchFunc[V]) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if _, running := c.refreshing[key]; running {
		c.mu.Unlock()
		return
	}
	c.refreshing[key] = struct{}{}
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		defer func() {
			c.mu.Lock()
			delete(c.refreshing, key)
			c.mu.Unlock()
		}()

		v, err := fetch(c.ctx)
		if err != nil {
			c.mu.Lock()
			c.errs++
			c.mu.Unlock()
			c.notify(Event{Type: EventRefreshError, Key: key, Err: err})
			return
		}
		c.Set(c.ctx, key, v, ttl)
		c.notify(Event{Type: EventRefresh, Key: key})
	}()
}
