package cache

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// FetchFunc loads a value from upstream when the cache cannot serve it.
// The cache imposes no timeout; wrap the function if one is needed.
type FetchFunc[V any] func(ctx context.Context) (V, error)

// WarmEntry is one key-value pair for WarmCache. A zero TTL uses the
// cache's default.
type WarmEntry[V any] struct {
	Key   string
	Value V
	TTL   time.Duration
}

// Cache is a typed in-process cache for Akamai API lookups.
//
// Contract:
// - Concurrency: all methods are safe for concurrent use.
// - Lifecycle: New never starts goroutines; Start begins the background
//   sweeper and loads any persisted snapshot; Close is idempotent, stops
//   all background work, and waits for it to finish.
// - Errors: Get never returns an error; Set reports failure as false.
//   Only GetWithRefresh can surface an upstream error, and only when no
//   stale value is available as a fallback.
type Cache[V any] struct {
	opts   Options
	codec  *codec
	victim victimFunc

	mu          sync.RWMutex
	entries     map[string]*entry
	nextSeq     uint64
	memoryUsage int64

	hits          uint64
	misses        uint64
	evictions     uint64
	errs          uint64
	apiCallsSaved uint64

	negative *negativeCache

	// flight coalesces concurrent fetches for the same key: the first
	// caller runs the fetch, later callers wait for its result.
	flight singleflight.Group

	// refreshing suppresses duplicate background refreshes per key.
	refreshing map[string]struct{}

	// timeNow is swapped out by tests to control expiry.
	timeNow func() time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	closed  bool
}

// New creates a cache with the given options. No timers or goroutines are
// started; call Start for the background sweeper and persistence loading.
func New[V any](opts Options) (*Cache[V], error) {
	opts = opts.withDefaults()
	if !opts.EvictionPolicy.valid() {
		return nil, ErrInvalidPolicy
	}

	cd, err := newCodec(opts.EnableCompression, opts.CompressionThreshold)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Cache[V]{
		opts:       opts,
		codec:      cd,
		victim:     victimFor(opts.EvictionPolicy),
		entries:    make(map[string]*entry),
		negative:   newNegativeCache(opts.NegativeTTL),
		refreshing: make(map[string]struct{}),
		timeNow:    time.Now,
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// MustNew is like New but panics on invalid options.
func MustNew[V any](opts Options) *Cache[V] {
	c, err := New[V](opts)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Cache[V]) now() time.Time {
	return c.timeNow()
}

// Start loads the persisted snapshot (when persistence is enabled) and
// starts the background sweeper. It is idempotent and a no-op after Close.
func (c *Cache[V]) Start() {
	c.mu.Lock()
	if c.started || c.closed {
		c.mu.Unlock()
		return
	}
	c.started = true
	sweep := c.opts.SweepInterval > 0
	if sweep {
		c.wg.Add(1)
	}
	c.mu.Unlock()

	if c.opts.EnablePersistence {
		c.loadSnapshot()
	}
	if sweep {
		go c.sweepLoop()
	}
}

// Close stops the sweeper and any in-flight background refreshes, persists
// a final snapshot when persistence is enabled, and releases the codec.
// Safe to call multiple times.
func (c *Cache[V]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	// Cancel outside the lock so shutdown never blocks readers.
	c.cancel()
	c.wg.Wait()

	if c.opts.EnablePersistence {
		c.saveSnapshot()
	}
	c.codec.close()
}

// Get retrieves a value. It returns the zero value and false on a miss, on
// an expired entry (removed lazily), on a negatively cached key, and on a
// decode failure (reported through metrics and events, never the caller).
func (c *Cache[V]) Get(_ context.Context, key string) (V, bool) {
	var zero V

	// A key known to be failing counts as a hit that returns absent:
	// the point is to not go upstream again.
	if c.negative.has(key) {
		c.mu.Lock()
		c.hits++
		c.apiCallsSaved++
		c.mu.Unlock()
		c.notify(Event{Type: EventHit, Key: key})
		return zero, false
	}

	now := c.now()

	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		c.misses++
		c.mu.Unlock()
		return zero, false
	}
	if !e.live(now) {
		c.removeLocked(key)
		c.misses++
		c.mu.Unlock()
		return zero, false
	}
	e.hitCount++
	e.lastAccessed = now
	data, compressed := e.data, e.compressed
	c.mu.Unlock()

	v, err := c.decodeEntry(data, compressed)
	if err != nil {
		// A value that cannot be decoded is useless; drop it and
		// treat the read as a miss.
		c.mu.Lock()
		c.removeLocked(key)
		c.misses++
		c.errs++
		c.mu.Unlock()
		c.notify(Event{Type: EventDecompressError, Key: key, Err: err})
		return zero, false
	}

	c.mu.Lock()
	c.hits++
	c.apiCallsSaved++
	c.mu.Unlock()
	c.notify(Event{Type: EventHit, Key: key})
	return v, true
}

// Set stores a value. The TTL defaults to the cache's DefaultTTL and is
// adjusted by the adaptive TTL calculation when enabled. Set absorbs all
// internal failures: it returns false and increments the error counter
// instead of panicking or returning an error.
func (c *Cache[V]) Set(_ context.Context, key string, value V, ttl ...time.Duration) bool {
	if err := ValidateKey(key); err != nil {
		c.recordError(key, err)
		return false
	}

	base := c.opts.DefaultTTL
	if len(ttl) > 0 && ttl[0] > 0 {
		base = ttl[0]
	}

	raw, size, err := encodeValue(value)
	if err != nil {
		c.recordError(key, err)
		return false
	}
	data, compressed := c.codec.pack(raw)

	now := c.now()
	var events []Event

	c.mu.Lock()
	prev := c.entries[key]

	effective := base
	var updateCount uint64 = 1
	var interval time.Duration
	if prev != nil {
		interval = now.Sub(prev.timestamp)
		updateCount = prev.updateCount + 1
		if c.opts.AdaptiveTTL {
			// The adjustment uses the interval recorded by the
			// previous write, i.e. the history as of that write.
			effective = adjustTTL(base, prev.lastUpdateInterval)
		}
	}

	// At the entry-count bound a new key evicts exactly one victim.
	if prev == nil && len(c.entries) >= c.opts.MaxSize {
		if victim := c.evictLocked(key); victim != "" {
			events = append(events, Event{Type: EventEvict, Key: victim})
		}
	}

	if prev != nil {
		c.memoryUsage -= prev.size
	}
	c.nextSeq++
	c.entries[key] = &entry{
		data:               data,
		compressed:         compressed,
		timestamp:          now,
		ttl:                effective,
		lastAccessed:       now,
		size:               size,
		updateCount:        updateCount,
		lastUpdateInterval: interval,
		seq:                c.nextSeq,
	}
	c.memoryUsage += size

	// Under a memory budget, evict until the store fits. The entry just
	// written is spared: evicting it would make Set a no-op. The scan
	// returns "" once the spared entry is all that remains.
	if budget := int64(c.opts.MaxMemoryMB) * 1024 * 1024; budget > 0 {
		for c.memoryUsage > budget {
			victim := c.evictLocked(key)
			if victim == "" {
				break
			}
			events = append(events, Event{Type: EventEvict, Key: victim})
		}
	}
	c.mu.Unlock()

	c.negative.remove(key)

	if compressed {
		c.notify(Event{Type: EventCompressed, Key: key})
	}
	for _, ev := range events {
		c.notify(ev)
	}
	c.notify(Event{Type: EventSet, Key: key})
	return true
}

// Del removes the given keys and returns how many were present.
func (c *Cache[V]) Del(keys ...string) int {
	removed := 0

	c.mu.Lock()
	for _, key := range keys {
		if c.removeLocked(key) {
			removed++
		}
	}
	c.mu.Unlock()

	for _, key := range keys {
		c.notify(Event{Type: EventDelete, Key: key})
	}
	return removed
}

// TTL returns the remaining lifetime of a key in whole seconds: -2 when the
// key is absent, -1 when it exists but has expired, otherwise the seconds
// until expiry.
func (c *Cache[V]) TTL(key string) int {
	now := c.now()

	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return -2
	}
	if !e.live(now) {
		return -1
	}
	return int(e.remaining(now).Seconds())
}

// ScanAndDelete removes all live keys matching a glob pattern, where '*'
// matches any run of characters, and returns the number removed. The
// pattern is compiled once per call, not per key.
func (c *Cache[V]) ScanAndDelete(pattern string) int {
	matcher := compileGlob(pattern)
	now := c.now()

	var matched []string
	c.mu.Lock()
	for key, e := range c.entries {
		if e.live(now) && matcher.MatchString(key) {
			matched = append(matched, key)
		}
	}
	for _, key := range matched {
		c.removeLocked(key)
	}
	c.mu.Unlock()

	for _, key := range matched {
		c.notify(Event{Type: EventDelete, Key: key})
	}
	return len(matched)
}

// compileGlob turns a '*'-wildcard glob into an anchored regexp.
func compileGlob(pattern string) *regexp.Regexp {
	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile("^" + strings.Join(parts, ".*") + "$")
}

// FlushAll drops every entry and clears the negative cache. Counters are
// preserved.
func (c *Cache[V]) FlushAll() {
	c.mu.Lock()
	c.entries = make(map[string]*entry)
	c.memoryUsage = 0
	c.mu.Unlock()

	c.negative.purge()
	c.notify(Event{Type: EventFlush})
}

// WarmCache seeds the cache with the given entries, typically at startup
// before traffic arrives.
func (c *Cache[V]) WarmCache(ctx context.Context, entries []WarmEntry[V]) {
	for _, we := range entries {
		if we.TTL > 0 {
			c.Set(ctx, we.Key, we.Value, we.TTL)
		} else {
			c.Set(ctx, we.Key, we.Value)
		}
	}
}

// Len returns the current entry count, including not-yet-swept expired
// entries.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictLocked removes exactly one victim chosen by the eviction policy and
// returns its key, or "" when nothing besides spare is left to evict.
// Caller holds the lock.
func (c *Cache[V]) evictLocked(spare string) string {
	victim := c.victim(c.entries, spare)
	if victim == "" {
		return ""
	}
	c.removeLocked(victim)
	c.evictions++
	return victim
}

// removeLocked deletes an entry and keeps the memory accounting (the sum of
// entry sizes) in step. Caller holds the lock. All entry removal goes
// through here.
func (c *Cache[V]) removeLocked(key string) bool {
	e, ok := c.entries[key]
	if !ok {
		return false
	}
	delete(c.entries, key)
	c.memoryUsage -= e.size
	return true
}

// decodeEntry turns stored bytes back into a value. Every read decodes into
// a fresh value, so callers never alias cache-internal state.
func (c *Cache[V]) decodeEntry(data []byte, compressed bool) (V, error) {
	raw, err := c.codec.unpack(data, compressed)
	if err != nil {
		var zero V
		return zero, err
	}
	return decodeValue[V](raw)
}

func (c *Cache[V]) recordError(key string, err error) {
	c.mu.Lock()
	c.errs++
	c.mu.Unlock()
	c.notify(Event{Type: EventError, Key: key, Err: err})
}

func (c *Cache[V]) notify(ev Event) {
	if c.opts.Observer != nil {
		c.opts.Observer.OnEvent(ev)
	}
}
