package cache

import "time"

// EvictionPolicy selects the victim strategy used when the cache is over
// its entry or memory budget. The policy is fixed per cache instance.
type EvictionPolicy string

const (
	// LRU evicts the entry with the oldest last access time.
	LRU EvictionPolicy = "LRU"
	// LFU evicts the entry with the smallest hit count.
	LFU EvictionPolicy = "LFU"
	// FIFO evicts the oldest-inserted entry regardless of access.
	FIFO EvictionPolicy = "FIFO"
)

func (p EvictionPolicy) valid() bool {
	switch p {
	case LRU, LFU, FIFO:
		return true
	}
	return false
}

// Options configures a Cache. Every field has an independent default;
// use DefaultOptions as the starting point and override what you need.
type Options struct {
	// MaxSize is the maximum number of entries. When a new key would push
	// the store past this bound, one entry is evicted first.
	// Default: 1000
	MaxSize int

	// MaxMemoryMB is the memory budget in megabytes, accounted from the
	// estimated serialized size of each entry. Inserts evict repeatedly
	// until the store fits. Zero disables the budget.
	// Default: 100
	MaxMemoryMB int

	// DefaultTTL is used when Set is called without an explicit TTL.
	// Default: 5 minutes
	DefaultTTL time.Duration

	// EvictionPolicy selects LRU, LFU, or FIFO victim selection.
	// Default: LRU
	EvictionPolicy EvictionPolicy

	// EnableCompression compresses values whose serialized form is at
	// least CompressionThreshold bytes. The compressed form is kept only
	// if it is at least 20% smaller than the original.
	// Off in the zero value; DefaultOptions enables it.
	EnableCompression bool

	// CompressionThreshold is the minimum serialized size in bytes before
	// compression is attempted.
	// Default: 10240 (10 KB)
	CompressionThreshold int

	// RefreshThreshold is the fraction of an entry's TTL below which
	// GetWithRefresh triggers a background refresh while still serving
	// the cached value. Must be in (0, 1).
	// Default: 0.2
	RefreshThreshold float64

	// AdaptiveTTL derives the effective TTL of a key from the interval
	// between its writes: frequently rewritten keys get shorter TTLs,
	// rarely rewritten keys get longer ones.
	// Off in the zero value; DefaultOptions enables it.
	AdaptiveTTL bool

	// RequestCoalescing merges concurrent GetWithRefresh calls for the
	// same key into a single upstream fetch.
	// Off in the zero value; DefaultOptions enables it.
	RequestCoalescing bool

	// NegativeTTL is how long a key stays in the negative cache after a
	// failed fetch, suppressing repeat upstream calls.
	// Default: 60 seconds
	NegativeTTL time.Duration

	// SweepInterval is the period of the background sweeper that purges
	// expired entries (and persists the store when enabled). Zero
	// disables the sweeper; lazy expiry on reads still applies.
	// Default: 60 seconds
	SweepInterval time.Duration

	// EnablePersistence saves live, uncompressed, size-bounded entries to
	// PersistencePath on each sweep and at Close, and loads them on Start.
	// Default: false
	EnablePersistence bool

	// PersistencePath is the snapshot file location.
	// Default: "cache-snapshot.json"
	PersistencePath string

	// Observer receives cache events (hit, set, evict, ...). Events are
	// informational only and never affect cache behavior. May be nil.
	Observer Observer
}

// DefaultOptions returns the options used by New when a field is left at
// its zero value, with compression, adaptive TTL, and coalescing enabled.
func DefaultOptions() Options {
	return Options{
		MaxSize:              1000,
		MaxMemoryMB:          100,
		DefaultTTL:           5 * time.Minute,
		EvictionPolicy:       LRU,
		EnableCompression:    true,
		CompressionThreshold: 10 * 1024,
		RefreshThreshold:     0.2,
		AdaptiveTTL:          true,
		RequestCoalescing:    true,
		NegativeTTL:          60 * time.Second,
		SweepInterval:        60 * time.Second,
		PersistencePath:      "cache-snapshot.json",
	}
}

// withDefaults fills zero-valued numeric and string fields. Boolean
// features are taken as given; start from DefaultOptions to get them
// enabled.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MaxSize <= 0 {
		o.MaxSize = def.MaxSize
	}
	if o.MaxMemoryMB < 0 {
		o.MaxMemoryMB = 0
	}
	if o.DefaultTTL <= 0 {
		o.DefaultTTL = def.DefaultTTL
	}
	if o.EvictionPolicy == "" {
		o.EvictionPolicy = def.EvictionPolicy
	}
	if o.CompressionThreshold <= 0 {
		o.CompressionThreshold = def.CompressionThreshold
	}
	if o.RefreshThreshold <= 0 || o.RefreshThreshold >= 1 {
		o.RefreshThreshold = def.RefreshThreshold
	}
	if o.NegativeTTL <= 0 {
		o.NegativeTTL = def.NegativeTTL
	}
	if o.SweepInterval < 0 {
		o.SweepInterval = 0
	}
	if o.PersistencePath == "" {
		o.PersistencePath = def.PersistencePath
	}
	return o
}
