// Package cache provides the in-process cache engine that backs repeated
// lookups against the Akamai APIs (property, group, contract, and hostname
// resolution, plus general API-response caching).
//
// A Cache is a typed key-value store with TTL expiry, pluggable eviction
// (LRU, LFU, FIFO), adaptive TTL sizing based on observed update frequency,
// transparent value compression, request coalescing, a stale-while-revalidate
// read path, a short-lived negative cache for failing keys, and optional
// disk persistence across restarts.
//
// The composed read path is GetWithRefresh: it serves cached data when fresh,
// kicks off a background refresh when an entry is close to expiry, serves a
// stale value inside a configurable grace window while revalidating, and
// otherwise coalesces concurrent callers into a single upstream fetch.
//
// The design is single-process and in-memory. A Cache instance exclusively
// owns its entries, negative cache, and in-flight fetch registry; timers are
// started with Start and stopped with Close, never from the constructor.
package cache
