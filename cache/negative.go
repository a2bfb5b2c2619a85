package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// negativeCacheSize bounds the number of tracked failing keys. The window
// is short, so the bound only matters under pathological key churn.
const negativeCacheSize = 4096

// negativeCache remembers keys whose upstream fetch recently failed, so a
// caller hammering a failing key does not hammer the upstream for the
// duration of the window. Entries auto-expire; a successful Set for a key
// removes it immediately.
type negativeCache struct {
	keys *expirable.LRU[string, time.Time]
}

func newNegativeCache(ttl time.Duration) *negativeCache {
	return &negativeCache{
		keys: expirable.NewLRU[string, time.Time](negativeCacheSize, nil, ttl),
	}
}

func (n *negativeCache) add(key string) {
	n.keys.Add(key, time.Now())
}

func (n *negativeCache) has(key string) bool {
	// Get (not Contains) so expiry is checked, not just presence.
	_, ok := n.keys.Get(key)
	return ok
}

func (n *negativeCache) remove(key string) {
	n.keys.Remove(key)
}

func (n *negativeCache) purge() {
	n.keys.Purge()
}
