package cache

import "time"

// sweepLoop periodically purges expired entries and, when persistence is
// enabled, saves a snapshot. It exits when the cache is closed; Close waits
// for it, so no sweep is left dangling after shutdown returns.
func (c *Cache[V]) sweepLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.sweep()
			if c.opts.EnablePersistence {
				c.saveSnapshot()
			}
		}
	}
}

// sweep eagerly removes all entries that fail the same liveness predicate
// the read path uses, and returns how many were removed.
func (c *Cache[V]) sweep() int {
	now := c.now()

	c.mu.Lock()
	removed := 0
	for key, e := range c.entries {
		if !e.live(now) {
			c.removeLocked(key)
			removed++
		}
	}
	c.mu.Unlock()

	if removed > 0 {
		c.notify(Event{Type: EventCleanup, Count: removed})
	}
	return removed
}
