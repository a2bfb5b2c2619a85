package cache

// victimFunc selects the key to evict from the entry map, never choosing
// spare. It returns "" when no evictable entry remains.
//
// All three policies break ties on the insertion sequence number: when two
// entries compare equal, the one inserted earliest is evicted. This keeps
// eviction deterministic instead of depending on map iteration order.
type victimFunc func(entries map[string]*entry, spare string) string

func victimFor(policy EvictionPolicy) victimFunc {
	switch policy {
	case LFU:
		return lfuVictim
	case FIFO:
		return fifoVictim
	default:
		return lruVictim
	}
}

// lruVictim returns the key with the oldest last access time.
func lruVictim(entries map[string]*entry, spare string) string {
	var victim string
	var best *entry
	for k, e := range entries {
		if k == spare {
			continue
		}
		if best == nil ||
			e.lastAccessed.Before(best.lastAccessed) ||
			(e.lastAccessed.Equal(best.lastAccessed) && e.seq < best.seq) {
			victim, best = k, e
		}
	}
	return victim
}

// lfuVictim returns the key with the smallest hit count.
func lfuVictim(entries map[string]*entry, spare string) string {
	var victim string
	var best *entry
	for k, e := range entries {
		if k == spare {
			continue
		}
		if best == nil ||
			e.hitCount < best.hitCount ||
			(e.hitCount == best.hitCount && e.seq < best.seq) {
			victim, best = k, e
		}
	}
	return victim
}

// fifoVictim returns the oldest-inserted key.
func fifoVictim(entries map[string]*entry, spare string) string {
	var victim string
	var best *entry
	for k, e := range entries {
		if k == spare {
			continue
		}
		if best == nil || e.seq < best.seq {
			victim, best = k, e
		}
	}
	return victim
}
