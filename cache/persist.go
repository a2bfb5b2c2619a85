package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// snapshotVersion is the persistence file format version. A file with any
// other version is treated as absent.
const snapshotVersion = "1.0"

// persistSizeCeiling is the largest entry (by estimated serialized size)
// that is written to a snapshot. Compressed entries are skipped outright.
const persistSizeCeiling = 100 * 1024

// snapshot is the on-disk format.
type snapshot struct {
	Version   string          `json:"version"`
	Timestamp int64           `json:"timestamp"` // epoch millis
	Entries   []snapshotEntry `json:"entries"`
}

type snapshotEntry struct {
	Key   string         `json:"key"`
	Entry persistedEntry `json:"entry"`
}

type persistedEntry struct {
	Data               json.RawMessage `json:"data"`
	Timestamp          int64           `json:"timestamp"` // epoch millis
	TTL                float64         `json:"ttl"`       // seconds
	HitCount           uint64          `json:"hitCount"`
	LastAccessed       int64           `json:"lastAccessed"` // epoch millis
	Size               int64           `json:"size"`
	UpdateCount        uint64          `json:"updateCount"`
	LastUpdateInterval int64           `json:"lastUpdateInterval"` // millis, 0 = none
}

// saveSnapshot writes all live, uncompressed, size-bounded entries to the
// persistence path. Failures are reported as events and never propagate;
// the write is atomic (temp file plus rename) so a crash cannot leave a
// half-written snapshot behind.
func (c *Cache[V]) saveSnapshot() {
	now := c.now()

	c.mu.RLock()
	snap := snapshot{
		Version:   snapshotVersion,
		Timestamp: now.UnixMilli(),
		Entries:   make([]snapshotEntry, 0, len(c.entries)),
	}
	type pending struct {
		key string
		e   entry
	}
	candidates := make([]pending, 0, len(c.entries))
	for key, e := range c.entries {
		if !e.live(now) || e.compressed || e.size > persistSizeCeiling {
			continue
		}
		candidates = append(candidates, pending{key: key, e: *e})
	}
	c.mu.RUnlock()

	for _, cand := range candidates {
		v, err := decodeValue[V](cand.e.data)
		if err != nil {
			continue
		}
		data, err := json.Marshal(v)
		if err != nil {
			continue
		}
		snap.Entries = append(snap.Entries, snapshotEntry{
			Key: cand.key,
			Entry: persistedEntry{
				Data:               data,
				Timestamp:          cand.e.timestamp.UnixMilli(),
				TTL:                cand.e.ttl.Seconds(),
				HitCount:           cand.e.hitCount,
				LastAccessed:       cand.e.lastAccessed.UnixMilli(),
				Size:               cand.e.size,
				UpdateCount:        cand.e.updateCount,
				LastUpdateInterval: cand.e.lastUpdateInterval.Milliseconds(),
			},
		})
	}

	out, err := json.Marshal(snap)
	if err != nil {
		c.notify(Event{Type: EventSaveError, Err: err})
		return
	}

	path := c.opts.PersistencePath
	tmp, err := os.CreateTemp(filepath.Dir(path), ".cache-snapshot-*")
	if err != nil {
		c.notify(Event{Type: EventSaveError, Err: err})
		return
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		c.notify(Event{Type: EventSaveError, Err: err})
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		c.notify(Event{Type: EventSaveError, Err: err})
		return
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		c.notify(Event{Type: EventSaveError, Err: err})
		return
	}

	c.notify(Event{Type: EventSaved, Count: len(snap.Entries)})
}

// loadSnapshot seeds the store from the persistence path, discarding
// entries that have already expired. A missing file is expected and silent;
// a wrong version means the file is treated as absent; every other failure
// is a non-fatal load-error event. Startup never blocks on persistence.
func (c *Cache[V]) loadSnapshot() {
	raw, err := os.ReadFile(c.opts.PersistencePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		c.notify(Event{Type: EventLoadError, Err: err})
		return
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		c.notify(Event{Type: EventLoadError, Err: err})
		return
	}
	if snap.Version != snapshotVersion {
		return
	}

	now := c.now()
	loaded := 0

	for _, se := range snap.Entries {
		var v V
		if err := json.Unmarshal(se.Entry.Data, &v); err != nil {
			continue
		}
		data, size, err := encodeValue(v)
		if err != nil {
			continue
		}

		ttl := time.Duration(se.Entry.TTL * float64(time.Second))
		written := time.UnixMilli(se.Entry.Timestamp)
		if now.After(written.Add(ttl)) {
			continue
		}

		c.mu.Lock()
		c.removeLocked(se.Key)
		c.nextSeq++
		c.entries[se.Key] = &entry{
			data:               data,
			compressed:         false,
			timestamp:          written,
			ttl:                ttl,
			hitCount:           se.Entry.HitCount,
			lastAccessed:       time.UnixMilli(se.Entry.LastAccessed),
			size:               size,
			updateCount:        se.Entry.UpdateCount,
			lastUpdateInterval: time.Duration(se.Entry.LastUpdateInterval) * time.Millisecond,
			seq:                c.nextSeq,
		}
		c.memoryUsage += size
		c.mu.Unlock()
		loaded++
	}

	// A snapshot written under looser options can overfill the store;
	// hold the loaded set to the same bounds Set enforces.
	var evicted []string
	c.mu.Lock()
	for len(c.entries) > c.opts.MaxSize {
		victim := c.evictLocked("")
		if victim == "" {
			break
		}
		evicted = append(evicted, victim)
	}
	if budget := int64(c.opts.MaxMemoryMB) * 1024 * 1024; budget > 0 {
		for c.memoryUsage > budget {
			victim := c.evictLocked("")
			if victim == "" {
				break
			}
			evicted = append(evicted, victim)
		}
	}
	c.mu.Unlock()

	for _, victim := range evicted {
		c.notify(Event{Type: EventEvict, Key: victim})
	}
	c.notify(Event{Type: EventLoaded, Count: loaded})
}
