package cache

// EventType identifies a cache event.
type EventType string

// Event types emitted by the cache. Misses are not emitted as events; they
// are visible through the metrics counters.
const (
	EventHit             EventType = "hit"
	EventSet             EventType = "set"
	EventDelete          EventType = "delete"
	EventEvict           EventType = "evict"
	EventRefresh         EventType = "refresh"
	EventRefreshError    EventType = "refresh-error"
	EventCoalesce        EventType = "coalesce"
	EventCompressed      EventType = "compressed"
	EventCompressError   EventType = "compress-error"
	EventDecompressError EventType = "decompress-error"
	EventError           EventType = "error"
	EventCleanup         EventType = "cleanup"
	EventFlush           EventType = "flush"
	EventSaved           EventType = "saved"
	EventLoaded          EventType = "loaded"
	EventSaveError       EventType = "save-error"
	EventLoadError       EventType = "load-error"
)

// Event is a single cache notification. Events are a side channel for
// observability: the cache behaves identically whether or not anyone
// listens.
type Event struct {
	Type EventType

	// Key is the affected cache key, when the event concerns one.
	Key string

	// Count carries a quantity for bulk events (cleanup, saved, loaded).
	Count int

	// Err is set on error-flavored events.
	Err error
}

// Observer receives cache events.
//
// Contract:
// - Concurrency: OnEvent may be called from multiple goroutines.
// - Blocking: OnEvent runs on cache code paths and must return quickly.
// - Errors: OnEvent must not panic.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// OnEvent calls f(ev).
func (f ObserverFunc) OnEvent(ev Event) { f(ev) }

// MultiObserver fans events out to several observers in order.
func MultiObserver(observers ...Observer) Observer {
	return ObserverFunc(func(ev Event) {
		for _, o := range observers {
			if o != nil {
				o.OnEvent(ev)
			}
		}
	})
}
