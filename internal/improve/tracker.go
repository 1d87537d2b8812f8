package improve

import "sync"

// Key identifies one field of one item. ItemID is empty for fields outside
// list sections, such as the summary.
type Key struct {
	ItemID string
	Field  string
}

// Tracker is the set of fields with an improvement in flight.
type Tracker struct {
	mu       sync.Mutex
	inFlight map[Key]struct{}
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{inFlight: make(map[Key]struct{})}
}

// TryAcquire marks key as in flight. It returns ok=false if it already is.
// The release func may be called more than once.
func (t *Tracker) TryAcquire(key Key) (release func(), ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, busy := t.inFlight[key]; busy {
		return func() {}, false
	}
	t.inFlight[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.inFlight, key)
			t.mu.Unlock()
		})
	}, true
}

// InFlight reports whether key is currently being improved.
func (t *Tracker) InFlight(key Key) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.inFlight[key]
	return ok
}

