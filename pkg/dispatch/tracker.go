package dispatch

import "sync"

// Tracker records which request URLs currently have a request outstanding.
// The zero value is ready to use.
type Tracker struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{inFlight: make(map[string]struct{})}
}

// TryTrack marks url in flight and reports true, or reports false when it
// already was. The check and the mark happen under one lock.
func (t *Tracker) TryTrack(url string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inFlight == nil {
		t.inFlight = make(map[string]struct{})
	}
	if _, ok := t.inFlight[url]; ok {
		return false
	}
	t.inFlight[url] = struct{}{}
	return true
}

// Untrack clears url. Clearing an untracked url is a no-op.
func (t *Tracker) Untrack(url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inFlight, url)
}

// InFlight reports whether url has a request outstanding.
func (t *Tracker) InFlight(url string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.inFlight[url]
	return ok
}

// Len returns the number of outstanding requests.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inFlight)
}
