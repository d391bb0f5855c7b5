// Package store keeps the client-side view of the backend's crawls: a keyed
// collection merged from snapshots and partial updates, plus the identifier
// list that gives views a stable insertion order.
package store

import (
	"slices"
	"sync"
	"time"

	"crawl-mgmt-go/pkg/endpoints"
	"crawl-mgmt-go/pkg/models"
)

const defaultMaxNotifications = 20

// Notification is a user-visible report of a failed request.
type Notification struct {
	At      time.Time    `json:"at"`
	Op      endpoints.Op `json:"op"`
	URL     string       `json:"url"`
	CrawlID string       `json:"crawl_id,omitempty"`
	Message string       `json:"message"`
}

// Store is safe for concurrent use. Readers always receive copies.
type Store struct {
	mu            sync.RWMutex
	crawls        map[string]models.Crawl
	ids           []string
	version       uint64
	notifications []Notification
	maxNotices    int
	subscribers   map[int]chan struct{}
	nextSub       int
	now           func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		crawls:      make(map[string]models.Crawl),
		maxNotices:  defaultMaxNotifications,
		subscribers: make(map[int]chan struct{}),
		now:         time.Now,
	}
}

// Apply folds evt into the store. It never rejects an event: unknown kinds
// and patches without an id leave the state untouched.
func (s *Store) Apply(evt Event) {
	if evt == nil {
		return
	}

	s.mu.Lock()
	changed := s.apply(evt)
	if changed {
		s.version++
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

func (s *Store) apply(evt Event) bool {
	switch e := evt.(type) {
	case SnapshotReceived:
		changed := false
		for _, p := range e.Crawls {
			if s.upsert(p) {
				changed = true
			}
		}
		return changed
	case CrawlCreated:
		return s.upsert(e.Patch)
	case CrawlMerged:
		return s.upsert(e.Patch)
	case CrawlRemoved:
		return s.remove(e.ID)
	case DoneChecked:
		if !e.Done {
			return false
		}
		return s.upsert(models.CrawlPatch{
			ID:      e.ID,
			Status:  models.Ptr(models.StatusDone),
			Running: models.Ptr(false),
		})
	case RequestFailed:
		s.pushNotification(e)
		return true
	}
	return false
}

// upsert is the single merge operation behind every event: insert a default
// record when the id is new, then overwrite only the fields present in p.
func (s *Store) upsert(p models.CrawlPatch) bool {
	if p.ID == "" {
		return false
	}

	cur, ok := s.crawls[p.ID]
	if ok {
		cur = cur.Clone()
	} else {
		cur = models.DefaultCrawl(p.ID)
		s.ids = append(s.ids, p.ID)
	}

	p.ApplyTo(&cur)
	normalizeRunning(&cur, p)
	s.crawls[p.ID] = cur
	return true
}

// normalizeRunning keeps running and status consistent: running is true
// exactly when status is running.
func normalizeRunning(c *models.Crawl, p models.CrawlPatch) {
	switch {
	case p.Status != nil:
		c.Running = c.Status == models.StatusRunning
	case p.Running != nil && *p.Running:
		c.Status = models.StatusRunning
	case p.Running != nil:
		if c.Status == models.StatusRunning {
			c.Status = models.StatusStopped
		}
	}
}

func (s *Store) remove(id string) bool {
	if _, ok := s.crawls[id]; !ok {
		return false
	}
	delete(s.crawls, id)
	if idx := slices.Index(s.ids, id); idx >= 0 {
		s.ids = slices.Delete(s.ids, idx, idx+1)
	}
	return true
}

func (s *Store) pushNotification(e RequestFailed) {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "request failed"
	}
	s.notifications = append(s.notifications, Notification{
		At:      s.now(),
		Op:      e.Op,
		URL:     e.URL,
		CrawlID: e.CrawlID,
		Message: msg,
	})
	if over := len(s.notifications) - s.maxNotices; over > 0 {
		s.notifications = slices.Delete(s.notifications, 0, over)
	}
}

// Version increases by one for every event that changed the store.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Get returns a copy of the crawl with id.
func (s *Store) Get(id string) (models.Crawl, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.crawls[id]
	if !ok {
		return models.Crawl{}, false
	}
	return c.Clone(), true
}

// Has reports whether id is present.
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.crawls[id]
	return ok
}

// IDs returns the identifiers in display order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.ids)
}

// List returns copies of all crawls in display order.
func (s *Store) List() []models.Crawl {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Crawl, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, s.crawls[id].Clone())
	}
	return out
}

// Len returns the number of crawls.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.crawls)
}

// Notifications returns the queued failure notifications, oldest first.
func (s *Store) Notifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.notifications)
}

// DismissNotifications clears the notification queue.
func (s *Store) DismissNotifications() {
	s.mu.Lock()
	if len(s.notifications) == 0 {
		s.mu.Unlock()
		return
	}
	s.notifications = nil
	s.version++
	s.mu.Unlock()
	s.notify()
}

// Subscribe returns a channel signalled after every change. Signals coalesce:
// a slow reader sees one pending signal, not one per event. Call the returned
// func to unsubscribe.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
