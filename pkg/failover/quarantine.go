package failover

import (
	"sync"
	"time"
)

// Quarantine is the set of recently failed instances, keyed by URL, each
// with the time its exclusion ends. Expired entries are removed lazily.
type Quarantine struct {
	mu    sync.Mutex
	until map[string]time.Time
}

// NewQuarantine creates an empty set.
func NewQuarantine() *Quarantine {
	return &Quarantine{until: make(map[string]time.Time)}
}

// Add excludes url until the given time.
func (q *Quarantine) Add(url string, until time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.until[url] = until
}

// Remove clears url from the set.
func (q *Quarantine) Remove(url string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.until, url)
}

// Contains reports whether url is excluded at now.
func (q *Quarantine) Contains(url string, now time.Time) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	until, ok := q.until[url]
	return ok && now.Before(until)
}

// Evict drops entries that expired at or before now and returns how many
// entries remain.
func (q *Quarantine) Evict(now time.Time) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	for url, until := range q.until {
		if !now.Before(until) {
			delete(q.until, url)
		}
	}
	return len(q.until)
}

// Len returns the number of entries, expired or not.
func (q *Quarantine) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.until)
}
