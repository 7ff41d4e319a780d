package failover

import (
	"sync"
	"time"
)

// ModelCache is the single process-wide model listing slot.
type ModelCache struct {
	mu        sync.RWMutex
	ttl       time.Duration
	names     []string
	source    string
	fetchedAt time.Time
	present   bool
}

// NewModelCache creates an empty cache whose entries live for ttl.
func NewModelCache(ttl time.Duration) *ModelCache {
	return &ModelCache{ttl: ttl}
}

// Get returns the cached names and whether they are still within the TTL.
// A listing that was fetched but empty counts as present.
func (c *ModelCache) Get(now time.Time) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.present {
		return nil, false
	}
	return c.names, now.Sub(c.fetchedAt) <= c.ttl
}

// Last returns the most recent listing regardless of age.
func (c *ModelCache) Last() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.names
}

// Source returns the URL of the instance that produced the listing.
func (c *ModelCache) Source() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.source
}

// Store replaces the listing.
func (c *ModelCache) Store(source string, names []string, at time.Time) {
	cp := append([]string{}, names...)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.names = cp
	c.source = source
	c.fetchedAt = at
	c.present = true
}
