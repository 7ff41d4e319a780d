package failover

import (
	"sync"
	"time"
)

// HealthRecord is the outcome of the last probe of one instance.
type HealthRecord struct {
	LastChecked time.Time
	Healthy     bool
}

// HealthCache holds one HealthRecord per instance URL.
type HealthCache struct {
	mu      sync.RWMutex
	records map[string]HealthRecord
}

// NewHealthCache creates an empty cache.
func NewHealthCache() *HealthCache {
	return &HealthCache{records: make(map[string]HealthRecord)}
}

// Get returns the record for url, if the instance was ever checked.
func (h *HealthCache) Get(url string) (HealthRecord, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	rec, ok := h.records[url]
	return rec, ok
}

// Record stores the outcome of a probe finished at at.
func (h *HealthCache) Record(url string, healthy bool, at time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records[url] = HealthRecord{LastChecked: at, Healthy: healthy}
}

// Fresh reports whether url was checked no longer than window before now.
func (h *HealthCache) Fresh(url string, now time.Time, window time.Duration) (HealthRecord, bool) {
	rec, ok := h.Get(url)
	if !ok {
		return HealthRecord{}, false
	}
	return rec, now.Sub(rec.LastChecked) <= window
}
