package ratelimit

import (
	"sync"
	"time"
)

// Rejection reasons reported in Decision.Reason.
const (
	ReasonRate       = "rate"
	ReasonConcurrent = "concurrent"
)

// DefaultIdleTTL is used when Config.IdleTTL is zero.
const DefaultIdleTTL = 10 * time.Minute

// Config sets per-client limits. Zero disables a limit.
type Config struct {
	RequestsPerMinute int
	Burst             int
	MaxConcurrent     int
	IdleTTL           time.Duration
}

// Decision is the outcome of Allow.
type Decision struct {
	Allowed bool

	// Reason is ReasonRate or ReasonConcurrent when rejected.
	Reason string

	// RetryAfter is a hint for rate rejections.
	RetryAfter time.Duration
}

type client struct {
	bucket   *TokenBucket
	streams  *ConcurrentLimiter
	lastSeen time.Time
}

// Limiter tracks limits for many clients.
type Limiter struct {
	cfg Config
	now func() time.Time

	mu        sync.Mutex
	clients   map[string]*client
	lastSweep time.Time
}

// New creates a Limiter.
func New(cfg Config) *Limiter {
	return newLimiter(cfg, time.Now)
}

func newLimiter(cfg Config, now func() time.Time) *Limiter {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	if cfg.RequestsPerMinute > 0 && cfg.Burst <= 0 {
		cfg.Burst = cfg.RequestsPerMinute
	}
	return &Limiter{
		cfg:       cfg,
		now:       now,
		clients:   make(map[string]*client),
		lastSweep: now(),
	}
}

// Allow admits one request from key. An allowed request holds a stream
// slot until Release is called with the same key.
func (l *Limiter) Allow(key string) Decision {
	l.mu.Lock()
	now := l.now()
	l.evictLocked(now)

	c, ok := l.clients[key]
	if !ok {
		c = l.newClient()
		l.clients[key] = c
	}
	c.lastSeen = now
	l.mu.Unlock()

	if c.streams != nil && !c.streams.Acquire() {
		return Decision{Reason: ReasonConcurrent}
	}
	if c.bucket != nil && !c.bucket.Take(1) {
		if c.streams != nil {
			c.streams.Release()
		}
		return Decision{Reason: ReasonRate, RetryAfter: c.bucket.TimeUntilAvailable(1)}
	}
	return Decision{Allowed: true}
}

// Release frees the stream slot taken by an allowed request.
func (l *Limiter) Release(key string) {
	l.mu.Lock()
	c, ok := l.clients[key]
	if ok {
		c.lastSeen = l.now()
	}
	l.mu.Unlock()

	if ok && c.streams != nil {
		c.streams.Release()
	}
}

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func (l *Limiter) newClient() *client {
	c := &client{}
	if l.cfg.RequestsPerMinute > 0 {
		c.bucket = newTokenBucket(l.cfg.Burst, float64(l.cfg.RequestsPerMinute)/60, l.now)
	}
	if l.cfg.MaxConcurrent > 0 {
		c.streams = NewConcurrentLimiter(l.cfg.MaxConcurrent)
	}
	return c
}

// evictLocked drops idle clients with no open streams, at most once per
// IdleTTL. Caller holds mu.
func (l *Limiter) evictLocked(now time.Time) {
	if now.Sub(l.lastSweep) < l.cfg.IdleTTL {
		return
	}
	l.lastSweep = now

	for key, c := range l.clients {
		if now.Sub(c.lastSeen) < l.cfg.IdleTTL {
			continue
		}
		if c.streams != nil && c.streams.Current() > 0 {
			continue
		}
		delete(l.clients, key)
	}
}
