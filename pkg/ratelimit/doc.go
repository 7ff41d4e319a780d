// Package ratelimit bounds chat traffic per client.
//
// Each client key (normally the remote IP) gets a token bucket for its
// request rate and a counter of open streams. A request is admitted only
// when both have room:
//
//	limiter := ratelimit.New(ratelimit.Config{
//	    RequestsPerMinute: 30,
//	    Burst:             10,
//	    MaxConcurrent:     2,
//	})
//
//	d := limiter.Allow(clientIP)
//	if !d.Allowed {
//	    // answer 429, Retry-After: d.RetryAfter
//	}
//	defer limiter.Release(clientIP)
//
// State for clients that have been idle longer than Config.IdleTTL is
// dropped lazily during Allow.
package ratelimit
