package ratelimit

import (
	"sync"
	"time"
)

// Rate limiting policy: buckets hold 20 tokens and refill one token
// every two seconds.
const (
	DefaultBucketCapacity  = 20.0
	DefaultRefillPerSecond = 0.5
)

// Fixed costs per operation kind. Stopping a session is never
// throttled so a rate-limited caller can always release the session
// slot it holds.
const (
	CostTextTranslation   = 1.0
	CostStartVoiceSession = 5.0
	CostStopVoiceSession  = 0.0
)

// Limiter owns one token bucket per origin. Buckets are created on
// first sight with a full allowance and live for the process lifetime.
// Rate limiting keys strictly on origin, independent of which
// authentication method was used, so a global key cannot starve
// fairness across sites.
type Limiter struct {
	mu           sync.Mutex
	buckets      map[string]*TokenBucket
	capacity     float64
	refillPerSec float64
	now          func() time.Time
}

// NewLimiter creates a limiter with the given bucket policy.
func NewLimiter(capacity, refillPerSec float64) *Limiter {
	return &Limiter{
		buckets:      make(map[string]*TokenBucket),
		capacity:     capacity,
		refillPerSec: refillPerSec,
		now:          time.Now,
	}
}

// NewLimiterWithClock creates a limiter with an injected clock for
// deterministic tests.
func NewLimiterWithClock(capacity, refillPerSec float64, now func() time.Time) *Limiter {
	l := NewLimiter(capacity, refillPerSec)
	l.now = now
	return l
}

// Check consumes cost tokens from origin's bucket, lazily creating it.
// A zero cost is always allowed and does not touch bucket state.
func (l *Limiter) Check(origin string, cost float64) Result {
	if cost <= 0 {
		return Result{Allowed: true}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	bucket, ok := l.buckets[origin]
	if !ok {
		bucket = newBucket(l.capacity, l.refillPerSec, l.now)
		l.buckets[origin] = bucket
	}
	return bucket.Consume(cost)
}
