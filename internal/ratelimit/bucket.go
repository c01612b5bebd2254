// Package ratelimit implements per-origin token-bucket rate limiting
// for the message gateway.
package ratelimit

import (
	"math"
	"time"
)

// Result reports a single rate limit decision. RetryAfter is the
// minimum whole seconds before a request of the same cost would
// succeed, assuming no concurrent consumption; it is zero when the
// request was allowed.
type Result struct {
	Allowed    bool
	RetryAfter int
}

// TokenBucket holds a capped, continuously refilling count of permits.
// Refill is computed lazily from wall-clock deltas on each Consume;
// there is no background timer. The zero value is not usable; create
// buckets with newBucket.
//
// TokenBucket is not safe for concurrent use; the Limiter serializes
// access to its buckets.
type TokenBucket struct {
	capacity     float64
	tokens       float64
	refillPerSec float64
	lastRefill   time.Time
	now          func() time.Time
}

func newBucket(capacity, refillPerSec float64, now func() time.Time) *TokenBucket {
	return &TokenBucket{
		capacity:     capacity,
		tokens:       capacity,
		refillPerSec: refillPerSec,
		lastRefill:   now(),
		now:          now,
	}
}

// refill adds elapsed*rate tokens, capped at capacity.
func (b *TokenBucket) refill() {
	now := b.now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed > 0 {
		b.tokens = math.Min(b.capacity, b.tokens+elapsed*b.refillPerSec)
		b.lastRefill = now
	}
}

// Consume attempts to take cost tokens from the bucket. On denial the
// bucket is left untouched and RetryAfter reports
// ceil((cost - tokens) / refillRate) seconds.
func (b *TokenBucket) Consume(cost float64) Result {
	b.refill()
	if b.tokens >= cost {
		b.tokens -= cost
		return Result{Allowed: true}
	}

	wait := (cost - b.tokens) / b.refillPerSec
	return Result{Allowed: false, RetryAfter: int(math.Ceil(wait))}
}

// Tokens reports the current token count without consuming. Used by
// tests to verify the 0 <= tokens <= capacity invariant.
func (b *TokenBucket) Tokens() float64 {
	b.refill()
	return b.tokens
}
