package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock for deterministic refill tests.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func TestBucketStartsFull(t *testing.T) {
	clock := newFakeClock()
	b := newBucket(20, 0.5, clock.Now)

	assert.Equal(t, 20.0, b.Tokens())
}

func TestBucketConsumeAndDeny(t *testing.T) {
	clock := newFakeClock()
	b := newBucket(20, 0.5, clock.Now)

	for i := 0; i < 20; i++ {
		res := b.Consume(1)
		require.True(t, res.Allowed, "request %d should be allowed", i+1)
	}

	res := b.Consume(1)
	assert.False(t, res.Allowed)
	// tokens = 0, cost = 1, refill 0.5/s -> ceil(1/0.5) = 2s
	assert.Equal(t, 2, res.RetryAfter)
}

func TestBucketRetryAfterFormula(t *testing.T) {
	tests := []struct {
		name      string
		capacity  float64
		refill    float64
		drain     float64
		cost      float64
		wantRetry int
	}{
		{name: "empty bucket unit cost", capacity: 20, refill: 0.5, drain: 20, cost: 1, wantRetry: 2},
		{name: "partial tokens", capacity: 20, refill: 0.5, drain: 18, cost: 5, wantRetry: 6},
		{name: "voice session cost", capacity: 20, refill: 0.5, drain: 16, cost: 5, wantRetry: 2},
		{name: "fast refill rounds up", capacity: 10, refill: 3, drain: 10, cost: 1, wantRetry: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			b := newBucket(tt.capacity, tt.refill, clock.Now)
			require.True(t, b.Consume(tt.drain).Allowed)

			res := b.Consume(tt.cost)
			require.False(t, res.Allowed)
			assert.Equal(t, tt.wantRetry, res.RetryAfter)
		})
	}
}

func TestBucketLazyRefill(t *testing.T) {
	clock := newFakeClock()
	b := newBucket(20, 0.5, clock.Now)

	require.True(t, b.Consume(20).Allowed)
	assert.False(t, b.Consume(1).Allowed)

	// One token every two seconds.
	clock.Advance(2 * time.Second)
	assert.True(t, b.Consume(1).Allowed)
	assert.False(t, b.Consume(1).Allowed)

	// Fractional refill accumulates.
	clock.Advance(1 * time.Second)
	assert.False(t, b.Consume(1).Allowed)
	clock.Advance(1 * time.Second)
	assert.True(t, b.Consume(1).Allowed)
}

func TestBucketNeverExceedsCapacity(t *testing.T) {
	clock := newFakeClock()
	b := newBucket(20, 0.5, clock.Now)

	require.True(t, b.Consume(5).Allowed)

	// Far longer than needed to refill 5 tokens; cap must hold.
	clock.Advance(time.Hour)
	assert.Equal(t, 20.0, b.Tokens())
}

func TestBucketInvariantUnderMixedSequence(t *testing.T) {
	clock := newFakeClock()
	b := newBucket(20, 0.5, clock.Now)

	costs := []float64{1, 5, 1, 1, 5, 5, 1, 5, 1, 1, 5, 1}
	for _, cost := range costs {
		b.Consume(cost)
		tokens := b.Tokens()
		assert.GreaterOrEqual(t, tokens, 0.0)
		assert.LessOrEqual(t, tokens, 20.0)
		clock.Advance(500 * time.Millisecond)
	}
}
