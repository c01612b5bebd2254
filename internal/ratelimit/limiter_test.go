package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterDistinctOriginsGetDistinctBuckets(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiterWithClock(DefaultBucketCapacity, DefaultRefillPerSecond, clock.Now)

	// Drain one origin completely.
	for i := 0; i < 20; i++ {
		require.True(t, l.Check("https://a.test", CostTextTranslation).Allowed)
	}
	require.False(t, l.Check("https://a.test", CostTextTranslation).Allowed)

	// A different origin is unaffected.
	assert.True(t, l.Check("https://b.test", CostTextTranslation).Allowed)
}

func TestLimiterSameOriginSharesBucket(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiterWithClock(DefaultBucketCapacity, DefaultRefillPerSecond, clock.Now)

	require.True(t, l.Check("https://a.test", 15).Allowed)

	// State persists across calls: only 5 tokens remain.
	res := l.Check("https://a.test", 10)
	assert.False(t, res.Allowed)
	assert.Equal(t, 10, res.RetryAfter) // ceil((10-5)/0.5)
}

func TestLimiterTwentyFirstRequestDenied(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiterWithClock(DefaultBucketCapacity, DefaultRefillPerSecond, clock.Now)

	for i := 0; i < 20; i++ {
		require.True(t, l.Check("https://burst.test", CostTextTranslation).Allowed, "request %d", i+1)
	}

	res := l.Check("https://burst.test", CostTextTranslation)
	assert.False(t, res.Allowed)
	assert.GreaterOrEqual(t, res.RetryAfter, 1)
}

func TestLimiterZeroCostNeverThrottled(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiterWithClock(DefaultBucketCapacity, DefaultRefillPerSecond, clock.Now)

	require.True(t, l.Check("https://a.test", 20).Allowed)
	require.False(t, l.Check("https://a.test", 1).Allowed)

	// Stop-session cost is zero and must pass even on an empty bucket.
	assert.True(t, l.Check("https://a.test", CostStopVoiceSession).Allowed)
}

func TestLimiterVoiceSessionCost(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiterWithClock(DefaultBucketCapacity, DefaultRefillPerSecond, clock.Now)

	// Four session starts drain the bucket (4 * 5 = 20).
	for i := 0; i < 4; i++ {
		require.True(t, l.Check("https://voice.test", CostStartVoiceSession).Allowed)
	}
	assert.False(t, l.Check("https://voice.test", CostStartVoiceSession).Allowed)
}
