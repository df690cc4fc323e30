package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterStore_EvictsIdleClients(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	store := newRateLimiterStore(1, 1)
	store.now = func() time.Time { return now }
	store.lastSweep = now

	a := store.getLimiter("203.0.113.1")
	require.True(t, a.Allow())
	assert.Same(t, a, store.getLimiter("203.0.113.1"))

	now = now.Add(5 * time.Minute)
	store.getLimiter("203.0.113.2")
	assert.Equal(t, 2, store.size())

	// first client idle past the TTL, second one is not
	now = now.Add(6 * time.Minute)
	store.getLimiter("203.0.113.3")
	assert.Equal(t, 2, store.size())

	fresh := store.getLimiter("203.0.113.1")
	assert.NotSame(t, a, fresh)
	assert.True(t, fresh.Allow())
}

func TestRateLimiterStore_SweepsAtMostOncePerTTL(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	store := newRateLimiterStore(1, 1)
	store.now = func() time.Time { return now }
	store.lastSweep = now.Add(-time.Minute)

	store.getLimiter("203.0.113.1")
	now = now.Add(limiterIdleTTL)

	// eleven minutes since the last sweep, the first client is dropped
	store.getLimiter("203.0.113.2")
	assert.Equal(t, 1, store.size())

	// swept a moment ago, nothing is dropped
	now = now.Add(limiterIdleTTL - time.Second)
	store.getLimiter("203.0.113.3")
	assert.Equal(t, 2, store.size())
}
