package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	defaultRate := Rate{RequestsPerSecond: 10, Burst: 20}
	store := NewStore(defaultRate, 5*time.Minute)

	require.NotNil(t, store)
	assert.Equal(t, defaultRate, store.rates[DefaultCategory])
	assert.Equal(t, 0, store.Len())
}

func TestStore_GetLimiter(t *testing.T) {
	store := NewStore(Rate{RequestsPerSecond: 10, Burst: 5}, time.Minute)
	store.SetRate("cleanup", Rate{RequestsPerSecond: 1, Burst: 1})

	first := store.GetLimiter("192.168.1.1", "api")
	again := store.GetLimiter("192.168.1.1", "api")
	assert.Same(t, first, again)
	assert.Equal(t, float64(5), first.capacity, "unknown category falls back to default")

	scoped := store.GetLimiter("192.168.1.1", "cleanup")
	assert.NotSame(t, first, scoped, "categories keep separate buckets")
	assert.Equal(t, float64(1), scoped.capacity)

	assert.Equal(t, 2, store.Len())
}

func TestStore_ConcurrentGetLimiter(t *testing.T) {
	store := NewStore(Rate{RequestsPerSecond: 10, Burst: 5}, time.Minute)

	var wg sync.WaitGroup
	limiters := make([]*Limiter, 50)
	for i := range limiters {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			limiters[i] = store.GetLimiter("10.0.0.1", DefaultCategory)
		}(i)
	}
	wg.Wait()

	for _, l := range limiters {
		assert.Same(t, limiters[0], l)
	}
}

func TestStore_Cleanup(t *testing.T) {
	store := NewStore(Rate{RequestsPerSecond: 10, Burst: 5}, time.Minute)

	stale := store.GetLimiter("stale", DefaultCategory)
	stale.lastSeen = time.Now().Add(-time.Hour)
	store.GetLimiter("fresh", DefaultCategory)

	store.cleanup(time.Now())

	assert.Equal(t, 1, store.Len())
	_, ok := store.limiters[DefaultCategory+"|fresh"]
	assert.True(t, ok)
}

func TestStore_RunCleanupStopsOnCancel(t *testing.T) {
	store := NewStore(Rate{RequestsPerSecond: 10, Burst: 5}, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		store.RunCleanup(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunCleanup did not stop after cancel")
	}
}
