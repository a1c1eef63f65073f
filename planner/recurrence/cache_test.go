package recurrence

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cyp0633/termplan/planner/date"
	"github.com/stretchr/testify/assert"
)

func TestScheduleCache_BasicOperations(t *testing.T) {
	cache := NewScheduleCache(CacheConfig{
		TTL:             5 * time.Minute,
		MaxEntries:      100,
		CleanupInterval: 1 * time.Minute,
	})
	defer cache.Close()

	// Cache miss first
	result, found := cache.Get("k")
	assert.False(t, found)
	assert.Nil(t, result)

	dates := []date.Date{date.MustParse("2025-01-06")}
	cache.Set("k", dates)

	result, found = cache.Get("k")
	assert.True(t, found)
	assert.Equal(t, dates, result)
}

func TestScheduleCache_TTLExpiration(t *testing.T) {
	cache := NewScheduleCache(CacheConfig{
		TTL:             100 * time.Millisecond, // Very short TTL for testing
		MaxEntries:      100,
		CleanupInterval: 50 * time.Millisecond,
	})
	defer cache.Close()

	cache.Set("k", nil)
	_, found := cache.Get("k")
	assert.True(t, found, "expected cache hit immediately after set")

	time.Sleep(150 * time.Millisecond)

	_, found = cache.Get("k")
	assert.False(t, found, "expected cache miss after TTL expiration")
}

func TestScheduleCache_MaxEntriesEviction(t *testing.T) {
	cache := NewScheduleCache(CacheConfig{
		TTL:             5 * time.Minute,
		MaxEntries:      3,
		CleanupInterval: 1 * time.Minute,
	})
	defer cache.Close()

	for i := 0; i < 3; i++ {
		cache.Set(fmt.Sprintf("k%d", i), nil)
		time.Sleep(2 * time.Millisecond)
	}
	assert.Equal(t, 3, cache.Stats().TotalEntries)

	cache.Set("newest", nil)
	assert.Equal(t, 3, cache.Stats().TotalEntries)

	_, found := cache.Get("newest")
	assert.True(t, found, "newest entry should survive eviction")
	_, found = cache.Get("k0")
	assert.False(t, found, "least recently accessed entry should be evicted")
}

func TestScheduleCache_ConcurrentAccess(t *testing.T) {
	cache := NewScheduleCache(DefaultCacheConfig)
	defer cache.Close()

	const numGoroutines = 10
	const operationsPerGoroutine = 100

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(goroutineID int) {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				key := fmt.Sprintf("%d-%d", goroutineID, j)
				if j%2 == 0 {
					cache.Set(key, []date.Date{date.MustParse("2025-01-01")})
				} else {
					cache.Get(key)
				}
			}
		}(i)
	}
	wg.Wait()

	cache.Set("final", nil)
	_, found := cache.Get("final")
	assert.True(t, found, "cache should still be functional after concurrent access")
}

func TestScheduleCache_ZeroConfigDefaults(t *testing.T) {
	cache := NewScheduleCache(CacheConfig{})
	defer cache.Close()

	assert.Equal(t, DefaultCacheConfig.TTL, cache.ttl)
	assert.Equal(t, DefaultCacheConfig.MaxEntries, cache.maxEntries)

	// Double close is harmless
	cache.Close()
}
