package cache

import (
	"testing"
	"time"

	"cashflow/internal/core"
)

type manualClock struct{ t time.Time }

func (c *manualClock) now() time.Time { return c.t }

// TestLRUCachePerformance verifies basic operations stay fast
func TestLRUCachePerformance(t *testing.T) {
	cache := NewLRUCache[core.MonthlyStats](3, 100*time.Millisecond)

	start := time.Now()
	for i := 0; i < 1000; i++ {
		key := "test-key"
		cache.Set(key, core.MonthlyStats{Year: 2025, Month: 1})

		if _, found := cache.Get(key); !found {
			t.Errorf("Cache miss on iteration %d", i)
		}
	}
	duration := time.Since(start)

	t.Logf("1000 cache operations took %v", duration)

	if duration > 100*time.Millisecond {
		t.Errorf("Cache operations too slow: %v", duration)
	}
}

// TestLRUCacheEviction tests size-based eviction
func TestLRUCacheEviction(t *testing.T) {
	cache := NewLRUCache[string](3, time.Hour)

	cache.Set("key1", "value1")
	cache.Set("key2", "value2")
	cache.Set("key3", "value3")
	cache.Set("key4", "value4") // Should evict key1

	if _, found := cache.Get("key1"); found {
		t.Error("key1 should have been evicted")
	}
	for _, k := range []string{"key2", "key3", "key4"} {
		if _, found := cache.Get(k); !found {
			t.Errorf("%s should still exist", k)
		}
	}
}

// TestLRUCacheTTLExpiration tests time-based expiration
func TestLRUCacheTTLExpiration(t *testing.T) {
	clock := &manualClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewLRUCache[string](100, 50*time.Millisecond).WithClock(clock.now)

	cache.Set("key1", "value1")

	if _, found := cache.Get("key1"); !found {
		t.Error("key1 should exist immediately")
	}

	clock.t = clock.t.Add(60 * time.Millisecond)

	if _, found := cache.Get("key1"); found {
		t.Error("key1 should have expired")
	}
}

// TestLRUCacheCleanExpired tests the cleanup mechanism
func TestLRUCacheCleanExpired(t *testing.T) {
	clock := &manualClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewLRUCache[string](100, 50*time.Millisecond).WithClock(clock.now)

	cache.Set("key1", "value1")
	cache.Set("key2", "value2")
	cache.Set("key3", "value3")

	clock.t = clock.t.Add(time.Second)

	if removed := cache.CleanExpired(); removed != 3 {
		t.Errorf("Expected 3 items cleaned, got %d", removed)
	}
	if cache.Size() != 0 {
		t.Errorf("Expected empty cache, got %d items", cache.Size())
	}
}

func TestLRUCacheDeletePrefix(t *testing.T) {
	cache := NewLRUCache[int](10, time.Hour)
	cache.Set("user:1:2024-01", 1)
	cache.Set("user:1:2024-02", 2)
	cache.Set("user:10:2024-01", 3)

	if removed := cache.DeletePrefix("user:1:"); removed != 2 {
		t.Errorf("Expected 2 items removed, got %d", removed)
	}
	if _, found := cache.Get("user:10:2024-01"); !found {
		t.Error("user 10 entry should survive")
	}
}

func TestManagerSweep(t *testing.T) {
	clock := &manualClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	a := NewLRUCache[string](10, time.Minute).WithClock(clock.now)
	b := NewLRUCache[string](10, time.Hour).WithClock(clock.now)
	a.Set("x", "1")
	b.Set("y", "2")

	m := NewManager(nil)
	m.Register(a)
	m.Register(b)

	clock.t = clock.t.Add(2 * time.Minute)
	if n := m.Sweep(); n != 1 {
		t.Errorf("Expected 1 item swept, got %d", n)
	}
	m.Stop() // no-op when cleanup never started
}

// BenchmarkLRUCache benchmarks cache performance
func BenchmarkLRUCache(b *testing.B) {
	cache := NewLRUCache[core.MonthlyStats](1000, time.Hour)
	stats := core.MonthlyStats{Year: 2025, Month: 1}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		key := "bench-key"
		if i%10 == 0 {
			cache.Set(key, stats)
		} else {
			cache.Get(key)
		}
	}
}
