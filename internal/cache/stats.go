package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cashflow/internal/core"
)

// MonthlyStatsSource computes a monthly report from the ledger.
type MonthlyStatsSource interface {
	MonthlyStats(ctx context.Context, userID int64, year, month int) (core.MonthlyStats, error)
}

// StatsCache memoizes monthly reports per user and month. Entries of a user
// are dropped as soon as that user's ledger changes.
type StatsCache struct {
	source MonthlyStatsSource
	lru    *LRUCache[core.MonthlyStats]

	mu sync.Mutex
	// gens counts invalidations per user; a report computed across a bump is stale.
	gens map[int64]uint64
}

func NewStatsCache(source MonthlyStatsSource, maxSize int, ttl time.Duration) *StatsCache {
	return &StatsCache{
		source: source,
		lru:    NewLRUCache[core.MonthlyStats](maxSize, ttl),
		gens:   make(map[int64]uint64),
	}
}

func (c *StatsCache) generation(userID int64) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[userID]
}

func statsKey(userID int64, year, month int) string {
	return fmt.Sprintf("%s%04d-%02d", userPrefix(userID), year, month)
}

func userPrefix(userID int64) string {
	return fmt.Sprintf("user:%d:", userID)
}

// MonthlyStats returns the cached report or computes and stores it.
// Errors are never cached, nor are reports computed while the user's
// ledger was being written.
func (c *StatsCache) MonthlyStats(ctx context.Context, userID int64, year, month int) (core.MonthlyStats, error) {
	key := statsKey(userID, year, month)
	if s, ok := c.lru.Get(key); ok {
		return s, nil
	}
	gen := c.generation(userID)
	s, err := c.source.MonthlyStats(ctx, userID, year, month)
	if err != nil {
		return core.MonthlyStats{}, err
	}

	c.mu.Lock()
	if c.gens[userID] == gen {
		c.lru.Set(key, s)
	}
	c.mu.Unlock()
	return s, nil
}

// InvalidateUser drops every cached report of the user.
func (c *StatsCache) InvalidateUser(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[userID]++
	c.lru.DeletePrefix(userPrefix(userID))
}

// CleanExpired lets a Manager sweep the underlying LRU.
func (c *StatsCache) CleanExpired() int {
	return c.lru.CleanExpired()
}
