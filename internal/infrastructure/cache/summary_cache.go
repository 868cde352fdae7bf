// Package cache keeps recently computed summary reports in memory
package cache

import (
	"sync"
	"time"

	"github.com/damon-houk/finance-tracker/internal/domain/summary"
)

// entry is a cached report with the time it was stored
type entry struct {
	report    summary.Report
	timestamp time.Time
}

// SummaryCache is a thread-safe in-memory cache of summary reports.
// Entries expire after the configured TTL and every write to the
// transaction store clears the whole cache. Each Clear starts a new
// generation, and reports computed in an older generation are not stored.
type SummaryCache struct {
	entries    map[string]entry
	expiration time.Duration
	generation uint64
	mutex      sync.RWMutex
	now        func() time.Time
}

// NewSummaryCache creates a cache whose entries live for ttl. A zero ttl disables caching.
func NewSummaryCache(ttl time.Duration) *SummaryCache {
	return &SummaryCache{
		entries:    make(map[string]entry),
		expiration: ttl,
		now:        time.Now,
	}
}

// Get returns the report stored under key if present and not expired
func (c *SummaryCache) Get(key string) (summary.Report, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.timestamp) > c.expiration {
		return summary.Report{}, false
	}
	return e.report, true
}

// Generation returns the current generation. Read it before loading the data
// a report is computed from, and pass it to Put.
func (c *SummaryCache) Generation() uint64 {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.generation
}

// Put stores a report under key and drops expired entries. The report is
// discarded when the cache was cleared since generation was read.
func (c *SummaryCache) Put(key string, report summary.Report, generation uint64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.expiration <= 0 || generation != c.generation {
		return
	}

	now := c.now()
	c.cleanExpiredLocked(now)
	c.entries[key] = entry{report: report, timestamp: now}
}

// Clear removes every entry and starts a new generation
func (c *SummaryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]entry)
	c.generation++
}

// SetExpiration changes the entry lifetime
func (c *SummaryCache) SetExpiration(ttl time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.expiration = ttl
}

// Size returns the number of stored entries, expired or not
func (c *SummaryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.entries)
}

// CleanExpired removes expired entries and returns how many were removed
func (c *SummaryCache) CleanExpired() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.cleanExpiredLocked(c.now())
}

func (c *SummaryCache) cleanExpiredLocked(now time.Time) int {
	count := 0
	for key, e := range c.entries {
		if now.Sub(e.timestamp) > c.expiration {
			delete(c.entries, key)
			count++
		}
	}
	return count
}
