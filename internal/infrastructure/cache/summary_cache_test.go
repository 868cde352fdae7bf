package cache

import (
	"testing"
	"time"

	"github.com/damon-houk/finance-tracker/internal/domain/summary"
	"github.com/stretchr/testify/assert"
)

func TestSummaryCache(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	c := NewSummaryCache(time.Minute)
	c.now = func() time.Time { return now }

	assert.Equal(t, 0, c.Size())

	report := summary.Report{TotalSpent: 50, Count: 1}
	c.Put("first_seen|Food=100", report, c.Generation())
	assert.Equal(t, 1, c.Size())

	got, ok := c.Get("first_seen|Food=100")
	assert.True(t, ok)
	assert.Equal(t, 50.0, got.TotalSpent)

	_, ok = c.Get("chronological|")
	assert.False(t, ok)

	// Expiration
	now = now.Add(2 * time.Minute)
	_, ok = c.Get("first_seen|Food=100")
	assert.False(t, ok)
	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, 0, c.Size())

	// Put drops expired entries
	c.Put("a", report, c.Generation())
	now = now.Add(2 * time.Minute)
	c.Put("b", report, c.Generation())
	assert.Equal(t, 1, c.Size())

	// Clear
	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestSummaryCacheDisabled(t *testing.T) {
	c := NewSummaryCache(0)
	c.Put("key", summary.Report{TotalSpent: 1}, c.Generation())

	assert.Equal(t, 0, c.Size())
	_, ok := c.Get("key")
	assert.False(t, ok)

	c.SetExpiration(time.Hour)
	c.Put("key", summary.Report{TotalSpent: 1}, c.Generation())
	_, ok = c.Get("key")
	assert.True(t, ok)
}

func TestSummaryCacheDropsReportsFromEarlierGeneration(t *testing.T) {
	c := NewSummaryCache(time.Minute)

	before := c.Generation()
	c.Clear()
	assert.NotEqual(t, before, c.Generation())

	c.Put("first_seen|", summary.Report{Count: 0}, before)
	assert.Equal(t, 0, c.Size())
	_, ok := c.Get("first_seen|")
	assert.False(t, ok)

	c.Put("first_seen|", summary.Report{Count: 1}, c.Generation())
	got, ok := c.Get("first_seen|")
	assert.True(t, ok)
	assert.Equal(t, 1, got.Count)
}
