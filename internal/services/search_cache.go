package services

import (
	"sync"
	"time"

	"github.com/codyseavey/tcg-search/internal/metrics"
)

const (
	DefaultSearchCacheTTL     = 5 * time.Minute
	DefaultSearchCacheCeiling = 100
)

// SearchCache holds upstream payloads keyed by canonical query. It is local
// to one process. Entries are never expired by a timer: a stale entry is
// simply ignored on read, and expired entries are swept only when an
// insert pushes the table above its ceiling.
type SearchCache struct {
	mu      sync.Mutex
	entries map[string]searchCacheEntry
	ttl     time.Duration
	ceiling int
	now     func() time.Time
}

type searchCacheEntry struct {
	response   ProviderResponse
	insertedAt time.Time
}

func NewSearchCache(ttl time.Duration, ceiling int) *SearchCache {
	if ttl <= 0 {
		ttl = DefaultSearchCacheTTL
	}
	if ceiling <= 0 {
		ceiling = DefaultSearchCacheCeiling
	}
	return &SearchCache{
		entries: make(map[string]searchCacheEntry),
		ttl:     ttl,
		ceiling: ceiling,
		now:     time.Now,
	}
}

// Get returns the payload stored under key if it is younger than the TTL.
func (c *SearchCache) Get(key string) (ProviderResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.insertedAt) >= c.ttl {
		return nil, false
	}
	return entry.response, true
}

// Set stores resp under key, replacing whatever was there.
func (c *SearchCache) Set(key string, resp ProviderResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = searchCacheEntry{response: resp, insertedAt: c.now()}
	if len(c.entries) > c.ceiling {
		if n := c.evictExpired(); n > 0 {
			metrics.SearchCacheEvictions.Add(float64(n))
		}
	}
	metrics.SearchCacheEntries.Set(float64(len(c.entries)))
}

func (c *SearchCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictExpired drops every entry older than the TTL. Caller holds c.mu.
func (c *SearchCache) evictExpired() int {
	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if now.Sub(entry.insertedAt) >= c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}
