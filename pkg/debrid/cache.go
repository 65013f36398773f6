package debrid

import (
	"sync"
	"time"
)

// cache.go implements the bounded TTL unrestrict-response cache (§3
// UnrestrictCacheEntry, §8 boundary: 10,001st entry triggers eviction).

const (
	unrestrictTTL   = time.Hour
	maxCacheEntries = 10000
)

type cacheEntry struct {
	response UnrestrictResponse
	cachedAt time.Time
}

type unrestrictCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	order   []string
}

func newUnrestrictCache() *unrestrictCache {
	return &unrestrictCache{entries: make(map[string]cacheEntry)}
}

// Get returns the cached response for link if present and not expired.
func (c *unrestrictCache) Get(link string) (UnrestrictResponse, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[link]
	if !ok || time.Since(entry.cachedAt) > unrestrictTTL {
		return UnrestrictResponse{}, false
	}
	return entry.response, true
}

// Put stores a fresh response, evicting expired and then oldest entries
// when the cache grows past maxCacheEntries.
func (c *unrestrictCache) Put(link string, resp UnrestrictResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[link]; !exists {
		c.order = append(c.order, link)
	}
	c.entries[link] = cacheEntry{response: resp, cachedAt: time.Now()}

	if len(c.entries) > maxCacheEntries {
		c.evictLocked()
	}
}

func (c *unrestrictCache) evictLocked() {
	fresh := c.order[:0]
	for _, link := range c.order {
		entry, ok := c.entries[link]
		if !ok {
			continue
		}
		if time.Since(entry.cachedAt) > unrestrictTTL {
			delete(c.entries, link)
			continue
		}
		fresh = append(fresh, link)
	}
	c.order = fresh

	for len(c.entries) > maxCacheEntries && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// Len reports the current entry count, for tests.
func (c *unrestrictCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
