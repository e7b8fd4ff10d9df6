package smbclient

import (
	"strings"
	"sync"
	"time"
)

// defaultMaxCacheEntries bounds the resolution cache.
const defaultMaxCacheEntries = 256

// resolutionCache remembers successful address resolutions across
// sessions. Entries expire after ttl; the least recently used entry is
// evicted when the cache is full. A nil cache never hits.
type resolutionCache struct {
	mu          sync.Mutex
	ttl         time.Duration
	maxEntries  int
	entries     map[string]*resolutionCacheEntry
	accessOrder []string // LRU tracking
	now         func() time.Time
}

type resolutionCacheEntry struct {
	res      Resolution
	cachedAt time.Time
}

// newResolutionCache returns nil when ttl disables caching.
func newResolutionCache(ttl time.Duration, maxEntries int) *resolutionCache {
	if ttl <= 0 {
		return nil
	}
	if maxEntries <= 0 {
		maxEntries = defaultMaxCacheEntries
	}
	return &resolutionCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]*resolutionCacheEntry),
		now:        time.Now,
	}
}

func cacheKey(identifier, domain string) string {
	return strings.ToLower(identifier) + "|" + strings.ToLower(domain)
}

func (c *resolutionCache) get(identifier, domain string) (Resolution, bool) {
	if c == nil {
		return Resolution{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(identifier, domain)
	entry, ok := c.entries[key]
	if !ok {
		return Resolution{}, false
	}
	if c.now().Sub(entry.cachedAt) > c.ttl {
		delete(c.entries, key)
		c.untrack(key)
		return Resolution{}, false
	}
	c.trackAccess(key)
	return entry.res, true
}

func (c *resolutionCache) put(identifier, domain string, res Resolution) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(identifier, domain)
	c.entries[key] = &resolutionCacheEntry{res: res, cachedAt: c.now()}
	c.trackAccess(key)
	c.evictIfNeeded()
}

func (c *resolutionCache) invalidateAll() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*resolutionCacheEntry)
	c.accessOrder = c.accessOrder[:0]
}

func (c *resolutionCache) len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *resolutionCache) untrack(key string) {
	for i, k := range c.accessOrder {
		if k == key {
			c.accessOrder = append(c.accessOrder[:i], c.accessOrder[i+1:]...)
			return
		}
	}
}

// trackAccess moves key to the most recently used end.
func (c *resolutionCache) trackAccess(key string) {
	c.untrack(key)
	c.accessOrder = append(c.accessOrder, key)
}

// evictIfNeeded evicts oldest entries if cache is full.
func (c *resolutionCache) evictIfNeeded() {
	for len(c.entries) > c.maxEntries && len(c.accessOrder) > 0 {
		oldest := c.accessOrder[0]
		c.accessOrder = c.accessOrder[1:]
		delete(c.entries, oldest)
	}
}
