package places

import (
	"sync"
	"time"
)

// maxCacheEntries bounds the cache; expired entries are swept when it fills.
const maxCacheEntries = 10_000

type cacheItem struct {
	value  []byte
	expiry time.Time
}

// cache is a TTL cache of raw upstream responses keyed by request.
type cache struct {
	mu    sync.RWMutex
	items map[string]cacheItem
	ttl   time.Duration
	now   func() time.Time
}

func newCache(ttl time.Duration) *cache {
	return &cache{
		items: make(map[string]cacheItem),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (c *cache) get(key string) ([]byte, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, found := c.items[key]
	if !found || c.now().After(item.expiry) {
		return nil, false
	}
	return item.value, true
}

func (c *cache) set(key string, value []byte) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if len(c.items) >= maxCacheEntries {
		for k, v := range c.items {
			if now.After(v.expiry) {
				delete(c.items, k)
			}
		}
		// Still full: drop everything rather than grow without bound.
		if len(c.items) >= maxCacheEntries {
			clear(c.items)
		}
	}
	c.items[key] = cacheItem{value: value, expiry: now.Add(c.ttl)}
}

func (c *cache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
