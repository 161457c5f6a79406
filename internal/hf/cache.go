package hf

import (
	"sync"
	"time"
)

// responseCache is a short-lived cache for inference responses, keyed by
// input text and model. It is advisory: losing an entry only causes a
// repeated call, never a correctness issue.
type responseCache struct {
	ttl     time.Duration
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	at  time.Time
	val any
}

func newResponseCache(ttl time.Duration) *responseCache {
	return &responseCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (c *responseCache) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Since(e.at) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.val, true
}

func (c *responseCache) set(key string, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{at: time.Now(), val: val}
}
