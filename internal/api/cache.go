package api

import (
	"sync"
	"time"
)

type lookup string

const (
	lookupHit   lookup = "hit"
	lookupMiss  lookup = "miss"
	lookupStale lookup = "stale"
)

type cacheEntry struct {
	body      []byte
	fetchedAt time.Time
}

// responseCache holds raw response bodies keyed by request URL. Entries are
// never expired by a timer; a stale entry is dropped when it is next looked up.
type responseCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	window  time.Duration
}

func newResponseCache(window time.Duration) *responseCache {
	return &responseCache{
		entries: make(map[string]cacheEntry),
		window:  window,
	}
}

func (c *responseCache) Get(key string, now time.Time) ([]byte, lookup) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, lookupMiss
	}
	if now.Sub(e.fetchedAt) >= c.window {
		c.mu.Lock()
		// a concurrent Set may have replaced it in the meantime
		if cur, ok := c.entries[key]; ok && cur.fetchedAt.Equal(e.fetchedAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, lookupStale
	}
	return e.body, lookupHit
}

func (c *responseCache) Set(key string, body []byte, now time.Time) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{body: body, fetchedAt: now}
	c.mu.Unlock()
}

func (c *responseCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *responseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
