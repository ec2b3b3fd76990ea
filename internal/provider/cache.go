package provider

import (
	"sync"
	"time"
)

type cacheEntry[T any] struct {
	value    T
	storedAt time.Time
}

// resultCache keeps the last result per key for the process lifetime. Entries past the
// TTL are not served as hits but stay available for stale fallback until retention.
type resultCache[T any] struct {
	mu        sync.Mutex
	items     map[string]cacheEntry[T]
	retention time.Duration
}

func newResultCache[T any](retention time.Duration) *resultCache[T] {
	return &resultCache[T]{
		items:     make(map[string]cacheEntry[T]),
		retention: retention,
	}
}

func (c *resultCache[T]) get(key string) (cacheEntry[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items[key]
	return e, ok
}

func (c *resultCache[T]) put(key string, v T, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = cacheEntry[T]{value: v, storedAt: at}

	if c.retention <= 0 {
		return
	}
	for k, e := range c.items {
		if at.Sub(e.storedAt) > c.retention {
			delete(c.items, k)
		}
	}
}

func (c *resultCache[T]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
