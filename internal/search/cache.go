package search

import (
	"sync"
	"time"
)

// DefaultTTL is how long a cached search response stays valid.
const DefaultTTL = 3600 * time.Second

type cacheKey struct {
	phrase string
	kind   Kind
}

type cacheEntry struct {
	response *Response
	storedAt time.Time
}

// Cache temporarily stores search responses keyed by phrase and kind. Expiry
// is passive: stale entries are evicted when they are looked up.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[cacheKey]cacheEntry
}

// NewCache creates a Cache with the given TTL. Non-positive TTLs fall back to
// [DefaultTTL].
func NewCache(ttl time.Duration) *Cache {
	return NewCacheWithClock(ttl, time.Now)
}

// NewCacheWithClock creates a Cache that reads the current time from the given
// clock, so expiry can be driven deterministically.
func NewCacheWithClock(ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{
		ttl:     ttl,
		now:     now,
		entries: make(map[cacheKey]cacheEntry),
	}
}

// Get returns the cached response for an equal request, if it is still fresh.
// A stale entry is evicted and reported as a miss.
func (c *Cache) Get(req Request) (*Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey{phrase: req.Phrase, kind: req.Kind}
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return entry.response, true
}

// Put stores a response under the request's phrase and kind, stamped with the
// request timestamp.
func (c *Cache) Put(req Request, response *Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey{phrase: req.Phrase, kind: req.Kind}
	c.entries[key] = cacheEntry{response: response, storedAt: req.Timestamp}
}

// Len returns the number of stored entries, stale ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
