// Package memcache provides the shared in-memory result cache: a bounded,
// time-expiring key/value store used by the metadata resolver and the
// translation engine. The cache is advisory — a cold cache never changes
// correctness, only latency.
package memcache

import (
	"log"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultMaxItems = 500
	DefaultTTL      = 24 * time.Hour
)

// Cache is a bounded LRU with a fixed TTL applied to every entry.
type Cache struct {
	lru   *expirable.LRU[string, any]
	debug bool
}

// New creates a cache with the given capacity and TTL. Non-positive values
// fall back to the defaults.
func New(maxItems int, ttl time.Duration, debug bool) *Cache {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	onEvict := func(key string, _ any) {
		if debug {
			log.Printf("[cache] EVICT: %s", key)
		}
	}
	log.Printf("[cache] initialized (max=%d ttl=%s)", maxItems, ttl)
	return &Cache{
		lru:   expirable.NewLRU[string, any](maxItems, onEvict, ttl),
		debug: debug,
	}
}

// Get returns the cached value for key, if present and not expired.
func (c *Cache) Get(key string) (any, bool) {
	v, ok := c.lru.Get(key)
	if c.debug {
		if ok {
			log.Printf("[cache] HIT: %s", key)
		} else {
			log.Printf("[cache] MISS: %s", key)
		}
	}
	return v, ok
}

// Set stores a value under key, evicting the least-recently-used entry when
// the cache is full.
func (c *Cache) Set(key string, v any) {
	if c.debug {
		log.Printf("[cache] SET: %s", key)
	}
	c.lru.Add(key, v)
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}
