package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheItem pairs a cached value with its expiry.
type CacheItem[V any] struct {
	Data      V
	ExpiresAt time.Time
}

// Cache is a size-bounded LRU whose entries also expire after a TTL.
type Cache[V any] struct {
	lruCache *lru.Cache[string, CacheItem[V]]
	ttl      time.Duration
}

// NewCache creates a cache holding at most size entries for ttl each.
func NewCache[V any](size int, ttl time.Duration) (*Cache[V], error) {
	l, err := lru.New[string, CacheItem[V]](size)
	if err != nil {
		return nil, err
	}
	return &Cache[V]{lruCache: l, ttl: ttl}, nil
}

// Set stores data under key.
func (c *Cache[V]) Set(key string, data V) {
	c.lruCache.Add(key, CacheItem[V]{
		Data:      data,
		ExpiresAt: time.Now().Add(c.ttl),
	})
}

// Get returns the cached value, or false when missing or expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	val, ok := c.lruCache.Get(key)
	if !ok {
		var zero V
		return zero, false
	}

	if time.Now().After(val.ExpiresAt) {
		c.lruCache.Remove(key)
		var zero V
		return zero, false
	}

	return val.Data, true
}

// Delete removes key.
func (c *Cache[V]) Delete(key string) {
	c.lruCache.Remove(key)
}
