package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is a TTL key/value store over opaque serialized payloads.
// Get returns ok=false for a missing or expired key; after expiry a key
// behaves exactly like one that was never written. Set is a full
// replacement; concurrent writers to the same key are last-write-wins.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// InMemoryCache implements Cache with a map and expire-on-access eviction.
// Safe for concurrent use; the refresh jobs write from many goroutines.
type InMemoryCache struct {
	mu   sync.RWMutex
	data map[string]cacheEntry
}

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewInMemoryCache creates an empty in-memory cache.
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{
		data: make(map[string]cacheEntry),
	}
}

// Get retrieves the payload for key if present and not expired.
// Expired entries are removed on access.
func (c *InMemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	entry, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have replaced it.
		if cur, ok := c.data[key]; ok && time.Now().After(cur.expiresAt) {
			delete(c.data, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}

	return entry.value, true, nil
}

// Set stores the payload under key with the given TTL.
func (c *InMemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	c.data[key] = cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
	return nil
}
