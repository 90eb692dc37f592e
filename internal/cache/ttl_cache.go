package cache

import (
	"sync"
	"time"
)

// Cache provides a minimal TTL cache interface for hot-path lookups.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V, ttl time.Duration)
	Delete(key K)
	Invalidate()
}

type cacheEntry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
}

// TTLCache stores values in-memory with per-entry TTLs and an optional
// capacity bound. When full, the oldest inserted entry is evicted —
// insertion order, not least-recently-used.
type TTLCache[K comparable, V any] struct {
	mu       sync.RWMutex
	capacity int
	items    map[K]cacheEntry[K, V]
	order    []K
}

// NewTTLCache constructs an unbounded TTLCache instance.
func NewTTLCache[K comparable, V any]() *TTLCache[K, V] {
	return &TTLCache[K, V]{items: make(map[K]cacheEntry[K, V])}
}

// NewBoundedTTLCache constructs a TTLCache holding at most capacity entries.
// A capacity of zero or less means unbounded.
func NewBoundedTTLCache[K comparable, V any](capacity int) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		capacity: capacity,
		items:    make(map[K]cacheEntry[K, V]),
	}
}

// Get returns a cached value if it exists and has not expired.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.Delete(key)
		return zero, false
	}
	return entry.value, true
}

// Set stores a value with the provided TTL, evicting the oldest inserted
// entry when the cache is at capacity.
func (c *TTLCache[K, V]) Set(key K, value V, ttl time.Duration) {
	if c == nil {
		return
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	c.mu.Lock()
	if _, exists := c.items[key]; !exists {
		if c.capacity > 0 && len(c.items) >= c.capacity {
			c.evictOldestLocked()
		}
		c.order = append(c.order, key)
	}
	c.items[key] = cacheEntry[K, V]{
		key:       key,
		value:     value,
		expiresAt: expiresAt,
	}
	c.mu.Unlock()
}

// Delete removes a cached entry.
func (c *TTLCache[K, V]) Delete(key K) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.removeLocked(key)
	c.mu.Unlock()
}

// Invalidate drops every entry. Used by the explicit refresh action.
func (c *TTLCache[K, V]) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.items = make(map[K]cacheEntry[K, V])
	c.order = nil
	c.mu.Unlock()
}

// Len reports the number of stored entries, expired or not.
func (c *TTLCache[K, V]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *TTLCache[K, V]) evictOldestLocked() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.items, oldest)
}

func (c *TTLCache[K, V]) removeLocked(key K) {
	if _, ok := c.items[key]; !ok {
		return
	}
	delete(c.items, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// NoopCache always returns cache misses and ignores writes.
type NoopCache[K comparable, V any] struct{}

// Get always returns a miss.
func (NoopCache[K, V]) Get(key K) (V, bool) {
	var zero V
	return zero, false
}

// Set is a no-op.
func (NoopCache[K, V]) Set(key K, value V, ttl time.Duration) {}

// Delete is a no-op.
func (NoopCache[K, V]) Delete(key K) {}

// Invalidate is a no-op.
func (NoopCache[K, V]) Invalidate() {}
