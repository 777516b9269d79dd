// Package cache provides the LRU cache behind the database's lookup indices.
package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"

	"github.com/FocuswithJustin/GlobalPhone/core/metadata"
)

// Cache is a generic LRU cache interface.
type Cache[K comparable, V any] interface {
	// Get retrieves a value from the cache.
	Get(key K) (V, bool)

	// Put stores a value in the cache.
	Put(key K, value V)

	// PutIfAbsent stores value unless key is already present, and returns
	// the value that ends up cached.
	PutIfAbsent(key K, value V) V

	// Remove removes a value from the cache.
	Remove(key K)

	// Clear removes all entries from the cache.
	Clear()

	// Len returns the number of entries in the cache.
	Len() int

	// Stats returns cache statistics.
	Stats() Stats
}

// Stats contains cache statistics.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
	MaxSize   int
}

// Config contains cache configuration options.
type Config struct {
	// MaxSize is the maximum number of entries (0 = unlimited).
	MaxSize int

	// TTL is the time-to-live for entries (0 = no expiration).
	TTL time.Duration

	// OnEvict is called when an entry is evicted.
	OnEvict func(key, value any)
}

// DefaultConfig returns a default cache configuration.
func DefaultConfig() Config {
	return Config{
		MaxSize: 100,
	}
}

// Permanent returns a configuration that never evicts.
func Permanent() Config {
	return Config{}
}

// entry represents a cache entry.
type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
}

// lruCache is a thread-safe LRU cache implementation.
type lruCache[K comparable, V any] struct {
	mu        sync.Mutex
	config    Config
	entries   map[K]*list.Element
	evictList *list.List
	stats     Stats
}

// NewLRUCache creates a new LRU cache with the given configuration.
func NewLRUCache[K comparable, V any](config Config) Cache[K, V] {
	if config.MaxSize < 0 {
		config.MaxSize = 0
	}

	return &lruCache[K, V]{
		config:    config,
		entries:   make(map[K]*list.Element),
		evictList: list.New(),
	}
}

// Get retrieves a value from the cache.
func (c *lruCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.live(key)
	if !ok {
		c.stats.Misses++
		var zero V
		return zero, false
	}
	c.stats.Hits++
	return e.value, true
}

// live returns the unexpired entry for key and marks it most recently used.
// The caller holds c.mu.
func (c *lruCache[K, V]) live(key K) (*entry[K, V], bool) {
	ent, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	e := ent.Value.(*entry[K, V])
	if c.config.TTL > 0 && time.Now().After(e.expiresAt) {
		c.removeElement(ent)
		return nil, false
	}
	c.evictList.MoveToFront(ent)
	return e, true
}

// Put stores a value in the cache.
func (c *lruCache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.entries[key]; ok {
		c.evictList.MoveToFront(ent)
		e := ent.Value.(*entry[K, V])
		e.value = value
		c.touch(e)
		return
	}
	c.insert(key, value)
}

// PutIfAbsent stores value unless a live entry exists for key.
func (c *lruCache[K, V]) PutIfAbsent(key K, value V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.live(key); ok {
		return e.value
	}
	c.insert(key, value)
	return value
}

func (c *lruCache[K, V]) touch(e *entry[K, V]) {
	if c.config.TTL > 0 {
		e.expiresAt = time.Now().Add(c.config.TTL)
	}
}

// insert adds a new entry and evicts the oldest one when over capacity.
// The caller holds c.mu.
func (c *lruCache[K, V]) insert(key K, value V) {
	e := &entry[K, V]{key: key, value: value}
	c.touch(e)
	c.entries[key] = c.evictList.PushFront(e)

	if c.config.MaxSize > 0 && c.evictList.Len() > c.config.MaxSize {
		c.removeOldest()
	}
}

// Remove removes a value from the cache.
func (c *lruCache[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.entries[key]; ok {
		c.removeElement(ent)
	}
}

// Clear removes all entries from the cache.
func (c *lruCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]*list.Element)
	c.evictList.Init()
}

// Len returns the number of entries in the cache.
func (c *lruCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

// Stats returns cache statistics.
func (c *lruCache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Size = c.evictList.Len()
	s.MaxSize = c.config.MaxSize
	return s
}

// removeOldest removes the oldest entry from the cache.
func (c *lruCache[K, V]) removeOldest() {
	ent := c.evictList.Back()
	if ent != nil {
		c.removeElement(ent)
		c.stats.Evictions++
	}
}

// removeElement removes an element from the cache.
func (c *lruCache[K, V]) removeElement(ent *list.Element) {
	c.evictList.Remove(ent)
	e := ent.Value.(*entry[K, V])
	delete(c.entries, e.key)

	if c.config.OnEvict != nil {
		c.config.OnEvict(e.key, e.value)
	}
}

// TerritoryCache maps territory names, in any casing, to resolved
// territories. Entries are never evicted.
type TerritoryCache struct {
	cache Cache[string, *metadata.Territory]
}

// NewTerritoryCache creates an empty territory cache.
func NewTerritoryCache() *TerritoryCache {
	return &TerritoryCache{
		cache: NewLRUCache[string, *metadata.Territory](Permanent()),
	}
}

func territoryKey(name string) string {
	return strings.ToUpper(name)
}

// Get returns the cached territory for name.
func (c *TerritoryCache) Get(name string) (*metadata.Territory, bool) {
	return c.cache.Get(territoryKey(name))
}

// Resolve returns the cached territory for name, calling find on a miss and
// caching what it returns. Misses are not cached. When two callers race on
// the same miss, both get the entry that was stored first.
func (c *TerritoryCache) Resolve(name string, find func(name string) (*metadata.Territory, bool)) (*metadata.Territory, bool) {
	key := territoryKey(name)
	if t, ok := c.cache.Get(key); ok {
		return t, true
	}
	t, ok := find(name)
	if !ok {
		return nil, false
	}
	return c.cache.PutIfAbsent(key, t), true
}

// Len returns the number of cached territories.
func (c *TerritoryCache) Len() int {
	return c.cache.Len()
}

// Stats returns cache statistics.
func (c *TerritoryCache) Stats() Stats {
	return c.cache.Stats()
}
