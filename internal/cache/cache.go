package cache

import (
	"sync"
	"time"
)

// TTL tiers for probe results
const (
	// Fast - inventory snapshots, mount tables
	TTLFast = 5 * time.Second

	// Slow - tool availability
	TTLSlow = 1 * time.Hour
)

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// Cache provides thread-safe TTL-based memoization for expensive external
// probes (lsblk, blkid, which).
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

func New() *Cache {
	return &Cache{entries: make(map[string]*entry)}
}

// Get retrieves a value, returning nil if expired or not found.
func (c *Cache) Get(key string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil
	}
	return e.value
}

// Set stores a value with the given TTL.
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &entry{value: value, expiresAt: time.Now().Add(ttl)}
}

// SetFast stores fast-expiring data.
func (c *Cache) SetFast(key string, value interface{}) {
	c.Set(key, value, TTLFast)
}

// SetSlow stores slow-moving data.
func (c *Cache) SetSlow(key string, value interface{}) {
	c.Set(key, value, TTLSlow)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

var (
	global *Cache
	once   sync.Once
)

// Global returns the process-wide cache instance.
func Global() *Cache {
	once.Do(func() {
		global = New()
	})
	return global
}
