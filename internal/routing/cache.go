package routing

import (
	"crypto/md5"
	"fmt"
	"strings"
	"sync"
	"time"

	"fieldwatch-backend/internal/models"
)

// Cache memoizes recent route selections to spare the external engines.
// Entries expire lazily on lookup; the oldest entry is evicted when full.
type Cache struct {
	mu         sync.RWMutex
	entries    map[string]*cacheEntry
	maxEntries int
	ttl        time.Duration
}

type cacheEntry struct {
	result       models.RouteResult
	createdAt    time.Time
	lastAccessed time.Time
}

// NewCache builds a route cache. Non-positive arguments select the
// defaults (500 entries, 15 minutes).
func NewCache(maxEntries int, ttl time.Duration) *Cache {
	if maxEntries <= 0 {
		maxEntries = 500
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Cache{
		entries:    make(map[string]*cacheEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
	}
}

// signature builds a cache key from the leg endpoints, quantized to four
// decimals (~11 m) so near-identical requests share an entry.
func signature(legs []Leg) string {
	parts := make([]string, 0, len(legs))
	for _, leg := range legs {
		parts = append(parts, fmt.Sprintf("%.4f,%.4f_%.4f,%.4f",
			leg.From.Lat, leg.From.Lng, leg.To.Lat, leg.To.Lng))
	}
	hash := md5.Sum([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%x", hash[:8])
}

// Get returns a copy of the cached result for these legs, if fresh.
func (c *Cache) Get(legs []Leg) (*models.RouteResult, bool) {
	key := signature(legs)

	c.mu.RLock()
	entry, found := c.entries[key]
	c.mu.RUnlock()

	if !found {
		return nil, false
	}

	if time.Since(entry.createdAt) > c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}

	c.mu.Lock()
	entry.lastAccessed = time.Now()
	result := entry.result
	c.mu.Unlock()

	return &result, true
}

// Set stores a result, evicting the least recently used entry when full.
func (c *Cache) Set(legs []Leg, result *models.RouteResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}

	now := time.Now()
	c.entries[signature(legs)] = &cacheEntry{
		result:       *result,
		createdAt:    now,
		lastAccessed: now,
	}
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.entries {
		if oldestKey == "" || entry.lastAccessed.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.lastAccessed
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
