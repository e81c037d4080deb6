// Package cache implements the response cache (C8): a TTL-keyed store with
// {value, expires_at, hit_count, last_accessed} entries, bounded size with
// ~25%-least-hit eviction, and a background sweep that never blocks a
// caller's Get/Set.
//
// Grounded on Regentag-go1090/mode_s/decoder.go's icao_cache
// (patrickmn/go-cache), which expires stale ICAO addresses via a
// background janitor goroutine. go-cache's own API has no hit-count or
// last-accessed bookkeeping and no eviction-by-hit-count (just TTL expiry),
// so the storage here is hand-rolled, reusing only the janitor-sweep shape.
package cache

import (
	"sync"
	"time"
)

// Entry is one cached response.
type Entry struct {
	Value        interface{}
	ExpiresAt    time.Time
	HitCount     int
	LastAccessed time.Time
}

// Cache is a bounded, TTL-expiring, hit-count-evicting response cache keyed
// by a caller-supplied fingerprint string (see Fingerprint in
// internal/dispatch for how request fingerprints are derived).
type Cache struct {
	mu       sync.Mutex
	entries  map[string]*Entry
	maxSize  int
	ttl      time.Duration
	now      func() time.Time
	stopOnce sync.Once
	stopCh   chan struct{}
}

// New creates a Cache with the given default TTL and maximum entry count.
func New(ttl time.Duration, maxSize int) *Cache {
	return NewWithClock(ttl, maxSize, time.Now)
}

// NewWithClock is New with an injectable clock, for deterministic tests of
// expiry behavior.
func NewWithClock(ttl time.Duration, maxSize int, now func() time.Time) *Cache {
	return &Cache{
		entries: make(map[string]*Entry),
		maxSize: maxSize,
		ttl:     ttl,
		now:     now,
		stopCh:  make(chan struct{}),
	}
}

// Get returns the cached value for key. It returns (nil, false) if absent
// or expired; an expired entry found during Get is dropped immediately, so
// no entry with expires_at <= now() is ever returned. A hit updates
// HitCount and LastAccessed.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.ExpiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	e.HitCount++
	e.LastAccessed = c.now()
	return e.Value, true
}

// Set inserts or replaces the entry for key with the cache's default TTL.
// If the cache holds more than its maximum size after inserting, SetWithTTL
// evicts roughly the 25% least-hit entries.
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL is Set with a caller-supplied TTL override.
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.entries[key] = &Entry{
		Value:        value,
		ExpiresAt:    now.Add(ttl),
		LastAccessed: now,
	}
	c.evictIfNeededLocked()
}

// evictIfNeededLocked drops roughly the 25% least-hit entries once the
// cache exceeds maxSize. Caller must hold c.mu.
func (c *Cache) evictIfNeededLocked() {
	if c.maxSize <= 0 || len(c.entries) <= c.maxSize {
		return
	}
	type kv struct {
		key string
		hit int
	}
	all := make([]kv, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, kv{k, e.HitCount})
	}
	toEvict := len(all) / 4
	if toEvict < len(all)-c.maxSize {
		toEvict = len(all) - c.maxSize
	}
	// partial selection sort for the toEvict lowest hit counts; cache sizes
	// in practice are small (max_cache_size is a config knob, not unbounded).
	for i := 0; i < toEvict && i < len(all); i++ {
		minIdx := i
		for j := i + 1; j < len(all); j++ {
			if all[j].hit < all[minIdx].hit {
				minIdx = j
			}
		}
		all[i], all[minIdx] = all[minIdx], all[i]
		delete(c.entries, all[i].key)
	}
}

// Size returns the number of entries currently stored, including any not
// yet reaped by a sweep but already expired.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Entry)
}

// StartSweep launches a background goroutine that removes expired entries
// every interval, mirroring go-cache's janitor. It never holds the lock for
// longer than a single scan-and-delete pass, so it never blocks a caller's
// Get/Set for more than that. Call the returned stop func to end the
// goroutine. A non-positive interval (a zero CacheTTL, say) starts no
// goroutine at all and returns a no-op stop: time.NewTicker panics on
// interval <= 0, and entries already expire lazily on Get in that case.
func (c *Cache) StartSweep(interval time.Duration) (stop func()) {
	if interval <= 0 {
		return func() {}
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.sweepOnce()
			case <-c.stopCh:
				return
			}
		}
	}()
	return func() {
		c.stopOnce.Do(func() { close(c.stopCh) })
	}
}

func (c *Cache) sweepOnce() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, e := range c.entries {
		if !now.Before(e.ExpiresAt) {
			delete(c.entries, k)
		}
	}
}
