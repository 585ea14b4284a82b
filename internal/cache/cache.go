// Package cache provides the in-memory result cache: a capacity-bounded,
// TTL-bounded store mapping scan fingerprints to previously assembled
// results. Eviction is least-recently-used ranked by last successful read;
// expiry is lazy, checked on access, with an optional periodic sweeper.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Exported constants.
const (
	// DefaultCapacity is the default maximum number of entries.
	DefaultCapacity = 1000
	// DefaultTTL is the default entry time-to-live.
	DefaultTTL = 5 * time.Minute
)

// Stats is a point-in-time snapshot of cache counters. Hits plus misses
// always equals the total number of Get calls made so far.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	// Expired counts entries found stale during a Get or a sweep.
	Expired int64 `json:"expired"`
	Size    int   `json:"size"`
	Capacity int  `json:"capacity"`
}

// EntryInfo describes a single cache entry for introspection.
type EntryInfo struct {
	Key          string        `json:"key"`
	CreatedAt    time.Time     `json:"createdAt"`
	ExpiresAt    time.Time     `json:"expiresAt"`
	LastAccessed time.Time     `json:"lastAccessed"`
	AccessCount  int64         `json:"accessCount"`
	TTLRemaining time.Duration `json:"ttlRemaining"`
}

type entry struct {
	key          string
	value        any
	createdAt    time.Time
	expiresAt    time.Time
	lastAccessed time.Time
	accessCount  int64
}

// Cache is safe for concurrent use: a single mutex serializes all mutations,
// and no filesystem or other I/O ever happens under the lock.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	entries  map[string]*list.Element
	// order is the recency ledger: front = most recently read.
	order *list.List
	stats Stats
	now   func() time.Time
}

// New creates a Cache with the given capacity and default TTL. Non-positive
// arguments fall back to the package defaults.
func New(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Cache{
		capacity: capacity,
		ttl:      ttl,
		entries:  make(map[string]*list.Element, capacity),
		order:    list.New(),
		now:      time.Now,
	}
}

// Get returns the cached value for key. An entry past its TTL is treated as
// absent: it is purged, counted as expired, and the call counts as a miss.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.entries[key]
	if !ok {
		c.stats.Misses++

		return nil, false
	}

	ent := element.Value.(*entry)
	if c.now().After(ent.expiresAt) {
		c.removeLocked(element)
		c.stats.Expired++
		c.stats.Misses++

		return nil, false
	}

	// Recency is ranked by last successful read.
	c.order.MoveToFront(element)
	ent.accessCount++
	ent.lastAccessed = c.now()
	c.stats.Hits++

	return ent.value, true
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetTTL(key, value, c.ttl)
}

// SetTTL stores value under key with an explicit TTL. Refreshing an existing
// key replaces its value and expiry but does not promote its recency; only
// reads do that. At capacity, the least-recently-read entry is evicted
// first.
func (c *Cache) SetTTL(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	if element, ok := c.entries[key]; ok {
		ent := element.Value.(*entry)
		ent.value = value
		ent.createdAt = now
		ent.expiresAt = now.Add(ttl)

		return
	}

	for len(c.entries) >= c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.removeLocked(oldest)
		c.stats.Evictions++
	}

	ent := &entry{
		key:          key,
		value:        value,
		createdAt:    now,
		expiresAt:    now.Add(ttl),
		lastAccessed: now,
	}
	c.entries[key] = c.order.PushFront(ent)
}

// Delete removes key, reporting whether it was present.
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.entries[key]
	if !ok {
		return false
	}
	c.removeLocked(element)

	return true
}

// Clear removes all entries and resets counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element, c.capacity)
	c.order.Init()
	c.stats = Stats{}
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := c.stats
	snapshot.Size = len(c.entries)
	snapshot.Capacity = c.capacity

	return snapshot
}

// EntryInfo returns introspection data for key, without touching recency or
// hit counters.
func (c *Cache) EntryInfo(key string) (EntryInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.entries[key]
	if !ok {
		return EntryInfo{}, false
	}

	ent := element.Value.(*entry)
	remaining := ent.expiresAt.Sub(c.now())
	if remaining < 0 {
		remaining = 0
	}

	return EntryInfo{
		Key:          ent.key,
		CreatedAt:    ent.createdAt,
		ExpiresAt:    ent.expiresAt,
		LastAccessed: ent.lastAccessed,
		AccessCount:  ent.accessCount,
		TTLRemaining: remaining,
	}, true
}

// ExtendTTL pushes out an unexpired entry's expiry by the given duration.
// Returns false if the key is absent or already expired.
func (c *Cache) ExtendTTL(key string, extra time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.entries[key]
	if !ok {
		return false
	}

	ent := element.Value.(*entry)
	if c.now().After(ent.expiresAt) {
		return false
	}
	ent.expiresAt = ent.expiresAt.Add(extra)

	return true
}

// Sweep removes all expired entries and returns how many were reclaimed.
// Correctness never requires this; it only reclaims memory early.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for element := c.order.Back(); element != nil; {
		prev := element.Prev()
		if now.After(element.Value.(*entry).expiresAt) {
			c.removeLocked(element)
			c.stats.Expired++
			removed++
		}
		element = prev
	}

	return removed
}

// StartSweeper runs Sweep every interval until the returned stop function is
// called.
func (c *Cache) StartSweeper(interval time.Duration) (stop func()) {
	done := make(chan struct{})
	var once sync.Once

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Sweep()
			case <-done:
				return
			}
		}
	}()

	return func() { once.Do(func() { close(done) }) }
}

func (c *Cache) removeLocked(element *list.Element) {
	ent := element.Value.(*entry)
	delete(c.entries, ent.key)
	c.order.Remove(element)
}
