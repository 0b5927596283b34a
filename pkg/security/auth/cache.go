package auth

import (
	"sync"
	"time"

	"mercator-hq/ganymede/pkg/config"
)

// cacheEntry is an immutable cached validation outcome. Entries are
// replaced, never mutated.
type cacheEntry struct {
	outcome   ValidationOutcome
	expiresAt time.Time

	// seq is the insertion sequence number, used for oldest-inserted
	// eviction. Re-setting an existing key keeps its original position.
	seq uint64
}

// ValidationCache is a TTL cache mapping key hashes to their last
// validation outcome, avoiding repeated validation calls.
//
// Expired entries are treated as misses and removed on access. A
// background sweep removes expired entries proactively to bound memory.
// When the configured maximum size is exceeded, the oldest-inserted entry
// is evicted first, independent of TTL.
//
// Absence is an ordinary miss, never an error.
type ValidationCache struct {
	config  config.CacheConfig
	entries map[string]*cacheEntry
	nextSeq uint64

	mu        sync.Mutex
	done      chan struct{}
	closeOnce sync.Once

	// now is the clock source, replaceable in tests.
	now func() time.Time
}

// NewValidationCache creates a validation cache and starts the expiry
// sweep. Callers must call Close on shutdown.
func NewValidationCache(cfg config.CacheConfig) *ValidationCache {
	c := &ValidationCache{
		config:  cfg,
		entries: make(map[string]*cacheEntry),
		done:    make(chan struct{}),
		now:     time.Now,
	}

	if cfg.Enabled && cfg.CleanupInterval > 0 {
		go c.sweepLoop()
	}

	return c
}

// Get returns the cached outcome for a key hash. An entry whose TTL has
// passed is removed and reported as a miss.
func (c *ValidationCache) Get(keyHash string) (ValidationOutcome, bool) {
	if !c.config.Enabled {
		return ValidationOutcome{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[keyHash]
	if !ok {
		return ValidationOutcome{}, false
	}

	if c.now().After(entry.expiresAt) {
		delete(c.entries, keyHash)
		return ValidationOutcome{}, false
	}

	return entry.outcome, true
}

// Set stores a validation outcome under the key hash with the given TTL.
// A non-positive ttl falls back to the configured default.
func (c *ValidationCache) Set(keyHash string, outcome ValidationOutcome, ttl time.Duration) {
	if !c.config.Enabled {
		return
	}
	if ttl <= 0 {
		ttl = c.config.TTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	seq := c.nextSeq
	if existing, ok := c.entries[keyHash]; ok {
		seq = existing.seq
	} else {
		if len(c.entries) >= c.config.MaxSize {
			c.evictOldestLocked()
		}
		c.nextSeq++
	}

	c.entries[keyHash] = &cacheEntry{
		outcome:   outcome,
		expiresAt: c.now().Add(ttl),
		seq:       seq,
	}
}

// Invalidate removes the entry for a key hash, if present.
func (c *ValidationCache) Invalidate(keyHash string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, keyHash)
}

// Clear removes all entries.
func (c *ValidationCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// Size returns the current number of cached entries.
func (c *ValidationCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close stops the background sweep. The cache remains usable but no
// longer cleans itself proactively.
func (c *ValidationCache) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// evictOldestLocked removes the entry with the smallest insertion
// sequence number. Caller must hold the lock.
func (c *ValidationCache) evictOldestLocked() {
	var oldestKey string
	var oldestSeq uint64
	first := true

	for keyHash, entry := range c.entries {
		if first || entry.seq < oldestSeq {
			oldestKey = keyHash
			oldestSeq = entry.seq
			first = false
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// sweepLoop periodically removes expired entries.
func (c *ValidationCache) sweepLoop() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.done:
			return
		}
	}
}

// sweep drops expired entries.
func (c *ValidationCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for keyHash, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, keyHash)
		}
	}
}
