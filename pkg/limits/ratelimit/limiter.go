package ratelimit

import (
	"math"
	"sync"
	"time"
)

const (
	// window is the fixed sliding window duration.
	window = time.Minute

	// sweepInterval is how often empty entries are dropped.
	sweepInterval = time.Minute

	// globalKey is the shared identifier used when key-based limiting is
	// disabled.
	globalKey = "global"
)

// entry tracks the in-window request timestamps for a single key hash.
type entry struct {
	// timestamps is ordered oldest first; requests outside the trailing
	// window are pruned on every access.
	timestamps []time.Time

	// burstCount counts recorded requests since the entry last emptied.
	// Tracked for observability, not enforced.
	burstCount int
}

// KeyLimiter is a per-key sliding window rate limiter.
//
// Check-and-record is a single atomic step: Allow prunes, counts, and
// records the new request under one lock. Use Status for a non-recording
// read of the current budget.
type KeyLimiter struct {
	config  Config
	entries map[string]*entry
	mu      sync.Mutex

	done      chan struct{}
	closeOnce sync.Once

	// now is the clock source, replaceable in tests.
	now func() time.Time
}

// NewKeyLimiter creates a new per-key limiter and starts the background
// sweep. Callers must call Destroy on shutdown to stop the sweep.
func NewKeyLimiter(config Config) *KeyLimiter {
	l := &KeyLimiter{
		config:  config,
		entries: make(map[string]*entry),
		done:    make(chan struct{}),
		now:     time.Now,
	}

	go l.sweepLoop()

	return l
}

// Allow reports whether a request for the given key hash is admitted.
// If admitted, the request is recorded as part of the same atomic step.
func (l *KeyLimiter) Allow(keyHash string) Result {
	if !l.config.Enabled {
		return Result{Allowed: true, Remaining: math.MaxInt}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e := l.entryLocked(keyHash)
	l.pruneLocked(e, now)

	count := len(e.timestamps)
	if count >= l.config.RequestsPerMinute {
		oldest := e.timestamps[0]
		reset := oldest.Add(window)
		retryAfter := reset.Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return Result{
			Allowed:    false,
			Remaining:  0,
			Reset:      reset,
			RetryAfter: retryAfter,
		}
	}

	e.timestamps = append(e.timestamps, now)
	e.burstCount++

	return Result{
		Allowed:   true,
		Remaining: l.config.RequestsPerMinute - count - 1,
		Reset:     e.timestamps[0].Add(window),
	}
}

// Record registers a request for the given key hash without gating it.
// Used by callers that account for traffic admitted elsewhere.
func (l *KeyLimiter) Record(keyHash string) {
	if !l.config.Enabled {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e := l.entryLocked(keyHash)
	l.pruneLocked(e, now)
	e.timestamps = append(e.timestamps, now)
	e.burstCount++
}

// Status returns the current budget for the given key hash without
// recording a request.
func (l *KeyLimiter) Status(keyHash string) Result {
	if !l.config.Enabled {
		return Result{Allowed: true, Remaining: math.MaxInt}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[l.key(keyHash)]
	if !ok {
		return Result{Allowed: true, Remaining: l.config.RequestsPerMinute, Reset: now.Add(window)}
	}
	l.pruneLocked(e, now)

	count := len(e.timestamps)
	reset := now.Add(window)
	if count > 0 {
		reset = e.timestamps[0].Add(window)
	}

	if count >= l.config.RequestsPerMinute {
		retryAfter := reset.Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return Result{Allowed: false, Remaining: 0, Reset: reset, RetryAfter: retryAfter}
	}

	return Result{Allowed: true, Remaining: l.config.RequestsPerMinute - count, Reset: reset}
}

// Reset restores the full budget for the given key hash only.
func (l *KeyLimiter) Reset(keyHash string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, l.key(keyHash))
}

// Clear removes all entries.
func (l *KeyLimiter) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make(map[string]*entry)
}

// Size returns the number of tracked keys.
func (l *KeyLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Destroy stops the background sweep and clears all entries. It must be
// called on shutdown; the limiter must not be used afterwards.
func (l *KeyLimiter) Destroy() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
	l.Clear()
}

// key maps a key hash to its entry identifier.
func (l *KeyLimiter) key(keyHash string) string {
	if !l.config.KeyBasedLimiting {
		return globalKey
	}
	return keyHash
}

// entryLocked returns the entry for the key hash, creating it if needed.
// Caller must hold the lock.
func (l *KeyLimiter) entryLocked(keyHash string) *entry {
	k := l.key(keyHash)
	e, ok := l.entries[k]
	if !ok {
		e = &entry{}
		l.entries[k] = e
	}
	return e
}

// pruneLocked drops timestamps outside the trailing window.
// Caller must hold the lock.
func (l *KeyLimiter) pruneLocked(e *entry, now time.Time) {
	cutoff := now.Add(-window)

	idx := 0
	for idx < len(e.timestamps) && !e.timestamps[idx].After(cutoff) {
		idx++
	}
	if idx > 0 {
		e.timestamps = append(e.timestamps[:0], e.timestamps[idx:]...)
	}
	if len(e.timestamps) == 0 {
		e.burstCount = 0
	}
}

// sweepLoop periodically drops entries whose window has emptied.
func (l *KeyLimiter) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.done:
			return
		}
	}
}

// sweep removes entries with no in-window timestamps.
func (l *KeyLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for k, e := range l.entries {
		l.pruneLocked(e, now)
		if len(e.timestamps) == 0 {
			delete(l.entries, k)
		}
	}
}
