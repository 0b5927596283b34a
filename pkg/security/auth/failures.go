package auth

import (
	"sync"
	"time"

	"mercator-hq/ganymede/pkg/config"
)

// failureTracker counts authentication failures per key and across all
// keys within a trailing window, for multiple-failure event detection.
type failureTracker struct {
	thresholds config.AlertThresholds

	mu     sync.Mutex
	perKey map[string][]time.Time
	all    []time.Time
}

func newFailureTracker(thresholds config.AlertThresholds) *failureTracker {
	return &failureTracker{
		thresholds: thresholds,
		perKey:     make(map[string][]time.Time),
	}
}

// record registers a failure for keyHash at the given time and reports
// whether the per-key or system-wide thresholds are now exceeded.
// Exactly at the threshold counts as exceeded; repeated failures past
// the threshold keep reporting until the window drains, which is fine
// because the alerter's cooldown absorbs the repeats.
func (t *failureTracker) record(keyHash string, now time.Time) (keyExceeded, systemExceeded bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := now.Add(-t.thresholds.FailureWindow)

	t.perKey[keyHash] = append(pruneTimes(t.perKey[keyHash], cutoff), now)
	t.all = append(pruneTimes(t.all, cutoff), now)

	if t.thresholds.MaxFailuresPerKey > 0 && len(t.perKey[keyHash]) >= t.thresholds.MaxFailuresPerKey {
		keyExceeded = true
	}
	if t.thresholds.SystemFailureThreshold > 0 && len(t.all) >= t.thresholds.SystemFailureThreshold {
		systemExceeded = true
	}

	return keyExceeded, systemExceeded
}

// reset clears the failure history for one key.
func (t *failureTracker) reset(keyHash string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.perKey, keyHash)
}

// pruneTimes drops timestamps at or before cutoff. Timestamps are
// appended in order, so the first retained index is a scan.
func pruneTimes(times []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return times
	}
	return append(times[:0], times[i:]...)
}
