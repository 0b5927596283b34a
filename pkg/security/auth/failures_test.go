package auth

import (
	"testing"
	"time"

	"mercator-hq/ganymede/pkg/config"
)

func TestFailureTracker_PerKeyThreshold(t *testing.T) {
	tracker := newFailureTracker(config.AlertThresholds{
		MaxFailuresPerKey:      3,
		SystemFailureThreshold: 100,
		FailureWindow:          10 * time.Minute,
	})

	base := time.Now()

	for i := 0; i < 2; i++ {
		if keyExceeded, _ := tracker.record("h1", base.Add(time.Duration(i)*time.Second)); keyExceeded {
			t.Fatalf("Expected threshold not yet exceeded at failure %d", i+1)
		}
	}

	keyExceeded, systemExceeded := tracker.record("h1", base.Add(2*time.Second))
	if !keyExceeded {
		t.Error("Expected per-key threshold exceeded at third failure")
	}
	if systemExceeded {
		t.Error("Expected system threshold not exceeded")
	}

	// A different key has its own count.
	if keyExceeded, _ := tracker.record("h2", base.Add(3*time.Second)); keyExceeded {
		t.Error("Expected independent per-key counting")
	}
}

func TestFailureTracker_WindowDecay(t *testing.T) {
	tracker := newFailureTracker(config.AlertThresholds{
		MaxFailuresPerKey:      3,
		SystemFailureThreshold: 100,
		FailureWindow:          time.Minute,
	})

	base := time.Now()
	tracker.record("h1", base)
	tracker.record("h1", base.Add(time.Second))

	// The first two failures age out of the window.
	keyExceeded, _ := tracker.record("h1", base.Add(2*time.Minute))
	if keyExceeded {
		t.Error("Expected aged-out failures not to count")
	}
}

func TestFailureTracker_SystemThreshold(t *testing.T) {
	tracker := newFailureTracker(config.AlertThresholds{
		MaxFailuresPerKey:      100,
		SystemFailureThreshold: 5,
		FailureWindow:          10 * time.Minute,
	})

	base := time.Now()
	var systemExceeded bool
	for i := 0; i < 5; i++ {
		// Each failure comes from a different key.
		_, systemExceeded = tracker.record("h"+string(rune('a'+i)), base.Add(time.Duration(i)*time.Second))
	}

	if !systemExceeded {
		t.Error("Expected system-wide threshold exceeded across distinct keys")
	}
}

func TestFailureTracker_Reset(t *testing.T) {
	tracker := newFailureTracker(config.AlertThresholds{
		MaxFailuresPerKey:      2,
		SystemFailureThreshold: 100,
		FailureWindow:          10 * time.Minute,
	})

	base := time.Now()
	tracker.record("h1", base)
	tracker.reset("h1")

	if keyExceeded, _ := tracker.record("h1", base.Add(time.Second)); keyExceeded {
		t.Error("Expected count cleared by reset")
	}
}
