package auth

import (
	"fmt"
	"testing"
	"time"

	"mercator-hq/ganymede/pkg/config"
)

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled: true,
		MaxSize: 100,
		TTL:     5 * time.Minute,
	}
}

func outcomeFor(id string) ValidationOutcome {
	return ValidationOutcome{Valid: true, KeyID: id, ValidatedAt: time.Now()}
}

func TestValidationCache_GetSet(t *testing.T) {
	cache := NewValidationCache(testCacheConfig())
	defer cache.Close()

	if _, ok := cache.Get("h1"); ok {
		t.Error("Expected miss on empty cache")
	}

	cache.Set("h1", outcomeFor("k1"), 0)

	outcome, ok := cache.Get("h1")
	if !ok {
		t.Fatal("Expected hit after Set")
	}
	if outcome.KeyID != "k1" {
		t.Errorf("Expected KeyID k1, got %q", outcome.KeyID)
	}
}

func TestValidationCache_TTLExpiry(t *testing.T) {
	cache := NewValidationCache(testCacheConfig())
	defer cache.Close()

	current := time.Now()
	cache.now = func() time.Time { return current }

	cache.Set("h1", outcomeFor("k1"), time.Second)

	if _, ok := cache.Get("h1"); !ok {
		t.Fatal("Expected hit before expiry")
	}

	current = current.Add(1100 * time.Millisecond)

	if _, ok := cache.Get("h1"); ok {
		t.Error("Expected miss after TTL elapsed")
	}
	if cache.Size() != 0 {
		t.Errorf("Expected expired entry removed on access, size %d", cache.Size())
	}
}

func TestValidationCache_InsertionOrderEviction(t *testing.T) {
	cfg := testCacheConfig()
	cfg.MaxSize = 2
	cache := NewValidationCache(cfg)
	defer cache.Close()

	cache.Set("h1", outcomeFor("k1"), 0)
	cache.Set("h2", outcomeFor("k2"), 0)

	// Re-reading h1 must not protect it; eviction is by insertion
	// order, not recency of use.
	cache.Get("h1")

	cache.Set("h3", outcomeFor("k3"), 0)

	if _, ok := cache.Get("h1"); ok {
		t.Error("Expected oldest-inserted h1 evicted")
	}
	if _, ok := cache.Get("h2"); !ok {
		t.Error("Expected h2 retained")
	}
	if _, ok := cache.Get("h3"); !ok {
		t.Error("Expected h3 present")
	}
}

func TestValidationCache_ReSetKeepsInsertionPosition(t *testing.T) {
	cfg := testCacheConfig()
	cfg.MaxSize = 2
	cache := NewValidationCache(cfg)
	defer cache.Close()

	cache.Set("h1", outcomeFor("k1"), 0)
	cache.Set("h2", outcomeFor("k2"), 0)
	cache.Set("h1", outcomeFor("k1b"), 0) // refresh, keeps position

	cache.Set("h3", outcomeFor("k3"), 0)

	// h1 is still the oldest-inserted despite the refresh.
	if _, ok := cache.Get("h1"); ok {
		t.Error("Expected h1 evicted despite refresh")
	}
	if _, ok := cache.Get("h2"); !ok {
		t.Error("Expected h2 retained")
	}
}

func TestValidationCache_InvalidateAndClear(t *testing.T) {
	cache := NewValidationCache(testCacheConfig())
	defer cache.Close()

	cache.Set("h1", outcomeFor("k1"), 0)
	cache.Set("h2", outcomeFor("k2"), 0)

	cache.Invalidate("h1")
	if _, ok := cache.Get("h1"); ok {
		t.Error("Expected h1 invalidated")
	}
	if cache.Size() != 1 {
		t.Errorf("Expected size 1, got %d", cache.Size())
	}

	cache.Clear()
	if cache.Size() != 0 {
		t.Errorf("Expected empty cache after Clear, got %d", cache.Size())
	}
}

func TestValidationCache_Disabled(t *testing.T) {
	cfg := testCacheConfig()
	cfg.Enabled = false
	cache := NewValidationCache(cfg)
	defer cache.Close()

	cache.Set("h1", outcomeFor("k1"), 0)

	if _, ok := cache.Get("h1"); ok {
		t.Error("Expected disabled cache to always miss")
	}
	if cache.Size() != 0 {
		t.Errorf("Expected disabled cache to store nothing, got %d", cache.Size())
	}
}

func TestValidationCache_Sweep(t *testing.T) {
	cache := NewValidationCache(testCacheConfig())
	defer cache.Close()

	current := time.Now()
	cache.now = func() time.Time { return current }

	for i := 0; i < 5; i++ {
		cache.Set(fmt.Sprintf("h%d", i), outcomeFor("k"), time.Second)
	}
	cache.Set("fresh", outcomeFor("k"), time.Hour)

	current = current.Add(2 * time.Second)
	cache.sweep()

	if cache.Size() != 1 {
		t.Errorf("Expected only the fresh entry after sweep, got %d", cache.Size())
	}
	if _, ok := cache.Get("fresh"); !ok {
		t.Error("Expected fresh entry to survive the sweep")
	}
}

func TestValidationCache_CloseIdempotent(t *testing.T) {
	cache := NewValidationCache(testCacheConfig())
	cache.Close()
	cache.Close()
}
