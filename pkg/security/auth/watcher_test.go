package auth

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

func TestKeyFileWatcher_ReloadsOnChange(t *testing.T) {
	path := writeRegistry(t, testRegistry)
	store, err := NewFileKeyStore(path)
	if err != nil {
		t.Fatalf("NewFileKeyStore failed: %v", err)
	}

	var reloads atomic.Int64
	watcher, err := NewKeyFileWatcher(store, func() { reloads.Add(1) })
	if err != nil {
		t.Fatalf("NewKeyFileWatcher failed: %v", err)
	}
	watcher.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- watcher.Watch(ctx) }()

	// Give the watcher a moment to register the directory.
	time.Sleep(100 * time.Millisecond)

	updated := "keys:\n  - key: sk-delta-4444\n    id: delta\n    enabled: true\n"
	if err := os.WriteFile(path, []byte(updated), 0o600); err != nil {
		t.Fatalf("Failed to rewrite registry: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for reloads.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if reloads.Load() == 0 {
		t.Fatal("Expected a reload after the registry changed")
	}

	if outcome := store.Validate(context.Background(), "sk-delta-4444"); !outcome.Valid {
		t.Error("Expected new key visible after reload")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Expected Watch to return after cancellation")
	}
}

func TestKeyFileWatcher_BadRewriteKeepsServing(t *testing.T) {
	path := writeRegistry(t, testRegistry)
	store, err := NewFileKeyStore(path)
	if err != nil {
		t.Fatalf("NewFileKeyStore failed: %v", err)
	}

	watcher, err := NewKeyFileWatcher(store, nil)
	if err != nil {
		t.Fatalf("NewKeyFileWatcher failed: %v", err)
	}
	watcher.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Watch(ctx)

	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte("keys: [broken"), 0o600); err != nil {
		t.Fatalf("Failed to corrupt registry: %v", err)
	}
	time.Sleep(300 * time.Millisecond)

	// The previous key set survives a failed reload.
	if outcome := store.Validate(context.Background(), "sk-alpha-1111"); !outcome.Valid {
		t.Error("Expected previous keys retained after bad rewrite")
	}
}
