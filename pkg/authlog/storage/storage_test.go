package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"mercator-hq/ganymede/pkg/authlog"
	"mercator-hq/ganymede/pkg/config"
)

func testEntry(id string, ts time.Time, success bool) *authlog.AuditEntry {
	return &authlog.AuditEntry{
		ID:        id,
		Timestamp: ts,
		Event:     authlog.EventAuthentication,
		KeyHash:   "sha256:abcd1234",
		RequestID: "r-" + id,
		ToolName:  "search",
		Success:   success,
		Details:   map[string]any{"authTimeMs": float64(12)},
	}
}

// exerciseBackend runs the shared Backend contract against an
// implementation.
func exerciseBackend(t *testing.T, backend authlog.Backend) {
	t.Helper()
	ctx := context.Background()

	base := time.Now().Truncate(time.Millisecond)
	if err := backend.Store(ctx, testEntry("a", base, true)); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := backend.Store(ctx, testEntry("b", base.Add(time.Second), false)); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	count, err := backend.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected count 2, got %d", count)
	}

	all, err := backend.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(all))
	}
	// Newest first.
	if all[0].ID != "b" || all[1].ID != "a" {
		t.Errorf("Expected order b, a; got %s, %s", all[0].ID, all[1].ID)
	}
	if all[0].Success {
		t.Error("Expected entry b to be a failure")
	}
	if all[1].RequestID != "r-a" || all[1].ToolName != "search" {
		t.Errorf("Unexpected correlation fields: %+v", all[1])
	}
	if got := all[1].Details["authTimeMs"]; got != float64(12) {
		t.Errorf("Expected details round-tripped, got %v", got)
	}

	limited, err := backend.List(ctx, 1)
	if err != nil {
		t.Fatalf("List with limit failed: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "b" {
		t.Errorf("Expected limit 1 to return newest entry, got %+v", limited)
	}
}

func TestMemoryBackend(t *testing.T) {
	backend := NewMemoryBackend()
	defer backend.Close()

	exerciseBackend(t, backend)
}

func TestMemoryBackend_CopiesEntries(t *testing.T) {
	backend := NewMemoryBackend()
	defer backend.Close()

	entry := testEntry("a", time.Now(), true)
	if err := backend.Store(context.Background(), entry); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	entry.KeyHash = "mutated"

	all, _ := backend.List(context.Background(), 0)
	if all[0].KeyHash != "sha256:abcd1234" {
		t.Errorf("Expected stored entry isolated from caller mutation, got %q", all[0].KeyHash)
	}
}

func TestSQLiteBackend(t *testing.T) {
	backend, err := NewSQLiteBackend(config.AuditStorageConfig{
		SQLitePath:  filepath.Join(t.TempDir(), "audit.db"),
		BusyTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("NewSQLiteBackend failed: %v", err)
	}
	defer backend.Close()

	exerciseBackend(t, backend)
}

func TestSQLiteBackend_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	cfg := config.AuditStorageConfig{SQLitePath: path, BusyTimeout: time.Second}

	backend, err := NewSQLiteBackend(cfg)
	if err != nil {
		t.Fatalf("NewSQLiteBackend failed: %v", err)
	}
	if err := backend.Store(context.Background(), testEntry("a", time.Now(), true)); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	backend.Close()

	// Entries survive a restart.
	reopened, err := NewSQLiteBackend(cfg)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close()

	count, err := reopened.Count(context.Background())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 entry after reopen, got %d", count)
	}
}

func TestNewBackend(t *testing.T) {
	backend, err := NewBackend(config.AuditStorageConfig{Backend: "memory"})
	if err != nil {
		t.Fatalf("NewBackend failed: %v", err)
	}
	if _, ok := backend.(*MemoryBackend); !ok {
		t.Errorf("Expected memory backend, got %T", backend)
	}
	backend.Close()

	if _, err := NewBackend(config.AuditStorageConfig{Backend: "postgres"}); err == nil {
		t.Error("Expected error for unknown backend")
	}
}
