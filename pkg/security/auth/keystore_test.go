package auth

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const testRegistry = `keys:
  - key: sk-alpha-1111
    id: alpha
    enabled: true
    description: primary key
  - key: sk-bravo-2222
    id: bravo
    enabled: false
`

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keys.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write registry: %v", err)
	}
	return path
}

func TestFileKeyStore_Validate(t *testing.T) {
	store, err := NewFileKeyStore(writeRegistry(t, testRegistry))
	if err != nil {
		t.Fatalf("NewFileKeyStore failed: %v", err)
	}

	ctx := context.Background()

	outcome := store.Validate(ctx, "sk-alpha-1111")
	if !outcome.Valid || outcome.KeyID != "alpha" {
		t.Errorf("Expected valid outcome for alpha, got %+v", outcome)
	}
	if outcome.ValidatedAt.IsZero() {
		t.Error("Expected ValidatedAt to be set")
	}

	outcome = store.Validate(ctx, "sk-bravo-2222")
	if outcome.Valid || outcome.Reason != "API key disabled" {
		t.Errorf("Expected disabled outcome for bravo, got %+v", outcome)
	}

	outcome = store.Validate(ctx, "sk-nobody")
	if outcome.Valid || outcome.Reason != "unknown API key" {
		t.Errorf("Expected unknown outcome, got %+v", outcome)
	}
}

func TestFileKeyStore_Reload(t *testing.T) {
	path := writeRegistry(t, testRegistry)
	store, err := NewFileKeyStore(path)
	if err != nil {
		t.Fatalf("NewFileKeyStore failed: %v", err)
	}
	if store.Count() != 2 {
		t.Fatalf("Expected 2 keys, got %d", store.Count())
	}

	updated := `keys:
  - key: sk-charlie-3333
    id: charlie
    enabled: true
`
	if err := os.WriteFile(path, []byte(updated), 0o600); err != nil {
		t.Fatalf("Failed to update registry: %v", err)
	}
	if err := store.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if store.Count() != 1 {
		t.Errorf("Expected 1 key after reload, got %d", store.Count())
	}
	if outcome := store.Validate(context.Background(), "sk-alpha-1111"); outcome.Valid {
		t.Error("Expected alpha removed after reload")
	}
	if outcome := store.Validate(context.Background(), "sk-charlie-3333"); !outcome.Valid {
		t.Error("Expected charlie valid after reload")
	}
}

func TestFileKeyStore_FailedReloadKeepsKeys(t *testing.T) {
	path := writeRegistry(t, testRegistry)
	store, err := NewFileKeyStore(path)
	if err != nil {
		t.Fatalf("NewFileKeyStore failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("keys: [not: [valid"), 0o600); err != nil {
		t.Fatalf("Failed to corrupt registry: %v", err)
	}
	if err := store.Reload(); err == nil {
		t.Fatal("Expected reload of corrupt file to fail")
	}

	// Previous key set survives the failed reload.
	if outcome := store.Validate(context.Background(), "sk-alpha-1111"); !outcome.Valid {
		t.Error("Expected previous keys retained after failed reload")
	}
}

func TestFileKeyStore_RejectsEmptyKey(t *testing.T) {
	path := writeRegistry(t, "keys:\n  - key: \"\"\n    id: broken\n    enabled: true\n")
	if _, err := NewFileKeyStore(path); err == nil {
		t.Fatal("Expected error for empty key entry")
	}
}

func TestFileKeyStore_MissingFile(t *testing.T) {
	if _, err := NewFileKeyStore(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Expected error for missing registry file")
	}
}
