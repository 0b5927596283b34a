package storage

import (
	"context"
	"sync"

	"mercator-hq/ganymede/pkg/authlog"
)

// MemoryBackend implements authlog.Backend using an in-memory slice.
// Entries are lost on process exit; use the SQLite backend when the
// audit trail must survive restarts.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries []*authlog.AuditEntry
}

// NewMemoryBackend creates an in-memory audit backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// Store appends an audit entry.
func (b *MemoryBackend) Store(ctx context.Context, entry *authlog.AuditEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Copy to avoid mutation by the caller.
	entryCopy := *entry
	b.entries = append(b.entries, &entryCopy)
	return nil
}

// List returns audit entries newest first. A limit of 0 returns all.
func (b *MemoryBackend) List(ctx context.Context, limit int) ([]*authlog.AuditEntry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	results := make([]*authlog.AuditEntry, 0, len(b.entries))
	for i := len(b.entries) - 1; i >= 0; i-- {
		entryCopy := *b.entries[i]
		results = append(results, &entryCopy)
		if limit > 0 && len(results) >= limit {
			break
		}
	}

	return results, nil
}

// Count returns the number of stored entries.
func (b *MemoryBackend) Count(ctx context.Context) (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return int64(len(b.entries)), nil
}

// Close releases the backend. All entries are dropped.
func (b *MemoryBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = nil
	return nil
}
