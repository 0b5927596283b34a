package auth

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// KeyEntry is a single API key in the registry file.
type KeyEntry struct {
	// Key is the raw API key. Held only inside the store; never logged.
	Key string `yaml:"key"`

	// ID is a human-facing identifier for the key.
	ID string `yaml:"id"`

	// Enabled controls whether the key is accepted.
	Enabled bool `yaml:"enabled"`

	// Description is free-form operator notes.
	Description string `yaml:"description,omitempty"`
}

// keyFile is the on-disk registry format.
type keyFile struct {
	Keys []KeyEntry `yaml:"keys"`
}

// FileKeyStore validates API keys against a YAML registry file. It is the
// external validator consumed by the Manager; validation outcomes are
// cached upstream by the ValidationCache.
type FileKeyStore struct {
	path   string
	logger *slog.Logger

	mu   sync.RWMutex
	keys map[string]KeyEntry
}

// NewFileKeyStore loads the registry at path and returns a store backed
// by it.
func NewFileKeyStore(path string) (*FileKeyStore, error) {
	s := &FileKeyStore{
		path:   path,
		logger: slog.Default().With("component", "auth.keystore"),
		keys:   make(map[string]KeyEntry),
	}

	if err := s.Reload(); err != nil {
		return nil, err
	}

	return s, nil
}

// Validate checks a raw API key against the registry. The raw key is not
// retained.
func (s *FileKeyStore) Validate(ctx context.Context, rawKey string) ValidationOutcome {
	s.mu.RLock()
	entry, ok := s.keys[rawKey]
	s.mu.RUnlock()

	now := time.Now()

	if !ok {
		return ValidationOutcome{Valid: false, Reason: "unknown API key", ValidatedAt: now}
	}
	if !entry.Enabled {
		return ValidationOutcome{Valid: false, KeyID: entry.ID, Reason: "API key disabled", ValidatedAt: now}
	}

	return ValidationOutcome{Valid: true, KeyID: entry.ID, ValidatedAt: now}
}

// Reload re-reads the registry file, replacing the in-memory key set
// atomically. A failed reload leaves the previous key set in place.
func (s *FileKeyStore) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read key file %q: %w", s.path, err)
	}

	var parsed keyFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse key file %q: %w", s.path, err)
	}

	keys := make(map[string]KeyEntry, len(parsed.Keys))
	for i, entry := range parsed.Keys {
		if entry.Key == "" {
			return fmt.Errorf("key file %q: entry %d has an empty key", s.path, i)
		}
		keys[entry.Key] = entry
	}

	s.mu.Lock()
	s.keys = keys
	s.mu.Unlock()

	s.logger.Info("API key registry loaded",
		"path", s.path,
		"key_count", len(keys),
	)

	return nil
}

// Count returns the number of registered keys.
func (s *FileKeyStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}
