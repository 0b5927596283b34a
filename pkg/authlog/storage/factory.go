package storage

import (
	"fmt"

	"mercator-hq/ganymede/pkg/authlog"
	"mercator-hq/ganymede/pkg/config"
)

// NewBackend creates the audit backend selected by configuration.
func NewBackend(cfg config.AuditStorageConfig) (authlog.Backend, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryBackend(), nil
	case "sqlite":
		return NewSQLiteBackend(cfg)
	default:
		return nil, fmt.Errorf("unknown audit storage backend: %q", cfg.Backend)
	}
}
