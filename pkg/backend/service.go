package backend

import "context"

// Service is a live handle to the storage backend for one API key.
// Construction is delegated to a Factory; the pool owns the lifecycle.
type Service interface {
	// Close releases the handle's resources. Called by the pool on
	// eviction, idle expiry, and shutdown.
	Close() error
}

// Factory constructs a backend service handle for a raw API key.
// Implementations must be safe for concurrent use; the pool guarantees
// at most one in-flight construction per key.
type Factory func(ctx context.Context, apiKey string) (Service, error)
