package backend

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Session is the default pooled service handle: a per-key backend
// session carrying identity and lifecycle state. Deployments embedding
// this module supply their own Factory when the handle must hold live
// upstream connections; Session covers the common case where the
// expensive part is per-key setup, not a persistent socket.
type Session struct {
	// ID uniquely identifies this handle instance. Re-created handles
	// for the same key get fresh IDs.
	ID string

	// KeyHash identifies the owning key.
	KeyHash string

	// CreatedAt is when the session was constructed.
	CreatedAt time.Time

	closed atomic.Bool
}

// Close marks the session closed. Closing twice is harmless.
func (s *Session) Close() error {
	s.closed.Store(true)
	return nil
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	return s.closed.Load()
}

// SessionFactory builds a Factory producing Session handles. hash
// derives the key hash stored on the session; pass nil to leave it
// empty.
func SessionFactory(hash func(string) string) Factory {
	return func(ctx context.Context, apiKey string) (Service, error) {
		keyHash := ""
		if hash != nil {
			keyHash = hash(apiKey)
		}
		return &Session{
			ID:        uuid.NewString(),
			KeyHash:   keyHash,
			CreatedAt: time.Now(),
		}, nil
	}
}
