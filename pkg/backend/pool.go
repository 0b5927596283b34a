package backend

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mercator-hq/ganymede/pkg/config"
)

// sweepInterval is how often idle handles are checked for expiry.
const sweepInterval = time.Minute

// poolEntry tracks a live handle and its timestamps.
type poolEntry struct {
	service    Service
	createdAt  time.Time
	lastUsedAt time.Time
}

// call tracks an in-flight handle construction so concurrent requests
// for the same uninitialized key collapse to a single factory call.
type call struct {
	done    chan struct{}
	service Service
	err     error
}

// Stats is a point-in-time view of the pool.
type Stats struct {
	// Size is the number of live handles.
	Size int

	// MaxSize is the configured capacity.
	MaxSize int

	// OldestServiceAge is the age of the oldest-created handle, zero
	// when the pool is empty.
	OldestServiceAge time.Duration
}

// Pool is a bounded collection of backend service handles keyed by key
// hash, with creation-order eviction when full and idle-timeout expiry.
type Pool struct {
	config  config.PerformanceConfig
	factory Factory
	logger  *slog.Logger

	mu       sync.Mutex
	entries  map[string]*poolEntry
	inflight map[string]*call

	done      chan struct{}
	closeOnce sync.Once

	// now is the clock source, replaceable in tests.
	now func() time.Time
}

// NewPool creates a service pool and starts the idle sweep. Callers must
// call Close on shutdown.
func NewPool(cfg config.PerformanceConfig, factory Factory) *Pool {
	p := &Pool{
		config:   cfg,
		factory:  factory,
		logger:   slog.Default().With("component", "backend.pool"),
		entries:  make(map[string]*poolEntry),
		inflight: make(map[string]*call),
		done:     make(chan struct{}),
		now:      time.Now,
	}

	go p.sweepLoop()

	return p
}

// Get returns the pooled handle for keyHash, creating one via the factory
// when absent or expired. At most one handle is constructed per key even
// under concurrent calls; losers of the race share the winner's result.
//
// The raw apiKey is needed only for construction and is not retained.
func (p *Pool) Get(ctx context.Context, keyHash, apiKey string) (Service, error) {
	p.mu.Lock()

	if e, ok := p.entries[keyHash]; ok {
		if p.now().Sub(e.lastUsedAt) < p.config.ServiceTimeout {
			e.lastUsedAt = p.now()
			svc := e.service
			p.mu.Unlock()
			return svc, nil
		}
		// Idle-expired; drop and rebuild below.
		delete(p.entries, keyHash)
		p.closeService(e.service, keyHash, "expired")
	}

	if c, ok := p.inflight[keyHash]; ok {
		p.mu.Unlock()
		select {
		case <-c.done:
			return c.service, c.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	c := &call{done: make(chan struct{})}
	p.inflight[keyHash] = c
	p.mu.Unlock()

	service, err := p.factory(ctx, apiKey)

	p.mu.Lock()
	delete(p.inflight, keyHash)
	if err == nil {
		p.evictIfFullLocked()
		now := p.now()
		p.entries[keyHash] = &poolEntry{
			service:    service,
			createdAt:  now,
			lastUsedAt: now,
		}
	}
	p.mu.Unlock()

	c.service = service
	c.err = err
	close(c.done)

	if err != nil {
		return nil, fmt.Errorf("failed to create backend service: %w", err)
	}
	return service, nil
}

// Remove drops the handle for keyHash, if present, and closes it.
func (p *Pool) Remove(keyHash string) {
	p.mu.Lock()
	e, ok := p.entries[keyHash]
	if ok {
		delete(p.entries, keyHash)
	}
	p.mu.Unlock()

	if ok {
		p.closeService(e.service, keyHash, "removed")
	}
}

// Clear drops and closes all handles.
func (p *Pool) Clear() {
	p.mu.Lock()
	entries := p.entries
	p.entries = make(map[string]*poolEntry)
	p.mu.Unlock()

	for keyHash, e := range entries {
		p.closeService(e.service, keyHash, "cleared")
	}
}

// Stats returns a point-in-time view of the pool.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := Stats{
		Size:    len(p.entries),
		MaxSize: p.config.ServicePoolSize,
	}

	now := p.now()
	for _, e := range p.entries {
		age := now.Sub(e.createdAt)
		if age > stats.OldestServiceAge {
			stats.OldestServiceAge = age
		}
	}

	return stats
}

// Close stops the idle sweep and closes all handles.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
	})
	p.Clear()
}

// evictIfFullLocked makes room for one insertion by evicting the
// oldest-created entry. Caller must hold the lock.
func (p *Pool) evictIfFullLocked() {
	if len(p.entries) < p.config.ServicePoolSize {
		return
	}

	var oldestKey string
	var oldestAt time.Time
	first := true

	for keyHash, e := range p.entries {
		if first || e.createdAt.Before(oldestAt) {
			oldestKey = keyHash
			oldestAt = e.createdAt
			first = false
		}
	}

	if oldestKey != "" {
		e := p.entries[oldestKey]
		delete(p.entries, oldestKey)
		p.closeService(e.service, oldestKey, "evicted")
	}
}

// closeService closes a handle, logging failures. Safe to call while
// holding the lock; Close implementations must not call back into the
// pool.
func (p *Pool) closeService(service Service, keyHash, reason string) {
	if err := service.Close(); err != nil {
		p.logger.Warn("failed to close backend service",
			"key_hash", keyHash,
			"reason", reason,
			"error", err,
		)
		return
	}
	p.logger.Debug("backend service closed",
		"key_hash", keyHash,
		"reason", reason,
	)
}

// sweepLoop periodically removes idle-expired handles.
func (p *Pool) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.sweep()
		case <-p.done:
			return
		}
	}
}

// sweep removes handles idle longer than the configured timeout.
func (p *Pool) sweep() {
	p.mu.Lock()
	now := p.now()
	var expired []string
	for keyHash, e := range p.entries {
		if now.Sub(e.lastUsedAt) >= p.config.ServiceTimeout {
			expired = append(expired, keyHash)
		}
	}

	closed := make(map[string]Service, len(expired))
	for _, keyHash := range expired {
		closed[keyHash] = p.entries[keyHash].service
		delete(p.entries, keyHash)
	}
	p.mu.Unlock()

	for keyHash, service := range closed {
		p.closeService(service, keyHash, "idle")
	}
}
