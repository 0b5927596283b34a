package backend

import (
	"context"
	"sync/atomic"
)

// MockService is an inert Service implementation for tests and local
// development.
type MockService struct {
	// ID distinguishes handle instances.
	ID int64

	closed atomic.Bool
}

// Close marks the handle closed.
func (m *MockService) Close() error {
	m.closed.Store(true)
	return nil
}

// Closed reports whether Close has been called.
func (m *MockService) Closed() bool {
	return m.closed.Load()
}

// MockFactory produces MockService handles and counts constructions.
type MockFactory struct {
	created atomic.Int64
}

// New is a Factory.
func (f *MockFactory) New(ctx context.Context, apiKey string) (Service, error) {
	return &MockService{ID: f.created.Add(1)}, nil
}

// Created returns how many handles the factory has constructed.
func (f *MockFactory) Created() int64 {
	return f.created.Load()
}
