package auth

import (
	"context"
	"time"
)

// ValidationOutcome is the result of validating a raw API key.
type ValidationOutcome struct {
	// Valid indicates whether the key is known and enabled.
	Valid bool

	// KeyID is the registry identifier of the key (not the key itself).
	KeyID string

	// Reason explains why validation failed (if Valid=false).
	Reason string

	// ValidatedAt is when the outcome was produced.
	ValidatedAt time.Time
}

// AuthenticationResult is the outcome of an admission decision, consumed
// by the surrounding tool-dispatch layer.
type AuthenticationResult struct {
	// Success indicates the request is admitted.
	Success bool

	// UsedFallback indicates the configured fallback key was substituted
	// for a missing API key.
	UsedFallback bool

	// RateLimited indicates the request was denied by the rate limiter.
	RateLimited bool

	// KeyHash is the derived identifier of the key, safe to log.
	KeyHash string

	// AuthTime is how long the admission decision took.
	AuthTime time.Duration

	// RetryAfter suggests how long to wait when RateLimited.
	RetryAfter time.Duration

	// ErrorMessage describes the failure (if Success=false).
	ErrorMessage string
}

// Request carries correlation data for a single admission request.
type Request struct {
	// RequestID correlates log entries for one request.
	RequestID string

	// ToolName is the MCP tool being invoked.
	ToolName string

	// RemoteAddr is the caller's network address, if known.
	RemoteAddr string
}

// Validator validates a raw API key. Implementations must not retain the
// raw key.
type Validator interface {
	Validate(ctx context.Context, rawKey string) ValidationOutcome
}
