package ratelimit

import "time"

// Config contains configuration for the per-key limiter.
type Config struct {
	// Enabled controls whether limits are enforced. A disabled limiter
	// allows everything and reports an unlimited remaining budget.
	Enabled bool

	// RequestsPerMinute is the number of requests allowed per key within
	// the trailing 60-second window.
	RequestsPerMinute int

	// BurstLimit is accepted and tracked per entry but is not enforced
	// independently of RequestsPerMinute.
	BurstLimit int

	// KeyBasedLimiting scopes the window to each key hash. When false,
	// all traffic shares a single window.
	KeyBasedLimiting bool
}

// Result contains the outcome of a rate limit check.
type Result struct {
	// Allowed indicates if the request is permitted.
	Allowed bool

	// Remaining is how many requests remain in the window.
	Remaining int

	// Reset is when the oldest in-window request ages out and the budget
	// next grows.
	Reset time.Time

	// RetryAfter suggests how long to wait before retrying. Only set
	// when Allowed is false; never less than one second.
	RetryAfter time.Duration
}
