package ratelimit

import "sync/atomic"

// ConcurrentLimiter caps the number of simultaneous in-flight requests
// using an atomic counting semaphore. A zero limit means unlimited.
type ConcurrentLimiter struct {
	limit   int64
	current int64
}

// NewConcurrentLimiter creates a limiter allowing at most limit
// simultaneous requests.
func NewConcurrentLimiter(limit int) *ConcurrentLimiter {
	return &ConcurrentLimiter{limit: int64(limit)}
}

// Acquire attempts to claim a slot. On success the caller must call
// Release when done.
func (cl *ConcurrentLimiter) Acquire() bool {
	if cl.limit <= 0 {
		return true
	}

	if atomic.AddInt64(&cl.current, 1) > cl.limit {
		atomic.AddInt64(&cl.current, -1)
		return false
	}
	return true
}

// Release returns a slot claimed by a successful Acquire.
func (cl *ConcurrentLimiter) Release() {
	if cl.limit <= 0 {
		return
	}
	atomic.AddInt64(&cl.current, -1)
}

// Current returns the number of in-flight requests.
func (cl *ConcurrentLimiter) Current() int64 {
	return atomic.LoadInt64(&cl.current)
}

// Remaining returns the number of free slots.
func (cl *ConcurrentLimiter) Remaining() int64 {
	if cl.limit <= 0 {
		return 0
	}
	remaining := cl.limit - atomic.LoadInt64(&cl.current)
	if remaining < 0 {
		return 0
	}
	return remaining
}
