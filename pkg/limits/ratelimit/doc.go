// Package ratelimit provides per-key sliding window rate limiting for
// admission control.
//
// # Algorithm
//
// Each key hash owns an ordered list of request timestamps. On every check,
// timestamps older than the trailing 60-second window are pruned before
// counting. A request is allowed while the in-window count is below the
// configured requests-per-minute budget; the check and the recording of the
// new request happen under a single lock so two concurrent callers cannot
// both observe "under limit".
//
// Sliding windows avoid the reset spike of fixed windows: the budget is
// recomputed on every access rather than reset on minute boundaries.
//
// # Memory
//
// Entries are created lazily on first request for a key. A periodic sweep
// drops entries whose window has emptied, bounding memory for keys that
// stop sending traffic. Destroy stops the sweep and must be called on
// shutdown.
//
// # Thread Safety
//
// All operations are safe for concurrent use across keys and on the same
// key.
package ratelimit
