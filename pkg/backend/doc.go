// Package backend provides the bounded pool of per-key storage service
// handles.
//
// Handles are created lazily by an injected factory, keyed by the derived
// key hash, and evicted in creation order (oldest-created first, not
// least-recently-used) when the pool exceeds its configured size. Handles
// idle longer than the configured timeout are removed by a background
// sweep. Re-requesting a key after eviction yields a brand-new handle;
// callers must not assume handle identity persists.
//
// The real storage client construction lives outside this package; the
// pool only manages handle lifecycle.
package backend
