// Package auth provides API key authentication for the admission core.
//
// The package contains the key validation cache, the file-backed API key
// store with optional hot reload, and the Manager which orchestrates a
// request's admission: fallback key handling, cached validation, rate
// limiting, backend service acquisition, and reporting to the auth log and
// security alerter.
//
// Raw API keys are held only transiently during validation. Every cache,
// limiter, and pool entry is keyed by the derived key hash, never by the
// raw key.
package auth
