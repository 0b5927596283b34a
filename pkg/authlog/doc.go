// Package authlog provides structured, sanitized authentication logging
// with a bounded in-memory ring and an append-only audit trail.
//
// Every write path computes a sanitized view of the entry details:
// configured sensitive field names are replaced with a redaction marker,
// and free-text values are scrubbed of embedded key-like tokens and
// filesystem paths. The original details are preserved alongside the
// sanitized view but are never exported.
//
// Audit trail entries are written for every authentication attempt and
// for security events of critical severity. Persistence is delegated to
// a Backend implementation; see the storage subpackage for the in-memory
// and SQLite backends.
package authlog
