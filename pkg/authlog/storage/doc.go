// Package storage provides audit trail persistence backends for the
// authlog package: an in-memory backend for tests and small
// deployments, and a SQLite backend for durable audit trails.
package storage
