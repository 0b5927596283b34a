package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"mercator-hq/ganymede/pkg/authlog"
	"mercator-hq/ganymede/pkg/config"
)

// auditSchema is the audit trail table definition.
const auditSchema = `
CREATE TABLE IF NOT EXISTS audit_trail (
	id         TEXT PRIMARY KEY,
	timestamp  INTEGER NOT NULL,
	event      TEXT NOT NULL,
	key_hash   TEXT,
	request_id TEXT,
	tool_name  TEXT,
	success    INTEGER NOT NULL,
	details    TEXT
);
CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_trail(timestamp);
CREATE INDEX IF NOT EXISTS idx_audit_key_hash ON audit_trail(key_hash);
`

// SQLiteBackend implements authlog.Backend using a SQLite database.
// WAL mode is enabled for concurrent readers during audit writes.
type SQLiteBackend struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteBackend opens (creating if necessary) the audit database at
// the configured path and initializes the schema.
func NewSQLiteBackend(cfg config.AuditStorageConfig) (*SQLiteBackend, error) {
	logger := slog.Default().With("component", "authlog.storage.sqlite")

	db, err := sql.Open("sqlite", cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	b := &SQLiteBackend{db: db, logger: logger}
	if err := b.initialize(cfg.BusyTimeout); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite audit storage initialized", "path", cfg.SQLitePath)
	return b, nil
}

func (b *SQLiteBackend) initialize(busyTimeout time.Duration) error {
	if _, err := b.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if busyTimeout > 0 {
		_, err := b.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeout.Milliseconds()))
		if err != nil {
			return fmt.Errorf("failed to set busy timeout: %w", err)
		}
	}

	if _, err := b.db.Exec(auditSchema); err != nil {
		return fmt.Errorf("failed to create audit schema: %w", err)
	}

	return nil
}

// Store appends an audit entry.
func (b *SQLiteBackend) Store(ctx context.Context, entry *authlog.AuditEntry) error {
	var details any
	if len(entry.Details) > 0 {
		encoded, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("failed to encode audit details: %w", err)
		}
		details = string(encoded)
	}

	_, err := b.db.ExecContext(ctx, `
		INSERT INTO audit_trail (id, timestamp, event, key_hash, request_id, tool_name, success, details)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Timestamp.UnixMilli(),
		entry.Event,
		entry.KeyHash,
		entry.RequestID,
		entry.ToolName,
		boolToInt(entry.Success),
		details,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}

	return nil
}

// List returns audit entries newest first. A limit of 0 returns all.
func (b *SQLiteBackend) List(ctx context.Context, limit int) ([]*authlog.AuditEntry, error) {
	query := `
		SELECT id, timestamp, event, key_hash, request_id, tool_name, success, details
		FROM audit_trail
		ORDER BY timestamp DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit trail: %w", err)
	}
	defer rows.Close()

	var results []*authlog.AuditEntry
	for rows.Next() {
		var (
			entry     authlog.AuditEntry
			timestamp int64
			success   int
			details   sql.NullString
		)
		err := rows.Scan(&entry.ID, &timestamp, &entry.Event, &entry.KeyHash,
			&entry.RequestID, &entry.ToolName, &success, &details)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}

		entry.Timestamp = time.UnixMilli(timestamp)
		entry.Success = success != 0
		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &entry.Details); err != nil {
				b.logger.Warn("skipping malformed audit details", "id", entry.ID, "error", err)
			}
		}

		results = append(results, &entry)
	}

	return results, rows.Err()
}

// Count returns the number of stored audit entries.
func (b *SQLiteBackend) Count(ctx context.Context) (int64, error) {
	var count int64
	err := b.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_trail").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count audit entries: %w", err)
	}
	return count, nil
}

// Close closes the database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
