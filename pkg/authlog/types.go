package authlog

import (
	"context"
	"time"
)

// LogLevel classifies the importance of an authentication log entry.
type LogLevel string

// Log levels in ascending order of importance. LevelSecurity is always
// recorded regardless of the configured minimum level.
const (
	LevelDebug    LogLevel = "debug"
	LevelInfo     LogLevel = "info"
	LevelWarn     LogLevel = "warn"
	LevelError    LogLevel = "error"
	LevelSecurity LogLevel = "security"
)

// levelRank orders levels for minimum-level filtering.
var levelRank = map[LogLevel]int{
	LevelDebug:    0,
	LevelInfo:     1,
	LevelWarn:     2,
	LevelError:    3,
	LevelSecurity: 4,
}

// Event names used by the logger's write paths.
const (
	EventAuthentication = "authentication"
	EventSecurityEvent  = "security_event"
	EventToolExecution  = "tool_execution"
	EventRateLimit      = "rate_limit"
	EventCacheOperation = "cache_operation"
)

// Context carries request correlation fields attached to log entries.
type Context struct {
	RequestID string `json:"requestId,omitempty"`
	ToolName  string `json:"toolName,omitempty"`
}

// Entry is a single structured authentication log record.
//
// Details holds the sanitized view computed at write time: sensitive
// fields are replaced with a redaction marker and string values are
// scrubbed of embedded secrets. RawDetails preserves the original,
// unsanitized values; it is excluded from JSON export.
type Entry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Level     LogLevel       `json:"level"`
	Event     string         `json:"event"`
	KeyHash   string         `json:"keyHash,omitempty"`
	RequestID string         `json:"requestId,omitempty"`
	ToolName  string         `json:"toolName,omitempty"`
	Details   map[string]any `json:"details,omitempty"`

	RawDetails map[string]any `json:"-"`
}

// AuditEntry is an append-only audit trail record. Audit entries are
// written for every authentication attempt and for critical security
// events; they carry only sanitized details.
type AuditEntry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Event     string         `json:"event"`
	KeyHash   string         `json:"keyHash,omitempty"`
	RequestID string         `json:"requestId,omitempty"`
	ToolName  string         `json:"toolName,omitempty"`
	Success   bool           `json:"success"`
	Details   map[string]any `json:"details,omitempty"`
}

// Stats summarizes the logger's in-memory state.
type Stats struct {
	TotalEntries   int              `json:"totalEntries"`
	EntriesByLevel map[LogLevel]int `json:"entriesByLevel"`
	EntriesByEvent map[string]int   `json:"entriesByEvent"`
	AuditEntries   int64            `json:"auditEntries"`
	OldestEntry    *time.Time       `json:"oldestEntry,omitempty"`
	NewestEntry    *time.Time       `json:"newestEntry,omitempty"`
}

// Backend persists audit trail entries. Implementations must be safe
// for concurrent use.
type Backend interface {
	// Store appends an audit entry.
	Store(ctx context.Context, entry *AuditEntry) error

	// List returns audit entries in reverse chronological order,
	// newest first. A limit of 0 returns all entries.
	List(ctx context.Context, limit int) ([]*AuditEntry, error)

	// Count returns the number of stored audit entries.
	Count(ctx context.Context) (int64, error)

	// Close releases resources held by the backend.
	Close() error
}
