package authlog

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"mercator-hq/ganymede/pkg/alerting"
	"mercator-hq/ganymede/pkg/config"
)

// AuthAttempt describes the outcome of one authentication attempt for
// logging purposes.
type AuthAttempt struct {
	Success      bool
	UsedFallback bool
	RateLimited  bool
	KeyHash      string
	Duration     time.Duration
	ErrorMessage string
}

// AuthLogger records structured authentication events in a bounded
// in-memory ring and writes audit trail entries through a Backend.
//
// # Thread Safety
//
// All methods are safe for concurrent use. The ring is guarded by a
// single mutex; audit writes happen outside the lock.
type AuthLogger struct {
	config    config.AuthLogConfig
	sanitizer *Sanitizer
	backend   Backend
	logger    *slog.Logger

	mu      sync.RWMutex
	entries []*Entry

	minRank int

	// now is the clock source, replaceable in tests.
	now func() time.Time
}

// NewAuthLogger creates an AuthLogger. backend may be nil, in which
// case audit trail entries are dropped regardless of configuration.
func NewAuthLogger(cfg config.AuthLogConfig, backend Backend) *AuthLogger {
	minRank, ok := levelRank[LogLevel(cfg.LogLevel)]
	if !ok {
		minRank = levelRank[LevelInfo]
	}

	return &AuthLogger{
		config:    cfg,
		sanitizer: NewSanitizer(cfg.SensitiveFields),
		backend:   backend,
		logger:    slog.Default().With("component", "authlog"),
		minRank:   minRank,
		now:       time.Now,
	}
}

// LogAuthentication records an authentication attempt. An audit trail
// entry is written for every attempt, successful or not.
func (l *AuthLogger) LogAuthentication(attempt AuthAttempt, reqCtx Context) {
	if !l.config.Enabled {
		return
	}

	level := LevelInfo
	if !attempt.Success {
		level = LevelError
	}

	details := map[string]any{
		"success":      attempt.Success,
		"usedFallback": attempt.UsedFallback,
		"rateLimited":  attempt.RateLimited,
		"authTimeMs":   attempt.Duration.Milliseconds(),
	}
	if attempt.ErrorMessage != "" {
		details["error"] = attempt.ErrorMessage
	}

	entry := l.record(level, EventAuthentication, attempt.KeyHash, reqCtx, details)
	l.audit(EventAuthentication, attempt.KeyHash, reqCtx, attempt.Success, entry)
}

// LogSecurityEvent records a security event. Events of critical
// severity also produce an audit trail entry.
func (l *AuthLogger) LogSecurityEvent(event alerting.SecurityEvent, reqCtx Context) {
	if !l.config.Enabled {
		return
	}

	details := make(map[string]any, len(event.Details)+2)
	for k, v := range event.Details {
		details[k] = v
	}
	details["eventType"] = string(event.Type)
	details["severity"] = string(event.Severity)

	entry := l.record(severityLevel(event.Severity), EventSecurityEvent, event.KeyHash, reqCtx, details)
	if event.Severity == alerting.SeverityCritical {
		l.audit(EventSecurityEvent, event.KeyHash, reqCtx, false, entry)
	}
}

// LogToolExecution records the outcome of a tool dispatch.
func (l *AuthLogger) LogToolExecution(name, keyHash string, success bool, duration time.Duration, reqCtx Context, err error) {
	if !l.config.Enabled {
		return
	}

	level := LevelInfo
	details := map[string]any{
		"tool":       name,
		"success":    success,
		"durationMs": duration.Milliseconds(),
	}
	if err != nil {
		level = LevelError
		details["error"] = l.sanitizer.SanitizeError(err)
	}

	if reqCtx.ToolName == "" {
		reqCtx.ToolName = name
	}
	l.record(level, EventToolExecution, keyHash, reqCtx, details)
}

// LogRateLimit records a rate-limit denial for a key.
func (l *AuthLogger) LogRateLimit(keyHash string, remaining int, reset time.Time, reqCtx Context) {
	if !l.config.Enabled {
		return
	}

	l.record(LevelWarn, EventRateLimit, keyHash, reqCtx, map[string]any{
		"remaining": remaining,
		"resetTime": reset.UTC().Format(time.RFC3339),
	})
}

// LogCacheOperation records a validation cache hit, miss, or write.
func (l *AuthLogger) LogCacheOperation(op, keyHash string, reqCtx Context) {
	if !l.config.Enabled {
		return
	}

	l.record(LevelDebug, EventCacheOperation, keyHash, reqCtx, map[string]any{
		"operation": op,
	})
}

// record builds, sanitizes, and appends an entry. Returns the stored
// entry, or nil when filtered out by the minimum level.
func (l *AuthLogger) record(level LogLevel, event, keyHash string, reqCtx Context, details map[string]any) *Entry {
	if levelRank[level] < l.minRank && level != LevelSecurity {
		return nil
	}

	if l.config.IncludeStackTrace && (level == LevelError || level == LevelSecurity) {
		details["stackTrace"] = string(debug.Stack())
	}

	entry := &Entry{
		ID:         uuid.NewString(),
		Timestamp:  l.now(),
		Level:      level,
		Event:      event,
		KeyHash:    keyHash,
		RequestID:  reqCtx.RequestID,
		ToolName:   reqCtx.ToolName,
		Details:    l.sanitizer.SanitizeDetails(details),
		RawDetails: details,
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	if max := l.config.MaxLogEntries; max > 0 && len(l.entries) > max {
		// Drop the oldest entries. Copy to release the backing array.
		trimmed := make([]*Entry, max)
		copy(trimmed, l.entries[len(l.entries)-max:])
		l.entries = trimmed
	}
	l.mu.Unlock()

	return entry
}

// audit writes an audit trail entry derived from a log entry.
func (l *AuthLogger) audit(event, keyHash string, reqCtx Context, success bool, entry *Entry) {
	if !l.config.AuditTrailEnabled || l.backend == nil {
		return
	}

	var details map[string]any
	if entry != nil {
		details = entry.Details
	}

	err := l.backend.Store(context.Background(), &AuditEntry{
		ID:        uuid.NewString(),
		Timestamp: l.now(),
		Event:     event,
		KeyHash:   keyHash,
		RequestID: reqCtx.RequestID,
		ToolName:  reqCtx.ToolName,
		Success:   success,
		Details:   details,
	})
	if err != nil {
		l.logger.Error("failed to store audit entry", "event", event, "error", err)
	}
}

// GetLogEntries returns log entries newest first. A non-empty level
// filters to that exact level; limit 0 returns all matching entries.
func (l *AuthLogger) GetLogEntries(limit int, level LogLevel) []*Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	results := make([]*Entry, 0, len(l.entries))
	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		if level != "" && e.Level != level {
			continue
		}
		entryCopy := *e
		results = append(results, &entryCopy)
		if limit > 0 && len(results) >= limit {
			break
		}
	}

	return results
}

// GetSecurityEvents returns security event entries newest first.
func (l *AuthLogger) GetSecurityEvents(limit int) []*Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	results := make([]*Entry, 0)
	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		if e.Event != EventSecurityEvent {
			continue
		}
		entryCopy := *e
		results = append(results, &entryCopy)
		if limit > 0 && len(results) >= limit {
			break
		}
	}

	return results
}

// GetAuditTrail returns audit entries from the backend, newest first.
func (l *AuthLogger) GetAuditTrail(ctx context.Context, limit int) ([]*AuditEntry, error) {
	if l.backend == nil {
		return nil, nil
	}
	return l.backend.List(ctx, limit)
}

// GetStats summarizes the logger's current state.
func (l *AuthLogger) GetStats(ctx context.Context) (*Stats, error) {
	l.mu.RLock()
	stats := &Stats{
		TotalEntries:   len(l.entries),
		EntriesByLevel: make(map[LogLevel]int),
		EntriesByEvent: make(map[string]int),
	}
	for _, e := range l.entries {
		stats.EntriesByLevel[e.Level]++
		stats.EntriesByEvent[e.Event]++
	}
	if len(l.entries) > 0 {
		oldest := l.entries[0].Timestamp
		newest := l.entries[len(l.entries)-1].Timestamp
		stats.OldestEntry = &oldest
		stats.NewestEntry = &newest
	}
	l.mu.RUnlock()

	if l.backend != nil {
		count, err := l.backend.Count(ctx)
		if err != nil {
			return nil, err
		}
		stats.AuditEntries = count
	}

	return stats, nil
}

// Clear removes all in-memory log entries. The audit trail is not
// affected.
func (l *AuthLogger) Clear() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}

// Close releases the audit backend.
func (l *AuthLogger) Close() error {
	if l.backend == nil {
		return nil
	}
	return l.backend.Close()
}

// severityLevel maps an event severity to a log level.
func severityLevel(severity alerting.Severity) LogLevel {
	switch severity {
	case alerting.SeverityLow:
		return LevelInfo
	case alerting.SeverityMedium:
		return LevelWarn
	case alerting.SeverityHigh:
		return LevelError
	case alerting.SeverityCritical:
		return LevelSecurity
	default:
		return LevelInfo
	}
}
