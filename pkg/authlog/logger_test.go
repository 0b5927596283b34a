package authlog

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"mercator-hq/ganymede/pkg/alerting"
	"mercator-hq/ganymede/pkg/config"
)

func testConfig() config.AuthLogConfig {
	return config.AuthLogConfig{
		Enabled:           true,
		LogLevel:          "debug",
		MaxLogEntries:     100,
		AuditTrailEnabled: true,
		SensitiveFields:   []string{"apiKey", "password", "token", "secret", "key"},
	}
}

// memBackend is a minimal in-process Backend for logger tests.
type memBackend struct {
	entries []*AuditEntry
}

func (b *memBackend) Store(ctx context.Context, entry *AuditEntry) error {
	b.entries = append(b.entries, entry)
	return nil
}

func (b *memBackend) List(ctx context.Context, limit int) ([]*AuditEntry, error) {
	results := make([]*AuditEntry, 0, len(b.entries))
	for i := len(b.entries) - 1; i >= 0; i-- {
		results = append(results, b.entries[i])
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}

func (b *memBackend) Count(ctx context.Context) (int64, error) {
	return int64(len(b.entries)), nil
}

func (b *memBackend) Close() error { return nil }

func TestAuthLogger_SanitizesSensitiveFields(t *testing.T) {
	logger := NewAuthLogger(testConfig(), nil)

	logger.LogSecurityEvent(alerting.SecurityEvent{
		Type:     alerting.EventSuspiciousActivity,
		KeyHash:  "h1",
		Severity: alerting.SeverityMedium,
		Details:  map[string]any{"apiKey": "secret123", "attempt": 3},
	}, Context{RequestID: "r-1"})

	entries := logger.GetLogEntries(0, "")
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}

	entry := entries[0]
	if entry.Details["apiKey"] != RedactionMarker {
		t.Errorf("Expected sanitized apiKey %q, got %v", RedactionMarker, entry.Details["apiKey"])
	}
	if entry.RawDetails["apiKey"] != "secret123" {
		t.Errorf("Expected raw apiKey preserved, got %v", entry.RawDetails["apiKey"])
	}
	if entry.Details["attempt"] != 3 {
		t.Errorf("Expected non-sensitive field untouched, got %v", entry.Details["attempt"])
	}
}

func TestAuthLogger_AuthenticationWritesAudit(t *testing.T) {
	backend := &memBackend{}
	logger := NewAuthLogger(testConfig(), backend)

	logger.LogAuthentication(AuthAttempt{
		Success: true,
		KeyHash: "h1",
	}, Context{RequestID: "r-1", ToolName: "search"})

	logger.LogAuthentication(AuthAttempt{
		Success:      false,
		KeyHash:      "h2",
		ErrorMessage: "unknown API key",
	}, Context{RequestID: "r-2"})

	trail, err := logger.GetAuditTrail(context.Background(), 0)
	if err != nil {
		t.Fatalf("GetAuditTrail failed: %v", err)
	}
	if len(trail) != 2 {
		t.Fatalf("Expected 2 audit entries, got %d", len(trail))
	}

	// Newest first.
	if trail[0].Success || trail[0].KeyHash != "h2" {
		t.Errorf("Expected failed attempt for h2 first, got %+v", trail[0])
	}
	if !trail[1].Success {
		t.Errorf("Expected successful attempt recorded, got %+v", trail[1])
	}
}

func TestAuthLogger_CriticalSecurityEventWritesAudit(t *testing.T) {
	backend := &memBackend{}
	logger := NewAuthLogger(testConfig(), backend)

	logger.LogSecurityEvent(alerting.SecurityEvent{
		Type:     alerting.EventSuspiciousActivity,
		KeyHash:  "h1",
		Severity: alerting.SeverityCritical,
	}, Context{})

	logger.LogSecurityEvent(alerting.SecurityEvent{
		Type:     alerting.EventRateLimitExceeded,
		KeyHash:  "h1",
		Severity: alerting.SeverityMedium,
	}, Context{})

	if len(backend.entries) != 1 {
		t.Errorf("Expected only the critical event audited, got %d entries", len(backend.entries))
	}
}

func TestAuthLogger_MinLevelFiltering(t *testing.T) {
	cfg := testConfig()
	cfg.LogLevel = "warn"
	logger := NewAuthLogger(cfg, nil)

	logger.LogCacheOperation("hit", "h1", Context{}) // debug: filtered
	logger.LogAuthentication(AuthAttempt{Success: true, KeyHash: "h1"}, Context{}) // info: filtered
	logger.LogRateLimit("h1", 0, time.Now(), Context{}) // warn: kept

	// security level is always recorded regardless of minimum.
	logger.LogSecurityEvent(alerting.SecurityEvent{
		Type:     alerting.EventSuspiciousActivity,
		KeyHash:  "h1",
		Severity: alerting.SeverityCritical,
	}, Context{})

	entries := logger.GetLogEntries(0, "")
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries past the level filter, got %d", len(entries))
	}
}

func TestAuthLogger_RingBound(t *testing.T) {
	cfg := testConfig()
	cfg.MaxLogEntries = 5
	logger := NewAuthLogger(cfg, nil)

	for i := 0; i < 10; i++ {
		logger.LogCacheOperation("miss", "h1", Context{})
	}

	if got := len(logger.GetLogEntries(0, "")); got != 5 {
		t.Errorf("Expected ring bounded to 5 entries, got %d", got)
	}
}

func TestAuthLogger_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	logger := NewAuthLogger(cfg, nil)

	logger.LogAuthentication(AuthAttempt{Success: true, KeyHash: "h1"}, Context{})

	if got := len(logger.GetLogEntries(0, "")); got != 0 {
		t.Errorf("Expected disabled logger to record nothing, got %d", got)
	}
}

func TestAuthLogger_GetSecurityEvents(t *testing.T) {
	logger := NewAuthLogger(testConfig(), nil)

	logger.LogCacheOperation("hit", "h1", Context{})
	logger.LogSecurityEvent(alerting.SecurityEvent{
		Type:     alerting.EventRateLimitExceeded,
		KeyHash:  "h1",
		Severity: alerting.SeverityMedium,
	}, Context{})

	events := logger.GetSecurityEvents(0)
	if len(events) != 1 {
		t.Fatalf("Expected 1 security event, got %d", len(events))
	}
	if events[0].Event != EventSecurityEvent {
		t.Errorf("Expected event %q, got %q", EventSecurityEvent, events[0].Event)
	}
}

func TestAuthLogger_GetStats(t *testing.T) {
	backend := &memBackend{}
	logger := NewAuthLogger(testConfig(), backend)

	logger.LogAuthentication(AuthAttempt{Success: true, KeyHash: "h1"}, Context{})
	logger.LogRateLimit("h1", 0, time.Now(), Context{})

	stats, err := logger.GetStats(context.Background())
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalEntries != 2 {
		t.Errorf("Expected 2 total entries, got %d", stats.TotalEntries)
	}
	if stats.EntriesByLevel[LevelWarn] != 1 {
		t.Errorf("Expected 1 warn entry, got %d", stats.EntriesByLevel[LevelWarn])
	}
	if stats.EntriesByEvent[EventAuthentication] != 1 {
		t.Errorf("Expected 1 authentication entry, got %d", stats.EntriesByEvent[EventAuthentication])
	}
	if stats.AuditEntries != 1 {
		t.Errorf("Expected 1 audit entry, got %d", stats.AuditEntries)
	}
	if stats.OldestEntry == nil || stats.NewestEntry == nil {
		t.Error("Expected oldest/newest timestamps to be set")
	}
}

func TestAuthLogger_Clear(t *testing.T) {
	backend := &memBackend{}
	logger := NewAuthLogger(testConfig(), backend)

	logger.LogAuthentication(AuthAttempt{Success: true, KeyHash: "h1"}, Context{})
	logger.Clear()

	if got := len(logger.GetLogEntries(0, "")); got != 0 {
		t.Errorf("Expected empty ring after Clear, got %d", got)
	}
	// Audit trail survives a ring clear.
	if len(backend.entries) != 1 {
		t.Errorf("Expected audit trail untouched, got %d entries", len(backend.entries))
	}
}

func TestAuthLogger_ToolExecutionError(t *testing.T) {
	logger := NewAuthLogger(testConfig(), nil)

	logger.LogToolExecution("search", "h1", false, 25*time.Millisecond, Context{RequestID: "r-1"},
		errors.New("failed to open /etc/ganymede/keys.yaml"))

	entries := logger.GetLogEntries(0, LevelError)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 error entry, got %d", len(entries))
	}

	errText, _ := entries[0].Details["error"].(string)
	if strings.Contains(errText, "/etc/ganymede/keys.yaml") {
		t.Errorf("Expected path scrubbed from error text, got %q", errText)
	}
}

func TestExportJSON(t *testing.T) {
	backend := &memBackend{}
	logger := NewAuthLogger(testConfig(), backend)

	logger.LogAuthentication(AuthAttempt{Success: true, KeyHash: "h1"}, Context{RequestID: "r-1"})

	var buf bytes.Buffer
	if err := logger.ExportJSON(context.Background(), &buf); err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	var doc struct {
		Logs       []json.RawMessage `json:"logs"`
		AuditTrail []json.RawMessage `json:"auditTrail"`
		ExportedAt time.Time         `json:"exportedAt"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("Failed to parse export: %v", err)
	}
	if len(doc.Logs) != 1 {
		t.Errorf("Expected 1 log in export, got %d", len(doc.Logs))
	}
	if len(doc.AuditTrail) != 1 {
		t.Errorf("Expected 1 audit entry in export, got %d", len(doc.AuditTrail))
	}
	if doc.ExportedAt.IsZero() {
		t.Error("Expected exportedAt to be set")
	}
}

func TestExportCSV(t *testing.T) {
	logger := NewAuthLogger(testConfig(), nil)

	logger.LogSecurityEvent(alerting.SecurityEvent{
		Type:     alerting.EventRateLimitExceeded,
		KeyHash:  "h1",
		Severity: alerting.SeverityMedium,
		Details:  map[string]any{"note": `contains "quotes", and commas`},
	}, Context{RequestID: "r-1", ToolName: "search"})

	var buf bytes.Buffer
	if err := logger.ExportCSV(&buf); err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected header plus 1 row, got %d records", len(records))
	}

	wantHeader := "timestamp,level,event,keyHash,requestId,toolName,details"
	if got := strings.Join(records[0], ","); got != wantHeader {
		t.Errorf("Expected header %q, got %q", wantHeader, got)
	}
	row := records[1]
	if row[2] != EventSecurityEvent || row[3] != "h1" || row[4] != "r-1" || row[5] != "search" {
		t.Errorf("Unexpected row values: %v", row)
	}
	if !strings.Contains(row[6], "quotes") {
		t.Errorf("Expected details JSON in last column, got %q", row[6])
	}
}
