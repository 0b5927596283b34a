package authlog

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// exportEnvelope is the JSON export document shape.
type exportEnvelope struct {
	Logs       []*Entry      `json:"logs"`
	AuditTrail []*AuditEntry `json:"auditTrail"`
	ExportedAt time.Time     `json:"exportedAt"`
}

// ExportJSON writes a full dump of the log ring and audit trail as a
// single JSON document. The export is read-only; entries are not
// consumed. Only sanitized details are included.
func (l *AuthLogger) ExportJSON(ctx context.Context, w io.Writer) error {
	trail, err := l.GetAuditTrail(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to read audit trail: %w", err)
	}

	envelope := exportEnvelope{
		Logs:       l.GetLogEntries(0, ""),
		AuditTrail: trail,
		ExportedAt: l.now().UTC(),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(envelope)
}

// csvHeader is the fixed CSV column order.
var csvHeader = []string{"timestamp", "level", "event", "keyHash", "requestId", "toolName", "details"}

// ExportCSV writes the log ring as CSV with a fixed column order.
// Details are flattened to a JSON string in the last column; the csv
// writer handles quoting and escaping.
func (l *AuthLogger) ExportCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	entries := l.GetLogEntries(0, "")
	// Export oldest first for a chronological file.
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]

		details := ""
		if len(e.Details) > 0 {
			encoded, err := json.Marshal(e.Details)
			if err != nil {
				return fmt.Errorf("failed to encode details: %w", err)
			}
			details = string(encoded)
		}

		row := []string{
			e.Timestamp.UTC().Format(time.RFC3339),
			string(e.Level),
			e.Event,
			e.KeyHash,
			e.RequestID,
			e.ToolName,
			details,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
