package authlog

import (
	"fmt"
	"regexp"
	"strings"
)

// RedactionMarker replaces the value of any configured sensitive field.
const RedactionMarker = "[REDACTED]"

// Patterns scrubbed from free-text string values. Key-like tokens are
// matched by common provider prefixes and by bare alphanumeric runs
// long enough to be credentials rather than words.
var (
	prefixedKeyPattern = regexp.MustCompile(`\b(sk|key)-[a-zA-Z0-9_-]+`)
	bareTokenPattern   = regexp.MustCompile(`\b[a-zA-Z0-9]{20,}\b`)
	pathPattern        = regexp.MustCompile(`(?:[A-Za-z]:)?(?:/[\w.-]+){2,}`)
)

// Sanitizer computes redacted views of log entry details.
type Sanitizer struct {
	sensitive map[string]struct{}
}

// NewSanitizer creates a Sanitizer that redacts the named fields.
// Field matching is case-insensitive.
func NewSanitizer(sensitiveFields []string) *Sanitizer {
	s := &Sanitizer{
		sensitive: make(map[string]struct{}, len(sensitiveFields)),
	}
	for _, f := range sensitiveFields {
		s.sensitive[strings.ToLower(f)] = struct{}{}
	}
	return s
}

// SanitizeDetails returns a redacted copy of details. Sensitive fields
// are replaced wholesale with the redaction marker; string values of
// the remaining fields are scrubbed of embedded key-like tokens and
// filesystem paths. The input map is never mutated.
func (s *Sanitizer) SanitizeDetails(details map[string]any) map[string]any {
	if details == nil {
		return nil
	}

	sanitized := make(map[string]any, len(details))
	for k, v := range details {
		if s.isSensitive(k) {
			sanitized[k] = RedactionMarker
			continue
		}

		switch val := v.(type) {
		case string:
			sanitized[k] = s.ScrubString(val)
		case map[string]any:
			sanitized[k] = s.SanitizeDetails(val)
		case error:
			sanitized[k] = s.SanitizeError(val)
		default:
			sanitized[k] = v
		}
	}

	return sanitized
}

// ScrubString removes embedded key-like tokens and filesystem paths
// from a free-text value.
func (s *Sanitizer) ScrubString(value string) string {
	if value == "" {
		return value
	}

	scrubbed := prefixedKeyPattern.ReplaceAllString(value, RedactionMarker)
	scrubbed = bareTokenPattern.ReplaceAllString(scrubbed, RedactionMarker)
	scrubbed = pathPattern.ReplaceAllString(scrubbed, "[PATH]")
	return scrubbed
}

// SanitizeError scrubs an error message. Error strings frequently
// embed file paths and raw credentials from failed validation calls.
func (s *Sanitizer) SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return s.ScrubString(fmt.Sprint(err))
}

func (s *Sanitizer) isSensitive(field string) bool {
	_, ok := s.sensitive[strings.ToLower(field)]
	return ok
}
