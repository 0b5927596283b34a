package authlog

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitizer_ScrubString(t *testing.T) {
	s := NewSanitizer(nil)

	tests := []struct {
		name    string
		input   string
		leaked  string
	}{
		{"sk prefix", "rejected key sk-abc123xyz", "sk-abc123xyz"},
		{"key prefix", "rejected key key-9f8e7d6c", "key-9f8e7d6c"},
		{"bare token", "token a1b2c3d4e5f6a7b8c9d0e1f2 rejected", "a1b2c3d4e5f6a7b8c9d0e1f2"},
		{"file path", "open /var/lib/ganymede/keys.yaml failed", "/var/lib/ganymede/keys.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.ScrubString(tt.input)
			if strings.Contains(got, tt.leaked) {
				t.Errorf("Expected %q scrubbed, got %q", tt.leaked, got)
			}
		})
	}

	// Ordinary prose passes through unchanged.
	if got := s.ScrubString("rate limit exceeded for key"); got != "rate limit exceeded for key" {
		t.Errorf("Expected prose untouched, got %q", got)
	}
}

func TestSanitizer_FieldMatchingIsCaseInsensitive(t *testing.T) {
	s := NewSanitizer([]string{"apiKey"})

	out := s.SanitizeDetails(map[string]any{"APIKEY": "secret123", "count": 1})
	if out["APIKEY"] != RedactionMarker {
		t.Errorf("Expected case-insensitive redaction, got %v", out["APIKEY"])
	}
	if out["count"] != 1 {
		t.Errorf("Expected non-sensitive field preserved, got %v", out["count"])
	}
}

func TestSanitizer_NestedDetails(t *testing.T) {
	s := NewSanitizer([]string{"token"})

	out := s.SanitizeDetails(map[string]any{
		"request": map[string]any{"token": "abc", "path": "/search"},
	})

	nested, ok := out["request"].(map[string]any)
	if !ok {
		t.Fatalf("Expected nested map, got %T", out["request"])
	}
	if nested["token"] != RedactionMarker {
		t.Errorf("Expected nested token redacted, got %v", nested["token"])
	}
}

func TestSanitizer_SanitizeError(t *testing.T) {
	s := NewSanitizer(nil)

	if got := s.SanitizeError(nil); got != "" {
		t.Errorf("Expected empty string for nil error, got %q", got)
	}

	got := s.SanitizeError(errors.New("validation failed for sk-live123456"))
	if strings.Contains(got, "sk-live123456") {
		t.Errorf("Expected key scrubbed from error, got %q", got)
	}
}
