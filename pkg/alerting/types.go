package alerting

import (
	"context"
	"errors"
	"time"
)

// Severity classifies how serious an alert is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// EventType identifies the kind of security event.
type EventType string

const (
	// EventAuthFailure is a single failed authentication attempt.
	EventAuthFailure EventType = "authentication_failure"

	// EventRateLimitExceeded is a request denied by the rate limiter.
	EventRateLimitExceeded EventType = "rate_limit_exceeded"

	// EventSuspiciousActivity is an anomalous request pattern flagged by
	// an observer.
	EventSuspiciousActivity EventType = "suspicious_activity"

	// EventMultipleFailures is repeated authentication failures for one
	// key, or system-wide when the event carries SystemKeyHash.
	EventMultipleFailures EventType = "multiple_failures"
)

// SystemKeyHash marks events that concern the whole process rather than
// a single key.
const SystemKeyHash = "system"

// SecurityEvent is an immutable observation produced by the
// authentication manager or other observers.
type SecurityEvent struct {
	// Type is the kind of event.
	Type EventType `json:"type"`

	// KeyHash is the derived key identifier, or SystemKeyHash.
	KeyHash string `json:"keyHash"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Severity is the reporter's assessment of the event itself. Alert
	// severity is assigned by evaluation, not taken from here, except
	// for authentication failures where a critical event escalates.
	Severity Severity `json:"severity"`

	// Details carries free-form context for the event.
	Details map[string]any `json:"details,omitempty"`
}

// Alert is a severity-classified notification produced by evaluating a
// security event. Alerts are immutable except for acknowledgement.
type Alert struct {
	// ID uniquely identifies the alert.
	ID string `json:"id"`

	// Timestamp is when the alert was accepted.
	Timestamp time.Time `json:"timestamp"`

	// Severity is the evaluated severity.
	Severity Severity `json:"severity"`

	// Title is the fixed title assigned by evaluation. Severity plus
	// title form the deduplication key.
	Title string `json:"title"`

	// Message is a human-readable summary.
	Message string `json:"message"`

	// Details carries the originating event's context.
	Details map[string]any `json:"details,omitempty"`

	// Acknowledged indicates an operator has seen the alert.
	Acknowledged bool `json:"acknowledged"`

	// AcknowledgedAt is when the alert was acknowledged, if it was.
	AcknowledgedAt *time.Time `json:"acknowledgedAt,omitempty"`

	// AcknowledgedBy names who acknowledged the alert, if recorded.
	AcknowledgedBy string `json:"acknowledgedBy,omitempty"`
}

// Handler delivers an accepted alert to a notification channel.
type Handler interface {
	// Name identifies the handler for registration and logging.
	Name() string

	// Notify delivers the alert. Errors are logged by the dispatcher
	// and never propagate to the alert producer.
	Notify(ctx context.Context, alert *Alert) error
}

// ErrAlertNotFound is returned when acknowledging an unknown alert ID.
var ErrAlertNotFound = errors.New("alert not found")
