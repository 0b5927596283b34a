package alerting

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/telemetry"
)

// dispatchTimeout bounds each handler's delivery attempt.
const dispatchTimeout = 30 * time.Second

// Alerter evaluates security events into alerts, deduplicates them via a
// per-(severity, title) cooldown, and dispatches accepted alerts to every
// registered handler.
type Alerter struct {
	config config.AlertConfig
	logger *slog.Logger

	mu        sync.Mutex
	alerts    []*Alert
	lastFired map[string]time.Time
	handlers  []Handler

	// dispatchWG tracks in-flight handler deliveries so Close can drain.
	dispatchWG sync.WaitGroup

	// now is the clock source, replaceable in tests.
	now func() time.Time
}

// NewAlerter creates an alerter with no handlers registered.
func NewAlerter(cfg config.AlertConfig) *Alerter {
	return &Alerter{
		config:    cfg,
		logger:    slog.Default().With("component", "alerting"),
		lastFired: make(map[string]time.Time),
		now:       time.Now,
	}
}

// ProcessSecurityEvent evaluates an event against the fixed rule table
// and triggers the resulting alert, if any.
func (a *Alerter) ProcessSecurityEvent(event SecurityEvent) {
	if !a.config.Enabled {
		return
	}

	alert := a.evaluate(event)
	if alert == nil {
		return
	}

	a.TriggerAlert(alert)
}

// evaluate maps an event to a candidate alert. Returns nil when the
// event does not warrant one.
func (a *Alerter) evaluate(event SecurityEvent) *Alert {
	var severity Severity
	var title string

	switch event.Type {
	case EventAuthFailure:
		if event.Severity != SeverityCritical {
			return nil
		}
		severity = SeverityHigh
		title = "Critical Authentication Failure"

	case EventRateLimitExceeded:
		severity = SeverityMedium
		title = "Rate Limit Exceeded"

	case EventSuspiciousActivity:
		severity = SeverityCritical
		title = "Suspicious Activity Detected"

	case EventMultipleFailures:
		if event.KeyHash == SystemKeyHash {
			severity = SeverityCritical
			title = "System-wide authentication failure rate exceeded threshold"
		} else {
			severity = SeverityHigh
			title = "Multiple Authentication Failures"
		}

	default:
		a.logger.Warn("unknown security event type", "type", event.Type)
		return nil
	}

	timestamp := event.Timestamp
	if timestamp.IsZero() {
		timestamp = a.now()
	}

	return &Alert{
		ID:        uuid.NewString(),
		Timestamp: timestamp,
		Severity:  severity,
		Title:     title,
		Message:   fmt.Sprintf("%s (key %s)", title, event.KeyHash),
		Details:   event.Details,
	}
}

// TriggerAlert applies the cooldown gate and, if the alert is accepted,
// stores it and dispatches it to all registered handlers. Suppressed
// alerts are a silent no-op.
//
// Dispatch happens on a background goroutine; the caller never blocks on
// handlers.
func (a *Alerter) TriggerAlert(alert *Alert) {
	if !a.config.Enabled {
		return
	}

	key := string(alert.Severity) + "|" + alert.Title

	a.mu.Lock()
	now := a.now()
	if last, ok := a.lastFired[key]; ok && now.Sub(last) < a.config.Cooldown {
		a.mu.Unlock()
		a.logger.Debug("alert suppressed by cooldown",
			"severity", alert.Severity,
			"title", alert.Title,
		)
		return
	}
	a.lastFired[key] = now
	a.alerts = append(a.alerts, alert)
	handlers := make([]Handler, len(a.handlers))
	copy(handlers, a.handlers)
	a.mu.Unlock()

	telemetry.RecordAlert(string(alert.Severity))
	a.logger.Info("security alert triggered",
		"alert_id", alert.ID,
		"severity", alert.Severity,
		"title", alert.Title,
	)

	a.dispatchWG.Add(1)
	go a.dispatch(alert, handlers)
}

// dispatch delivers an alert to each handler in turn. A failing handler
// is logged and does not stop delivery to the rest.
func (a *Alerter) dispatch(alert *Alert, handlers []Handler) {
	defer a.dispatchWG.Done()

	for _, h := range handlers {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		err := h.Notify(ctx, alert)
		cancel()

		if err != nil {
			a.logger.Error("alert handler failed",
				"handler", h.Name(),
				"alert_id", alert.ID,
				"error", err,
			)
		}
	}
}

// AddHandler registers a notification handler.
func (a *Alerter) AddHandler(h Handler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handlers = append(a.handlers, h)
}

// RemoveHandler unregisters the handler with the given name.
func (a *Alerter) RemoveHandler(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	kept := a.handlers[:0]
	for _, h := range a.handlers {
		if h.Name() != name {
			kept = append(kept, h)
		}
	}
	a.handlers = kept
}

// GetAlerts returns stored alerts, newest first. A positive limit caps
// the result; a non-empty severity filters by it.
func (a *Alerter) GetAlerts(limit int, severity Severity) []*Alert {
	a.mu.Lock()
	defer a.mu.Unlock()

	results := make([]*Alert, 0, len(a.alerts))
	for i := len(a.alerts) - 1; i >= 0; i-- {
		alert := a.alerts[i]
		if severity != "" && alert.Severity != severity {
			continue
		}
		copied := *alert
		results = append(results, &copied)
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results
}

// GetUnacknowledgedAlerts returns all alerts not yet acknowledged,
// newest first.
func (a *Alerter) GetUnacknowledgedAlerts() []*Alert {
	a.mu.Lock()
	defer a.mu.Unlock()

	var results []*Alert
	for i := len(a.alerts) - 1; i >= 0; i-- {
		if !a.alerts[i].Acknowledged {
			copied := *a.alerts[i]
			results = append(results, &copied)
		}
	}
	return results
}

// AcknowledgeAlert marks the alert with the given ID acknowledged.
func (a *Alerter) AcknowledgeAlert(id, by string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, alert := range a.alerts {
		if alert.ID == id {
			now := a.now()
			alert.Acknowledged = true
			alert.AcknowledgedAt = &now
			alert.AcknowledgedBy = by
			return nil
		}
	}
	return ErrAlertNotFound
}

// ClearOldAlerts prunes alerts older than the given number of hours and
// returns how many were removed. Zero or negative hours fall back to the
// configured retention.
func (a *Alerter) ClearOldAlerts(olderThanHours int) int {
	if olderThanHours <= 0 {
		olderThanHours = a.config.RetentionHours
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	cutoff := a.now().Add(-time.Duration(olderThanHours) * time.Hour)

	kept := a.alerts[:0]
	removed := 0
	for _, alert := range a.alerts {
		if alert.Timestamp.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, alert)
	}
	a.alerts = kept

	if removed > 0 {
		a.logger.Info("old alerts pruned",
			"removed", removed,
			"older_than_hours", olderThanHours,
		)
	}
	return removed
}

// Close waits for in-flight handler deliveries to finish.
func (a *Alerter) Close() {
	a.dispatchWG.Wait()
}
