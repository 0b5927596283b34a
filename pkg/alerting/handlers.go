package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// ConsoleHandler prints accepted alerts to a writer, one line per alert.
type ConsoleHandler struct {
	out io.Writer
}

// NewConsoleHandler creates a console handler writing to stdout.
func NewConsoleHandler() *ConsoleHandler {
	return &ConsoleHandler{out: os.Stdout}
}

// Name identifies the handler.
func (h *ConsoleHandler) Name() string { return "console" }

// Notify prints the alert.
func (h *ConsoleHandler) Notify(ctx context.Context, alert *Alert) error {
	_, err := fmt.Fprintf(h.out, "[SECURITY ALERT] %s %s: %s - %s\n",
		alert.Timestamp.Format(time.RFC3339),
		alert.Severity,
		alert.Title,
		alert.Message,
	)
	return err
}

// webhookPayload is the JSON body POSTed by the webhook handler.
type webhookPayload struct {
	AlertID   string         `json:"alert_id"`
	Timestamp string         `json:"timestamp"`
	Severity  Severity       `json:"severity"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
}

// WebhookHandler delivers alerts as JSON POSTs to a configured URL.
// Non-2xx responses are reported as errors; the dispatcher logs and
// swallows them.
type WebhookHandler struct {
	url    string
	client *http.Client
}

// NewWebhookHandler creates a webhook handler for the given URL. The
// timeout bounds each delivery attempt.
func NewWebhookHandler(url string, timeout time.Duration) *WebhookHandler {
	return &WebhookHandler{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Name identifies the handler.
func (h *WebhookHandler) Name() string { return "webhook" }

// Notify POSTs the alert to the webhook URL.
func (h *WebhookHandler) Notify(ctx context.Context, alert *Alert) error {
	payload := webhookPayload{
		AlertID:   alert.ID,
		Timestamp: alert.Timestamp.UTC().Format(time.RFC3339),
		Severity:  alert.Severity,
		Title:     alert.Title,
		Message:   alert.Message,
		Details:   alert.Details,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
