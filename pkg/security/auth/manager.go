package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"mercator-hq/ganymede/pkg/alerting"
	"mercator-hq/ganymede/pkg/authlog"
	"mercator-hq/ganymede/pkg/backend"
	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/limits/ratelimit"
	"mercator-hq/ganymede/pkg/telemetry"
)

// Manager makes the admission decision for every incoming request. It
// owns the validation cache, the per-key rate limiter, the concurrent
// request gate, and the backend service pool; the alerter and logger
// are injected and remain owned by the caller.
//
// # Admission Algorithm
//
// 1. Substitute the configured fallback key when the request carries
// no key; reject when no fallback is configured.
// 2. Acquire a concurrent request slot.
// 3. Resolve the key's validation outcome, consulting the cache first;
// concurrent misses for the same key collapse to a single validation.
// 4. Check the per-key sliding-window rate limit.
// 5. Acquire a pooled backend service handle for the key.
//
// Failures at any step produce a typed AuthenticationResult, never a
// panic or a hard error; rate limiting and invalid keys are expected
// conditions.
//
// # Thread Safety
//
// All methods are safe for concurrent use.
type Manager struct {
	config    *config.Config
	validator Validator

	cache      *ValidationCache
	limiter    *ratelimit.KeyLimiter
	concurrent *ratelimit.ConcurrentLimiter
	pool       *backend.Pool

	alerter  *alerting.Alerter
	authLog  *authlog.AuthLogger
	failures *failureTracker

	// inflight collapses concurrent validations of the same key hash.
	mu       sync.Mutex
	inflight map[string]*validationCall

	logger *slog.Logger

	// now is the clock source, replaceable in tests.
	now func() time.Time
}

// validationCall is an in-progress key validation other callers can
// wait on.
type validationCall struct {
	done    chan struct{}
	outcome ValidationOutcome
}

// NewManager creates a Manager and its owned components. validator and
// factory are required; alerter and authLog may be nil, in which case
// event reporting and structured logging are skipped.
func NewManager(cfg *config.Config, validator Validator, factory backend.Factory, alerter *alerting.Alerter, authLog *authlog.AuthLogger) *Manager {
	return &Manager{
		config:    cfg,
		validator: validator,
		cache:     NewValidationCache(cfg.Auth.Cache),
		limiter: ratelimit.NewKeyLimiter(ratelimit.Config{
			Enabled:           cfg.RateLimit.Enabled,
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
			BurstLimit:        cfg.RateLimit.BurstLimit,
			KeyBasedLimiting:  cfg.RateLimit.KeyBasedLimiting,
		}),
		concurrent: ratelimit.NewConcurrentLimiter(cfg.Performance.ConcurrentRequestLimit),
		pool:       backend.NewPool(cfg.Performance, factory),
		alerter:    alerter,
		authLog:    authLog,
		failures:   newFailureTracker(cfg.Alerts.Thresholds),
		inflight:   make(map[string]*validationCall),
		logger:     slog.Default().With("component", "auth.manager"),
		now:        time.Now,
	}
}

// Authenticate admits or rejects one request. On success the returned
// service is the pooled backend handle for the key and release must be
// called when the request finishes to free the concurrency slot.
// release is always non-nil and idempotent; on rejection it is a no-op.
func (m *Manager) Authenticate(ctx context.Context, apiKey string, req Request) (AuthenticationResult, backend.Service, func()) {
	start := m.now()
	reqCtx := authlog.Context{RequestID: req.RequestID, ToolName: req.ToolName}

	usedFallback := false
	if apiKey == "" {
		if m.config.Auth.FallbackKey == "" {
			result := m.deny(start, "", usedFallback, false, 0, "missing API key and no fallback key configured", reqCtx)
			return result, nil, func() {}
		}
		apiKey = m.config.Auth.FallbackKey
		usedFallback = true
	}

	keyHash := HashKey(apiKey)

	if !m.concurrent.Acquire() {
		result := m.deny(start, keyHash, usedFallback, false, 0, "concurrent request limit exceeded", reqCtx)
		return result, nil, func() {}
	}
	var once sync.Once
	release := func() { once.Do(m.concurrent.Release) }

	outcome := m.resolveOutcome(ctx, keyHash, apiKey, reqCtx)
	if !outcome.Valid {
		release()
		m.reportAuthFailure(keyHash, outcome.Reason, reqCtx)
		result := m.deny(start, keyHash, usedFallback, false, 0, "invalid API key: "+outcome.Reason, reqCtx)
		return result, nil, release
	}

	limit := m.limiter.Allow(keyHash)
	if !limit.Allowed {
		release()
		m.reportRateLimit(keyHash, limit, reqCtx)
		result := m.deny(start, keyHash, usedFallback, true, limit.RetryAfter, "rate limit exceeded", reqCtx)
		return result, nil, release
	}

	service, err := m.pool.Get(ctx, keyHash, apiKey)
	if err != nil {
		release()
		m.logger.Error("backend service creation failed",
			"key_hash", TruncatedHash(keyHash), "error", err)
		result := m.deny(start, keyHash, usedFallback, false, 0, "failed to initialize backend service", reqCtx)
		return result, nil, release
	}

	result := AuthenticationResult{
		Success:      true,
		UsedFallback: usedFallback,
		KeyHash:      keyHash,
		AuthTime:     m.now().Sub(start),
	}
	telemetry.RecordAuthAttempt("success")
	telemetry.ObserveAuthDuration(result.AuthTime.Seconds())
	telemetry.SetPoolSize(m.pool.Stats().Size)
	if m.authLog != nil {
		m.authLog.LogAuthentication(authlog.AuthAttempt{
			Success:      true,
			UsedFallback: usedFallback,
			KeyHash:      keyHash,
			Duration:     result.AuthTime,
		}, reqCtx)
	}

	return result, service, release
}

// resolveOutcome returns the validation outcome for a key, from cache
// when fresh. Concurrent cache misses for the same key hash collapse
// to one validator call; latecomers receive the first caller's result.
func (m *Manager) resolveOutcome(ctx context.Context, keyHash, apiKey string, reqCtx authlog.Context) ValidationOutcome {
	if outcome, ok := m.cache.Get(keyHash); ok {
		telemetry.RecordCacheLookup("hit")
		if m.authLog != nil {
			m.authLog.LogCacheOperation("hit", keyHash, reqCtx)
		}
		return outcome
	}
	telemetry.RecordCacheLookup("miss")
	if m.authLog != nil {
		m.authLog.LogCacheOperation("miss", keyHash, reqCtx)
	}

	m.mu.Lock()
	if c, ok := m.inflight[keyHash]; ok {
		m.mu.Unlock()
		select {
		case <-c.done:
			return c.outcome
		case <-ctx.Done():
			return ValidationOutcome{Valid: false, Reason: "validation canceled", ValidatedAt: m.now()}
		}
	}
	c := &validationCall{done: make(chan struct{})}
	m.inflight[keyHash] = c
	m.mu.Unlock()

	c.outcome = m.validator.Validate(ctx, apiKey)
	m.cache.Set(keyHash, c.outcome, m.config.Auth.Cache.TTL)

	m.mu.Lock()
	delete(m.inflight, keyHash)
	m.mu.Unlock()
	close(c.done)

	return c.outcome
}

// deny builds a rejection result and records it.
func (m *Manager) deny(start time.Time, keyHash string, usedFallback, rateLimited bool, retryAfter time.Duration, message string, reqCtx authlog.Context) AuthenticationResult {
	result := AuthenticationResult{
		Success:      false,
		UsedFallback: usedFallback,
		RateLimited:  rateLimited,
		KeyHash:      keyHash,
		AuthTime:     m.now().Sub(start),
		RetryAfter:   retryAfter,
		ErrorMessage: message,
	}

	switch {
	case rateLimited:
		telemetry.RecordAuthAttempt("rate_limited")
	case keyHash == "":
		telemetry.RecordAuthAttempt("missing_key")
	default:
		telemetry.RecordAuthAttempt("invalid_key")
	}

	if m.authLog != nil {
		m.authLog.LogAuthentication(authlog.AuthAttempt{
			Success:      false,
			UsedFallback: usedFallback,
			RateLimited:  rateLimited,
			KeyHash:      keyHash,
			Duration:     result.AuthTime,
			ErrorMessage: message,
		}, reqCtx)
	}

	return result
}

// reportRateLimit publishes a rate-limit-exceeded event.
func (m *Manager) reportRateLimit(keyHash string, limit ratelimit.Result, reqCtx authlog.Context) {
	telemetry.RecordRateLimitDenied()

	event := alerting.SecurityEvent{
		Type:      alerting.EventRateLimitExceeded,
		KeyHash:   keyHash,
		Timestamp: m.now(),
		Severity:  alerting.SeverityMedium,
		Details: map[string]any{
			"retryAfterSeconds": int(limit.RetryAfter.Seconds()),
		},
	}

	if m.authLog != nil {
		m.authLog.LogRateLimit(keyHash, limit.Remaining, limit.Reset, reqCtx)
		m.authLog.LogSecurityEvent(event, reqCtx)
	}
	if m.alerter != nil {
		m.alerter.ProcessSecurityEvent(event)
	}
}

// reportAuthFailure publishes an authentication-failure event and
// escalates when per-key or system-wide failure thresholds trip.
func (m *Manager) reportAuthFailure(keyHash, reason string, reqCtx authlog.Context) {
	now := m.now()

	event := alerting.SecurityEvent{
		Type:      alerting.EventAuthFailure,
		KeyHash:   keyHash,
		Timestamp: now,
		Severity:  alerting.SeverityMedium,
		Details:   map[string]any{"reason": reason},
	}
	if m.authLog != nil {
		m.authLog.LogSecurityEvent(event, reqCtx)
	}
	if m.alerter != nil {
		m.alerter.ProcessSecurityEvent(event)
	}

	keyExceeded, systemExceeded := m.failures.record(keyHash, now)
	if keyExceeded {
		m.escalate(keyHash, alerting.SeverityHigh, reqCtx)
	}
	if systemExceeded {
		m.escalate(alerting.SystemKeyHash, alerting.SeverityCritical, reqCtx)
	}
}

// escalate publishes a multiple-failures event.
func (m *Manager) escalate(keyHash string, severity alerting.Severity, reqCtx authlog.Context) {
	event := alerting.SecurityEvent{
		Type:      alerting.EventMultipleFailures,
		KeyHash:   keyHash,
		Timestamp: m.now(),
		Severity:  severity,
		Details: map[string]any{
			"window": m.config.Alerts.Thresholds.FailureWindow.String(),
		},
	}
	if m.authLog != nil {
		m.authLog.LogSecurityEvent(event, reqCtx)
	}
	if m.alerter != nil {
		m.alerter.ProcessSecurityEvent(event)
	}
}

// InvalidateKey drops the cached validation outcome and the pooled
// service for a key hash. Use after revoking a key at the source.
func (m *Manager) InvalidateKey(keyHash string) {
	m.cache.Invalidate(keyHash)
	m.pool.Remove(keyHash)
	m.failures.reset(keyHash)
}

// ClearCaches drops every cached validation outcome and pooled
// service. Called when the key registry is reloaded from disk.
func (m *Manager) ClearCaches() {
	m.cache.Clear()
	m.pool.Clear()
}

// RateLimitStatus reports the current window state for a key without
// recording a request.
func (m *Manager) RateLimitStatus(keyHash string) ratelimit.Result {
	return m.limiter.Status(keyHash)
}

// ResetRateLimit restores the full budget for one key.
func (m *Manager) ResetRateLimit(keyHash string) {
	m.limiter.Reset(keyHash)
}

// PoolStats reports backend pool occupancy.
func (m *Manager) PoolStats() backend.Stats {
	return m.pool.Stats()
}

// Close stops the owned components' background sweeps and closes all
// pooled services. The injected alerter and logger are not closed.
func (m *Manager) Close() {
	m.cache.Close()
	m.limiter.Destroy()
	m.pool.Close()
}
