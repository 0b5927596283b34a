package config

import "time"

// Config is the root configuration structure for Ganymede.
// It contains all configuration sections for the admin server, API key
// authentication, rate limiting, the backend service pool, security
// alerting, authentication logging, and telemetry.
type Config struct {
	// Server contains admin HTTP server configuration including listen
	// address and timeouts.
	Server ServerConfig `yaml:"server"`

	// Auth contains API key authentication configuration including the
	// key file location, fallback key, and validation cache settings.
	Auth AuthConfig `yaml:"auth"`

	// RateLimit contains per-key sliding window rate limit configuration.
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// Performance contains backend service pool sizing and timeouts.
	Performance PerformanceConfig `yaml:"performance"`

	// Alerts contains security alert evaluation and notification settings.
	Alerts AlertConfig `yaml:"alerts"`

	// AuthLog contains structured authentication logging and audit trail
	// configuration.
	AuthLog AuthLogConfig `yaml:"auth_log"`

	// Telemetry contains observability configuration for logging and
	// Prometheus metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the admin HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port for the admin server.
	// Format: "host:port" (e.g., "127.0.0.1:9090").
	// Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of
	// the response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next
	// request when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown before in-flight requests are abandoned.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// AuthConfig contains configuration for API key authentication.
type AuthConfig struct {
	// KeyFile is the path to the YAML file holding the API key registry.
	// Default: "./keys.yaml"
	KeyFile string `yaml:"key_file"`

	// WatchKeyFile enables hot reloading of the key file on change.
	// Default: false
	WatchKeyFile bool `yaml:"watch_key_file"`

	// FallbackKey is the API key used when a request carries no key.
	// Empty means missing keys are rejected.
	FallbackKey string `yaml:"fallback_key"`

	// Cache contains validation cache settings.
	Cache CacheConfig `yaml:"cache"`
}

// CacheConfig contains configuration for the key validation cache.
type CacheConfig struct {
	// Enabled controls whether validation results are cached.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// MaxSize is the maximum number of cached validation results.
	// When exceeded, the oldest-inserted entry is evicted first.
	// Default: 1000
	MaxSize int `yaml:"max_size"`

	// TTL is how long a validation result stays fresh.
	// Default: 5m
	TTL time.Duration `yaml:"ttl"`

	// CleanupInterval is how often expired entries are swept.
	// Default: 1m
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// RateLimitConfig contains configuration for per-key rate limiting.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is enforced.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// RequestsPerMinute is the number of requests allowed per key within
	// the trailing 60-second window.
	// Default: 60
	RequestsPerMinute int `yaml:"requests_per_minute"`

	// BurstLimit is accepted and tracked per entry but not enforced
	// independently of RequestsPerMinute.
	BurstLimit int `yaml:"burst_limit"`

	// KeyBasedLimiting scopes the window to each key hash. When false,
	// all traffic shares a single window.
	// Default: true
	KeyBasedLimiting bool `yaml:"key_based_limiting"`
}

// PerformanceConfig contains backend service pool configuration.
type PerformanceConfig struct {
	// ServicePoolSize is the maximum number of live backend service
	// handles. The oldest-created handle is evicted when exceeded.
	// Default: 100
	ServicePoolSize int `yaml:"service_pool_size"`

	// ServiceTimeout is how long an idle handle may live before the
	// sweep removes it.
	// Default: 30m
	ServiceTimeout time.Duration `yaml:"service_timeout"`

	// ConcurrentRequestLimit caps simultaneous in-flight requests.
	// Zero means no limit.
	ConcurrentRequestLimit int `yaml:"concurrent_request_limit"`
}

// AlertConfig contains security alerting configuration.
type AlertConfig struct {
	// Enabled controls whether security events produce alerts.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Cooldown is the minimum elapsed time before a logically identical
	// alert (same severity and title) may fire again.
	// Default: 5m
	Cooldown time.Duration `yaml:"cooldown"`

	// RetentionHours is how long accepted alerts are retained before the
	// scheduled prune removes them.
	// Default: 24
	RetentionHours int `yaml:"retention_hours"`

	// PruneSchedule is a cron expression for scheduling alert pruning.
	// Default: "0 * * * *" (hourly)
	PruneSchedule string `yaml:"prune_schedule"`

	// Thresholds contains failure counting thresholds consumed by the
	// authentication manager when classifying repeated failures.
	Thresholds AlertThresholds `yaml:"thresholds"`

	// Notifications configures where accepted alerts are delivered.
	Notifications NotificationConfig `yaml:"notifications"`
}

// AlertThresholds contains failure counting thresholds.
type AlertThresholds struct {
	// MaxFailuresPerKey is the number of authentication failures for a
	// single key within FailureWindow that triggers a multiple-failures
	// event.
	// Default: 5
	MaxFailuresPerKey int `yaml:"max_failures_per_key"`

	// SystemFailureThreshold is the number of failures across all keys
	// within FailureWindow that triggers a system-wide event.
	// Default: 50
	SystemFailureThreshold int `yaml:"system_failure_threshold"`

	// FailureWindow is the trailing window over which failures are
	// counted.
	// Default: 10m
	FailureWindow time.Duration `yaml:"failure_window"`
}

// NotificationConfig configures alert notification handlers.
type NotificationConfig struct {
	// Console enables the console notification handler.
	// Default: true
	Console bool `yaml:"console"`

	// WebhookURL, when set, enables the webhook handler which POSTs the
	// alert as JSON to this URL.
	WebhookURL string `yaml:"webhook_url"`

	// WebhookTimeout bounds each webhook delivery attempt.
	// Default: 10s
	WebhookTimeout time.Duration `yaml:"webhook_timeout"`
}

// AuthLogConfig contains authentication logging configuration.
type AuthLogConfig struct {
	// Enabled controls whether authentication events are logged.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// LogLevel is the minimum level recorded ("debug", "info", "warn",
	// "error").
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// IncludeStackTrace includes stack traces in error entries.
	// Default: false
	IncludeStackTrace bool `yaml:"include_stack_trace"`

	// MaxLogEntries bounds the in-memory log ring. Oldest entries are
	// dropped once exceeded.
	// Default: 10000
	MaxLogEntries int `yaml:"max_log_entries"`

	// AuditTrailEnabled controls whether audit trail entries are written
	// for authentication attempts and critical security events.
	// Default: true
	AuditTrailEnabled bool `yaml:"audit_trail_enabled"`

	// SensitiveFields lists detail field names replaced with a redaction
	// marker in the sanitized view.
	// Default: apiKey, password, token, secret, key
	SensitiveFields []string `yaml:"sensitive_fields"`

	// Audit configures the audit trail persistence backend.
	Audit AuditStorageConfig `yaml:"audit"`
}

// AuditStorageConfig configures audit trail persistence.
type AuditStorageConfig struct {
	// Backend selects the storage backend: "memory" or "sqlite".
	// Default: "memory"
	Backend string `yaml:"backend"`

	// SQLitePath is the database file path for the sqlite backend.
	// Default: "data/audit.db"
	SQLitePath string `yaml:"sqlite_path"`

	// BusyTimeout is how long sqlite waits for locks before failing.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging configures the process logger.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures the Prometheus metrics endpoint.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format ("json", "text", "console").
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log output.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig configures Prometheus metrics exposition.
type MetricsConfig struct {
	// Enabled controls whether the /metrics endpoint is served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus handler.
	// Default: "/metrics"
	Path string `yaml:"path"`
}
