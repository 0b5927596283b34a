package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:9090"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Auth defaults
	DefaultKeyFile              = "./keys.yaml"
	DefaultCacheEnabled         = true
	DefaultCacheMaxSize         = 1000
	DefaultCacheTTL             = 5 * time.Minute
	DefaultCacheCleanupInterval = time.Minute

	// Rate limit defaults
	DefaultRateLimitEnabled  = true
	DefaultRequestsPerMinute = 60
	DefaultBurstLimit        = 10
	DefaultKeyBasedLimiting  = true

	// Performance defaults
	DefaultServicePoolSize = 100
	DefaultServiceTimeout  = 30 * time.Minute

	// Alert defaults
	DefaultAlertsEnabled          = true
	DefaultAlertCooldown          = 5 * time.Minute
	DefaultAlertRetentionHours    = 24
	DefaultAlertPruneSchedule     = "0 * * * *"
	DefaultMaxFailuresPerKey      = 5
	DefaultSystemFailureThreshold = 50
	DefaultFailureWindow          = 10 * time.Minute
	DefaultConsoleNotifications   = true
	DefaultWebhookTimeout         = 10 * time.Second

	// Auth log defaults
	DefaultAuthLogEnabled    = true
	DefaultAuthLogLevel      = "info"
	DefaultMaxLogEntries     = 10000
	DefaultAuditTrailEnabled = true
	DefaultAuditBackend      = "memory"
	DefaultAuditSQLitePath   = "data/audit.db"
	DefaultAuditBusyTimeout  = 5 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel   = "info"
	DefaultLoggingFormat  = "json"
	DefaultMetricsEnabled = true
	DefaultMetricsPath    = "/metrics"
)

// DefaultSensitiveFields are the detail field names redacted by default.
var DefaultSensitiveFields = []string{"apiKey", "password", "token", "secret", "key"}

// ApplyDefaults fills in default values for any zero-valued configuration
// fields. It is called automatically by LoadConfig but may be used directly
// on a hand-built Config.
func ApplyDefaults(cfg *Config) {
	// Server
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Auth
	if cfg.Auth.KeyFile == "" {
		cfg.Auth.KeyFile = DefaultKeyFile
	}
	if cfg.Auth.Cache.MaxSize == 0 {
		cfg.Auth.Cache.Enabled = DefaultCacheEnabled
		cfg.Auth.Cache.MaxSize = DefaultCacheMaxSize
	}
	if cfg.Auth.Cache.TTL == 0 {
		cfg.Auth.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Auth.Cache.CleanupInterval == 0 {
		cfg.Auth.Cache.CleanupInterval = DefaultCacheCleanupInterval
	}

	// Rate limit
	if cfg.RateLimit.RequestsPerMinute == 0 {
		cfg.RateLimit.Enabled = DefaultRateLimitEnabled
		cfg.RateLimit.RequestsPerMinute = DefaultRequestsPerMinute
		cfg.RateLimit.KeyBasedLimiting = DefaultKeyBasedLimiting
	}
	if cfg.RateLimit.BurstLimit == 0 {
		cfg.RateLimit.BurstLimit = DefaultBurstLimit
	}

	// Performance
	if cfg.Performance.ServicePoolSize == 0 {
		cfg.Performance.ServicePoolSize = DefaultServicePoolSize
	}
	if cfg.Performance.ServiceTimeout == 0 {
		cfg.Performance.ServiceTimeout = DefaultServiceTimeout
	}

	// Alerts
	if cfg.Alerts.Cooldown == 0 {
		cfg.Alerts.Enabled = DefaultAlertsEnabled
		cfg.Alerts.Cooldown = DefaultAlertCooldown
		cfg.Alerts.Notifications.Console = DefaultConsoleNotifications
	}
	if cfg.Alerts.RetentionHours == 0 {
		cfg.Alerts.RetentionHours = DefaultAlertRetentionHours
	}
	if cfg.Alerts.PruneSchedule == "" {
		cfg.Alerts.PruneSchedule = DefaultAlertPruneSchedule
	}
	if cfg.Alerts.Thresholds.MaxFailuresPerKey == 0 {
		cfg.Alerts.Thresholds.MaxFailuresPerKey = DefaultMaxFailuresPerKey
	}
	if cfg.Alerts.Thresholds.SystemFailureThreshold == 0 {
		cfg.Alerts.Thresholds.SystemFailureThreshold = DefaultSystemFailureThreshold
	}
	if cfg.Alerts.Thresholds.FailureWindow == 0 {
		cfg.Alerts.Thresholds.FailureWindow = DefaultFailureWindow
	}
	if cfg.Alerts.Notifications.WebhookTimeout == 0 {
		cfg.Alerts.Notifications.WebhookTimeout = DefaultWebhookTimeout
	}

	// Auth log
	if cfg.AuthLog.MaxLogEntries == 0 {
		cfg.AuthLog.Enabled = DefaultAuthLogEnabled
		cfg.AuthLog.MaxLogEntries = DefaultMaxLogEntries
		cfg.AuthLog.AuditTrailEnabled = DefaultAuditTrailEnabled
	}
	if cfg.AuthLog.LogLevel == "" {
		cfg.AuthLog.LogLevel = DefaultAuthLogLevel
	}
	if len(cfg.AuthLog.SensitiveFields) == 0 {
		cfg.AuthLog.SensitiveFields = append([]string(nil), DefaultSensitiveFields...)
	}
	if cfg.AuthLog.Audit.Backend == "" {
		cfg.AuthLog.Audit.Backend = DefaultAuditBackend
	}
	if cfg.AuthLog.Audit.SQLitePath == "" {
		cfg.AuthLog.Audit.SQLitePath = DefaultAuditSQLitePath
	}
	if cfg.AuthLog.Audit.BusyTimeout == 0 {
		cfg.AuthLog.Audit.BusyTimeout = DefaultAuditBusyTimeout
	}

	// Telemetry
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}
