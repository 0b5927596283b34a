package config

import (
	"fmt"
	"net/url"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g., "rate_limit.requests_per_minute").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	// Server
	if cfg.Server.ListenAddress == "" {
		errs = append(errs, FieldError{"server.listen_address", "must not be empty"})
	}
	if cfg.Server.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{"server.shutdown_timeout", "must not be negative"})
	}

	// Auth
	if cfg.Auth.KeyFile == "" {
		errs = append(errs, FieldError{"auth.key_file", "must not be empty"})
	}
	if cfg.Auth.Cache.Enabled {
		if cfg.Auth.Cache.MaxSize <= 0 {
			errs = append(errs, FieldError{"auth.cache.max_size", "must be positive when cache is enabled"})
		}
		if cfg.Auth.Cache.TTL <= 0 {
			errs = append(errs, FieldError{"auth.cache.ttl", "must be positive when cache is enabled"})
		}
		if cfg.Auth.Cache.CleanupInterval <= 0 {
			errs = append(errs, FieldError{"auth.cache.cleanup_interval", "must be positive when cache is enabled"})
		}
	}

	// Rate limit
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.RequestsPerMinute <= 0 {
			errs = append(errs, FieldError{"rate_limit.requests_per_minute", "must be positive when rate limiting is enabled"})
		}
		if cfg.RateLimit.BurstLimit < 0 {
			errs = append(errs, FieldError{"rate_limit.burst_limit", "must not be negative"})
		}
	}

	// Performance
	if cfg.Performance.ServicePoolSize <= 0 {
		errs = append(errs, FieldError{"performance.service_pool_size", "must be positive"})
	}
	if cfg.Performance.ServiceTimeout <= 0 {
		errs = append(errs, FieldError{"performance.service_timeout", "must be positive"})
	}
	if cfg.Performance.ConcurrentRequestLimit < 0 {
		errs = append(errs, FieldError{"performance.concurrent_request_limit", "must not be negative"})
	}

	// Alerts
	if cfg.Alerts.Enabled {
		if cfg.Alerts.Cooldown <= 0 {
			errs = append(errs, FieldError{"alerts.cooldown", "must be positive when alerting is enabled"})
		}
		if cfg.Alerts.RetentionHours <= 0 {
			errs = append(errs, FieldError{"alerts.retention_hours", "must be positive when alerting is enabled"})
		}
		if cfg.Alerts.Notifications.WebhookURL != "" {
			if u, err := url.Parse(cfg.Alerts.Notifications.WebhookURL); err != nil || u.Scheme == "" || u.Host == "" {
				errs = append(errs, FieldError{"alerts.notifications.webhook_url", "must be an absolute URL"})
			}
		}
	}

	// Auth log
	if cfg.AuthLog.Enabled {
		if cfg.AuthLog.MaxLogEntries <= 0 {
			errs = append(errs, FieldError{"auth_log.max_log_entries", "must be positive when logging is enabled"})
		}
		switch cfg.AuthLog.LogLevel {
		case "debug", "info", "warn", "error":
		default:
			errs = append(errs, FieldError{"auth_log.log_level",
				fmt.Sprintf("unknown level %q (expected debug, info, warn, or error)", cfg.AuthLog.LogLevel)})
		}
		switch cfg.AuthLog.Audit.Backend {
		case "memory", "sqlite":
		default:
			errs = append(errs, FieldError{"auth_log.audit.backend",
				fmt.Sprintf("unknown backend %q (expected memory or sqlite)", cfg.AuthLog.Audit.Backend)})
		}
		if cfg.AuthLog.Audit.Backend == "sqlite" && cfg.AuthLog.Audit.SQLitePath == "" {
			errs = append(errs, FieldError{"auth_log.audit.sqlite_path", "must not be empty for sqlite backend"})
		}
	}

	// Telemetry
	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{"telemetry.logging.level",
			fmt.Sprintf("unknown level %q (expected debug, info, warn, or error)", cfg.Telemetry.Logging.Level)})
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text", "console":
	default:
		errs = append(errs, FieldError{"telemetry.logging.format",
			fmt.Sprintf("unknown format %q (expected json, text, or console)", cfg.Telemetry.Logging.Format)})
	}
	if cfg.Telemetry.Metrics.Enabled && !strings.HasPrefix(cfg.Telemetry.Metrics.Path, "/") {
		errs = append(errs, FieldError{"telemetry.metrics.path", "must start with /"})
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}
