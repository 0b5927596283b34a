// Package config provides configuration loading, validation, and defaults
// for Ganymede.
//
// Configuration is loaded from a YAML file, defaults are applied for any
// missing fields, and environment variable overrides (GANYMEDE_SECTION_FIELD)
// take precedence over file values. The final configuration is validated
// before use; invalid configurations fail fast at startup.
//
// # Usage
//
//	cfg, err := config.LoadConfig("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Sections
//
//   - server: admin HTTP surface (health, metrics, alerts)
//   - auth: API key store, fallback key, validation cache
//   - rate_limit: per-key sliding window limits
//   - performance: backend service pool sizing and idle timeout
//   - alerts: security alert evaluation, cooldown, notification handlers
//   - auth_log: structured authentication log and audit trail
//   - telemetry: logging and Prometheus metrics
package config
