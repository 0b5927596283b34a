// Ganymede is an admission-control service for MCP tool servers.
//
// It validates API keys against a watched registry file, enforces
// per-key sliding-window rate limits, pools backend service handles,
// evaluates security events into deduplicated alerts, and keeps a
// sanitized authentication log with a durable audit trail.
//
// Usage:
//
//	# Start the admin server with default configuration
//	ganymede run
//
//	# Start with a custom configuration file
//	ganymede run --config /etc/ganymede/config.yaml
//
//	# Validate configuration without starting
//	ganymede validate
//
//	# Derive the hash identifier for an API key
//	ganymede keys hash sk-example
//
//	# Generate a new random API key
//	ganymede keys generate
//
//	# Export the stored audit trail
//	ganymede audit --format json --output audit.json
package main

func main() {
	Execute()
}
