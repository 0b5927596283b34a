// Package telemetry configures the process logger and exposes
// Prometheus metrics for the admission pipeline.
package telemetry
