// Package alerting evaluates security events into severity-classified
// alerts and dispatches them to pluggable notification handlers.
//
// # Evaluation
//
// Severity assignment is data-driven and not negotiable by callers: each
// event type maps to a fixed severity and title. Authentication failures
// only alert when the event itself is critical; repeated failures and
// suspicious activity always do.
//
// # Deduplication
//
// Candidate alerts are keyed by severity plus title. If the previous
// alert with that key fired within the configured cooldown, the new one
// is silently dropped; it is not queued or merged. The cooldown check and
// the record of the new firing happen atomically.
//
// # Dispatch
//
// Accepted alerts are appended to an in-memory store and handed to every
// registered handler. Handler failures are caught and logged individually
// and never block sibling handlers or the caller. A cron-driven scheduler
// prunes stored alerts by wall-clock age.
package alerting
