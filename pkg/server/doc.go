// Package server provides the admin HTTP server: health and metrics
// endpoints plus a small JSON API over the alert store, the
// authentication log, and the admission components' statistics.
//
// The server does not sit on the request hot path. Admission decisions
// are made by the auth.Manager on behalf of the surrounding
// tool-dispatch layer; this server exposes the operational surface.
package server
