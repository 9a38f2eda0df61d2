// Package middleware contains the HTTP middleware of the API: tracing,
// panic recovery, metrics, rate limiting, bearer authentication and the
// per-route ownership guard.
package middleware
