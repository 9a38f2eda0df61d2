// Package logger provides structured logging functionality for the application.
//
// It builds log/slog JSON loggers from the server configuration and carries
// request-scoped loggers through context.Context so handlers, services and
// stores log with the trace ID of the request they serve.
package logger
