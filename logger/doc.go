// Package logger configures the process-wide slog logger and carries the
// per-request id through contexts.
package logger
