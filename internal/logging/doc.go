// Package logging provides structured logging utilities for taskbridge.
//
// This package centralizes logging patterns so every component emits the same
// attribute names through the standard library's slog package.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "tasks.list")
//	logger.Info("listing tasks", logging.Status(logging.StatusSuccess))
//
// # Security Considerations
//
// Tokens are never logged directly. Use SanitizeToken when a token needs to be
// referenced in a log line at all.
package logging
