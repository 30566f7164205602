// Package logging provides structured logging for the Sengled bridge.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the entire application.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("bulb discovered", "uuid", bulb.UUID())
//	logger.Error("login failed", "error", err)
//
// # Security
//
// Never log the account password or the session token. The token doubles
// as the realtime channel credential; leaking it in logs hands over full
// control of the account's bulbs.
package logging
