// Package logging provides structured logging for simpledb.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the CLI, the HTTP server and
// the database facades.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for plain logs
//   - Console output via tint, coloured only on a terminal
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "console"  # json, text, console
//	  output: "stderr"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("opened database", "path", db.Path())
//	logger.Error("insert failed", "table", name, "error", err)
//
// Statement text logged at debug level is rendered with literal
// encoding; never enable debug logging on data you would not write to disk.
package logging
