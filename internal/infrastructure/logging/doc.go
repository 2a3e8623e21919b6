// Package logging provides structured logging using uber/zap.
//
// Two modes are available:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Logs go to stderr by default so that command output on stdout stays
// machine-readable.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Pipe created", zap.String("path", "/run/app/pipe0"))
//	logger.Warn("Pipe provisioning failed", zap.Error(err))
package logging
