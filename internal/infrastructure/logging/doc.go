// Package logging provides structured logging using uber/zap.
//
// This package offers production-ready logging with two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// The linksan CLI uses CLIConfig, which logs warnings and errors to stderr
// so that sanitized URLs are the only thing written to stdout.
//
// Example Usage:
//
//	logger, err := logging.New(logging.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	logger.Component("server").Info("Server starting", zap.String("port", "8000"))
//	logger.Error("Failed to load rules", zap.Error(err))
package logging
