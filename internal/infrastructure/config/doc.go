// Package config provides 12-factor configuration management for the
// linksan server.
//
// Configuration is loaded from environment variables with sensible defaults.
// The linksan CLI reads the rules variables and lets flags override them.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Rules: Rule file or directory and the glob selecting rule packs
//   - Limits: Batch size and input length caps for the API
//
// Example Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Server running on %s\n", cfg.Addr())
//
// The CLI uses LoadOrDefault so that a broken environment falls back to
// defaults instead of failing.
//
// Environment Variables:
//   - PORT, HOST
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - LINKSAN_RULES_PATH, LINKSAN_RULES_PATTERN, LINKSAN_RULES_REFRESH
//   - LINKSAN_MAX_BATCH, LINKSAN_MAX_INPUT
package config
