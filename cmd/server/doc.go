// Package main is the entry point for the LinkSan HTTP service.
//
// The server strips tracking parameters from shared links and unwraps
// redirect URLs. Rules come from LINKSAN_RULES_PATH (a file or a directory of
// rule packs) or from the set embedded in the binary.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8000 -rules /etc/linksan/rules
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
