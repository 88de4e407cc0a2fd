/*
Package monitoring provides Prometheus metrics for the linksan server.

# Overview

Every Metrics value owns a private registry, so tests and embedded servers
never collide on the global default registry.

# Features

- HTTP request metrics (latency, throughput, size)
- Sanitize outcomes (cleaned, clean, not_applicable)
- Removed tracking parameters and unwrapped redirects
- Active rule set size and reload attempts
- Go runtime, process and uptime metrics

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	res := sanitizer.Sanitize(text, set)
	metrics.RecordSanitize(res.Applicable, res.Unwrapped, res.Removed)
*/
package monitoring
