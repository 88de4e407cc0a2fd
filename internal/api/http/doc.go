/*
Package http provides the JSON API for sanitizing shared links.

Endpoints:
  - Health: / and /health
  - Sanitize: POST /sanitize, POST /sanitize/batch
  - Rules: GET /rules, GET /rules/domains/:domain, POST /rules/reload

Request bodies are size limited. Texts longer than the configured input
limit and batches larger than the batch limit are answered with 413.
Text that is not an http(s) URL is returned unchanged with a zero count.

Example Usage:

	handlers := http.NewHandlers(san, refresher, metrics, logger, cfg.Limits)
	router.POST("/sanitize", handlers.Sanitize)
	router.POST("/rules/reload", handlers.ReloadRules)
*/
package http
