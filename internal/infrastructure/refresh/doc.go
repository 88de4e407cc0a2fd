// Package refresh keeps the published rule set in step with the rule files
// on disk.
//
// Reload is the operator path behind POST /rules/reload. Run polls the
// rule location's fingerprint and reloads only when it changes; repeated
// failures open a circuit breaker so a half-written rules directory is not
// hammered. A failed load never replaces the current rules.
package refresh
