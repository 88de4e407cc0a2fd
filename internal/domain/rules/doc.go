// Package rules provides the tracking-parameter rule store for LinkSan.
//
// A RuleSet holds the global tracking-parameter denylist plus per-domain
// keep/remove overrides. Rule sets are built once, never mutated, and
// shared by reference between concurrent sanitize calls.
//
// Components:
//   - Load / Decode: parse a rule document (JSON, YAML or TOML)
//   - LoadFile / LoadDir / LoadPath: read rule packs from disk
//   - Default: the rule table embedded in the binary
//   - Holder: atomically publishes a new rule set to readers
//
// Document Shape:
//
//	{
//	  "tracking_parameters": ["utm_source", "fbclid"],
//	  "domain_specific_rules": {
//	    "www.news.example": {"keep": ["ref"], "remove": []}
//	  }
//	}
//
// Domain keys are lowercased and stripped of a leading "www." at load time.
// This is the only place keys are normalized, so lookups through Rule stay
// consistent with the sanitizer's host handling.
//
// Example Usage:
//
//	set, err := rules.LoadPath("/etc/linksan/rules.d", rules.DefaultPattern)
//	if errors.Is(err, rules.ErrMalformedRuleData) {
//		set = rules.Default()
//	}
//	holder := rules.NewHolder(set)
package rules
