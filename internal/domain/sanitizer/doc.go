// Package sanitizer removes tracking query parameters from shared URLs.
//
// Sanitize is a pure function of its input text and an immutable
// rules.RuleSet. It is safe for concurrent use and never returns an error:
// anything it cannot handle comes back trimmed and unchanged with a zero
// count.
//
// Parameter policy for a URL whose normalized domain has a rule:
//
//	kept = keep(name) || (!global(name) && !remove(name))
//
// and for a domain without one:
//
//	kept = !global(name)
//
// Names match exactly and case-sensitively. Surviving pairs keep their
// original order; values are re-encoded but never rewritten. Scheme, host,
// path and fragment are written back unchanged.
//
// Redirect wrappers (google.com/url?url=...) are unwrapped: pairs dropped
// from the wrapper are counted, the wrapper itself is discarded, and the
// destination is sanitized with its own domain rule.
//
// Example Usage:
//
//	res := sanitizer.Sanitize("https://example.com/?id=5&utm_source=x", rules.Default())
//	fmt.Println(res.URL, res.Removed) // https://example.com/?id=5 1
//	fmt.Println(sanitizer.Feedback(res)) // 1 tracker removed!
package sanitizer
