package sanitizer

import (
	"net/url"
	"strings"

	"github.com/GriffinCanCode/linksan/internal/domain/rules"
)

const (
	redirectDomain = "google.com"
	redirectPath   = "/url"
	redirectParam  = "url"
)

// Result is the outcome of one sanitize call
type Result struct {
	URL       string `json:"sanitized_url"`
	Removed   int    `json:"removed_count"`
	Unwrapped bool   `json:"unwrapped"`
	// Applicable is false when the input was not an http(s) URL
	Applicable bool `json:"-"`
}

// IsShareable reports whether text, once trimmed, looks like an http(s) URL
func IsShareable(text string) bool {
	text = strings.TrimSpace(text)
	return strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://")
}

// Sanitize strips tracking parameters from raw and unwraps redirect URLs.
// It never fails: input that cannot be handled comes back trimmed with a
// zero count.
func Sanitize(raw string, set *rules.RuleSet) (res Result) {
	text := strings.TrimSpace(raw)
	if !IsShareable(text) {
		return Result{URL: text}
	}

	defer func() {
		if recover() != nil {
			res = Result{URL: text, Applicable: true}
		}
	}()

	u, err := url.Parse(text)
	if err != nil {
		return Result{URL: text, Applicable: true}
	}

	res, ok := unwrap(u, text, set)
	if ok {
		return res
	}
	return filterURL(u, text, set)
}

// filterURL applies the domain policy to every query pair of text
func filterURL(u *url.URL, text string, set *rules.RuleSet) Result {
	p := splitURL(text)
	kept, removed := filter(p.query, policyFor(set, domainOf(u)))
	p.query = kept

	return Result{
		URL:        p.String(),
		Removed:    removed,
		Applicable: true,
	}
}

// unwrap recovers the destination of a redirect wrapper. It reports false
// when u is not a wrapper or the destination cannot be used, in which case
// the caller sanitizes u itself. Nested wrappers are unwrapped until none is
// left; each destination is decoded from a parameter of the one before it,
// so it is strictly shorter and the recursion ends.
func unwrap(u *url.URL, text string, set *rules.RuleSet) (Result, bool) {
	domain := domainOf(u)
	if domain != redirectDomain || u.Path != redirectPath {
		return Result{}, false
	}

	outer := splitURL(text)
	target, ok := outer.query.lookup(redirectParam)
	if !ok || target.valueErr != nil {
		return Result{}, false
	}

	dest, err := url.Parse(target.value)
	if err != nil || !isAbsoluteHTTP(dest) {
		return Result{}, false
	}

	// Outer pairs only contribute to the count; the wrapper is discarded.
	_, removed := filter(outer.query, policyFor(set, domain))

	if inner, ok := unwrap(dest, target.value, set); ok {
		inner.Removed += removed
		return inner, true
	}

	res := filterURL(dest, target.value, set)
	res.Removed += removed
	res.Unwrapped = true
	return res, true
}

// policy decides which query names survive for one domain
type policy struct {
	set    *rules.RuleSet
	rule   rules.DomainRule
	scoped bool
}

func policyFor(set *rules.RuleSet, domain string) policy {
	rule, ok := set.Rule(domain)
	return policy{set: set, rule: rule, scoped: ok}
}

// keeps applies keep-list precedence: an explicit keep wins over both the
// global denylist and the domain remove list.
func (p policy) keeps(name string) bool {
	if p.scoped {
		return p.rule.Keeps(name) || (!p.set.IsTracking(name) && !p.rule.Removes(name))
	}
	return !p.set.IsTracking(name)
}

func filter(q query, p policy) (query, int) {
	kept := make(query, 0, len(q))
	removed := 0
	for _, pair := range q {
		if p.keeps(pair.key) {
			kept = append(kept, pair)
		} else {
			removed++
		}
	}
	return kept, removed
}

func domainOf(u *url.URL) string {
	return rules.NormalizeDomain(u.Hostname())
}

func isAbsoluteHTTP(u *url.URL) bool {
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Hostname() != ""
}
