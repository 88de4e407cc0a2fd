package rules

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// DomainRule is a per-domain override of the global denylist.
// A name listed in both Keep and Remove is kept.
type DomainRule struct {
	keep   map[string]struct{}
	remove map[string]struct{}
}

// Keeps reports whether name is explicitly allowed for the domain
func (d DomainRule) Keeps(name string) bool {
	_, ok := d.keep[name]
	return ok
}

// Removes reports whether name is explicitly denied for the domain
func (d DomainRule) Removes(name string) bool {
	_, ok := d.remove[name]
	return ok
}

// Keep returns the allow list in sorted order
func (d DomainRule) Keep() []string {
	return sortedKeys(d.keep)
}

// Remove returns the deny list in sorted order
func (d DomainRule) Remove() []string {
	return sortedKeys(d.remove)
}

// RuleSet is an immutable tracking-parameter rule table
type RuleSet struct {
	tracking map[string]struct{}
	domains  map[string]DomainRule
	revision string
	source   string
}

// Stats summarizes a rule set
type Stats struct {
	Revision           string `json:"revision"`
	Source             string `json:"source"`
	TrackingParameters int    `json:"tracking_parameters"`
	Domains            int    `json:"domains"`
}

// NormalizeDomain lowercases a host and strips a leading "www."
func NormalizeDomain(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	return strings.TrimPrefix(host, "www.")
}

// Empty returns a rule set with no rules
func Empty() *RuleSet {
	return newBuilder("empty").build()
}

// IsTracking reports whether name is in the global denylist
func (r *RuleSet) IsTracking(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.tracking[name]
	return ok
}

// Rule looks up the override for a domain. The domain is normalized the
// same way keys were at load time.
func (r *RuleSet) Rule(domain string) (DomainRule, bool) {
	if r == nil {
		return DomainRule{}, false
	}
	rule, ok := r.domains[NormalizeDomain(domain)]
	return rule, ok
}

// TrackingParameters returns the global denylist in sorted order
func (r *RuleSet) TrackingParameters() []string {
	if r == nil {
		return nil
	}
	return sortedKeys(r.tracking)
}

// Domains returns the normalized domain keys in sorted order
func (r *RuleSet) Domains() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, 0, len(r.domains))
	for k := range r.domains {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Revision identifies this rule set instance
func (r *RuleSet) Revision() string {
	if r == nil {
		return ""
	}
	return r.revision
}

// Source describes where the rule set was loaded from
func (r *RuleSet) Source() string {
	if r == nil {
		return ""
	}
	return r.source
}

// Stats returns rule set counts
func (r *RuleSet) Stats() Stats {
	if r == nil {
		return Stats{}
	}
	return Stats{
		Revision:           r.revision,
		Source:             r.source,
		TrackingParameters: len(r.tracking),
		Domains:            len(r.domains),
	}
}

// Merge combines rule sets into a new one. Tracking parameters are unioned,
// and keep/remove lists of the same domain are unioned.
func Merge(source string, sets ...*RuleSet) *RuleSet {
	b := newBuilder(source)
	for _, set := range sets {
		if set == nil {
			continue
		}
		for name := range set.tracking {
			b.addTracking(name)
		}
		for domain, rule := range set.domains {
			b.addRule(domain, rule.Keep(), rule.Remove())
		}
	}
	return b.build()
}

// builder accumulates rules before they are frozen into a RuleSet
type builder struct {
	source   string
	tracking map[string]struct{}
	keep     map[string]map[string]struct{}
	remove   map[string]map[string]struct{}
}

func newBuilder(source string) *builder {
	return &builder{
		source:   source,
		tracking: make(map[string]struct{}),
		keep:     make(map[string]map[string]struct{}),
		remove:   make(map[string]map[string]struct{}),
	}
}

func (b *builder) addTracking(names ...string) {
	for _, name := range names {
		b.tracking[name] = struct{}{}
	}
}

// addRule registers keep/remove names under the normalized domain.
// Keys that collide after normalization ("www.x" and "x") are unioned.
func (b *builder) addRule(domain string, keep, remove []string) {
	domain = NormalizeDomain(domain)
	if _, ok := b.keep[domain]; !ok {
		b.keep[domain] = make(map[string]struct{})
		b.remove[domain] = make(map[string]struct{})
	}
	for _, name := range keep {
		b.keep[domain][name] = struct{}{}
	}
	for _, name := range remove {
		b.remove[domain][name] = struct{}{}
	}
}

func (b *builder) build() *RuleSet {
	domains := make(map[string]DomainRule, len(b.keep))
	for domain, keep := range b.keep {
		domains[domain] = DomainRule{keep: keep, remove: b.remove[domain]}
	}
	return &RuleSet{
		tracking: b.tracking,
		domains:  domains,
		revision: uuid.NewString(),
		source:   b.source,
	}
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
