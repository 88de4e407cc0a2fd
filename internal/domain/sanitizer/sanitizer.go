package sanitizer

import (
	"fmt"

	"github.com/GriffinCanCode/linksan/internal/domain/rules"
)

// RuleSource supplies the currently published rule set
type RuleSource interface {
	Get() *rules.RuleSet
}

// Sanitizer binds Sanitize to a rule source such as rules.Holder
type Sanitizer struct {
	source RuleSource
}

// New creates a sanitizer reading rules from source
func New(source RuleSource) *Sanitizer {
	return &Sanitizer{source: source}
}

// Static wraps a fixed rule set as a RuleSource
func Static(set *rules.RuleSet) RuleSource {
	return staticSource{set: set}
}

type staticSource struct {
	set *rules.RuleSet
}

func (s staticSource) Get() *rules.RuleSet {
	return s.set
}

// Rules returns the rule set the next call will use
func (s *Sanitizer) Rules() *rules.RuleSet {
	return s.source.Get()
}

// Sanitize cleans one shared text
func (s *Sanitizer) Sanitize(text string) Result {
	return Sanitize(text, s.source.Get())
}

// SanitizeBatch cleans several texts against a single rule set snapshot
func (s *Sanitizer) SanitizeBatch(texts []string) []Result {
	set := s.source.Get()
	results := make([]Result, len(texts))
	for i, text := range texts {
		results[i] = Sanitize(text, set)
	}
	return results
}

// Feedback renders the message shown to the user after a share
func Feedback(res Result) string {
	switch res.Removed {
	case 0:
		return "No trackers found - URL is clean!"
	case 1:
		return "1 tracker removed!"
	default:
		return fmt.Sprintf("%d trackers removed!", res.Removed)
	}
}
