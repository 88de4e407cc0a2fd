package rules

import (
	_ "embed"
	"sync"
)

//go:embed assets/rules.json
var defaultRules []byte

const defaultSource = "embedded:assets/rules.json"

var (
	defaultSet  *RuleSet
	defaultErr  error
	defaultOnce sync.Once
)

// Default returns the rule set bundled with the binary. The asset is parsed
// once; a broken asset yields Empty.
func Default() *RuleSet {
	set, err := DefaultOrError()
	if err != nil {
		return Empty()
	}
	return set
}

// DefaultOrError parses the bundled asset and reports a malformed asset
// instead of masking it.
func DefaultOrError() (*RuleSet, error) {
	defaultOnce.Do(func() {
		defaultSet, defaultErr = Load(defaultRules)
		if defaultSet != nil {
			defaultSet.source = defaultSource
		}
	})
	return defaultSet, defaultErr
}
