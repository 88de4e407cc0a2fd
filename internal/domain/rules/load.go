package rules

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// ErrMalformedRuleData is returned when a rule document is missing its
// top-level keys or they have the wrong shape.
var ErrMalformedRuleData = errors.New("malformed rule data")

// document mirrors the on-disk rule layout. Pointers distinguish an absent
// key from an empty one, and a null list element from an empty name.
type document struct {
	TrackingParameters  *[]*string                 `json:"tracking_parameters" yaml:"tracking_parameters" toml:"tracking_parameters"`
	DomainSpecificRules *map[string]domainDocument `json:"domain_specific_rules" yaml:"domain_specific_rules" toml:"domain_specific_rules"`
}

type domainDocument struct {
	Keep   *[]*string `json:"keep" yaml:"keep" toml:"keep"`
	Remove *[]*string `json:"remove" yaml:"remove" toml:"remove"`
}

// Load parses a JSON rule document
func Load(raw []byte) (*RuleSet, error) {
	return Decode(raw, FormatJSON)
}

// Decode parses a rule document in the given format
func Decode(raw []byte, format Format) (*RuleSet, error) {
	var doc document

	var err error
	switch format {
	case FormatJSON:
		err = sonic.ConfigStd.Unmarshal(raw, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(raw, &doc)
	case FormatTOML:
		err = toml.Unmarshal(raw, &doc)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrMalformedRuleData, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedRuleData, format, err)
	}

	return doc.ruleSet(string(format))
}

// ruleSet validates the document shape and freezes it
func (d document) ruleSet(source string) (*RuleSet, error) {
	if d.TrackingParameters == nil {
		return nil, fmt.Errorf("%w: tracking_parameters is missing", ErrMalformedRuleData)
	}
	if d.DomainSpecificRules == nil {
		return nil, fmt.Errorf("%w: domain_specific_rules is missing", ErrMalformedRuleData)
	}

	tracking, err := names("tracking_parameters", *d.TrackingParameters)
	if err != nil {
		return nil, err
	}

	b := newBuilder(source)
	b.addTracking(tracking...)

	for domain, rule := range *d.DomainSpecificRules {
		field := fmt.Sprintf("domain_specific_rules[%q]", domain)
		if rule.Keep == nil {
			return nil, fmt.Errorf("%w: %s.keep is missing", ErrMalformedRuleData, field)
		}
		if rule.Remove == nil {
			return nil, fmt.Errorf("%w: %s.remove is missing", ErrMalformedRuleData, field)
		}
		keep, err := names(field+".keep", *rule.Keep)
		if err != nil {
			return nil, err
		}
		remove, err := names(field+".remove", *rule.Remove)
		if err != nil {
			return nil, err
		}
		b.addRule(domain, keep, remove)
	}

	return b.build(), nil
}

// names rejects null list elements
func names(field string, list []*string) ([]string, error) {
	out := make([]string, len(list))
	for i, name := range list {
		if name == nil {
			return nil, fmt.Errorf("%w: %s[%d] is null", ErrMalformedRuleData, field, i)
		}
		out[i] = *name
	}
	return out, nil
}
