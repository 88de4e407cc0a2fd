package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
	"tracking_parameters": ["utm_source", "fbclid", "ref"],
	"domain_specific_rules": {
		"WWW.News.Example": {"keep": ["ref"], "remove": []},
		"google.com": {"keep": [], "remove": ["sa"]}
	}
}`

func TestLoad(t *testing.T) {
	set, err := Load([]byte(sampleJSON))
	require.NoError(t, err)

	assert.True(t, set.IsTracking("utm_source"))
	assert.True(t, set.IsTracking("fbclid"))
	assert.False(t, set.IsTracking("id"))
	assert.False(t, set.IsTracking("UTM_SOURCE"), "names are case-sensitive")

	assert.Equal(t, []string{"google.com", "news.example"}, set.Domains())

	rule, ok := set.Rule("www.news.example")
	require.True(t, ok)
	assert.True(t, rule.Keeps("ref"))
	assert.Empty(t, rule.Remove())

	rule, ok = set.Rule("Google.com")
	require.True(t, ok)
	assert.True(t, rule.Removes("sa"))

	_, ok = set.Rule("example.com")
	assert.False(t, ok)

	stats := set.Stats()
	assert.Equal(t, 3, stats.TrackingParameters)
	assert.Equal(t, 2, stats.Domains)
	assert.NotEmpty(t, stats.Revision)
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"invalid json", `{"tracking_parameters": [`},
		{"missing tracking_parameters", `{"domain_specific_rules": {}}`},
		{"missing domain_specific_rules", `{"tracking_parameters": []}`},
		{"null tracking_parameters", `{"tracking_parameters": null, "domain_specific_rules": {}}`},
		{"tracking_parameters not array", `{"tracking_parameters": "utm_source", "domain_specific_rules": {}}`},
		{"tracking_parameters not strings", `{"tracking_parameters": [1, 2], "domain_specific_rules": {}}`},
		{"domain_specific_rules not object", `{"tracking_parameters": [], "domain_specific_rules": []}`},
		{"rule missing keep", `{"tracking_parameters": [], "domain_specific_rules": {"a.com": {"remove": []}}}`},
		{"rule missing remove", `{"tracking_parameters": [], "domain_specific_rules": {"a.com": {"keep": []}}}`},
		{"rule keep not strings", `{"tracking_parameters": [], "domain_specific_rules": {"a.com": {"keep": [true], "remove": []}}}`},
		{"rule is null", `{"tracking_parameters": [], "domain_specific_rules": {"a.com": null}}`},
		{"null tracking parameter", `{"tracking_parameters": [null, "a"], "domain_specific_rules": {}}`},
		{"null keep entry", `{"tracking_parameters": [], "domain_specific_rules": {"a.com": {"keep": [null], "remove": []}}}`},
		{"null remove entry", `{"tracking_parameters": [], "domain_specific_rules": {"a.com": {"keep": [], "remove": ["x", null]}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Load([]byte(tt.raw))
			assert.Nil(t, set)
			assert.ErrorIs(t, err, ErrMalformedRuleData)
		})
	}
}

func TestLoadEmptyDocument(t *testing.T) {
	set, err := Load([]byte(`{"tracking_parameters": [], "domain_specific_rules": {}}`))
	require.NoError(t, err)
	assert.Empty(t, set.TrackingParameters())
	assert.Empty(t, set.Domains())
}

func TestLoadNormalizationCollision(t *testing.T) {
	raw := `{
		"tracking_parameters": [],
		"domain_specific_rules": {
			"www.shop.example": {"keep": ["id"], "remove": []},
			"shop.example": {"keep": [], "remove": ["tag"]}
		}
	}`

	set, err := Load([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, []string{"shop.example"}, set.Domains())

	rule, ok := set.Rule("shop.example")
	require.True(t, ok)
	assert.Equal(t, []string{"id"}, rule.Keep())
	assert.Equal(t, []string{"tag"}, rule.Remove())
}

func TestDecodeYAML(t *testing.T) {
	raw := `
tracking_parameters:
  - utm_source
  - ref
domain_specific_rules:
  www.news.example:
    keep: [ref]
    remove: []
`
	set, err := Decode([]byte(raw), FormatYAML)
	require.NoError(t, err)

	assert.True(t, set.IsTracking("utm_source"))
	rule, ok := set.Rule("news.example")
	require.True(t, ok)
	assert.True(t, rule.Keeps("ref"))
}

func TestDecodeYAMLMissingKey(t *testing.T) {
	_, err := Decode([]byte("tracking_parameters: [a]\n"), FormatYAML)
	assert.ErrorIs(t, err, ErrMalformedRuleData)
}

func TestDecodeYAMLNullEntry(t *testing.T) {
	_, err := Decode([]byte("tracking_parameters: [a, null]\ndomain_specific_rules: {}\n"), FormatYAML)
	assert.ErrorIs(t, err, ErrMalformedRuleData)
}

func TestDecodeTOML(t *testing.T) {
	raw := `
tracking_parameters = ["utm_source", "fbclid"]

[domain_specific_rules."google.com"]
keep = []
remove = ["sa"]
`
	set, err := Decode([]byte(raw), FormatTOML)
	require.NoError(t, err)

	assert.True(t, set.IsTracking("fbclid"))
	rule, ok := set.Rule("google.com")
	require.True(t, ok)
	assert.True(t, rule.Removes("sa"))
}

func TestDecodeUnsupportedFormat(t *testing.T) {
	_, err := Decode([]byte(sampleJSON), Format("xml"))
	assert.ErrorIs(t, err, ErrMalformedRuleData)
}

func TestDefault(t *testing.T) {
	set, err := DefaultOrError()
	require.NoError(t, err)

	assert.Same(t, set, Default())
	assert.Equal(t, defaultSource, set.Source())
	assert.True(t, set.IsTracking("utm_source"))
	assert.True(t, set.IsTracking("fbclid"))

	rule, ok := set.Rule("google.com")
	require.True(t, ok)
	assert.True(t, rule.Keeps("url"))
	assert.True(t, rule.Removes("sa"))
}

func TestMerge(t *testing.T) {
	a, err := Load([]byte(`{"tracking_parameters": ["a"], "domain_specific_rules": {"x.com": {"keep": ["k"], "remove": []}}}`))
	require.NoError(t, err)
	b, err := Load([]byte(`{"tracking_parameters": ["b"], "domain_specific_rules": {"www.x.com": {"keep": [], "remove": ["r"]}, "y.com": {"keep": [], "remove": []}}}`))
	require.NoError(t, err)

	merged := Merge("test", a, nil, b)

	assert.Equal(t, []string{"a", "b"}, merged.TrackingParameters())
	assert.Equal(t, []string{"x.com", "y.com"}, merged.Domains())
	assert.Equal(t, "test", merged.Source())
	assert.NotEqual(t, a.Revision(), merged.Revision())

	rule, ok := merged.Rule("x.com")
	require.True(t, ok)
	assert.True(t, rule.Keeps("k"))
	assert.True(t, rule.Removes("r"))

	// inputs are untouched
	assert.Equal(t, []string{"a"}, a.TrackingParameters())
}

func TestNilRuleSet(t *testing.T) {
	var set *RuleSet

	assert.False(t, set.IsTracking("utm_source"))
	_, ok := set.Rule("example.com")
	assert.False(t, ok)
	assert.Nil(t, set.Domains())
	assert.Equal(t, Stats{}, set.Stats())
}

func TestNormalizeDomain(t *testing.T) {
	tests := map[string]string{
		"www.example.com":   "example.com",
		"WWW.Example.COM":   "example.com",
		"example.com":       "example.com",
		" www.example.com ": "example.com",
		"www2.example.com":  "www2.example.com",
		"sub.www.example":   "sub.www.example",
		"":                  "",
	}

	for in, want := range tests {
		assert.Equal(t, want, NormalizeDomain(in), "input %q", in)
	}
}
