package sanitizer

import (
	"net/url"
	"strings"
)

// param is one query pair in its original position
type param struct {
	// key is the decoded name, or the raw text when it does not decode
	key string
	// value is the decoded value; a pair without "=" has an empty value
	value    string
	valueErr error
	// encoded is the pair as it is written back
	encoded string
}

// query is an ordered list of pairs. Duplicate keys are kept positionally.
type query []param

// parseQuery splits a raw query string on "&". Empty segments are not
// parameters and are dropped. Pairs that fail to decode are carried through
// in their raw form.
func parseQuery(rawQuery string) query {
	if rawQuery == "" {
		return nil
	}

	segments := strings.Split(rawQuery, "&")
	q := make(query, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(seg, "=")

		p := param{}
		key, keyErr := url.QueryUnescape(rawKey)
		if keyErr != nil {
			key = rawKey
		}
		p.key = key

		p.value, p.valueErr = url.QueryUnescape(rawValue)
		if p.valueErr != nil {
			p.value = rawValue
		}

		var sb strings.Builder
		if keyErr != nil {
			sb.WriteString(rawKey)
		} else {
			sb.WriteString(url.QueryEscape(key))
		}
		sb.WriteByte('=')
		if p.valueErr != nil {
			sb.WriteString(rawValue)
		} else {
			sb.WriteString(url.QueryEscape(p.value))
		}
		p.encoded = sb.String()

		q = append(q, p)
	}
	return q
}

// lookup returns the first pair named key
func (q query) lookup(key string) (param, bool) {
	for _, p := range q {
		if p.key == key {
			return p, true
		}
	}
	return param{}, false
}

// encode joins the pairs back into a raw query string
func (q query) encode() string {
	parts := make([]string, len(q))
	for i, p := range q {
		parts[i] = p.encoded
	}
	return strings.Join(parts, "&")
}

// parts is a URL split around its query, so that everything except the
// query is written back byte for byte.
type parts struct {
	base        string
	query       query
	fragment    string
	hasFragment bool
}

func splitURL(raw string) parts {
	var p parts

	rest := raw
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		p.fragment = rest[i+1:]
		p.hasFragment = true
		rest = rest[:i]
	}

	base, rawQuery, _ := strings.Cut(rest, "?")
	p.base = base
	p.query = parseQuery(rawQuery)
	return p
}

// String rebuilds the URL. An empty query drops the "?".
func (p parts) String() string {
	var sb strings.Builder
	sb.WriteString(p.base)
	if len(p.query) > 0 {
		sb.WriteByte('?')
		sb.WriteString(p.query.encode())
	}
	if p.hasFragment {
		sb.WriteByte('#')
		sb.WriteString(p.fragment)
	}
	return sb.String()
}
