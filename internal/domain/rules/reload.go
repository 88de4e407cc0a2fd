package rules

import (
	"errors"
	"sync"
)

// ErrNoRulesPath is returned by Reload when no rule location is configured
var ErrNoRulesPath = errors.New("rules path not configured")

// Reloader reloads rule data from a file or directory and publishes it to
// a Holder. A failed reload leaves the published set untouched.
type Reloader struct {
	holder  *Holder
	path    string
	pattern string

	mu sync.Mutex
}

// NewReloader creates a reloader for path. pattern selects rule packs when
// path is a directory.
func NewReloader(holder *Holder, path, pattern string) *Reloader {
	return &Reloader{holder: holder, path: path, pattern: pattern}
}

// Path returns the configured rule location
func (r *Reloader) Path() string {
	return r.path
}

// Pattern returns the glob used when the location is a directory
func (r *Reloader) Pattern() string {
	return r.pattern
}

// Reload loads and publishes the rule data. Concurrent calls are
// serialized so the last successful load wins.
func (r *Reloader) Reload() (*RuleSet, error) {
	if r.path == "" {
		return nil, ErrNoRulesPath
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	set, err := LoadPath(r.path, r.pattern)
	if err != nil {
		return nil, err
	}
	r.holder.Set(set)
	return set, nil
}
