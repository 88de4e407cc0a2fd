package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
)

// DefaultPattern selects rule packs inside a rules directory
const DefaultPattern = "**/*.{json,yaml,yml,toml,json.gz,json.zst,yaml.gz,yaml.zst,toml.gz,toml.zst}"

// ErrNoRuleFiles is returned when a rules directory has no matching packs
var ErrNoRuleFiles = errors.New("no rule files found")

// LoadPath loads a single rule file, or every pack in a directory that
// matches pattern.
func LoadPath(path, pattern string) (*RuleSet, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat rules %s: %w", path, err)
	}
	if info.IsDir() {
		return LoadDir(path, pattern)
	}
	return LoadFile(path)
}

// LoadFile reads and decodes one rule file. Compressed files are inflated
// before the format is chosen.
func LoadFile(path string) (*RuleSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}

	data, err := decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedRuleData, path, err)
	}

	set, err := Decode(data, DetectFormat(path, data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	set.source = path
	return set, nil
}

// LoadDir walks dir, loads every file whose slash-separated relative path
// matches pattern, and merges them in lexical order.
func LoadDir(dir, pattern string) (*RuleSet, error) {
	paths, err := matchFiles(dir, pattern)
	if err != nil {
		return nil, err
	}

	sets := make([]*RuleSet, 0, len(paths))
	for _, p := range paths {
		set, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}

	return Merge(dir, sets...), nil
}

// Fingerprint summarizes the name, size and modification time of every rule
// file LoadPath would read. It changes whenever a reload could produce a
// different rule set.
func Fingerprint(path, pattern string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat rules %s: %w", path, err)
	}

	paths := []string{path}
	if info.IsDir() {
		if paths, err = matchFiles(path, pattern); err != nil {
			return "", err
		}
	}

	h := sha256.New()
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			return "", fmt.Errorf("stat rules %s: %w", p, err)
		}
		fmt.Fprintf(h, "%s|%d|%d\n", p, fi.Size(), fi.ModTime().UnixNano())
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// matchFiles returns the sorted paths under dir matching pattern
func matchFiles(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid rules pattern %q", pattern)
	}

	var (
		mu    sync.Mutex
		paths []string
	)

	conf := fastwalk.Config{Follow: false}

	err := fastwalk.Walk(&conf, dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Skip hidden directories such as .git
			if p != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		if ok, _ := doublestar.Match(pattern, filepath.ToSlash(rel)); !ok {
			return nil
		}

		// fastwalk invokes the callback from several goroutines
		mu.Lock()
		paths = append(paths, p)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk rules %s: %w", dir, err)
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s matching %q", ErrNoRuleFiles, dir, pattern)
	}
	sort.Strings(paths)
	return paths, nil
}
