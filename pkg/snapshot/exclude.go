package snapshot

import (
	"path"
	"strings"
)

// Excluder decides which entries a scan leaves out. Patterns support:
//   - base name globs: *.tmp, .DS_Store
//   - directory patterns, matching directories only: .git/, node_modules/
//   - path globs anchored at the root: build/*, docs/*.pdf
//   - any-depth globs: **/cache, **/*.bak
type Excluder struct {
	patterns []string
}

// NewExcluder normalizes patterns to forward slashes and drops empty ones
func NewExcluder(patterns []string) *Excluder {
	e := &Excluder{}
	for _, p := range patterns {
		p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
		if p != "" {
			e.patterns = append(e.patterns, p)
		}
	}
	return e
}

// Patterns returns the normalized patterns
func (e *Excluder) Patterns() []string {
	if e == nil {
		return nil
	}
	return e.patterns
}

// Match reports whether the entry at rel is excluded. The root is never excluded.
func (e *Excluder) Match(rel string, isDir bool) bool {
	if e == nil || rel == "" {
		return false
	}
	base := path.Base(rel)

	for _, pattern := range e.patterns {
		if strings.HasSuffix(pattern, "/") {
			if isDir && e.matchPattern(strings.TrimSuffix(pattern, "/"), rel, base) {
				return true
			}
			continue
		}
		if e.matchPattern(pattern, rel, base) {
			return true
		}
	}
	return false
}

func (e *Excluder) matchPattern(pattern, rel, base string) bool {
	if suffix, ok := strings.CutPrefix(pattern, "**/"); ok {
		if glob(suffix, base) || glob(suffix, rel) {
			return true
		}
		// try every tail of the path: a/b/c -> b/c -> c
		for i := strings.Index(rel, "/"); i >= 0; {
			rest := rel[i+1:]
			if glob(suffix, rest) {
				return true
			}
			next := strings.Index(rest, "/")
			if next < 0 {
				break
			}
			i += next + 1
		}
		return false
	}

	if strings.Contains(pattern, "/") {
		return glob(pattern, rel)
	}
	return glob(pattern, base)
}

func glob(pattern, name string) bool {
	matched, _ := path.Match(pattern, name)
	return matched
}
