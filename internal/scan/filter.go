// Package scan implements the traversal engine: exclusion filtering,
// sequential and concurrent directory walks, progress events, and the lazy
// streaming scanner.
package scan

import (
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter decides whether a directory entry is skipped by name.
//
// Any name starting with "." is excluded unconditionally. Remaining patterns
// are partitioned once at construction into an exact-match set and wildcard
// patterns (containing * or ?); wildcard matching is anchored to the whole
// name. Results are memoized per distinct name, since names like
// "node_modules" recur under many subdirectories of a large tree. A Filter is
// immutable after construction and safe to share across concurrent workers.
type Filter struct {
	exact     map[string]struct{}
	wildcards []string
	memo      sync.Map // name -> bool
}

// NewFilter creates a Filter from the given name patterns. Invalid wildcard
// patterns are dropped: a pattern that cannot match anything should not make
// every scan fail.
func NewFilter(patterns []string) *Filter {
	filter := &Filter{exact: make(map[string]struct{}, len(patterns))}

	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if strings.ContainsAny(pattern, "*?") {
			if doublestar.ValidatePattern(pattern) {
				filter.wildcards = append(filter.wildcards, pattern)
			}

			continue
		}
		filter.exact[pattern] = struct{}{}
	}

	return filter
}

// ShouldExclude reports whether an entry with the given name is skipped.
// Deterministic and pure: the same name always yields the same answer.
func (f *Filter) ShouldExclude(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}

	if cached, ok := f.memo.Load(name); ok {
		return cached.(bool)
	}

	excluded := f.matches(name)
	f.memo.Store(name, excluded)

	return excluded
}

func (f *Filter) matches(name string) bool {
	if _, ok := f.exact[name]; ok {
		return true
	}

	for _, pattern := range f.wildcards {
		// Patterns were validated at construction, so Match cannot fail here.
		if matched, _ := doublestar.Match(pattern, name); matched {
			return true
		}
	}

	return false
}

// Patterns returns the normalized pattern list in sorted order, used as the
// exclusion-set identity when deriving cache fingerprints.
func (f *Filter) Patterns() []string {
	patterns := make([]string, 0, len(f.exact)+len(f.wildcards))
	for pattern := range f.exact {
		patterns = append(patterns, pattern)
	}
	patterns = append(patterns, f.wildcards...)
	sort.Strings(patterns)

	return patterns
}
