package churn

import (
	"path"
	"strings"

	"github.com/src-d/enry/v2"
)

// DefaultIgnoredPaths are top-level directories that hold third-party or sample code.
func DefaultIgnoredPaths() []string {
	return []string{"Frameworks", "Carthage", "Static-Libraries", "Playgrounds"}
}

// DefaultExtensions are the file extensions analyzed by default.
func DefaultExtensions() []string {
	return []string{".swift"}
}

// FilterConfig configures a Filter.
type FilterConfig struct {
	// IgnoredPaths are top-level directory names to exclude.
	IgnoredPaths []string
	// Extensions are the file extensions to include, with the leading dot.
	Extensions []string
	// ExcludeVendored additionally drops paths that look like vendored code.
	ExcludeVendored bool
}

// Filter keeps records whose path passes the directory denylist and the
// extension allowlist. A Filter is immutable once built.
type Filter struct {
	ignored         map[string]struct{}
	extensions      map[string]struct{}
	excludeVendored bool
}

// NewFilter builds a Filter from a copy of cfg.
func NewFilter(cfg FilterConfig) Filter {
	return Filter{
		ignored:         toSet(cfg.IgnoredPaths),
		extensions:      toSet(cfg.Extensions),
		excludeVendored: cfg.ExcludeVendored,
	}
}

// Keep reports whether the path belongs in the analysis.
func (f Filter) Keep(p string) bool {
	if _, ignored := f.ignored[topLevel(p)]; ignored {
		return false
	}

	if _, selected := f.extensions[path.Ext(p)]; !selected {
		return false
	}

	if f.excludeVendored && enry.IsVendor(p) {
		return false
	}

	return true
}

// Apply returns the records accepted by Keep, preserving order.
func (f Filter) Apply(records []Record) []Record {
	kept := make([]Record, 0, len(records))

	for _, r := range records {
		if f.Keep(r.Path) {
			kept = append(kept, r)
		}
	}

	return kept
}

// topLevel returns the first component of a slash-separated path.
func topLevel(p string) string {
	p = strings.TrimPrefix(p, "./")
	first, _, _ := strings.Cut(p, "/")

	return first
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))

	for _, v := range values {
		set[v] = struct{}{}
	}

	return set
}
