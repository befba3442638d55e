// Package ignore matches logical paths against the manifest's ignore
// patterns. A matched path is excluded from management on every tier.
//
// Patterns use "/"-separated glob syntax:
//
//   - ".gitconfig" or "*.log" (no slash) matches that name at any depth
//   - ".config/*/cache" (slash, no **) matches the whole path; "*" and
//     "?" never cross a "/"
//   - ".cache/**" matches .cache and everything under it
//   - "**/node_modules" matches node_modules wherever it appears
//   - ".config/**/secrets" matches with any number of segments between
//
// At most one "**" is allowed and it must stand alone as a full segment.
// Malformed patterns are rejected when the manifest is loaded, never
// silently skipped at match time.
package ignore

import (
	"path"
	"strings"

	"github.com/arthur-debert/dotfold/pkg/errors"
)

// Matcher answers whether a logical path is excluded by the ignore list.
type Matcher struct {
	patterns []string
}

// New builds a matcher, rejecting malformed patterns.
func New(patterns []string) (*Matcher, error) {
	if err := CheckPatterns(patterns); err != nil {
		return nil, err
	}
	return &Matcher{patterns: patterns}, nil
}

// Match reports whether logical is excluded by any ignore pattern.
// Absolute paths (system tier) are matched on their slash-trimmed form,
// so "etc/**" and "/etc/**" behave identically.
func (m *Matcher) Match(logical string) bool {
	logical = strings.TrimPrefix(logical, "/")
	if logical == "" {
		return false
	}
	for _, pattern := range m.patterns {
		if matchPattern(strings.TrimPrefix(pattern, "/"), logical) {
			return true
		}
	}
	return false
}

// Patterns returns the pattern list the matcher was built with.
func (m *Matcher) Patterns() []string {
	return m.patterns
}

// matchPattern matches one pattern against one slash-trimmed logical path.
func matchPattern(pattern, logical string) bool {
	if pattern == "**" {
		return true
	}

	if !strings.Contains(pattern, "**") {
		if !strings.Contains(pattern, "/") {
			// Bare name: match any single segment of the path. This is
			// what makes "*.log" catch logs in subdirectories.
			for _, segment := range strings.Split(logical, "/") {
				if matchGlob(pattern, segment) {
					return true
				}
			}
			return false
		}
		return matchGlob(pattern, logical)
	}

	// "prefix/**": the prefix itself, or anything under it.
	if rest, ok := strings.CutSuffix(pattern, "/**"); ok && !strings.Contains(rest, "**") {
		if matchGlob(rest, logical) {
			return true
		}
		return matchLeading(rest, logical)
	}

	// "**/suffix": the suffix alone, or with any segments before it.
	if rest, ok := strings.CutPrefix(pattern, "**/"); ok && !strings.Contains(rest, "**") {
		if matchGlob(rest, logical) {
			return true
		}
		return matchTrailing(rest, logical)
	}

	// "prefix/**/suffix": prefix at the start, suffix at the end, any
	// number of segments between (including none).
	if i := strings.Index(pattern, "/**/"); i >= 0 {
		prefix, suffix := pattern[:i], pattern[i+4:]
		if strings.Contains(suffix, "**") {
			return false
		}

		if matchGlob(prefix+"/"+suffix, logical) {
			return true
		}

		prefixDepth := strings.Count(prefix, "/") + 1
		suffixDepth := strings.Count(suffix, "/") + 1
		segments := strings.Split(logical, "/")
		if len(segments) < prefixDepth+1+suffixDepth {
			return false
		}
		return matchGlob(prefix, strings.Join(segments[:prefixDepth], "/")) &&
			matchGlob(suffix, strings.Join(segments[len(segments)-suffixDepth:], "/"))
	}

	return false
}

// matchGlob is path.Match with malformed patterns treated as non-matching.
// CheckPatterns keeps malformed patterns out of live matchers, so this
// only guards direct callers.
func matchGlob(pattern, s string) bool {
	matched, err := path.Match(pattern, s)
	return err == nil && matched
}

// matchLeading reports whether the leading segments of logical match
// pattern with at least one further segment after them.
func matchLeading(pattern, logical string) bool {
	depth := strings.Count(pattern, "/") + 1
	segments := strings.SplitN(logical, "/", depth+1)
	if len(segments) <= depth {
		return false
	}
	return matchGlob(pattern, strings.Join(segments[:depth], "/"))
}

// matchTrailing reports whether the trailing segments of logical match
// pattern with at least one segment before them.
func matchTrailing(pattern, logical string) bool {
	depth := strings.Count(pattern, "/") + 1
	segments := strings.Split(logical, "/")
	if len(segments) <= depth {
		return false
	}
	return matchGlob(pattern, strings.Join(segments[len(segments)-depth:], "/"))
}

// CheckPatterns validates an ignore list. Manifest loading calls this so
// a bad pattern fails the whole load instead of quietly changing which
// paths get deployed.
func CheckPatterns(patterns []string) error {
	for _, pattern := range patterns {
		if err := checkPattern(pattern); err != nil {
			return err
		}
	}
	return nil
}

func checkPattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return errors.New(errors.ErrInvalidInput, "ignore pattern cannot be empty")
	}
	if strings.Count(pattern, "**") > 1 {
		return errors.Newf(errors.ErrInvalidInput,
			"ignore pattern %q: at most one \"**\" is supported", pattern)
	}
	if i := strings.Index(pattern, "**"); i >= 0 {
		before := i == 0 || pattern[i-1] == '/'
		after := i+2 == len(pattern) || pattern[i+2] == '/'
		if !before || !after {
			return errors.Newf(errors.ErrInvalidInput,
				"ignore pattern %q: \"**\" must be a full path segment", pattern)
		}
	}

	// path.Match only reports bad syntax when matching reaches it, so
	// scan for unterminated character classes and dangling escapes here.
	inClass := false
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			if i+1 == len(pattern) {
				return errors.Newf(errors.ErrInvalidInput,
					"ignore pattern %q: trailing escape", pattern)
			}
			i++
		case '[':
			inClass = true
		case ']':
			inClass = false
		}
	}
	if inClass {
		return errors.Newf(errors.ErrInvalidInput,
			"ignore pattern %q: unterminated character class", pattern)
	}
	return nil
}
