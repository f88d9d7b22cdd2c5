// Package exclude decides which relative paths are left out of a manifest.
//
// Patterns use glob syntax and are matched against the whole normalized
// relative path, with "/" as the only separator:
//
//	*       any run of characters except "/"
//	?       any single character except "/"
//	**      any run of characters including "/"
//	[abc]   one character from a class ([!abc] negates)
//	{a,b}   either alternative
//
// A "**/" prefix or a "/**/" infix also matches zero directories, so
// "**/.DS_Store" matches both ".DS_Store" and "sub/.DS_Store".
package exclude

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// separator is the only path separator patterns know about.
const separator = '/'

// ErrInvalidPattern is wrapped by every PatternError.
var ErrInvalidPattern = errors.New("invalid exclude pattern")

var (
	errDanglingEscape    = errors.New("trailing escape character")
	errUnclosedClass     = errors.New("unclosed character class")
	errUnclosedAlternate = errors.New("unclosed alternation")
	errUnopenedAlternate = errors.New("unexpected '}' without '{'")
)

// PatternError reports a pattern that could not be compiled.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("%v %q: %v", ErrInvalidPattern, e.Pattern, e.Err)
}

// Unwrap returns the underlying compile error.
func (e *PatternError) Unwrap() error { return e.Err }

// Is matches ErrInvalidPattern.
func (e *PatternError) Is(target error) bool { return target == ErrInvalidPattern }

// Matcher holds a compiled exclusion set. The zero value and a nil *Matcher
// exclude nothing. A Matcher is safe for concurrent use once built.
type Matcher struct {
	patterns []string
	globs    []glob.Glob
}

// New compiles patterns once. The first invalid pattern aborts with a *PatternError.
// Empty patterns are ignored.
func New(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if err := validate(p); err != nil {
			return nil, &PatternError{Pattern: p, Err: err}
		}
		for _, variant := range expandZeroSegments(p) {
			g, err := glob.Compile(variant, separator)
			if err != nil {
				return nil, &PatternError{Pattern: p, Err: err}
			}
			m.globs = append(m.globs, g)
		}
		m.patterns = append(m.patterns, p)
	}
	return m, nil
}

// MustNew is like New but panics on an invalid pattern. Intended for tests and
// package-level defaults.
func MustNew(patterns ...string) *Matcher {
	m, err := New(patterns)
	if err != nil {
		panic(err)
	}
	return m
}

// IsExcluded reports whether rel matches at least one pattern.
func (m *Matcher) IsExcluded(rel string) bool {
	if m == nil {
		return false
	}
	for _, g := range m.globs {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// Patterns returns the patterns the matcher was built from, in the order given.
func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.patterns))
	copy(out, m.patterns)
	return out
}

// Len returns the number of patterns.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.patterns)
}

// validate rejects patterns the glob compiler would otherwise accept with a
// surprising literal meaning: a trailing "\", an open "[" class and
// unbalanced "{" or "}". Braces inside a class are literal.
func validate(p string) error {
	depth := 0
	inClass := false
	for i := 0; i < len(p); i++ {
		switch c := p[i]; {
		case c == '\\':
			if i == len(p)-1 {
				return errDanglingEscape
			}
			i++
		case inClass:
			if c == ']' {
				inClass = false
			}
		case c == '[':
			inClass = true
		case c == '{':
			depth++
		case c == '}':
			if depth == 0 {
				return errUnopenedAlternate
			}
			depth--
		}
	}
	switch {
	case inClass:
		return errUnclosedClass
	case depth > 0:
		return errUnclosedAlternate
	}
	return nil
}

// expandZeroSegments returns p plus every variant in which a leading "**/" or
// an inner "/**/" is collapsed, so "**" can stand for zero directories.
func expandZeroSegments(p string) []string {
	variants := []string{p}
	seen := map[string]struct{}{p: {}}
	add := func(v string) {
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		variants = append(variants, v)
	}

	for i := 0; i < len(variants); i++ {
		v := variants[i]
		if strings.HasPrefix(v, "**/") {
			add(v[len("**/"):])
		}
		for off := 0; ; {
			idx := strings.Index(v[off:], "/**/")
			if idx < 0 {
				break
			}
			idx += off
			add(v[:idx] + "/" + v[idx+len("/**/"):])
			off = idx + 1
		}
	}
	return variants
}
