package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// Matcher reports which content pattern selects a path. It does not touch the
// filesystem.
type Matcher struct {
	patterns []compiled
}

type compiled struct {
	source string
	parts  []glob.Glob
}

func NewMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range patterns {
		parts, err := compilePattern(p)
		if err != nil {
			return nil, err
		}
		m.patterns = append(m.patterns, compiled{source: p, parts: parts})
	}
	return m, nil
}

// Matcher compiles the record's content patterns.
func (r Record) Matcher() (*Matcher, error) {
	return NewMatcher(r.content)
}

// Match returns the first pattern that selects path.
func (m *Matcher) Match(path string) (string, bool) {
	norm := normalizePath(path)
	for _, p := range m.patterns {
		if matchParts(p.parts, norm) {
			return p.source, true
		}
	}
	return "", false
}

func compilePattern(pattern string) ([]glob.Glob, error) {
	parts := splitGlobstar(normalizePath(pattern))
	globs := make([]glob.Glob, len(parts))
	for i, part := range parts {
		if part == "" {
			continue
		}
		g, err := glob.Compile(part, '/')
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrMalformedPattern, pattern, err)
		}
		globs[i] = g
	}
	return globs, nil
}

func normalizePath(p string) string {
	p = filepath.ToSlash(strings.TrimSpace(p))
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	return p
}

// splitGlobstar cuts p at every "**/" that starts a path segment outside
// braces. Runs of "**/" count once. Every part but the last is empty or ends
// with "/".
func splitGlobstar(p string) []string {
	var parts []string
	start, depth := 0, 0
	for i := 0; i < len(p); {
		switch {
		case p[i] == '\\':
			i += 2
			continue
		case p[i] == '{':
			depth++
		case p[i] == '}' && depth > 0:
			depth--
		case depth == 0 && strings.HasPrefix(p[i:], "**/") && (i == 0 || p[i-1] == '/'):
			parts = append(parts, p[start:i])
			i += 3
			for strings.HasPrefix(p[i:], "**/") {
				i += 3
			}
			start = i
			continue
		}
		i++
	}
	return append(parts, p[start:])
}

// matchParts reports whether path splits into pieces matched by parts in
// order, with any number of whole directories between neighbouring parts.
// Cuts only happen after a '/'.
func matchParts(parts []glob.Glob, path string) bool {
	bounds := []int{0}
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			bounds = append(bounds, i+1)
		}
	}

	last := len(parts) - 1
	seen := make(map[[2]int]bool)

	var from func(part, b int) bool
	from = func(part, b int) bool {
		pos := bounds[b]
		if part == last {
			return matchPart(parts[part], path[pos:])
		}
		key := [2]int{part, b}
		if ok, done := seen[key]; done {
			return ok
		}

		ok := false
		for end := b; end < len(bounds) && !ok; end++ {
			if !matchPart(parts[part], path[pos:bounds[end]]) {
				continue
			}
			for next := end; next < len(bounds); next++ {
				if from(part+1, next) {
					ok = true
					break
				}
			}
		}
		seen[key] = ok
		return ok
	}

	return from(0, 0)
}

func matchPart(g glob.Glob, s string) bool {
	if g == nil {
		return s == ""
	}
	return g.Match(s)
}
