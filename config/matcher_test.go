package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcherDefaultPatterns(t *testing.T) {
	m, err := Default().Matcher()
	require.NoError(t, err)

	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{path: "templates/index.html", want: "./templates/**/*.html", ok: true},
		{path: "./templates/admin/users/list.html", want: "./templates/**/*.html", ok: true},
		{path: "app.py", want: "./*.py", ok: true},
		{path: "./routes.py", want: "./*.py", ok: true},
		{path: "Server/app.py"},
		{path: "templates/index.txt"},
		{path: "static/site.css"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := m.Match(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatcherBraces(t *testing.T) {
	m, err := NewMatcher([]string{"./src/**/*.{js,ts}"})
	require.NoError(t, err)

	_, ok := m.Match("src/app.ts")
	assert.True(t, ok)
	_, ok = m.Match("src/lib/util.js")
	assert.True(t, ok)
	_, ok = m.Match("src/lib/util.css")
	assert.False(t, ok)
}

func TestMatcherMalformed(t *testing.T) {
	_, err := NewMatcher([]string{"./templates/[abc.html"})
	require.ErrorIs(t, err, ErrMalformedPattern)
}

func TestSplitGlobstar(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "*.py", want: []string{"*.py"}},
		{in: "t/**/*.html", want: []string{"t/", "*.html"}},
		{in: "**/*.html", want: []string{"", "*.html"}},
		{in: "a/**/b/**/c", want: []string{"a/", "b/", "c"}},
		{in: "a/**/**/**/c", want: []string{"a/", "c"}},
		{in: "a**/b", want: []string{"a**/b"}},
		{in: "{a/**/b,c}", want: []string{"{a/**/b,c}"}},
		{in: "a/**", want: []string{"a/**"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, splitGlobstar(tt.in))
		})
	}
}

func TestMatcherGlobstarZeroOrMoreDirs(t *testing.T) {
	m, err := NewMatcher([]string{"./a/**/b/**/c.txt"})
	require.NoError(t, err)

	for _, p := range []string{"a/b/c.txt", "a/x/b/c.txt", "a/b/y/z/c.txt", "a/x/y/b/z/c.txt"} {
		_, ok := m.Match(p)
		assert.True(t, ok, p)
	}
	for _, p := range []string{"a/c.txt", "b/c.txt", "a/xb/c.txt", "a/b/c.txt/d"} {
		_, ok := m.Match(p)
		assert.False(t, ok, p)
	}
}

func TestMatcherManyGlobstars(t *testing.T) {
	run := "./" + strings.Repeat("**/", 30) + "*.html"
	spread := "./" + strings.Repeat("d/**/", 30) + "*.html"

	start := time.Now()

	parts, err := compilePattern(run)
	require.NoError(t, err)
	assert.Len(t, parts, 2)

	parts, err = compilePattern(spread)
	require.NoError(t, err)
	assert.Len(t, parts, 31)

	rec, err := Parse([]byte(`{"content": ["`+run+`", "`+spread+`"]}`), FormatJSON)
	require.NoError(t, err)

	m, err := rec.Matcher()
	require.NoError(t, err)

	got, ok := m.Match("x/y/index.html")
	assert.True(t, ok)
	assert.Equal(t, run, got)

	deep := strings.Repeat("d/x/", 30) + "page.htm"
	_, ok = m.Match(deep)
	assert.False(t, ok)

	assert.Less(t, time.Since(start), 2*time.Second)
}
