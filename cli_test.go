package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tailplane/config"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.json", `{"content": ["./*.py"], "darkMode": "class"}`)
	bad := writeFile(t, dir, "bad.json", `{"content": [], "darkMode": "toggle"}`)

	stdout, _, err := execute(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 pattern(s), 0 color(s), darkMode class")

	_, stderr, err := execute(t, "validate", bad)
	require.ErrorIs(t, err, errSilent)
	assert.Contains(t, stderr, "load "+bad)
	assert.Contains(t, stderr, "content: content must list at least one pattern")
	assert.Contains(t, stderr, "2 issue(s) found")
}

func TestValidateStrict(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "colors.yaml", "content: [\"./*.py\"]\ntheme:\n  extend:\n    colors:\n      brand: not-a-color\n")

	_, _, err := execute(t, "validate", path)
	require.NoError(t, err)

	_, stderr, err := execute(t, "validate", "--strict", path)
	require.ErrorIs(t, err, errSilent)
	assert.Contains(t, stderr, "theme.extend.colors.brand")
}

func TestShowAndMergeCommands(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.toml", "content = [\"./*.py\"]\n\n[theme.extend.colors]\nprimary = \"#532249\"\n")
	override := writeFile(t, dir, "override.yaml", "content: [\"./templates/**/*.html\", \"./*.py\"]\ntheme:\n  extend:\n    colors:\n      primary-light: \"#7F578B\"\ndarkMode: class\n")

	stdout, _, err := execute(t, "show", "--format", "json", base, override)
	require.NoError(t, err)
	shown, err := config.Parse([]byte(stdout), config.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, []string{"./*.py", "./templates/**/*.html"}, shown.Content())
	assert.Len(t, shown.Colors(), 2)

	out := filepath.Join(dir, "merged.yaml")
	_, _, err = execute(t, "merge", base, override, "--out", out)
	require.NoError(t, err)

	merged, err := config.LoadFile(out)
	require.NoError(t, err)
	assert.True(t, merged.Equal(shown))

	_, _, err = execute(t, "merge", base)
	require.Error(t, err)
}

func TestMatchCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tailplane.json")
	require.NoError(t, config.Save(config.Default(), path))

	stdout, _, err := execute(t, "match", "--config", path, "templates/base.html", "static/app.css")
	require.NoError(t, err)
	assert.Contains(t, stdout, "templates/base.html")
	assert.Contains(t, stdout, "(./templates/**/*.html)")
	assert.Contains(t, stdout, "static/app.css")
}

func TestPresetsCommand(t *testing.T) {
	stdout, _, err := execute(t, "presets")
	require.NoError(t, err)

	for _, name := range []string{"flask", "flask-base", "django", "static"} {
		assert.Contains(t, stdout, name)
	}
}

func TestConfigGenerate(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "tailplane.yaml")

	_, _, err := execute(t, "config", "generate", "--out", out)
	require.NoError(t, err)

	rec, err := config.LoadFile(out)
	require.NoError(t, err)
	assert.True(t, rec.Equal(config.Default()))

	_, _, err = execute(t, "config", "generate", "--out", out)
	require.ErrorContains(t, err, "already exists")

	_, _, err = execute(t, "config", "generate", "--preset", "rails", "--out", filepath.Join(dir, "x.json"))
	require.ErrorContains(t, err, "unknown preset")
}

func TestEnvOr(t *testing.T) {
	t.Setenv("TAILPLANE_LISTEN", "127.0.0.1:9000")
	assert.Equal(t, "127.0.0.1:9000", envOr("TAILPLANE_LISTEN", ":8080"))
	assert.Equal(t, ":8080", envOr("TAILPLANE_UNSET_FOR_TEST", ":8080"))
}
