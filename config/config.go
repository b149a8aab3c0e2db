package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"maps"
	"slices"
	"sort"

	"tailplane/model"
)

// Record is a validated configuration. It has no exported fields and every
// accessor returns a copy, so a Record can be shared between goroutines.
type Record struct {
	content  []string
	colors   map[string]string
	darkMode model.DarkMode
}

// New builds a Record from Go values, applying the same validation as Parse.
func New(content []string, colors map[string]string, darkMode model.DarkMode, opts ...Option) (Record, error) {
	items := make([]any, 0, len(content))
	for _, p := range content {
		items = append(items, p)
	}
	tree := map[string]any{"content": items}

	if colors != nil {
		values := make(map[string]any, len(colors))
		for k, v := range colors {
			values[k] = v
		}
		tree["theme"] = map[string]any{"extend": map[string]any{"colors": values}}
	}
	if darkMode != "" {
		tree["darkMode"] = string(darkMode)
	}

	return fromTree(tree, newOptions(opts))
}

// FromDocument validates a decoded document.
func FromDocument(doc model.Document, opts ...Option) (Record, error) {
	var colors map[string]string
	if doc.Theme != nil && doc.Theme.Extend != nil {
		colors = doc.Theme.Extend.Colors
	}
	return New(doc.Content, colors, doc.DarkMode, opts...)
}

// Default returns the configuration of a Flask project with Jinja templates.
func Default() Record {
	return Record{
		content: []string{"./templates/**/*.html", "./*.py"},
		colors: map[string]string{
			"primary":       "#532249",
			"primary-light": "#7F578B",
		},
		darkMode: model.DarkModeClass,
	}
}

func (r Record) Content() []string {
	return slices.Clone(r.content)
}

func (r Record) Colors() map[string]string {
	out := make(map[string]string, len(r.colors))
	maps.Copy(out, r.colors)
	return out
}

func (r Record) Color(name string) (string, bool) {
	v, ok := r.colors[name]
	return v, ok
}

func (r Record) ColorNames() []string {
	names := make([]string, 0, len(r.colors))
	for name := range r.colors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DarkMode returns the strategy as authored; it is empty when the document
// did not set one.
func (r Record) DarkMode() model.DarkMode {
	return r.darkMode
}

// EffectiveDarkMode resolves an unset strategy to model.DefaultDarkMode.
func (r Record) EffectiveDarkMode() model.DarkMode {
	if r.darkMode == "" {
		return model.DefaultDarkMode
	}
	return r.darkMode
}

func (r Record) IsZero() bool {
	return len(r.content) == 0 && len(r.colors) == 0 && r.darkMode == ""
}

func (r Record) Equal(other Record) bool {
	return slices.Equal(r.content, other.content) &&
		maps.Equal(r.colors, other.colors) &&
		r.darkMode == other.darkMode
}

// Document converts the record back to its declarative form.
func (r Record) Document() model.Document {
	doc := model.Document{
		Content:  r.Content(),
		DarkMode: r.darkMode,
	}
	if len(r.colors) > 0 {
		doc.Theme = &model.Theme{Extend: &model.Extend{Colors: r.Colors()}}
	}
	return doc
}

// Digest is a stable hash of the record's canonical JSON form.
func (r Record) Digest() string {
	data, err := json.Marshal(r.Document())
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
