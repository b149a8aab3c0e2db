package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"tailplane/model"
	"tailplane/theme"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// DiscoverNames lists the file names Discover looks for, in order.
var DiscoverNames = []string{"tailplane.json", "tailplane.yaml", "tailplane.yml", "tailplane.toml"}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

type Option func(*options)

type options struct {
	strictColors bool
}

// WithStrictColors requires every color value to be a color literal that
// theme.ParseColor accepts.
func WithStrictColors() Option {
	return func(o *options) {
		o.strictColors = true
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Parse decodes and validates a document. Every problem is collected into a
// single *ValidationError.
func Parse(data []byte, format Format, opts ...Option) (Record, error) {
	tree, err := decode(data, format)
	if err != nil {
		if errors.Is(err, ErrUnknownFormat) {
			return Record{}, err
		}
		verr := &ValidationError{}
		verr.add("", fmt.Errorf("%w: %v", ErrDecode, err))
		return Record{}, verr
	}
	return fromTree(tree, newOptions(opts))
}

func Load(r io.Reader, format Format, opts ...Option) (Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Record{}, fmt.Errorf("read document: %w", err)
	}
	return Parse(data, format, opts...)
}

func LoadFile(path string, opts ...Option) (Record, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Record{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("load %s: %w", path, err)
	}

	rec, err := Parse(data, format, opts...)
	if err != nil {
		return Record{}, fmt.Errorf("load %s: %w", path, err)
	}
	return rec, nil
}

// LoadFiles loads each layer and merges them left to right.
func LoadFiles(paths []string, opts ...Option) (Record, error) {
	if len(paths) == 0 {
		return Record{}, errors.New("no configuration files given")
	}

	records := make([]Record, 0, len(paths))
	for _, path := range paths {
		rec, err := LoadFile(path, opts...)
		if err != nil {
			return Record{}, err
		}
		records = append(records, rec)
	}
	return MergeAll(records...), nil
}

// Discover returns the first of DiscoverNames present in dir.
func Discover(dir string) (string, error) {
	for _, name := range DiscoverNames {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("no configuration in %s: %w", dir, os.ErrNotExist)
}

func decode(data []byte, format Format) (map[string]any, error) {
	var tree map[string]any

	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &tree); err != nil {
			return nil, err
		}
	case FormatYAML:
		var root yaml.Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, err
		}
		v, err := yamlValue(&root)
		if err != nil {
			return nil, err
		}
		if v != nil {
			m, ok := v.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("top level must be a mapping, got %T", v)
			}
			tree = m
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &tree); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if tree == nil {
		tree = map[string]any{}
	}
	return tree, nil
}

// yamlValue converts a node tree into plain Go values. Unlike decoding into a
// map directly, a repeated mapping key replaces the earlier value.
func yamlValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return yamlValue(n.Content[0])
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			var key string
			if err := n.Content[i].Decode(&key); err != nil {
				return nil, fmt.Errorf("line %d: %w", n.Content[i].Line, err)
			}
			v, err := yamlValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m[key] = v
		}
		return m, nil
	case yaml.SequenceNode:
		s := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := yamlValue(c)
			if err != nil {
				return nil, err
			}
			s = append(s, v)
		}
		return s, nil
	case yaml.AliasNode:
		return yamlValue(n.Alias)
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	}
	return nil, nil
}

var (
	topLevelKeys = map[string]bool{"content": true, "theme": true, "darkMode": true}
	themeKeys    = map[string]bool{"extend": true}
	extendKeys   = map[string]bool{"colors": true}
)

func fromTree(tree map[string]any, o options) (Record, error) {
	verr := &ValidationError{}

	checkKeys(verr, "", tree, topLevelKeys)
	rec := Record{
		content:  checkContent(verr, tree["content"]),
		colors:   checkTheme(verr, tree["theme"], o),
		darkMode: checkDarkMode(verr, tree["darkMode"]),
	}

	if !verr.empty() {
		return Record{}, verr
	}
	return rec, nil
}

func checkKeys(verr *ValidationError, prefix string, m map[string]any, allowed map[string]bool) {
	var unknown []string
	for key := range m {
		if !allowed[key] {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		verr.add(joinField(prefix, key), ErrUnknownKey)
	}
}

func checkContent(verr *ValidationError, v any) []string {
	if v == nil {
		verr.add("content", ErrEmptyContent)
		return nil
	}

	items, ok := v.([]any)
	if !ok {
		verr.add("content", fmt.Errorf("%w: want a list of patterns, got %T", ErrWrongType, v))
		return nil
	}
	if len(items) == 0 {
		verr.add("content", ErrEmptyContent)
		return nil
	}

	patterns := make([]string, 0, len(items))
	for i, item := range items {
		field := "content[" + strconv.Itoa(i) + "]"
		p, ok := item.(string)
		if !ok {
			verr.add(field, fmt.Errorf("%w: want a string, got %T", ErrWrongType, item))
			continue
		}
		if strings.TrimSpace(p) == "" {
			verr.add(field, ErrEmptyPattern)
			continue
		}
		if _, err := compilePattern(p); err != nil {
			verr.add(field, err)
			continue
		}
		patterns = append(patterns, p)
	}
	return patterns
}

func checkTheme(verr *ValidationError, v any, o options) map[string]string {
	colors := make(map[string]string)

	themeMap, ok := section(verr, "theme", v)
	if !ok {
		return colors
	}
	checkKeys(verr, "theme", themeMap, themeKeys)

	extend, ok := section(verr, "theme.extend", themeMap["extend"])
	if !ok {
		return colors
	}
	checkKeys(verr, "theme.extend", extend, extendKeys)

	raw, ok := section(verr, "theme.extend.colors", extend["colors"])
	if !ok {
		return colors
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		field := "theme.extend.colors." + name
		if strings.TrimSpace(name) == "" {
			verr.add("theme.extend.colors", fmt.Errorf("%w: empty token name", ErrInvalidColor))
			continue
		}
		if raw[name] == nil {
			verr.add(field, fmt.Errorf("%w, got null (in YAML an unquoted # starts a comment, quote the value)", ErrNonStringColor))
			continue
		}
		value, ok := raw[name].(string)
		if !ok {
			verr.add(field, fmt.Errorf("%w, got %T", ErrNonStringColor, raw[name]))
			continue
		}
		if strings.TrimSpace(value) == "" {
			verr.add(field, fmt.Errorf("%w: empty value", ErrInvalidColor))
			continue
		}
		if o.strictColors {
			if _, err := theme.ParseColor(value); err != nil {
				verr.add(field, err)
				continue
			}
		}
		colors[name] = value
	}
	return colors
}

// section returns v as a mapping. A nil value is an absent section.
func section(verr *ValidationError, field string, v any) (map[string]any, bool) {
	if v == nil {
		return nil, false
	}
	m, ok := v.(map[string]any)
	if !ok {
		verr.add(field, fmt.Errorf("%w: want a mapping, got %T", ErrWrongType, v))
		return nil, false
	}
	return m, true
}

func checkDarkMode(verr *ValidationError, v any) model.DarkMode {
	if v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		verr.add("darkMode", fmt.Errorf("%w: %v", ErrUnknownDarkMode, v))
		return ""
	}
	mode, err := model.ParseDarkMode(s)
	if err != nil {
		verr.add("darkMode", err)
		return ""
	}
	return mode
}

func joinField(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
