package preset

import (
	"cmp"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"tailplane/config"
)

//go:embed templates
var templatesFS embed.FS

// Preset is a named starter configuration.
type Preset struct {
	Name        string
	Description string
	File        string
	Record      config.Record
}

// Manager manages preset documents.
type Manager struct {
	presetsMap  map[string]*Preset
	presetsList []string
	log         zerolog.Logger
}

// Embedded returns a manager over the presets compiled into the binary.
func Embedded(logger zerolog.Logger) (*Manager, error) {
	return NewManager(templatesFS, logger)
}

// NewManager creates a new preset manager and loads documents from the
// templates directory of fsys.
func NewManager(fsys fs.FS, logger zerolog.Logger) (*Manager, error) {
	m := &Manager{
		presetsMap:  make(map[string]*Preset),
		presetsList: []string{},
		log:         logger,
	}

	if err := m.loadTemplates(fsys); err != nil {
		return nil, fmt.Errorf("load presets: %w", err)
	}

	return m, nil
}

func (m *Manager) loadTemplates(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, "templates")
	if err != nil {
		return fmt.Errorf("read templates directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		format, err := config.FormatFromPath(entry.Name())
		if err != nil {
			continue
		}

		file := path.Join("templates", entry.Name())
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			m.log.Warn().Err(err).Str("file", file).Msg("failed to read preset")
			continue
		}

		rec, err := config.Parse(data, format)
		if err != nil {
			m.log.Warn().Err(err).Str("file", file).Msg("skipping invalid preset")
			continue
		}

		meta := ParseMetadata(string(data))
		name := meta.Name
		if name == "" {
			name = strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))
		}
		if _, exists := m.presetsMap[name]; exists {
			m.log.Warn().Str("file", file).Str("preset", name).Msg("duplicate preset name")
			continue
		}

		m.presetsMap[name] = &Preset{
			Name:        name,
			Description: meta.Description,
			File:        file,
			Record:      rec,
		}
		m.presetsList = append(m.presetsList, name)
	}

	m.presetsList = sortPresets(m.presetsList)

	m.log.Debug().Int("count", len(m.presetsMap)).Strs("presets", m.presetsList).Msg("loaded presets")

	return nil
}

var preferredOrder = []string{"flask", "flask-base", "django", "static"}

// sortPresets puts names from preferredOrder first, in that order, then the
// rest alphabetically.
func sortPresets(presets []string) []string {
	rank := func(name string) int {
		if i := slices.Index(preferredOrder, name); i >= 0 {
			return i
		}
		return len(preferredOrder)
	}

	out := slices.Clone(presets)
	slices.SortStableFunc(out, func(a, b string) int {
		if c := cmp.Compare(rank(a), rank(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return out
}

// Get returns a preset by name, or nil if not found.
func (m *Manager) Get(name string) *Preset {
	return m.presetsMap[name]
}

// List returns all preset names, preferred presets first.
func (m *Manager) List() []string {
	return append([]string(nil), m.presetsList...)
}

// Description returns the description of the named preset, or "" if the
// preset is unknown or has none.
func (m *Manager) Description(name string) string {
	if p := m.presetsMap[name]; p != nil {
		return p.Description
	}
	return ""
}
