package theme

import (
	"sort"
	"strings"
)

// Palette is a sorted, read-only view of a token to color-value map.
type Palette struct {
	entries []Entry
}

// NewPalette parses every value of colors. Values that do not parse are kept
// with Valid set to false.
func NewPalette(colors map[string]string) Palette {
	entries := make([]Entry, 0, len(colors))
	for name, value := range colors {
		entry := Entry{
			Name:   name,
			Family: FamilyOf(name),
			Value:  value,
		}
		if c, err := ParseColor(value); err == nil {
			entry.Kind = c.Kind
			entry.Hex = c.Hex()
			entry.Valid = true
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	return Palette{entries: entries}
}

func (p Palette) Len() int {
	return len(p.entries)
}

func (p Palette) Entries() []Entry {
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

func (p Palette) Lookup(name string) (Entry, bool) {
	i := sort.Search(len(p.entries), func(i int) bool {
		return p.entries[i].Name >= name
	})
	if i < len(p.entries) && p.entries[i].Name == name {
		return p.entries[i], true
	}
	return Entry{}, false
}

// Families groups entries by family. Families are sorted by name; within a
// family the bare token comes first, then its variants alphabetically.
func (p Palette) Families() []Family {
	index := make(map[string]int)
	families := []Family{}

	for _, e := range p.entries {
		i, ok := index[e.Family]
		if !ok {
			i = len(families)
			index[e.Family] = i
			families = append(families, Family{Name: e.Family})
		}
		families[i].Entries = append(families[i].Entries, e)
	}

	sort.Slice(families, func(i, j int) bool {
		return families[i].Name < families[j].Name
	})
	for _, f := range families {
		sort.SliceStable(f.Entries, func(i, j int) bool {
			if f.Entries[i].Name == f.Name {
				return true
			}
			if f.Entries[j].Name == f.Name {
				return false
			}
			return f.Entries[i].Name < f.Entries[j].Name
		})
	}

	return families
}

// Invalid returns the entries whose value is not a color literal.
func (p Palette) Invalid() []Entry {
	var out []Entry
	for _, e := range p.entries {
		if !e.Valid {
			out = append(out, e)
		}
	}
	return out
}

// FamilyOf returns the token name up to its first dash.
func FamilyOf(name string) string {
	if i := strings.IndexByte(name, '-'); i > 0 {
		return name[:i]
	}
	return name
}
