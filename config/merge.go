package config

import (
	"maps"
)

// Merge layers override on top of base:
//   - content patterns are concatenated and de-duplicated, first occurrence wins the position;
//   - colors from override replace base colors with the same token;
//   - darkMode from override is used when set, otherwise base's is kept.
func Merge(base, override Record) Record {
	out := Record{
		content:  mergeContent(base.content, override.content),
		colors:   make(map[string]string, len(base.colors)+len(override.colors)),
		darkMode: base.darkMode,
	}
	maps.Copy(out.colors, base.colors)
	maps.Copy(out.colors, override.colors)
	if override.darkMode != "" {
		out.darkMode = override.darkMode
	}
	return out
}

// MergeAll folds records left to right with Merge.
func MergeAll(records ...Record) Record {
	if len(records) == 0 {
		return Record{}
	}
	acc := records[0]
	for _, r := range records[1:] {
		acc = Merge(acc, r)
	}
	return acc
}

func mergeContent(base, override []string) []string {
	seen := make(map[string]bool, len(base)+len(override))
	out := make([]string, 0, len(base)+len(override))
	for _, list := range [][]string{base, override} {
		for _, p := range list {
			if seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
