package preset

import (
	"strings"
)

// Metadata is read from the comment header at the top of a preset document.
type Metadata struct {
	Name        string
	Description string
}

// ParseMetadata reads "# Key: value" lines until the first line that is
// neither blank nor a comment.
func ParseMetadata(content string) Metadata {
	var meta Metadata

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "#") {
			break
		}

		line = strings.TrimSpace(strings.TrimPrefix(line, "#"))
		if strings.HasPrefix(line, "Preset:") {
			meta.Name = strings.TrimSpace(strings.TrimPrefix(line, "Preset:"))
		} else if strings.HasPrefix(line, "Description:") {
			meta.Description = strings.TrimSpace(strings.TrimPrefix(line, "Description:"))
		}
	}

	return meta
}
