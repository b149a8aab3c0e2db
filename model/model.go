package model

import (
	"errors"
	"fmt"
	"time"
)

type Document struct {
	Content  []string `json:"content" yaml:"content" toml:"content"`
	Theme    *Theme   `json:"theme,omitempty" yaml:"theme,omitempty" toml:"theme,omitempty"`
	DarkMode DarkMode `json:"darkMode,omitempty" yaml:"darkMode,omitempty" toml:"darkMode,omitempty"`
}

type Theme struct {
	Extend *Extend `json:"extend,omitempty" yaml:"extend,omitempty" toml:"extend,omitempty"`
}

type Extend struct {
	Colors map[string]string `json:"colors,omitempty" yaml:"colors,omitempty" toml:"colors,omitempty"`
}

type DarkMode string

const (
	DarkModeClass    DarkMode = "class"
	DarkModeMedia    DarkMode = "media"
	DarkModeSelector DarkMode = "selector"

	// DefaultDarkMode is what the build tool assumes when a document leaves darkMode unset.
	DefaultDarkMode = DarkModeMedia
)

var ErrUnknownDarkMode = errors.New("unknown dark mode strategy")

var darkModes = [...]DarkMode{DarkModeClass, DarkModeMedia, DarkModeSelector}

func DarkModes() []DarkMode {
	return append([]DarkMode(nil), darkModes[:]...)
}

// ParseDarkMode matches s exactly against the recognized strategies.
func ParseDarkMode(s string) (DarkMode, error) {
	v := DarkMode(s)
	for _, m := range darkModes {
		if v == m {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDarkMode, s)
}

func (m DarkMode) Valid() bool {
	_, err := ParseDarkMode(string(m))
	return err == nil
}

type Snapshot struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Sources   []string  `json:"sources,omitempty"`
	Digest    string    `json:"digest"`
	Document  Document  `json:"document"`
}
