package theme

import (
	"github.com/lucasb-eyer/go-colorful"
)

// Kind classifies the syntax a color literal was written in.
type Kind string

const (
	KindHex      Kind = "hex"
	KindRGB      Kind = "rgb"
	KindHSL      Kind = "hsl"
	KindNamed    Kind = "named"
	KindKeyword  Kind = "keyword"
	KindVariable Kind = "variable"
)

// Color is a parsed color literal. Keywords and variables are valid literals
// but carry no concrete value.
type Color struct {
	Literal string
	Kind    Kind
	Value   colorful.Color
	Alpha   float64
}

// Entry is one color token of a palette.
type Entry struct {
	Name   string `json:"name"`
	Family string `json:"family"`
	Value  string `json:"value"`
	Kind   Kind   `json:"kind,omitempty"`
	Hex    string `json:"hex,omitempty"`
	Valid  bool   `json:"valid"`
}

// Family groups the tokens sharing a name prefix, e.g. primary and primary-light.
type Family struct {
	Name    string  `json:"name"`
	Entries []Entry `json:"entries"`
}
