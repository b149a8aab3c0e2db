package theme

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var ErrInvalidColor = errors.New("invalid color literal")

var keywords = map[string]bool{
	"transparent":  true,
	"currentcolor": true,
	"current":      true,
	"inherit":      true,
}

var namedColors = map[string]string{
	"black":   "#000000",
	"silver":  "#c0c0c0",
	"gray":    "#808080",
	"white":   "#ffffff",
	"maroon":  "#800000",
	"red":     "#ff0000",
	"purple":  "#800080",
	"fuchsia": "#ff00ff",
	"green":   "#008000",
	"lime":    "#00ff00",
	"olive":   "#808000",
	"yellow":  "#ffff00",
	"navy":    "#000080",
	"blue":    "#0000ff",
	"teal":    "#008080",
	"aqua":    "#00ffff",
	"orange":  "#ffa500",
}

// ParseColor parses a CSS color literal as accepted in a theme extension.
func ParseColor(literal string) (Color, error) {
	s := strings.TrimSpace(literal)
	if s == "" {
		return Color{}, fmt.Errorf("%w: empty value", ErrInvalidColor)
	}
	lower := strings.ToLower(s)

	switch {
	case strings.Contains(lower, "var("):
		return Color{Literal: literal, Kind: KindVariable, Alpha: 1}, nil
	case keywords[lower]:
		return Color{Literal: literal, Kind: KindKeyword, Alpha: 1}, nil
	case strings.HasPrefix(s, "#"):
		return parseHex(literal, s)
	case strings.HasPrefix(lower, "rgb"):
		return parseRGB(literal, lower)
	case strings.HasPrefix(lower, "hsl"):
		return parseHSL(literal, lower)
	}

	if hex, ok := namedColors[lower]; ok {
		c, err := colorful.Hex(hex)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, literal)
		}
		return Color{Literal: literal, Kind: KindNamed, Value: c, Alpha: 1}, nil
	}

	return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, literal)
}

// Resolved reports whether the color has a concrete value.
func (c Color) Resolved() bool {
	switch c.Kind {
	case KindHex, KindRGB, KindHSL, KindNamed:
		return true
	default:
		return false
	}
}

// Hex returns the normalized lowercase hex form, with an alpha byte when the
// color is translucent. Unresolved colors return "".
func (c Color) Hex() string {
	if !c.Resolved() {
		return ""
	}
	hex := c.Value.Clamped().Hex()
	if c.Alpha < 1 {
		hex += fmt.Sprintf("%02x", uint8(math.Round(c.Alpha*255)))
	}
	return hex
}

func parseHex(literal, s string) (Color, error) {
	body := s[1:]
	for _, r := range body {
		if !isHexDigit(r) {
			return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, literal)
		}
	}

	var base, alphaHex string
	switch len(body) {
	case 3:
		base = "#" + body
	case 4:
		base = "#" + body[:3]
		alphaHex = body[3:] + body[3:]
	case 6:
		base = "#" + body
	case 8:
		base = "#" + body[:6]
		alphaHex = body[6:]
	default:
		return Color{}, fmt.Errorf("%w: %q has %d hex digits", ErrInvalidColor, literal, len(body))
	}

	c, err := colorful.Hex(strings.ToLower(base))
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, literal)
	}

	alpha := 1.0
	if alphaHex != "" {
		a, err := strconv.ParseUint(alphaHex, 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, literal)
		}
		alpha = float64(a) / 255
	}

	return Color{Literal: literal, Kind: KindHex, Value: c, Alpha: alpha}, nil
}

func parseRGB(literal, lower string) (Color, error) {
	args, alpha, err := splitFunc(lower, "rgb", "rgba")
	if err != nil || len(args) != 3 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, literal)
	}

	var channels [3]float64
	for i, arg := range args {
		v, err := parseChannel(arg)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q: %v", ErrInvalidColor, literal, err)
		}
		channels[i] = v
	}

	a, err := parseAlpha(alpha)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q: %v", ErrInvalidColor, literal, err)
	}

	return Color{
		Literal: literal,
		Kind:    KindRGB,
		Value:   colorful.Color{R: channels[0], G: channels[1], B: channels[2]},
		Alpha:   a,
	}, nil
}

func parseHSL(literal, lower string) (Color, error) {
	args, alpha, err := splitFunc(lower, "hsl", "hsla")
	if err != nil || len(args) != 3 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, literal)
	}

	hue, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q: bad hue", ErrInvalidColor, literal)
	}
	hue = math.Mod(hue, 360)
	if hue < 0 {
		hue += 360
	}

	sat, err := parsePercent(args[1])
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q: %v", ErrInvalidColor, literal, err)
	}
	light, err := parsePercent(args[2])
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q: %v", ErrInvalidColor, literal, err)
	}

	a, err := parseAlpha(alpha)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q: %v", ErrInvalidColor, literal, err)
	}

	return Color{Literal: literal, Kind: KindHSL, Value: colorful.Hsl(hue, sat, light), Alpha: a}, nil
}

// splitFunc splits "name(a, b, c)" or "name(a b c / alpha)" into its
// arguments. A fourth comma-separated argument is taken as alpha.
func splitFunc(lower string, names ...string) ([]string, string, error) {
	open := strings.IndexByte(lower, '(')
	if open == -1 || !strings.HasSuffix(lower, ")") {
		return nil, "", errors.New("not a function")
	}

	name := strings.TrimSpace(lower[:open])
	known := false
	for _, n := range names {
		if name == n {
			known = true
			break
		}
	}
	if !known {
		return nil, "", fmt.Errorf("unknown function %q", name)
	}

	inner := strings.TrimSpace(lower[open+1 : len(lower)-1])
	var alpha string
	if slash := strings.IndexByte(inner, '/'); slash != -1 {
		alpha = strings.TrimSpace(inner[slash+1:])
		inner = strings.TrimSpace(inner[:slash])
		if alpha == "" {
			return nil, "", errors.New("empty alpha")
		}
	}

	var args []string
	if strings.Contains(inner, ",") {
		for _, part := range strings.Split(inner, ",") {
			args = append(args, strings.TrimSpace(part))
		}
	} else {
		args = strings.Fields(inner)
	}

	if len(args) == 4 && alpha == "" {
		alpha = args[3]
		args = args[:3]
	}

	return args, alpha, nil
}

func parseChannel(s string) (float64, error) {
	if strings.HasSuffix(s, "%") {
		return parsePercent(s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad channel %q", s)
	}
	if v < 0 || v > 255 {
		return 0, fmt.Errorf("channel %q out of range", s)
	}
	return v / 255, nil
}

func parsePercent(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, fmt.Errorf("bad percentage %q", s)
	}
	if v < 0 || v > 100 {
		return 0, fmt.Errorf("percentage %q out of range", s)
	}
	return v / 100, nil
}

func parseAlpha(s string) (float64, error) {
	if s == "" {
		return 1, nil
	}
	if strings.HasSuffix(s, "%") {
		return parsePercent(s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad alpha %q", s)
	}
	if v < 0 || v > 1 {
		return 0, fmt.Errorf("alpha %q out of range", s)
	}
	return v, nil
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
