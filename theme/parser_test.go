package theme

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		kind    Kind
		hex     string
		wantErr bool
	}{
		{name: "hex6", in: "#532249", kind: KindHex, hex: "#532249"},
		{name: "hex6 uppercase", in: "#7F578B", kind: KindHex, hex: "#7f578b"},
		{name: "hex3", in: "#fff", kind: KindHex, hex: "#ffffff"},
		{name: "hex4 alpha", in: "#0008", kind: KindHex, hex: "#00000088"},
		{name: "hex8 alpha", in: "#53224980", kind: KindHex, hex: "#53224980"},
		{name: "rgb commas", in: "rgb(83, 34, 73)", kind: KindRGB, hex: "#532249"},
		{name: "rgb spaces", in: "rgb(83 34 73)", kind: KindRGB, hex: "#532249"},
		{name: "rgba legacy", in: "rgba(0, 0, 0, 0.5)", kind: KindRGB, hex: "#00000080"},
		{name: "rgb slash alpha", in: "rgb(255 255 255 / 50%)", kind: KindRGB, hex: "#ffffff80"},
		{name: "rgb percent", in: "rgb(100%, 0%, 0%)", kind: KindRGB, hex: "#ff0000"},
		{name: "hsl", in: "hsl(0, 100%, 50%)", kind: KindHSL, hex: "#ff0000"},
		{name: "hsl deg", in: "hsl(120deg 100% 25%)", kind: KindHSL, hex: "#008000"},
		{name: "named", in: "teal", kind: KindNamed, hex: "#008080"},
		{name: "keyword", in: "currentColor", kind: KindKeyword},
		{name: "transparent", in: "transparent", kind: KindKeyword},
		{name: "variable", in: "rgb(var(--color-primary) / <alpha-value>)", kind: KindVariable},
		{name: "empty", in: "", wantErr: true},
		{name: "blank", in: "   ", wantErr: true},
		{name: "bad hex digit", in: "#53224g", wantErr: true},
		{name: "bad hex length", in: "#53224", wantErr: true},
		{name: "rgb out of range", in: "rgb(256, 0, 0)", wantErr: true},
		{name: "rgb too few", in: "rgb(1, 2)", wantErr: true},
		{name: "alpha out of range", in: "rgba(0, 0, 0, 2)", wantErr: true},
		{name: "unknown function", in: "lab(50% 40 59)", wantErr: true},
		{name: "unknown word", in: "primaryish", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidColor)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.kind, got.Kind)
			require.Equal(t, tt.hex, got.Hex())
			require.Equal(t, tt.in, got.Literal)
		})
	}
}

func TestColorResolved(t *testing.T) {
	hex, err := ParseColor("#532249")
	require.NoError(t, err)
	require.True(t, hex.Resolved())

	kw, err := ParseColor("inherit")
	require.NoError(t, err)
	require.False(t, kw.Resolved())
	require.Empty(t, kw.Hex())
}
