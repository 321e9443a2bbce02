// Package render presents relocated annotations for human review: a
// highlighted HTML view of the document and a plain-text summary table.
package render

import (
	"fmt"
	"math"
	"slices"
)

// FallbackColor is used for entity types missing from a palette.
const FallbackColor = "#fff2cc"

const (
	paletteSaturation = 0.65
	paletteLightness  = 0.75
)

// Palette maps entity types to background colours.
type Palette map[string]string

// NewPalette assigns every distinct type a colour with evenly spaced hues.
// Types are sorted first, so the same set of types always gets the same
// colours.
func NewPalette(types []string) Palette {
	sorted := slices.Clone(types)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	p := make(Palette, len(sorted))
	for i, t := range sorted {
		hue := 360 * float64(i) / float64(len(sorted))
		p[t] = hslToHex(hue, paletteSaturation, paletteLightness)
	}
	return p
}

// Color returns the colour for entityType, or FallbackColor.
func (p Palette) Color(entityType string) string {
	if c, ok := p[entityType]; ok {
		return c
	}
	return FallbackColor
}

// hslToHex converts a colour with hue in degrees and saturation and
// lightness in [0, 1] to #rrggbb.
func hslToHex(h, s, l float64) string {
	c := (1 - math.Abs(2*l-1)) * s
	hp := math.Mod(h, 360) / 60
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))

	var r, g, b float64
	switch {
	case hp < 1:
		r, g, b = c, x, 0
	case hp < 2:
		r, g, b = x, c, 0
	case hp < 3:
		r, g, b = 0, c, x
	case hp < 4:
		r, g, b = 0, x, c
	case hp < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	m := l - c/2
	to8 := func(v float64) int {
		return int(math.Round((v + m) * 255))
	}
	return fmt.Sprintf("#%02x%02x%02x", to8(r), to8(g), to8(b))
}
