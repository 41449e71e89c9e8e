package graphics

import (
	"fmt"
	"math"
	"strings"
)

const (
	fillAlpha         = 0.30
	altitudeFillAlpha = 0.27
	strokeAlpha       = 0.95
	// SubAreaAlphaScale dims sub-areas relative to top-level areas.
	SubAreaAlphaScale = 0.7
)

type rgb struct{ r, g, b uint8 }

var palette = map[int]rgb{
	1:  {0x00, 0x00, 0x00}, // authorized
	2:  {0xFF, 0x00, 0x00}, // restricted
	3:  {0xFF, 0x8C, 0x00}, // enhanced warning
	4:  {0xFF, 0xD7, 0x00}, // warning
	6:  {0x80, 0x80, 0x80}, // altitude limit
	7:  {0x00, 0xBC, 0xD4}, // regulation
	8:  {0x2E, 0x7D, 0x32}, // suitable
	10: {0x8B, 0xC3, 0x4A}, // scenic
}

func paletteColor(level int) rgb {
	if c, ok := palette[level]; ok {
		return c
	}
	return palette[2]
}

// Style is the resolved stroke/fill pair for one shape.
type Style struct {
	Stroke string
	Fill   string
}

// StyleFor resolves colors for a level. override, when it parses as a hex
// color, replaces the palette RGB; alphas always follow the level policy.
func StyleFor(level int, override string, alphaScale float64) Style {
	c := paletteColor(level)
	if oc, ok := parseHexColor(override); ok {
		c = oc
	}
	fa := fillAlpha
	if level == 6 {
		fa = altitudeFillAlpha
	}
	return Style{
		Stroke: c.hex(strokeAlpha),
		Fill:   c.hex(fa * alphaScale),
	}
}

// hex encodes #RRGGBBAA.
func (c rgb) hex(alpha float64) string {
	if math.IsNaN(alpha) {
		alpha = 0
	}
	a := math.Round(math.Max(0, math.Min(1, alpha)) * 255)
	return fmt.Sprintf("#%02X%02X%02X%02X", c.r, c.g, c.b, uint8(a))
}

// parseHexColor accepts #RGB, #RRGGBB and #RRGGBBAA (alpha is dropped).
func parseHexColor(s string) (rgb, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	case 8:
		s = s[:6]
	default:
		return rgb{}, false
	}
	var v [3]uint8
	for i := range v {
		hi, ok1 := hexNibble(s[2*i])
		lo, ok2 := hexNibble(s[2*i+1])
		if !ok1 || !ok2 {
			return rgb{}, false
		}
		v[i] = hi<<4 | lo
	}
	return rgb{v[0], v[1], v[2]}, true
}

func hexNibble(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}
