package ebitenview

import (
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// fallbackColor is used for values parseColor does not understand.
var fallbackColor = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}

// parseColor understands #rgb, #rgba, #rrggbb, #rrggbbaa and the CSS named
// colors. ok is false for anything else.
func parseColor(s string) (c color.RGBA, ok bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "transparent" {
		return color.RGBA{}, true
	}
	if !strings.HasPrefix(s, "#") {
		c, ok = colornames.Map[s]
		return c, ok
	}
	hex := s[1:]
	switch len(hex) {
	case 3, 4:
		var b strings.Builder
		for _, r := range hex {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		hex = b.String()
	case 6, 8:
	default:
		return c, false
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return c, false
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, true
}

// fillColor returns the premultiplied fill of a leaf as float channels ready
// for ebiten vertices.
func fillColor(background string, opacity *float64) (r, g, b, a float32) {
	c, ok := parseColor(background)
	if !ok {
		c = fallbackColor
	}
	alpha := float32(c.A) / 255
	if opacity != nil {
		alpha *= float32(*opacity)
	}
	return float32(c.R) / 255 * alpha, float32(c.G) / 255 * alpha, float32(c.B) / 255 * alpha, alpha
}
