package theme

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a normalized sRGB color, 8 bits per channel. Every color in a
// loaded theme is already sRGB; conversion from other spaces happens once
// at load time and nothing past load carries a color space tag.
type Color struct {
	R, G, B, A uint8
}

// Hex renders the color as "#rrggbb" or "#rrggbbaa" when not fully opaque.
func (c Color) Hex() string {
	if c.A != 0xff {
		return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseColor parses "#rgb", "#rrggbb" and "#rrggbbaa" hex notations.
func ParseColor(s string) (Color, error) {
	if len(s) == 0 || s[0] != '#' {
		return Color{}, fmt.Errorf("color %q: want leading '#'", s)
	}
	hex := s[1:]
	var r, g, b, a uint8
	a = 0xff
	switch len(hex) {
	case 3:
		rn, err1 := nibble(hex[0])
		gn, err2 := nibble(hex[1])
		bn, err3 := nibble(hex[2])
		if err := firstErr(err1, err2, err3); err != nil {
			return Color{}, fmt.Errorf("color %q: %w", s, err)
		}
		r, g, b = rn<<4|rn, gn<<4|gn, bn<<4|bn
	case 8:
		v, err := hexByte(hex[6], hex[7])
		if err != nil {
			return Color{}, fmt.Errorf("color %q: %w", s, err)
		}
		a = v
		fallthrough
	case 6:
		var err1, err2, err3 error
		r, err1 = hexByte(hex[0], hex[1])
		g, err2 = hexByte(hex[2], hex[3])
		b, err3 = hexByte(hex[4], hex[5])
		if err := firstErr(err1, err2, err3); err != nil {
			return Color{}, fmt.Errorf("color %q: %w", s, err)
		}
	default:
		return Color{}, fmt.Errorf("color %q: bad length", s)
	}
	return Color{R: r, G: g, B: b, A: a}, nil
}

// FromLinear converts linear-RGB channels in [0,1] to an sRGB Color by
// applying the sRGB gamma curve. This is the only color-space conversion
// the engine performs, and only theme loaders call it.
func FromLinear(r, g, b float64) Color {
	c := colorful.LinearRgb(r, g, b).Clamped()
	cr, cg, cb := c.RGB255()
	return Color{R: cr, G: cg, B: cb, A: 0xff}
}

// Blend mixes two colors in sRGB space, t=0 giving c and t=1 giving other.
// Renderers use it to fade chrome like line-number gutters toward the
// background; resolution never blends.
func (c Color) Blend(other Color, t float64) Color {
	a := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	b := colorful.Color{R: float64(other.R) / 255, G: float64(other.G) / 255, B: float64(other.B) / 255}
	m := a.BlendRgb(b, t).Clamped()
	mr, mg, mb := m.RGB255()
	return Color{R: mr, G: mg, B: mb, A: c.A}
}

func nibble(c byte) (uint8, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	}
	return 0, fmt.Errorf("bad hex digit %q", c)
}

func hexByte(hi, lo byte) (uint8, error) {
	h, err1 := nibble(hi)
	l, err2 := nibble(lo)
	if err := firstErr(err1, err2); err != nil {
		return 0, err
	}
	return h<<4 | l, nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
