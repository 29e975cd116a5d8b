// Package colors holds RGBA colors with float components in [0,1].
package colors

type Color [4]float32

var (
	White       = Color{1, 1, 1, 1}
	Black       = Color{0, 0, 0, 1}
	Red         = Color{1, 0, 0, 1}
	Green       = Color{0, 1, 0, 1}
	Blue        = Color{0, 0, 1, 1}
	Yellow      = Color{1, 1, 0, 1}
	Gray        = Color{0.5, 0.5, 0.5, 1}
	DarkGray    = Color{0.08, 0.10, 0.12, 1}
	Transparent = Color{}
)

// RGB8 builds an opaque color from 0-255 components.
func RGB8(r, g, b uint8) Color {
	return Color{float32(r) / 255, float32(g) / 255, float32(b) / 255, 1}
}

func (c Color) WithAlpha(a float32) Color {
	c[3] = clamp01(a)
	return c
}

func (c Color) R() float32 { return c[0] }
func (c Color) G() float32 { return c[1] }
func (c Color) B() float32 { return c[2] }
func (c Color) A() float32 { return c[3] }

// Over composites c on top of dst (straight alpha).
func (c Color) Over(dst Color) Color {
	a := c[3] + dst[3]*(1-c[3])
	if a == 0 {
		return Transparent
	}
	var out Color
	for i := 0; i < 3; i++ {
		out[i] = (c[i]*c[3] + dst[i]*dst[3]*(1-c[3])) / a
	}
	out[3] = a
	return out
}

// RGB8 returns the 0-255 components, alpha dropped.
func (c Color) RGB8() (r, g, b uint8) {
	return to8(c[0]), to8(c[1]), to8(c[2])
}

func to8(v float32) uint8 { return uint8(clamp01(v)*255 + 0.5) }

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
