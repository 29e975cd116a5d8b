package text

import (
	"github.com/hubastard/marquee/engine/colors"
	"github.com/hubastard/marquee/engine/gfx/renderer2d"
)

// DrawText draws s with its top-left corner at (x,y). Positive Y goes
// downward (matching the 2D projection).
func DrawText(b *renderer2d.Batch, f *Font, tex renderer2d.Texture, x, y float32, s string, color colors.Color) {
	penX := x
	baseY := y + f.Ascent
	var prev rune = -1

	for _, r := range s {
		if r == '\n' {
			penX = x
			baseY += LineHeight(f)
			prev = -1
			continue
		}

		g, ok := f.Glyphs[r]
		if !ok {
			if sp, ok2 := f.Glyphs[' ']; ok2 {
				penX += sp.Advance
			}
			prev = r
			continue
		}

		if prev >= 0 {
			penX += f.Kerning[[2]rune{prev, r}]
		}

		if g.W > 0 && g.H > 0 {
			// top = baseline - BearingY
			left := penX + g.BearingX
			top := baseY - g.BearingY
			b.DrawTexturedQuadUV(
				left+float32(g.W)*0.5, top+float32(g.H)*0.5,
				float32(g.W), float32(g.H),
				tex, color, 0,
				g.U0, g.V0, g.U1, g.V1,
			)
		}

		penX += g.Advance
		prev = r
	}
}

// MeasureText returns the size of s drawn at size pixels.
func MeasureText(f *Font, s string, size float32) (width, height float32) {
	var lineW float32
	var prev rune = -1
	lineH := LineHeight(f)
	height = lineH

	for _, r := range s {
		if r == '\n' {
			width = max(width, lineW)
			lineW = 0
			height += lineH
			prev = -1
			continue
		}

		g, ok := f.Glyphs[r]
		if !ok {
			if sp, ok2 := f.Glyphs[' ']; ok2 {
				lineW += sp.Advance
			}
			prev = r
			continue
		}
		if prev >= 0 {
			lineW += f.Kerning[[2]rune{prev, r}]
		}
		lineW += g.Advance
		prev = r
	}

	width = max(width, lineW)
	scale := size / f.SizePx
	return width * scale, height * scale
}

func LineHeight(f *Font) float32 { return f.Ascent - f.Descent + f.LineGap }
