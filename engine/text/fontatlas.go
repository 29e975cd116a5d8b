// Package text builds glyph atlases from OpenType fonts and lays strings
// out as textured quads.
package text

import (
	"fmt"
	"image"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/hubastard/marquee/engine/assets"
)

type Glyph struct {
	Rune     rune
	Advance  float32 // pixels
	BearingX float32 // left bearing in pixels
	BearingY float32 // top bearing in pixels (distance from baseline to glyph top)
	W, H     int     // glyph bitmap size
	U0, V0   float32 // UVs in atlas
	U1, V1   float32
}

// Font is a rasterized glyph atlas. The atlas image is white glyphs with
// alpha coverage; hosts upload it as a texture.
type Font struct {
	SizePx                   float32
	Ascent, Descent, LineGap float32
	Glyphs                   map[rune]Glyph
	Kerning                  map[[2]rune]float32
	Atlas                    *assets.Image
}

// LoadTTF reads an OpenType file and rasterizes it at sizePx.
func LoadTTF(path string, sizePx float32) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	return Parse(data, sizePx)
}

// Default rasterizes the Go regular font.
func Default(sizePx float32) (*Font, error) {
	return Parse(goregular.TTF, sizePx)
}

func Parse(ttf []byte, sizePx float32) (*Font, error) {
	ft, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size: float64(sizePx), DPI: 72, Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	defer face.Close()
	return build(face, sizePx)
}

type measured struct {
	r      rune
	w, h   int
	adv    float32
	bx, by float32
}

// Latin-1 printable range. Expand later as needed.
func atlasRunes() []rune {
	var runes []rune
	for r := rune(32); r <= rune(255); r++ {
		if r >= 127 && r < 160 {
			continue
		}
		runes = append(runes, r)
	}
	return runes
}

func build(face font.Face, sizePx float32) (*Font, error) {
	// Metrics in pixels
	m := face.Metrics()
	ascent := float32(m.Ascent.Round())
	descent := float32(-m.Descent.Round())
	lineGap := float32(m.Height.Round()) - ascent + descent

	var glyphs []measured
	for _, rr := range atlasRunes() {
		br, adv, ok := face.GlyphBounds(rr)
		if !ok {
			continue
		}
		glyphs = append(glyphs, measured{
			r: rr,
			w: (br.Max.X - br.Min.X).Ceil(), h: (br.Max.Y - br.Min.Y).Ceil(),
			adv: float32(adv.Round()),
			bx:  float32(br.Min.X.Floor()),
			by:  float32(-br.Min.Y.Floor()), // distance from baseline to top
		})
	}

	size, pos, err := pack(glyphs)
	if err != nil {
		return nil, err
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	drawer := &font.Drawer{Dst: dst, Src: image.White, Face: face}

	out := make(map[rune]Glyph, len(glyphs))
	for _, g := range glyphs {
		gl := Glyph{Rune: g.r, Advance: g.adv, BearingX: g.bx, BearingY: g.by, W: g.w, H: g.h}
		if p, ok := pos[g.r]; ok {
			// Drawer expects a dot at the baseline; shift left by bearingX.
			drawer.Dot = fixed.P(p.X-int(g.bx), p.Y+int(g.by))
			drawer.DrawString(string(g.r))
			gl.U0 = float32(p.X) / float32(size)
			gl.V0 = float32(p.Y) / float32(size)
			gl.U1 = float32(p.X+g.w) / float32(size)
			gl.V1 = float32(p.Y+g.h) / float32(size)
		}
		out[g.r] = gl
	}

	kerning := make(map[[2]rune]float32)
	for _, a := range glyphs {
		for _, b := range glyphs {
			if dx := face.Kern(a.r, b.r); dx != 0 {
				kerning[[2]rune{a.r, b.r}] = float32(dx.Round())
			}
		}
	}

	return &Font{
		SizePx: sizePx,
		Ascent: ascent, Descent: descent, LineGap: lineGap,
		Glyphs:  out,
		Kerning: kerning,
		Atlas:   assets.FromImage(dst),
	}, nil
}

// pack places glyphs on shelves, starting with a 256^2 atlas and doubling
// until everything fits.
func pack(glyphs []measured) (int, map[rune]image.Point, error) {
	const padding = 2
	for size := 256; size <= 4096; size *= 2 {
		pos := make(map[rune]image.Point, len(glyphs))
		x, y, rowH := padding, padding, 0
		fits := true
		for _, g := range glyphs {
			if g.w == 0 || g.h == 0 {
				continue
			}
			if x+g.w+padding > size {
				x = padding
				y += rowH + padding
				rowH = 0
			}
			if g.w+padding*2 > size || y+g.h+padding > size {
				fits = false
				break
			}
			pos[g.r] = image.Pt(x, y)
			x += g.w + padding
			rowH = max(rowH, g.h)
		}
		if fits {
			return size, pos, nil
		}
	}
	return 0, nil, fmt.Errorf("font atlas too large (>%d)", 4096)
}
