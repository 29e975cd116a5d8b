// Package term hosts screens in a terminal through tcell. Surfaces are cell
// rectangles of the terminal; contexts rasterize quad batches into them.
package term

import (
	"errors"

	"github.com/gdamore/tcell/v2"

	"github.com/hubastard/marquee/engine/assets"
	"github.com/hubastard/marquee/engine/colors"
	"github.com/hubastard/marquee/engine/gfx/renderer2d"
	"github.com/hubastard/marquee/engine/logging"
	"github.com/hubastard/marquee/engine/surface"
)

const halfBlock = '▀'

var errReleased = errors.New("context released")

// Context rasterizes batches into a surface's cells. With antialiasing on,
// every cell holds two pixels stacked vertically, drawn as a half block.
type Context struct {
	screen  tcell.Screen
	surface *surface.Surface
	cfg     surface.Config
	present func()

	// pixel buffer for the surface rectangle
	x0, y0 int
	w, h   int
	pix    []colors.Color

	next     renderer2d.Texture
	images   map[string]renderer2d.Texture
	textures map[renderer2d.Texture]*assets.Image

	setups   int
	released bool
}

// NewFactory returns a surface.ContextFactory drawing on screen. present is
// called after every draw.
func NewFactory(screen tcell.Screen, present func()) surface.ContextFactory {
	return func(s *surface.Surface, cfg surface.Config) (surface.Context, error) {
		logging.Logger().Debug("term context created", "surface", s.Name(), "antialiasing", cfg.Antialiasing)
		return &Context{
			screen:   screen,
			surface:  s,
			cfg:      cfg,
			present:  present,
			next:     1,
			images:   make(map[string]renderer2d.Texture),
			textures: make(map[renderer2d.Texture]*assets.Image),
		}, nil
	}
}

// Measure sizes surfaces in cells of screen.
func Measure(screen tcell.Screen) surface.MeasureFunc {
	return surface.HostMeasure(screen.Size)
}

func (c *Context) Config() surface.Config { return c.cfg }

func (c *Context) AddImage(key string, img *assets.Image) renderer2d.Texture {
	if t, ok := c.images[key]; ok {
		return t
	}
	t := c.next
	c.next++
	c.images[key] = t
	c.textures[t] = img
	return t
}

// SetupBuffers sizes the pixel buffer to the surface's current cell
// rectangle.
func (c *Context) SetupBuffers() error {
	if c.released {
		return errReleased
	}
	c.setups++
	c.layout()
	return nil
}

func (c *Context) Setups() int { return c.setups }

func (c *Context) rows() int {
	if c.cfg.Antialiasing {
		return c.h * 2
	}
	return c.h
}

func (c *Context) layout() {
	sw, sh := c.screen.Size()
	x0, y0, w, h := c.surface.Bounds().Pixels(sw, sh)
	if x0 == c.x0 && y0 == c.y0 && w == c.w && h == c.h && c.pix != nil {
		return
	}
	c.x0, c.y0, c.w, c.h = x0, y0, max(w, 0), max(h, 0)
	c.pix = make([]colors.Color, c.w*c.rows())
}

// Begin fills the surface with clear.
func (c *Context) Begin(clear colors.Color) {
	if c.released {
		return
	}
	c.layout()
	for i := range c.pix {
		c.pix[i] = clear
	}
}

// Draw rasterizes b over the pixel buffer and writes the surface's cells.
func (c *Context) Draw(b *renderer2d.Batch) error {
	if c.released {
		return errReleased
	}
	c.layout()
	inds := b.Indices()
	for _, call := range b.Calls() {
		tex := c.textures[call.Texture]
		for i := call.First; i+2 < call.First+call.Count; i += 3 {
			c.triangle(b, tex, inds[i], inds[i+1], inds[i+2])
		}
	}
	c.flush()
	if c.present != nil {
		c.present()
	}
	return nil
}

type point struct{ x, y float32 }

func (c *Context) project(vp [16]float32, x, y float32) point {
	nx, ny := renderer2d.Transform(vp, x, y)
	return point{
		x: (nx + 1) * 0.5 * float32(c.w),
		y: (1 - ny) * 0.5 * float32(c.rows()),
	}
}

func edge(a, b, p point) float32 {
	return (b.x-a.x)*(p.y-a.y) - (b.y-a.y)*(p.x-a.x)
}

func (c *Context) triangle(b *renderer2d.Batch, tex *assets.Image, i0, i1, i2 uint32) {
	vp := b.VP()
	v := [3][]float32{b.Vertex(int(i0)), b.Vertex(int(i1)), b.Vertex(int(i2))}
	p := [3]point{
		c.project(vp, v[0][0], v[0][1]),
		c.project(vp, v[1][0], v[1][1]),
		c.project(vp, v[2][0], v[2][1]),
	}
	area := edge(p[0], p[1], p[2])
	if area == 0 {
		return
	}

	rows := c.rows()
	minX := max(int(min(p[0].x, p[1].x, p[2].x)), 0)
	maxX := min(int(max(p[0].x, p[1].x, p[2].x))+1, c.w)
	minY := max(int(min(p[0].y, p[1].y, p[2].y)), 0)
	maxY := min(int(max(p[0].y, p[1].y, p[2].y))+1, rows)

	for y := minY; y < maxY; y++ {
		for x := minX; x < maxX; x++ {
			q := point{float32(x) + 0.5, float32(y) + 0.5}
			w0 := edge(p[1], p[2], q) / area
			w1 := edge(p[2], p[0], q) / area
			w2 := edge(p[0], p[1], q) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			var col colors.Color
			for k := 0; k < 4; k++ {
				col[k] = w0*v[0][2+k] + w1*v[1][2+k] + w2*v[2][2+k]
			}
			if tex != nil {
				u := w0*v[0][6] + w1*v[1][6] + w2*v[2][6]
				t := w0*v[0][7] + w1*v[1][7] + w2*v[2][7]
				col[3] *= float32(tex.AlphaAt(u, t)) / 255
			}
			if col[3] <= 0 {
				continue
			}
			idx := y*c.w + x
			c.pix[idx] = col.Over(c.pix[idx])
		}
	}
}

func style(fg, bg colors.Color) tcell.Style {
	return tcell.StyleDefault.Foreground(tcellColor(fg)).Background(tcellColor(bg))
}

func tcellColor(c colors.Color) tcell.Color {
	r, g, b := c.RGB8()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func (c *Context) cell(x, y int) (top, bottom colors.Color) {
	if c.cfg.Antialiasing {
		return c.pix[2*y*c.w+x], c.pix[(2*y+1)*c.w+x]
	}
	p := c.pix[y*c.w+x]
	return p, p
}

func (c *Context) flush() {
	for y := 0; y < c.h; y++ {
		for x := 0; x < c.w; x++ {
			top, bottom := c.cell(x, y)
			if c.cfg.Antialiasing {
				c.screen.SetContent(c.x0+x, c.y0+y, halfBlock, nil, style(top, bottom))
			} else {
				c.screen.SetContent(c.x0+x, c.y0+y, ' ', nil, style(top, top))
			}
		}
	}
}

// Print writes s at cell (x, y) of the surface over the current pixels.
// Text past the surface's right edge is cut.
func (c *Context) Print(x, y int, s string, fg colors.Color) {
	if c.released || y < 0 || y >= c.h {
		return
	}
	c.layout()
	for _, r := range s {
		if x >= c.w {
			break
		}
		if x >= 0 {
			_, bottom := c.cell(x, y)
			c.screen.SetContent(c.x0+x, c.y0+y, r, nil, style(fg, bottom))
		}
		x++
	}
	if c.present != nil {
		c.present()
	}
}

// Size returns the surface's size in cells.
func (c *Context) Size() (w, h int) {
	c.layout()
	return c.w, c.h
}

func (c *Context) Release() {
	if c.released {
		return
	}
	c.released = true
	c.pix = nil
	c.textures = nil
	logging.Logger().Debug("term context released", "surface", c.surface.Name())
}
