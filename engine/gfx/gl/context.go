// Package glbackend renders quad batches with OpenGL 3.3. Each surface gets
// a Context that draws into the surface's rectangle of the window.
package glbackend

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/hubastard/marquee/engine/assets"
	"github.com/hubastard/marquee/engine/colors"
	"github.com/hubastard/marquee/engine/gfx/renderer2d"
	"github.com/hubastard/marquee/engine/logging"
	"github.com/hubastard/marquee/engine/surface"
)

// EXT_texture_filter_anisotropic, not part of the core profile headers.
const (
	texMaxAnisotropy    = 0x84FE
	maxAnisotropyLevels = 0x84FF
)

var errReleased = errors.New("context released")

// Context draws quad batches into one surface. Scenes register textures
// with AddImage while being attached; SetupBuffers uploads them.
type Context struct {
	surface *surface.Surface
	cfg     surface.Config
	host    func() (int, int)
	present func()

	program  uint32
	uVP      int32
	uTex     int32
	uTexMode int32
	vao      uint32
	vbo      uint32
	ebo      uint32
	capVerts int
	capInds  int

	next     renderer2d.Texture
	images   map[string]renderer2d.Texture
	pending  map[renderer2d.Texture]*assets.Image
	textures map[renderer2d.Texture]uint32

	released bool
}

// NewFactory returns a surface.ContextFactory for the current GL context.
// host reports the framebuffer size; present is called after every draw so
// the window swaps at the end of the frame.
func NewFactory(host func() (int, int), present func()) surface.ContextFactory {
	return func(s *surface.Surface, cfg surface.Config) (surface.Context, error) {
		c := &Context{
			surface:  s,
			cfg:      cfg,
			host:     host,
			present:  present,
			next:     1,
			images:   make(map[string]renderer2d.Texture),
			pending:  make(map[renderer2d.Texture]*assets.Image),
			textures: make(map[renderer2d.Texture]uint32),
		}
		logging.Logger().Debug("gl context created", "surface", s.Name(),
			"antialiasing", cfg.Antialiasing, "filtering", cfg.Filtering)
		return c, nil
	}
}

func (c *Context) Config() surface.Config { return c.cfg }

// AddImage registers img under key and returns its texture handle. Adding
// the same key again returns the existing handle. Pixels are uploaded on
// the next SetupBuffers.
func (c *Context) AddImage(key string, img *assets.Image) renderer2d.Texture {
	if t, ok := c.images[key]; ok {
		return t
	}
	t := c.next
	c.next++
	c.images[key] = t
	c.pending[t] = img
	return t
}

// SetupBuffers compiles the program and creates the vertex arrays on first
// use, then uploads every texture added since the last call.
func (c *Context) SetupBuffers() error {
	if c.released {
		return errReleased
	}
	if c.program == 0 {
		if err := c.init(); err != nil {
			return err
		}
	}
	for t, img := range c.pending {
		id, err := c.upload(img)
		if err != nil {
			return fmt.Errorf("upload texture %d: %w", t, err)
		}
		c.textures[t] = id
		delete(c.pending, t)
	}
	return nil
}

func (c *Context) init() error {
	prog, err := makeProgram(vertexSource, fragmentSource)
	if err != nil {
		return err
	}
	c.program = prog
	c.uVP = gl.GetUniformLocation(prog, gl.Str("uVP\x00"))
	c.uTex = gl.GetUniformLocation(prog, gl.Str("uTex\x00"))
	c.uTexMode = gl.GetUniformLocation(prog, gl.Str("uTextured\x00"))

	gl.GenVertexArrays(1, &c.vao)
	gl.BindVertexArray(c.vao)
	gl.GenBuffers(1, &c.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, c.vbo)
	gl.GenBuffers(1, &c.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, c.ebo)

	// layout(location = 0) in vec2 aPos;
	// layout(location = 1) in vec4 aColor;
	// layout(location = 2) in vec2 aUV;
	const stride = renderer2d.VertexStride * 4 // bytes
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 4, gl.FLOAT, false, stride, 2*4)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 6*4)

	gl.BindVertexArray(0)
	return nil
}

func (c *Context) upload(img *assets.Image) (uint32, error) {
	if img == nil || img.Width == 0 || img.Height == 0 {
		return 0, fmt.Errorf("empty image")
	}
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(img.Width), int32(img.Height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	switch c.cfg.Filtering {
	case surface.FilteringTrilinear, surface.FilteringAnisotropic:
		gl.GenerateMipmap(gl.TEXTURE_2D)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
		if c.cfg.Filtering == surface.FilteringAnisotropic {
			var maxAniso float32
			gl.GetFloatv(maxAnisotropyLevels, &maxAniso)
			if maxAniso > 0 {
				gl.TexParameterf(gl.TEXTURE_2D, texMaxAnisotropy, min(maxAniso, 16))
			}
		}
	default:
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return id, nil
}

// Viewport returns the surface's pixel rectangle with a bottom-left origin.
func (c *Context) Viewport() (x, y, w, h int32) {
	fw, fh := c.host()
	px, py, pw, ph := c.surface.Bounds().Pixels(fw, fh)
	return int32(px), int32(fh - py - ph), int32(pw), int32(ph)
}

// Begin clears the surface.
func (c *Context) Begin(clear colors.Color) {
	if c.released {
		return
	}
	c.bindViewport()
	if c.cfg.Antialiasing {
		gl.Enable(gl.MULTISAMPLE)
	} else {
		gl.Disable(gl.MULTISAMPLE)
	}
	gl.ClearColor(clear[0], clear[1], clear[2], clear[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (c *Context) bindViewport() {
	x, y, w, h := c.Viewport()
	gl.Viewport(x, y, w, h)
	gl.Enable(gl.SCISSOR_TEST)
	gl.Scissor(x, y, w, h)
}

// Draw uploads the batch and issues one draw per call.
func (c *Context) Draw(b *renderer2d.Batch) error {
	if c.released {
		return errReleased
	}
	if c.program == 0 {
		return fmt.Errorf("draw on %q before SetupBuffers", c.surface.Name())
	}
	if b.Empty() {
		return nil
	}

	c.bindViewport()
	verts, inds := b.Vertices(), b.Indices()
	gl.BindVertexArray(c.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, c.vbo)
	if len(verts) > c.capVerts {
		c.capVerts = len(verts)
		gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.DYNAMIC_DRAW)
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(verts)*4, gl.Ptr(verts))
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, c.ebo)
	if len(inds) > c.capInds {
		c.capInds = len(inds)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(inds)*4, gl.Ptr(inds), gl.DYNAMIC_DRAW)
	} else {
		gl.BufferSubData(gl.ELEMENT_ARRAY_BUFFER, 0, len(inds)*4, gl.Ptr(inds))
	}

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.UseProgram(c.program)
	vp := b.VP()
	gl.UniformMatrix4fv(c.uVP, 1, false, &vp[0])
	gl.Uniform1i(c.uTex, 0)
	gl.ActiveTexture(gl.TEXTURE0)

	for _, call := range b.Calls() {
		id, ok := c.textures[call.Texture]
		if call.Texture != renderer2d.NoTexture && ok {
			gl.BindTexture(gl.TEXTURE_2D, id)
			gl.Uniform1i(c.uTexMode, 1)
		} else {
			gl.Uniform1i(c.uTexMode, 0)
		}
		gl.DrawElementsWithOffset(gl.TRIANGLES, int32(call.Count), gl.UNSIGNED_INT, uintptr(call.First*4))
	}

	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.BindVertexArray(0)
	gl.UseProgram(0)
	gl.Disable(gl.SCISSOR_TEST)
	if c.present != nil {
		c.present()
	}
	return nil
}

// Release deletes every GL object the context created.
func (c *Context) Release() {
	if c.released {
		return
	}
	c.released = true
	for _, id := range c.textures {
		gl.DeleteTextures(1, &id)
	}
	c.textures = nil
	c.pending = nil
	if c.ebo != 0 {
		gl.DeleteBuffers(1, &c.ebo)
	}
	if c.vbo != 0 {
		gl.DeleteBuffers(1, &c.vbo)
	}
	if c.vao != 0 {
		gl.DeleteVertexArrays(1, &c.vao)
	}
	if c.program != 0 {
		gl.DeleteProgram(c.program)
	}
	logging.Logger().Debug("gl context released", "surface", c.surface.Name())
}
