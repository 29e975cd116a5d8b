package screen

import (
	"errors"
	"fmt"
	"time"

	"github.com/hubastard/marquee/engine/layout"
	"github.com/hubastard/marquee/engine/logging"
	"github.com/hubastard/marquee/engine/surface"
)

// CanvasScreen is a screen with drawable surfaces, the scenes bound to them
// and a render loop.
type CanvasScreen struct {
	*Base

	surfaces *surface.Registry
	bindings *BindingTable
	loop     *RenderLoop

	unsubscribe func()
}

// NewCanvasScreen creates a screen whose surfaces are declared by the
// document loaded from source.
func NewCanvasScreen(env Env, name, source string) *CanvasScreen {
	c := &CanvasScreen{
		Base:     newBase(env, name),
		surfaces: surface.NewRegistry(env.Factory, env.Measure),
	}
	c.bindings = NewBindingTable(c.surfaces, c.contextConfig, func() bool { return c.loop.Running() })
	c.loop = NewRenderLoop(env.Loop, c.bindings)

	c.onReady = append(c.onReady, c.discoverSurfaces)
	c.onHide = append(c.onHide, c.loop.Stop)
	c.onRemove = append(c.onRemove, c.teardown)
	c.begin(source)
	return c
}

func (c *CanvasScreen) contextConfig() surface.Config {
	if c.env.Settings == nil {
		return surface.Config{Filtering: surface.FilteringBilinear}
	}
	return c.env.Settings.ContextConfig()
}

func (c *CanvasScreen) discoverSurfaces(doc *layout.Document) error {
	var errs []error
	for _, spec := range doc.Surfaces {
		_, err := c.surfaces.Register(surface.Spec{
			Name:           c.SurfaceName(spec.ID),
			ResizeReactive: spec.Resizable,
			Bounds:         surface.Rect(spec.Bounds),
			Width:          spec.Width,
			Height:         spec.Height,
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	if c.env.Resizes != nil {
		c.unsubscribe = c.env.Resizes.Subscribe(func(w, h int) {
			if err := c.Resize(); err != nil {
				logging.Logger().Warn("resize failed", "screen", c.name, "err", err)
			}
		})
	}
	logging.Logger().Debug("surfaces discovered", "screen", c.name, "count", c.surfaces.Len())
	return errors.Join(errs...)
}

func (c *CanvasScreen) teardown() {
	c.loop.Stop()
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.surfaces.Reset()
	c.bindings.UnbindAll()
}

// SurfaceName returns the registry name of the surface declared as id.
func (c *CanvasScreen) SurfaceName(id string) string {
	return c.name + "_" + id
}

// Surface looks up a surface by its document id.
func (c *CanvasScreen) Surface(id string) (*surface.Surface, error) {
	if c.state == StateRemoved {
		return nil, fmt.Errorf("surface %q: %w", id, ErrInvalidState)
	}
	return c.surfaces.Lookup(c.SurfaceName(id))
}

// Context returns the rendering context of a surface, creating it with the
// current settings if needed.
func (c *CanvasScreen) Context(id string) (surface.Context, error) {
	if c.state == StateRemoved {
		return nil, fmt.Errorf("context %q: %w", id, ErrInvalidState)
	}
	return c.surfaces.Context(c.SurfaceName(id), c.contextConfig())
}

// Bindings exposes the screen's binding table.
func (c *CanvasScreen) Bindings() *BindingTable { return c.bindings }

// BindSceneToSurface makes scene render on the surface declared as id.
func (c *CanvasScreen) BindSceneToSurface(scene Scene, id string) error {
	return c.submit("bind scene", func() error {
		s, err := c.surfaces.Lookup(c.SurfaceName(id))
		if err != nil {
			return err
		}
		added, err := c.bindings.Bind(scene, s)
		if err != nil {
			return err
		}
		if added {
			logging.Logger().Debug("scene bound", "screen", c.name, "surface", s.Name())
		}
		return nil
	})
}

// Resize propagates new displayed sizes of resize-reactive surfaces to the
// scenes bound to them. Surfaces whose size is unchanged are skipped.
func (c *CanvasScreen) Resize() error {
	return c.submit("resize", func() error {
		var errs []error
		for _, s := range c.surfaces.ResizeReactive() {
			w, h, changed, err := c.surfaces.Sync(s.Name())
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if changed {
				c.resizeScenes(s, w, h)
			}
		}
		return errors.Join(errs...)
	})
}

// ResizeSurface measures the surface declared as id and passes its size to
// the bound scenes whether or not it changed. Screens call it when they set
// up a new scene.
func (c *CanvasScreen) ResizeSurface(id string) error {
	return c.submit("resize surface", func() error {
		s, err := c.surfaces.Lookup(c.SurfaceName(id))
		if err != nil {
			return err
		}
		w, h, _, err := c.surfaces.Sync(s.Name())
		if err != nil {
			return err
		}
		c.resizeScenes(s, w, h)
		return nil
	})
}

func (c *CanvasScreen) resizeScenes(s *surface.Surface, w, h int) {
	c.bindings.ForSurface(s, func(b Binding) {
		b.Scene.ResizeViewport(w, h)
	})
	logging.Logger().Debug("surface resized", "surface", s.Name(), "width", w, "height", h)
}

// Render draws every binding once outside the render loop.
func (c *CanvasScreen) Render() error {
	return c.submit("render", func() error {
		c.bindings.Render()
		return nil
	})
}

func (c *CanvasScreen) StartRenderLoop(interval time.Duration) error {
	return c.submit("start render loop", func() error {
		return c.loop.Start(interval)
	})
}

func (c *CanvasScreen) StopRenderLoop() error {
	return c.submit("stop render loop", func() error {
		c.loop.Stop()
		return nil
	})
}

// Rendering reports whether the render loop is running.
func (c *CanvasScreen) Rendering() bool { return c.loop.Running() }

// FPS returns the renders completed in the trailing second. It is not
// queued behind the structural load: before the screen is ready the render
// loop is stopped, so it fails with ErrInvalidState.
func (c *CanvasScreen) FPS() (int, error) {
	if c.state == StateRemoved {
		return 0, fmt.Errorf("fps %q: %w", c.name, ErrInvalidState)
	}
	return c.loop.FPS()
}

// OnFrame registers fn to run after every render loop tick.
func (c *CanvasScreen) OnFrame(fn func(fps int)) { c.loop.OnFrame(fn) }
