package screen

import (
	"errors"
	"fmt"

	"github.com/hubastard/marquee/engine/logging"
	"github.com/hubastard/marquee/engine/profiler"
	"github.com/hubastard/marquee/engine/surface"
)

// Binding pairs a scene with the surface it is drawn on.
type Binding struct {
	Scene   Scene
	Surface *surface.Surface
}

// BindingTable holds a screen's scene/surface pairs in bind order, which is
// also draw order.
type BindingTable struct {
	surfaces *surface.Registry
	config   func() surface.Config
	running  func() bool
	list     []Binding
}

// NewBindingTable creates a table whose contexts come from surfaces. config
// is read when a context has to be created; running reports whether the
// owning screen's render loop is active.
func NewBindingTable(surfaces *surface.Registry, config func() surface.Config, running func() bool) *BindingTable {
	return &BindingTable{surfaces: surfaces, config: config, running: running}
}

// Bind attaches the scene to the surface's context and adds the pair unless
// it is already present. A scene that fails to attach is not added. While
// the render loop runs, the context buffers are set up right away so the
// next tick draws the new binding. It reports whether a new binding was
// added.
func (t *BindingTable) Bind(scene Scene, s *surface.Surface) (bool, error) {
	if scene == nil || s == nil {
		return false, fmt.Errorf("bind: nil scene or surface")
	}
	ctx, err := t.context(s)
	if err != nil {
		return false, err
	}
	if err := scene.AddToContext(ctx); err != nil {
		return false, fmt.Errorf("attach scene to %q: %w", s.Name(), err)
	}
	added := !t.contains(scene, s)
	if added {
		t.list = append(t.list, Binding{Scene: scene, Surface: s})
	}
	if t.running != nil && t.running() {
		end := profiler.Start("screen.SetupBuffers")
		err := ctx.SetupBuffers()
		end()
		if err != nil {
			return added, fmt.Errorf("set up buffers for %q: %w", s.Name(), err)
		}
	}
	return added, nil
}

func (t *BindingTable) contains(scene Scene, s *surface.Surface) bool {
	for _, b := range t.list {
		if b.Scene == scene && b.Surface == s {
			return true
		}
	}
	return false
}

func (t *BindingTable) context(s *surface.Surface) (surface.Context, error) {
	var cfg surface.Config
	if t.config != nil {
		cfg = t.config()
	}
	return t.surfaces.Context(s.Name(), cfg)
}

// UnbindAll forgets every binding. Scenes are not touched.
func (t *BindingTable) UnbindAll() { t.list = nil }

func (t *BindingTable) Len() int { return len(t.list) }

// Bindings returns a copy of the table in bind order.
func (t *BindingTable) Bindings() []Binding {
	out := make([]Binding, len(t.list))
	copy(out, t.list)
	return out
}

// ForEach calls fn for every binding in bind order.
func (t *BindingTable) ForEach(fn func(Binding)) {
	for _, b := range t.list {
		fn(b)
	}
}

// ForSurface calls fn for the bindings drawn on s.
func (t *BindingTable) ForSurface(s *surface.Surface, fn func(Binding)) {
	for _, b := range t.list {
		if b.Surface == s {
			fn(b)
		}
	}
}

// Prime sets up the buffers of every bound surface's context once.
func (t *BindingTable) Prime() error {
	var errs []error
	seen := make(map[*surface.Surface]struct{}, len(t.list))
	for _, b := range t.list {
		if _, ok := seen[b.Surface]; ok {
			continue
		}
		seen[b.Surface] = struct{}{}
		ctx, err := t.context(b.Surface)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := ctx.SetupBuffers(); err != nil {
			errs = append(errs, fmt.Errorf("set up buffers for %q: %w", b.Surface.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Render cleans up and renders every binding in bind order. A failing
// scene is logged and does not stop the others.
func (t *BindingTable) Render() {
	list := t.list
	for _, b := range list {
		ctx, err := t.context(b.Surface)
		if err != nil {
			logging.Logger().Warn("no context to render into", "surface", b.Surface.Name(), "err", err)
			continue
		}
		b.Scene.CleanUp()
		if err := b.Scene.Render(ctx); err != nil {
			logging.Logger().Warn("scene render failed", "surface", b.Surface.Name(), "err", err)
		}
	}
}
