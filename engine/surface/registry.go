package surface

import (
	"fmt"

	"github.com/hubastard/marquee/engine/logging"
)

// Registry owns a screen's surfaces and their contexts.
type Registry struct {
	factory ContextFactory
	measure MeasureFunc

	byName map[string]*Surface
	order  []*Surface
}

func NewRegistry(factory ContextFactory, measure MeasureFunc) *Registry {
	return &Registry{
		factory: factory,
		measure: measure,
		byName:  make(map[string]*Surface),
	}
}

// Register adds a surface. Registering a known name returns the existing
// surface unchanged.
func (r *Registry) Register(spec Spec) (*Surface, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("register surface: empty name")
	}
	if s, ok := r.byName[spec.Name]; ok {
		return s, nil
	}
	b := spec.Bounds
	if b == (Rect{}) {
		b = Full
	}
	s := &Surface{
		name:     spec.Name,
		reactive: spec.ResizeReactive,
		bounds:   b,
		width:    spec.Width,
		height:   spec.Height,
	}
	r.byName[s.name] = s
	r.order = append(r.order, s)
	return s, nil
}

func (r *Registry) Lookup(name string) (*Surface, error) {
	s, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSurfaceNotFound, name)
	}
	return s, nil
}

// Context returns the surface's context, creating it with cfg on first use.
// cfg is ignored once the context exists.
func (r *Registry) Context(name string, cfg Config) (Context, error) {
	s, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	if s.ctx != nil {
		return s.ctx, nil
	}
	if r.factory == nil {
		return nil, fmt.Errorf("create context for %q: no context factory", name)
	}
	ctx, err := r.factory(s, cfg)
	if err != nil {
		return nil, fmt.Errorf("create context for %q: %w", name, err)
	}
	s.ctx = ctx
	s.cfg = cfg
	logging.Logger().Debug("context created",
		"surface", name,
		"antialiasing", cfg.Antialiasing,
		"filtering", string(cfg.Filtering))
	return ctx, nil
}

// ResizeReactive returns the resize-reactive surfaces in registration order.
func (r *Registry) ResizeReactive() []*Surface {
	var out []*Surface
	for _, s := range r.order {
		if s.reactive {
			out = append(out, s)
		}
	}
	return out
}

// Surfaces returns every surface in registration order.
func (r *Registry) Surfaces() []*Surface {
	out := make([]*Surface, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Len() int { return len(r.order) }

// Sync measures the surface and stores the displayed size if it differs
// from the last rendered one.
func (r *Registry) Sync(name string) (w, h int, changed bool, err error) {
	s, err := r.Lookup(name)
	if err != nil {
		return 0, 0, false, err
	}
	if r.measure == nil {
		return s.width, s.height, false, nil
	}
	w, h, err = r.measure(s)
	if err != nil {
		return s.width, s.height, false, fmt.Errorf("measure %q: %w", name, err)
	}
	if w == s.width && h == s.height {
		return w, h, false, nil
	}
	s.width, s.height = w, h
	return w, h, true, nil
}

// Clear releases every context. Surfaces stay registered; the next Context
// call creates a fresh one.
func (r *Registry) Clear() {
	for _, s := range r.order {
		if s.ctx != nil {
			s.ctx.Release()
			s.ctx = nil
			s.cfg = Config{}
		}
	}
}

// Reset clears contexts and forgets every surface.
func (r *Registry) Reset() {
	r.Clear()
	r.byName = make(map[string]*Surface)
	r.order = nil
}
