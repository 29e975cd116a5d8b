// Package surface tracks drawable surfaces and the rendering context each
// one lazily owns.
package surface

import "errors"

var ErrSurfaceNotFound = errors.New("surface not found")

// Context is the handle scenes render through. Implementations are
// host-specific (GL, terminal).
type Context interface {
	// SetupBuffers (re)uploads whatever the attached scenes need to draw.
	SetupBuffers() error
	// Release frees the context's resources. The context is unusable after.
	Release()
}

// ContextFactory creates the context for s. A registry calls it at most
// once per surface until Clear.
type ContextFactory func(s *Surface, cfg Config) (Context, error)

// MeasureFunc reports the size at which s is currently displayed.
type MeasureFunc func(s *Surface) (w, h int, err error)

// Rect is a fractional rectangle of the host area: x, y, w, h in [0,1].
type Rect [4]float32

// Full covers the whole host area.
var Full = Rect{0, 0, 1, 1}

// Spec describes a surface to register.
type Spec struct {
	Name           string
	ResizeReactive bool
	Bounds         Rect
	Width, Height  int
}

type Surface struct {
	name     string
	reactive bool
	bounds   Rect
	width    int
	height   int

	ctx Context
	cfg Config
}

func (s *Surface) Name() string { return s.name }

// ResizeReactive reports whether the surface follows host resizes.
func (s *Surface) ResizeReactive() bool { return s.reactive }

func (s *Surface) Bounds() Rect { return s.bounds }

// Size is the last rendered size.
func (s *Surface) Size() (w, h int) { return s.width, s.height }

// Config returns the configuration the current context was created with.
func (s *Surface) Config() Config { return s.cfg }

// HasContext reports whether a context has been created.
func (s *Surface) HasContext() bool { return s.ctx != nil }
