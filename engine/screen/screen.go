// Package screen implements the lifecycle of application screens: loading
// their structure, showing, hiding and superimposing them, and driving the
// render loop of screens that draw scenes onto surfaces.
//
// All methods must be called from the goroutine that drives the screen's
// sched.Loop. Operations requested before a screen's structure has loaded
// are queued and run, in order, once it has.
package screen

import (
	"errors"
	"time"

	"github.com/hubastard/marquee/engine/colors"
	"github.com/hubastard/marquee/engine/layout"
	"github.com/hubastard/marquee/engine/sched"
	"github.com/hubastard/marquee/engine/surface"
)

var (
	ErrInvalidState    = errors.New("invalid screen state")
	ErrStructuralLoad  = errors.New("structural load failed")
	ErrInvalidInterval = errors.New("render interval must be positive")
	ErrDuplicateScreen = errors.New("screen already registered")
	ErrUnknownScreen   = errors.New("unknown screen")
	ErrNoOverlay       = errors.New("no superimposed screen")
)

// Scene is renderable content owned by domain code. The engine only
// references scenes and compares them by identity, so implementations
// should be pointer types.
type Scene interface {
	// CleanUp drops per-frame state before the next Render.
	CleanUp()
	Render(ctx surface.Context) error
	ResizeViewport(width, height int)
	// AddToContext attaches the scene's data to ctx. Attaching twice to the
	// same context must not duplicate anything.
	AddToContext(ctx surface.Context) error
}

// Screen is the capability set every screen has.
type Screen interface {
	Name() string
	State() State
	Show() error
	Hide() error
	Superimpose(color colors.Color, opacity float32) error
	IsSuperimposed() bool
	Remove() error
}

// Renderer is a screen that owns surfaces and a render loop.
type Renderer interface {
	Screen
	Resize() error
	BindSceneToSurface(scene Scene, surfaceID string) error
	StartRenderLoop(interval time.Duration) error
	StopRenderLoop() error
	FPS() (int, error)
}

// ContextConfigSource supplies the configuration new rendering contexts are
// created with. It is read at creation time only.
type ContextConfigSource interface {
	ContextConfig() surface.Config
}

// ResizeSource notifies subscribers when the host area changes size.
type ResizeSource interface {
	Subscribe(fn func(w, h int)) (cancel func())
}

// Env carries the collaborators a screen is built with.
type Env struct {
	Loop     *sched.Loop
	Loader   layout.Loader
	Settings ContextConfigSource
	Factory  surface.ContextFactory
	Measure  surface.MeasureFunc
	Resizes  ResizeSource
}

type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateReady
	StateRemoved
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateRemoved:
		return "removed"
	default:
		return "unknown"
	}
}
