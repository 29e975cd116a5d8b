package core

import (
	"time"

	"github.com/hubastard/marquee/engine/colors"
)

// App defines the application hooks.
type App interface {
	OnStart(e *Engine) error     // called once after the window is up
	OnEvent(e *Engine, ev Event) // input/window events, after Input saw them
	OnShutdown(e *Engine)        // before exit
}

// Window abstraction.
type Window interface {
	PollEvents()
	// WaitEventsTimeout blocks until an event arrives, Wake is called or
	// timeout elapses.
	WaitEventsTimeout(timeout time.Duration)
	// Wake unblocks WaitEventsTimeout. Safe to call from any goroutine.
	Wake()
	SwapBuffers()
	ShouldClose() bool
	FramebufferSize() (int, int)
	SetTitle(title string)
	SetEventCallback(cb func(Event))
}

// Config for the engine run.
type Config struct {
	Title   string
	Width   int
	Height  int
	VSync   bool
	Samples int // multisample count, 0 disables
	// ClearColor fills the framebuffer before surfaces are drawn.
	ClearColor colors.Color
}
