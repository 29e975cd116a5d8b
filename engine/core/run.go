package core

import (
	"context"
	"runtime"
	"time"

	"github.com/hubastard/marquee/engine/logging"
	"github.com/hubastard/marquee/engine/profiler"
	"github.com/hubastard/marquee/engine/sched"
)

// maxWait caps how long a frame blocks on the window when no task is due.
const maxWait = 250 * time.Millisecond

// Engine exposes core services to the App.
type Engine struct {
	Window  Window
	Loop    *sched.Loop
	Input   *Input
	Resizes *ResizeNotifier

	start   time.Time
	present bool
	quit    bool
	app     App
}

// NewEngine binds a window to a loop. Window events update Input, resize
// events reach Resizes, and everything is then passed to the app.
func NewEngine(win Window, loop *sched.Loop) *Engine {
	e := &Engine{
		Window:  win,
		Loop:    loop,
		Input:   NewInput(),
		Resizes: &ResizeNotifier{},
		start:   loop.Now(),
	}
	win.SetEventCallback(e.dispatch)
	return e
}

func (e *Engine) Uptime() time.Duration { return e.Loop.Now().Sub(e.start) }

// RequestPresent asks for a buffer swap at the end of the current frame.
// Render loop ticks call it after drawing.
func (e *Engine) RequestPresent() { e.present = true }

// Quit ends Run after the current frame.
func (e *Engine) Quit() { e.quit = true }

func (e *Engine) Done() bool { return e.quit || e.Window.ShouldClose() }

func (e *Engine) dispatch(ev Event) {
	e.Input.Handle(ev)
	switch ev := ev.(type) {
	case EventResize:
		if ev.W > 0 && ev.H > 0 {
			e.Resizes.Notify(ev.W, ev.H)
		}
	case EventCloseRequested:
		e.quit = true
	}
	if e.app != nil {
		e.app.OnEvent(e, ev)
	}
}

// Frame waits for window events until the next task is due, runs whatever
// the loop has pending and presents if something was drawn.
func (e *Engine) Frame() {
	wait := maxWait
	if next, ok := e.Loop.Next(); ok {
		wait = next.Sub(e.Loop.Now())
	}
	if wait <= 0 {
		e.Window.PollEvents()
	} else {
		e.Window.WaitEventsTimeout(min(wait, maxWait))
	}

	end := profiler.Start("core.Frame")
	e.Loop.RunPending()
	end()

	if e.present {
		e.present = false
		e.Window.SwapBuffers()
	}
}

// Run wires the platform window to a loop and executes the main loop.
func Run(app App, cfg Config, newWindow func(Config) (Window, error)) error {
	// Graphics contexts require the main OS thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	win, err := newWindow(cfg)
	if err != nil {
		return err
	}
	e := NewEngine(win, sched.New(sched.SystemClock{}))
	return e.Run(app)
}

// Run drives frames until the window closes or Quit is called.
func (e *Engine) Run(app App) error {
	e.app = app
	if err := app.OnStart(e); err != nil {
		return err
	}

	// Posted work must interrupt a blocking wait.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-e.Loop.Wake():
				e.Window.Wake()
			}
		}
	}()

	for !e.Done() {
		e.Frame()
	}

	app.OnShutdown(e)
	logging.Logger().Info("engine exit", "uptime", e.Uptime().Round(time.Millisecond))
	return nil
}
