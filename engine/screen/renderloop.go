package screen

import (
	"fmt"
	"time"

	"github.com/hubastard/marquee/engine/logging"
	"github.com/hubastard/marquee/engine/profiler"
	"github.com/hubastard/marquee/engine/sched"
)

// fpsWindow is how far back render timestamps are kept.
const fpsWindow = time.Second

// RenderLoop renders a binding table at a fixed interval and counts the
// renders completed in the trailing second.
type RenderLoop struct {
	loop     *sched.Loop
	bindings *BindingTable

	task     *sched.Task
	interval time.Duration
	times    []time.Time

	listeners []func(fps int)
}

func NewRenderLoop(loop *sched.Loop, bindings *BindingTable) *RenderLoop {
	return &RenderLoop{loop: loop, bindings: bindings}
}

// Start sets up the buffers of every bound context, renders once right
// away and then every interval. A running loop is replaced.
func (r *RenderLoop) Start(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("start render loop: %w (got %v)", ErrInvalidInterval, interval)
	}
	if r.loop == nil {
		return fmt.Errorf("start render loop: no scheduler")
	}
	r.Stop()

	end := profiler.Start("screen.Prime")
	err := r.bindings.Prime()
	end()
	if err != nil {
		return fmt.Errorf("start render loop: %w", err)
	}

	r.interval = interval
	r.times = make([]time.Time, 0, int(fpsWindow/interval)+2)
	r.task = r.loop.Every(interval, r.tick)
	logging.Logger().Debug("render loop started", "interval", interval, "bindings", r.bindings.Len())
	r.tick()
	return nil
}

func (r *RenderLoop) tick() {
	end := profiler.Start("screen.Render")
	r.bindings.Render()
	end()

	now := r.loop.Now()
	r.times = append(r.times, now)
	for len(r.times) > 1 && now.Sub(r.times[0]) > fpsWindow {
		r.times = r.times[1:]
	}

	fps := len(r.times)
	for _, fn := range r.listeners {
		fn(fps)
		if !r.Running() {
			return
		}
	}
}

// Stop cancels the timer and discards the timestamps. Safe to call when
// stopped.
func (r *RenderLoop) Stop() {
	if r.task == nil {
		return
	}
	r.task.Stop()
	r.task = nil
	r.times = nil
	logging.Logger().Debug("render loop stopped")
}

func (r *RenderLoop) Running() bool { return r.task != nil }

func (r *RenderLoop) Interval() time.Duration { return r.interval }

// FPS returns the number of renders in the trailing second.
func (r *RenderLoop) FPS() (int, error) {
	if !r.Running() {
		return 0, fmt.Errorf("fps: render loop stopped: %w", ErrInvalidState)
	}
	return len(r.times), nil
}

// OnFrame registers fn to run after every render with the current FPS.
func (r *RenderLoop) OnFrame(fn func(fps int)) {
	r.listeners = append(r.listeners, fn)
}
