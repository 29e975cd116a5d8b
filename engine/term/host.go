package term

import (
	"context"
	"errors"

	"github.com/gdamore/tcell/v2"

	"github.com/hubastard/marquee/engine/core"
	"github.com/hubastard/marquee/engine/logging"
	"github.com/hubastard/marquee/engine/sched"
	"github.com/hubastard/marquee/engine/surface"
)

// Host drives a sched.Loop from terminal events. tcell events are polled on
// a separate goroutine and handled on the loop.
type Host struct {
	Screen  tcell.Screen
	Loop    *sched.Loop
	Resizes *core.ResizeNotifier

	// OnKey receives key events. Ctrl-C always ends Run.
	OnKey func(ev *tcell.EventKey)

	presenting bool
	cancel     context.CancelFunc
}

func NewHost(screen tcell.Screen, loop *sched.Loop) *Host {
	return &Host{Screen: screen, Loop: loop, Resizes: &core.ResizeNotifier{}}
}

// Factory creates terminal contexts that present through the host.
func (h *Host) Factory() surface.ContextFactory { return NewFactory(h.Screen, h.RequestPresent) }

func (h *Host) Measure() surface.MeasureFunc { return Measure(h.Screen) }

// RequestPresent schedules a screen.Show once the current loop pass ends.
func (h *Host) RequestPresent() {
	if h.presenting {
		return
	}
	h.presenting = true
	h.Loop.Post(func() {
		h.presenting = false
		h.Screen.Show()
	})
}

// Quit ends Run.
func (h *Host) Quit() {
	if h.cancel != nil {
		h.cancel()
	}
}

// Run handles events and scheduled work until ctx is done, Quit is called or
// Ctrl-C is pressed. The screen must already be initialized.
func (h *Host) Run(ctx context.Context) error {
	ctx, h.cancel = context.WithCancel(ctx)
	defer h.cancel()

	go func() {
		for {
			ev := h.Screen.PollEvent()
			if ev == nil {
				return
			}
			h.Loop.Post(func() { h.handle(ev) })
			if ctx.Err() != nil {
				return
			}
		}
	}()

	err := h.Loop.Run(ctx)
	logging.Logger().Info("terminal host exit")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (h *Host) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		w, hh := ev.Size()
		h.Screen.Sync()
		h.Resizes.Notify(w, hh)
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyCtrlC {
			h.Quit()
			return
		}
		if h.OnKey != nil {
			h.OnKey(ev)
		}
	}
}
