package core

import (
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hubastard/marquee/engine/sched"
)

// fakeWindow advances a manual clock instead of blocking.
type fakeWindow struct {
	clock   *sched.ManualClock
	cb      func(Event)
	waits   []time.Duration
	polls   int
	swaps   int
	queued  []Event
	closed  bool
	wakes   atomic.Int32
	w, h    int
	titleOf string
}

func (f *fakeWindow) deliver() {
	evs := f.queued
	f.queued = nil
	for _, ev := range evs {
		f.cb(ev)
	}
}

func (f *fakeWindow) PollEvents() { f.polls++; f.deliver() }
func (f *fakeWindow) WaitEventsTimeout(d time.Duration) {
	f.waits = append(f.waits, d)
	f.clock.Advance(d)
	f.deliver()
}
func (f *fakeWindow) Wake()                           { f.wakes.Add(1) }
func (f *fakeWindow) SwapBuffers()                    { f.swaps++ }
func (f *fakeWindow) ShouldClose() bool               { return f.closed }
func (f *fakeWindow) FramebufferSize() (int, int)     { return f.w, f.h }
func (f *fakeWindow) SetTitle(t string)               { f.titleOf = t }
func (f *fakeWindow) SetEventCallback(cb func(Event)) { f.cb = cb }

func newTestEngine() (*Engine, *fakeWindow) {
	clk := sched.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	win := &fakeWindow{clock: clk, w: 800, h: 600}
	return NewEngine(win, sched.New(clk)), win
}

func TestFrameWaitsUntilNextTask(t *testing.T) {
	e, win := newTestEngine()
	ran := 0
	e.Loop.After(40*time.Millisecond, func() { ran++; e.RequestPresent() })

	e.Frame()
	if want := []time.Duration{40 * time.Millisecond}; !reflect.DeepEqual(win.waits, want) {
		t.Fatalf("waits = %v, want %v", win.waits, want)
	}
	if ran != 1 || win.swaps != 1 {
		t.Fatalf("ran=%d swaps=%d, want 1 and 1", ran, win.swaps)
	}

	e.Frame()
	if win.waits[1] != maxWait {
		t.Fatalf("idle wait = %v, want %v", win.waits[1], maxWait)
	}
	if win.swaps != 1 {
		t.Fatalf("swapped without a present request")
	}
}

func TestFramePollsWhenTaskOverdue(t *testing.T) {
	e, win := newTestEngine()
	e.Loop.After(0, func() {})
	e.Frame()
	if win.polls != 1 || len(win.waits) != 0 {
		t.Fatalf("polls=%d waits=%v, want a non-blocking poll", win.polls, win.waits)
	}
}

func TestResizeEventsReachSubscribers(t *testing.T) {
	e, win := newTestEngine()
	var got [][2]int
	cancel := e.Resizes.Subscribe(func(w, h int) { got = append(got, [2]int{w, h}) })

	win.queued = []Event{EventResize{W: 1024, H: 768}, EventResize{W: 0, H: 0}}
	e.Frame()
	if want := [][2]int{{1024, 768}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("resizes = %v, want %v", got, want)
	}

	cancel()
	win.queued = []Event{EventResize{W: 640, H: 480}}
	e.Frame()
	if len(got) != 1 {
		t.Fatalf("cancelled subscriber still notified")
	}
}

func TestResizeSubscriberCanCancelDuringNotify(t *testing.T) {
	var n ResizeNotifier
	var calls []string
	var cancelA func()
	cancelA = n.Subscribe(func(int, int) { calls = append(calls, "a"); cancelA() })
	n.Subscribe(func(int, int) { calls = append(calls, "b") })

	n.Notify(1, 1)
	n.Notify(1, 1)
	if want := []string{"a", "b", "b"}; !reflect.DeepEqual(calls, want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	if n.Len() != 1 {
		t.Fatalf("subscribers = %d, want 1", n.Len())
	}
}

type scriptedApp struct {
	events   []Event
	started  bool
	shutdown bool
	failWith error
}

func (a *scriptedApp) OnStart(e *Engine) error {
	a.started = true
	if a.failWith != nil {
		return a.failWith
	}
	e.Loop.After(50*time.Millisecond, e.Quit)
	return nil
}
func (a *scriptedApp) OnEvent(_ *Engine, ev Event) { a.events = append(a.events, ev) }
func (a *scriptedApp) OnShutdown(*Engine)          { a.shutdown = true }

func TestRunUntilQuit(t *testing.T) {
	e, win := newTestEngine()
	app := &scriptedApp{}
	win.queued = []Event{EventKey{Key: KeySpace, Down: true}}

	if err := e.Run(app); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !app.started || !app.shutdown {
		t.Fatalf("lifecycle hooks: started=%v shutdown=%v", app.started, app.shutdown)
	}
	if len(app.events) != 1 || !e.Input.IsKeyDown(KeySpace) {
		t.Fatalf("key event not dispatched: %v", app.events)
	}
	if e.Uptime() < 50*time.Millisecond {
		t.Fatalf("uptime = %v", e.Uptime())
	}
}

func TestRunStopsOnCloseRequest(t *testing.T) {
	e, win := newTestEngine()
	app := &scriptedApp{}
	e.app = app
	win.queued = []Event{EventCloseRequested{}}
	e.Frame()
	if !e.Done() {
		t.Fatalf("close request did not end the engine")
	}
}

func TestRunReportsStartFailure(t *testing.T) {
	e, _ := newTestEngine()
	boom := errors.New("boom")
	if err := e.Run(&scriptedApp{failWith: boom}); !errors.Is(err, boom) {
		t.Fatalf("got %v, want %v", err, boom)
	}
}

func TestInputEdges(t *testing.T) {
	in := NewInput()
	in.Handle(EventKey{Key: KeyG, Down: true})
	in.Handle(EventKey{Key: KeyG, Down: true}) // repeat
	if !in.WasPressed(KeyG) {
		t.Fatalf("press not recorded")
	}
	if in.WasPressed(KeyG) {
		t.Fatalf("press reported twice")
	}
	in.Handle(EventKey{Key: KeyG, Down: false})
	if in.IsKeyDown(KeyG) {
		t.Fatalf("key still down after release")
	}

	in.Handle(EventScroll{Yoff: 1.5})
	in.Handle(EventScroll{Yoff: -0.5})
	if s := in.Scroll(); s != 1 {
		t.Fatalf("scroll = %v, want 1", s)
	}
	if s := in.Scroll(); s != 0 {
		t.Fatalf("scroll not reset: %v", s)
	}
	in.Handle(EventMouseMove{X: 3, Y: 4})
	if x, y := in.Mouse(); x != 3 || y != 4 {
		t.Fatalf("mouse = %v,%v", x, y)
	}
}
