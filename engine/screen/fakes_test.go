package screen

import (
	"fmt"
	"time"

	"github.com/hubastard/marquee/engine/layout"
	"github.com/hubastard/marquee/engine/sched"
	"github.com/hubastard/marquee/engine/surface"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// manualLoader holds completions until the test delivers them.
type manualLoader struct {
	pending map[string]func(*layout.Document, error)
}

func newManualLoader() *manualLoader {
	return &manualLoader{pending: make(map[string]func(*layout.Document, error))}
}

func (l *manualLoader) Load(source string, done func(*layout.Document, error)) {
	l.pending[source] = done
}

func (l *manualLoader) finish(source string, doc *layout.Document) {
	done := l.pending[source]
	delete(l.pending, source)
	done(doc, nil)
}

func (l *manualLoader) fail(source string, err error) {
	done := l.pending[source]
	delete(l.pending, source)
	done(nil, err)
}

type fakeContext struct {
	surface  string
	cfg      surface.Config
	setups   int
	released bool
	attached map[*fakeScene]int
}

func (c *fakeContext) SetupBuffers() error { c.setups++; return nil }
func (c *fakeContext) Release()            { c.released = true }

type contextFactory struct {
	created []*fakeContext
}

func (f *contextFactory) create(s *surface.Surface, cfg surface.Config) (surface.Context, error) {
	ctx := &fakeContext{surface: s.Name(), cfg: cfg, attached: make(map[*fakeScene]int)}
	f.created = append(f.created, ctx)
	return ctx, nil
}

// fakeScene records every call made on it into a shared journal.
type fakeScene struct {
	name     string
	journal  *[]string
	renders  int
	cleanups int
	resizes  [][2]int
	contexts map[surface.Context]bool
	fail     error
	failAdd  error
}

func newFakeScene(name string, journal *[]string) *fakeScene {
	return &fakeScene{name: name, journal: journal, contexts: make(map[surface.Context]bool)}
}

func (s *fakeScene) note(format string, args ...any) {
	if s.journal != nil {
		*s.journal = append(*s.journal, fmt.Sprintf(format, args...))
	}
}

func (s *fakeScene) CleanUp() {
	s.cleanups++
	s.note("%s.cleanup", s.name)
}

func (s *fakeScene) Render(ctx surface.Context) error {
	s.renders++
	s.note("%s.render@%s", s.name, ctx.(*fakeContext).surface)
	return s.fail
}

func (s *fakeScene) ResizeViewport(w, h int) {
	s.resizes = append(s.resizes, [2]int{w, h})
	s.note("%s.resize(%d,%d)", s.name, w, h)
}

func (s *fakeScene) AddToContext(ctx surface.Context) error {
	if s.failAdd != nil {
		return s.failAdd
	}
	if s.contexts[ctx] {
		return nil
	}
	s.contexts[ctx] = true
	ctx.(*fakeContext).attached[s]++
	return nil
}

type staticSettings surface.Config

func (s staticSettings) ContextConfig() surface.Config { return surface.Config(s) }

// resizeHub is a minimal ResizeSource.
type resizeHub struct {
	subs map[int]func(w, h int)
	next int
}

func newResizeHub() *resizeHub { return &resizeHub{subs: make(map[int]func(w, h int))} }

func (h *resizeHub) Subscribe(fn func(w, h int)) func() {
	id := h.next
	h.next++
	h.subs[id] = fn
	return func() { delete(h.subs, id) }
}

func (h *resizeHub) notify(w, hh int) {
	for _, fn := range h.subs {
		fn(w, hh)
	}
}

// sizes is a MeasureFunc backed by a map of surface name to size.
type sizes map[string][2]int

func (m sizes) measure(s *surface.Surface) (int, int, error) {
	sz, ok := m[s.Name()]
	if !ok {
		w, h := s.Size()
		return w, h, nil
	}
	return sz[0], sz[1], nil
}

type harness struct {
	clock    *sched.ManualClock
	loop     *sched.Loop
	loader   *manualLoader
	factory  *contextFactory
	sizes    sizes
	resizes  *resizeHub
	settings staticSettings
}

func newHarness() *harness {
	clk := sched.NewManualClock(epoch)
	return &harness{
		clock:    clk,
		loop:     sched.New(clk),
		loader:   newManualLoader(),
		factory:  &contextFactory{},
		sizes:    sizes{},
		resizes:  newResizeHub(),
		settings: staticSettings{Antialiasing: true, Filtering: surface.FilteringTrilinear},
	}
}

func (h *harness) env() Env {
	return Env{
		Loop:     h.loop,
		Loader:   h.loader,
		Settings: h.settings,
		Factory:  h.factory.create,
		Measure:  h.sizes.measure,
		Resizes:  h.resizes,
	}
}

// step advances the clock by d and runs whatever became due.
func (h *harness) step(d time.Duration) {
	h.clock.Advance(d)
	h.loop.RunPending()
}

func twoSurfaceDoc() *layout.Document {
	return &layout.Document{
		Surfaces: []layout.SurfaceSpec{
			{ID: "main", Resizable: true, Width: 800, Height: 600},
			{ID: "side", Width: 800, Height: 600},
		},
	}
}
