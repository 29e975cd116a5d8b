package term

import (
	"context"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/hubastard/marquee/engine/assets"
	"github.com/hubastard/marquee/engine/colors"
	"github.com/hubastard/marquee/engine/gfx/renderer2d"
	"github.com/hubastard/marquee/engine/scene"
	"github.com/hubastard/marquee/engine/sched"
	"github.com/hubastard/marquee/engine/surface"
)

func simScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	s.SetSize(w, h)
	t.Cleanup(s.Fini)
	return s
}

func newContext(t *testing.T, screen tcell.Screen, bounds surface.Rect, cfg surface.Config) *Context {
	t.Helper()
	presents := 0
	reg := surface.NewRegistry(NewFactory(screen, func() { presents++ }), Measure(screen))
	if _, err := reg.Register(surface.Spec{Name: "s", Bounds: bounds}); err != nil {
		t.Fatal(err)
	}
	ctx, err := reg.Context("s", cfg)
	if err != nil {
		t.Fatalf("context: %v", err)
	}
	return ctx.(*Context)
}

func cellStyle(screen tcell.Screen, x, y int) (rune, tcell.Style) {
	r, _, st, _ := screen.GetContent(x, y)
	return r, st
}

func TestDrawFillsQuadCells(t *testing.T) {
	screen := simScreen(t, 20, 10)
	c := newContext(t, screen, surface.Full, surface.Config{})

	c.Begin(colors.Black)
	b := renderer2d.New(1)
	b.BeginScene(scene.ScreenOrtho(20, 10))
	b.DrawQuad(5, 5, 4, 4, colors.Red, 0)
	if err := c.Draw(b); err != nil {
		t.Fatalf("draw: %v", err)
	}

	if _, st := cellStyle(screen, 4, 4); st != style(colors.Red, colors.Red) {
		t.Fatalf("cell inside quad not red")
	}
	if _, st := cellStyle(screen, 0, 0); st != style(colors.Black, colors.Black) {
		t.Fatalf("cell outside quad not cleared")
	}
	if _, st := cellStyle(screen, 7, 5); st != style(colors.Black, colors.Black) {
		t.Fatalf("cell right of quad painted")
	}
}

func TestAntialiasingUsesHalfBlocks(t *testing.T) {
	screen := simScreen(t, 10, 4)
	c := newContext(t, screen, surface.Full, surface.Config{Antialiasing: true})

	c.Begin(colors.Black)
	b := renderer2d.New(1)
	// Pixel rows are doubled: cover only the top pixel of row 1.
	b.BeginScene(scene.ScreenOrtho(10, 8))
	b.DrawQuad(5, 2.5, 10, 1, colors.Green, 0)
	_ = c.Draw(b)

	r, st := cellStyle(screen, 3, 1)
	if r != halfBlock || st != style(colors.Green, colors.Black) {
		t.Fatalf("cell = %q, want a green-over-black half block", r)
	}
}

func TestSurfaceOffsetAndPrint(t *testing.T) {
	screen := simScreen(t, 20, 4)
	c := newContext(t, screen, surface.Rect{0.5, 0, 0.5, 1}, surface.Config{})
	if w, h := c.Size(); w != 10 || h != 4 {
		t.Fatalf("surface size = %dx%d", w, h)
	}

	c.Begin(colors.Blue)
	_ = c.Draw(renderer2d.New(1))
	c.Print(1, 0, "fps 60 and more text", colors.White)

	if r, _ := cellStyle(screen, 11, 0); r != 'f' {
		t.Fatalf("print did not honor the surface offset, got %q", r)
	}
	if r, _ := cellStyle(screen, 19, 0); r == ' ' {
		t.Fatalf("last cell of the surface left blank")
	}
	if _, st := cellStyle(screen, 5, 0); st == style(colors.Blue, colors.Blue) {
		t.Fatalf("drew outside the surface")
	}
}

func TestTransparentTexelsAreSkipped(t *testing.T) {
	screen := simScreen(t, 4, 4)
	c := newContext(t, screen, surface.Full, surface.Config{})
	clearTex := c.AddImage("clear", &assets.Image{Width: 1, Height: 1, Pix: []byte{255, 255, 255, 0}})
	if again := c.AddImage("clear", nil); again != clearTex {
		t.Fatalf("same key returned a new texture")
	}

	c.Begin(colors.Black)
	b := renderer2d.New(1)
	b.BeginScene(scene.ScreenOrtho(4, 4))
	b.DrawTexturedQuad(2, 2, 4, 4, clearTex, colors.White, 0)
	_ = c.Draw(b)
	if _, st := cellStyle(screen, 1, 1); st != style(colors.Black, colors.Black) {
		t.Fatalf("transparent texel painted a cell")
	}
}

func TestReleasedContext(t *testing.T) {
	screen := simScreen(t, 4, 4)
	c := newContext(t, screen, surface.Full, surface.Config{})
	c.Release()
	c.Release()
	if err := c.SetupBuffers(); err == nil {
		t.Fatalf("setup on released context succeeded")
	}
	if err := c.Draw(renderer2d.New(1)); err == nil {
		t.Fatalf("draw on released context succeeded")
	}
}

func TestStatusLine(t *testing.T) {
	screen := simScreen(t, 12, 3)
	c := newContext(t, screen, surface.Full, surface.Config{})
	s := NewStatusLine()
	s.Bottom = true
	if err := s.AddToContext(c); err != nil {
		t.Fatalf("attach: %v", err)
	}
	s.SetText("ok\nready")
	c.Begin(colors.Black)
	_ = c.Draw(renderer2d.New(1))
	if err := s.Render(c); err != nil {
		t.Fatalf("render: %v", err)
	}
	if r, _ := cellStyle(screen, 1, 2); r != 'o' {
		t.Fatalf("status not on the last row, got %q", r)
	}
	if r, _ := cellStyle(screen, 3, 2); r != ' ' {
		t.Fatalf("newline not replaced, got %q", r)
	}
}

func TestSpinnerOnTerminal(t *testing.T) {
	screen := simScreen(t, 40, 20)
	c := newContext(t, screen, surface.Full, surface.Config{Antialiasing: true})
	sp := scene.NewSpinner(4)
	if err := sp.AddToContext(c); err != nil {
		t.Fatalf("attach: %v", err)
	}
	w, h := c.Size()
	sp.ResizeViewport(w, h*2)
	if err := sp.Render(c); err != nil {
		t.Fatalf("render: %v", err)
	}

	painted := 0
	cleared := style(sp.Clear, sp.Clear)
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			if _, st := cellStyle(screen, x, y); st != cleared {
				painted++
			}
		}
	}
	if painted == 0 {
		t.Fatalf("spinner painted nothing")
	}
}

func TestHostRoutesEvents(t *testing.T) {
	screen := simScreen(t, 30, 10)
	loop := sched.New(nil)
	h := NewHost(screen, loop)

	resized := make(chan [2]int, 1)
	h.Resizes.Subscribe(func(w, hh int) { resized <- [2]int{w, hh} })
	keys := make(chan rune, 1)
	h.OnKey = func(ev *tcell.EventKey) { keys <- ev.Rune() }

	done := make(chan error, 1)
	go func() { done <- h.Run(context.Background()) }()

	_ = screen.PostEvent(tcell.NewEventResize(50, 12))
	select {
	case got := <-resized:
		if got != [2]int{50, 12} {
			t.Fatalf("resize = %v", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("resize not delivered")
	}

	_ = screen.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone))
	select {
	case r := <-keys:
		if r != 'x' {
			t.Fatalf("key = %q", r)
		}
	case <-time.After(time.Second):
		t.Fatalf("key not delivered")
	}

	_ = screen.PostEvent(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModNone))
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("run did not exit on Ctrl-C")
	}
}
