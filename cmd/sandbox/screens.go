package main

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/hubastard/marquee/engine/assets"
	"github.com/hubastard/marquee/engine/colors"
	"github.com/hubastard/marquee/engine/core"
	"github.com/hubastard/marquee/engine/layout"
	"github.com/hubastard/marquee/engine/logging"
	"github.com/hubastard/marquee/engine/scene"
	"github.com/hubastard/marquee/engine/sched"
	"github.com/hubastard/marquee/engine/screen"
	"github.com/hubastard/marquee/engine/settings"
	"github.com/hubastard/marquee/engine/surface"
	"github.com/hubastard/marquee/engine/text"
)

const (
	frameInterval = time.Second / 60
	stepInterval  = time.Second / 120
	menuInterval  = time.Second / 10
	panelInterval = time.Second / 15
)

// bind attaches sc to the surface declared as id and sizes it. Both run once
// the screen's layout has loaded.
func bind(c *screen.CanvasScreen, sc screen.Scene, id string) {
	if err := c.BindSceneToSurface(sc, id); err != nil {
		logging.Logger().Warn("bind failed", "screen", c.Name(), "surface", id, "err", err)
		return
	}
	if err := c.ResizeSurface(id); err != nil {
		logging.Logger().Warn("initial resize failed", "screen", c.Name(), "surface", id, "err", err)
	}
}

// ------- menu -------

type menuScreen struct {
	*screen.CanvasScreen
	label *scene.Label
}

func newMenuScreen(env screen.Env, font *text.Font) *menuScreen {
	m := &menuScreen{
		CanvasScreen: screen.NewCanvasScreen(env, "menu", "menu.yaml"),
		label:        scene.NewLabel(font, ""),
	}
	m.label.Background = colors.DarkGray
	m.label.Padding = 48
	_ = m.OnReady(func(doc *layout.Document) error {
		m.label.SetText(doc.Title + "\n\nEnter   preview\nG       graphics\nEsc     quit")
		return nil
	})
	bind(m.CanvasScreen, m.label, "main")
	return m
}

func (m *menuScreen) Show() error {
	if err := m.CanvasScreen.Show(); err != nil {
		return err
	}
	return m.StartRenderLoop(menuInterval)
}

// ------- preview -------

type previewScreen struct {
	*screen.CanvasScreen

	input   *core.Input
	spinner *scene.Spinner
	ctrl    *scene.OrthoController2D
	player  *scene.Sprite
	hud     *scene.Label

	step    *sched.Task
	elapsed float32
}

func newPreviewScreen(env screen.Env, font *text.Font, in *core.Input) *previewScreen {
	p := &previewScreen{
		CanvasScreen: screen.NewCanvasScreen(env, "preview", "preview.yaml"),
		input:        in,
		spinner:      scene.NewSpinner(12),
		hud:          scene.NewLabel(font, ""),
	}
	p.ctrl = scene.NewOrthoController2D(p.spinner.Camera)
	p.hud.Color = colors.Yellow
	p.hud.Background = colors.Black.WithAlpha(0.5)
	p.OnFrame(p.updateHUD)

	bind(p.CanvasScreen, p.spinner, "main")
	bind(p.CanvasScreen, p.hud, "hud")
	return p
}

// SetPlayer adds the animated player sprite above the spinner. Frames are
// square cells laid out in a horizontal strip.
func (p *previewScreen) SetPlayer(img *assets.Image) error {
	if p.player != nil {
		return nil
	}
	p.player = scene.NewSprite("player", img)
	p.player.Camera = p.spinner.Camera
	p.player.CellW, p.player.CellH = img.Height, img.Height
	p.player.Size = 96
	if err := p.BindSceneToSurface(p.player, "main"); err != nil {
		return err
	}
	return p.ResizeSurface("main")
}

func (p *previewScreen) Show() error {
	if err := p.CanvasScreen.Show(); err != nil {
		return err
	}
	if err := p.StartRenderLoop(frameInterval); err != nil {
		return err
	}
	if p.step != nil && p.step.Active() {
		return nil
	}
	var err error
	p.step, err = p.Every(stepInterval, p.advance)
	return err
}

// advance moves the simulation one fixed step.
func (p *previewScreen) advance() {
	dt := float32(stepInterval.Seconds())
	p.elapsed += dt
	p.spinner.Step(dt)
	p.ctrl.Update(p.input, dt)
	if p.player != nil {
		p.player.Rotation = -p.spinner.Angle()
		p.player.Frame = int(p.elapsed * 8)
	}
}

func (p *previewScreen) updateHUD(fps int) {
	stats := p.spinner.Batch().Stats()
	p.hud.SetText(fmt.Sprintf("Frame\n  %d FPS\n2D Renderer\n  Quads: %d\n  Draw Calls: %d\nGoroutines: %d",
		fps, stats.QuadCount, stats.DrawCalls, runtime.NumGoroutine()))
}

// ------- graphics settings overlay -------

type graphicsScreen struct {
	*screen.CanvasScreen
	store *settings.Store
	label *scene.Label
}

func newGraphicsScreen(env screen.Env, font *text.Font, store *settings.Store) *graphicsScreen {
	g := &graphicsScreen{
		CanvasScreen: screen.NewCanvasScreen(env, "graphics", "graphics.yaml"),
		store:        store,
		label:        scene.NewLabel(font, ""),
	}
	g.label.Padding = 24
	g.OnFrame(func(int) {
		if c, ok := g.Backdrop(); ok {
			g.label.Background = c
		}
	})
	g.refresh()
	bind(g.CanvasScreen, g.label, "panel")
	return g
}

func (g *graphicsScreen) Superimpose(color colors.Color, opacity float32) error {
	g.refresh()
	if err := g.CanvasScreen.Superimpose(color, opacity); err != nil {
		return err
	}
	return g.StartRenderLoop(panelInterval)
}

// HandleKey edits the graphics settings. Changes reach contexts created
// after they are saved.
func (g *graphicsScreen) HandleKey(k core.Key) error {
	var err error
	switch k {
	case core.KeySpace:
		g.store.SetAntialiasing(!g.store.Antialiasing())
	case core.KeyLeft, core.KeyRight:
		step := 1
		if k == core.KeyLeft {
			step = -1
		}
		err = g.store.SetFiltering(cycle(g.store.Filtering(), step))
	case core.KeyUp:
		err = g.store.SetMaxLOD(min(g.store.MaxLOD()+1, len(settings.LODNames)-1))
	case core.KeyDown:
		err = g.store.SetMaxLOD(max(g.store.MaxLOD()-1, 0))
	case core.KeyR:
		g.store.RestoreDefaults()
	}
	g.refresh()
	return err
}

func cycle(f surface.Filtering, step int) surface.Filtering {
	n := len(surface.Filterings)
	for i, v := range surface.Filterings {
		if v == f {
			return surface.Filterings[((i+step)%n+n)%n]
		}
	}
	return surface.Filterings[0]
}

func (g *graphicsScreen) refresh() {
	cur := g.store.Graphics()
	aa := "off"
	if cur.Antialiasing {
		aa = "on"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Graphics\n\n")
	fmt.Fprintf(&b, "Antialiasing   %s\n", aa)
	fmt.Fprintf(&b, "Filtering      %s\n", cur.Filtering)
	fmt.Fprintf(&b, "Detail         %s\n\n", cur.LODName())
	b.WriteString("Space  antialiasing\nLeft/Right  filtering\nUp/Down  detail\nR  defaults\nEnter  save and apply\nEsc  close")
	g.label.SetText(b.String())
}
