// Command termview renders the demo scenes into the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/hubastard/marquee/engine/assets"
	"github.com/hubastard/marquee/engine/colors"
	"github.com/hubastard/marquee/engine/layout"
	"github.com/hubastard/marquee/engine/logging"
	"github.com/hubastard/marquee/engine/resource"
	"github.com/hubastard/marquee/engine/scene"
	"github.com/hubastard/marquee/engine/sched"
	"github.com/hubastard/marquee/engine/screen"
	"github.com/hubastard/marquee/engine/settings"
	"github.com/hubastard/marquee/engine/term"
)

type options struct {
	settings string
	layouts  string
	assets   string
	texture  string
	interval time.Duration
	logFile  string
	debug    bool
}

func main() {
	var opts options
	defaultSettings, _ := settings.DefaultPath()
	flag.StringVar(&opts.settings, "settings", defaultSettings, "graphics settings file (.yaml or .toml)")
	flag.StringVar(&opts.layouts, "layouts", "cmd/termview/layouts", "directory holding the screen layouts")
	flag.StringVar(&opts.assets, "assets", "assets", "asset root with a textures/ directory")
	flag.StringVar(&opts.texture, "texture", "", "texture to show next to the spinner")
	flag.DurationVar(&opts.interval, "interval", time.Second/30, "render interval")
	flag.StringVar(&opts.logFile, "log", "", "write logs to this file")
	flag.BoolVar(&opts.debug, "debug", false, "log debug output")
	flag.Parse()

	if err := run(opts); err != nil {
		log.Fatal(err)
	}
}

func run(opts options) error {
	if opts.logFile != "" {
		f, err := os.Create(opts.logFile)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer f.Close()
		level := slog.LevelInfo
		if opts.debug {
			level = slog.LevelDebug
		}
		logging.SetLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})))
	}

	store, err := settings.Load(opts.settings)
	if err != nil {
		logging.Logger().Warn("graphics settings unreadable, using defaults", "path", opts.settings, "err", err)
	}

	s, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}
	defer s.Fini()

	loop := sched.New(sched.SystemClock{})
	host := term.NewHost(s, loop)
	env := screen.Env{
		Loop:     loop,
		Loader:   &layout.FileLoader{Root: opts.layouts, Post: loop.Post},
		Settings: store,
		Factory:  host.Factory(),
		Measure:  host.Measure(),
		Resizes:  host.Resizes,
	}

	v := newView(env, opts.interval)
	director := screen.NewDirector()
	if err := director.Add(v); err != nil {
		return err
	}
	if err := director.SetCurrent(v.Name()); err != nil {
		return err
	}
	if opts.texture != "" {
		v.load(resource.NewCatalog(assets.Dir(opts.assets), loop.Post), opts.texture)
	}
	host.OnKey = func(ev *tcell.EventKey) {
		if err := v.handleKey(ev, host.Quit); err != nil {
			logging.Logger().Warn("key handling failed", "err", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runErr := host.Run(ctx)
	if err := director.Shutdown(); err != nil {
		logging.Logger().Warn("screen shutdown", "err", err)
	}
	return runErr
}

// view is the single terminal screen: a spinner on the main surface, a
// smaller one beside it and status lines on both.
type view struct {
	*screen.CanvasScreen

	interval time.Duration
	spinner  *scene.Spinner
	orbit    *scene.Spinner
	status   *term.StatusLine
	info     *term.StatusLine
	paused   bool
	progress string
	step     *sched.Task
}

func newView(env screen.Env, interval time.Duration) *view {
	v := &view{
		CanvasScreen: screen.NewCanvasScreen(env, "termview", "term.yaml"),
		interval:     interval,
		spinner:      scene.NewSpinner(8),
		orbit:        scene.NewSpinner(3),
		status:       term.NewStatusLine(),
		info:         term.NewStatusLine(),
	}
	v.orbit.Clear = colors.Black
	v.orbit.Colors = []colors.Color{colors.White, colors.Gray}
	v.orbit.Speed = -v.orbit.Speed * 2
	v.status.Bottom = true
	v.status.Color = colors.Yellow
	v.OnFrame(v.updateStatus)

	for _, b := range []struct {
		sc screen.Scene
		id string
	}{{v.spinner, "main"}, {v.status, "main"}, {v.orbit, "side"}, {v.info, "side"}} {
		if err := v.BindSceneToSurface(b.sc, b.id); err != nil {
			logging.Logger().Warn("bind failed", "surface", b.id, "err", err)
		}
	}
	for _, id := range []string{"main", "side"} {
		if err := v.ResizeSurface(id); err != nil {
			logging.Logger().Warn("initial resize failed", "surface", id, "err", err)
		}
	}
	_ = v.OnReady(func(doc *layout.Document) error {
		v.info.SetText(doc.Title)
		return nil
	})
	return v
}

func (v *view) Show() error {
	if err := v.CanvasScreen.Show(); err != nil {
		return err
	}
	return v.resume()
}

func (v *view) resume() error {
	if err := v.StartRenderLoop(v.interval); err != nil {
		return err
	}
	if v.step.Active() {
		return nil
	}
	var err error
	v.step, err = v.Every(v.interval, func() {
		dt := float32(v.interval.Seconds())
		v.spinner.Step(dt)
		v.orbit.Step(dt)
	})
	return err
}

func (v *view) pause() error {
	v.step.Stop()
	return v.StopRenderLoop()
}

// load shows the texture beside the spinner once the catalog has it.
func (v *view) load(c *resource.Catalog, name string) {
	c.OnProgress(func(n string, total, loaded int) {
		v.progress = fmt.Sprintf("loading %s %d/%d", n, loaded, total)
	})
	c.Add(resource.Texture(name, 64))
	c.RequestLoad()
	err := c.ExecuteWhenReady(func() error {
		v.progress = ""
		img, err := c.Texture(name)
		if err != nil {
			v.progress = "texture unavailable"
			return err
		}
		sp := scene.NewSprite(name, img)
		sp.Camera = v.spinner.Camera
		sp.Size = 12
		if err := v.BindSceneToSurface(sp, "main"); err != nil {
			return err
		}
		return v.ResizeSurface("main")
	})
	if err != nil {
		logging.Logger().Warn("texture unavailable", "name", name, "err", err)
	}
}

func (v *view) handleKey(ev *tcell.EventKey, quit func()) error {
	if ev.Key() != tcell.KeyRune {
		return nil
	}
	switch ev.Rune() {
	case 'q':
		quit()
	case ' ':
		v.paused = !v.paused
		if v.paused {
			v.status.SetText("paused  space resume  q quit")
			// The stopped loop no longer redraws, so print the line once.
			if err := v.pause(); err != nil {
				return err
			}
			return v.Render()
		}
		return v.resume()
	case '+':
		v.spinner.Speed *= 1.5
	case '-':
		v.spinner.Speed /= 1.5
	}
	return nil
}

func (v *view) updateStatus(fps int) {
	line := fmt.Sprintf("%d fps  %.1f rad/s  space pause  +/- speed  q quit", fps, v.spinner.Speed)
	if v.progress != "" {
		line += "  " + v.progress
	}
	v.status.SetText(line)
}
