package main

import (
	"errors"
	"fmt"

	"github.com/hubastard/marquee/engine/assets"
	"github.com/hubastard/marquee/engine/colors"
	"github.com/hubastard/marquee/engine/core"
	glbackend "github.com/hubastard/marquee/engine/gfx/gl"
	"github.com/hubastard/marquee/engine/layout"
	"github.com/hubastard/marquee/engine/logging"
	"github.com/hubastard/marquee/engine/profiler"
	"github.com/hubastard/marquee/engine/resource"
	"github.com/hubastard/marquee/engine/screen"
	"github.com/hubastard/marquee/engine/settings"
	"github.com/hubastard/marquee/engine/surface"
	"github.com/hubastard/marquee/engine/text"
)

const (
	title      = "Marquee Sandbox"
	playerFile = "player.png"
)

type options struct {
	settings string
	layouts  string
	assets   string
	profile  string
}

type App struct {
	opts options

	env      screen.Env
	store    *settings.Store
	catalog  *resource.Catalog
	director *screen.Director
	font     *text.Font

	menu     *menuScreen
	preview  *previewScreen
	graphics *graphicsScreen
}

func (a *App) OnStart(e *core.Engine) error {
	profiler.Init(1 << 10) // ~1K scope samples
	log := logging.Logger()

	store, err := settings.Load(a.opts.settings)
	if err != nil {
		log.Warn("graphics settings unreadable, using defaults", "path", a.opts.settings, "err", err)
	}
	a.store = store

	a.font, err = text.Default(20)
	if err != nil {
		return err
	}

	a.env = screen.Env{
		Loop:     e.Loop,
		Loader:   &layout.FileLoader{Root: a.opts.layouts, Post: e.Loop.Post},
		Settings: a.store,
		Factory:  glbackend.NewFactory(e.Window.FramebufferSize, e.RequestPresent),
		Measure:  surface.HostMeasure(e.Window.FramebufferSize),
		Resizes:  e.Resizes,
	}

	a.director = screen.NewDirector()
	a.menu = newMenuScreen(a.env, a.font)
	a.preview = newPreviewScreen(a.env, a.font, e.Input)
	a.graphics = newGraphicsScreen(a.env, a.font, a.store)
	for _, s := range []screen.Screen{a.menu, a.preview, a.graphics} {
		if err := a.director.Add(s); err != nil {
			return err
		}
	}

	a.catalog = resource.NewCatalog(assets.Dir(a.opts.assets), e.Loop.Post)
	a.catalog.OnProgress(func(name string, total, loaded int) {
		e.Window.SetTitle(fmt.Sprintf("%s - loading %s (%d/%d)", title, name, loaded, total))
	})
	a.loadPlayer(e)

	return a.director.SetCurrent("menu")
}

// loadPlayer requests the player texture at the resolution the LOD setting
// allows and hands it to the preview once loaded.
func (a *App) loadPlayer(e *core.Engine) {
	a.catalog.Add(resource.Texture(playerFile, 32<<a.store.MaxLOD()))
	a.catalog.RequestLoad()
	err := a.catalog.ExecuteWhenReady(func() error {
		e.Window.SetTitle(title)
		img, err := a.catalog.Texture(playerFile)
		if err != nil {
			return err
		}
		return a.preview.SetPlayer(img)
	})
	if err != nil {
		logging.Logger().Warn("player unavailable", "err", err)
	}
}

// rebuildPreview replaces the preview so its contexts pick up the current
// graphics settings, then reopens the graphics overlay.
func (a *App) rebuildPreview(e *core.Engine) error {
	wasCurrent := a.director.Current() == screen.Screen(a.preview)
	if err := a.director.Remove(a.preview.Name()); err != nil {
		return err
	}
	a.preview = newPreviewScreen(a.env, a.font, e.Input)
	if err := a.director.Add(a.preview); err != nil {
		return err
	}
	if img, err := a.catalog.Texture(playerFile); err == nil {
		if err := a.preview.SetPlayer(img); err != nil {
			return err
		}
	}
	if wasCurrent {
		if err := a.director.SetCurrent(a.preview.Name()); err != nil {
			return err
		}
	}
	return a.director.Superimpose(a.graphics.Name(), colors.Black, 0.6)
}

func (a *App) OnEvent(e *core.Engine, ev core.Event) {
	k, ok := ev.(core.EventKey)
	if !ok || !k.Down {
		return
	}
	if k.Key == core.KeyP && k.Mods&core.ModCtrl != 0 {
		a.dumpProfile()
		return
	}
	if err := a.handleKey(e, k.Key); err != nil {
		logging.Logger().Warn("key handling failed", "key", k.Key, "err", err)
	}
}

func (a *App) handleKey(e *core.Engine, k core.Key) error {
	if a.director.Top() == screen.Screen(a.graphics) {
		switch k {
		case core.KeyEscape, core.KeyG:
			return a.director.CloseSuperimposed()
		case core.KeyEnter:
			if err := a.store.Save(); err != nil {
				return err
			}
			if err := a.director.CloseSuperimposed(); err != nil {
				return err
			}
			return a.rebuildPreview(e)
		default:
			return a.graphics.HandleKey(k)
		}
	}

	switch k {
	case core.KeyG:
		return a.director.Superimpose(a.graphics.Name(), colors.Black, 0.6)
	case core.KeyEnter:
		if a.director.Current() == screen.Screen(a.menu) {
			return a.director.SetCurrent(a.preview.Name())
		}
	case core.KeyEscape:
		if a.director.Current() == screen.Screen(a.menu) {
			e.Quit()
			return nil
		}
		return a.director.SetCurrent(a.menu.Name())
	}
	return nil
}

func (a *App) dumpProfile() {
	if !profiler.Enabled() {
		logging.Logger().Info("profiler disabled, rebuild with -tags profile")
		return
	}
	n, err := profiler.Dump(a.opts.profile)
	if err != nil {
		logging.Logger().Warn("profiler dump failed", "err", err)
		return
	}
	logging.Logger().Info("speedscope dump written", "path", a.opts.profile, "events", n)
}

func (a *App) OnShutdown(e *core.Engine) {
	if err := a.director.Shutdown(); err != nil && !errors.Is(err, screen.ErrInvalidState) {
		logging.Logger().Warn("screen shutdown", "err", err)
	}
	if err := a.catalog.Err(); err != nil {
		logging.Logger().Info("some resources never loaded", "err", err)
	}
}
