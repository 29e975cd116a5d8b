package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/hubastard/marquee/engine/colors"
	"github.com/hubastard/marquee/engine/core"
	"github.com/hubastard/marquee/engine/logging"
	"github.com/hubastard/marquee/engine/platform"
	"github.com/hubastard/marquee/engine/settings"
)

func main() {
	var opts options
	defaultSettings, _ := settings.DefaultPath()
	flag.StringVar(&opts.settings, "settings", defaultSettings, "graphics settings file (.yaml or .toml)")
	flag.StringVar(&opts.layouts, "layouts", "cmd/sandbox/layouts", "directory holding the screen layouts")
	flag.StringVar(&opts.assets, "assets", "assets", "asset root with shaders/ and textures/")
	flag.StringVar(&opts.profile, "profile", "sandbox.speedscope.json", "where Ctrl+P writes the profiler dump")
	debug := flag.Bool("debug", false, "log debug output to stderr")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := core.Config{
		Title:      title,
		Width:      1280,
		Height:     720,
		VSync:      true,
		Samples:    4,
		ClearColor: colors.DarkGray,
	}
	if err := core.Run(&App{opts: opts}, cfg, platform.OpenWindow); err != nil {
		log.Fatal(err)
	}
}
