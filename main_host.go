package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"xrscene/app"
	"xrscene/composer"
	"xrscene/hal"
	"xrscene/internal/buildinfo"
	"xrscene/xr"
)

func main() {
	var (
		cfg         hal.HeadlessConfig
		host        hal.HostConfig
		appCfg      app.Config
		mode        string
		windowScale int
		scaling     float64
		version     bool
	)
	flag.BoolVar(&cfg.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&cfg.Hz, "hz", 60, "Tick rate in headless mode.")
	flag.Uint64Var(&cfg.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.StringVar(&mode, "mode", "vr", "XR session mode: vr, ar or a full WebXR mode string.")
	flag.StringVar(&host.AssetDir, "assets", "", "Directory holding the assets/ tree.")
	flag.StringVar(&host.Canvas, "canvas", composer.DefaultCanvas, "Render surface id.")
	flag.IntVar(&host.Width, "width", 640, "Initial surface width.")
	flag.IntVar(&host.Height, "height", 480, "Initial surface height.")
	flag.BoolVar(&host.NoAudio, "no-audio", false, "Disable the audio device.")
	flag.IntVar(&windowScale, "window-scale", 1, "Window size multiplier.")
	flag.Float64Var(&scaling, "scale", 1, "Hardware scaling level (render at 1/scale resolution).")
	flag.BoolVar(&appCfg.Composer.NoParticles, "no-particles", false, "Skip the particle system.")
	flag.BoolVar(&appCfg.Composer.NoModel, "no-model", false, "Skip loading the glTF model.")
	flag.BoolVar(&appCfg.Composer.PointLight, "point-light", false, "Add a point light at the origin.")
	flag.BoolVar(&appCfg.Composer.Sparks, "sparks", false, "Use the sparks particle preset.")
	flag.BoolVar(&version, "version", false, "Print the build version and exit.")
	flag.Parse()

	if version {
		fmt.Println(buildinfo.String())
		return
	}

	m, err := xr.ParseSessionMode(mode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	host.XRModes = []xr.SessionMode{m, xr.Inline}
	appCfg.Canvas = host.Canvas
	appCfg.HardwareScalingLevel = float32(scaling)
	appCfg.Composer.SessionMode = m
	appCfg.Composer.NoAudio = host.NoAudio

	newApp := func(h hal.HAL) func() error {
		step, err := app.New(h, appCfg)
		if err != nil {
			return func() error { return err }
		}
		return step
	}

	if cfg.Enabled {
		cfg.Host = host
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, newApp, cfg); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := hal.RunWindow(newApp, hal.WindowConfig{Host: host, Scale: windowScale}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
