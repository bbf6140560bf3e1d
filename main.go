package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"

	"specter/app"
	"specter/hal"
	"specter/internal/appearance"
	"specter/internal/assets"
	"specter/internal/buildinfo"
	"specter/internal/config"
	"specter/internal/feed"
	"specter/internal/logging"
)

func main() {
	var (
		configFile = flag.String("config", "", "KEY=VALUE config file (environment wins).")
		replay     = flag.String("replay", "", "Play a feed recording (.ndjson or .ndjson.zst) instead of dialing.")
		loop       = flag.Bool("loop", false, "Loop the -replay recording.")
		noHUD      = flag.Bool("no-hud", false, "Hide the status overlay.")
		headless   = flag.Bool("headless", false, "Run without a window.")
		hz         = flag.Int("hz", 0, "Frame rate (0 = config).")
		ticks      = flag.Int("ticks", -1, "Stop after N frames in headless mode (0 = run forever, -1 = config).")
	)
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *headless {
		cfg.Headless = true
	}
	if *hz > 0 {
		cfg.Hz = *hz
	}
	if *ticks >= 0 {
		cfg.Ticks = *ticks
	}

	log, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogPretty)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(cfg, *replay, *loop, !*noHUD, log); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error().Err(err).Msg("viewer stopped")
		os.Exit(1)
	}
}

func run(cfg config.Config, replay string, loop, hud bool, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	manifest := appearance.DefaultManifest()
	if cfg.Manifest != "" {
		m, err := appearance.LoadManifest(cfg.Manifest)
		if err != nil {
			return err
		}
		manifest = m
	}
	if cfg.Follow {
		manifest.Camera.Follow = true
	}

	var src app.Feed
	switch {
	case replay != "":
		rec, err := feed.LoadRecording(replay)
		if err != nil {
			return err
		}
		log.Info().Str("path", replay).Int("ticks", rec.Ticks()).Msg("replaying recording")
		src = rec.Playback(loop)
	case cfg.FeedURL != "":
		c, err := feed.Dial(ctx, cfg.FeedURL, logging.Component(log, "feed"))
		if err != nil {
			return err
		}
		defer c.Close()
		src = c
	default:
		log.Warn().Msg("no feed configured, showing an empty scene")
	}

	newApp := func(h hal.HAL) func() error {
		a := app.New(ctx, h, app.Config{
			Manifest: manifest,
			Source:   assets.DirSource{Root: cfg.AssetDir},
			Assets: assets.Options{
				Concurrency: int64(cfg.LoadConcurrency),
				Timeout:     cfg.LoadTimeout(),
			},
			Feed:       src,
			HUD:        hud,
			RenderMode: cfg.Render(),
		}, log)
		return a.Step
	}
	size := hal.Size{Width: cfg.Width, Height: cfg.Height}

	if cfg.Headless {
		return hal.RunHeadless(ctx, newApp, hal.HeadlessConfig{
			Size:  size,
			Hz:    cfg.Hz,
			Ticks: uint64(cfg.Ticks),
		})
	}
	return hal.RunWindow(newApp, hal.WindowConfig{
		Size:  size,
		Hz:    cfg.Hz,
		Title: "Specter (" + buildinfo.Short() + ")",
	})
}
