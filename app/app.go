// Package app wires one viewing session: the asset cache, the binding manager,
// the frame synchronizer and the simulation feed, stepped once per frame by a
// hal runner.
package app

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"specter/engine/quarkgl"
	"specter/hal"
	"specter/internal/appearance"
	"specter/internal/assets"
	"specter/internal/binding"
	"specter/internal/buildinfo"
	"specter/internal/feed"
	"specter/internal/frame"
	"specter/internal/logging"
)

// Feed is a source of simulation messages drained once per frame.
// *feed.Client and *feed.Playback satisfy it.
type Feed interface {
	Drain() []feed.Message
}

// Config is everything a session needs besides the host.
type Config struct {
	Manifest appearance.Manifest
	Source   assets.Source
	Assets   assets.Options
	// Feed may be nil; the session then only renders what is assigned directly.
	Feed Feed
	// HUD draws the status overlay.
	HUD bool
	// RenderMode defaults to flat solid shading.
	RenderMode quarkgl.RenderMode
}

// App is one viewing session. Every method must be called from the frame goroutine.
type App struct {
	log    zerolog.Logger
	h      hal.HAL
	record *appearance.Record

	scene    *quarkgl.Scene
	cache    *assets.Cache
	bindings *binding.Manager[string]
	sync     *frame.Synchronizer[string]
	applier  *feed.Applier
	feed     Feed
	viewer   *Viewer
	hud      bool

	tick   frame.Tick[string]
	seq    uint64
	panics int
	last   string
}

// New builds a session on h and starts loading every appearance in the manifest.
func New(ctx context.Context, h hal.HAL, cfg Config, log zerolog.Logger) *App {
	record := cfg.Manifest.Record()
	scene := quarkgl.NewScene()
	viewer := NewViewer(h.Display().Framebuffer(), cfg.RenderMode)

	cache := assets.NewCache(cfg.Source, cfg.Assets, logging.Component(log, "assets"))
	bindings := binding.NewManager[string](cache, scene, logging.Component(log, "binding"))
	cache.Subscribe(bindings)

	rig := frame.RigFromManifest(cfg.Manifest.Camera)
	a := &App{
		log:      logging.Component(log, "app"),
		h:        h,
		record:   record,
		scene:    scene,
		cache:    cache,
		bindings: bindings,
		sync:     frame.NewSynchronizer[string](bindings, scene, viewer, rig, logging.Component(log, "frame")),
		applier:  feed.NewApplier(record, bindings, logging.Component(log, "feed")),
		feed:     cfg.Feed,
		viewer:   viewer,
		hud:      cfg.HUD,
	}
	a.log.Info().Dict("build", buildinfo.Dict()).Strs("appearances", record.Names()).
		Stringer("camera", rig.Mode).Stringer("render", cfg.RenderMode).Msg("session started")
	cache.Load(ctx, record.Names())
	return a
}

// Step runs one frame: apply finished loads, apply feed events, sync the
// latest tick, draw and present. A panic inside the frame is logged and the
// frame dropped; the loop keeps running.
func (a *App) Step() (err error) {
	defer func() {
		if r := recover(); r != nil {
			a.panics++
			a.last = fmt.Sprint(r)
			a.log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("frame panicked")
			err = nil
		}
	}()

	a.cache.Drain()
	if a.feed != nil {
		if tick, seq, ok := a.applier.Apply(a.feed.Drain()); ok {
			a.tick, a.seq = tick, seq
		}
	}
	a.sync.Render(a.tick)
	if a.hud {
		a.viewer.Overlay(a.status())
	}
	return eris.Wrap(a.viewer.Present(), "present")
}

func (a *App) status() []Line {
	ready, loading, failed := a.cache.Counts()
	c := a.bindings.Counts()
	st := a.sync.Last()
	lines := []Line{
		{Text: fmt.Sprintf("specter %s  t=%d  %dfps", buildinfo.Short(), a.seq, a.fps())},
		{Text: fmt.Sprintf("assets %d/%d  loading %d", ready, a.record.Len(), loading)},
		{Text: fmt.Sprintf("bound %d  pending %d  synced %d", c.Bound, c.Pending, st.Synced)},
	}
	if failed > 0 || c.Stalled > 0 {
		lines = append(lines, Line{Text: fmt.Sprintf("failed %d  stalled %d", failed, c.Stalled), Alert: true})
	}
	if a.panics > 0 {
		lines = append(lines, Line{Text: fmt.Sprintf("panics %d: %s", a.panics, a.last), Alert: true})
	}
	return lines
}

func (a *App) fps() uint64 {
	t := a.h.Time()
	if ms := t.Millis(); ms > 0 {
		return t.Frames() * 1000 / ms
	}
	return 0
}

// SetAppearance assigns appearance i to entity e.
func (a *App) SetAppearance(e string, i appearance.Index) { a.bindings.SetAppearance(e, i) }

// Clear forgets entity e.
func (a *App) Clear(e string) { a.bindings.Clear(e) }

// Settle waits for every started asset load to be applied.
func (a *App) Settle(ctx context.Context) error { return a.cache.Settle(ctx) }

// Bindings exposes the binding manager for inspection.
func (a *App) Bindings() *binding.Manager[string] { return a.bindings }

// Cache exposes the asset cache for inspection.
func (a *App) Cache() *assets.Cache { return a.cache }

// Scene returns the rendered scene.
func (a *App) Scene() *quarkgl.Scene { return a.scene }

// Tick returns the latest tick and its sequence number.
func (a *App) Tick() (frame.Tick[string], uint64) { return a.tick, a.seq }

// Panics returns how many frames were dropped to a panic.
func (a *App) Panics() int { return a.panics }
