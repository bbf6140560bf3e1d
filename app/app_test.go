package app

import (
	"bytes"
	"context"
	"image/color"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"specter/engine/quarkgl"
	"specter/hal"
	"specter/internal/appearance"
	"specter/internal/assets"
	"specter/internal/binding"
	"specter/internal/feed"
)

func model(name string) []byte {
	return []byte("name: " + name + "\nnodes:\n  - name: body\n    primitive: box\n    size: [1, 1, 1]\n    color: \"#8a6f3c\"\n")
}

func newApp(t *testing.T, f Feed, hud bool, names ...string) (*App, hal.HAL, *bytes.Buffer) {
	t.Helper()
	src := assets.NewMemSource(nil)
	for _, n := range names {
		src.Put(n, model(n))
	}
	h := hal.New(hal.Size{Width: 96, Height: 64})
	logs := &bytes.Buffer{}
	a := New(context.Background(), h, Config{
		Manifest: appearance.Manifest{Appearances: []string{"Lantern", "Skeleton"}},
		Source:   src,
		Feed:     f,
		HUD:      hud,
	}, zerolog.New(logs))
	return a, h, logs
}

func settle(t *testing.T, a *App) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, a.Settle(ctx))
}

func TestStepBindsAndSyncsFromFeed(t *testing.T) {
	rec := &feed.Recording{Messages: []feed.Message{
		feed.SetAppearanceName("e1", "Lantern"),
		{Type: feed.TypeTick, Seq: 1, Entries: []feed.TickEntry{{Entity: "e1", Translation: [2]float32{3, 4}}}},
		{Type: feed.TypeTick, Seq: 2, Entries: []feed.TickEntry{{Entity: "e1", Translation: [2]float32{3, 4}}}},
	}}
	a, _, _ := newApp(t, rec.Playback(false), false, "Lantern", "Skeleton")

	// The model may or may not be ready on the first frame; either way the
	// entity is bound by the frame after its load is applied.
	require.NoError(t, a.Step())
	settle(t, a)
	require.NoError(t, a.Step())

	assert.Equal(t, binding.Bound, a.Bindings().State("e1"))
	inst, ok := a.Bindings().Instance("e1")
	require.True(t, ok)
	assert.Equal(t, quarkgl.V3(3, 0, -4), inst.Position)
	assert.True(t, inst.CastShadow)
	_, seq := a.Tick()
	assert.Equal(t, uint64(2), seq)
}

func TestLoopingFeedKeepsInstance(t *testing.T) {
	rec := &feed.Recording{Messages: []feed.Message{
		feed.SetAppearanceName("e1", "Lantern"),
		{Type: feed.TypeTick, Seq: 1, Entries: []feed.TickEntry{{Entity: "e1", Translation: [2]float32{1, 2}}}},
	}}
	a, _, _ := newApp(t, rec.Playback(true), false, "Lantern", "Skeleton")
	require.NoError(t, a.Step())
	settle(t, a)

	first, ok := a.Bindings().Instance("e1")
	require.True(t, ok)
	for i := 0; i < 3; i++ {
		require.NoError(t, a.Step())
	}
	again, ok := a.Bindings().Instance("e1")
	require.True(t, ok)
	assert.Same(t, first, again)
	assert.Equal(t, 1, a.Scene().Len())
}

func TestDirectAssignmentWithoutFeed(t *testing.T) {
	a, _, _ := newApp(t, nil, false, "Lantern", "Skeleton")
	a.SetAppearance("e1", 1)
	settle(t, a)
	assert.Equal(t, binding.Bound, a.Bindings().State("e1"))
	assert.Equal(t, 1, a.Scene().Len())

	a.Clear("e1")
	require.NoError(t, a.Step())
	assert.Equal(t, 0, a.Scene().Len())
}

func TestFailedLoadStallsEntity(t *testing.T) {
	a, _, logs := newApp(t, nil, true, "Lantern")
	a.SetAppearance("e3", 1)
	settle(t, a)
	require.NoError(t, a.Step())

	assert.True(t, a.Bindings().Stalled("e3"))
	st, err := a.Cache().Status(1)
	assert.Equal(t, assets.StatusFailed, st)
	assert.True(t, eris.Is(err, assets.ErrLoadFailed))
	assert.Contains(t, logs.String(), "asset load failed")
	assert.Contains(t, logs.String(), `"component":"binding"`)
}

type panickyFeed struct{ n int }

func (p *panickyFeed) Drain() []feed.Message {
	p.n++
	if p.n == 1 {
		panic("corrupt snapshot")
	}
	return nil
}

func TestStepRecoversPanic(t *testing.T) {
	a, _, logs := newApp(t, &panickyFeed{}, true, "Lantern", "Skeleton")
	assert.NoError(t, a.Step())
	assert.Equal(t, 1, a.Panics())
	assert.Contains(t, logs.String(), "frame panicked")
	assert.NoError(t, a.Step())
	assert.Equal(t, 1, a.Panics())
}

func TestHUDDrawsIntoFramebuffer(t *testing.T) {
	count := func(hud bool) int {
		a, h, _ := newApp(t, nil, hud, "Lantern", "Skeleton")
		require.NoError(t, a.Step())
		img := h.Display().Framebuffer().Image()
		n := 0
		for y := 0; y < 12; y++ {
			for x := 0; x < img.Bounds().Dx(); x++ {
				if img.RGBAAt(x, y) == hudFG {
					n++
				}
			}
		}
		return n
	}
	assert.Zero(t, count(false))
	assert.Positive(t, count(true))
}

func TestViewerUsesConfiguredRenderMode(t *testing.T) {
	h := hal.New(hal.Size{Width: 32, Height: 24})
	a := New(context.Background(), h, Config{
		Manifest:   appearance.Manifest{Appearances: []string{"Lantern"}},
		Source:     assets.NewMemSource(nil),
		RenderMode: quarkgl.RenderWireframe,
	}, zerolog.Nop())
	assert.Equal(t, quarkgl.RenderWireframe, a.viewer.r.Mode)
	require.NoError(t, a.Step())
}

func TestHUDWrapsAndClips(t *testing.T) {
	h := NewHUD()
	img := hal.New(hal.Size{Width: 40, Height: 20}).Display().Framebuffer().Image()
	rows := h.Draw(img, []Line{{Text: "bound 12  pending 3  synced 12  stalled 1"}, {Text: "x", Alert: true}})
	assert.Greater(t, rows, 1)
	assert.LessOrEqual(t, rows*int(h.lineHeight), 20)

	d := hudDisplay{img: img}
	d.SetPixel(-1, 500, color.RGBA{R: 1})
	assert.NoError(t, d.Display())
}

func TestRunHeadlessSession(t *testing.T) {
	src := assets.NewMemSource(map[string][]byte{"Lantern": model("Lantern")})
	rec := &feed.Recording{Messages: []feed.Message{
		feed.SetAppearance("e1", 0),
		{Type: feed.TypeTick, Seq: 1, Entries: []feed.TickEntry{{Entity: "e1", Translation: [2]float32{1, 2}}}},
	}}
	var a *App
	err := hal.RunHeadless(context.Background(), func(h hal.HAL) func() error {
		a = New(context.Background(), h, Config{
			Manifest: appearance.Manifest{Appearances: []string{"Lantern"}},
			Source:   src,
			Feed:     rec.Playback(true),
			HUD:      true,
		}, zerolog.Nop())
		return a.Step
	}, hal.HeadlessConfig{Size: hal.Size{Width: 64, Height: 48}, Hz: 500, Ticks: 5})
	require.NoError(t, err)
	settle(t, a)
	require.NoError(t, a.Step())
	assert.Equal(t, binding.Bound, a.Bindings().State("e1"))
}
