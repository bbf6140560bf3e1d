package assets

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"specter/engine/quarkgl"
	"specter/internal/appearance"
)

const lanternModel = `
name: Lantern
nodes:
  - name: lantern
    primitive: box
    position: [3, 3, 3]
    children:
      - name: flame
        light: {kind: spot, intensity: 900, angle: 0.4}
`

const wallModel = `
name: StoneWall
nodes:
  - {name: left, primitive: box}
  - {name: right, primitive: box, position: [1, 0, 0]}
`

// gatedSource blocks each Open until the test releases that name.
type gatedSource struct {
	mu    sync.Mutex
	files map[string]string
	gates map[string]chan struct{}
}

func newGatedSource(files map[string]string) *gatedSource {
	g := &gatedSource{files: files, gates: make(map[string]chan struct{})}
	for name := range files {
		g.gates[name] = make(chan struct{})
	}
	return g
}

func (g *gatedSource) release(name string) { close(g.gates[name]) }

func (g *gatedSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	g.mu.Lock()
	gate, ok := g.gates[name]
	body := g.files[name]
	g.mu.Unlock()
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "%q", name)
	}
	select {
	case <-gate:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return io.NopCloser(bytes.NewReader([]byte(body))), nil
}

type recorder struct {
	resolved []appearance.Index
	failed   map[appearance.Index]error
}

func (r *recorder) Resolve(i appearance.Index) { r.resolved = append(r.resolved, i) }
func (r *recorder) Fail(i appearance.Index, err error) {
	if r.failed == nil {
		r.failed = make(map[appearance.Index]error)
	}
	r.failed[i] = err
}

func settle(t *testing.T, c *Cache) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Settle(ctx))
}

func TestLoadIsAsynchronous(t *testing.T) {
	src := newGatedSource(map[string]string{"Lantern": lanternModel})
	c := NewCache(src, Options{}, zerolog.Nop())
	rec := &recorder{}
	c.Subscribe(rec)

	c.Load(context.Background(), []string{"Lantern"})
	_, ok := c.Get(0)
	assert.False(t, ok)
	st, _ := c.Status(0)
	assert.Equal(t, StatusLoading, st)
	assert.Equal(t, 0, c.Drain())

	src.release("Lantern")
	settle(t, c)

	tmpl, ok := c.Get(0)
	require.True(t, ok)
	assert.Equal(t, []appearance.Index{0}, rec.resolved)
	assert.Equal(t, "lantern", tmpl.Name, "single-child root is unwrapped")
	assert.Equal(t, quarkgl.Vec3{}, tmpl.Position, "template sits at the origin")
}

func TestCompletionOrderIsFree(t *testing.T) {
	src := newGatedSource(map[string]string{"Lantern": lanternModel, "StoneWall": wallModel})
	c := NewCache(src, Options{}, zerolog.Nop())
	rec := &recorder{}
	c.Subscribe(rec)

	c.Load(context.Background(), []string{"Lantern", "StoneWall"})
	src.release("StoneWall")
	for c.Drain() == 0 {
		time.Sleep(time.Millisecond)
	}
	_, ok := c.Get(1)
	assert.True(t, ok)
	_, ok = c.Get(0)
	assert.False(t, ok)

	src.release("Lantern")
	settle(t, c)
	assert.Equal(t, []appearance.Index{1, 0}, rec.resolved)

	wall, _ := c.Get(1)
	assert.Equal(t, "StoneWall", wall.Name, "multi-child root stays a group")
}

func TestPrepareAppliesStudioLights(t *testing.T) {
	src := NewMemSource(map[string][]byte{"Lantern": []byte(lanternModel)})
	c := NewCache(src, Options{}, zerolog.Nop())
	c.Load(context.Background(), []string{"Lantern"})
	settle(t, c)

	tmpl, ok := c.Get(0)
	require.True(t, ok)
	tmpl.Traverse(func(n *quarkgl.Node) {
		assert.True(t, n.CastShadow, n.Name)
		assert.True(t, n.ReceiveShadow, n.Name)
	})
	l := tmpl.Find("flame").Light
	require.NotNil(t, l)
	assert.InDelta(t, 4.0, l.Intensity, 1e-6)
	assert.EqualValues(t, LightDistance, l.Distance)
	assert.InDelta(t, LightAngle, l.Angle, 1e-6)
	assert.InDelta(t, LightPenumbra, l.Penumbra, 1e-6)
	assert.InDelta(t, LightDecay, l.Decay, 1e-6)
}

func TestFailedLoadIsReported(t *testing.T) {
	src := NewMemSource(map[string][]byte{"Broken": []byte("name: Broken\nnodes: []\n")})
	c := NewCache(src, Options{}, zerolog.Nop())
	rec := &recorder{}
	c.Subscribe(rec)

	c.Load(context.Background(), []string{"Broken", "Missing"})
	settle(t, c)

	for _, i := range []appearance.Index{0, 1} {
		st, err := c.Status(i)
		assert.Equal(t, StatusFailed, st)
		assert.True(t, eris.Is(err, ErrLoadFailed))
		assert.Contains(t, rec.failed, i)
		_, ok := c.Get(i)
		assert.False(t, ok)
	}
	ready, loading, failed := c.Counts()
	assert.Equal(t, [3]int{0, 0, 2}, [3]int{ready, loading, failed})
}

func TestLoadTimeout(t *testing.T) {
	src := newGatedSource(map[string]string{"Lantern": lanternModel})
	c := NewCache(src, Options{Timeout: 20 * time.Millisecond}, zerolog.Nop())
	c.Load(context.Background(), []string{"Lantern"})
	settle(t, c)
	st, err := c.Status(0)
	assert.Equal(t, StatusFailed, st)
	assert.Error(t, err)
}

// closeTracker records when the reader it wraps is closed.
type closeTracker struct {
	io.ReadCloser
	closed *atomic.Bool
}

func (c closeTracker) Close() error {
	c.closed.Store(true)
	return c.ReadCloser.Close()
}

type trackedSource struct {
	Source
	closed atomic.Bool
}

func (s *trackedSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	rc, err := s.Source.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return closeTracker{ReadCloser: rc, closed: &s.closed}, nil
}

func TestLoadTimeoutWaitsForDecoderBeforeClose(t *testing.T) {
	dir := t.TempDir()
	writeZstd(t, filepath.Join(dir, "Lantern.yaml.zst"), lanternModel)
	src := &trackedSource{Source: DirSource{Root: dir}}

	type outcome struct {
		closedEarly bool
		readErr     error
	}
	finished := make(chan outcome, 1)
	slow := func(r io.Reader) (*quarkgl.Node, error) {
		time.Sleep(50 * time.Millisecond)
		closedEarly := src.closed.Load()
		_, err := io.ReadAll(r)
		finished <- outcome{closedEarly: closedEarly, readErr: err}
		return nil, err
	}

	c := NewCache(src, Options{Concurrency: 1, Timeout: 10 * time.Millisecond, Decode: slow}, zerolog.Nop())
	rec := &recorder{}
	c.Subscribe(rec)
	c.Load(context.Background(), []string{"Lantern"})
	settle(t, c)

	st, err := c.Status(0)
	assert.Equal(t, StatusFailed, st)
	assert.True(t, eris.Is(err, ErrLoadFailed))
	assert.Contains(t, rec.failed, appearance.Index(0))

	select {
	case o := <-finished:
		assert.False(t, o.closedEarly, "reader closed while the decoder was still running")
		assert.ErrorIs(t, o.readErr, context.DeadlineExceeded)
	case <-time.After(5 * time.Second):
		t.Fatal("decoder never returned")
	}
	require.Eventually(t, src.closed.Load, time.Second, time.Millisecond)
	require.Eventually(t, func() bool {
		if !c.sem.TryAcquire(1) {
			return false
		}
		c.sem.Release(1)
		return true
	}, time.Second, time.Millisecond, "load slot released after the decoder returned")
}

func TestLoadSkipsRequestedIndex(t *testing.T) {
	src := NewMemSource(map[string][]byte{"Lantern": []byte(lanternModel)})
	var buf bytes.Buffer
	c := NewCache(src, Options{}, zerolog.New(&buf))
	c.Load(context.Background(), []string{"Lantern"})
	c.Load(context.Background(), []string{"Lantern"})
	assert.Equal(t, 1, c.InFlight())
	assert.Contains(t, buf.String(), "already requested")
	settle(t, c)
}

func TestDirSourceReadsCompressedModels(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "StoneWall.yaml"), []byte(wallModel), 0o644))

	writeZstd(t, filepath.Join(dir, "Lantern.yaml.zst"), lanternModel)

	c := NewCache(DirSource{Root: dir}, Options{Concurrency: 1}, zerolog.Nop())
	c.Load(context.Background(), []string{"Lantern", "StoneWall", "Skeleton"})
	settle(t, c)

	_, ok := c.Get(0)
	assert.True(t, ok)
	_, ok = c.Get(1)
	assert.True(t, ok)
	st, err := c.Status(2)
	assert.Equal(t, StatusFailed, st)
	assert.Contains(t, err.Error(), "Skeleton")
}

func TestDirSourceRejectsPaths(t *testing.T) {
	_, err := DirSource{Root: t.TempDir()}.Open(context.Background(), "../etc/passwd")
	assert.True(t, eris.Is(err, ErrNotFound))
}

func writeZstd(t *testing.T, path, body string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	enc, err := zstd.NewWriter(f)
	require.NoError(t, err)
	_, err = enc.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
}
