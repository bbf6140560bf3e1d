// Package assets loads visual templates asynchronously and hands them to the
// binding layer once they are ready.
//
// Loads run on their own goroutines, but their results are only applied when the
// frame goroutine calls Drain. Every other Cache method must also be called from
// the frame goroutine; the cache does no locking of its own.
package assets

import (
	"context"
	"io"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"specter/engine/quarkgl"
	"specter/internal/appearance"
)

// ErrLoadFailed wraps every error reported for a failed load.
var ErrLoadFailed = eris.New("asset load failed")

// Status is the load state of one appearance index.
type Status uint8

const (
	StatusAbsent Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "absent"
	}
}

// Listener is notified on the frame goroutine when a load finishes.
type Listener interface {
	Resolve(i appearance.Index)
	Fail(i appearance.Index, err error)
}

// Decoder builds a model from raw asset bytes.
type Decoder func(io.Reader) (*quarkgl.Node, error)

// Options tunes a Cache.
type Options struct {
	// Concurrency bounds the number of loads reading at once. Zero means 4.
	Concurrency int64
	// Timeout bounds a single load. Zero means no timeout.
	Timeout time.Duration
	// Decode defaults to quarkgl.DecodeModel.
	Decode Decoder
}

type result struct {
	index appearance.Index
	name  string
	node  *quarkgl.Node
	err   error
}

type slot struct {
	name     string
	status   Status
	template *quarkgl.Node
	err      error
}

// Cache stores one template per appearance index.
type Cache struct {
	src       Source
	decode    Decoder
	timeout   time.Duration
	sem       *semaphore.Weighted
	log       zerolog.Logger
	results   chan result
	slots     map[appearance.Index]*slot
	listeners []Listener
	inflight  int
}

// NewCache returns an empty cache reading from src.
func NewCache(src Source, opts Options, log zerolog.Logger) *Cache {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Decode == nil {
		opts.Decode = quarkgl.DecodeModel
	}
	return &Cache{
		src:     src,
		decode:  opts.Decode,
		timeout: opts.Timeout,
		sem:     semaphore.NewWeighted(opts.Concurrency),
		log:     log,
		results: make(chan result, 64),
		slots:   make(map[appearance.Index]*slot),
	}
}

// Subscribe registers l for completion notifications.
func (c *Cache) Subscribe(l Listener) {
	c.listeners = append(c.listeners, l)
}

// Load starts fetching every name; the position of a name in names is its
// appearance index. Load returns immediately. An index that has already been
// requested is skipped with a warning.
func (c *Cache) Load(ctx context.Context, names []string) {
	for i, name := range names {
		idx := appearance.Index(i)
		if s, ok := c.slots[idx]; ok {
			c.log.Warn().Int("index", i).Str("name", name).Stringer("status", s.status).
				Msg("appearance already requested, skipping")
			continue
		}
		c.slots[idx] = &slot{name: name, status: StatusLoading}
		c.inflight++
		go c.fetch(ctx, idx, name)
	}
}

func (c *Cache) fetch(ctx context.Context, idx appearance.Index, name string) {
	node, err := c.read(ctx, name)
	c.results <- result{index: idx, name: name, node: node, err: err}
}

func (c *Cache) read(ctx context.Context, name string) (*quarkgl.Node, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, eris.Wrapf(err, "wait for load slot")
	}

	rc, err := c.src.Open(ctx, name)
	if err != nil {
		c.sem.Release(1)
		return nil, err
	}

	// The decode goroutine owns rc and the load slot until the decoder returns,
	// even when the load has already been reported as timed out.
	type decoded struct {
		node *quarkgl.Node
		err  error
	}
	done := make(chan decoded, 1)
	go func() {
		defer c.sem.Release(1)
		n, err := c.decode(ctxReader{ctx: ctx, r: rc})
		if cerr := rc.Close(); err == nil && cerr != nil {
			err = eris.Wrap(cerr, "close")
		}
		done <- decoded{node: n, err: err}
	}()
	select {
	case d := <-done:
		if d.err != nil {
			return nil, eris.Wrap(d.err, "decode")
		}
		return d.node, nil
	case <-ctx.Done():
		return nil, eris.Wrap(ctx.Err(), "decode")
	}
}

// ctxReader fails reads once ctx is done so an abandoned decode stops at its
// next read.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r ctxReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Drain applies every finished load without blocking and returns how many were
// applied. Call it once per tick from the frame goroutine.
func (c *Cache) Drain() int {
	n := 0
	for {
		select {
		case r := <-c.results:
			c.apply(r)
			n++
		default:
			return n
		}
	}
}

// Settle blocks until every started load has been applied or ctx is done.
func (c *Cache) Settle(ctx context.Context) error {
	for c.inflight > 0 {
		select {
		case r := <-c.results:
			c.apply(r)
		case <-ctx.Done():
			return eris.Wrapf(ctx.Err(), "%d loads still in flight", c.inflight)
		}
	}
	return nil
}

func (c *Cache) apply(r result) {
	c.inflight--
	s := c.slots[r.index]
	if r.err == nil && r.node == nil {
		r.err = eris.New("decoder returned no model")
	}
	if r.err != nil {
		s.status = StatusFailed
		s.err = eris.Wrapf(ErrLoadFailed, "%s: %v", r.name, r.err)
		c.log.Error().Err(r.err).Int("index", int(r.index)).Str("name", r.name).Msg("asset load failed")
		for _, l := range c.listeners {
			l.Fail(r.index, s.err)
		}
		return
	}

	s.template = Prepare(r.node)
	s.status = StatusReady
	c.log.Info().Int("index", int(r.index)).Str("name", r.name).Msg("asset loaded")
	for _, l := range c.listeners {
		l.Resolve(r.index)
	}
}

// Get returns the template for i, if loaded. It never blocks.
func (c *Cache) Get(i appearance.Index) (*quarkgl.Node, bool) {
	s, ok := c.slots[i]
	if !ok || s.status != StatusReady {
		return nil, false
	}
	return s.template, true
}

// Status reports the load state of i and, for failed loads, the error.
func (c *Cache) Status(i appearance.Index) (Status, error) {
	s, ok := c.slots[i]
	if !ok {
		return StatusAbsent, nil
	}
	return s.status, s.err
}

// Counts returns the number of indices in each state.
func (c *Cache) Counts() (ready, loading, failed int) {
	for _, s := range c.slots {
		switch s.status {
		case StatusReady:
			ready++
		case StatusLoading:
			loading++
		case StatusFailed:
			failed++
		}
	}
	return ready, loading, failed
}

// InFlight returns the number of loads not yet applied.
func (c *Cache) InFlight() int { return c.inflight }
