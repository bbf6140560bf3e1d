package hal

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Size  Size
	Hz    int
	Ticks uint64
}

// RunHeadless steps the viewer on a ticker without opening a window. It
// returns after cfg.Ticks frames (0 = run until ctx is done).
func RunHeadless(ctx context.Context, newApp func(HAL) func() error, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}

	h := newHost(cfg.Size)
	step := newApp(h)

	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return eris.Errorf("invalid headless hz: %d", cfg.Hz)
	}
	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			h.t.step()
			if step != nil {
				if err := step(); err != nil {
					return err
				}
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
		}
	}
}
