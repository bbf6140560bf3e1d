package hal

import "time"

type hostTime struct {
	now func() time.Time

	start  time.Time
	millis uint64
	frames uint64
}

func newHostTime() *hostTime {
	return newHostTimeWithClock(time.Now)
}

func newHostTimeWithClock(now func() time.Time) *hostTime {
	return &hostTime{now: now}
}

func (t *hostTime) Millis() uint64 { return t.millis }
func (t *hostTime) Frames() uint64 { return t.frames }

// step advances the clock by one frame.
func (t *hostTime) step() {
	now := t.now()
	if t.start.IsZero() {
		t.start = now
	}
	t.millis = uint64(now.Sub(t.start) / time.Millisecond)
	t.frames++
}
