package hal

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFramebufferPresentPublishes(t *testing.T) {
	fb := newHostFramebuffer(4, 2)
	fb.ClearRGB(7, 6, 14)

	dst := make([]byte, 4*2*4)
	if n := fb.snapshot(dst); n != 0 || dst[0] != 0 {
		t.Fatalf("snapshot before present: n=%d first=%d", n, dst[0])
	}
	if err := fb.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}
	fb.ClearRGB(255, 255, 255)
	if n := fb.snapshot(dst); n != 1 {
		t.Fatalf("presents=%d want 1", n)
	}
	if dst[0] != 7 || dst[1] != 6 || dst[2] != 14 || dst[3] != 0xFF {
		t.Fatalf("front pixel=%v want [7 6 14 255]", dst[:4])
	}
}

func TestHostTimeCountsFromFirstFrame(t *testing.T) {
	now := time.Unix(100, 0)
	ht := newHostTimeWithClock(func() time.Time { return now })
	ht.step()
	if ht.Millis() != 0 || ht.Frames() != 1 {
		t.Fatalf("first frame millis=%d frames=%d", ht.Millis(), ht.Frames())
	}
	now = now.Add(250 * time.Millisecond)
	ht.step()
	if ht.Millis() != 250 || ht.Frames() != 2 {
		t.Fatalf("second frame millis=%d frames=%d", ht.Millis(), ht.Frames())
	}
}

func TestRunHeadlessStopsAfterTicks(t *testing.T) {
	var steps int
	var got HAL
	err := RunHeadless(context.Background(), func(h HAL) func() error {
		got = h
		return func() error { steps++; return nil }
	}, HeadlessConfig{Size: Size{Width: 8, Height: 6}, Hz: 1000, Ticks: 3})
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	if steps != 3 {
		t.Fatalf("steps=%d want 3", steps)
	}
	fb := got.Display().Framebuffer()
	if fb.Width() != 8 || fb.Height() != 6 {
		t.Fatalf("size=%dx%d want 8x6", fb.Width(), fb.Height())
	}
	if got.Time().Frames() != 3 {
		t.Fatalf("frames=%d want 3", got.Time().Frames())
	}
}

func TestRunHeadlessPropagatesStepError(t *testing.T) {
	boom := errors.New("boom")
	err := RunHeadless(context.Background(), func(HAL) func() error {
		return func() error { return boom }
	}, HeadlessConfig{Hz: 1000})
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v want boom", err)
	}
}

func TestRunHeadlessHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RunHeadless(ctx, func(HAL) func() error { return nil }, HeadlessConfig{Hz: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v want context.Canceled", err)
	}
}
