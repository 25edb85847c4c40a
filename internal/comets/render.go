package comets

import (
	"context"
	"time"
)

// MaxRenderFrames bounds headless renders.
const MaxRenderFrames = 2000

// Render runs the effect headlessly on a viewport for the given number of
// frames and returns the canvas holding the last frame.
func Render(width, height, dpr float64, frames int, opts ...Option) (*Recorder, Snapshot) {
	if frames < 1 {
		frames = 1
	}
	if frames > MaxRenderFrames {
		frames = MaxRenderFrames
	}

	host := NewStaticHost(width, height, dpr)
	canvas := &Recorder{}
	clock := NewManualClock()
	a := New(host, canvas, clock, opts...)

	a.Start()
	t := time.Unix(0, 0)
	for i := 0; i < frames; i++ {
		t = t.Add(DefaultFrameInterval)
		if clock.Step(t) == 0 {
			break
		}
	}
	snap := a.Snapshot()
	a.Dispose()
	return canvas, snap
}

// Play runs the effect in real time on a PaintClock until ctx is done and
// returns the canvas holding the last frame drawn. The animator is disposed
// and the clock closed before Play returns.
func Play(ctx context.Context, width, height, dpr float64, interval time.Duration, opts ...Option) (*Recorder, Snapshot) {
	host := NewStaticHost(width, height, dpr)
	canvas := &Recorder{}
	clock := NewPaintClock(interval)
	defer clock.Close()

	a := New(host, canvas, clock, opts...)
	a.Start()
	<-ctx.Done()

	a.Stop()
	snap := a.Snapshot()
	a.Dispose()
	return canvas, snap
}
