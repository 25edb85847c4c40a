package comets

import (
	"sort"
	"sync"
	"time"
)

// DefaultFrameInterval approximates a 60 Hz display.
const DefaultFrameInterval = time.Second / 60

// PaintClock is a FrameScheduler for processes without a display. A ticker at
// the refresh interval stands in for the paint cycle: requested callbacks are
// batched and run, in request order, once per tick. Callbacks requested while
// a batch runs wait for the next tick. A host with a real paint cycle
// supplies its own FrameScheduler instead.
type PaintClock struct {
	mu      sync.Mutex
	next    FrameHandle
	pending map[FrameHandle]func(time.Time)
	ticker  *time.Ticker
	stopCh  chan struct{}
	doneCh  chan struct{}
	closed  bool
}

func NewPaintClock(interval time.Duration) *PaintClock {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	c := &PaintClock{
		pending: make(map[FrameHandle]func(time.Time)),
		ticker:  time.NewTicker(interval),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	go c.run()
	return c
}

func (c *PaintClock) RequestFrame(fn func(time.Time)) FrameHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	if !c.closed {
		c.pending[c.next] = fn
	}
	return c.next
}

func (c *PaintClock) CancelFrame(h FrameHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, h)
}

// Close stops the clock and drops pending callbacks. Safe to call more than once.
func (c *PaintClock) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.pending = map[FrameHandle]func(time.Time){}
	c.mu.Unlock()

	close(c.stopCh)
	<-c.doneCh
}

func (c *PaintClock) run() {
	defer close(c.doneCh)
	defer c.ticker.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case now := <-c.ticker.C:
			for _, fn := range c.take() {
				fn(now)
			}
		}
	}
}

func (c *PaintClock) take() []func(time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return drain(c.pending)
}

// ManualClock is a FrameScheduler advanced explicitly with Step. It renders
// the effect headlessly and makes frame-by-frame tests deterministic.
type ManualClock struct {
	mu      sync.Mutex
	next    FrameHandle
	pending map[FrameHandle]func(time.Time)
}

func NewManualClock() *ManualClock {
	return &ManualClock{pending: make(map[FrameHandle]func(time.Time))}
}

func (c *ManualClock) RequestFrame(fn func(time.Time)) FrameHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	c.pending[c.next] = fn
	return c.next
}

func (c *ManualClock) CancelFrame(h FrameHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, h)
}

// Pending is the number of callbacks waiting for the next Step.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Step runs every callback pending at the time of the call and reports how
// many ran.
func (c *ManualClock) Step(now time.Time) int {
	c.mu.Lock()
	batch := drain(c.pending)
	c.mu.Unlock()
	for _, fn := range batch {
		fn(now)
	}
	return len(batch)
}

// drain empties pending and returns its callbacks in handle order.
func drain(pending map[FrameHandle]func(time.Time)) []func(time.Time) {
	handles := make([]FrameHandle, 0, len(pending))
	for h := range pending {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	out := make([]func(time.Time), 0, len(handles))
	for _, h := range handles {
		out = append(out, pending[h])
		delete(pending, h)
	}
	return out
}
