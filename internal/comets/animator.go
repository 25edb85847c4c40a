package comets

import (
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is the lifecycle state of an Animator.
type State int

const (
	Stopped State = iota
	Running
	Suppressed
	Disposed
	// Inert means no drawing context was available; the animator never runs.
	Inert
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Suppressed:
		return "suppressed"
	case Disposed:
		return "disposed"
	case Inert:
		return "inert"
	default:
		return "stopped"
	}
}

type Option func(*Animator)

// WithRand fixes the random source, for reproducible frames.
func WithRand(rng *rand.Rand) Option {
	return func(a *Animator) { a.rng = rng }
}

func WithLogger(log *zap.Logger) Option {
	return func(a *Animator) { a.log = log }
}

// Animator drives the comet layer on a Canvas.
type Animator struct {
	mu sync.Mutex

	host   Host
	canvas Canvas
	ctx    Context2D
	sched  FrameScheduler
	rng    *rand.Rand
	log    *zap.Logger

	dpr     float64
	width   float64
	height  float64
	profile Profile
	comets  []Comet

	running    bool
	suppressed bool
	disposed   bool
	frame      FrameHandle
	generation uint64
	frames     uint64

	removers []func()
}

// New sizes the canvas, seeds the comets and subscribes to host changes.
// It does not start the loop; call Start. If the canvas has no 2D context the
// returned Animator is inert and every method is a no-op.
func New(host Host, canvas Canvas, sched FrameScheduler, opts ...Option) *Animator {
	a := &Animator{
		host:   host,
		canvas: canvas,
		sched:  sched,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	if a.rng == nil {
		now := uint64(time.Now().UnixNano())
		a.rng = rand.New(rand.NewPCG(now, now>>17|0x9e3779b97f4a7c15))
	}

	if canvas == nil || host == nil || sched == nil {
		a.log.Info("ambient effect disabled: missing host, canvas or scheduler")
		return a
	}
	a.ctx = canvas.Context2D()
	if a.ctx == nil {
		a.log.Info("ambient effect disabled: 2d context unavailable")
		return a
	}

	a.resize()
	a.regenerate()
	a.suppressed = host.PrefersReducedMotion()

	a.removers = append(a.removers,
		host.OnResize(a.handleResize),
		host.OnVisibilityChange(a.handleVisibility),
		host.OnReducedMotionChange(a.handleReducedMotion),
	)
	return a
}

// Start begins the frame loop unless reduced motion is requested, the host is
// hidden, or the loop is already running.
func (a *Animator) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.startLocked()
}

// Stop cancels the pending frame. Stopping a stopped animator is a no-op.
func (a *Animator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
}

// Dispose stops the loop and removes every host listener. After Dispose the
// animator cannot be restarted.
func (a *Animator) Dispose() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.disposed {
		return
	}
	a.stopLocked()
	a.disposed = true
	for _, remove := range a.removers {
		if remove != nil {
			remove()
		}
	}
	a.removers = nil
	a.log.Debug("ambient effect disposed", zap.Uint64("frames", a.frames))
}

// State reports the current lifecycle state.
func (a *Animator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stateLocked()
}

func (a *Animator) stateLocked() State {
	switch {
	case a.ctx == nil:
		return Inert
	case a.disposed:
		return Disposed
	case a.suppressed:
		return Suppressed
	case a.running:
		return Running
	default:
		return Stopped
	}
}

// Snapshot is a point-in-time copy of the animation state.
type Snapshot struct {
	State   string  `json:"state"`
	Profile Profile `json:"profile"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	DPR     float64 `json:"dpr"`
	Frames  uint64  `json:"frames"`
	Comets  []Comet `json:"comets"`
}

func (a *Animator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	comets := make([]Comet, len(a.comets))
	copy(comets, a.comets)
	return Snapshot{
		State:   a.stateLocked().String(),
		Profile: a.profile,
		Width:   a.width,
		Height:  a.height,
		DPR:     a.dpr,
		Frames:  a.frames,
		Comets:  comets,
	}
}

func (a *Animator) startLocked() {
	if a.ctx == nil || a.disposed || a.suppressed || a.running || a.host.Hidden() {
		return
	}
	a.running = true
	a.requestLocked()
	a.log.Debug("ambient effect running")
}

func (a *Animator) stopLocked() {
	if !a.running {
		return
	}
	a.running = false
	a.generation++
	a.sched.CancelFrame(a.frame)
	a.log.Debug("ambient effect stopped")
}

func (a *Animator) requestLocked() {
	a.generation++
	gen := a.generation
	a.frame = a.sched.RequestFrame(func(time.Time) { a.tick(gen) })
}

// tick draws one frame and schedules the next. A callback from a cancelled
// request finds a newer generation and does nothing.
func (a *Animator) tick(gen uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.running || gen != a.generation {
		return
	}
	a.drawLocked()
	a.frames++
	a.requestLocked()
}

func (a *Animator) drawLocked() {
	a.ctx.ClearRect(0, 0, a.width, a.height)
	for i := range a.comets {
		c := &a.comets[i]
		a.ctx.Stroke(c.segment())
		c.advance()
		if c.offscreen(a.width) {
			*c = a.profile.respawn(a.rng, a.width, a.height)
		}
	}
}

func (a *Animator) resize() {
	dpr := a.host.DevicePixelRatio()
	if dpr <= 0 {
		dpr = 1
	}
	w, h := a.host.Viewport()
	a.dpr = dpr
	a.width = floorAtLeastOne(w)
	a.height = floorAtLeastOne(h)
	a.canvas.SetSize(int(a.width*dpr), int(a.height*dpr))
	a.ctx.SetTransform(dpr, 0, 0, dpr, 0, 0)
}

func (a *Animator) regenerate() {
	a.profile = ProfileFor(a.width)
	a.comets = make([]Comet, a.profile.Count)
	for i := range a.comets {
		a.comets[i] = a.profile.spawn(a.rng, a.width, a.height)
	}
}

func (a *Animator) handleResize() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.disposed {
		return
	}
	a.resize()
	a.regenerate()
	a.log.Debug("ambient effect resized",
		zap.Float64("width", a.width),
		zap.Float64("height", a.height),
		zap.String("profile", a.profile.Name),
	)
}

func (a *Animator) handleVisibility() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.disposed {
		return
	}
	if a.host.Hidden() {
		a.stopLocked()
		return
	}
	a.startLocked()
}

func (a *Animator) handleReducedMotion() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.disposed {
		return
	}
	if a.host.PrefersReducedMotion() {
		a.suppressed = true
		a.stopLocked()
		a.ctx.ClearRect(0, 0, a.width, a.height)
		return
	}
	if a.suppressed {
		a.suppressed = false
		a.regenerate()
		a.startLocked()
	}
}
