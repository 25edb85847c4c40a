package comets

import "sync"

// StaticHost is a Host whose environment is set programmatically. It backs
// headless rendering and lets callers simulate resizes, tab switches and
// motion-preference changes. Listeners run on the caller's goroutine after
// the host's own lock is released.
type StaticHost struct {
	mu      sync.Mutex
	width   float64
	height  float64
	dpr     float64
	hidden  bool
	reduced bool
	nextID  int
	resize  map[int]func()
	visible map[int]func()
	motion  map[int]func()
}

func NewStaticHost(width, height, dpr float64) *StaticHost {
	return &StaticHost{
		width:   width,
		height:  height,
		dpr:     dpr,
		resize:  make(map[int]func()),
		visible: make(map[int]func()),
		motion:  make(map[int]func()),
	}
}

func (h *StaticHost) Viewport() (float64, float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width, h.height
}

func (h *StaticHost) DevicePixelRatio() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dpr
}

func (h *StaticHost) Hidden() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hidden
}

func (h *StaticHost) PrefersReducedMotion() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reduced
}

func (h *StaticHost) OnResize(fn func()) func() {
	return h.add(h.resize, fn)
}

func (h *StaticHost) OnVisibilityChange(fn func()) func() {
	return h.add(h.visible, fn)
}

func (h *StaticHost) OnReducedMotionChange(fn func()) func() {
	return h.add(h.motion, fn)
}

// Resize changes the viewport and pixel ratio and notifies resize listeners.
func (h *StaticHost) Resize(width, height, dpr float64) {
	h.mu.Lock()
	h.width, h.height, h.dpr = width, height, dpr
	fns := listeners(h.resize)
	h.mu.Unlock()
	notify(fns)
}

// SetHidden changes tab visibility and notifies visibility listeners.
func (h *StaticHost) SetHidden(hidden bool) {
	h.mu.Lock()
	h.hidden = hidden
	fns := listeners(h.visible)
	h.mu.Unlock()
	notify(fns)
}

// SetReducedMotion changes the motion preference and notifies its listeners.
func (h *StaticHost) SetReducedMotion(reduced bool) {
	h.mu.Lock()
	h.reduced = reduced
	fns := listeners(h.motion)
	h.mu.Unlock()
	notify(fns)
}

// ListenerCount is the number of registered listeners of all kinds.
func (h *StaticHost) ListenerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.resize) + len(h.visible) + len(h.motion)
}

func (h *StaticHost) add(set map[int]func(), fn func()) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	set[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(set, id)
	}
}

func listeners(set map[int]func()) []func() {
	out := make([]func(), 0, len(set))
	for _, fn := range set {
		out = append(out, fn)
	}
	return out
}

func notify(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}
