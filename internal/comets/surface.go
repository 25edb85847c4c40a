package comets

import "time"

// Segment is one translucent white line.
type Segment struct {
	X0      float64 `json:"x0"`
	Y0      float64 `json:"y0"`
	X1      float64 `json:"x1"`
	Y1      float64 `json:"y1"`
	Opacity float64 `json:"opacity"`
	Width   float64 `json:"width"`
}

// Canvas is the drawing surface the animator owns.
type Canvas interface {
	// Context2D returns nil when the surface cannot be drawn on.
	Context2D() Context2D
	// SetSize sizes the backing store in device pixels.
	SetSize(width, height int)
}

// Context2D draws in logical (CSS) pixels once a transform is set.
type Context2D interface {
	SetTransform(a, b, c, d, e, f float64)
	ClearRect(x, y, width, height float64)
	Stroke(s Segment)
}

// Host reports the environment the effect runs in and delivers change
// notifications. Each On* call returns a function that removes the listener.
type Host interface {
	Viewport() (width, height float64)
	// DevicePixelRatio returns 0 when the ratio cannot be determined.
	DevicePixelRatio() float64
	Hidden() bool
	PrefersReducedMotion() bool
	OnResize(fn func()) (remove func())
	OnVisibilityChange(fn func()) (remove func())
	OnReducedMotionChange(fn func()) (remove func())
}

// FrameHandle identifies a requested frame.
type FrameHandle uint64

// FrameScheduler runs callbacks on the display's paint cycle. Callbacks must
// never run synchronously inside RequestFrame.
type FrameScheduler interface {
	RequestFrame(fn func(now time.Time)) FrameHandle
	CancelFrame(h FrameHandle)
}
