package comets

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Recorder is an in-memory Canvas. It keeps the strokes drawn since the last
// full clear, so after a frame it holds exactly that frame.
type Recorder struct {
	// Unsupported makes Context2D return nil, like a surface without 2D support.
	Unsupported bool

	mu        sync.Mutex
	width     int
	height    int
	transform [6]float64
	clears    int
	strokes   []Segment
}

func (r *Recorder) Context2D() Context2D {
	if r.Unsupported {
		return nil
	}
	return r
}

func (r *Recorder) SetSize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width, r.height = width, height
	r.strokes = nil
}

func (r *Recorder) SetTransform(a, b, c, d, e, f float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transform = [6]float64{a, b, c, d, e, f}
}

func (r *Recorder) ClearRect(x, y, width, height float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clears++
	r.strokes = r.strokes[:0]
}

func (r *Recorder) Stroke(s Segment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strokes = append(r.strokes, s)
}

// Size is the backing store size in device pixels.
func (r *Recorder) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

// Scale is the device pixel ratio applied through SetTransform.
func (r *Recorder) Scale() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transform[0]
}

func (r *Recorder) Clears() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clears
}

// Strokes returns a copy of the strokes of the current frame.
func (r *Recorder) Strokes() []Segment {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Segment, len(r.strokes))
	copy(out, r.strokes)
	return out
}

// WriteSVG renders the current frame as a standalone SVG document sized to
// the logical viewport.
func (r *Recorder) WriteSVG(w io.Writer) error {
	r.mu.Lock()
	scale := r.transform[0]
	if scale <= 0 {
		scale = 1
	}
	width := float64(r.width) / scale
	height := float64(r.height) / scale
	strokes := make([]Segment, len(r.strokes))
	copy(strokes, r.strokes)
	r.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 %g %g" aria-hidden="true">`, width, height, width, height)
	b.WriteString("\n")
	for _, s := range strokes {
		fmt.Fprintf(&b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="rgba(255,255,255,%.3f)" stroke-width="%g"/>`,
			s.X0, s.Y0, s.X1, s.Y1, s.Opacity, s.Width)
		b.WriteString("\n")
	}
	b.WriteString("</svg>\n")

	_, err := io.WriteString(w, b.String())
	return err
}
