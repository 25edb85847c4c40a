// Package comets animates the decorative streak layer drawn behind the site.
//
// An Animator owns its listeners and its pending frame: Stop cancels the
// frame, Dispose additionally unregisters every listener. Both are idempotent.
package comets

import (
	"math"
	"math/rand/v2"
)

// Comet is one diagonal streak.
type Comet struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Length  float64 `json:"length"`
	Speed   float64 `json:"speed"`
	Opacity float64 `json:"opacity"`
}

// Range is a half-open interval [Min, Max).
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r Range) sample(rng *rand.Rand) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v < r.Max
}

// Profile sizes the comet population for a viewport category.
type Profile struct {
	Name    string `json:"name"`
	Count   int    `json:"count"`
	Length  Range  `json:"length"`
	Speed   Range  `json:"speed"`
	Opacity Range  `json:"opacity"`
}

var (
	DesktopProfile = Profile{
		Name:    "desktop",
		Count:   25,
		Length:  Range{40, 120},
		Speed:   Range{0.4, 1.2},
		Opacity: Range{0.15, 0.55},
	}
	MobileProfile = Profile{
		Name:    "mobile",
		Count:   12,
		Length:  Range{20, 40},
		Speed:   Range{0.15, 0.4},
		Opacity: Range{0.1, 0.35},
	}
)

// MobileBreakpoint is the logical width below which MobileProfile applies.
const MobileBreakpoint = 768

// respawnMargin is how far past the edge a comet travels before it is recycled.
const respawnMargin = 100

// ProfileFor picks the profile for a logical viewport width.
func ProfileFor(width float64) Profile {
	if width < MobileBreakpoint {
		return MobileProfile
	}
	return DesktopProfile
}

// spawn places a comet anywhere on the viewport.
func (p Profile) spawn(rng *rand.Rand, w, h float64) Comet {
	c := p.reroll(rng)
	c.X = rng.Float64() * w
	c.Y = rng.Float64() * h
	return c
}

// respawn places a comet just below the bottom edge.
func (p Profile) respawn(rng *rand.Rand, w, h float64) Comet {
	c := p.reroll(rng)
	c.X = rng.Float64() * w
	c.Y = h + rng.Float64()*respawnMargin
	return c
}

func (p Profile) reroll(rng *rand.Rand) Comet {
	return Comet{
		Length:  p.Length.sample(rng),
		Speed:   p.Speed.sample(rng),
		Opacity: p.Opacity.sample(rng),
	}
}

// segment is the streak drawn for c: from its head down and to the left.
func (c Comet) segment() Segment {
	return Segment{
		X0:      c.X,
		Y0:      c.Y,
		X1:      c.X - c.Length,
		Y1:      c.Y + c.Length,
		Opacity: c.Opacity,
		Width:   1,
	}
}

// advance moves c up and to the right by its speed.
func (c *Comet) advance() {
	c.X += c.Speed
	c.Y -= c.Speed
}

func (c Comet) offscreen(w float64) bool {
	return c.Y < -respawnMargin || c.X > w+respawnMargin
}

func floorAtLeastOne(v float64) float64 {
	if math.IsNaN(v) || v < 1 {
		return 1
	}
	return math.Floor(v)
}
