package physics

import (
	"errors"
	"fmt"
)

// Rect is an axis-aligned terrain box, immutable for the life of a level.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Bottom() float64 { return r.Y + r.H }

// ClampPoint returns the point inside r nearest to p.
func (r Rect) ClampPoint(p Vec2) Vec2 {
	q := p
	if q.X < r.X {
		q.X = r.X
	} else if q.X > r.Right() {
		q.X = r.Right()
	}
	if q.Y < r.Y {
		q.Y = r.Y
	} else if q.Y > r.Bottom() {
		q.Y = r.Bottom()
	}
	return q
}

// OverlapsCircle reports whether the circle at c with radius rad overlaps r.
func (r Rect) OverlapsCircle(c Vec2, rad float64) bool {
	return r.ClampPoint(c).Minus(c).MagnitudeSquared() < rad*rad
}

// SpansX reports whether x falls within the rect's horizontal extent.
func (r Rect) SpansX(x float64) bool {
	return x >= r.X && x <= r.Right()
}

// Hole is the cup: a point on a supporting surface plus a capture radius.
type Hole struct {
	Pos    Vec2    `json:"pos"`
	Radius float64 `json:"radius"`
}

// Level is the immutable geometry of one hole of the course. Selecting a
// level re-derives the cup position from the anchor and the geometry.
type Level struct {
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Par    int     `json:"par"`

	Rects   []Rect   `json:"rects"`
	Hazards []Hazard `json:"hazards,omitempty"`

	Start       Vec2    `json:"start"`
	HoleAnchorX float64 `json:"hole_anchor_x"`

	// OpenGreen selects the open-green capture family for this level.
	OpenGreen bool `json:"open_green"`
}

// Validate checks an authored level at load time.
func (l *Level) Validate() error {
	if l.Width <= 0 || l.Height <= 0 {
		return errors.New("level has non-positive world size")
	}
	if len(l.Rects) == 0 {
		return errors.New("level has no geometry")
	}
	if l.Start.X < 0 || l.Start.X > l.Width || l.Start.Y < 0 || l.Start.Y > l.Height {
		return fmt.Errorf("start pose (%.0f,%.0f) outside world", l.Start.X, l.Start.Y)
	}
	if l.HoleAnchorX < 0 || l.HoleAnchorX > l.Width {
		return fmt.Errorf("hole anchor x=%.0f outside world", l.HoleAnchorX)
	}
	for i, h := range l.Hazards {
		if h.Period <= 0 {
			return fmt.Errorf("hazard %d has non-positive period", i)
		}
		if h.MaxOpen <= 0 {
			return fmt.Errorf("hazard %d has non-positive max opening", i)
		}
	}
	return nil
}

// ResolveHole derives the cup from the anchor: it sits on the highest
// surface (minimum Y, since Y grows downward) among rects whose horizontal
// span contains the anchor. A level with no rect under the anchor falls
// back to the topmost rect anywhere, never fails.
func (l *Level) ResolveHole(radius float64) Hole {
	topY := 0.0
	found := false
	for _, r := range l.Rects {
		if !r.SpansX(l.HoleAnchorX) {
			continue
		}
		if !found || r.Y < topY {
			topY = r.Y
			found = true
		}
	}
	if !found {
		for i, r := range l.Rects {
			if i == 0 || r.Y < topY {
				topY = r.Y
			}
		}
	}
	return Hole{Pos: Vec2{X: l.HoleAnchorX, Y: topY}, Radius: radius}
}
