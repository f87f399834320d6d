package physics

import "math"

// Hazard is a periodic actuator: a static body rect whose danger mouth
// opens and closes on the level-global clock. It has no mutable state; the
// instantaneous opening is a pure function of elapsed world time.
type Hazard struct {
	Body    Rect    `json:"body"`
	Period  float64 `json:"period"`   // seconds per open/close cycle
	Phase   float64 `json:"phase"`    // fraction of Period
	MaxOpen float64 `json:"max_open"` // px; mouth height when fully open
	InsetX  float64 `json:"inset_x"`  // px shaved off each side of the mouth
}

// OpeningFraction maps the clock onto [0,1] with a continuous sinusoid;
// the mouth never snaps between open and closed.
func (h Hazard) OpeningFraction(now float64) float64 {
	return (1 + math.Sin(2*math.Pi*(now/h.Period+h.Phase))) / 2
}

// DangerRect is the instantaneous danger region: anchored to the body's
// upper edge, horizontally inset, rising with the opening fraction.
func (h Hazard) DangerRect(now float64) Rect {
	open := h.OpeningFraction(now) * h.MaxOpen
	return h.mouth(open)
}

// MaxDangerRect is the fully-open mouth. The fast-forward oracle uses it
// for the whole prediction horizon so it never predicts safe passage
// through a mouth that could close before the ball arrives.
func (h Hazard) MaxDangerRect() Rect {
	return h.mouth(h.MaxOpen)
}

func (h Hazard) mouth(open float64) Rect {
	return Rect{
		X: h.Body.X + h.InsetX,
		Y: h.Body.Y - open,
		W: h.Body.W - 2*h.InsetX,
		H: open,
	}
}

// Triggered reports a hazard event: the mouth is open past the threshold
// and the ball's bounding circle overlaps the current danger region.
func (h Hazard) Triggered(b *Ball, now float64, t *Tuning) bool {
	if h.OpeningFraction(now) <= t.HazardOpenThreshold {
		return false
	}
	return h.DangerRect(now).OverlapsCircle(b.Pos, t.BallRadius)
}

// TriggeredConservative ignores the clock entirely and bites whenever the
// ball overlaps the fully-open mouth. Prediction-only.
func (h Hazard) TriggeredConservative(b *Ball, t *Tuning) bool {
	return h.MaxDangerRect().OverlapsCircle(b.Pos, t.BallRadius)
}
