package physics

// ApplyCupAttraction nudges a nearby ball toward the cup before
// integration. Gameplay affordance for the open-green family only:
// near-misses curl in instead of lipping out. Disabled when the tuning
// sets a zero attraction radius.
func ApplyCupAttraction(b *Ball, hole Hole, t *Tuning, dt float64) {
	c := t.Capture
	if c.Mode != CaptureOpenGreen || c.AttractRadius <= 0 {
		return
	}
	delta := hole.Pos.Minus(b.Pos)
	d := delta.Magnitude()
	if d == 0 || d > c.AttractRadius {
		return
	}
	// Stronger the closer the ball is to the cup.
	pull := c.AttractAccel * (1 - d/c.AttractRadius)
	b.Vel = b.Vel.Plus(delta.Times(pull * dt / d))
}

// CheckCapture decides whether the ball counts as in the cup this step.
// prev is the ball position before integration, used by the open-green
// segment test so fast balls cannot tunnel through the cup in one step.
func CheckCapture(prev Vec2, b *Ball, hole Hole, t *Tuning) bool {
	switch t.Capture.Mode {
	case CaptureOpenGreen:
		return openGreenCapture(prev, b, hole, t)
	default:
		return platformCapture(b, hole, t)
	}
}

// platformCapture: inside the shaved capture radius, slow enough to drop,
// and not airborne above the cup's supporting surface.
func platformCapture(b *Ball, hole Hole, t *Tuning) bool {
	c := t.Capture
	r := c.Radius - c.Margin
	if b.Pos.Minus(hole.Pos).MagnitudeSquared() > r*r {
		return false
	}
	if b.Speed() >= c.MaxSpeed {
		return false
	}
	return b.Pos.Y >= hole.Pos.Y-c.SurfaceSlack
}

// openGreenCapture: either the travel segment crossed the cup circle at a
// sinkable speed, or the ball is already inside the inner radius and slow
// enough to ease in.
func openGreenCapture(prev Vec2, b *Ball, hole Hole, t *Tuning) bool {
	c := t.Capture
	sp := b.Speed()
	if sp < c.SinkSpeed && segmentHitsCircle(prev, b.Pos, hole.Pos, c.Radius) {
		return true
	}
	if sp < c.InnerMaxSpeed &&
		b.Pos.Minus(hole.Pos).MagnitudeSquared() <= c.InnerRadius*c.InnerRadius {
		return true
	}
	return false
}

// segmentHitsCircle reports whether the segment p1→p2 comes within r of c.
func segmentHitsCircle(p1, p2, c Vec2, r float64) bool {
	seg := p2.Minus(p1)
	toC := c.Minus(p1)
	len2 := seg.MagnitudeSquared()

	u := 0.0
	if len2 > 0 {
		u = toC.Dot(seg) / len2
		if u < 0 {
			u = 0
		} else if u > 1 {
			u = 1
		}
	}
	closest := p1.Plus(seg.Times(u))
	return c.Minus(closest).MagnitudeSquared() <= r*r
}
