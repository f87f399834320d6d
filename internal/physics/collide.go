package physics

import "math"

// degenerateNormalEps stands in for the collision normal when the ball
// center lands exactly on the nearest rect point (zero-distance case).
const degenerateNormalEps = 1e-6

// ResolveCircleRect resolves one circle-vs-rect overlap in place: push the
// ball out along the penetration normal, reflect the normal velocity
// component with restitution, and classify steep upward normals as ground
// contact. No-op when there is no overlap.
func ResolveCircleRect(b *Ball, r Rect, t *Tuning) {
	rad := t.BallRadius
	nearest := r.ClampPoint(b.Pos)
	delta := b.Pos.Minus(nearest)
	d2 := delta.MagnitudeSquared()
	if d2 > rad*rad {
		return
	}

	// Center exactly on the nearest point: no direction to push along, so
	// fall back to a tiny upward normal instead of dividing by zero.
	if d2 == 0 {
		delta = Vec2{X: 0, Y: -degenerateNormalEps}
		d2 = delta.MagnitudeSquared()
	}
	d := math.Sqrt(d2)
	n := delta.Times(1.0 / d)

	overlap := rad - d
	b.Pos = b.Pos.Plus(n.Times(overlap))

	// Reflect the inward velocity component, part cancel, part bounce.
	vn := b.Vel.Dot(n)
	b.Vel = b.Vel.Minus(n.Times((1 + t.Restitution) * vn))

	// Standing test: normal mostly upward (Y grows downward).
	if n.Y < t.GroundNormalY {
		b.OnGround = true
		if b.Vel.Y > 0 {
			b.Vel.Y = 0
		}
	}
}

// ResolveRects resolves the ball against every rect in order. Each
// resolution moves the ball, and the next rect is tested against the
// corrected position, so step and pillar corners resolve sequentially
// instead of against a stale extent.
func ResolveRects(b *Ball, rects []Rect, t *Tuning) {
	for _, r := range rects {
		if r.OverlapsCircle(b.Pos, t.BallRadius) {
			ResolveCircleRect(b, r, t)
		}
	}
}
