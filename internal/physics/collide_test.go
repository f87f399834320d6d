package physics

import (
	"math"
	"testing"
)

func TestResolvePushesBallOut(t *testing.T) {
	tun := DefaultTuning()
	slab := Rect{X: 0, Y: 540, W: 1000, H: 60}

	b := Ball{Pos: Vec2{X: 500, Y: 534}, Vel: Vec2{X: 0, Y: 120}}
	ResolveCircleRect(&b, slab, tun)

	if got, want := b.Pos.Y, 540-tun.BallRadius; math.Abs(got-want) > 1e-9 {
		t.Errorf("ball not pushed to the surface: y=%.4f want %.4f", got, want)
	}
	if !b.OnGround {
		t.Error("upward-facing contact should set the ground flag")
	}
	if b.Vel.Y > 0 {
		t.Errorf("downward velocity survived ground contact: vy=%.2f", b.Vel.Y)
	}
}

func TestResolveReflectsWithRestitution(t *testing.T) {
	tun := DefaultTuning()
	wall := Rect{X: 600, Y: 0, W: 40, H: 600}

	// Ball moving right, overlapping the wall's left face.
	b := Ball{Pos: Vec2{X: 594, Y: 300}, Vel: Vec2{X: 200, Y: 0}}
	ResolveCircleRect(&b, wall, tun)

	want := -200 * tun.Restitution
	if math.Abs(b.Vel.X-want) > 1e-9 {
		t.Errorf("side bounce vx=%.4f want %.4f", b.Vel.X, want)
	}
	if b.OnGround {
		t.Error("side contact must not count as ground")
	}
}

func TestResolveNoOverlapNoChange(t *testing.T) {
	tun := DefaultTuning()
	slab := Rect{X: 0, Y: 540, W: 1000, H: 60}

	b := Ball{Pos: Vec2{X: 500, Y: 500}, Vel: Vec2{X: 50, Y: 50}}
	before := b
	ResolveCircleRect(&b, slab, tun)
	if b != before {
		t.Errorf("resolution changed a non-overlapping ball: %+v -> %+v", before, b)
	}
}

func TestResolveDegenerateCenter(t *testing.T) {
	tun := DefaultTuning()
	slab := Rect{X: 0, Y: 540, W: 1000, H: 60}

	// Center exactly on the slab's top edge: nearest point coincides with
	// the center. Must not divide by zero; ball must end up outside.
	b := Ball{Pos: Vec2{X: 500, Y: 540}, Vel: Vec2{X: 0, Y: 300}}
	ResolveCircleRect(&b, slab, tun)

	if math.IsNaN(b.Pos.X) || math.IsNaN(b.Pos.Y) || math.IsNaN(b.Vel.Y) {
		t.Fatalf("degenerate contact produced NaN: %+v", b)
	}
	if slab.OverlapsCircle(b.Pos, tun.BallRadius-1e-6) {
		t.Errorf("ball still buried in the slab: %+v", b.Pos)
	}
}

func TestSequentialCornerResolution(t *testing.T) {
	tun := DefaultTuning()
	// A step: floor plus a riser. The ball lands overlapping both; the
	// second resolution must see the position corrected by the first.
	floor := Rect{X: 0, Y: 540, W: 500, H: 60}
	riser := Rect{X: 440, Y: 480, W: 60, H: 60}

	b := Ball{Pos: Vec2{X: 434, Y: 532}, Vel: Vec2{X: 150, Y: 150}}
	ResolveRects(&b, []Rect{floor, riser}, tun)

	if floor.OverlapsCircle(b.Pos, tun.BallRadius-1e-6) {
		t.Errorf("ball still overlaps the floor after resolution: %+v", b.Pos)
	}
	if riser.OverlapsCircle(b.Pos, tun.BallRadius-1e-6) {
		t.Errorf("ball still overlaps the riser after resolution: %+v", b.Pos)
	}
}
