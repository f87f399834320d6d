package physics

import (
	"math"
	"testing"
)

func TestShotOppositeDrag(t *testing.T) {
	tun := DefaultTuning()

	// Gesture drags from (100,100) to (130,70), i.e. up-right; the ball
	// launches opposite the drag, down-left, at drag distance x scale.
	vel, ok := ShotVelocity(Vec2{X: 100, Y: 100}, Vec2{X: 130, Y: 70}, tun)
	if !ok {
		t.Fatal("a 42px drag is well over the minimum")
	}
	if vel.X >= 0 || vel.Y <= 0 {
		t.Errorf("shot should point down-left, got %+v", vel)
	}

	wantPower := math.Hypot(30, 30) * tun.PowerScale
	if got := vel.Magnitude(); math.Abs(got-wantPower) > 1e-9 {
		t.Errorf("shot power %.4f want %.4f", got, wantPower)
	}
}

func TestShotPowerCap(t *testing.T) {
	tun := DefaultTuning()
	vel, ok := ShotVelocity(Vec2{}, Vec2{X: 1000, Y: 0}, tun)
	if !ok {
		t.Fatal("long drag should shoot")
	}
	if got := vel.Magnitude(); math.Abs(got-tun.MaxPower) > 1e-9 {
		t.Errorf("power should cap at %.0f, got %.4f", tun.MaxPower, got)
	}
}

func TestShotMinimumDragIsNoOp(t *testing.T) {
	tun := DefaultTuning()
	if _, ok := ShotVelocity(Vec2{X: 100, Y: 100}, Vec2{X: 103, Y: 100}, tun); ok {
		t.Error("sub-threshold drag must be a no-op, not a weak shot")
	}
	if vel, ok := ShotVelocity(Vec2{X: 100, Y: 100}, Vec2{X: 100, Y: 100}, tun); ok || !vel.IsZero() {
		t.Error("zero drag must be a no-op")
	}
}
