package physics

import (
	"math"
	"testing"
)

func TestForwardRestingBallReturnsImmediately(t *testing.T) {
	w := NewWorld(flatLevel(), DefaultTuning())

	b := NewBall(Vec2{X: 80, Y: 528}) // sitting on the slab, zero velocity
	res := w.FastForward(b, 0)

	if res.Outcome != OutcomeResting {
		t.Fatalf("resting ball should settle, got %v", res.Outcome)
	}
	if res.Capped {
		t.Error("resting ball should not exhaust the cap")
	}
	// One settle window, nowhere near the step cap.
	maxSettleSteps := int(w.Tuning.SettleTime/w.Tuning.ForwardStep) + 10
	if res.Steps > maxSettleSteps {
		t.Errorf("settling took %d steps, expected about %d", res.Steps, maxSettleSteps)
	}
}

func TestForwardMatchesInteractiveStepping(t *testing.T) {
	tun := DefaultTuning()
	w := NewWorld(ledgeLevel(), tun)

	start := NewBall(w.Level.Start)
	start.Vel = Vec2{X: 540, Y: -620}

	res := w.FastForward(start, 0)

	// Interactive path: same stepper, same step size, equivalent stopping
	// rule. No hazards, so conservative prediction changes nothing.
	b := start
	dt := tun.ForwardStep
	settled := 0.0
	var elapsed float64
	for steps := 0; steps < tun.MaxForwardSteps(); steps++ {
		out := w.Step(&b, elapsed, dt)
		elapsed += dt
		if out.Terminal() {
			break
		}
		if b.OnGround && b.Speed() < tun.RestSpeed {
			settled += dt
			if settled >= tun.SettleTime {
				break
			}
		} else {
			settled = 0
		}
	}

	if math.Abs(res.Ball.Pos.X-b.Pos.X) > 1e-9 || math.Abs(res.Ball.Pos.Y-b.Pos.Y) > 1e-9 {
		t.Errorf("paths diverged: oracle=%+v interactive=%+v", res.Ball.Pos, b.Pos)
	}
}

func TestForwardDoesNotMutateCaller(t *testing.T) {
	w := NewWorld(ledgeLevel(), DefaultTuning())

	live := NewBall(w.Level.Start)
	live.Vel = Vec2{X: 700, Y: -500}
	before := live

	w.FastForward(live, 0)
	if live != before {
		t.Errorf("oracle mutated the live ball: %+v -> %+v", before, live)
	}
}

func TestForwardCapReturnsBestEffort(t *testing.T) {
	tun := DefaultTuning()
	tun.MaxSimTime = 0.05 // starve the oracle
	w := NewWorld(ledgeLevel(), tun)

	b := NewBall(w.Level.Start)
	b.Vel = Vec2{X: 900, Y: -900}
	res := w.FastForward(b, 0)

	if !res.Capped {
		t.Fatal("starved oracle should report the cap")
	}
	if res.Captured {
		t.Error("cap exhaustion flags no capture")
	}
	if math.IsNaN(res.Ball.Pos.X) || math.IsNaN(res.Ball.Pos.Y) {
		t.Errorf("best-effort state is garbage: %+v", res.Ball)
	}
}

func TestForwardTrailSampling(t *testing.T) {
	tun := DefaultTuning()
	w := NewWorld(ledgeLevel(), tun)

	b := NewBall(w.Level.Start)
	b.Vel = Vec2{X: 540, Y: -620}
	res := w.FastForward(b, 0)

	if len(res.Trail) == 0 {
		t.Fatal("flight should leave a playback trail")
	}
	want := res.Steps / tun.TrailStride
	if len(res.Trail) < want-1 || len(res.Trail) > want+1 {
		t.Errorf("trail has %d points for %d steps, want about %d", len(res.Trail), res.Steps, want)
	}
}

func TestForwardCaptureFlag(t *testing.T) {
	w := NewWorld(ledgeLevel(), DefaultTuning())

	// Slow roll on the ledge straight at the cup.
	b := NewBall(Vec2{X: 780, Y: 468})
	b.Vel = Vec2{X: 120, Y: 0}
	res := w.FastForward(b, 0)

	if !res.Captured || res.Outcome != OutcomeCaptured {
		t.Fatalf("slow roll into the cup should capture, got %v (pos=%+v)", res.Outcome, res.Ball.Pos)
	}
	if res.Ball.Pos != w.Hole.Pos {
		t.Errorf("captured ball should rest at the cup center, got %+v", res.Ball.Pos)
	}
}
