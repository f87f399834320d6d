package physics

// Outcome is the stepper's externally visible state after one step.
type Outcome int

const (
	// OutcomeInFlight: the ball is still moving.
	OutcomeInFlight Outcome = iota
	// OutcomeResting: grounded with speed snapped to zero; a new aim
	// gesture may be accepted.
	OutcomeResting
	// OutcomeCaptured: the ball is in the cup. Terminal.
	OutcomeCaptured
	// OutcomeHazard: a hazard mouth caught the ball. Terminal; the
	// orchestrator resets to the start pose with a penalty stroke.
	OutcomeHazard
	// OutcomeFell: the ball fell past the bottom of the world. Terminal;
	// the orchestrator resets to the start pose.
	OutcomeFell
)

func (o Outcome) String() string {
	switch o {
	case OutcomeResting:
		return "resting"
	case OutcomeCaptured:
		return "captured"
	case OutcomeHazard:
		return "hazard"
	case OutcomeFell:
		return "fell"
	default:
		return "in_flight"
	}
}

// Terminal reports whether the outcome ends the current shot sequence.
func (o Outcome) Terminal() bool {
	return o == OutcomeCaptured || o == OutcomeHazard || o == OutcomeFell
}

// World is the simulation context for one level: geometry, hazards, the
// derived cup, and tuning. Read-only during play; a level switch replaces
// the whole value. Holding the context explicitly (instead of globals)
// lets any number of simulations run side by side without cross-talk.
type World struct {
	Level  *Level
	Hole   Hole
	Tuning *Tuning
}

// NewWorld builds the simulation context for a level, deriving the cup
// position from the hole anchor and the geometry.
func NewWorld(lvl *Level, t *Tuning) *World {
	return &World{
		Level:  lvl,
		Hole:   lvl.ResolveHole(t.Capture.Radius),
		Tuning: t,
	}
}

// Step advances the ball one instant of dt at world time now. The same
// function backs both the interactive frame path and the fast-forward
// oracle, so the two can never disagree on physics.
func (w *World) Step(b *Ball, now, dt float64) Outcome {
	return w.step(b, now, dt, false)
}

func (w *World) step(b *Ball, now, dt float64, conservativeHazards bool) Outcome {
	if b.Sunk {
		return OutcomeCaptured
	}
	t := w.Tuning

	b.OnGround = false
	prev := b.Pos

	ApplyCupAttraction(b, w.Hole, t, dt)
	Integrate(b, t, dt)
	ResolveRects(b, w.Level.Rects, t)

	for _, h := range w.Level.Hazards {
		if conservativeHazards {
			if h.TriggeredConservative(b, t) {
				return OutcomeHazard
			}
		} else if h.Triggered(b, now, t) {
			return OutcomeHazard
		}
	}

	ApplyGroundFriction(b, t, dt)

	if b.OnGround && b.Speed() < t.RestSpeed {
		b.Vel = Vec2{}
	}

	if out := w.clampWorld(b); out != OutcomeInFlight {
		return out
	}

	if CheckCapture(prev, b, w.Hole, t) {
		b.Vel = Vec2{}
		b.Pos = w.Hole.Pos
		b.Sunk = true
		return OutcomeCaptured
	}

	if b.OnGround && b.Vel.IsZero() {
		return OutcomeResting
	}
	return OutcomeInFlight
}

// clampWorld bounces the ball off the left, right and top walls and
// detects a fall past the bottom margin.
func (w *World) clampWorld(b *Ball) Outcome {
	t := w.Tuning
	r := t.BallRadius

	if b.Pos.X < r {
		b.Pos.X = r
		b.Vel.X = -b.Vel.X * t.Restitution
	}
	if b.Pos.X > w.Level.Width-r {
		b.Pos.X = w.Level.Width - r
		b.Vel.X = -b.Vel.X * t.Restitution
	}
	if b.Pos.Y < r {
		b.Pos.Y = r
		b.Vel.Y = -b.Vel.Y * t.Restitution
	}
	if b.Pos.Y > w.Level.Height+t.FallMargin {
		return OutcomeFell
	}
	return OutcomeInFlight
}
