package physics

// CaptureMode selects which cup-capture rule family a level uses.
// The two families were tuned separately; pick one per level, never mix.
type CaptureMode int

const (
	// CapturePlatform is the rule for levels with platform geometry:
	// distance + speed + at-or-below-surface gate.
	CapturePlatform CaptureMode = iota
	// CaptureOpenGreen is the rule for flat open levels: segment-crossing
	// sink OR inner-radius ease-in, with optional cup attraction.
	CaptureOpenGreen
)

// CaptureTuning holds the cup-capture constants for one rule family.
type CaptureTuning struct {
	Mode CaptureMode

	Radius float64 // cup radius, px
	Margin float64 // shaved off Radius for the distance test, px

	// Platform family
	MaxSpeed     float64 // px/s; faster balls skip over the cup
	SurfaceSlack float64 // px; ball center must be within this of the cup surface

	// Open-green family
	SinkSpeed     float64 // px/s cap for the segment-crossing sink
	InnerRadius   float64 // px; slow balls inside this ease in
	InnerMaxSpeed float64 // px/s cap for the inner-radius ease-in

	// Cup attraction (gameplay affordance, not realism). Zero radius disables.
	AttractRadius float64 // px
	AttractAccel  float64 // px/s^2 at the cup lip, scaled up with proximity
}

// Tuning holds every physics constant with documented units. These numbers
// were tuned empirically against a 60 FPS frame step; keep the quadratic
// drag and exponential friction formulas intact or the feel changes.
type Tuning struct {
	Gravity        float64 // px/s^2, downward (+Y)
	AirDrag        float64 // quadratic drag coefficient, ~v^2
	GroundFriction float64 // per-second horizontal keep factor while grounded
	Restitution    float64 // dimensionless bounce factor on impacts
	RestSpeed      float64 // px/s; below this while grounded = resting
	JitterSpeed    float64 // px/s; |vy| below this while grounded is zeroed
	BallRadius     float64 // px
	GroundNormalY  float64 // contact counts as ground when normal Y <= this

	// Shot conversion
	PowerScale float64 // (px/s) per px of drag
	MaxPower   float64 // px/s launch speed cap
	MinDrag    float64 // px; shorter drags are no-ops

	// Hazards
	HazardOpenThreshold float64 // opening fraction above which a hazard bites

	// Out-of-world
	FallMargin float64 // px below the world bottom before the ball is lost

	// Fast-forward oracle
	ForwardStep float64 // s; fine fixed step, independent of frame cadence
	SettleTime  float64 // s; continuous sub-rest-speed time needed to settle
	MaxSimTime  float64 // s; hard cap on simulated time per resolve
	TrailStride int     // sample every Nth step into the playback trail

	Capture CaptureTuning
}

// DefaultTuning is the platform-course family.
func DefaultTuning() *Tuning {
	return &Tuning{
		Gravity:        2000.0,
		AirDrag:        0.0008,
		GroundFriction: 0.82,
		Restitution:    0.25,
		RestSpeed:      40.0,
		JitterSpeed:    10.0,
		BallRadius:     12.0,
		GroundNormalY:  -0.6,

		PowerScale: 10.0,
		MaxPower:   1800.0,
		MinDrag:    6.0,

		HazardOpenThreshold: 0.55,
		FallMargin:          200.0,

		ForwardStep: 1.0 / 240.0,
		SettleTime:  0.25,
		MaxSimTime:  30.0,
		TrailStride: 4,

		Capture: CaptureTuning{
			Mode:         CapturePlatform,
			Radius:       18.0,
			Margin:       2.0,
			MaxSpeed:     320.0,
			SurfaceSlack: 14.0, // ball radius + 2
		},
	}
}

// OpenGreenTuning is the flat-green family: tunneling-safe segment capture
// plus a soft pull toward the cup for near-misses.
func OpenGreenTuning() *Tuning {
	t := DefaultTuning()
	t.Capture = CaptureTuning{
		Mode:          CaptureOpenGreen,
		Radius:        18.0,
		SinkSpeed:     420.0,
		InnerRadius:   16.0, // must exceed BallRadius: a rolled ball's center rides a full radius above the cup
		InnerMaxSpeed: 520.0,
		AttractRadius: 40.0,
		AttractAccel:  900.0,
	}
	return t
}

// MaxForwardSteps derives the oracle's step cap from its time cap.
func (t *Tuning) MaxForwardSteps() int {
	return int(t.MaxSimTime/t.ForwardStep) + 1
}
