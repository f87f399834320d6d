package physics

// Ball is the full kinematic state of the golf ball. It is a value type:
// the fast-forward oracle works on its own copy and never aliases the
// live ball owned by the round.
type Ball struct {
	Pos Vec2 `json:"pos"`
	Vel Vec2 `json:"vel"`

	// OnGround is transient: cleared at the top of every step and set only
	// by collision resolution against an upward-facing surface.
	OnGround bool `json:"on_ground"`

	// Sunk marks the ball captured by the cup. Terminal until an external
	// reset replaces the ball.
	Sunk bool `json:"sunk"`
}

// NewBall places a resting ball at the given start pose.
func NewBall(start Vec2) Ball {
	return Ball{Pos: start}
}

// Speed is the scalar velocity magnitude, px/s.
func (b *Ball) Speed() float64 {
	return b.Vel.Magnitude()
}

// Resting reports whether the ball is slow enough to accept a new aim
// gesture. A sunk ball never is.
func (b *Ball) Resting(t *Tuning) bool {
	return !b.Sunk && b.Speed() < t.RestSpeed
}
