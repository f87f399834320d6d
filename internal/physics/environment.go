package physics

import "math"

// Integrate advances velocity and position by dt: gravity, quadratic air
// drag opposing the velocity, then the positional update. Pure function of
// the ball state and dt; ground friction is applied separately after
// collision resolution.
func Integrate(b *Ball, t *Tuning, dt float64) {
	b.Vel.Y += t.Gravity * dt

	sp := b.Speed()
	if sp > 0 {
		drag := t.AirDrag * sp * sp
		if drag > 0 {
			b.Vel.X -= (b.Vel.X / sp) * drag * dt
			b.Vel.Y -= (b.Vel.Y / sp) * drag * dt
		}
	}

	b.Pos.X += b.Vel.X * dt
	b.Pos.Y += b.Vel.Y * dt
}

// ApplyGroundFriction damps horizontal velocity while the ball is grounded.
// The keep factor is a true per-second decay raised to elapsed seconds, so
// the result is frame-rate independent. Tiny vertical jitter is zeroed to
// stop micro-bouncing on the resting surface.
func ApplyGroundFriction(b *Ball, t *Tuning, dt float64) {
	if !b.OnGround || b.Speed() == 0 {
		return
	}
	b.Vel.X *= math.Pow(t.GroundFriction, dt)
	if math.Abs(b.Vel.Y) < t.JitterSpeed {
		b.Vel.Y = 0
	}
}
