package physics

// ShotVelocity converts an aim gesture into an initial velocity. The ball
// launches opposite the drag direction with speed proportional to the drag
// length, capped at MaxPower. Drags shorter than MinDrag are no-ops, not
// zero-power shots; the second return value reports whether the gesture
// produced a shot.
func ShotVelocity(press, release Vec2, t *Tuning) (Vec2, bool) {
	drag := release.Minus(press)
	dist := drag.Magnitude()
	if dist <= t.MinDrag {
		return Vec2{}, false
	}
	power := dist * t.PowerScale
	if power > t.MaxPower {
		power = t.MaxPower
	}
	return press.Minus(release).Normalize().Times(power), true
}
