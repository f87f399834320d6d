package physics

// ForwardResult is the fast-forward oracle's answer: the resting (or
// terminal) ball state, how it ended, how long it took in simulated time,
// and a sampled trail for client-side playback.
type ForwardResult struct {
	Ball     Ball    `json:"ball"`
	Outcome  Outcome `json:"outcome"`
	Captured bool    `json:"captured"`
	Elapsed  float64 `json:"elapsed"` // simulated seconds
	Steps    int     `json:"steps"`
	Trail    []Vec2  `json:"trail,omitempty"`
	Capped   bool    `json:"capped"` // step/time cap hit; best-effort state
}

// FastForward resolves a shot to its resting state without real-time
// stepping. The ball is taken by value: prediction never mutates live
// state, and the caller merges the result when it commits.
//
// The loop runs the shared Stepper at the fine ForwardStep until capture,
// loss, or settling (sub-rest speed on ground sustained for SettleTime, so
// a transient slow instant mid-bounce does not count). Hazards are
// evaluated conservatively against their fully-open mouths: the oracle
// will predict a loss through a mouth that interactive play might slip
// past while closed.
//
// The step/time cap bounds the synchronous cost and guarantees termination
// on pathological inputs; on exhaustion the last computed state comes back
// as a best-effort resting prediction, never an error.
func (w *World) FastForward(b Ball, now float64) ForwardResult {
	t := w.Tuning
	dt := t.ForwardStep
	maxSteps := t.MaxForwardSteps()

	res := ForwardResult{Outcome: OutcomeInFlight}
	settled := 0.0

	for res.Steps < maxSteps && res.Elapsed < t.MaxSimTime {
		out := w.step(&b, now+res.Elapsed, dt, true)
		res.Steps++
		res.Elapsed += dt

		if t.TrailStride > 0 && res.Steps%t.TrailStride == 0 {
			res.Trail = append(res.Trail, b.Pos)
		}

		if out.Terminal() {
			res.Ball = b
			res.Outcome = out
			res.Captured = out == OutcomeCaptured
			return res
		}

		if b.OnGround && b.Speed() < t.RestSpeed {
			settled += dt
			if settled >= t.SettleTime {
				res.Ball = b
				res.Outcome = OutcomeResting
				return res
			}
		} else {
			settled = 0
		}
	}

	// Cap exhausted: hand back the last state as the best guess.
	res.Ball = b
	res.Outcome = OutcomeResting
	res.Capped = true
	return res
}
