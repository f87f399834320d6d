package game

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fairwave/backend/internal/physics"
)

// newTestRound builds an initialized single-player round on the built-in
// course with no manager, DB or Redis attached.
func newTestRound(t *testing.T) *GolfRound {
	t.Helper()
	course, err := DefaultCourse()
	if err != nil {
		t.Fatalf("Failed to build course: %v", err)
	}
	r := NewGolfRound("round_test", "tok_test", "p1", "+256700000001", "pt_test", 0, "Tester", course)
	if r.Status != StatusWaiting {
		t.Fatalf("New round should be WAITING, got %s", r.Status)
	}
	if err := r.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return r
}

// gentleShot is a short up-right drag that stays well clear of every
// obstacle on the first hole.
func gentleShot() ShotGesture {
	return ShotGesture{PressX: 80, PressY: 510, ReleaseX: 72, ReleaseY: 518}
}

func TestInitializeTeesFirstHole(t *testing.T) {
	r := newTestRound(t)

	if r.Status != StatusInProgress {
		t.Errorf("Expected IN_PROGRESS, got %s", r.Status)
	}
	if r.HoleIndex != 0 {
		t.Errorf("Expected hole 0, got %d", r.HoleIndex)
	}
	start := r.Course.Levels[0].Start
	if r.Ball.Pos != start {
		t.Errorf("Ball should tee at %v, got %v", start, r.Ball.Pos)
	}
	for i, s := range r.Strokes {
		if s != 0 {
			t.Errorf("Hole %d should start with 0 strokes, got %d", i, s)
		}
	}

	// Initialize is idempotent
	if err := r.Initialize(); err != nil {
		t.Errorf("Second Initialize should be a no-op, got %v", err)
	}
}

func TestValidateCanShoot(t *testing.T) {
	course, _ := DefaultCourse()
	r := NewGolfRound("round_w", "tok_w", "p1", "+256700000001", "pt", 0, "Tester", course)

	if err := r.ValidateCanShoot("p1", gentleShot()); err == nil {
		t.Error("Shooting before Initialize should fail")
	}

	if err := r.Initialize(); err != nil {
		t.Fatal(err)
	}

	if err := r.ValidateCanShoot("p2", gentleShot()); err == nil {
		t.Error("Another player's gesture should be rejected")
	}
	short := ShotGesture{PressX: 80, PressY: 510, ReleaseX: 82, ReleaseY: 512}
	if err := r.ValidateCanShoot("p1", short); err == nil {
		t.Error("A drag below the minimum should be rejected")
	}
	if err := r.ValidateCanShoot("p1", gentleShot()); err != nil {
		t.Errorf("A resting ball and a valid gesture should pass: %v", err)
	}
}

func TestBeginShotLaunchesOppositeDrag(t *testing.T) {
	r := newTestRound(t)

	strokes, err := r.BeginShot("p1", gentleShot())
	if err != nil {
		t.Fatalf("BeginShot failed: %v", err)
	}
	if strokes != 1 {
		t.Errorf("Expected stroke count 1, got %d", strokes)
	}
	if !r.ShotInProgress {
		t.Error("Shot should be marked in flight")
	}
	// Drag was down-left, so the launch is up-right.
	if r.Ball.Vel.X <= 0 || r.Ball.Vel.Y >= 0 {
		t.Errorf("Expected up-right launch, got %v", r.Ball.Vel)
	}

	if _, err := r.BeginShot("p1", gentleShot()); err == nil {
		t.Error("A second shot while one is in flight should be rejected")
	}
}

func TestAdvanceShotRunsToRest(t *testing.T) {
	r := newTestRound(t)
	if _, err := r.BeginShot("p1", gentleShot()); err != nil {
		t.Fatal(err)
	}

	dt := 1.0 / 240.0
	var last *FrameResult
	for i := 0; i < 240*31; i++ {
		last = r.AdvanceShot(dt)
		if last.Done {
			break
		}
	}
	if last == nil || !last.Done {
		t.Fatal("Shot never finished")
	}
	if last.Resolved != nil {
		t.Errorf("A gentle roll should end at rest, not terminally: %s", last.Resolved.Outcome)
	}
	if r.ShotInProgress {
		t.Error("Shot should be cleared after rest")
	}
	if !r.Ball.Resting(physics.DefaultTuning()) {
		t.Errorf("Ball should be resting, speed=%.1f", r.Ball.Speed())
	}
	if r.Clock <= 0 {
		t.Error("Level clock should have advanced")
	}
	// The shot went right and nothing sent it back past the tee.
	if r.Ball.Pos.X <= 80 {
		t.Errorf("Ball should have travelled right of the tee, x=%.1f", r.Ball.Pos.X)
	}
}

func TestResolveShotCommitsStroke(t *testing.T) {
	r := newTestRound(t)

	sr, err := r.ResolveShot("p1", gentleShot())
	if err != nil {
		t.Fatalf("ResolveShot failed: %v", err)
	}
	if sr.Outcome != "resting" {
		t.Errorf("Expected resting outcome, got %s", sr.Outcome)
	}
	if sr.HoleStrokes != 1 || sr.TotalStrokes != 1 {
		t.Errorf("Expected 1 stroke, got hole=%d total=%d", sr.HoleStrokes, sr.TotalStrokes)
	}
	if sr.Elapsed <= 0 {
		t.Error("Resolved shot should report elapsed flight time")
	}
	if r.Clock <= 0 {
		t.Error("Level clock should include the resolved flight")
	}
	if r.Ball.Pos.X <= 80 {
		t.Errorf("Committed ball should be right of the tee, x=%.1f", r.Ball.Pos.X)
	}
}

func TestPreviewShotDoesNotCommit(t *testing.T) {
	r := newTestRound(t)
	before := r.Ball

	res, err := r.PreviewShot("p1", gentleShot())
	if err != nil {
		t.Fatalf("PreviewShot failed: %v", err)
	}
	if res.Outcome != physics.OutcomeResting {
		t.Errorf("Expected resting prediction, got %v", res.Outcome)
	}
	if len(res.Trail) == 0 {
		t.Error("Preview should carry a trail for rendering")
	}

	if r.Ball != before {
		t.Error("Preview must not move the live ball")
	}
	if r.TotalStrokes() != 0 {
		t.Errorf("Preview must not count a stroke, got %d", r.TotalStrokes())
	}
	if r.Clock != 0 {
		t.Error("Preview must not advance the level clock")
	}
}

func TestPreviewMatchesResolve(t *testing.T) {
	r := newTestRound(t)
	g := gentleShot()

	res, err := r.PreviewShot("p1", g)
	if err != nil {
		t.Fatal(err)
	}
	sr, err := r.ResolveShot("p1", g)
	if err != nil {
		t.Fatal(err)
	}
	if sr.Ball.Pos != res.Ball.Pos {
		t.Errorf("Preview %v and resolve %v should agree on the same gesture", res.Ball.Pos, sr.Ball.Pos)
	}
}

func TestCaptureAdvancesHole(t *testing.T) {
	r := newTestRound(t)
	r.Strokes[0] = 2

	r.mu.Lock()
	sr := r.commitOutcome(physics.OutcomeCaptured, nil, 1.5)
	r.mu.Unlock()

	if !sr.Captured || !sr.HoleComplete {
		t.Error("Capture should complete the hole")
	}
	if sr.RoundComplete {
		t.Error("First hole should not complete the round")
	}
	if sr.HoleStrokes != 2 {
		t.Errorf("Expected 2 strokes on the hole, got %d", sr.HoleStrokes)
	}
	if r.HoleIndex != 1 {
		t.Errorf("Expected advance to hole 1, got %d", r.HoleIndex)
	}
	if r.Ball.Pos != r.Course.Levels[1].Start {
		t.Errorf("Ball should tee on the next hole, got %v", r.Ball.Pos)
	}
	if r.Clock != 0 {
		t.Error("Level clock should reset on a new hole")
	}
}

func TestRoundCompletesOnLastCapture(t *testing.T) {
	r := newTestRound(t)

	var last *ShotResult
	for i := 0; i < r.Course.Holes(); i++ {
		r.Strokes[r.HoleIndex]++
		r.mu.Lock()
		last = r.commitOutcome(physics.OutcomeCaptured, nil, 1.0)
		r.mu.Unlock()
	}

	if !last.RoundComplete {
		t.Error("Sinking the last hole should complete the round")
	}
	if r.Status != StatusCompleted {
		t.Errorf("Expected COMPLETED, got %s", r.Status)
	}
	if r.CompletedAt == nil {
		t.Error("CompletedAt should be set")
	}
	if last.TotalStrokes != r.Course.Holes() {
		t.Errorf("Expected %d total strokes, got %d", r.Course.Holes(), last.TotalStrokes)
	}
}

func TestHazardLossAddsPenaltyAndReTees(t *testing.T) {
	r := newTestRound(t)

	r.mu.Lock()
	sr := r.commitOutcome(physics.OutcomeHazard, nil, 0.8)
	r.mu.Unlock()

	if sr.Penalty != 1 {
		t.Errorf("Hazard loss should cost a penalty stroke, got %d", sr.Penalty)
	}
	if r.Strokes[0] != 1 {
		t.Errorf("Penalty should be recorded against the hole, got %d", r.Strokes[0])
	}
	if r.Ball.Pos != r.Course.Levels[0].Start {
		t.Errorf("Ball should re-tee, got %v", r.Ball.Pos)
	}
	if r.HoleIndex != 0 || r.Status != StatusInProgress {
		t.Error("Hazard loss must not end the hole or the round")
	}
}

func TestFallReTeesWithoutPenalty(t *testing.T) {
	r := newTestRound(t)

	r.mu.Lock()
	sr := r.commitOutcome(physics.OutcomeFell, nil, 0.5)
	r.mu.Unlock()

	if sr.Penalty != 0 {
		t.Errorf("Falling off the world carries no extra penalty, got %d", sr.Penalty)
	}
	if r.Ball.Pos != r.Course.Levels[0].Start {
		t.Errorf("Ball should re-tee, got %v", r.Ball.Pos)
	}
}

func TestResetBall(t *testing.T) {
	r := newTestRound(t)

	if err := r.ResetBall("p2"); err == nil {
		t.Error("Another player must not reset the ball")
	}
	if err := r.ResetBall("p1"); err != nil {
		t.Fatalf("ResetBall failed: %v", err)
	}
	if r.Strokes[0] != 1 {
		t.Errorf("Manual re-tee should cost a penalty stroke, got %d", r.Strokes[0])
	}
	if r.Ball.Pos != r.Course.Levels[0].Start {
		t.Errorf("Ball should re-tee, got %v", r.Ball.Pos)
	}
}

func TestAbandonIsTerminalAndIdempotent(t *testing.T) {
	r := newTestRound(t)

	r.Abandon("test")
	if r.Status != StatusCancelled {
		t.Errorf("Expected CANCELLED, got %s", r.Status)
	}
	first := r.CompletedAt

	r.Abandon("again")
	if r.CompletedAt != first {
		t.Error("Second Abandon should be a no-op")
	}
}

func TestStateForPlayer(t *testing.T) {
	r := newTestRound(t)

	state := r.StateForPlayer("p1")
	if state["my_round"] != true {
		t.Error("Owner should see my_round=true")
	}
	if state["can_shoot"] != true {
		t.Error("A teed ball should be shootable")
	}
	if state["hole_index"] != 0 {
		t.Errorf("Expected hole 0, got %v", state["hole_index"])
	}
	if _, ok := state["rects"]; !ok {
		t.Error("State should carry the level geometry")
	}
	if _, ok := state["hole"]; !ok {
		t.Error("State should carry the resolved cup")
	}

	spectator := r.StateForPlayer("p2")
	if spectator["my_round"] != false {
		t.Error("Non-owner should see my_round=false")
	}
}

func TestHazardOpeningsInState(t *testing.T) {
	r := newTestRound(t)

	// Jump to the hazard hole
	r.mu.Lock()
	if err := r.loadHole(2); err != nil {
		r.mu.Unlock()
		t.Fatal(err)
	}
	r.mu.Unlock()

	state := r.StateForPlayer("p1")
	hazards, ok := state["hazards"].([]map[string]interface{})
	if !ok || len(hazards) != 1 {
		t.Fatalf("Expected one hazard in state, got %v", state["hazards"])
	}
	frac, ok := hazards[0]["opening"].(float64)
	if !ok || frac < 0 || frac > 1 {
		t.Errorf("Opening fraction out of range: %v", hazards[0]["opening"])
	}
}

func TestConcurrentShotsLaunchOnce(t *testing.T) {
	r := newTestRound(t)
	g := gentleShot()

	var wg sync.WaitGroup
	var launched int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.BeginShot("p1", g); err == nil {
				atomic.AddInt32(&launched, 1)
			}
		}()
	}
	wg.Wait()

	if launched != 1 {
		t.Fatalf("Exactly one racing gesture should launch, got %d", launched)
	}
	if r.Strokes[0] != 1 {
		t.Errorf("One launch should cost one stroke, got %d", r.Strokes[0])
	}
	if !r.ShotInProgress {
		t.Error("The winning gesture should leave a shot in flight")
	}
}

func TestHazardAnimatesWhileAiming(t *testing.T) {
	r := newTestRound(t)

	r.mu.Lock()
	if err := r.loadHole(2); err != nil {
		r.mu.Unlock()
		t.Fatal(err)
	}
	// Pretend the player has been staring at the tee for a while.
	r.holeStart = time.Now().Add(-1200 * time.Millisecond)
	haz := r.world.Level.Hazards[0]
	r.mu.Unlock()

	state := r.StateForPlayer("p1")
	clock, ok := state["clock"].(float64)
	if !ok || clock < 1.1 {
		t.Fatalf("Resting clock should track wall time since tee-up, got %v", state["clock"])
	}

	hazards := state["hazards"].([]map[string]interface{})
	frac := hazards[0]["opening"].(float64)
	if frac != haz.OpeningFraction(clock) {
		t.Errorf("Opening %v does not match the reported clock %v", frac, clock)
	}
}

func TestLaunchSyncsToAimClock(t *testing.T) {
	r := newTestRound(t)

	r.mu.Lock()
	r.holeStart = time.Now().Add(-2 * time.Second)
	r.mu.Unlock()

	if _, err := r.BeginShot("p1", gentleShot()); err != nil {
		t.Fatalf("BeginShot failed: %v", err)
	}
	if r.Clock < 2.0 {
		t.Errorf("Launch should pick up the aiming clock, got %.3f", r.Clock)
	}
}

func TestCapTrailKeepsEndpoints(t *testing.T) {
	trail := make([]physics.Vec2, 12)
	for i := range trail {
		trail[i] = physics.Vec2{X: float64(i)}
	}

	capped := capTrail(trail, 5)
	if len(capped) != 5 {
		t.Fatalf("Expected 5 points, got %d", len(capped))
	}
	if capped[0] != trail[0] || capped[4] != trail[11] {
		t.Errorf("Cap must keep the endpoints, got %v .. %v", capped[0], capped[4])
	}

	short := capTrail(trail, 20)
	if len(short) != len(trail) {
		t.Errorf("A trail under the cap should pass through, got %d points", len(short))
	}
}
