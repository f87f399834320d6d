package game

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/fairwave/backend/internal/physics"
)

// GolfPlayer represents the player of a round.
type GolfPlayer struct {
	ID             string     `json:"id"`
	PhoneNumber    string     `json:"phone_number"`
	DBPlayerID     int        `json:"db_player_id,omitempty"`
	DisplayName    string     `json:"display_name,omitempty"`
	PlayerToken    string     `json:"-"`
	Connected      bool       `json:"connected"`
	ShowedUp       bool       `json:"showed_up"`
	DisconnectedAt *time.Time `json:"-"`
}

// ShotGesture is the raw aim input: press and release points in world
// coordinates. The ball launches opposite the drag.
type ShotGesture struct {
	PressX   float64 `json:"press_x"`
	PressY   float64 `json:"press_y"`
	ReleaseX float64 `json:"release_x"`
	ReleaseY float64 `json:"release_y"`
}

func (g ShotGesture) press() physics.Vec2   { return physics.Vec2{X: g.PressX, Y: g.PressY} }
func (g ShotGesture) release() physics.Vec2 { return physics.Vec2{X: g.ReleaseX, Y: g.ReleaseY} }

// ShotResult is the committed outcome of a resolved shot.
type ShotResult struct {
	Outcome       string         `json:"outcome"`
	Captured      bool           `json:"captured"`
	Penalty       int            `json:"penalty"`
	HoleIndex     int            `json:"hole_index"`
	HoleStrokes   int            `json:"hole_strokes"`
	TotalStrokes  int            `json:"total_strokes"`
	HoleComplete  bool           `json:"hole_complete"`
	RoundComplete bool           `json:"round_complete"`
	Ball          physics.Ball   `json:"ball"`
	Trail         []physics.Vec2 `json:"trail,omitempty"`
	Elapsed       float64        `json:"elapsed"`
}

// FrameResult is one interactive step of a live shot.
type FrameResult struct {
	Outcome  string       `json:"outcome"`
	Ball     physics.Ball `json:"ball"`
	Clock    float64      `json:"clock"`
	Done     bool         `json:"done"` // shot finished (rest or terminal)
	Resolved *ShotResult  `json:"resolved,omitempty"`
}

// GolfRound is the complete state of one player's trip around a course.
// The live ball is owned here exclusively: the stepper mutates it under
// the round lock, and the fast-forward oracle only ever sees copies.
type GolfRound struct {
	ID     string      `json:"id"`
	Token  string      `json:"token"`
	Player *GolfPlayer `json:"player"`
	Course *Course     `json:"-"`

	HoleIndex int          `json:"hole_index"`
	Ball      physics.Ball `json:"ball"`
	Clock     float64      `json:"clock"` // level-global seconds, drives hazards
	Strokes   []int        `json:"strokes"`

	Status       RoundStatus `json:"status"`
	ExpiresAt    time.Time   `json:"expires_at"`
	CreatedAt    time.Time   `json:"created_at"`
	StartedAt    *time.Time  `json:"started_at,omitempty"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`
	LastActivity time.Time   `json:"last_activity"`
	SessionID    int         `json:"session_id,omitempty"`

	ShotInProgress bool `json:"-"`

	world     *physics.World
	holeStart time.Time // wall clock at tee-up, drives hazard display while aiming
	mu        sync.RWMutex
}

// NewGolfRound creates a round in WAITING state.
func NewGolfRound(id, token string, playerID, phone, playerToken string, dbPlayerID int, displayName string, course *Course) *GolfRound {
	expiryMinutes := 10
	if Manager != nil && Manager.config != nil {
		expiryMinutes = Manager.config.RoundExpiryMinutes
	}

	return &GolfRound{
		ID:    id,
		Token: token,
		Player: &GolfPlayer{
			ID: playerID, PhoneNumber: phone, DBPlayerID: dbPlayerID,
			DisplayName: displayName, PlayerToken: playerToken,
		},
		Course:       course,
		Strokes:      make([]int, course.Holes()),
		Status:       StatusWaiting,
		ExpiresAt:    time.Now().Add(time.Duration(expiryMinutes) * time.Minute),
		CreatedAt:    time.Now(),
		LastActivity: time.Now(),
	}
}

// Initialize tees up the first hole.
func (r *GolfRound) Initialize() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Status == StatusInProgress || r.StartedAt != nil {
		log.Printf("[GOLF INIT] Round %s already initialized, skipping", r.ID)
		return nil
	}

	if err := r.loadHole(0); err != nil {
		return err
	}

	now := time.Now()
	r.StartedAt = &now
	r.Status = StatusInProgress
	r.LastActivity = now

	log.Printf("[GOLF INIT] Round %s started on course %s (%d holes)", r.ID, r.Course.Slug, r.Course.Holes())
	return nil
}

// loadHole swaps in the geometry for hole i, rebuilds the simulation
// context (the cup is re-derived from the anchor) and tees a fresh ball.
// Caller holds the lock.
func (r *GolfRound) loadHole(i int) error {
	lvl, err := r.Course.Level(i)
	if err != nil {
		return err
	}
	r.HoleIndex = i
	r.world = physics.NewWorld(lvl, TuningFor(lvl))
	r.Ball = physics.NewBall(lvl.Start)
	r.Clock = 0
	r.holeStart = time.Now()
	r.ShotInProgress = false
	return nil
}

// wallClockLocked is the level clock while the ball is at rest: seconds
// since the hole was teed. The physics clock syncs to it at launch, so
// the hazard phase the player watched while aiming is the phase the
// flight gets. Caller holds the lock.
func (r *GolfRound) wallClockLocked() float64 {
	if r.holeStart.IsZero() {
		return r.Clock
	}
	return time.Since(r.holeStart).Seconds()
}

// ValidateCanShoot checks round status, ball rest state and the gesture.
func (r *GolfRound) ValidateCanShoot(playerID string, g ShotGesture) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.validateCanShootLocked(playerID, g)
}

// validateCanShootLocked is the guard behind both shot entry points.
// Caller holds the lock; BeginShot and ResolveShot hold the write lock
// so two racing gestures cannot both pass.
func (r *GolfRound) validateCanShootLocked(playerID string, g ShotGesture) error {
	if r.Status != StatusInProgress {
		return errors.New("round is not in progress")
	}
	if r.Player.ID != playerID {
		return errors.New("not your round")
	}
	if r.ShotInProgress {
		return errors.New("a shot is already in flight")
	}
	if !r.Ball.Resting(r.world.Tuning) {
		return errors.New("ball is still moving")
	}
	if _, ok := physics.ShotVelocity(g.press(), g.release(), r.world.Tuning); !ok {
		return errors.New("drag too short")
	}
	return nil
}

// BeginShot converts the gesture into a launch and marks the shot live.
// The ball is then advanced frame by frame via AdvanceShot.
func (r *GolfRound) BeginShot(playerID string, g ShotGesture) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.validateCanShootLocked(playerID, g); err != nil {
		return 0, err
	}

	vel, ok := physics.ShotVelocity(g.press(), g.release(), r.world.Tuning)
	if !ok {
		return 0, errors.New("drag too short")
	}
	r.Clock = r.wallClockLocked()
	r.Ball.Vel = vel
	r.Ball.OnGround = false
	r.Strokes[r.HoleIndex]++
	r.ShotInProgress = true
	r.LastActivity = time.Now()

	log.Printf("[GOLF] Round %s hole %d stroke %d: launch v=(%.0f,%.0f)",
		r.ID, r.HoleIndex, r.Strokes[r.HoleIndex], vel.X, vel.Y)
	return r.Strokes[r.HoleIndex], nil
}

// AdvanceShot steps the live ball by dt on the interactive path. Terminal
// outcomes commit exactly the way ResolveShot commits them, so the two
// paths cannot drift apart.
func (r *GolfRound) AdvanceShot(dt float64) *FrameResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Status != StatusInProgress || !r.ShotInProgress {
		return &FrameResult{Outcome: physics.OutcomeResting.String(), Ball: r.Ball, Clock: r.Clock, Done: true}
	}

	out := r.world.Step(&r.Ball, r.Clock, dt)
	r.Clock += dt

	fr := &FrameResult{Outcome: out.String(), Ball: r.Ball, Clock: r.Clock}
	if out.Terminal() {
		fr.Resolved = r.commitOutcome(out, nil, 0)
		fr.Ball = r.Ball
		fr.Done = true
		r.ShotInProgress = false
	} else if out == physics.OutcomeResting {
		fr.Done = true
		r.ShotInProgress = false
		r.saveShotRecord("rest", 0)
	}
	return fr
}

// ResolveShot is the instant path: validate, launch, then let the oracle
// run the whole flight at its fine step and commit the result.
func (r *GolfRound) ResolveShot(playerID string, g ShotGesture) (*ShotResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.validateCanShootLocked(playerID, g); err != nil {
		return nil, err
	}

	vel, ok := physics.ShotVelocity(g.press(), g.release(), r.world.Tuning)
	if !ok {
		return nil, errors.New("drag too short")
	}

	ball := r.Ball // value copy; the oracle never touches the live ball
	ball.Vel = vel
	ball.OnGround = false

	r.Clock = r.wallClockLocked()
	res := r.world.FastForward(ball, r.Clock)
	res.Trail = capTrail(res.Trail, trailLimit())

	r.Strokes[r.HoleIndex]++
	r.Ball = res.Ball
	r.Clock += res.Elapsed

	sr := r.commitOutcome(res.Outcome, res.Trail, res.Elapsed)
	r.LastActivity = time.Now()
	return sr, nil
}

// PreviewShot runs the oracle without committing anything: the caller gets
// the predicted resting state and trail for an aim preview. Hazards are
// predicted conservatively (fully-open mouths), so a preview may show a
// loss where a perfectly timed live shot would slip through.
func (r *GolfRound) PreviewShot(playerID string, g ShotGesture) (*physics.ForwardResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.Status != StatusInProgress {
		return nil, errors.New("round is not in progress")
	}
	if r.Player.ID != playerID {
		return nil, errors.New("not your round")
	}
	vel, ok := physics.ShotVelocity(g.press(), g.release(), r.world.Tuning)
	if !ok {
		return nil, errors.New("drag too short")
	}

	ball := r.Ball
	ball.Vel = vel
	ball.OnGround = false
	res := r.world.FastForward(ball, r.wallClockLocked())
	res.Trail = capTrail(res.Trail, trailLimit())
	return &res, nil
}

// capTrail decimates a playback trail to at most max points, always
// keeping the final point.
func capTrail(trail []physics.Vec2, max int) []physics.Vec2 {
	if max <= 1 || len(trail) <= max {
		return trail
	}
	out := make([]physics.Vec2, 0, max)
	stride := float64(len(trail)-1) / float64(max-1)
	for i := 0; i < max-1; i++ {
		out = append(out, trail[int(float64(i)*stride)])
	}
	return append(out, trail[len(trail)-1])
}

func trailLimit() int {
	if Manager != nil && Manager.config != nil && Manager.config.MaxTrailPoints > 0 {
		return Manager.config.MaxTrailPoints
	}
	return 600
}

// commitOutcome applies a terminal (or resting) outcome to round state:
// hazard and fall losses re-tee the ball, capture advances the course.
// Caller holds the lock.
func (r *GolfRound) commitOutcome(out physics.Outcome, trail []physics.Vec2, elapsed float64) *ShotResult {
	sr := &ShotResult{
		Outcome:   out.String(),
		HoleIndex: r.HoleIndex,
		Ball:      r.Ball,
		Trail:     trail,
		Elapsed:   elapsed,
	}

	switch out {
	case physics.OutcomeHazard:
		// Hazard loss: penalty stroke, back to the tee.
		r.Strokes[r.HoleIndex]++
		sr.Penalty = 1
		r.Ball = physics.NewBall(r.world.Level.Start)
		log.Printf("[GOLF] Round %s hole %d: hazard loss, penalty stroke", r.ID, r.HoleIndex)

	case physics.OutcomeFell:
		// Out of bounds: back to the tee, no penalty beyond the stroke.
		r.Ball = physics.NewBall(r.world.Level.Start)
		log.Printf("[GOLF] Round %s hole %d: ball out of bounds, re-teed", r.ID, r.HoleIndex)

	case physics.OutcomeCaptured:
		sr.Captured = true
		sr.HoleComplete = true
		log.Printf("[GOLF] Round %s hole %d sunk in %d", r.ID, r.HoleIndex, r.Strokes[r.HoleIndex])
	}

	sr.HoleStrokes = r.Strokes[r.HoleIndex]
	sr.TotalStrokes = r.totalStrokesLocked()
	sr.Ball = r.Ball
	r.saveShotRecord(sr.Outcome, sr.Penalty)

	if sr.Captured {
		if r.HoleIndex+1 < r.Course.Holes() {
			if err := r.loadHole(r.HoleIndex + 1); err != nil {
				log.Printf("[GOLF] Round %s failed to load next hole: %v", r.ID, err)
			}
		} else {
			r.Status = StatusCompleted
			now := time.Now()
			r.CompletedAt = &now
			sr.RoundComplete = true
			log.Printf("[GOLF] Round %s complete: %d strokes (par %d)", r.ID, sr.TotalStrokes, r.Course.TotalPar())
			if Manager != nil {
				Manager.SaveFinalRound(r)
			}
		}
	}
	return sr
}

// saveShotRecord persists the stroke via the manager. Caller holds the lock.
func (r *GolfRound) saveShotRecord(outcome string, penalty int) {
	if Manager == nil || r.Player.DBPlayerID <= 0 || r.SessionID <= 0 {
		return
	}
	Manager.RecordGolfShot(r.SessionID, r.Player.DBPlayerID, r.HoleIndex, r.Strokes[r.HoleIndex], outcome, penalty)
}

// ResetBall re-tees the current hole for one penalty stroke.
func (r *GolfRound) ResetBall(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Status != StatusInProgress {
		return errors.New("round is not in progress")
	}
	if r.Player.ID != playerID {
		return errors.New("not your round")
	}

	r.Strokes[r.HoleIndex]++
	r.Ball = physics.NewBall(r.world.Level.Start)
	r.ShotInProgress = false
	r.LastActivity = time.Now()
	log.Printf("[GOLF] Round %s hole %d: manual re-tee (penalty stroke)", r.ID, r.HoleIndex)
	return nil
}

// Abandon cancels an unfinished round.
func (r *GolfRound) Abandon(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Status == StatusCompleted || r.Status == StatusCancelled {
		return
	}
	r.Status = StatusCancelled
	now := time.Now()
	r.CompletedAt = &now
	log.Printf("[GOLF] Round %s cancelled: %s", r.ID, reason)

	if Manager != nil {
		Manager.SaveFinalRound(r)
	}
}

// TotalStrokes sums strokes over every hole played so far.
func (r *GolfRound) TotalStrokes() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.totalStrokesLocked()
}

func (r *GolfRound) totalStrokesLocked() int {
	total := 0
	for _, s := range r.Strokes {
		total += s
	}
	return total
}

// StateForPlayer returns the renderable snapshot: geometry, ball pose,
// cup, stroke counts and each hazard's current opening fraction.
func (r *GolfRound) StateForPlayer(playerID string) map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Between shots the hazards keep oscillating on the wall clock, so
	// the renderer sees them move while the player aims.
	clock := r.Clock
	if !r.ShotInProgress {
		clock = r.wallClockLocked()
	}

	state := map[string]interface{}{
		"round_id":      r.ID,
		"token":         r.Token,
		"status":        r.Status,
		"player_id":     r.Player.ID,
		"display_name":  r.Player.DisplayName,
		"connected":     r.Player.Connected,
		"course":        r.Course.Slug,
		"course_name":   r.Course.Name,
		"holes":         r.Course.Holes(),
		"hole_index":    r.HoleIndex,
		"strokes":       append([]int(nil), r.Strokes...),
		"total_strokes": r.totalStrokesLocked(),
		"total_par":     r.Course.TotalPar(),
		"ball":          r.Ball,
		"clock":         clock,
		"my_round":      r.Player.ID == playerID,
	}

	if r.world != nil {
		lvl := r.world.Level
		state["level_name"] = lvl.Name
		state["par"] = lvl.Par
		state["rects"] = lvl.Rects
		state["start"] = lvl.Start
		state["hole"] = r.world.Hole
		state["open_green"] = lvl.OpenGreen
		state["can_shoot"] = !r.ShotInProgress && r.Ball.Resting(r.world.Tuning)

		openings := make([]map[string]interface{}, 0, len(lvl.Hazards))
		for i, h := range lvl.Hazards {
			openings = append(openings, map[string]interface{}{
				"index":   i,
				"body":    h.Body,
				"opening": h.OpeningFraction(clock),
				"danger":  h.DangerRect(clock),
			})
		}
		state["hazards"] = openings
	}
	return state
}

// === Connection management ===

func (r *GolfRound) SetPlayerConnected(playerID string, connected bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Player.ID == playerID {
		r.Player.Connected = connected
		if connected {
			r.Player.DisconnectedAt = nil
		}
	}
}

func (r *GolfRound) MarkPlayerShowedUp(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Player.ID == playerID {
		r.Player.ShowedUp = true
	}
}

func (r *GolfRound) SetPlayerDisconnected(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if r.Player.ID == playerID {
		r.Player.Connected = false
		r.Player.DisconnectedAt = &now
	}
}

// SaveToRedis saves the round state via the manager.
func (r *GolfRound) SaveToRedis() {
	if Manager != nil && Manager.rdb != nil {
		Manager.saveRoundToRedis(r)
	}
}
