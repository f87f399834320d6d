package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/fairwave/backend/internal/config"
	"github.com/fairwave/backend/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// GameManager manages all active rounds
type GameManager struct {
	rounds        map[string]*GolfRound // keyed by round ID
	playerToRound map[string]string     // player ID -> round ID
	rdb           *redis.Client         // Redis client for persistence
	db            *sqlx.DB              // SQL DB for persistent records
	config        *config.Config        // Application config
	mu            sync.RWMutex
}

// RoundCreation is returned when a new round is set up
type RoundCreation struct {
	RoundID     string
	RoundToken  string
	PlayerID    string
	PlayerToken string
	PlayerLink  string
	DisplayName string
	CourseSlug  string
	ExpiresAt   time.Time
	SessionID   int
}

var (
	// Global game manager instance
	Manager *GameManager
)

// InitializeManager initializes the global game manager with Redis, DB and config
func InitializeManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	Manager = NewGameManager(db, rdb, cfg)
	// Start background jobs
	go Manager.StartExpiryChecker()
	go Manager.StartIdleSweeper()
}

// NewGameManager creates a new game manager
func NewGameManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) *GameManager {
	return &GameManager{
		rounds:        make(map[string]*GolfRound),
		playerToRound: make(map[string]string),
		rdb:           rdb,
		db:            db,
		config:        cfg,
	}
}

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// generateRoundID generates a unique round ID
func generateRoundID() string {
	return "round_" + generateToken(8)
}

// CreateRound sets up a new round on the named course for one player.
func (gm *GameManager) CreateRound(phoneNumber string, dbPlayerID int, displayName, courseSlug string) (*RoundCreation, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	course, err := CourseBySlug(courseSlug)
	if err != nil {
		return nil, err
	}

	roundID := generateRoundID()
	roundToken := generateToken(16)
	playerID := "p_" + generateToken(4)
	playerToken := generateToken(16)

	round := NewGolfRound(roundID, roundToken, playerID, phoneNumber, playerToken, dbPlayerID, displayName, course)

	// Stays in StatusWaiting until the player connects via WebSocket.
	gm.rounds[roundID] = round
	gm.playerToRound[playerID] = roundID

	log.Printf("[ROUNDS] Round created: %s course=%s player=%s", roundID, course.Slug, playerID)

	gm.saveRoundToRedis(round)

	// Persist a round_sessions row if we have a DB player id
	var sessionID int
	if gm.db != nil && dbPlayerID > 0 {
		err := gm.db.QueryRowx(`INSERT INTO round_sessions (round_token, player_id, course_slug, holes, status, created_at, expiry_time) VALUES ($1, $2, $3, $4, $5, NOW(), $6) RETURNING id`,
			roundToken, dbPlayerID, course.Slug, course.Holes(), string(StatusWaiting), round.ExpiresAt).Scan(&sessionID)
		if err != nil {
			log.Printf("[DB] Failed to create round_session: %v", err)
		} else if sessionID > 0 {
			round.SessionID = sessionID
			gm.saveRoundToRedis(round)
		}
	}

	baseURL := gm.config.FrontendURL
	playerLink := baseURL + "/r/" + roundToken + "?pt=" + playerToken

	return &RoundCreation{
		RoundID:     roundID,
		RoundToken:  roundToken,
		PlayerID:    playerID,
		PlayerToken: playerToken,
		PlayerLink:  playerLink,
		DisplayName: displayName,
		CourseSlug:  course.Slug,
		ExpiresAt:   round.ExpiresAt,
		SessionID:   sessionID,
	}, nil
}

// GetRound retrieves a round by ID
func (gm *GameManager) GetRound(roundID string) (*GolfRound, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	round, exists := gm.rounds[roundID]
	if !exists {
		return nil, errors.New("round not found")
	}
	return round, nil
}

// GetRoundByToken retrieves a round by its token
func (gm *GameManager) GetRoundByToken(token string) (*GolfRound, error) {
	gm.mu.RLock()
	for _, round := range gm.rounds {
		if round.Token == token {
			gm.mu.RUnlock()
			return round, nil
		}
	}
	gm.mu.RUnlock()

	// Not found in memory, try Redis
	round, err := gm.loadRoundFromRedis(token)
	if err != nil {
		return nil, errors.New("round not found")
	}

	gm.mu.Lock()
	gm.rounds[round.ID] = round
	gm.playerToRound[round.Player.ID] = round.ID
	gm.mu.Unlock()

	return round, nil
}

// GetRoundForPlayer retrieves the active round for a player
func (gm *GameManager) GetRoundForPlayer(playerID string) (*GolfRound, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	roundID, exists := gm.playerToRound[playerID]
	if !exists {
		return nil, errors.New("player not in a round")
	}

	round, exists := gm.rounds[roundID]
	if !exists {
		return nil, errors.New("round not found")
	}
	return round, nil
}

// EndRound removes a finished round from the manager
func (gm *GameManager) EndRound(roundID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	round, exists := gm.rounds[roundID]
	if !exists {
		return errors.New("round not found")
	}

	delete(gm.playerToRound, round.Player.ID)
	delete(gm.rounds, roundID)
	return nil
}

// GetConfig exposes the application config to callers outside the package
func (gm *GameManager) GetConfig() *config.Config {
	return gm.config
}

// GetActiveRoundCount returns the number of in-memory rounds
func (gm *GameManager) GetActiveRoundCount() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.rounds)
}

// saveRoundToRedis persists round state to Redis
func (gm *GameManager) saveRoundToRedis(round *GolfRound) error {
	if gm.rdb == nil {
		return nil // No Redis client, skip
	}

	ctx := context.Background()

	// Snapshot under the round lock; the shot ticker mutates these fields.
	round.mu.RLock()
	key := "round:" + round.Token + ":state"
	player := *round.Player // marshaled after the lock is released
	roundData := map[string]interface{}{
		"id":            round.ID,
		"token":         round.Token,
		"player":        player,
		"course":        round.Course.Slug,
		"hole_index":    round.HoleIndex,
		"ball":          round.Ball,
		"clock":         round.Clock,
		"strokes":       append([]int(nil), round.Strokes...),
		"status":        round.Status,
		"created_at":    round.CreatedAt,
		"started_at":    round.StartedAt,
		"completed_at":  round.CompletedAt,
		"last_activity": round.LastActivity,
		"session_id":    round.SessionID,
	}
	round.mu.RUnlock()

	data, err := json.Marshal(roundData)
	if err != nil {
		return err
	}

	// Save with 1 hour expiration
	return gm.rdb.SetEx(ctx, key, data, time.Hour).Err()
}

// loadRoundFromRedis restores round state from Redis. Geometry is not
// serialized: the course slug is enough to rebuild the hole, and the
// ball is re-teed on the current hole since a mid-flight state cannot
// be meaningfully resumed across a restart.
func (gm *GameManager) loadRoundFromRedis(token string) (*GolfRound, error) {
	if gm.rdb == nil {
		return nil, errors.New("no redis client")
	}

	ctx := context.Background()
	key := "round:" + token + ":state"

	data, err := gm.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, errors.New("round not found in redis")
	}
	if err != nil {
		return nil, err
	}

	var roundData map[string]interface{}
	if err := json.Unmarshal([]byte(data), &roundData); err != nil {
		return nil, err
	}

	round := &GolfRound{
		LastActivity: time.Now(),
	}

	if id, ok := roundData["id"].(string); ok {
		round.ID = id
	}
	if tok, ok := roundData["token"].(string); ok {
		round.Token = tok
	}
	if status, ok := roundData["status"].(string); ok {
		round.Status = RoundStatus(status)
	}
	if sessionID, ok := roundData["session_id"].(float64); ok {
		round.SessionID = int(sessionID)
	}
	if holeIndex, ok := roundData["hole_index"].(float64); ok {
		round.HoleIndex = int(holeIndex)
	}
	if createdAt, ok := roundData["created_at"].(string); ok {
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			round.CreatedAt = t
		}
	}
	if startedAt, ok := roundData["started_at"]; ok && startedAt != nil {
		if s, ok := startedAt.(string); ok {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				round.StartedAt = &t
			}
		}
	}

	slug := ""
	if s, ok := roundData["course"].(string); ok {
		slug = s
	}
	course, err := CourseBySlug(slug)
	if err != nil {
		return nil, err
	}
	round.Course = course

	if strokesData, ok := roundData["strokes"].([]interface{}); ok {
		round.Strokes = make([]int, 0, len(strokesData))
		for _, v := range strokesData {
			if f, ok := v.(float64); ok {
				round.Strokes = append(round.Strokes, int(f))
			}
		}
	}
	if len(round.Strokes) != course.Holes() {
		round.Strokes = make([]int, course.Holes())
	}

	if playerData, ok := roundData["player"].(map[string]interface{}); ok {
		round.Player = parsePlayerFromData(playerData)
	}
	if round.Player == nil {
		return nil, errors.New("round has no player data")
	}

	// Rebuild the simulation context for the restored hole index.
	if round.HoleIndex >= course.Holes() {
		round.HoleIndex = course.Holes() - 1
	}
	if err := round.loadHole(round.HoleIndex); err != nil {
		return nil, err
	}

	return round, nil
}

// parsePlayerFromData reconstructs a GolfPlayer from JSON data
func parsePlayerFromData(data map[string]interface{}) *GolfPlayer {
	player := &GolfPlayer{
		Connected: false, // Reset connection status
	}

	if id, ok := data["id"].(string); ok {
		player.ID = id
	}
	if phoneNumber, ok := data["phone_number"].(string); ok {
		player.PhoneNumber = phoneNumber
	}
	if displayName, ok := data["display_name"].(string); ok {
		player.DisplayName = displayName
	}
	if dbID, ok := data["db_player_id"].(float64); ok {
		player.DBPlayerID = int(dbID)
	}

	return player
}

// StartExpiryChecker runs a background job to check for expired rounds
func (gm *GameManager) StartExpiryChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		gm.checkExpiredRounds()
	}
}

// checkExpiredRounds cancels WAITING rounds whose expiry has passed
func (gm *GameManager) checkExpiredRounds() {
	gm.mu.RLock()
	now := time.Now()
	var expired []*GolfRound
	for _, round := range gm.rounds {
		if round.Status == StatusWaiting && now.After(round.ExpiresAt) {
			expired = append(expired, round)
		}
	}
	gm.mu.RUnlock()

	for _, r := range expired {
		// Re-check under the round lock to avoid races
		r.mu.RLock()
		isWaiting := r.Status == StatusWaiting
		r.mu.RUnlock()
		if !isWaiting {
			continue
		}

		log.Printf("[EXPIRY] Round %s expired before the player showed up; cancelling", r.ID)
		r.Abandon("expired")

		gm.mu.Lock()
		delete(gm.playerToRound, r.Player.ID)
		delete(gm.rounds, r.ID)
		gm.mu.Unlock()

		gm.PublishRoundEvent(r.Token, "round_expired", nil)
	}
}

// StartDisconnectWatch cancels a round whose player never reconnects
// within the grace period. Reconnecting clears DisconnectedAt, which
// voids the pending check.
func (gm *GameManager) StartDisconnectWatch(r *GolfRound) {
	grace := 120 * time.Second
	if gm.config != nil {
		grace = time.Duration(gm.config.DisconnectGracePeriodSecs) * time.Second
	}
	time.AfterFunc(grace, func() {
		r.mu.RLock()
		gone := !r.Player.Connected && r.Player.DisconnectedAt != nil &&
			time.Since(*r.Player.DisconnectedAt) >= grace
		active := r.Status == StatusWaiting || r.Status == StatusInProgress
		r.mu.RUnlock()
		if !gone || !active {
			return
		}

		log.Printf("[ROUNDS] Round %s: player gone past the %s grace period, cancelling", r.ID, grace)
		r.Abandon("disconnect timeout")
		gm.EndRound(r.ID)
		gm.PublishRoundEvent(r.Token, "round_abandoned", map[string]interface{}{
			"reason": "disconnect timeout",
		})
	})
}

// RecordGolfShot persists one stroke to the round_shots table.
func (gm *GameManager) RecordGolfShot(sessionID, playerID, holeIndex, strokeNumber int, outcome string, penalty int) {
	if gm.db == nil {
		return
	}
	_, err := gm.db.Exec(`INSERT INTO round_shots (session_id, player_id, hole_index, stroke_number, outcome, penalty, created_at) VALUES ($1, $2, $3, $4, $5, $6, NOW())`,
		sessionID, playerID, holeIndex, strokeNumber, outcome, penalty)
	if err != nil {
		log.Printf("[DB] Failed to record shot for session %d: %v", sessionID, err)
	}
}

// SaveFinalRound writes the terminal state of a round to the DB.
// Called for both completed and cancelled rounds.
func (gm *GameManager) SaveFinalRound(r *GolfRound) {
	go func() {
		gm.saveRoundToRedis(r)

		r.mu.RLock()
		status := r.Status
		sessionID := r.SessionID
		token := r.Token
		holesPlayed := r.HoleIndex + 1
		total := r.totalStrokesLocked()
		r.mu.RUnlock()

		if gm.db == nil || sessionID <= 0 {
			return
		}

		_, err := gm.db.Exec(`UPDATE round_sessions SET status=$1, total_strokes=$2, holes_played=$3, completed_at=NOW() WHERE id=$4`,
			string(status), total, holesPlayed, sessionID)
		if err != nil {
			log.Printf("[DB] Failed to finalize round_session %d: %v", sessionID, err)
			return
		}
		log.Printf("[DB] Round session %d finalized: status=%s strokes=%d", sessionID, status, total)

		gm.PublishRoundEvent(token, "round_finalized", map[string]interface{}{
			"status":        string(status),
			"total_strokes": total,
		})
	}()
}

// PublishRoundEvent fans a round event out over Redis pub/sub so other
// server instances (and the admin dashboard) can observe it.
func (gm *GameManager) PublishRoundEvent(roundToken, event string, payload map[string]interface{}) {
	if gm.rdb == nil {
		return
	}
	msg := map[string]interface{}{
		"round_token": roundToken,
		"event":       event,
		"at":          time.Now().Format(time.RFC3339),
	}
	for k, v := range payload {
		msg[k] = v
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := gm.rdb.Publish(context.Background(), "round_events", data).Err(); err != nil {
		log.Printf("[REDIS] Failed to publish round event %s: %v", event, err)
	}
}

// Leaderboard returns the best completed rounds per course from the DB.
func (gm *GameManager) Leaderboard(courseSlug string, limit int) ([]models.LeaderboardEntry, error) {
	if gm.db == nil {
		return nil, errors.New("no database configured")
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	var entries []models.LeaderboardEntry
	err := gm.db.Select(&entries, `
		SELECT p.display_name, rs.course_slug, rs.total_strokes, rs.completed_at
		FROM round_sessions rs
		JOIN players p ON p.id = rs.player_id
		WHERE rs.status = $1 AND rs.course_slug = $2 AND rs.total_strokes > 0
		ORDER BY rs.total_strokes ASC, rs.completed_at ASC
		LIMIT $3`,
		string(StatusCompleted), courseSlug, limit)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
