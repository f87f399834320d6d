package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/fairwave/backend/internal/config"
	"github.com/fairwave/backend/internal/game"
	"github.com/fairwave/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// CreateRound starts a new round for the authenticated player
// POST /api/v1/rounds
func CreateRound(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Course string `json:"course"`
		}
		// Body is optional; an empty course means the default
		c.BindJSON(&req)

		playerID := c.GetInt("player_id")
		phone := c.GetString("phone")

		displayName := ""
		if db != nil {
			if p, err := GetOrCreatePlayerByPhone(db, phone); err == nil {
				displayName = p.DisplayName
			}
		}

		course := req.Course
		if course == "" {
			course = cfg.DefaultCourse
		}

		result, err := game.Manager.CreateRound(phone, playerID, displayName, course)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		log.Printf("[API] Round %s created for player %d on course %s", result.RoundID, playerID, result.CourseSlug)

		c.JSON(http.StatusCreated, gin.H{
			"round_id":     result.RoundID,
			"round_token":  result.RoundToken,
			"player_token": result.PlayerToken,
			"link":         result.PlayerLink,
			"course":       result.CourseSlug,
			"display_name": result.DisplayName,
			"expires_at":   result.ExpiresAt,
		})
	}
}

// GetRoundState returns the current state of a round by its token.
// The player token gates whose view is returned.
// GET /api/v1/rounds/:token
func GetRoundState(c *gin.Context) {
	token := c.Param("token")
	playerToken := c.Query("pt")

	r, err := game.Manager.GetRoundByToken(token)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "round not found"})
		return
	}

	viewerID := ""
	if playerToken != "" && r.Player.PlayerToken == playerToken {
		viewerID = r.Player.ID
	}

	state := r.StateForPlayer(viewerID)
	c.JSON(http.StatusOK, state)
}

// GetLeaderboard returns the best completed rounds for a course
// GET /api/v1/leaderboard?course=clubhouse&limit=10
func GetLeaderboard(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.DefaultQuery("course", "clubhouse")
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

		entries, err := game.Manager.Leaderboard(slug, limit)
		if err != nil {
			log.Printf("[API] Leaderboard query failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "leaderboard unavailable"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"course":  slug,
			"entries": entries,
		})
	}
}

// GetPlayerRounds returns the authenticated player's recent sessions
// GET /api/v1/player/rounds
func GetPlayerRounds(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID := c.GetInt("player_id")
		if db == nil || playerID <= 0 {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "history unavailable"})
			return
		}

		var sessions []models.RoundSession
		err := db.Select(&sessions, `
			SELECT id, round_token, player_id, course_slug, holes, holes_played,
			       total_strokes, status, created_at, started_at, completed_at, expiry_time
			FROM round_sessions WHERE player_id = $1
			ORDER BY created_at DESC LIMIT 20`, playerID)
		if err != nil {
			log.Printf("[API] Round history query failed for %d: %v", playerID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "history unavailable"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"rounds": sessions})
	}
}

// GetRoundShots returns the stroke-by-stroke record of one of the
// authenticated player's sessions
// GET /api/v1/player/rounds/:session_id/shots
func GetRoundShots(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID := c.GetInt("player_id")
		sessionID, err := strconv.Atoi(c.Param("session_id"))
		if db == nil || playerID <= 0 || err != nil || sessionID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session"})
			return
		}

		var shots []models.RoundShot
		err = db.Select(&shots, `
			SELECT id, session_id, player_id, hole_index, stroke_number, outcome, penalty, created_at
			FROM round_shots WHERE session_id = $1 AND player_id = $2
			ORDER BY id`, sessionID, playerID)
		if err != nil {
			log.Printf("[API] Shot history query failed for session %d: %v", sessionID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "history unavailable"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "shots": shots})
	}
}

// GetPlayerStats returns career stats for the authenticated player
// GET /api/v1/player/stats
func GetPlayerStats(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID := c.GetInt("player_id")
		if db == nil || playerID <= 0 {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "stats unavailable"})
			return
		}

		var stats struct {
			RoundsPlayed int `db:"rounds_played"`
			RoundsDone   int `db:"rounds_done"`
			BestStrokes  int `db:"best_strokes"`
			TotalStrokes int `db:"total_strokes"`
		}
		err := db.Get(&stats, `
			SELECT COUNT(*) AS rounds_played,
			       COUNT(*) FILTER (WHERE status = 'COMPLETED') AS rounds_done,
			       COALESCE(MIN(total_strokes) FILTER (WHERE status = 'COMPLETED' AND total_strokes > 0), 0) AS best_strokes,
			       COALESCE(SUM(total_strokes), 0) AS total_strokes
			FROM round_sessions WHERE player_id = $1`, playerID)
		if err != nil {
			log.Printf("[API] Player stats query failed for %d: %v", playerID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "stats unavailable"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"rounds_played":    stats.RoundsPlayed,
			"rounds_completed": stats.RoundsDone,
			"best_round":       stats.BestStrokes,
			"total_strokes":    stats.TotalStrokes,
		})
	}
}
