package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/fairwave/backend/internal/admin"
	"github.com/fairwave/backend/internal/game"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// AdminAuthMiddleware validates the admin credential headers and records
// the access in the audit log.
func AdminAuthMiddleware(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetHeader("X-Admin-User")
		token := c.GetHeader("X-Admin-Token")
		if user == "" || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin credentials required"})
			return
		}

		account, err := admin.ValidateAdminCredentials(db, user, token)
		if err != nil {
			admin.LogAdminAction(db, user, c.ClientIP(), c.FullPath(), "auth", nil, false)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin credentials"})
			return
		}

		admin.LogAdminAction(db, user, c.ClientIP(), c.FullPath(), "auth", nil, true)
		c.Set("admin_user", account.Username)
		c.Next()
	}
}

// AdminStats returns a live operational snapshot
// GET /api/v1/admin/stats
func AdminStats(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := gin.H{
			"active_rounds": game.Manager.GetActiveRoundCount(),
		}

		if db != nil {
			var counts struct {
				Players   int `db:"players"`
				Sessions  int `db:"sessions"`
				Completed int `db:"completed"`
				Shots     int `db:"shots"`
			}
			err := db.Get(&counts, `
				SELECT (SELECT COUNT(*) FROM players) AS players,
				       (SELECT COUNT(*) FROM round_sessions) AS sessions,
				       (SELECT COUNT(*) FROM round_sessions WHERE status = 'COMPLETED') AS completed,
				       (SELECT COUNT(*) FROM round_shots) AS shots`)
			if err != nil {
				log.Printf("[ADMIN] Stats query failed: %v", err)
			} else {
				stats["players"] = counts.Players
				stats["sessions"] = counts.Sessions
				stats["completed_rounds"] = counts.Completed
				stats["total_shots"] = counts.Shots
			}
		}

		c.JSON(http.StatusOK, stats)
	}
}

// AdminAuditLog returns recent admin actions
// GET /api/v1/admin/audit?limit=50&offset=0
func AdminAuditLog(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if limit <= 0 || limit > 500 {
			limit = 50
		}

		logs, err := admin.GetAdminAuditLogs(db, limit, offset)
		if err != nil {
			log.Printf("[ADMIN] Audit query failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "audit log unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": logs})
	}
}
