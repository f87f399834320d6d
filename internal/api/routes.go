package api

import (
	"log"

	"github.com/fairwave/backend/internal/api/handlers"
	"github.com/fairwave/backend/internal/config"
	"github.com/fairwave/backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.WebSocketCORSCheck(cfg))

	// No-cache headers in development so the frontend never sees stale state
	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] Aggressive no-cache headers enabled for all routes")
	}

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)

		// Auth
		auth := v1.Group("/auth")
		{
			auth.POST("/set-pin", handlers.SetPIN(db))
			auth.POST("/verify-pin", handlers.VerifyPIN(db, cfg))
		}

		// Courses (public)
		v1.GET("/courses", handlers.ListCourses)
		v1.GET("/courses/:slug", handlers.GetCourse)

		// Leaderboard (public)
		v1.GET("/leaderboard", handlers.GetLeaderboard(db))

		// Rounds
		rounds := v1.Group("/rounds")
		{
			rounds.POST("", handlers.AuthMiddleware(cfg), handlers.CreateRound(db, cfg))
			rounds.GET("/:token", handlers.GetRoundState)
			rounds.GET("/:token/ws", handlers.HandleRoundWebSocket())
		}

		// Player
		player := v1.Group("/player")
		{
			player.GET("/stats", handlers.AuthMiddleware(cfg), handlers.GetPlayerStats(db))
			player.GET("/rounds", handlers.AuthMiddleware(cfg), handlers.GetPlayerRounds(db))
			player.GET("/rounds/:session_id/shots", handlers.AuthMiddleware(cfg), handlers.GetRoundShots(db))
		}

		// Admin
		adminGroup := v1.Group("/admin", handlers.AdminAuthMiddleware(db))
		{
			adminGroup.GET("/stats", handlers.AdminStats(db))
			adminGroup.GET("/audit", handlers.AdminAuditLog(db))
		}
	}
}
