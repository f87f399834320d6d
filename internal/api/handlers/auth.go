package handlers

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/fairwave/backend/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// SetPIN sets or updates a player's PIN, creating the player if needed
// POST /api/v1/auth/set-pin
func SetPIN(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Phone string `json:"phone"`
			PIN   string `json:"pin"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "phone and pin required"})
			return
		}

		phone := strings.TrimSpace(req.Phone)
		pin := strings.TrimSpace(req.PIN)

		if phone == "" || pin == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "phone and pin required"})
			return
		}

		// Validate PIN format (4 digits)
		if len(pin) != 4 || !isDigits(pin) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "PIN must be exactly 4 digits"})
			return
		}

		// Hash PIN with bcrypt
		pinHash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("SetPIN bcrypt error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		// Ensure player exists (create if new)
		player, err := GetOrCreatePlayerByPhone(db, phone)
		if err != nil {
			log.Printf("SetPIN GetOrCreatePlayerByPhone error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		if _, err := db.Exec(`UPDATE players SET pin_hash = $1 WHERE id = $2`, string(pinHash), player.ID); err != nil {
			log.Printf("SetPIN DB error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"display_name": player.DisplayName,
		})
	}
}

// VerifyPIN checks a player's PIN and issues a JWT on success
// POST /api/v1/auth/verify-pin
func VerifyPIN(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Phone string `json:"phone"`
			PIN   string `json:"pin"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "phone and pin required"})
			return
		}

		phone := strings.TrimSpace(req.Phone)
		pin := strings.TrimSpace(req.PIN)
		if phone == "" || pin == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "phone and pin required"})
			return
		}

		var player struct {
			ID          int            `db:"id"`
			DisplayName string         `db:"display_name"`
			PINHash     sql.NullString `db:"pin_hash"`
		}
		err := db.Get(&player, `SELECT id, display_name, pin_hash FROM players WHERE phone_number=$1`, phone)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid phone or PIN"})
			return
		}
		if err != nil {
			log.Printf("VerifyPIN DB error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		if !player.PINHash.Valid || player.PINHash.String == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "no PIN set for this player"})
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(player.PINHash.String), []byte(pin)) != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid phone or PIN"})
			return
		}

		db.Exec(`UPDATE players SET last_active = NOW() WHERE id = $1`, player.ID)

		// Issue JWT
		timeout := cfg.SessionTimeoutMin
		if timeout <= 0 {
			timeout = 30
		}
		exp := time.Now().Add(time.Duration(timeout) * time.Minute)
		custom := jwt.MapClaims{"player_id": player.ID, "phone": phone, "exp": exp.Unix()}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, custom)
		signed, err := token.SignedString([]byte(cfg.JWTSecret))
		if err != nil {
			log.Printf("Failed to sign token: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token": signed,
			"player": gin.H{
				"id":           player.ID,
				"phone":        phone,
				"display_name": player.DisplayName,
			},
		})
	}
}

// AuthMiddleware validates bearer JWT and sets player_id and phone in context
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		token := strings.TrimPrefix(auth, "Bearer ")

		parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !parsed.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		claims, ok := parsed.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		playerIDf, ok := claims["player_id"].(float64)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set("player_id", int(playerIDf))
		if phone, ok := claims["phone"].(string); ok {
			c.Set("phone", phone)
		}
		c.Next()
	}
}
