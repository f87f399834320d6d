package handlers

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fairwave/backend/internal/models"
	"github.com/jmoiron/sqlx"
)

// generateDisplayName creates a short fun display name
func generateDisplayName() string {
	adjectives := []string{"Lucky", "Swift", "Brave", "Jolly", "Mighty", "Quiet", "Clever", "Happy", "Breezy", "Zesty"}
	nouns := []string{"Putter", "Wedge", "Birdie", "Eagle", "Albatross", "Caddie", "Mulligan", "Fairway", "Divot", "Bogey"}
	// use current time to avoid collisions
	si := time.Now().UnixNano() % int64(len(nouns))
	ai := (time.Now().UnixNano() / 7) % int64(len(adjectives))
	num := int(time.Now().UnixNano() % 1000) // 0-999
	return fmt.Sprintf("%s %s %d", adjectives[ai], nouns[si], num)
}

// GetOrCreatePlayerByPhone returns existing player or creates a new one with random display name
func GetOrCreatePlayerByPhone(db *sqlx.DB, phone string) (*models.Player, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}

	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, fmt.Errorf("empty phone")
	}

	var p models.Player
	query := `SELECT id, phone_number, display_name, created_at, total_rounds_played, total_holes_sunk, best_round_strokes, is_active, last_active FROM players WHERE phone_number=$1`
	err := db.Get(&p, query, phone)
	if err == nil {
		return &p, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	name := generateDisplayName()
	if _, err := db.Exec(`INSERT INTO players (phone_number, display_name, created_at, is_active) VALUES ($1, $2, NOW(), true)`, phone, name); err != nil {
		return nil, err
	}
	if err := db.Get(&p, query, phone); err != nil {
		return nil, err
	}
	return &p, nil
}

// isDigits reports whether s contains only ASCII digits
func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
