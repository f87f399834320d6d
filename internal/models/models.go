package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// Player represents a user in the system
type Player struct {
	ID                int          `db:"id" json:"id"`
	PhoneNumber       string       `db:"phone_number" json:"phone_number"`
	DisplayName       string       `db:"display_name" json:"display_name"`
	CreatedAt         time.Time    `db:"created_at" json:"created_at"`
	TotalRoundsPlayed int          `db:"total_rounds_played" json:"total_rounds_played"`
	TotalHolesSunk    int          `db:"total_holes_sunk" json:"total_holes_sunk"`
	BestRoundStrokes  int          `db:"best_round_strokes" json:"best_round_strokes"`
	IsActive          bool         `db:"is_active" json:"is_active"`
	LastActive        sql.NullTime `db:"last_active" json:"last_active,omitempty"`
}

// RoundSession represents one player's trip around a course
type RoundSession struct {
	ID           int          `db:"id" json:"id"`
	RoundToken   string       `db:"round_token" json:"round_token"`
	PlayerID     int          `db:"player_id" json:"player_id"`
	CourseSlug   string       `db:"course_slug" json:"course_slug"`
	Holes        int          `db:"holes" json:"holes"`
	HolesPlayed  int          `db:"holes_played" json:"holes_played"`
	TotalStrokes int          `db:"total_strokes" json:"total_strokes"`
	Status       string       `db:"status" json:"status"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	StartedAt    sql.NullTime `db:"started_at" json:"started_at,omitempty"`
	CompletedAt  sql.NullTime `db:"completed_at" json:"completed_at,omitempty"`
	ExpiryTime   time.Time    `db:"expiry_time" json:"expiry_time"`
}

// RoundShot represents a single stroke in a round
type RoundShot struct {
	ID           int       `db:"id" json:"id"`
	SessionID    int       `db:"session_id" json:"session_id"`
	PlayerID     int       `db:"player_id" json:"player_id"`
	HoleIndex    int       `db:"hole_index" json:"hole_index"`
	StrokeNumber int       `db:"stroke_number" json:"stroke_number"`
	Outcome      string    `db:"outcome" json:"outcome"`
	Penalty      int       `db:"penalty" json:"penalty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// LeaderboardEntry is one row of the per-course best-rounds query
type LeaderboardEntry struct {
	DisplayName  string       `db:"display_name" json:"display_name"`
	CourseSlug   string       `db:"course_slug" json:"course_slug"`
	TotalStrokes int          `db:"total_strokes" json:"total_strokes"`
	CompletedAt  sql.NullTime `db:"completed_at" json:"completed_at,omitempty"`
}

// AdminAccount represents a dashboard login
type AdminAccount struct {
	Username   string         `db:"username" json:"username"`
	TokenHash  string         `db:"token_hash" json:"-"`
	Roles      pq.StringArray `db:"roles" json:"roles"`
	AllowedIPs pq.StringArray `db:"allowed_ips" json:"allowed_ips"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

// AdminAudit is one entry in the admin action log
type AdminAudit struct {
	ID        int             `db:"id" json:"id"`
	AdminUser string          `db:"admin_user" json:"admin_user"`
	IP        string          `db:"ip" json:"ip"`
	Route     string          `db:"route" json:"route"`
	Action    string          `db:"action" json:"action"`
	Details   json.RawMessage `db:"details" json:"details"`
	Success   bool            `db:"success" json:"success"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
