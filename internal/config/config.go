package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Round settings
	RoundExpiryMinutes        int
	DisconnectGracePeriodSecs int
	DefaultCourse             string

	// Simulation
	TickRateHz     int
	MaxTrailPoints int

	// Idle sweeper
	IdleWorkerPollInterval int
	IdleWarningSeconds     int
	IdleAbandonSeconds     int

	// Security
	JWTSecret         string
	SessionTimeoutMin int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/fairwave?sslmode=disable"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Round settings
		RoundExpiryMinutes:        getEnvInt("ROUND_EXPIRY_MINUTES", 10),
		DisconnectGracePeriodSecs: getEnvInt("DISCONNECT_GRACE_PERIOD_SECONDS", 120),
		DefaultCourse:             getEnv("DEFAULT_COURSE", "clubhouse"),

		// Simulation
		TickRateHz:     getEnvInt("TICK_RATE_HZ", 60),
		MaxTrailPoints: getEnvInt("MAX_TRAIL_POINTS", 600),

		// Idle sweeper
		IdleWorkerPollInterval: getEnvInt("IDLE_WORKER_POLL_SECONDS", 5),
		IdleWarningSeconds:     getEnvInt("IDLE_WARNING_SECONDS", 120),
		IdleAbandonSeconds:     getEnvInt("IDLE_ABANDON_SECONDS", 300),

		// Security
		JWTSecret:         getEnv("JWT_SECRET", "change-me-in-production"),
		SessionTimeoutMin: getEnvInt("SESSION_TIMEOUT_MINUTES", 30),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
