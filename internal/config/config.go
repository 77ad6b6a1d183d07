package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string

	// FollowUpBoss API credentials
	FUBBaseURL   string
	FUBAPIKey    string
	FUBSystemKey string
	FUBSystem    string

	// Daily snapshot scheduling
	ScheduleHour int
	ScheduleTZ   *time.Location

	// Selection singleton backing file
	SelectionsFile string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		FUBBaseURL:     getEnv("FUB_BASE_URL", "https://api.followupboss.com/v1"),
		FUBAPIKey:      os.Getenv("FUB_API_KEY"),
		FUBSystemKey:   os.Getenv("FUB_SYSTEM_KEY"),
		FUBSystem:      getEnv("FUB_SYSTEM", "AS"),
		SelectionsFile: getEnv("SELECTIONS_FILE", "selections.json"),
	}

	scheduleHour, err := strconv.Atoi(getEnv("SCHEDULE_HOUR", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULE_HOUR: %w", err)
	}
	if scheduleHour < 0 || scheduleHour > 23 {
		return nil, fmt.Errorf("SCHEDULE_HOUR must be between 0 and 23, got %d", scheduleHour)
	}
	config.ScheduleHour = scheduleHour

	tz, err := time.LoadLocation(getEnv("SCHEDULE_TZ", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULE_TZ: %w", err)
	}
	config.ScheduleTZ = tz

	// Trim spaces from allowed origins
	for i, origin := range config.AllowedOrigins {
		config.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	return config, nil
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
