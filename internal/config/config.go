package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	DatabaseDSN string
	Redis       RedisConfig
	Alerts      AlertsConfig
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AlertsConfig struct {
	// GenerationInterval is how often the scheduler runs a full generation
	// cycle per branch. Zero disables scheduled runs (on-demand only).
	GenerationInterval time.Duration
	// RetentionHorizon is the age past which resolved notifications are purged.
	RetentionHorizon time.Duration
}

func Load() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	generationMinutes, _ := strconv.Atoi(getEnv("ALERT_GENERATION_INTERVAL_MINUTES", "15"))
	retentionDays, _ := strconv.Atoi(getEnv("ALERT_RETENTION_DAYS", "30"))

	return Config{
		Port:        getEnv("PORT", "3000"),
		DatabaseDSN: getEnv("DATABASE_DSN", ""),
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Alerts: AlertsConfig{
			GenerationInterval: time.Duration(generationMinutes) * time.Minute,
			RetentionHorizon:   time.Duration(retentionDays) * 24 * time.Hour,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
