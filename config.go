package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is read once at startup from the environment (and .env when present).
type Config struct {
	Env      string
	Port     string
	DBURL    string
	LogLevel string

	RedisAddr  string
	StagingTTL time.Duration

	MacroPolicy         string
	AdjustSweepSchedule string
	CORSOrigins         []string

	OpenAIAPIKey  string
	OpenAIBaseURL string

	OTelEnabled  bool
	OTelEndpoint string
}

// loadConfig loads .env (missing file is fine in containers) then reads the
// environment, applying defaults.
func loadConfig() (Config, error) {
	_ = godotenv.Load()
	return configFromEnv()
}

func configFromEnv() (Config, error) {
	cfg := Config{
		Env:                 getEnv("APP_ENV", "development"),
		Port:                getEnv("PORT", "3000"),
		DBURL:               os.Getenv("DB_URL"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		MacroPolicy:         getEnv("MACRO_POLICY", "fixed"),
		AdjustSweepSchedule: getEnv("ADJUST_SWEEP_SCHEDULE", "0 6 * * 1"),
		CORSOrigins:         splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
		OTelEndpoint:        os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	ttl, err := time.ParseDuration(getEnv("STAGING_TTL", "72h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STAGING_TTL: %w", err)
	}
	if ttl <= 0 {
		return Config{}, fmt.Errorf("STAGING_TTL must be positive, got %s", ttl)
	}
	cfg.StagingTTL = ttl

	if v := os.Getenv("OTEL_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse OTEL_ENABLED: %w", err)
		}
		cfg.OTelEnabled = enabled
	}

	if cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required")
	}
	return cfg, nil
}

func (c Config) isProduction() bool { return c.Env == "production" }

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
