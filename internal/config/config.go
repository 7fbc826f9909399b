package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const devJWTSecret = "dev-secret-change-in-production"

type Config struct {
	Port        string
	Env         string
	DatabaseDSN string
	JWTSecret   string
	JWTExpiry   time.Duration

	// Generator is the default generation mode: "local" or "model".
	Generator string

	EntropySource     string
	SerialDevice      string
	SerialBaud        int
	SerialReadTimeout time.Duration

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	ModelTimeout     time.Duration
	ModelMaxAttempts int
	ModelStrict      bool
	ModelDailyQuota  int

	RateLimitRPS   float64
	RateLimitBurst int
}

func Load() Config {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		DatabaseDSN: getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/passgen?parseTime=true"),
		JWTSecret:   getEnv("JWT_SECRET", devJWTSecret),
		JWTExpiry:   getEnvDuration("JWT_EXPIRY", 24*time.Hour),

		Generator: strings.ToLower(getEnv("GENERATOR", "local")),

		EntropySource:     strings.ToLower(getEnv("ENTROPY_SOURCE", "crypto")),
		SerialDevice:      getEnv("SERIAL_DEVICE_NAME", ""),
		SerialBaud:        getEnvInt("SERIAL_BAUD_RATE", 115200),
		SerialReadTimeout: time.Duration(getEnvInt("SERIAL_READ_TIMEOUT", 1000)) * time.Millisecond,

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-1.5-flash-001"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", ""),

		ModelTimeout:     getEnvDuration("MODEL_TIMEOUT", 30*time.Second),
		ModelMaxAttempts: getEnvInt("MODEL_MAX_ATTEMPTS", 1),
		ModelStrict:      getEnvBool("MODEL_STRICT", false),
		ModelDailyQuota:  getEnvInt("MODEL_DAILY_QUOTA", 50),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),
	}

	if cfg.Env == "production" && cfg.JWTSecret == devJWTSecret {
		slog.Error("JWT_SECRET must be set in production environment")
		os.Exit(1)
	}

	if cfg.Generator != "local" && cfg.Generator != "model" {
		slog.Warn("unknown GENERATOR, falling back to local", "generator", cfg.Generator)
		cfg.Generator = "local"
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("invalid number in environment, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return f
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid boolean in environment, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}
