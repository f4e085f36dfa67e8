package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL       string
	JWTSecret         string
	Port              string
	EnrichBaseURL     string
	EnrichTimeout     time.Duration
	EnrichConcurrency int
	CleanseWorkers    int
	MaxUploadSize     int64
	PhoneRegion       string
	RateLimitUpload   RateLimitConfig
	TokenTTL          time.Duration
}

const defaultMaxUploadSize = 10 << 20 // 10 MiB

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		JWTSecret:         getEnv("JWT_SECRET", "dev-secret"),
		Port:              getEnv("PORT", "8080"),
		EnrichBaseURL:     getEnv("ENRICH_BASE_URL", "http://enricher:9000"),
		EnrichTimeout:     parseDuration(getEnv("ENRICH_TIMEOUT", "5s"), 5*time.Second),
		EnrichConcurrency: parsePositiveInt(getEnv("ENRICH_CONCURRENCY", "4"), 4),
		CleanseWorkers:    parsePositiveInt(getEnv("CLEANSE_WORKERS", "0"), 0),
		PhoneRegion:       strings.ToUpper(getEnv("PHONE_REGION", "BR")),
		TokenTTL:          parseDuration(getEnv("JWT_TTL", "24h"), 24*time.Hour),
	}

	size, err := parseByteSize(getEnv("MAX_UPLOAD_SIZE", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_SIZE value: %w", err)
	}
	cfg.MaxUploadSize = size

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_UPLOAD", "5/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_UPLOAD value: %w", err)
	}
	cfg.RateLimitUpload = rl

	return cfg, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func parseByteSize(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultMaxUploadSize, nil
	}
	size, err := strconv.ParseInt(value, 10, 64)
	if err != nil || size <= 0 {
		return 0, fmt.Errorf("expected positive byte count, got %q", value)
	}
	return size, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil {
		return fallback
	}
	return d
}

func parsePositiveInt(input string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
