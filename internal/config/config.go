package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	FMIBaseURL string
	FMITimeout time.Duration

	// Circuit breaker in front of FMI
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration

	ForecastTimestep time.Duration
	ForecastPoints   int
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is read first; it never
// overrides variables already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	appEnv := envOrDefault("APP_ENV", "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return nil, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(envOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	fmiTimeout, err := parseDuration("FMI_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	breakerOpen, err := parseDuration("BREAKER_OPEN_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	maxFailures, err := parsePositiveInt("BREAKER_MAX_FAILURES", "5")
	if err != nil {
		return nil, err
	}

	timestepHours, err := parsePositiveInt("FORECAST_TIMESTEP_HOURS", "24")
	if err != nil {
		return nil, err
	}

	points, err := parsePositiveInt("FORECAST_POINTS", "4")
	if err != nil {
		return nil, err
	}

	return &Config{
		AppEnv:             appEnv,
		LogLevel:           level,
		HTTPAddr:           envOrDefault("HTTP_ADDR", ":8080"),
		FMIBaseURL:         envOrDefault("FMI_BASE_URL", "https://opendata.fmi.fi/wfs"),
		FMITimeout:         fmiTimeout,
		BreakerMaxFailures: uint32(maxFailures),
		BreakerOpenTimeout: breakerOpen,
		ForecastTimestep:   time.Duration(timestepHours) * time.Hour,
		ForecastPoints:     points,
	}, nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	raw := envOrDefault(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return d, nil
}

func parsePositiveInt(key, fallback string) (int, error) {
	raw := envOrDefault(key, fallback)
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return n, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
