package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all the environment‐driven settings for the application.
type Config struct {
	// HTTP
	Port string

	// Mock data source
	UseMock           bool
	MockFailureRate   float64
	MockCurrentDelay  time.Duration
	MockForecastDelay time.Duration

	// OpenWeatherMap (optional, used alongside or instead of the mock)
	OpenWeatherMapOrgKey string
	OpenWeatherMapCity   string

	// Redis (optional cache)
	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	// Database (optional snapshot history)
	DatabaseURL string

	// Recorder
	RecordCron string
}

// Load reads and validates the environment variables, applying defaults
// where appropriate. A .env file in the working directory is loaded first
// when present; variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var err error

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	useMock := true
	if v := os.Getenv("USE_MOCK"); v != "" {
		useMock, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid USE_MOCK %q: %w", v, err)
		}
	}

	failureRate := 0.5
	if v := os.Getenv("MOCK_FAILURE_RATE"); v != "" {
		failureRate, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid MOCK_FAILURE_RATE %q: %w", v, err)
		}
		if failureRate < 0 || failureRate > 1 {
			return nil, fmt.Errorf("MOCK_FAILURE_RATE must be within [0,1], got %v", failureRate)
		}
	}

	currentDelay, err := durationEnv("MOCK_CURRENT_DELAY", 300*time.Millisecond)
	if err != nil {
		return nil, err
	}
	forecastDelay, err := durationEnv("MOCK_FORECAST_DELAY", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}

	// OpenWeatherMap key might be missing; the mock alone is enough.
	owmKey := os.Getenv("OPENWEATHERMAP_ORG_API_KEY")
	owmCity := os.Getenv("OPENWEATHERMAP_CITY")
	if owmCity == "" {
		owmCity = "London"
	}
	if !useMock && owmKey == "" {
		return nil, fmt.Errorf("OPENWEATHERMAP_ORG_API_KEY is required when USE_MOCK=false")
	}

	// Redis settings; an empty address disables the cache
	redisAddr := os.Getenv("REDIS_ADDR")
	redisPass := os.Getenv("REDIS_PASSWORD")
	cacheTTL, err := durationEnv("CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	databaseURL, err := databaseURLFromEnv()
	if err != nil {
		return nil, err
	}

	recordCron := os.Getenv("RECORD_CRON")
	if recordCron == "" {
		recordCron = "*/15 * * * *"
	}

	return &Config{
		Port: port,

		UseMock:           useMock,
		MockFailureRate:   failureRate,
		MockCurrentDelay:  currentDelay,
		MockForecastDelay: forecastDelay,

		OpenWeatherMapOrgKey: owmKey,
		OpenWeatherMapCity:   owmCity,

		RedisAddr:     redisAddr,
		RedisPassword: redisPass,
		CacheTTL:      cacheTTL,

		DatabaseURL: databaseURL,

		RecordCron: recordCron,
	}, nil
}

// databaseURLFromEnv prefers DATABASE_URL and otherwise assembles a DSN from
// the POSTGRES_* variables. It returns "" when no database is configured.
func databaseURLFromEnv() (string, error) {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url, nil
	}

	pgUser := os.Getenv("POSTGRES_USER")
	if pgUser == "" {
		return "", nil
	}
	pgPass := os.Getenv("POSTGRES_PASSWORD")
	if pgPass == "" {
		return "", fmt.Errorf("POSTGRES_PASSWORD is required when POSTGRES_USER is set")
	}
	pgDB := os.Getenv("POSTGRES_DB")
	if pgDB == "" {
		return "", fmt.Errorf("POSTGRES_DB is required when POSTGRES_USER is set")
	}
	pgHost := os.Getenv("POSTGRES_HOST")
	if pgHost == "" {
		pgHost = "db"
	}
	pgPortStr := os.Getenv("POSTGRES_PORT")
	if pgPortStr == "" {
		pgPortStr = "5432"
	}
	pgPort, err := strconv.Atoi(pgPortStr)
	if err != nil {
		return "", fmt.Errorf("invalid POSTGRES_PORT %q: %w", pgPortStr, err)
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		pgUser, pgPass, pgHost, pgPort, pgDB,
	), nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
