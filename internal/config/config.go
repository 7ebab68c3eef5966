package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dkearsley/afl-stats/internal/platform/logging"
)

// Config stores runtime configuration for the scraper.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string

	DBURL string

	ResultsBaseURL string
	ProfileBaseURL string
	ScrapeYear     int
	MaxWorkers     int

	HTTPTimeout    time.Duration
	HTTPMaxRetries int
	HTTPUserAgent  string

	CircuitEnabled        bool
	CircuitFailureCount   int
	CircuitOpenTimeout    time.Duration
	CircuitHalfOpenMaxReq int

	LogLevel logging.Level
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required")
	}

	scrapeYear, err := getEnvAsInt("SCRAPE_YEAR", time.Now().Year())
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRAPE_YEAR: %w", err)
	}
	if scrapeYear < 1897 {
		return Config{}, fmt.Errorf("SCRAPE_YEAR %d predates the competition", scrapeYear)
	}

	maxWorkers, err := getEnvAsInt("MAX_WORKERS", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse MAX_WORKERS: %w", err)
	}
	if maxWorkers <= 0 {
		return Config{}, fmt.Errorf("MAX_WORKERS must be greater than zero")
	}

	httpTimeout, err := getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_TIMEOUT: %w", err)
	}
	httpMaxRetries, err := getEnvAsInt("HTTP_MAX_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_MAX_RETRIES: %w", err)
	}

	circuitEnabled, err := strconv.ParseBool(getEnv("CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CIRCUIT_ENABLED: %w", err)
	}
	circuitFailureCount, err := getEnvAsInt("CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse CIRCUIT_FAILURE_COUNT: %w", err)
	}
	circuitOpenTimeout, err := getEnvAsDuration("CIRCUIT_OPEN_TIMEOUT", 30*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	circuitHalfOpenMaxReq, err := getEnvAsInt("CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}

	return Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("SERVICE_NAME", "afl-stats"),
		ServiceVersion: getEnv("SERVICE_VERSION", "dev"),

		DBURL: dbURL,

		ResultsBaseURL: strings.TrimRight(getEnv("RESULTS_BASE_URL", "https://afltables.com/afl/seas"), "/"),
		ProfileBaseURL: strings.TrimRight(getEnv("PROFILE_BASE_URL", "https://www.footywire.com/afl/footy"), "/"),
		ScrapeYear:     scrapeYear,
		MaxWorkers:     maxWorkers,

		HTTPTimeout:    httpTimeout,
		HTTPMaxRetries: httpMaxRetries,
		HTTPUserAgent:  getEnv("HTTP_USER_AGENT", ""),

		CircuitEnabled:        circuitEnabled,
		CircuitFailureCount:   circuitFailureCount,
		CircuitOpenTimeout:    circuitOpenTimeout,
		CircuitHalfOpenMaxReq: circuitHalfOpenMaxReq,

		LogLevel: parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}, nil
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}
