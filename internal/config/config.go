package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port        int
	Environment string
	ServiceName string
	Version     string

	LogLevel  string
	LogFormat string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	DBMaxConns    int
	DBMaxIdleTime time.Duration
	DBMaxLifetime time.Duration

	RedisURL string

	APIKey         string
	TrustedProxies []string
	AllowedOrigins []string
	JWTSecret      string // consumed by the auth collaborator

	PayoutAPIURL  string
	PayoutTimeout time.Duration

	WorkerCount     int
	WorkerQueueSize int
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		Environment:  getEnv("ENVIRONMENT", "dev"),
		ServiceName:  getEnv("SERVICE_NAME", "tambola-server"),
		Version:      getEnv("VERSION", "dev"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
		DBUser:       getEnv("DB_USER", "postgres"),
		DBPassword:   getEnv("DB_PASSWORD", "postgres"),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "5432"),
		DBName:       getEnv("DB_NAME", "tambola"),
		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379/0"),
		APIKey:       getEnv("API_KEY", ""),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		PayoutAPIURL: getEnv("PAYOUT_API_URL", ""),
	}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port

	cfg.AllowedOrigins = splitAndTrim(getEnv("ALLOWED_ORIGINS", ""))
	cfg.TrustedProxies = splitAndTrim(getEnv("TRUSTED_PROXIES", ""))

	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS value: %w", err)
	}
	cfg.DBMaxConns = maxConns

	maxIdle, err := time.ParseDuration(getEnv("DB_MAX_IDLE_TIME", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_IDLE_TIME value: %w", err)
	}
	cfg.DBMaxIdleTime = maxIdle

	maxLife, err := time.ParseDuration(getEnv("DB_MAX_LIFETIME", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_LIFETIME value: %w", err)
	}
	cfg.DBMaxLifetime = maxLife

	payoutTimeout, err := time.ParseDuration(getEnv("PAYOUT_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYOUT_TIMEOUT value: %w", err)
	}
	cfg.PayoutTimeout = payoutTimeout

	workers, err := strconv.Atoi(getEnv("WORKER_COUNT", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_COUNT value: %w", err)
	}
	cfg.WorkerCount = workers

	queueSize, err := strconv.Atoi(getEnv("WORKER_QUEUE_SIZE", "64"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_QUEUE_SIZE value: %w", err)
	}
	cfg.WorkerQueueSize = queueSize

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY environment variable must be set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable must be set")
	}
	if cfg.PayoutAPIURL == "" {
		return nil, fmt.Errorf("PAYOUT_API_URL environment variable must be set")
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
