package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port          string
	DatabaseURL   string
	SessionSecret string
	LogLevel      string
	GinMode       string

	StorageDriver    string // "local" or "s3"
	LocalStoragePath string
	PublicBaseURL    string
	S3Region         string
	S3Bucket         string

	FanOutPageSize        int
	FanOutConcurrency     int
	ChangeFeedBuffer      int
	ChangeFeedMaxAttempts int

	PostCacheSize int
	PostCacheTTL  time.Duration
}

const defaultSessionSecret = "secret_key_change_me"

// Load reads .env (when present) and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	cfg := Config{
		Port:                  getEnv("PORT", "8080"),
		DatabaseURL:           getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=reactgram port=5432 sslmode=disable"),
		SessionSecret:         getEnv("SESSION_SECRET", defaultSessionSecret),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		GinMode:               getEnv("GIN_MODE", "release"),
		StorageDriver:         getEnv("STORAGE_DRIVER", "local"),
		LocalStoragePath:      getEnv("LOCAL_STORAGE_PATH", "./uploads"),
		PublicBaseURL:         getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		S3Region:              getEnv("S3_REGION", "us-west-2"),
		S3Bucket:              getEnv("S3_BUCKET", ""),
		FanOutPageSize:        getEnvAsInt("FANOUT_PAGE_SIZE", 100),
		FanOutConcurrency:     getEnvAsInt("FANOUT_CONCURRENCY", 8),
		ChangeFeedBuffer:      getEnvAsInt("CHANGE_FEED_BUFFER", 1000),
		ChangeFeedMaxAttempts: getEnvAsInt("CHANGE_FEED_MAX_ATTEMPTS", 3),
		PostCacheSize:         getEnvAsInt("POST_CACHE_SIZE", 500),
		PostCacheTTL:          getEnvAsDuration("POST_CACHE_TTL", 30*time.Second),
	}

	if cfg.FanOutPageSize <= 0 {
		cfg.FanOutPageSize = 100
	}
	if cfg.FanOutConcurrency <= 0 {
		cfg.FanOutConcurrency = 1
	}
	if cfg.ChangeFeedMaxAttempts <= 0 {
		cfg.ChangeFeedMaxAttempts = 1
	}
	return cfg
}

// UsesDefaultSecret reports whether SESSION_SECRET was left unset.
func (c Config) UsesDefaultSecret() bool {
	return c.SessionSecret == defaultSessionSecret
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultVal int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultVal
}
