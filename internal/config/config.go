package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL string
	APITimeout time.Duration
	LogLevel   string

	// Local history database
	HistoryDB string

	// S3 staging/archive store; disabled when Endpoint is empty
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3BucketName      string
	S3UseSSL          bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:        getEnv("TEXTLENS_API_URL", "http://localhost:8000"),
		LogLevel:          getEnv("TEXTLENS_LOG_LEVEL", "info"),
		HistoryDB:         getEnv("TEXTLENS_HISTORY_DB", defaultHistoryDB()),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", "minioadmin"),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", "minioadmin"),
		S3BucketName:      getEnv("S3_BUCKET_NAME", "textlens"),
		S3UseSSL:          getEnv("S3_USE_SSL", "false") == "true",
	}

	timeout, err := time.ParseDuration(getEnv("TEXTLENS_API_TIMEOUT", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid TEXTLENS_API_TIMEOUT: %w", err)
	}
	cfg.APITimeout = timeout

	return cfg, nil
}

func defaultHistoryDB() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".textlens", "history.db")
	}
	return filepath.Join(home, ".textlens", "history.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
