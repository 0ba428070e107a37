package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the configuration for the application.
//
// The remote store is optional at deploy time: when DatabaseURL is
// empty the application runs fully offline against local device
// storage and never attempts a network call.
type Config struct {
	// DatabaseURL is the Postgres DSN of the remote store. Empty means
	// offline-only deployment.
	DatabaseURL string
	// JWTSecret verifies access tokens. Required whenever DatabaseURL
	// is set, since every remote row is scoped by the token's subject.
	JWTSecret string
	// RedisAddr enables realtime schedule push. Optional.
	RedisAddr string

	GeminiAPIKey string

	// DataDir is where offline JSON blobs live.
	DataDir string

	// LogMode selects the zap config ("prod" or "dev").
	LogMode string
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	jwtSecret := os.Getenv("JWT_SECRET")
	if databaseURL != "" && jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable not set (required when DATABASE_URL is configured)")
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory for DATA_DIR default: %w", err)
		}
		dataDir = filepath.Join(home, ".cook-commander")
	}

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "dev"
	}

	return &Config{
		DatabaseURL:  databaseURL,
		JWTSecret:    jwtSecret,
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		DataDir:      dataDir,
		LogMode:      logMode,
	}, nil
}

// RemoteConfigured reports whether a remote store is available to this
// deployment at all. The per-operation offline decision also depends on
// the session identity.
func (c *Config) RemoteConfigured() bool {
	return c.DatabaseURL != ""
}
