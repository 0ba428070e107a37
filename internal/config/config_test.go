package config

import (
	"testing"
)

func TestNewFromEnv(t *testing.T) {
	// Empty values read the same as unset, and t.Setenv restores the
	// previous value on cleanup, so subtests never leak state.
	t.Run("OfflineOnlyDefaults", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("JWT_SECRET", "")
		t.Setenv("LOG_MODE", "")
		t.Setenv("DATA_DIR", "/tmp/cook-commander-test")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.RemoteConfigured() {
			t.Error("Expected RemoteConfigured to be false without DATABASE_URL")
		}
		if cfg.DataDir != "/tmp/cook-commander-test" {
			t.Errorf("Expected DataDir '/tmp/cook-commander-test', got '%s'", cfg.DataDir)
		}
		if cfg.LogMode != "dev" {
			t.Errorf("Expected default LogMode 'dev', got '%s'", cfg.LogMode)
		}
	})

	t.Run("RemoteRequiresJWTSecret", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost:5432/cook")
		t.Setenv("JWT_SECRET", "")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for DATABASE_URL without JWT_SECRET, got nil")
		}
	})

	t.Run("RemoteConfigured", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost:5432/cook")
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("REDIS_ADDR", "localhost:6379")
		t.Setenv("GEMINI_API_KEY", "gemini_key")
		t.Setenv("DATA_DIR", "/tmp/cook-commander-test")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !cfg.RemoteConfigured() {
			t.Error("Expected RemoteConfigured to be true")
		}
		if cfg.RedisAddr != "localhost:6379" {
			t.Errorf("Expected RedisAddr 'localhost:6379', got '%s'", cfg.RedisAddr)
		}
		if cfg.GeminiAPIKey != "gemini_key" {
			t.Errorf("Expected GeminiAPIKey 'gemini_key', got '%s'", cfg.GeminiAPIKey)
		}
	})
}
