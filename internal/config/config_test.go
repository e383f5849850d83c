package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

// setRequired sets the four mandatory environment variables. Viper is a
// package-level singleton, so each subtest resets it first.
func setRequired(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Setenv("AGENT_API_KEY", "test-api-key")
	t.Setenv("AGENT_API_URL", "https://agents.example.com")
	t.Setenv("AGENT_ID", "agent-1")
	t.Setenv("GITHUB_WEBHOOK_SECRET", "test-secret")
}

func TestLoadConfig(t *testing.T) {
	t.Run("all required present with defaults", func(t *testing.T) {
		setRequired(t)

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}

		if cfg.AgentAPIKey != "test-api-key" {
			t.Errorf("AgentAPIKey = %q", cfg.AgentAPIKey)
		}
		if cfg.AgentAPIURL != "https://agents.example.com" {
			t.Errorf("AgentAPIURL = %q", cfg.AgentAPIURL)
		}
		if cfg.AgentID != "agent-1" {
			t.Errorf("AgentID = %q", cfg.AgentID)
		}
		if cfg.GitHubWebhookSecret != "test-secret" {
			t.Errorf("GitHubWebhookSecret = %q", cfg.GitHubWebhookSecret)
		}
		if cfg.ServerPort != "8000" {
			t.Errorf("ServerPort = %q, want default 8000", cfg.ServerPort)
		}
		if cfg.LogLevel != slog.LevelInfo {
			t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
		}
		if cfg.LogFormat != "text" {
			t.Errorf("LogFormat = %q, want text", cfg.LogFormat)
		}
		if cfg.MaxWorkers != 5 {
			t.Errorf("MaxWorkers = %d, want 5", cfg.MaxWorkers)
		}
		if cfg.AgentTimeout != 120*time.Second {
			t.Errorf("AgentTimeout = %v, want 120s", cfg.AgentTimeout)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SERVER_PORT", "9090")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("LOG_FORMAT", "json")
		t.Setenv("MAX_WORKERS", "2")
		t.Setenv("AGENT_TIMEOUT", "30s")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}

		if cfg.ServerPort != "9090" {
			t.Errorf("ServerPort = %q", cfg.ServerPort)
		}
		if cfg.LogLevel != slog.LevelDebug {
			t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
		}
		if cfg.LogFormat != "json" {
			t.Errorf("LogFormat = %q", cfg.LogFormat)
		}
		if cfg.MaxWorkers != 2 {
			t.Errorf("MaxWorkers = %d", cfg.MaxWorkers)
		}
		if cfg.AgentTimeout != 30*time.Second {
			t.Errorf("AgentTimeout = %v", cfg.AgentTimeout)
		}
	})

	t.Run("unrecognized log level falls back to info", func(t *testing.T) {
		setRequired(t)
		t.Setenv("LOG_LEVEL", "loud")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.LogLevel != slog.LevelInfo {
			t.Errorf("LogLevel = %v, want info fallback", cfg.LogLevel)
		}
	})

	for _, key := range requiredKeys {
		t.Run("missing "+key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, "")

			_, err := LoadConfig()
			if err == nil {
				t.Fatal("expected an error for missing required variable")
			}
			if !strings.Contains(err.Error(), key) {
				t.Errorf("error %q does not name the missing variable %s", err, key)
			}
		})
	}

	t.Run("all missing names every variable", func(t *testing.T) {
		viper.Reset()
		for _, key := range requiredKeys {
			t.Setenv(key, "")
		}

		_, err := LoadConfig()
		if err == nil {
			t.Fatal("expected an error when nothing is configured")
		}
		for _, key := range requiredKeys {
			if !strings.Contains(err.Error(), key) {
				t.Errorf("error %q does not name %s", err, key)
			}
		}
	})
}
