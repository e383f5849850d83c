package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// requiredKeys are the environment variables the relay refuses to start
// without.
var requiredKeys = []string{
	"AGENT_API_KEY",
	"AGENT_API_URL",
	"AGENT_ID",
	"GITHUB_WEBHOOK_SECRET",
}

// Config holds the application's configuration values. It is built once at
// startup and passed into each component's constructor; nothing reads the
// environment after LoadConfig returns.
type Config struct {
	ServerPort          string
	LogLevel            slog.Level
	LogFormat           string
	AgentAPIKey         string
	AgentAPIURL         string
	AgentID             string
	GitHubWebhookSecret string
	AgentTimeout        time.Duration
	MaxWorkers          int
}

// LoadConfig reads configuration from environment variables and a .env file,
// sets sensible defaults, and validates required fields. It uses the Viper
// library to handle configuration loading and precedence.
func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8000")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("MAX_WORKERS", 5)
	viper.SetDefault("AGENT_TIMEOUT", "120s")

	if err := viper.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("failed to read .env file", "error", err)
		}
	}

	var missing []string
	for _, key := range requiredKeys {
		if viper.GetString(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	// Parse the log level string into a slog.Level type.
	var logLevel slog.Level
	logLevelStr := strings.ToLower(viper.GetString("LOG_LEVEL"))
	switch logLevelStr {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		slog.Warn("unrecognized log level, defaulting to info", "provided", logLevelStr)
		logLevel = slog.LevelInfo
	}

	return &Config{
		ServerPort:          viper.GetString("SERVER_PORT"),
		LogLevel:            logLevel,
		LogFormat:           viper.GetString("LOG_FORMAT"),
		AgentAPIKey:         viper.GetString("AGENT_API_KEY"),
		AgentAPIURL:         viper.GetString("AGENT_API_URL"),
		AgentID:             viper.GetString("AGENT_ID"),
		GitHubWebhookSecret: viper.GetString("GITHUB_WEBHOOK_SECRET"),
		AgentTimeout:        viper.GetDuration("AGENT_TIMEOUT"),
		MaxWorkers:          viper.GetInt("MAX_WORKERS"),
	}, nil
}
