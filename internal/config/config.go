package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/amaumene/dono/internal/apperrors"
)

// YoutubeAPIKeyEnv names the environment variable holding the catalog credential
const YoutubeAPIKeyEnv = "SHAKEN_YOUTUBE_API_KEY"

// MaxRetryWait caps the backoff interval between catalog retries
const MaxRetryWait = 2 * time.Second

// minWriteTimeout is the HTTP write timeout when fetches are short
const minWriteTimeout = 15 * time.Second

// Config holds all application configuration
type Config struct {
	// YouTube
	YoutubeAPIKey  string
	YoutubeAPIBase string
	FetchTimeout   time.Duration // 0 disables the timeout
	FetchRetries   int           // transport retries per fetch (default: 0); see WriteTimeout

	// Local files
	FFprobePath string

	// Server
	ServerAddress string
	ServerPort    string
	RateLimit     int // submissions per minute per client

	// Storage
	StoreDriver  string // "bolt" or "sqlite"
	DatabaseFile string // $CONFIG_DIR/history.db or history.sqlite

	// Scheduler
	StatsSchedule string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load loads configuration from environment variables and .env file.
// The YouTube key is read here, once; use RequireAPIKey before serving.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = v.ReadInConfig()

	v.SetDefault("YOUTUBE_API_BASE", "https://www.googleapis.com/youtube/v3")
	v.SetDefault("FETCH_TIMEOUT", "10s")
	v.SetDefault("FETCH_RETRIES", 0)
	v.SetDefault("FFPROBE_PATH", "ffprobe")
	v.SetDefault("SERVER_ADDRESS", "localhost")
	v.SetDefault("SERVER_PORT", "50006")
	v.SetDefault("RATE_LIMIT", 60)
	v.SetDefault("STORE_DRIVER", "bolt")
	v.SetDefault("STATS_SCHEDULE", "@every 1m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	configDir, err := resolveConfigDir(v.GetString("CONFIG_DIR"))
	if err != nil {
		return nil, err
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		YoutubeAPIKey:  v.GetString(YoutubeAPIKeyEnv),
		YoutubeAPIBase: v.GetString("YOUTUBE_API_BASE"),
		FetchTimeout:   v.GetDuration("FETCH_TIMEOUT"),
		FetchRetries:   v.GetInt("FETCH_RETRIES"),

		FFprobePath: v.GetString("FFPROBE_PATH"),

		ServerAddress: v.GetString("SERVER_ADDRESS"),
		ServerPort:    v.GetString("SERVER_PORT"),
		RateLimit:     v.GetInt("RATE_LIMIT"),

		StoreDriver: v.GetString("STORE_DRIVER"),

		StatsSchedule: v.GetString("STATS_SCHEDULE"),

		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),
	}

	switch config.StoreDriver {
	case "bolt":
		config.DatabaseFile = filepath.Join(configDir, "history.db")
	case "sqlite":
		config.DatabaseFile = filepath.Join(configDir, "history.sqlite")
	default:
		return nil, fmt.Errorf("STORE_DRIVER must be bolt or sqlite, got %q", config.StoreDriver)
	}

	if config.FetchRetries < 0 {
		return nil, fmt.Errorf("FETCH_RETRIES must not be negative")
	}
	if config.FetchTimeout < 0 {
		return nil, fmt.Errorf("FETCH_TIMEOUT must not be negative")
	}

	return config, nil
}

// RequireAPIKey returns an error naming the missing credential, if any
func (c *Config) RequireAPIKey() error {
	if c.YoutubeAPIKey == "" {
		return &apperrors.ConfigurationError{Key: YoutubeAPIKeyEnv}
	}
	return nil
}

// WriteTimeout bounds an HTTP response. It covers the worst case of a
// submission: every fetch attempt timing out plus the randomized backoff
// waits between them (at most 1.5x MaxRetryWait each), with a margin for
// the store write. A disabled fetch timeout disables it too.
func (c *Config) WriteTimeout() time.Duration {
	if c.FetchTimeout == 0 {
		return 0
	}
	attempts := time.Duration(c.FetchRetries + 1)
	budget := c.FetchTimeout*attempts + time.Duration(c.FetchRetries)*MaxRetryWait*3/2 + 5*time.Second
	if budget < minWriteTimeout {
		return minWriteTimeout
	}
	return budget
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return c.ServerAddress + ":" + c.ServerPort
}

func resolveConfigDir(configDir string) (string, error) {
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", "dono"), nil
	}

	// Convert relative path to absolute path
	absPath, err := filepath.Abs(configDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
	}
	return absPath, nil
}
