package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// NotifyMode selects how end-of-pass update notifications are grouped.
const (
	NotifyCompact = "compact"  // one rollup notification for the whole pass
	NotifyPerItem = "per-item" // one notification per updated work
)

type Config struct {
	// Environment
	GoEnv string `env:"GO_ENV" default:"development"`

	// Local API
	HTTPPort int `env:"HTTP_PORT" default:"8090"`

	// Database
	DatabaseURL string `env:"DATABASE_URL" default:"./data/fictrack.db"`

	// Remote archive
	ArchiveBaseURL string        `env:"ARCHIVE_BASE_URL" required:"true"`
	UserAgent      string        `env:"USER_AGENT" default:"fictrack/1.0"`
	FetchTimeout   time.Duration `env:"FETCH_TIMEOUT" default:"30s"`
	FetchRate      float64       `env:"FETCH_RATE" default:"1"`
	FetchBurst     int           `env:"FETCH_BURST" default:"2"`

	// Sync pacing
	SyncInterval  time.Duration `env:"SYNC_INTERVAL" default:"1h"`
	FetchDelayMin time.Duration `env:"FETCH_DELAY_MIN" default:"500ms"`
	FetchDelayMax time.Duration `env:"FETCH_DELAY_MAX" default:"2s"`

	// Notifications
	NotifyMode string `env:"NOTIFY_MODE" default:"compact"`

	// Optional Redis page cache
	RedisURL string        `env:"REDIS_URL"`
	CacheTTL time.Duration `env:"CACHE_TTL" default:"1h"`

	// Development
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
}

// LoadConfig loads configuration from the environment, reading a .env
// file first when one is present.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		// Missing .env is fine; system env vars still apply.
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	config := &Config{}

	if err := loadEnvString(&config.GoEnv, "GO_ENV", "development"); err != nil {
		return nil, err
	}

	if err := loadEnvInt(&config.HTTPPort, "HTTP_PORT", 8090); err != nil {
		return nil, err
	}

	if err := loadEnvString(&config.DatabaseURL, "DATABASE_URL", "./data/fictrack.db"); err != nil {
		return nil, err
	}

	if err := loadEnvStringRequired(&config.ArchiveBaseURL, "ARCHIVE_BASE_URL"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.UserAgent, "USER_AGENT", "fictrack/1.0"); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.FetchTimeout, "FETCH_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if err := loadEnvFloat(&config.FetchRate, "FETCH_RATE", 1); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.FetchBurst, "FETCH_BURST", 2); err != nil {
		return nil, err
	}

	if err := loadEnvDuration(&config.SyncInterval, "SYNC_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.FetchDelayMin, "FETCH_DELAY_MIN", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.FetchDelayMax, "FETCH_DELAY_MAX", 2*time.Second); err != nil {
		return nil, err
	}

	if err := loadEnvString(&config.NotifyMode, "NOTIFY_MODE", NotifyCompact); err != nil {
		return nil, err
	}

	if err := loadEnvString(&config.RedisURL, "REDIS_URL", ""); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.CacheTTL, "CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}

	if err := loadEnvString(&config.LogLevel, "LOG_LEVEL", "info"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.LogFormat, "LOG_FORMAT", "text"); err != nil {
		return nil, err
	}

	return config, nil
}

// Helper functions for type conversion and validation
func loadEnvString(target *string, key, defaultValue string) error {
	if value := os.Getenv(key); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvStringRequired(target *string, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return fmt.Errorf("required environment variable %s is not set", key)
	}
	*target = value
	return nil
}

func loadEnvInt(target *int, key string, defaultValue int) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvFloat(target *float64, key string, defaultValue float64) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvDuration(target *time.Duration, key string, defaultValue time.Duration) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

// Validate performs validation on the loaded configuration
func (c *Config) Validate() error {
	var errors []string

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errors = append(errors, "HTTP_PORT must be between 1 and 65535")
	}

	if !strings.HasPrefix(c.ArchiveBaseURL, "http://") && !strings.HasPrefix(c.ArchiveBaseURL, "https://") {
		errors = append(errors, "ARCHIVE_BASE_URL must be an http(s) URL")
	}

	if c.FetchRate <= 0 {
		errors = append(errors, "FETCH_RATE must be positive")
	}
	if c.FetchDelayMin < 0 || c.FetchDelayMax < c.FetchDelayMin {
		errors = append(errors, "FETCH_DELAY_MIN/MAX must satisfy 0 <= min <= max")
	}

	if c.NotifyMode != NotifyCompact && c.NotifyMode != NotifyPerItem {
		errors = append(errors, fmt.Sprintf("NOTIFY_MODE must be %q or %q", NotifyCompact, NotifyPerItem))
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}

	validLogFormats := []string{"text", "json"}
	if !contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: %s", strings.Join(validLogFormats, ", ")))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// CacheEnabled reports whether the optional Redis page cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisURL != ""
}

// Helper function to check if slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
