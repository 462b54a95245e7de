// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port             string
	ModelProvider    string // "anthropic" or "openai"
	AnthropicModel   string
	OpenAIModel      string
	PerplexityAPIKey string
	CalendarDBPath   string // empty = in-memory calendar store
	WorkspaceDir     string
	JournalPath      string
	ExecTimeout      time.Duration
	Log              LogConfig
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level    string // "debug", "info", "warn", "error"
	Format   string // "json" or "text"
	FilePath string // empty = stdout only
	MaxSize  int    // megabytes before rotation
	MaxAge   int    // days to retain rotated files
	Backups  int    // rotated files to retain
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "5000"),
		ModelProvider:    strings.ToLower(getEnv("MODEL_PROVIDER", "anthropic")),
		AnthropicModel:   getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		PerplexityAPIKey: getEnv("PERPLEXITY_API_KEY", ""),
		CalendarDBPath:   getEnv("CALENDAR_DB_PATH", ""),
		WorkspaceDir:     getEnv("WORKSPACE_DIR", "./workspace"),
		JournalPath:      getEnv("JOURNAL_PATH", "./workspace/journal.txt"),
		ExecTimeout:      time.Duration(getEnvInt("EXEC_TIMEOUT_SECONDS", 30)) * time.Second,
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Format:   getEnv("LOG_FORMAT", "json"),
			FilePath: getEnv("LOG_FILE", ""),
			MaxSize:  getEnvInt("LOG_MAX_SIZE_MB", 10),
			MaxAge:   getEnvInt("LOG_MAX_AGE_DAYS", 28),
			Backups:  getEnvInt("LOG_MAX_BACKUPS", 3),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.ModelProvider != "anthropic" && c.ModelProvider != "openai" {
		return fmt.Errorf("MODEL_PROVIDER must be \"anthropic\" or \"openai\", got %q", c.ModelProvider)
	}
	if c.WorkspaceDir == "" {
		return fmt.Errorf("WORKSPACE_DIR cannot be empty")
	}
	if c.ExecTimeout <= 0 {
		return fmt.Errorf("EXEC_TIMEOUT_SECONDS must be > 0")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}
