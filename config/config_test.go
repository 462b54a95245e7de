package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "anthropic", cfg.ModelProvider)
	assert.Equal(t, 30*time.Second, cfg.ExecTimeout)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.CalendarDBPath)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MODEL_PROVIDER", "OpenAI")
	t.Setenv("EXEC_TIMEOUT_SECONDS", "5")
	t.Setenv("LOG_MAX_SIZE_MB", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "openai", cfg.ModelProvider) // normalized to lowercase
	assert.Equal(t, 5*time.Second, cfg.ExecTimeout)
	assert.Equal(t, 10, cfg.Log.MaxSize) // unparsable falls back to default
}

func TestLoad_InvalidProvider(t *testing.T) {
	t.Setenv("MODEL_PROVIDER", "llamacpp")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MODEL_PROVIDER")
}

func TestValidate(t *testing.T) {
	cfg := &Config{Port: "5000", ModelProvider: "anthropic", WorkspaceDir: "./ws", ExecTimeout: time.Second}
	assert.NoError(t, cfg.Validate())

	cfg.Port = ""
	assert.Error(t, cfg.Validate())

	cfg.Port = "5000"
	cfg.ExecTimeout = 0
	assert.Error(t, cfg.Validate())
}
