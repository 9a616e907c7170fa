package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func TestNewUsesDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.Model.MaxTokens)
	assert.Equal(t, "https://api.anthropic.com", cfg.Upstream.BaseURL)
	assert.Equal(t, "sk-test", cfg.Upstream.APIKey)
	assert.Equal(t, ":8787", cfg.Server.Address)
}

func TestNewAppliesOverrides(t *testing.T) {
	isolate(t)

	model := "claude-3-5-haiku-latest"
	maxTokens := 64
	cfg, err := New(&RuntimeOverrides{Model: &model, MaxTokens: &maxTokens})
	require.NoError(t, err)
	assert.Equal(t, model, cfg.Model.Name)
	assert.Equal(t, 64, cfg.Model.MaxTokens)
}

func TestNewRejectsInvalidValues(t *testing.T) {
	isolate(t)

	temperature := 9.5
	_, err := New(&RuntimeOverrides{Temperature: &temperature})
	assert.Error(t, err)
}

func TestLocalConfigFileOverridesDefaults(t *testing.T) {
	isolate(t)

	wd, err := os.Getwd()
	require.NoError(t, err)
	path := filepath.Join(wd, ".tern.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model:\n  maxTokens: 99\n"), 0o644))

	cfg, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, 99, cfg.Model.MaxTokens)
	// Untouched keys keep their defaults.
	assert.Equal(t, "2023-06-01", cfg.Upstream.Version)
}

func TestDumpRedactsAPIKey(t *testing.T) {
	isolate(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-secret")

	cfg, err := New(nil)
	require.NoError(t, err)

	out, err := cfg.Dump()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "sk-secret")
	assert.Contains(t, string(out), "[redacted]")
}
