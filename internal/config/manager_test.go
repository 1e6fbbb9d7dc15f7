package config

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtscan/internal/logging"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	t.Setenv(EnvAPIKey, "")
	return NewManagerAt(t.TempDir(), logging.Nop())
}

func TestLoadUnconfigured(t *testing.T) {
	m := newTestManager(t)

	cfg := m.Load()

	assert.Empty(t, cfg.APIKey)
	assert.Equal(t, SourceNone, cfg.Source)
	assert.ErrorIs(t, cfg.RequireAPIKey(), ErrNotConfigured)
}

func TestLoadFromConfigFile(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.SetAPIKey("filekey-0123456789abcdef"))

	cfg := m.Load()

	assert.Equal(t, "filekey-0123456789abcdef", cfg.APIKey)
	assert.Equal(t, SourceConfigFile, cfg.Source)
	assert.NoError(t, cfg.RequireAPIKey())
}

func TestEnvironmentWinsOverConfigFile(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.SetAPIKey("filekey-0123456789abcdef"))
	t.Setenv(EnvAPIKey, "envkey-0123456789abcdef")

	cfg := m.Load()

	assert.Equal(t, "envkey-0123456789abcdef", cfg.APIKey)
	assert.Equal(t, SourceEnvironment, cfg.Source)
}

func TestSetAPIKeyRestrictsPermissions(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.SetAPIKey("secret"))

	info, err := os.Stat(m.ConfigFile())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestSetAPIKeyPreservesOtherSettings(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, os.MkdirAll(m.ConfigDir(), 0755))
	seed := `{"base_url": "http://127.0.0.1:9999", "notes": "keep me"}`
	require.NoError(t, os.WriteFile(m.ConfigFile(), []byte(seed), 0600))

	require.NoError(t, m.SetAPIKey("newkey"))

	data, err := os.ReadFile(m.ConfigFile())
	require.NoError(t, err)

	var settings map[string]any
	require.NoError(t, json.Unmarshal(data, &settings))
	assert.Equal(t, "newkey", settings["api_key"])
	assert.Equal(t, "keep me", settings["notes"])

	cfg := m.Load()
	assert.Equal(t, "http://127.0.0.1:9999", cfg.BaseURL)
}

func TestLoadReadsWebhookURL(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, os.MkdirAll(m.ConfigDir(), 0755))
	seed := `{"api_key": "k", "webhook_url": "http://127.0.0.1:9999/hook"}`
	require.NoError(t, os.WriteFile(m.ConfigFile(), []byte(seed), 0600))

	cfg := m.Load()
	assert.Equal(t, "http://127.0.0.1:9999/hook", cfg.WebhookURL)
}

func TestLoadCorruptFileTreatedAsUnconfigured(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, os.MkdirAll(m.ConfigDir(), 0755))
	require.NoError(t, os.WriteFile(m.ConfigFile(), []byte("{not json"), 0600))

	cfg := m.Load()
	assert.Equal(t, SourceNone, cfg.Source)
	assert.ErrorIs(t, cfg.RequireAPIKey(), ErrNotConfigured)
}

func TestSetAPIKeyReplacesCorruptFile(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, os.MkdirAll(m.ConfigDir(), 0755))
	require.NoError(t, os.WriteFile(m.ConfigFile(), []byte("{not json"), 0600))

	require.NoError(t, m.SetAPIKey("recovered"))

	cfg := m.Load()
	assert.Equal(t, "recovered", cfg.APIKey)
}

func TestDerivedPaths(t *testing.T) {
	m := newTestManager(t)

	assert.Contains(t, m.ConfigFile(), "config.json")
	assert.Contains(t, m.CacheDir(), "cache")
}
