package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"vtscan/internal/logging"
)

// EnvAPIKey is consulted before any config file.
const EnvAPIKey = "VT_API_KEY"

const (
	configDirName  = ".config"
	appDirName     = "vtscan"
	configFileName = "config.json"
	cacheDirName   = "cache"

	// The config file holds the API key, so it is never group or world
	// readable.
	configFileMode = 0600
)

// ErrNotConfigured reports that no API key could be found in the environment
// or the config file.
var ErrNotConfigured = errors.New("no API key configured: run 'vtscan config --api-key YOUR_KEY' or set " + EnvAPIKey)

// Source names where the active API key came from.
type Source string

const (
	SourceEnvironment Source = "environment"
	SourceConfigFile  Source = "config file"
	SourceNone        Source = "not configured"
)

// Config is the resolved runtime configuration.
type Config struct {
	APIKey     string
	Source     Source
	BaseURL    string // empty means the production VirusTotal endpoint
	WebhookURL string // optional endpoint for scan notifications
}

// RequireAPIKey returns ErrNotConfigured when no key is present.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return ErrNotConfigured
	}
	return nil
}

// Manager handles configuration persistence and retrieval.
type Manager struct {
	configDir string
	logger    logging.Logger
}

// NewManager creates a manager rooted at ~/.config/vtscan.
func NewManager(logger logging.Logger) (*Manager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewManagerAt(filepath.Join(homeDir, configDirName, appDirName), logger), nil
}

// NewManagerAt creates a manager rooted at dir.
func NewManagerAt(dir string, logger logging.Logger) *Manager {
	return &Manager{configDir: dir, logger: logging.OrNop(logger)}
}

// ConfigDir returns the directory holding the config file and cache.
func (m *Manager) ConfigDir() string {
	return m.configDir
}

// ConfigFile returns the path of the JSON config file.
func (m *Manager) ConfigFile() string {
	return filepath.Join(m.configDir, configFileName)
}

// CacheDir returns the directory holding cached scan results.
func (m *Manager) CacheDir() string {
	return filepath.Join(m.configDir, cacheDirName)
}

// Load resolves the runtime configuration. The VT_API_KEY environment
// variable wins over the config file. A missing config file is normal, and
// an unreadable one downgrades to the unconfigured state rather than
// blocking commands that may still have a key in the environment.
func (m *Manager) Load() *Config {
	cfg := &Config{Source: SourceNone}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(m.configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			m.logger.Warn("ignoring unreadable config file %s: %v", m.ConfigFile(), err)
		}
	}

	cfg.BaseURL = v.GetString("base_url")
	cfg.WebhookURL = v.GetString("webhook_url")

	if key := os.Getenv(EnvAPIKey); key != "" {
		cfg.APIKey = key
		cfg.Source = SourceEnvironment
		m.logger.Debug("api key %s resolved from %s", logging.MaskAPIKey(key), EnvAPIKey)
		return cfg
	}

	if key := v.GetString("api_key"); key != "" {
		cfg.APIKey = key
		cfg.Source = SourceConfigFile
		m.logger.Debug("api key %s resolved from %s", logging.MaskAPIKey(key), m.ConfigFile())
	}

	return cfg
}

// SetAPIKey stores key in the config file, creating it when needed. Other
// settings already in the file are preserved.
func (m *Manager) SetAPIKey(key string) error {
	settings := map[string]any{}

	data, err := os.ReadFile(m.ConfigFile())
	if err == nil {
		if err := json.Unmarshal(data, &settings); err != nil {
			m.logger.Warn("discarding unreadable config file %s: %v", m.ConfigFile(), err)
			settings = map[string]any{}
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	settings["api_key"] = key

	out, err := json.MarshalIndent(settings, "", "    ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(m.configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(m.ConfigFile(), out, configFileMode); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// WriteFile only applies the mode on create; tighten pre-existing files.
	if err := os.Chmod(m.ConfigFile(), configFileMode); err != nil {
		return fmt.Errorf("failed to restrict config file permissions: %w", err)
	}

	m.logger.Info("api key %s saved to %s", logging.MaskAPIKey(key), m.ConfigFile())
	return nil
}
