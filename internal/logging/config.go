package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	configDirName  = ".config"
	appDirName     = "vtscan"
	logFileName    = "vtscan.log"
	configFileName = "logging.yaml"
)

// Config controls the log sink for the whole process.
type Config struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
	File   string `yaml:"file"`
}

// DefaultConfig returns the default logging configuration: info-level text
// lines appended to ~/.config/vtscan/vtscan.log.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "text",
		File:   defaultLogPath(),
	}
}

func defaultLogPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, configDirName, appDirName, logFileName)
}

// LoadConfig loads the logging configuration from path. An empty path falls
// back to ~/.config/vtscan/logging.yaml; a missing file yields defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, configDirName, appDirName, configFileName)
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("failed to read logging config: %w", err)
	}

	var fileConfig struct {
		Logging Config `yaml:"logging"`
	}
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return config, fmt.Errorf("failed to parse logging config: %w", err)
	}

	// Merge with defaults, only overriding values the file actually sets.
	if fileConfig.Logging.Level != "" {
		config.Level = fileConfig.Logging.Level
	}
	if fileConfig.Logging.Format != "" {
		config.Format = fileConfig.Logging.Format
	}
	if fileConfig.Logging.File != "" {
		config.File = fileConfig.Logging.File
	}

	return config, nil
}
