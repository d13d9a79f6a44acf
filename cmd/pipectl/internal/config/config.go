// Package config loads pipectl's YAML configuration file. Settings here are
// defaults; command-line flags and environment variables override them.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the name of the config file
	ConfigFileName = "config.yaml"

	// DefaultConfigDir is the default directory for pipectl configuration
	// This will be ~/.config/pipectl/ on Unix systems
	DefaultConfigDir = ".config/pipectl"
)

// Config represents the pipectl configuration
type Config struct {
	// ContentJSON is the default JSON source, "URL" or "URL | PATH"
	ContentJSON string `yaml:"content_json,omitempty"`

	// Timezone is the default builtin clock zone (UTC or UTC±N)
	Timezone string `yaml:"timezone,omitempty"`

	// MaxLength is the default post length limit for render --validate
	MaxLength int `yaml:"max_length,omitempty"`

	// LogLevel controls logging verbosity: debug, info, warn, error
	LogLevel string `yaml:"log_level,omitempty"`

	// Version tracks the config file version for future migrations
	Version string `yaml:"version,omitempty"`
}

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "warn",
		Version:  "1.0",
	}
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, DefaultConfigDir, ConfigFileName), nil
}

// Load reads and parses the config file at path. A missing file yields the
// default config.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// LoadDefault loads the config from the standard location.
func LoadDefault() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Save writes the config to path, creating parent directories as needed.
func Save(config *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
