// Package config handles CLI configuration loading and management.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration.
// Zero values mean "use the client defaults".
type Config struct {
	DefaultAccount string                   `yaml:"default_account"`
	DefaultModel   string                   `yaml:"default_model"`
	BaseURL        string                   `yaml:"base_url,omitempty"`
	TimeoutSeconds int                      `yaml:"timeout_seconds,omitempty"`
	MaxRetries     int                      `yaml:"max_retries,omitempty"`
	RetryDelayMS   int                      `yaml:"retry_delay_ms,omitempty"`
	Debug          bool                     `yaml:"debug,omitempty"`
	Accounts       map[string]AccountConfig `yaml:"accounts"`
}

// AccountConfig holds per-account overrides.
type AccountConfig struct {
	Model   string `yaml:"model,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
}

// DefaultConfigPath returns the default configuration file path for the current platform.
// - macOS/Linux: ~/.puterai/config.yaml
// - Windows: %USERPROFILE%\.puterai\config.yaml
func DefaultConfigPath() string {
	var homeDir string

	if runtime.GOOS == "windows" {
		homeDir = os.Getenv("USERPROFILE")
	} else {
		homeDir = os.Getenv("HOME")
	}

	if homeDir == "" {
		// Fallback to current directory
		return "config.yaml"
	}

	return filepath.Join(homeDir, ".puterai", "config.yaml")
}

// LoadConfig loads configuration from the specified path.
// If the file doesn't exist, returns an empty config without error.
// Returns an error only if the file exists but cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Accounts: make(map[string]AccountConfig),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Missing config file is not an error
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Ensure Accounts map is initialized
	if cfg.Accounts == nil {
		cfg.Accounts = make(map[string]AccountConfig)
	}

	return cfg, nil
}

// GetAccount returns the account config for the given name.
// Returns nil if the account is not configured.
func (c *Config) GetAccount(name string) *AccountConfig {
	if c.Accounts == nil {
		return nil
	}
	if ac, ok := c.Accounts[name]; ok {
		return &ac
	}
	return nil
}
