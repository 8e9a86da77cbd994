package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()

	if path == "" {
		t.Error("DefaultConfigPath() returned empty string")
	}

	// Should end with config.yaml
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("DefaultConfigPath() = %q, should end with config.yaml", path)
	}

	// Should contain .puterai directory
	dir := filepath.Dir(path)
	if filepath.Base(dir) != ".puterai" {
		t.Errorf("DefaultConfigPath() = %q, should be in .puterai directory", path)
	}
}

func TestDefaultConfigPathPlatform(t *testing.T) {
	path := DefaultConfigPath()

	if runtime.GOOS == "windows" {
		// Should use USERPROFILE on Windows
		userProfile := os.Getenv("USERPROFILE")
		if userProfile != "" && !strings.HasPrefix(path, userProfile) {
			t.Logf("Note: path %q doesn't start with USERPROFILE %q", path, userProfile)
		}
	} else {
		// Should use HOME on Unix
		home := os.Getenv("HOME")
		if home != "" && !strings.HasPrefix(path, home) {
			t.Logf("Note: path %q doesn't start with HOME %q", path, home)
		}
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")

	if err != nil {
		t.Errorf("LoadConfig() error = %v, want nil for missing file", err)
	}

	if cfg == nil {
		t.Fatal("LoadConfig() returned nil config")
	}

	// Should return empty config
	if cfg.DefaultAccount != "" {
		t.Errorf("DefaultAccount = %q, want empty", cfg.DefaultAccount)
	}
	if cfg.DefaultModel != "" {
		t.Errorf("DefaultModel = %q, want empty", cfg.DefaultModel)
	}
	if cfg.Accounts == nil {
		t.Error("Accounts map is nil")
	}
}

func TestLoadConfigValid(t *testing.T) {
	// Create temp config file
	content := `
default_account: work
default_model: claude-sonnet-4-5
base_url: https://api.puter.example
timeout_seconds: 60
max_retries: 5
retry_delay_ms: 250
debug: true

accounts:
  work:
    model: gpt-5-mini
    base_url: https://puter.corp.example
  personal: {}
`
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.DefaultAccount != "work" {
		t.Errorf("DefaultAccount = %q, want work", cfg.DefaultAccount)
	}
	if cfg.DefaultModel != "claude-sonnet-4-5" {
		t.Errorf("DefaultModel = %q, want claude-sonnet-4-5", cfg.DefaultModel)
	}
	if cfg.BaseURL != "https://api.puter.example" {
		t.Errorf("BaseURL = %q, want https://api.puter.example", cfg.BaseURL)
	}
	if cfg.TimeoutSeconds != 60 {
		t.Errorf("TimeoutSeconds = %d, want 60", cfg.TimeoutSeconds)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.MaxRetries)
	}
	if cfg.RetryDelayMS != 250 {
		t.Errorf("RetryDelayMS = %d, want 250", cfg.RetryDelayMS)
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true")
	}
	if len(cfg.Accounts) != 2 {
		t.Errorf("len(Accounts) = %d, want 2", len(cfg.Accounts))
	}

	work := cfg.Accounts["work"]
	if work.Model != "gpt-5-mini" {
		t.Errorf("work.Model = %q, want gpt-5-mini", work.Model)
	}
	if work.BaseURL != "https://puter.corp.example" {
		t.Errorf("work.BaseURL = %q, want https://puter.corp.example", work.BaseURL)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	// YAML that will cause unmarshal error (wrong type)
	content := `
default_account: [invalid, array, instead, of, string]
`
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}

	_, err := LoadConfig(path)
	if err == nil {
		t.Error("LoadConfig() should return error for invalid YAML")
	}
}

func TestLoadConfigEmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(path, []byte(""), 0644); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	// Should return empty config with initialized Accounts
	if cfg.Accounts == nil {
		t.Error("Accounts map is nil for empty file")
	}
}

func TestLoadConfigMinimal(t *testing.T) {
	content := `default_model: gpt-5-nano`

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.DefaultModel != "gpt-5-nano" {
		t.Errorf("DefaultModel = %q, want gpt-5-nano", cfg.DefaultModel)
	}
	if cfg.Accounts == nil {
		t.Error("Accounts map is nil")
	}
}

func TestConfigGetAccount(t *testing.T) {
	cfg := &Config{
		Accounts: map[string]AccountConfig{
			"work": {
				Model:   "gpt-5-mini",
				BaseURL: "https://puter.corp.example",
			},
		},
	}

	ac := cfg.GetAccount("work")
	if ac == nil {
		t.Fatal("GetAccount(work) returned nil")
	}
	if ac.Model != "gpt-5-mini" {
		t.Errorf("Model = %q, want gpt-5-mini", ac.Model)
	}

	ac = cfg.GetAccount("nonexistent")
	if ac != nil {
		t.Error("GetAccount(nonexistent) should return nil")
	}
}

func TestConfigGetAccountNilMap(t *testing.T) {
	cfg := &Config{Accounts: nil}

	ac := cfg.GetAccount("work")
	if ac != nil {
		t.Error("GetAccount on nil Accounts should return nil")
	}
}
