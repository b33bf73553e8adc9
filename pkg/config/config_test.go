package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.RateLimit.BatchSize != 5 {
		t.Errorf("Expected default batch size to be 5, got %d", config.RateLimit.BatchSize)
	}

	if config.RateLimit.ActionDelaySeconds != 5 {
		t.Errorf("Expected default action delay to be 5, got %d", config.RateLimit.ActionDelaySeconds)
	}

	if config.RateLimit.RunDelaySeconds != 10800 {
		t.Errorf("Expected default run delay to be 10800, got %d", config.RateLimit.RunDelaySeconds)
	}

	if config.RateLimit.ProfileCheckDelaySeconds != 30 {
		t.Errorf("Expected default profile check delay to be 30, got %d", config.RateLimit.ProfileCheckDelaySeconds)
	}

	if config.RateLimit.MaxToReview != 0 {
		t.Errorf("Expected default max to review to be 0 (unbounded), got %d", config.RateLimit.MaxToReview)
	}

	if !config.Run.DryRun {
		t.Error("Expected dry run to be enabled by default")
	}

	if config.TikTok.LoginMethod != "email" {
		t.Errorf("Expected default login method to be email, got %s", config.TikTok.LoginMethod)
	}
}

func TestDelayAccessors(t *testing.T) {
	rl := RateLimitConfig{
		BatchSize:                3,
		ActionDelaySeconds:       7,
		RunDelaySeconds:          3600,
		ProfileCheckDelaySeconds: 12,
	}

	if rl.ActionDelay() != 7*time.Second {
		t.Errorf("Expected action delay 7s, got %v", rl.ActionDelay())
	}
	if rl.RunDelay() != time.Hour {
		t.Errorf("Expected run delay 1h, got %v", rl.RunDelay())
	}
	if rl.ProfileCheckDelay() != 12*time.Second {
		t.Errorf("Expected profile check delay 12s, got %v", rl.ProfileCheckDelay())
	}
}

func TestLoadFromEnv(t *testing.T) {
	os.Setenv("TIKTOK_USERNAME", "testuser")
	os.Setenv("LOGIN_METHOD", "google")
	os.Setenv("BATCH_SIZE", "10")
	os.Setenv("ACTION_DELAY", "8")
	os.Setenv("UNFOLLOW_DELAY", "7200")
	os.Setenv("DRY_RUN", "false")
	os.Setenv("HEADLESS", "true")
	os.Setenv("TOKCLEAN_LOG_LEVEL", "debug")

	defer func() {
		os.Unsetenv("TIKTOK_USERNAME")
		os.Unsetenv("LOGIN_METHOD")
		os.Unsetenv("BATCH_SIZE")
		os.Unsetenv("ACTION_DELAY")
		os.Unsetenv("UNFOLLOW_DELAY")
		os.Unsetenv("DRY_RUN")
		os.Unsetenv("HEADLESS")
		os.Unsetenv("TOKCLEAN_LOG_LEVEL")
	}()

	config := DefaultConfig()
	err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	if config.TikTok.Username != "testuser" {
		t.Errorf("Expected username to be testuser, got %s", config.TikTok.Username)
	}

	if config.TikTok.LoginMethod != "google" {
		t.Errorf("Expected login method to be google, got %s", config.TikTok.LoginMethod)
	}

	if config.RateLimit.BatchSize != 10 {
		t.Errorf("Expected batch size to be 10, got %d", config.RateLimit.BatchSize)
	}

	if config.RateLimit.ActionDelaySeconds != 8 {
		t.Errorf("Expected action delay to be 8, got %d", config.RateLimit.ActionDelaySeconds)
	}

	if config.RateLimit.RunDelaySeconds != 7200 {
		t.Errorf("Expected run delay to be 7200, got %d", config.RateLimit.RunDelaySeconds)
	}

	if config.Run.DryRun {
		t.Error("Expected dry run to be disabled")
	}

	if !config.TikTok.Headless {
		t.Error("Expected headless to be enabled")
	}

	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level to be debug, got %s", config.Logging.Level)
	}
}

func TestLoadFromEnvInvalidValues(t *testing.T) {
	os.Setenv("BATCH_SIZE", "not-a-number")
	os.Setenv("UNFOLLOW_DELAY", "3.5hours")
	os.Setenv("DRY_RUN", "maybe")

	defer func() {
		os.Unsetenv("BATCH_SIZE")
		os.Unsetenv("UNFOLLOW_DELAY")
		os.Unsetenv("DRY_RUN")
	}()

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err != nil {
		t.Fatalf("Invalid values must not fail the load: %v", err)
	}

	// Defaults survive, one warning per bad value
	if config.RateLimit.BatchSize != 5 {
		t.Errorf("Expected batch size to keep default 5, got %d", config.RateLimit.BatchSize)
	}
	if config.RateLimit.RunDelaySeconds != 10800 {
		t.Errorf("Expected run delay to keep default 10800, got %d", config.RateLimit.RunDelaySeconds)
	}
	if !config.Run.DryRun {
		t.Error("Expected dry run to keep default true")
	}
	if len(config.Warnings) != 3 {
		t.Fatalf("Expected 3 warnings, got %d: %v", len(config.Warnings), config.Warnings)
	}
	for _, w := range config.Warnings {
		if !strings.Contains(w, "using default") {
			t.Errorf("Warning should mention the default fallback: %q", w)
		}
	}
}

func TestBoolFromEnvForms(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"y", true},
		{"false", false},
		{"0", false},
		{"no", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			os.Setenv("HEADLESS", tt.raw)
			defer os.Unsetenv("HEADLESS")

			config := DefaultConfig()
			if err := config.LoadFromEnv(); err != nil {
				t.Fatalf("LoadFromEnv failed: %v", err)
			}
			if config.TikTok.Headless != tt.want {
				t.Errorf("HEADLESS=%q: expected %t, got %t", tt.raw, tt.want, config.TikTok.Headless)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	config := DefaultConfig()
	config.RateLimit.BatchSize = -1
	config.RateLimit.ActionDelaySeconds = -10
	config.RateLimit.MaxToReview = -5
	config.Logging.Level = "verbose"
	config.Logging.Format = "xml"

	config.Normalize()

	if config.RateLimit.BatchSize != 5 {
		t.Errorf("Expected batch size restored to 5, got %d", config.RateLimit.BatchSize)
	}
	if config.RateLimit.ActionDelaySeconds != 5 {
		t.Errorf("Expected action delay restored to 5, got %d", config.RateLimit.ActionDelaySeconds)
	}
	if config.RateLimit.MaxToReview != 0 {
		t.Errorf("Expected max to review restored to 0, got %d", config.RateLimit.MaxToReview)
	}
	if config.Logging.Level != "info" {
		t.Errorf("Expected log level restored to info, got %s", config.Logging.Level)
	}
	if config.Logging.Format != "console" {
		t.Errorf("Expected log format restored to console, got %s", config.Logging.Format)
	}
	if len(config.Warnings) != 5 {
		t.Errorf("Expected 5 warnings, got %d: %v", len(config.Warnings), config.Warnings)
	}
}

func TestNormalizeKeepsValidValues(t *testing.T) {
	config := DefaultConfig()
	config.RateLimit.BatchSize = 20
	config.RateLimit.ActionDelaySeconds = 0 // zero delay is allowed
	config.RateLimit.MaxToReview = 100

	config.Normalize()

	if config.RateLimit.BatchSize != 20 {
		t.Errorf("Expected batch size 20 to survive, got %d", config.RateLimit.BatchSize)
	}
	if config.RateLimit.ActionDelaySeconds != 0 {
		t.Errorf("Expected zero action delay to survive, got %d", config.RateLimit.ActionDelaySeconds)
	}
	if config.RateLimit.MaxToReview != 100 {
		t.Errorf("Expected max to review 100 to survive, got %d", config.RateLimit.MaxToReview)
	}
	if len(config.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", config.Warnings)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError bool
	}{
		{
			name:      "valid config",
			mutate:    func(c *Config) {},
			wantError: false,
		},
		{
			name: "google login method",
			mutate: func(c *Config) {
				c.TikTok.LoginMethod = "google"
			},
			wantError: false,
		},
		{
			name: "unknown login method",
			mutate: func(c *Config) {
				c.TikTok.LoginMethod = "carrier-pigeon"
			},
			wantError: true,
		},
		{
			name: "missing base URL",
			mutate: func(c *Config) {
				c.TikTok.BaseURL = ""
			},
			wantError: true,
		},
		{
			name: "base URL without scheme",
			mutate: func(c *Config) {
				c.TikTok.BaseURL = "www.tiktok.com"
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()

	flags := map[string]interface{}{
		"username":   "flaguser",
		"batch-size": 2,
		"dry-run":    false,
		"headless":   true,
		"log-level":  "error",
		"state-file": "/tmp/state.json",
	}

	config.MergeCommandLineFlags(flags)

	if config.TikTok.Username != "flaguser" {
		t.Errorf("Expected username to be flaguser, got %s", config.TikTok.Username)
	}

	if config.RateLimit.BatchSize != 2 {
		t.Errorf("Expected batch size to be 2, got %d", config.RateLimit.BatchSize)
	}

	if config.Run.DryRun {
		t.Error("Expected dry run to be disabled by flag")
	}

	if !config.TikTok.Headless {
		t.Error("Expected headless to be enabled by flag")
	}

	if config.Logging.Level != "error" {
		t.Errorf("Expected log level to be error, got %s", config.Logging.Level)
	}

	if config.Run.StateFile != "/tmp/state.json" {
		t.Errorf("Expected state file to be /tmp/state.json, got %s", config.Run.StateFile)
	}
}

func TestSaveAndLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	config := DefaultConfig()
	config.TikTok.Username = "savetest"
	config.RateLimit.BatchSize = 8
	config.Run.DryRun = false

	err := config.Save(configPath)
	if err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loadedConfig := DefaultConfig()
	err = loadedConfig.LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loadedConfig.TikTok.Username != "savetest" {
		t.Errorf("Expected loaded username to be savetest, got %s", loadedConfig.TikTok.Username)
	}

	if loadedConfig.RateLimit.BatchSize != 8 {
		t.Errorf("Expected loaded batch size to be 8, got %d", loadedConfig.RateLimit.BatchSize)
	}

	if loadedConfig.Run.DryRun {
		t.Error("Expected loaded dry run to be false")
	}
}

func TestLoadPrecedence(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	fileConfig := DefaultConfig()
	fileConfig.RateLimit.BatchSize = 7
	fileConfig.RateLimit.ActionDelaySeconds = 20
	if err := fileConfig.Save(configPath); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	// Env overrides the file, flag overrides the env
	os.Setenv("ACTION_DELAY", "15")
	os.Setenv("BATCH_SIZE", "9")
	defer func() {
		os.Unsetenv("ACTION_DELAY")
		os.Unsetenv("BATCH_SIZE")
	}()

	config, err := Load(configPath, map[string]interface{}{
		"batch-size": 3,
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if config.RateLimit.BatchSize != 3 {
		t.Errorf("Expected flag batch size 3 to win, got %d", config.RateLimit.BatchSize)
	}

	if config.RateLimit.ActionDelaySeconds != 15 {
		t.Errorf("Expected env action delay 15 to beat file value, got %d", config.RateLimit.ActionDelaySeconds)
	}
}
