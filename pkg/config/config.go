package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the TikTok cleanup tool
type Config struct {
	// TikTok account and browser settings
	TikTok TikTokConfig `yaml:"tiktok" json:"tiktok"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Run behavior settings
	Run RunConfig `yaml:"run" json:"run"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Warnings collected while loading: invalid values that were
	// replaced by their defaults. Surfaced by the CLI after the
	// logger is up, never fatal.
	Warnings []string `yaml:"-" json:"-"`
}

// TikTokConfig holds TikTok-specific configuration
type TikTokConfig struct {
	Username    string `yaml:"username" json:"username"`
	LoginMethod string `yaml:"login_method" json:"login_method"`
	Headless    bool   `yaml:"headless" json:"headless"`
	BaseURL     string `yaml:"base_url" json:"base_url"`
	UserAgent   string `yaml:"user_agent" json:"user_agent"`
}

// RateLimitConfig holds the pacing knobs for one run
type RateLimitConfig struct {
	BatchSize                int `yaml:"batch_size" json:"batch_size"`
	ActionDelaySeconds       int `yaml:"action_delay_seconds" json:"action_delay_seconds"`
	RunDelaySeconds          int `yaml:"run_delay_seconds" json:"run_delay_seconds"`
	ProfileCheckDelaySeconds int `yaml:"profile_check_delay_seconds" json:"profile_check_delay_seconds"`
	MaxToReview              int `yaml:"max_to_review" json:"max_to_review"`
}

// ActionDelay returns the minimum pause between unfollow actions
func (r RateLimitConfig) ActionDelay() time.Duration {
	return time.Duration(r.ActionDelaySeconds) * time.Second
}

// RunDelay returns the minimum gap between two admitted runs
func (r RateLimitConfig) RunDelay() time.Duration {
	return time.Duration(r.RunDelaySeconds) * time.Second
}

// ProfileCheckDelay returns the minimum pause between profile probes
func (r RateLimitConfig) ProfileCheckDelay() time.Duration {
	return time.Duration(r.ProfileCheckDelaySeconds) * time.Second
}

// RunConfig holds run behavior settings
type RunConfig struct {
	// DryRun reports candidates without unfollowing anyone. On by
	// default; pass --dry-run=false to act.
	DryRun     bool   `yaml:"dry_run" json:"dry_run"`
	StateFile  string `yaml:"state_file" json:"state_file"`
	ExportFile string `yaml:"export_file" json:"export_file"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		TikTok: TikTokConfig{
			LoginMethod: "email",
			Headless:    false,
			BaseURL:     "https://www.tiktok.com",
			UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		RateLimit: RateLimitConfig{
			BatchSize:                5,
			ActionDelaySeconds:       5,
			RunDelaySeconds:          10800, // 3 hours
			ProfileCheckDelaySeconds: 30,
			MaxToReview:              0, // 0 means no cap
		},
		Run: RunConfig{
			DryRun:     true,
			StateFile:  "",
			ExportFile: "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			File:   "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	// TikTok account
	if username := os.Getenv("TIKTOK_USERNAME"); username != "" {
		c.TikTok.Username = username
	}
	if method := os.Getenv("LOGIN_METHOD"); method != "" {
		c.TikTok.LoginMethod = method
	}
	c.boolFromEnv("HEADLESS", &c.TikTok.Headless)

	// Rate limiting knobs, names kept from the original script
	c.intFromEnv("BATCH_SIZE", &c.RateLimit.BatchSize)
	c.intFromEnv("ACTION_DELAY", &c.RateLimit.ActionDelaySeconds)
	c.intFromEnv("UNFOLLOW_DELAY", &c.RateLimit.RunDelaySeconds)
	c.intFromEnv("PROFILE_CHECK_DELAY", &c.RateLimit.ProfileCheckDelaySeconds)
	c.intFromEnv("MAX_TO_REVIEW", &c.RateLimit.MaxToReview)

	// Run behavior
	c.boolFromEnv("DRY_RUN", &c.Run.DryRun)
	if stateFile := os.Getenv("TOKCLEAN_STATE_FILE"); stateFile != "" {
		c.Run.StateFile = stateFile
	}
	if exportFile := os.Getenv("TOKCLEAN_EXPORT_FILE"); exportFile != "" {
		c.Run.ExportFile = exportFile
	}

	// Logging
	if logLevel := os.Getenv("TOKCLEAN_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat := os.Getenv("TOKCLEAN_LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}
	if logFile := os.Getenv("TOKCLEAN_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return nil
}

// intFromEnv reads an integer environment variable into dst. A value
// that does not parse keeps the current dst and records a warning.
func (c *Config) intFromEnv(name string, dst *int) {
	raw := os.Getenv(name)
	if raw == "" {
		return
	}
	val, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		c.warnf("invalid %s value %q, using default %d", name, raw, *dst)
		return
	}
	*dst = val
}

// boolFromEnv reads a boolean environment variable into dst. Accepts
// the strconv forms plus yes/no; anything else keeps the default.
func (c *Config) boolFromEnv(name string, dst *bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y":
		*dst = true
		return
	case "no", "n":
		*dst = false
		return
	}
	val, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		c.warnf("invalid %s value %q, using default %t", name, raw, *dst)
		return
	}
	*dst = val
}

func (c *Config) warnf(format string, args ...interface{}) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try TOKCLEAN_CONFIG then default locations
	if path == "" {
		path = os.Getenv("TOKCLEAN_CONFIG")
	}
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		"tokclean.yaml",
		"tokclean.yml",
		".tokclean.yaml",
		filepath.Join(os.Getenv("HOME"), ".config", "tokclean", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "tokclean", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".tokclean.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Normalize replaces out-of-range numeric values with their defaults,
// recording a warning for each substitution. Invalid configuration is
// recoverable here, never fatal.
func (c *Config) Normalize() {
	defaults := DefaultConfig()

	if c.RateLimit.BatchSize <= 0 {
		c.warnf("batch_size must be positive, using default %d", defaults.RateLimit.BatchSize)
		c.RateLimit.BatchSize = defaults.RateLimit.BatchSize
	}
	if c.RateLimit.ActionDelaySeconds < 0 {
		c.warnf("action_delay_seconds cannot be negative, using default %d", defaults.RateLimit.ActionDelaySeconds)
		c.RateLimit.ActionDelaySeconds = defaults.RateLimit.ActionDelaySeconds
	}
	if c.RateLimit.RunDelaySeconds < 0 {
		c.warnf("run_delay_seconds cannot be negative, using default %d", defaults.RateLimit.RunDelaySeconds)
		c.RateLimit.RunDelaySeconds = defaults.RateLimit.RunDelaySeconds
	}
	if c.RateLimit.ProfileCheckDelaySeconds < 0 {
		c.warnf("profile_check_delay_seconds cannot be negative, using default %d", defaults.RateLimit.ProfileCheckDelaySeconds)
		c.RateLimit.ProfileCheckDelaySeconds = defaults.RateLimit.ProfileCheckDelaySeconds
	}
	if c.RateLimit.MaxToReview < 0 {
		c.warnf("max_to_review cannot be negative, using default %d", defaults.RateLimit.MaxToReview)
		c.RateLimit.MaxToReview = defaults.RateLimit.MaxToReview
	}

	if level := strings.ToLower(c.Logging.Level); level != "debug" && level != "info" &&
		level != "warn" && level != "warning" && level != "error" {
		c.warnf("invalid log level %q, using default %q", c.Logging.Level, defaults.Logging.Level)
		c.Logging.Level = defaults.Logging.Level
	}
	if format := strings.ToLower(c.Logging.Format); format != "console" && format != "json" {
		c.warnf("invalid log format %q, using default %q", c.Logging.Format, defaults.Logging.Format)
		c.Logging.Format = defaults.Logging.Format
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.TikTok.LoginMethod) {
	case "email", "google":
	default:
		errs = append(errs, fmt.Errorf("login method must be email or google, got %q", c.TikTok.LoginMethod))
	}

	if c.TikTok.BaseURL == "" {
		errs = append(errs, errors.New("base URL is required"))
	}
	if !strings.HasPrefix(c.TikTok.BaseURL, "https://") && !strings.HasPrefix(c.TikTok.BaseURL, "http://") {
		errs = append(errs, errors.New("base URL must start with http:// or https://"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only flags the user actually set should appear in the map.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if username, ok := flags["username"].(string); ok && username != "" {
		c.TikTok.Username = username
	}
	if method, ok := flags["login-method"].(string); ok && method != "" {
		c.TikTok.LoginMethod = method
	}
	if headless, ok := flags["headless"].(bool); ok {
		c.TikTok.Headless = headless
	}
	if batchSize, ok := flags["batch-size"].(int); ok {
		c.RateLimit.BatchSize = batchSize
	}
	if actionDelay, ok := flags["action-delay"].(int); ok {
		c.RateLimit.ActionDelaySeconds = actionDelay
	}
	if runDelay, ok := flags["run-delay"].(int); ok {
		c.RateLimit.RunDelaySeconds = runDelay
	}
	if profileDelay, ok := flags["profile-check-delay"].(int); ok {
		c.RateLimit.ProfileCheckDelaySeconds = profileDelay
	}
	if maxToReview, ok := flags["max-to-review"].(int); ok {
		c.RateLimit.MaxToReview = maxToReview
	}
	if dryRun, ok := flags["dry-run"].(bool); ok {
		c.Run.DryRun = dryRun
	}
	if stateFile, ok := flags["state-file"].(string); ok && stateFile != "" {
		c.Run.StateFile = stateFile
	}
	if exportFile, ok := flags["export-file"].(string); ok && exportFile != "" {
		c.Run.ExportFile = exportFile
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat, ok := flags["log-format"].(string); ok && logFormat != "" {
		c.Logging.Format = logFormat
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".env"))
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".tokclean.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Replace invalid values with defaults, then validate what remains
	config.Normalize()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
