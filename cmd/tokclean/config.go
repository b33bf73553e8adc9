package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"tokclean/pkg/config"
	"tokclean/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage tokclean configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (including .env files)
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'tokclean.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources:
  - Command line flags
  - Environment variables
  - Configuration file
  - Default values

Credentials never live in the configuration; they are managed
separately with 'tokclean auth'.`,
	Run: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Value types and ranges
  - Path accessibility`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	// Determine config file path
	configPath := configFile
	if configPath == "" {
		configPath = "tokclean.yaml"
	}

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	// Create example configuration
	exampleConfig := `# tokclean Configuration File
#
# This file contains all available configuration options.
# Most options can also be set through environment variables;
# the variable name is noted next to each option.

# TikTok account and browser settings
tiktok:
  # Account to clean up. Credentials for it are stored separately
  # with 'tokclean auth login'. (TIKTOK_USERNAME)
  username: ""

  # How the browser signs in: email or google (LOGIN_METHOD)
  login_method: "email"

  # Run the browser without a visible window (HEADLESS)
  # Keep this false for the first login: TikTok may show a captcha
  # or a verification prompt you have to solve yourself.
  headless: false

  # TikTok frontend to drive. Only change this for testing.
  base_url: "https://www.tiktok.com"

  # Browser user agent. Leave empty to use the browser's own.
  user_agent: ""

# Rate limiting configuration
rate_limit:
  # Maximum unfollows per run (BATCH_SIZE)
  # Keep this small; bulk unfollowing gets accounts flagged.
  batch_size: 5

  # Seconds between unfollow actions (ACTION_DELAY)
  action_delay_seconds: 5

  # Minimum seconds between two runs (UNFOLLOW_DELAY)
  # Default is 3 hours.
  run_delay_seconds: 10800

  # Seconds between profile checks while scanning (PROFILE_CHECK_DELAY)
  profile_check_delay_seconds: 30

  # Cap on profiles checked per run, 0 for no cap (MAX_TO_REVIEW)
  max_to_review: 0

# Run behavior settings
run:
  # Report what would be unfollowed without doing it (DRY_RUN)
  # Set to false, or pass --dry-run=false, to unfollow for real.
  dry_run: true

  # Where checked/unfollowed accounts are remembered between runs
  # (TOKCLEAN_STATE_FILE). Empty selects the platform data directory.
  state_file: ""

  # CSV report of every flagged account (TOKCLEAN_EXPORT_FILE)
  # Empty selects the platform data directory.
  export_file: ""

# Logging configuration
logging:
  # Log level: debug, info, warn, error (TOKCLEAN_LOG_LEVEL)
  level: "info"

  # Log format: console, json (TOKCLEAN_LOG_FORMAT)
  format: "console"

  # Log file path, empty to log to the terminal only (TOKCLEAN_LOG_FILE)
  file: ""
`

	// Write configuration file
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the configuration file and set your TikTok username")
	fmt.Println("2. Store your credentials with 'tokclean auth login'")
	fmt.Println("3. Preview the cleanup with 'tokclean run'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	// Load configuration
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Convert to YAML for display. Nothing to mask: credentials are
	// kept in the keyring, never in the config.
	data, err := yaml.Marshal(cfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	// Show configuration sources
	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (including .env files)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (first of tokclean.yaml, ~/.config/tokclean/config.yaml)")
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	// Check if config file is specified
	if configFile == "" {
		// Try to find config file in common locations
		possiblePaths := []string{
			"tokclean.yaml",
			"tokclean.yml",
			".tokclean.yaml",
			filepath.Join(os.Getenv("HOME"), ".tokclean.yaml"),
			filepath.Join(os.Getenv("HOME"), ".config", "tokclean", "config.yaml"),
			filepath.Join(os.Getenv("HOME"), ".config", "tokclean", "config.yml"),
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}

		if configFile == "" {
			ui.PrintError("No configuration file found", "Specify a file with --config flag")
			os.Exit(1)
		}
	}

	ui.PrintInfo("Validating configuration", configFile)

	// Try to load and validate configuration
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	// Out-of-range values were already replaced with defaults during
	// loading; surface those repairs as warnings here
	warnings := append([]string{}, cfg.Warnings...)
	errors := []string{}

	if cfg.TikTok.Username == "" {
		warnings = append(warnings, "no username configured; runs will use stored credentials or TIKTOK_USERNAME")
	}

	// Check paths
	if cfg.Run.StateFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Run.StateFile), 0755); err != nil {
			errors = append(errors, fmt.Sprintf("Cannot create state directory: %v", err))
		}
	}
	if cfg.Run.ExportFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Run.ExportFile), 0755); err != nil {
			errors = append(errors, fmt.Sprintf("Cannot create export directory: %v", err))
		}
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			errors = append(errors, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	// Display results
	if len(errors) > 0 {
		ui.PrintError("Configuration has errors:")
		for _, err := range errors {
			fmt.Printf("  - %s\n", err)
		}
		os.Exit(1)
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:")
		for _, warn := range warnings {
			fmt.Printf("  - %s\n", warn)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	// Show summary
	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Dry run: %t\n", cfg.Run.DryRun)
	fmt.Printf("  Batch size: %d unfollows per run\n", cfg.RateLimit.BatchSize)
	fmt.Printf("  Run delay: %s\n", cfg.RateLimit.RunDelay())
	fmt.Printf("  Action delay: %s\n", cfg.RateLimit.ActionDelay())
	fmt.Printf("  Profile check delay: %s\n", cfg.RateLimit.ProfileCheckDelay())
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}
