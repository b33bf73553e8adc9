package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"tokclean/pkg/config"
	"tokclean/pkg/logger"
	"tokclean/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile    string
	logLevel      string
	logFormat     string
	noColor       bool
	notifications bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tokclean",
	Short: "Clean up your TikTok following list",
	Long: `tokclean walks your TikTok following list in a real browser session,
flags the accounts that are banned, deleted or empty, and unfollows them
in small rate-limited batches.

Features:
  - Dry run by default: preview every unfollow before arming it
  - Resumable: checked accounts are remembered across runs
  - Three-level rate limiting (between runs, probes and unfollows)
  - Secure credential storage using the system keychain
  - CSV export of every flagged account
  - Desktop notification when a run finishes
  - Optional full-screen terminal UI (--tui)

For more information and examples, visit: https://github.com/yourusername/tokclean`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}

		// A first logger from the persistent flags so early paths can
		// log. Commands that load the full config re-initialize with it.
		if err := logger.Initialize(&config.LoggingConfig{Level: logLevel, Format: logFormat}); err != nil {
			ui.PrintError("Invalid logging flags", err.Error())
			os.Exit(1)
		}

		// Don't show logo for certain commands
		if cmd.Name() != "version" && cmd.Name() != "help" && cmd.Name() != "completion" {
			ui.PrintLogo()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is tokclean.yaml or ~/.config/tokclean/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&notifications, "notifications", true, "enable desktop notifications")

	// Version template
	rootCmd.SetVersionTemplate(`tokclean {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
