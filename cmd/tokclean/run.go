package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"tokclean/internal/browser"
	"tokclean/pkg/auth"
	"tokclean/pkg/classifier"
	"tokclean/pkg/cleaner"
	"tokclean/pkg/config"
	"tokclean/pkg/engine"
	"tokclean/pkg/export"
	"tokclean/pkg/history"
	"tokclean/pkg/interrupt"
	"tokclean/pkg/logger"
	"tokclean/pkg/state"
	"tokclean/pkg/ui"
	"tokclean/pkg/ui/tui"
)

var (
	// Run command flags
	dryRun            bool
	batchSize         int
	actionDelay       int
	runDelay          int
	profileCheckDelay int
	maxToReview       int
	headless          bool
	stateFile         string
	exportFile        string
	accountName       string
	useTUI            bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scan the following list and unfollow invalid accounts",
	Long: `Scan your TikTok following list and unfollow accounts that no longer
exist: banned, deleted, or empty shells that never posted anything.

Every run:
  - honors the run-level cooldown (skipped entirely when invoked too soon)
  - skips accounts already checked in previous runs
  - probes each remaining profile with a paced, jittered delay
  - unfollows at most --batch-size flagged accounts, one at a time

Dry run is the default: nothing is unfollowed until you pass
--dry-run=false. Credentials must be stored first with 'tokclean auth login'
or provided through TIKTOK_USERNAME and TIKTOK_PASSWORD.`,
	Example: `  # Preview what would be unfollowed (dry run is the default)
  tokclean run

  # Unfollow for real, at most 10 per run
  tokclean run --dry-run=false --batch-size 10

  # Slow everything down
  tokclean run --action-delay 10 --profile-check-delay 60

  # Watch it happen in a full-screen terminal UI
  tokclean run --tui

  # Use a specific stored account
  tokclean run --account myaccount`,
	Args: cobra.NoArgs,
	Run:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Local flags for run command
	runCmd.Flags().BoolVar(&dryRun, "dry-run", true, "report what would be unfollowed without doing it (--dry-run=false to arm)")
	runCmd.Flags().IntVar(&batchSize, "batch-size", 5, "maximum unfollows per run")
	runCmd.Flags().IntVar(&actionDelay, "action-delay", 5, "seconds between unfollow actions")
	runCmd.Flags().IntVar(&runDelay, "run-delay", 10800, "minimum seconds between two runs")
	runCmd.Flags().IntVar(&profileCheckDelay, "profile-check-delay", 30, "seconds between profile checks")
	runCmd.Flags().IntVar(&maxToReview, "max-to-review", 0, "cap on profiles checked per run (0 = no cap)")
	runCmd.Flags().BoolVar(&headless, "headless", false, "run the browser without a visible window")
	runCmd.Flags().StringVar(&stateFile, "state-file", "", "path to the state file (default: platform data directory)")
	runCmd.Flags().StringVar(&exportFile, "export-file", "", "path to the invalid-accounts CSV (default: platform data directory)")
	runCmd.Flags().StringVarP(&accountName, "account", "a", "", "use specific stored account")
	runCmd.Flags().BoolVar(&useTUI, "tui", false, "use interactive terminal UI with real-time progress")
}

func runRun(cmd *cobra.Command, args []string) {
	// Build flags map from the command line. Only flags the user
	// actually set are merged, so config file values survive.
	flags := make(map[string]interface{})
	if cmd.Flags().Changed("dry-run") {
		flags["dry-run"] = dryRun
	}
	if cmd.Flags().Changed("batch-size") {
		flags["batch-size"] = batchSize
	}
	if cmd.Flags().Changed("action-delay") {
		flags["action-delay"] = actionDelay
	}
	if cmd.Flags().Changed("run-delay") {
		flags["run-delay"] = runDelay
	}
	if cmd.Flags().Changed("profile-check-delay") {
		flags["profile-check-delay"] = profileCheckDelay
	}
	if cmd.Flags().Changed("max-to-review") {
		flags["max-to-review"] = maxToReview
	}
	if cmd.Flags().Changed("headless") {
		flags["headless"] = headless
	}
	if cmd.Flags().Changed("state-file") {
		flags["state-file"] = stateFile
	}
	if cmd.Flags().Changed("export-file") {
		flags["export-file"] = exportFile
	}
	if cmd.Flags().Changed("log-level") {
		flags["log-level"] = logLevel
	}
	if cmd.Flags().Changed("log-format") {
		flags["log-format"] = logFormat
	}

	// Load configuration
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Keep the alt screen clean: without a log file everything below
	// error would be drawn over the TUI.
	if useTUI && cfg.Logging.File == "" {
		cfg.Logging.Level = "error"
	}

	// Re-initialize the logger with the merged config, which may add a
	// file or a different level than the early flag-based one
	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}
	for _, warning := range cfg.Warnings {
		logger.Warn(warning)
	}
	logger.WithField("version", version).Info("tokclean starting")

	// Handle credentials
	credManager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	var account *auth.Account
	if accountName != "" {
		// Use specific account
		account, err = credManager.Retrieve(accountName)
		if err != nil {
			ui.PrintError("Account not found", accountName)
			ui.PrintInfo("Available accounts", "Use 'tokclean auth list' to see stored accounts")
			os.Exit(1)
		}
	} else if cfg.TikTok.Username != "" {
		// Config names an account; use its stored credentials
		account, err = credManager.Retrieve(cfg.TikTok.Username)
		if err != nil {
			ui.PrintError("No stored credentials for account", cfg.TikTok.Username)
			fmt.Println("\nStore them with:")
			fmt.Printf("  tokclean auth login %s\n", cfg.TikTok.Username)
			os.Exit(1)
		}
	} else {
		// Try to get the default account from the credential manager
		account, err = credManager.RetrieveDefault()
		if err != nil {
			logger.Error("No credentials found")
			ui.PrintError("No TikTok credentials found")
			fmt.Println("\nTo store credentials securely, run:")
			fmt.Println("  tokclean auth login")
			fmt.Println("\nOr set environment variables:")
			fmt.Println("  export TIKTOK_USERNAME=your_username")
			fmt.Println("  export TIKTOK_PASSWORD=your_password")
			os.Exit(1)
		}
	}

	// The stored account decides who we log in as
	cfg.TikTok.Username = account.Username
	if account.LoginMethod != "" {
		cfg.TikTok.LoginMethod = account.LoginMethod
	}
	logger.WithField("account", account.Username).Info("Using stored credentials")
	if !useTUI {
		ui.PrintInfo("Using account", account.Username)
		if cfg.Run.DryRun {
			ui.PrintInfo("Mode", "dry run (nothing will be unfollowed)")
		} else {
			ui.PrintInfo("Mode", fmt.Sprintf("live, up to %d unfollows", cfg.RateLimit.BatchSize))
		}
	}

	os.Exit(executeRun(cfg, account))
}

// executeRun owns every resource with a teardown and reports the exit
// code instead of exiting, so the deferred cleanups actually run.
func executeRun(cfg *config.Config, account *auth.Account) int {
	statePath := cfg.Run.StateFile
	if statePath == "" {
		var err error
		statePath, err = state.DefaultStatePath()
		if err != nil {
			ui.PrintError("Failed to resolve state path", err.Error())
			return 1
		}
	}
	store, err := state.NewStore(statePath)
	if err != nil {
		ui.PrintError("Failed to open state file", err.Error())
		return 1
	}

	// The journal lives next to the state file and is best effort
	journal, err := history.NewJournal(filepath.Join(filepath.Dir(store.Path()), "history.json"))
	if err != nil {
		logger.WithError(err).Warn("Run history disabled")
		journal = nil
	}

	sink, err := export.NewCSVSink(cfg.Run.ExportFile)
	if err != nil {
		ui.PrintError("Failed to open export file", err.Error())
		return 1
	}
	defer sink.Close()

	watcher, ctx := interrupt.Watch(context.Background())
	defer watcher.Stop()

	driver := browser.New(cfg, account)

	cl, err := cleaner.New(cfg, cleaner.Deps{
		Store:      store,
		Session:    driver,
		Source:     driver,
		Inspector:  driver,
		Executor:   driver,
		Interrupts: watcher,
		Sink:       sink,
		Journal:    journal,
	})
	if err != nil {
		ui.PrintError("Failed to assemble the run", err.Error())
		return 1
	}
	cl.RunID = uuid.NewString()[:8]

	var report *cleaner.Report
	if useTUI {
		report, err = runUnderTUI(ctx, cl, watcher, cfg)
	} else {
		report, err = runInTerminal(ctx, cl)
	}

	notifier := ui.NewNotifier()
	if err != nil {
		logger.WithError(err).Error("Run failed")
		ui.PrintError("RUN FAILED", err.Error())
		if notifications {
			notifier.SendError("tokclean", "Cleanup run failed: "+err.Error())
		}
		return 1
	}

	ui.PrintRunRecap(recapFromReport(report, cfg.Run.DryRun))

	if notifications && !report.RateLimited {
		notifier.SendNotification("tokclean", finishMessage(report, cfg.Run.DryRun))
	}

	if report.Summary != nil && report.Summary.Status == engine.StatusAborted {
		return 130
	}
	return 0
}

// runInTerminal executes the run with line-based progress output
func runInTerminal(ctx context.Context, cl *cleaner.Cleaner) (*cleaner.Report, error) {
	progress := ui.NewRunProgress()
	cl.OnPhase = func(phase engine.Phase) { progress.Phase(string(phase)) }
	cl.OnScan = func(scanned, discovered int, record classifier.AccountRecord) {
		progress.Scanned(scanned, discovered, record.Handle, string(record.Verdict))
	}
	cl.OnAction = progress.Acted

	report, err := cl.Run(ctx)
	if err == nil && !report.RateLimited {
		progress.Finish()
	}
	return report, err
}

// runUnderTUI executes the run behind the full-screen UI. The q key
// requests a graceful stop through the interrupt watcher; closing the
// UI outright does the same and waits for the wind-down.
func runUnderTUI(ctx context.Context, cl *cleaner.Cleaner, watcher *interrupt.Watcher, cfg *config.Config) (*cleaner.Report, error) {
	terminal := tui.NewTUI(cl.RunID, cfg.Run.DryRun, cfg.RateLimit.BatchSize, watcher.RequestStop)

	cl.OnPhase = func(phase engine.Phase) { terminal.Phase(string(phase)) }
	cl.OnScan = func(scanned, discovered int, record classifier.AccountRecord) {
		terminal.Scanned(scanned, discovered, record.Handle, string(record.Verdict))
	}
	cl.OnAction = terminal.Acted

	type runResult struct {
		report *cleaner.Report
		err    error
	}

	// Run the cleanup in a goroutine
	runDone := make(chan runResult, 1)
	go func() {
		report, err := cl.Run(ctx)
		runDone <- runResult{report, err}
	}()

	tuiDone := make(chan error, 1)
	go func() {
		tuiDone <- terminal.Start()
	}()

	// Wait for either to finish
	select {
	case res := <-runDone:
		if res.err != nil || res.report.RateLimited {
			terminal.Stop()
			<-tuiDone
		} else {
			// Show the summary screen and wait for the user to quit
			terminal.ShowRecap(recapFromReport(res.report, cfg.Run.DryRun))
			<-tuiDone
		}
		return res.report, res.err
	case <-tuiDone:
		// UI closed while the run was still going: stop gracefully and
		// wait so state and the browser are wound down properly
		watcher.RequestStop()
		res := <-runDone
		return res.report, res.err
	}
}

// recapFromReport flattens a run report for the summary views
func recapFromReport(report *cleaner.Report, dryRun bool) ui.RunRecap {
	recap := ui.RunRecap{
		RunID:          report.RunID,
		Status:         report.Status(),
		DryRun:         dryRun,
		StartedAt:      report.StartedAt,
		FinishedAt:     report.FinishedAt,
		RateLimited:    report.RateLimited,
		NextEligibleAt: report.NextEligibleAt,
		Remaining:      report.Remaining,
	}
	if s := report.Summary; s != nil {
		recap.Discovered = s.Discovered
		recap.Scanned = s.Scanned
		recap.Skipped = s.Skipped
		recap.Found = s.Found
		recap.Attempted = s.Attempted
		recap.Succeeded = s.Succeeded
		recap.Failed = s.Failed
		recap.Planned = s.Planned
		recap.Pending = s.Pending
	}
	return recap
}

// finishMessage is the one-liner for the desktop notification
func finishMessage(report *cleaner.Report, dryRun bool) string {
	s := report.Summary
	if s == nil {
		return "Cleanup run finished"
	}
	switch {
	case s.Status == engine.StatusAborted:
		return fmt.Sprintf("Run interrupted: %d of %d flagged accounts handled", s.Succeeded, s.Found)
	case dryRun:
		return fmt.Sprintf("Dry run finished: %d accounts would be unfollowed", s.Planned)
	case s.Failed > 0:
		return fmt.Sprintf("Unfollowed %d accounts, %d failed", s.Succeeded, s.Failed)
	default:
		return fmt.Sprintf("Unfollowed %d of %d flagged accounts", s.Succeeded, s.Found)
	}
}
