package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"tokclean/pkg/config"
	"tokclean/pkg/history"
	"tokclean/pkg/ratelimit"
	"tokclean/pkg/state"
	"tokclean/pkg/ui"
)

var historyCount int

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show run state, cooldown and recent history",
	Long: `Show what tokclean remembers between runs without touching anything:
how many accounts have been checked and unfollowed so far, when the
next run becomes eligible, and a table of recent runs.`,
	Example: `  # Current state and the last 10 runs
  tokclean status

  # More history
  tokclean status --history 25`,
	Args: cobra.NoArgs,
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().IntVar(&historyCount, "history", 10, "number of past runs to show")
	statusCmd.Flags().StringVar(&stateFile, "state-file", "", "path to the state file (default: platform data directory)")
}

func runStatus(cmd *cobra.Command, args []string) {
	flags := make(map[string]interface{})
	if cmd.Flags().Changed("state-file") {
		flags["state-file"] = stateFile
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	statePath := cfg.Run.StateFile
	if statePath == "" {
		statePath, err = state.DefaultStatePath()
		if err != nil {
			ui.PrintError("Failed to resolve state path", err.Error())
			os.Exit(1)
		}
	}
	store, err := state.NewStore(statePath)
	if err != nil {
		ui.PrintError("Failed to open state file", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Run State")
	fmt.Println()
	ui.PrintInfo("State file", store.Path())
	ui.PrintInfo("Accounts checked", fmt.Sprintf("%d", store.ProcessedCount()))
	ui.PrintInfo("Accounts unfollowed", fmt.Sprintf("%d", store.UnfollowedCount()))

	if lastRun := store.LastRun(); lastRun != nil {
		ui.PrintInfo("Last completed run", lastRun.Local().Format("2006-01-02 15:04:05"))
	} else {
		ui.PrintInfo("Last completed run", "never")
	}

	decision := ratelimit.ShouldRun(store.LastRun(), cfg.RateLimit.RunDelay(), time.Now())
	if decision.Allowed {
		ui.PrintSuccess("Next run: eligible now")
	} else {
		ui.PrintWarning("Cooling down", fmt.Sprintf("next run at %s (%s from now)",
			decision.NextEligibleAt.Local().Format("15:04:05"),
			decision.Remaining.Round(time.Second)))
	}

	// Recent history, newest first
	journal, err := history.NewJournal(filepath.Join(filepath.Dir(store.Path()), "history.json"))
	if err != nil {
		return
	}
	entries := journal.Entries()

	recaps := make([]ui.RunRecap, 0, historyCount)
	for i := len(entries) - 1; i >= 0 && len(recaps) < historyCount; i-- {
		e := entries[i]
		recaps = append(recaps, ui.RunRecap{
			RunID:      e.RunID,
			Status:     e.Status,
			DryRun:     e.DryRun,
			StartedAt:  e.StartedAt,
			FinishedAt: e.FinishedAt,
			Discovered: e.Discovered,
			Scanned:    e.Scanned,
			Skipped:    e.Skipped,
			Found:      e.Found,
			Succeeded:  e.Succeeded,
			Failed:     e.Failed,
			Planned:    e.Planned,
		})
	}

	fmt.Println()
	ui.PrintHighlight("Recent Runs")
	fmt.Println()
	ui.PrintRunHistory(recaps)
}
