// Package ui provides terminal output for the cleanup tool
// This file demonstrates example usage of the UI components
package ui

/*
Example usage of the UI components:

// Terminal colors and output
ui.PrintLogo()                                   // Print ASCII logo
ui.PrintInfo("State file", "~/.tokclean/state.json")
ui.PrintSuccess("Unfollowed @gone_account")      // Green success message
ui.PrintError("Run failed", err)                 // Red error message
ui.PrintWarning("Browser window is not headless")
ui.PrintHighlight("[DRY RUN]")                   // Magenta highlight message

// Live progress during a run
progress := ui.NewRunProgress()
progress.Phase("scanning")
progress.Scanned(12, 340, "some_account", "valid")
progress.Acted("gone_account", false, nil)
progress.Finish()

// Post-run summary table
ui.PrintRunRecap(ui.RunRecap{
    RunID:      "3f2a91bc",
    Status:     "completed",
    Discovered: 340,
    Scanned:    120,
    Found:      4,
    Succeeded:  4,
})

// Recent run history (for the status command)
ui.PrintRunHistory(recaps)

// Notifications (cross-platform)
notifier := ui.NewNotifier()
notifier.SendSuccess("Cleanup finished", "Unfollowed 4 dead accounts")
notifier.SendError("Cleanup failed", "Browser session was lost")

// Direct color usage
fmt.Printf("%s: %s\n", ui.Cyan("Account"), ui.Yellow("my_handle"))
fmt.Println(ui.Green("✓ Completed"))
fmt.Println(ui.Red("✗ Failed"))
*/
