package state

import (
	"fmt"
	"log"
	"time"
)

func ExampleStore() {
	// Open the store at the default platform location
	store, err := NewStore("")
	if err != nil {
		log.Fatal(err)
	}

	// Load is safe to call unconditionally: missing or corrupt files
	// yield fresh defaults instead of errors
	st := store.Load()
	fmt.Printf("Previously processed: %d accounts\n", len(st.ProcessedAccounts))

	if last := store.LastRun(); last != nil {
		fmt.Printf("Last run finished %s ago\n", time.Since(*last).Round(time.Minute))
	}

	// Record classification results as the run progresses
	if !store.IsProcessed("some_handle") {
		if err := store.MarkProcessed("some_handle"); err != nil {
			log.Printf("Could not persist progress: %v", err)
		}
	}

	// Record a completed unfollow (also marks the handle processed)
	if err := store.RecordUnfollow("dead_account", time.Now()); err != nil {
		log.Printf("Could not persist unfollow: %v", err)
	}

	// Stamp the completion time when the run finishes cleanly
	if err := store.SetLastRun(time.Now()); err != nil {
		log.Printf("Could not persist run time: %v", err)
	}
}
