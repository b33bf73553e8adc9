package state

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func TestStore(t *testing.T) {
	t.Run("LoadMissingFileReturnsDefaults", func(t *testing.T) {
		store := newTestStore(t)

		st := store.Load()
		if st.LastRun != nil {
			t.Error("Expected nil LastRun for fresh state")
		}
		if len(st.ProcessedAccounts) != 0 {
			t.Errorf("Expected no processed accounts, got %d", len(st.ProcessedAccounts))
		}
		if len(st.UnfollowedAccounts) != 0 {
			t.Errorf("Expected no unfollow records, got %d", len(st.UnfollowedAccounts))
		}
		if store.Exists() {
			t.Error("Load should not create the state file")
		}
	})

	t.Run("SaveAndReload", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state.json")
		store, err := NewStore(path)
		if err != nil {
			t.Fatalf("Failed to create store: %v", err)
		}

		if err := store.MarkProcessed("user1"); err != nil {
			t.Fatalf("Failed to mark processed: %v", err)
		}
		if err := store.RecordUnfollow("user2", time.Now()); err != nil {
			t.Fatalf("Failed to record unfollow: %v", err)
		}

		reloaded, err := NewStore(path)
		if err != nil {
			t.Fatalf("Failed to reopen store: %v", err)
		}
		st := reloaded.Load()

		if len(st.ProcessedAccounts) != 2 {
			t.Errorf("Expected 2 processed accounts, got %d", len(st.ProcessedAccounts))
		}
		if len(st.UnfollowedAccounts) != 1 {
			t.Errorf("Expected 1 unfollow record, got %d", len(st.UnfollowedAccounts))
		}
		if st.UnfollowedAccounts[0].Username != "user2" {
			t.Errorf("Expected unfollow record for user2, got %s", st.UnfollowedAccounts[0].Username)
		}
		if !reloaded.IsProcessed("user1") || !reloaded.IsProcessed("user2") {
			t.Error("Expected both handles processed after reload")
		}
		if !reloaded.HasUnfollowed("user2") {
			t.Error("Expected user2 unfollowed after reload")
		}
	})

	t.Run("MarkProcessedIsIdempotent", func(t *testing.T) {
		store := newTestStore(t)

		for i := 0; i < 3; i++ {
			if err := store.MarkProcessed("repeat_user"); err != nil {
				t.Fatalf("Failed to mark processed: %v", err)
			}
		}

		if store.ProcessedCount() != 1 {
			t.Errorf("Expected 1 processed account, got %d", store.ProcessedCount())
		}
	})

	t.Run("RecordUnfollowImpliesProcessed", func(t *testing.T) {
		store := newTestStore(t)

		if err := store.RecordUnfollow("ghost", time.Now()); err != nil {
			t.Fatalf("Failed to record unfollow: %v", err)
		}

		if !store.IsProcessed("ghost") {
			t.Error("Unfollowed handle must also be processed")
		}
		if store.ProcessedCount() != 1 || store.UnfollowedCount() != 1 {
			t.Errorf("Expected counts 1/1, got %d/%d", store.ProcessedCount(), store.UnfollowedCount())
		}
	})

	t.Run("RecordUnfollowRefusesDuplicates", func(t *testing.T) {
		store := newTestStore(t)

		first := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		if err := store.RecordUnfollow("dup", first); err != nil {
			t.Fatalf("Failed to record unfollow: %v", err)
		}
		if err := store.RecordUnfollow("dup", first.Add(time.Hour)); err != nil {
			t.Fatalf("Duplicate record should be a silent no-op: %v", err)
		}

		st := store.State()
		if len(st.UnfollowedAccounts) != 1 {
			t.Fatalf("Expected 1 unfollow record, got %d", len(st.UnfollowedAccounts))
		}
		if !st.UnfollowedAccounts[0].Timestamp.Equal(first) {
			t.Error("Duplicate record must not overwrite the original timestamp")
		}
	})

	t.Run("SetLastRun", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state.json")
		store, err := NewStore(path)
		if err != nil {
			t.Fatalf("Failed to create store: %v", err)
		}

		ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		if err := store.SetLastRun(ts); err != nil {
			t.Fatalf("Failed to set last run: %v", err)
		}

		reloaded, err := NewStore(path)
		if err != nil {
			t.Fatalf("Failed to reopen store: %v", err)
		}
		last := reloaded.LastRun()
		if last == nil {
			t.Fatal("Expected last run to survive reload")
		}
		if !last.Equal(ts) {
			t.Errorf("Expected last run %v, got %v", ts, *last)
		}
	})

	t.Run("AtomicWrite", func(t *testing.T) {
		store := newTestStore(t)

		if err := store.MarkProcessed("atomic_user"); err != nil {
			t.Fatalf("Failed to save: %v", err)
		}

		// No temp file should linger after a successful save
		if _, err := os.Stat(store.Path() + ".tmp"); !os.IsNotExist(err) {
			t.Error("Temporary file was not cleaned up")
		}

		data, err := os.ReadFile(store.Path())
		if err != nil {
			t.Fatalf("Failed to read state file: %v", err)
		}
		var st RunState
		if err := json.Unmarshal(data, &st); err != nil {
			t.Fatalf("State file is not valid JSON: %v", err)
		}
	})

	t.Run("EmptyStateMarshalsAsArrays", func(t *testing.T) {
		store := newTestStore(t)
		store.Load()

		if err := store.Save(); err != nil {
			t.Fatalf("Failed to save: %v", err)
		}

		data, err := os.ReadFile(store.Path())
		if err != nil {
			t.Fatalf("Failed to read state file: %v", err)
		}
		if strings.Contains(string(data), "null") {
			t.Errorf("Fresh state should serialize empty arrays, got:\n%s", data)
		}
	})
}

func TestStoreCorruptionRecovery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	garbage := []byte(`{"last_run": "not even close`)
	if err := os.WriteFile(path, garbage, 0644); err != nil {
		t.Fatalf("Failed to plant corrupt file: %v", err)
	}

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	st := store.Load()
	if st.LastRun != nil || len(st.ProcessedAccounts) != 0 || len(st.UnfollowedAccounts) != 0 {
		t.Error("Corrupt file should yield fresh defaults")
	}

	backup, err := os.ReadFile(path + ".backup")
	if err != nil {
		t.Fatalf("Expected backup file: %v", err)
	}
	if !bytes.Equal(backup, garbage) {
		t.Errorf("Backup must preserve the corrupt bytes exactly\ngot:  %q\nwant: %q", backup, garbage)
	}

	// A save after recovery writes a clean file
	if err := store.MarkProcessed("survivor"); err != nil {
		t.Fatalf("Failed to save after recovery: %v", err)
	}
	reloaded, err := NewStore(path)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	if !reloaded.IsProcessed("survivor") {
		t.Error("Expected post-recovery state to persist")
	}
}

func TestStoreLoadUnknownFieldsTolerated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	content := []byte(`{
  "last_run": "2025-03-01T10:00:00Z",
  "processed_accounts": ["a", "b"],
  "unfollowed_accounts": [{"username": "a", "timestamp": "2025-03-01T09:59:00Z"}],
  "schema_hint": "from a newer build"
}`)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to write state file: %v", err)
	}

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	st := store.Load()

	if st.LastRun == nil {
		t.Fatal("Expected last run to parse")
	}
	if len(st.ProcessedAccounts) != 2 || len(st.UnfollowedAccounts) != 1 {
		t.Errorf("Expected 2 processed and 1 unfollowed, got %d/%d",
			len(st.ProcessedAccounts), len(st.UnfollowedAccounts))
	}
	if _, err := os.Stat(path + ".backup"); !os.IsNotExist(err) {
		t.Error("Unknown fields are not corruption, no backup expected")
	}
}

func TestDefaultStatePath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmpDir)

	path, err := DefaultStatePath()
	if err != nil {
		t.Fatalf("Failed to resolve default path: %v", err)
	}
	if filepath.Base(path) != "state.json" {
		t.Errorf("Expected state.json file name, got %s", path)
	}
	if !strings.Contains(path, "tokclean") {
		t.Errorf("Expected app directory in path, got %s", path)
	}
}
