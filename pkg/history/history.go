package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tokclean/pkg/logger"
	"tokclean/pkg/state"
)

// maxEntries bounds the journal; older runs fall off the front
const maxEntries = 50

// Entry is one run's journal record
type Entry struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Status     string    `json:"status"`
	DryRun     bool      `json:"dry_run"`

	Discovered int `json:"discovered"`
	Scanned    int `json:"scanned"`
	Skipped    int `json:"skipped"`
	Found      int `json:"found"`
	Succeeded  int `json:"succeeded"`
	Failed     int `json:"failed"`
	Planned    int `json:"planned"`
}

// Duration returns how long the run took
func (e Entry) Duration() time.Duration {
	if e.FinishedAt.IsZero() || e.StartedAt.IsZero() {
		return 0
	}
	return e.FinishedAt.Sub(e.StartedAt)
}

// Outcome returns a short human summary of the run
func (e Entry) Outcome() string {
	if e.DryRun {
		return fmt.Sprintf("found %d, would unfollow %d", e.Found, e.Planned)
	}
	if e.Failed > 0 {
		return fmt.Sprintf("unfollowed %d, failed %d", e.Succeeded, e.Failed)
	}
	return fmt.Sprintf("unfollowed %d", e.Succeeded)
}

// Journal persists the most recent run entries as a JSON file
type Journal struct {
	path   string
	logger logger.Logger
}

// NewJournal opens the journal at path. An empty path selects the
// default platform data location.
func NewJournal(path string) (*Journal, error) {
	if path == "" {
		defaultPath, err := DefaultHistoryPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve history path: %w", err)
		}
		path = defaultPath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	return &Journal{
		path:   path,
		logger: logger.GetLogger(),
	}, nil
}

// Entries returns the journal in chronological order, oldest first.
// A missing or unreadable journal yields an empty list; the journal is
// derived data, so unlike the state file it is simply reset.
func (j *Journal) Entries() []Entry {
	data, err := os.ReadFile(j.path)
	if err != nil {
		if !os.IsNotExist(err) {
			j.logger.WithError(err).Warn("Could not read history file, starting fresh")
		}
		return []Entry{}
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		j.logger.WithError(err).Warn("History file unreadable, starting fresh")
		return []Entry{}
	}
	return entries
}

// Append adds one run entry, trimming the journal to the newest
// maxEntries, and writes the file atomically.
func (j *Journal) Append(entry Entry) error {
	entries := append(j.Entries(), entry)
	if len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	tempPath := j.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := os.Rename(tempPath, j.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}

// Last returns the most recent entry, if any
func (j *Journal) Last() (Entry, bool) {
	entries := j.Entries()
	if len(entries) == 0 {
		return Entry{}, false
	}
	return entries[len(entries)-1], true
}

// DefaultHistoryPath returns the platform-specific journal location
func DefaultHistoryPath() (string, error) {
	dataDir, err := state.DataDirectory()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "history.json"), nil
}
