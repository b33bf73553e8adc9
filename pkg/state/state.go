package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"tokclean/pkg/errors"
	"tokclean/pkg/logger"
)

// UnfollowRecord is one unfollowed account with the time it was acted on
type UnfollowRecord struct {
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

// RunState is the durable record of prior cleanup activity. LastRun is
// nil until a run reaches completion; ProcessedAccounts only grows;
// UnfollowedAccounts is append-only with at most one entry per handle.
type RunState struct {
	LastRun            *time.Time       `json:"last_run"`
	ProcessedAccounts  []string         `json:"processed_accounts"`
	UnfollowedAccounts []UnfollowRecord `json:"unfollowed_accounts"`
}

// NewRunState returns a fresh default state
func NewRunState() *RunState {
	return &RunState{
		ProcessedAccounts:  []string{},
		UnfollowedAccounts: []UnfollowRecord{},
	}
}

// Store owns the persisted run state for one account. The file is
// treated as exclusively owned by a single running process; nothing
// here locks it. Not safe for concurrent use.
type Store struct {
	path       string
	logger     logger.Logger
	state      *RunState
	processed  map[string]struct{}
	unfollowed map[string]struct{}
}

// NewStore creates a store at path. An empty path selects the default
// platform data location.
func NewStore(path string) (*Store, error) {
	if path == "" {
		defaultPath, err := DefaultStatePath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve state path: %w", err)
		}
		path = defaultPath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	return &Store{
		path:   path,
		logger: logger.GetLogger(),
	}, nil
}

// Path returns the state file location
func (s *Store) Path() string {
	return s.path
}

// Load reads the state file. It never fails the caller: a missing file
// yields defaults, and a malformed file is backed up byte for byte to
// <path>.backup before defaults are adopted.
func (s *Store) Load() *RunState {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WithError(err).WithField("path", s.path).
				Warn("Could not read state file, starting fresh")
		}
		s.adopt(NewRunState())
		return s.state
	}

	var loaded RunState
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.backupCorrupt(data, err)
		s.adopt(NewRunState())
		return s.state
	}

	s.adopt(&loaded)
	s.logger.DebugWithFields("State loaded", map[string]interface{}{
		"path":       s.path,
		"processed":  len(s.state.ProcessedAccounts),
		"unfollowed": len(s.state.UnfollowedAccounts),
	})
	return s.state
}

// backupCorrupt preserves the unreadable bytes next to the state file
func (s *Store) backupCorrupt(data []byte, cause error) {
	backupPath := s.path + ".backup"
	if err := os.WriteFile(backupPath, data, 0644); err != nil {
		s.logger.WithError(err).Warn("Could not write state backup")
		return
	}
	s.logger.WithFields(map[string]interface{}{
		"backup": backupPath,
		"cause":  cause.Error(),
	}).Warn("State file corrupt, backed up and reset")
}

// adopt installs a state and rebuilds the lookup sets
func (s *Store) adopt(st *RunState) {
	if st.ProcessedAccounts == nil {
		st.ProcessedAccounts = []string{}
	}
	if st.UnfollowedAccounts == nil {
		st.UnfollowedAccounts = []UnfollowRecord{}
	}

	s.state = st
	s.processed = make(map[string]struct{}, len(st.ProcessedAccounts))
	for _, handle := range st.ProcessedAccounts {
		s.processed[handle] = struct{}{}
	}
	s.unfollowed = make(map[string]struct{}, len(st.UnfollowedAccounts))
	for _, rec := range st.UnfollowedAccounts {
		s.unfollowed[rec.Username] = struct{}{}
	}
}

func (s *Store) ensureLoaded() {
	if s.state == nil {
		s.Load()
	}
}

// State returns the in-memory state, loading it on first use
func (s *Store) State() *RunState {
	s.ensureLoaded()
	return s.state
}

// LastRun returns the completion time of the last finished run, or nil
func (s *Store) LastRun() *time.Time {
	s.ensureLoaded()
	return s.state.LastRun
}

// IsProcessed reports whether handle was classified in any prior run
func (s *Store) IsProcessed(handle string) bool {
	s.ensureLoaded()
	_, ok := s.processed[handle]
	return ok
}

// HasUnfollowed reports whether handle was already unfollowed
func (s *Store) HasUnfollowed(handle string) bool {
	s.ensureLoaded()
	_, ok := s.unfollowed[handle]
	return ok
}

// ProcessedCount returns the number of classified handles
func (s *Store) ProcessedCount() int {
	s.ensureLoaded()
	return len(s.state.ProcessedAccounts)
}

// UnfollowedCount returns the number of recorded unfollows
func (s *Store) UnfollowedCount() int {
	s.ensureLoaded()
	return len(s.state.UnfollowedAccounts)
}

// MarkProcessed records that handle was classified and saves
// immediately. Already-processed handles are a no-op.
func (s *Store) MarkProcessed(handle string) error {
	s.ensureLoaded()
	if _, ok := s.processed[handle]; ok {
		return nil
	}

	s.processed[handle] = struct{}{}
	s.state.ProcessedAccounts = append(s.state.ProcessedAccounts, handle)
	return s.Save()
}

// RecordUnfollow appends an unfollow record and saves immediately. The
// handle is also marked processed so the unfollowed set stays a subset
// of the processed set. A handle already recorded is a no-op.
func (s *Store) RecordUnfollow(handle string, ts time.Time) error {
	s.ensureLoaded()
	if _, ok := s.unfollowed[handle]; ok {
		s.logger.WithField("handle", handle).Debug("Unfollow already recorded, skipping")
		return nil
	}

	if _, ok := s.processed[handle]; !ok {
		s.processed[handle] = struct{}{}
		s.state.ProcessedAccounts = append(s.state.ProcessedAccounts, handle)
	}

	s.unfollowed[handle] = struct{}{}
	s.state.UnfollowedAccounts = append(s.state.UnfollowedAccounts, UnfollowRecord{
		Username:  handle,
		Timestamp: ts,
	})
	return s.Save()
}

// SetLastRun stamps the run completion time and saves
func (s *Store) SetLastRun(ts time.Time) error {
	s.ensureLoaded()
	s.state.LastRun = &ts
	return s.Save()
}

// Save writes the state to disk atomically: readers of the state file
// never observe a partial write.
func (s *Store) Save() error {
	s.ensureLoaded()

	tempPath := s.path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return errors.Wrap(errors.ErrorTypePersistence, "failed to create temporary state file", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s.state); err != nil {
		file.Close()
		os.Remove(tempPath)
		return errors.Wrap(errors.ErrorTypePersistence, "failed to encode state", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return errors.Wrap(errors.ErrorTypePersistence, "failed to sync state file", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return errors.Wrap(errors.ErrorTypePersistence, "failed to close state file", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return errors.Wrap(errors.ErrorTypePersistence, "failed to replace state file", err)
	}

	logger.LogStateSaved(s.path, len(s.state.ProcessedAccounts), len(s.state.UnfollowedAccounts))
	return nil
}

// Exists checks if a state file exists on disk
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Info returns a summary of the persisted state for display
func (s *Store) Info() map[string]interface{} {
	s.ensureLoaded()

	info := map[string]interface{}{
		"path":       s.path,
		"processed":  len(s.state.ProcessedAccounts),
		"unfollowed": len(s.state.UnfollowedAccounts),
	}
	if s.state.LastRun != nil {
		info["last_run"] = *s.state.LastRun
		info["age"] = time.Since(*s.state.LastRun)
	}
	return info
}

// DefaultStatePath returns the platform-specific state file location
func DefaultStatePath() (string, error) {
	dataDir, err := DataDirectory()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "state.json"), nil
}

// DataDirectory returns the application data directory for the current
// OS, creating it if needed. The export and history files live here too.
func DataDirectory() (string, error) {
	var dataDir string

	switch runtime.GOOS {
	case "linux":
		// Use XDG_DATA_HOME if set, otherwise ~/.local/share
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			dataDir = filepath.Join(xdgDataHome, "tokclean")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			dataDir = filepath.Join(home, ".local", "share", "tokclean")
		}
	case "darwin":
		// macOS: ~/Library/Application Support
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, "Library", "Application Support", "tokclean")
	case "windows":
		// Windows: %APPDATA%
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		dataDir = filepath.Join(appData, "tokclean")
	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return dataDir, nil
}
