package integration

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"tokclean/pkg/config"
	"tokclean/pkg/export"
	"tokclean/pkg/history"
	"tokclean/pkg/logger"
	"tokclean/pkg/state"
)

// TestHelper provides common test utilities
type TestHelper struct {
	t            *testing.T
	tempDir      string
	cleanupFuncs []func()
}

// NewTestHelper creates a new test helper with an isolated data directory
func NewTestHelper(t *testing.T) *TestHelper {
	tempDir, err := os.MkdirTemp("", "tokclean_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	return &TestHelper{
		t:            t,
		tempDir:      tempDir,
		cleanupFuncs: []func(){},
	}
}

// GetTempDir returns the temporary directory for test files
func (h *TestHelper) GetTempDir() string {
	return h.tempDir
}

// AddCleanup adds a cleanup function to be called when the test ends
func (h *TestHelper) AddCleanup(fn func()) {
	h.cleanupFuncs = append(h.cleanupFuncs, fn)
}

// Cleanup runs all cleanup functions and removes the temp directory
func (h *TestHelper) Cleanup() {
	for i := len(h.cleanupFuncs) - 1; i >= 0; i-- {
		h.cleanupFuncs[i]()
	}
	os.RemoveAll(h.tempDir)
}

// CreateTestLogger creates a capturing test logger
func (h *TestHelper) CreateTestLogger() logger.Logger {
	return logger.NewTestLogger()
}

// CreateTestConfig creates a configuration with pacing disabled so
// runs finish instantly
func (h *TestHelper) CreateTestConfig() *config.Config {
	cfg := config.DefaultConfig()

	cfg.RateLimit.BatchSize = 5
	cfg.RateLimit.ActionDelaySeconds = 0
	cfg.RateLimit.RunDelaySeconds = 0
	cfg.RateLimit.ProfileCheckDelaySeconds = 0
	cfg.RateLimit.MaxToReview = 0

	cfg.Run.DryRun = false
	cfg.Run.StateFile = h.StatePath()
	cfg.Run.ExportFile = h.ExportPath()

	return cfg
}

// StatePath returns the state file location inside the temp directory
func (h *TestHelper) StatePath() string {
	return filepath.Join(h.tempDir, "state.json")
}

// ExportPath returns the CSV export location inside the temp directory
func (h *TestHelper) ExportPath() string {
	return filepath.Join(h.tempDir, "invalid_accounts.csv")
}

// HistoryPath returns the journal location inside the temp directory
func (h *TestHelper) HistoryPath() string {
	return filepath.Join(h.tempDir, "history.json")
}

// NewStore opens the run state store on the helper's state path
func (h *TestHelper) NewStore() *state.Store {
	store, err := state.NewStore(h.StatePath())
	if err != nil {
		h.t.Fatalf("Failed to create state store: %v", err)
	}
	return store
}

// NewJournal opens the run history journal
func (h *TestHelper) NewJournal() *history.Journal {
	journal, err := history.NewJournal(h.HistoryPath())
	if err != nil {
		h.t.Fatalf("Failed to create journal: %v", err)
	}
	return journal
}

// NewSink opens the CSV export sink and registers it for cleanup
func (h *TestHelper) NewSink() *export.CSVSink {
	sink, err := export.NewCSVSink(h.ExportPath())
	if err != nil {
		h.t.Fatalf("Failed to create export sink: %v", err)
	}
	h.AddCleanup(func() { sink.Close() })
	return sink
}

// ReadStateFile parses the persisted state file from disk
func (h *TestHelper) ReadStateFile() *state.RunState {
	data, err := os.ReadFile(h.StatePath())
	if err != nil {
		h.t.Fatalf("Failed to read state file: %v", err)
	}

	var st state.RunState
	if err := json.Unmarshal(data, &st); err != nil {
		h.t.Fatalf("State file is not valid JSON: %v", err)
	}
	return &st
}

// ReadExportRows parses the CSV export, header included
func (h *TestHelper) ReadExportRows() [][]string {
	file, err := os.Open(h.ExportPath())
	if err != nil {
		h.t.Fatalf("Failed to open export file: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		h.t.Fatalf("Failed to parse export file: %v", err)
	}
	return rows
}

// AssertFileExists checks if a file exists
func (h *TestHelper) AssertFileExists(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		h.t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func (h *TestHelper) AssertFileNotExists(path string) {
	if _, err := os.Stat(path); err == nil {
		h.t.Errorf("Expected file to not exist: %s", path)
	}
}

// AssertNoError fails the test if err is not nil
func (h *TestHelper) AssertNoError(err error) {
	if err != nil {
		h.t.Fatalf("Unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil
func (h *TestHelper) AssertError(err error) {
	if err == nil {
		h.t.Fatal("Expected error but got nil")
	}
}
