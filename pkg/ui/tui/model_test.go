package tui

import (
	"errors"
	"testing"
	"time"

	"tokclean/pkg/ui"
)

func TestModel(t *testing.T) {
	model := NewModel("3f2a91bc", false, 5, nil)

	// Test initial phase
	if model.phase != "login" {
		t.Errorf("Expected initial phase login, got %s", model.phase)
	}

	// Test phase transitions
	model.SetPhase("scanning")
	if !model.phaseReached("login") {
		t.Error("Expected login phase to be reached")
	}
	if !model.phaseReached("scanning") {
		t.Error("Expected scanning phase to be reached")
	}
	if model.phaseReached("processing") {
		t.Error("Did not expect processing phase to be reached")
	}

	// Test scan recording
	model.RecordScan(1, 40, "alive_user", "valid")
	model.RecordScan(2, 40, "gone_user", "invalid")
	if model.scanned != 2 {
		t.Errorf("Expected 2 scanned, got %d", model.scanned)
	}
	if model.found != 1 {
		t.Errorf("Expected 1 found, got %d", model.found)
	}
	if model.lastHandle != "gone_user" {
		t.Errorf("Expected last handle gone_user, got %s", model.lastHandle)
	}

	// Test action recording
	model.RecordAction("gone_user", false, nil)
	model.RecordAction("gone_user_2", false, errors.New("button never flipped"))
	if model.ActionsUsed() != 2 {
		t.Errorf("Expected 2 actions used, got %d", model.ActionsUsed())
	}

	recent := model.RecentActions(10)
	if len(recent) != 2 {
		t.Fatalf("Expected 2 recent actions, got %d", len(recent))
	}
	if recent[0].Handle != "gone_user" || recent[0].Err != nil {
		t.Errorf("Unexpected first action: %+v", recent[0])
	}
	if recent[1].Err == nil {
		t.Error("Expected second action to carry an error")
	}

	// Test recap
	if model.Finished() {
		t.Error("Did not expect model to be finished yet")
	}
	model.SetRecap(ui.RunRecap{RunID: "3f2a91bc", Status: "completed", Succeeded: 1, Failed: 1})
	if !model.Finished() {
		t.Error("Expected model to be finished after recap")
	}

	// Test log messages
	model.AddLogMessage("INFO", "Test message")
	if len(model.logMessages) != 1 {
		t.Errorf("Expected 1 log message, got %d", len(model.logMessages))
	}
}

func TestModelLogCap(t *testing.T) {
	model := NewModel("run", true, 5, nil)
	model.maxLogMessages = 3

	for i := 0; i < 10; i++ {
		model.AddLogMessage("INFO", "message")
	}

	if len(model.logMessages) != 3 {
		t.Errorf("Expected log to be capped at 3, got %d", len(model.logMessages))
	}
}

func TestRecentActionsWindow(t *testing.T) {
	model := NewModel("run", true, 5, nil)

	for i := 0; i < 12; i++ {
		model.RecordAction("user", true, nil)
	}

	recent := model.RecentActions(8)
	if len(recent) != 8 {
		t.Errorf("Expected window of 8, got %d", len(recent))
	}
}

func TestScanProgress(t *testing.T) {
	model := NewModel("run", true, 5, nil)

	if model.scanProgress() != 0 {
		t.Errorf("Expected zero progress before discovery, got %f", model.scanProgress())
	}

	model.RecordScan(20, 40, "user", "valid")
	if model.scanProgress() != 0.5 {
		t.Errorf("Expected progress 0.5, got %f", model.scanProgress())
	}

	// Scanned can exceed discovered when the list grew mid-run
	model.RecordScan(50, 40, "user", "valid")
	if model.scanProgress() != 1.0 {
		t.Errorf("Expected progress clamped to 1.0, got %f", model.scanProgress())
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{30 * time.Second, "00:30"},
		{90 * time.Second, "01:30"},
		{time.Hour + 5*time.Minute + 3*time.Second, "01:05:03"},
		{-time.Second, "00:00:00"},
	}

	for _, test := range tests {
		result := formatDuration(test.d)
		if result != test.expected {
			t.Errorf("formatDuration(%v) = %s, expected %s", test.d, result, test.expected)
		}
	}
}
