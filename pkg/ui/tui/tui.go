package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tokclean/pkg/ui"
)

// TUI represents the terminal user interface for one cleanup run
type TUI struct {
	program *tea.Program
	model   *Model
}

// NewTUI creates a new TUI instance. onStop is invoked on the first
// quit keypress so the run can stop at its next checkpoint.
func NewTUI(runID string, dryRun bool, batchSize int, onStop func()) *TUI {
	model := NewModel(runID, dryRun, batchSize, onStop)
	program := tea.NewProgram(&model, tea.WithAltScreen())

	return &TUI{
		program: program,
		model:   &model,
	}
}

// Start starts the TUI and blocks until the user exits
func (t *TUI) Start() error {
	go func() {
		// Send initial tick to start the spinner
		time.Sleep(100 * time.Millisecond)
		t.program.Send(TickMsg(time.Now()))
	}()

	_, err := t.program.Run()
	return err
}

// Stop stops the TUI gracefully
func (t *TUI) Stop() {
	t.program.Quit()
}

// Send sends a message to the TUI
func (t *TUI) Send(msg tea.Msg) {
	if t.program != nil {
		t.program.Send(msg)
	}
}

// Phase notifies the TUI of a phase change
func (t *TUI) Phase(name string) {
	t.Send(SendPhase(name))
}

// Scanned notifies the TUI of one probed account
func (t *TUI) Scanned(scanned, discovered int, handle, verdict string) {
	t.Send(SendScan(scanned, discovered, handle, verdict))
}

// Acted notifies the TUI of one unfollow attempt
func (t *TUI) Acted(handle string, dryRun bool, err error) {
	t.Send(SendAction(handle, dryRun, err))
}

// ShowRecap switches the TUI to the final summary screen
func (t *TUI) ShowRecap(recap ui.RunRecap) {
	t.Send(SendRecap(recap))
}

// Log sends a log message to the TUI
func (t *TUI) Log(level, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	t.Send(SendLog(level, message))
}

// LogInfo logs an info message
func (t *TUI) LogInfo(format string, args ...interface{}) {
	t.Log("INFO", format, args...)
}

// LogSuccess logs a success message
func (t *TUI) LogSuccess(format string, args ...interface{}) {
	t.Log("SUCCESS", format, args...)
}

// LogWarning logs a warning message
func (t *TUI) LogWarning(format string, args ...interface{}) {
	t.Log("WARN", format, args...)
}

// LogError logs an error message
func (t *TUI) LogError(format string, args ...interface{}) {
	t.Log("ERROR", format, args...)
}

// StopRequested reports whether the user asked for a clean stop
func (t *TUI) StopRequested() bool {
	t.model.mu.RLock()
	defer t.model.mu.RUnlock()
	return t.model.stopRequested
}
