package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"tokclean/pkg/ui"
)

// Message types for the TUI

// PhaseMsg is sent when the run enters a new phase
type PhaseMsg struct {
	Name string
}

// ScanMsg is sent after each probed account
type ScanMsg struct {
	Scanned    int
	Discovered int
	Handle     string
	Verdict    string
}

// ActionMsg is sent after each unfollow attempt
type ActionMsg struct {
	Handle string
	DryRun bool
	Err    error
}

// RecapMsg carries the final summary once the run is over
type RecapMsg struct {
	Recap ui.RunRecap
}

// LogMsg is sent to add a log message
type LogMsg struct {
	Level   string
	Message string
}

// TickMsg is sent periodically to update the UI
type TickMsg time.Time

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		// Regular UI update tick
		return m, tea.Batch(
			tickCmd(),
			m.spinner.Tick,
		)

	case PhaseMsg:
		m.SetPhase(msg.Name)
		if label, ok := phaseLabels[msg.Name]; ok {
			m.AddLogMessage("INFO", "Entering phase: "+label)
		}
		return m, nil

	case ScanMsg:
		m.RecordScan(msg.Scanned, msg.Discovered, msg.Handle, msg.Verdict)
		if msg.Verdict == ui.VerdictInvalid {
			m.AddLogMessage("WARN", "Flagged @"+msg.Handle)
		}
		return m, nil

	case ActionMsg:
		m.RecordAction(msg.Handle, msg.DryRun, msg.Err)
		switch {
		case msg.DryRun:
			m.AddLogMessage("INFO", "Would unfollow @"+msg.Handle)
		case msg.Err != nil:
			m.AddLogMessage("ERROR", "Failed to unfollow @"+msg.Handle+": "+msg.Err.Error())
		default:
			m.AddLogMessage("SUCCESS", "Unfollowed @"+msg.Handle)
		}
		return m, nil

	case RecapMsg:
		m.SetRecap(msg.Recap)
		m.AddLogMessage("INFO", "Run finished, press q to exit")
		return m, nil

	case LogMsg:
		m.AddLogMessage(msg.Level, msg.Message)
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q":
		if m.Finished() {
			return m, tea.Quit
		}
		m.mu.Lock()
		already := m.stopRequested
		m.stopRequested = true
		m.mu.Unlock()
		if already {
			return m, tea.Quit
		}
		if m.onStop != nil {
			m.onStop()
		}
		m.AddLogMessage("WARN", "Stop requested, finishing the current account")
		return m, nil

	case "ctrl+c":
		return m, tea.Quit

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "ctrl+l":
		// Clear logs
		m.mu.Lock()
		m.logMessages = []LogMessage{}
		m.mu.Unlock()
		return m, nil
	}

	return m, nil
}

// Commands

// tickCmd returns a command that sends a tick message
func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Helper functions for external use

// SendPhase creates a phase change message
func SendPhase(name string) tea.Msg {
	return PhaseMsg{Name: name}
}

// SendScan creates a message for one probed account
func SendScan(scanned, discovered int, handle, verdict string) tea.Msg {
	return ScanMsg{
		Scanned:    scanned,
		Discovered: discovered,
		Handle:     handle,
		Verdict:    verdict,
	}
}

// SendAction creates a message for one unfollow attempt
func SendAction(handle string, dryRun bool, err error) tea.Msg {
	return ActionMsg{Handle: handle, DryRun: dryRun, Err: err}
}

// SendRecap creates the final summary message
func SendRecap(recap ui.RunRecap) tea.Msg {
	return RecapMsg{Recap: recap}
}

// SendLog creates a log message
func SendLog(level, message string) tea.Msg {
	return LogMsg{Level: level, Message: message}
}

// SendLogf creates a formatted log message
func SendLogf(level, format string, args ...interface{}) tea.Msg {
	return LogMsg{Level: level, Message: fmt.Sprintf(format, args...)}
}
