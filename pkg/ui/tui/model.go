package tui

import (
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tokclean/pkg/ui"
)

// phaseOrder is the display order of run phases
var phaseOrder = []string{"login", "discover", "scanning", "processing", "done"}

// phaseLabels maps phase names to strip labels
var phaseLabels = map[string]string{
	"login":      "LOGIN",
	"discover":   "DISCOVER",
	"scanning":   "SCAN",
	"processing": "UNFOLLOW",
	"done":       "DONE",
}

// ActionItem is one unfollow attempt shown in the events pane
type ActionItem struct {
	Handle string
	DryRun bool
	Err    error
	Time   time.Time
}

// LogMessage represents a log entry
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
	Color   lipgloss.Color
}

// Model represents the TUI model for one cleanup run
type Model struct {
	// UI components
	spinner spinner.Model
	scanBar progress.Model

	// Run identity
	runID     string
	dryRun    bool
	batchSize int

	// Progress state
	phase      string
	scanned    int
	discovered int
	found      int
	lastHandle string
	actions    []ActionItem

	// Final summary, nil while the run is still going
	recap *ui.RunRecap

	// Stats
	sessionStartTime time.Time

	// UI state
	width          int
	height         int
	showHelp       bool
	stopRequested  bool
	logMessages    []LogMessage
	maxLogMessages int

	// Called on the first quit keypress so the run stops at its next
	// checkpoint instead of mid-unfollow
	onStop func()

	// Mutex for thread safety
	mu sync.RWMutex
}

// NewModel creates a new TUI model
func NewModel(runID string, dryRun bool, batchSize int, onStop func()) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(neonCyan)

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	return Model{
		spinner:          s,
		scanBar:          bar,
		runID:            runID,
		dryRun:           dryRun,
		batchSize:        batchSize,
		phase:            "login",
		sessionStartTime: time.Now(),
		logMessages:      []LogMessage{},
		maxLogMessages:   50,
		onStop:           onStop,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// SetPhase records a phase change
func (m *Model) SetPhase(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.phase = name
}

// RecordScan records one probed account
func (m *Model) RecordScan(scanned, discovered int, handle, verdict string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.scanned = scanned
	m.discovered = discovered
	m.lastHandle = handle
	if verdict == ui.VerdictInvalid {
		m.found++
	}
}

// RecordAction records one unfollow attempt
func (m *Model) RecordAction(handle string, dryRun bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.actions = append(m.actions, ActionItem{
		Handle: handle,
		DryRun: dryRun,
		Err:    err,
		Time:   time.Now(),
	})
}

// SetRecap stores the final summary for the closing screen
func (m *Model) SetRecap(recap ui.RunRecap) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.recap = &recap
}

// Finished reports whether the final summary has arrived
func (m *Model) Finished() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.recap != nil
}

// AddLogMessage adds a log message
func (m *Model) AddLogMessage(level, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	color := dimWhite
	switch level {
	case "ERROR":
		color = lipgloss.Color("#FF0000")
	case "WARN":
		color = neonOrange
	case "SUCCESS":
		color = neonGreen
	case "INFO":
		color = neonCyan
	}

	m.logMessages = append(m.logMessages, LogMessage{
		Time:    time.Now(),
		Level:   level,
		Message: message,
		Color:   color,
	})

	// Keep only the last N messages
	if len(m.logMessages) > m.maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-m.maxLogMessages:]
	}
}

// ActionsUsed counts attempts against the batch budget
func (m *Model) ActionsUsed() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.actions)
}

// RecentActions returns up to n most recent attempts, oldest first
func (m *Model) RecentActions(n int) []ActionItem {
	m.mu.RLock()
	defer m.mu.RUnlock()

	start := len(m.actions) - n
	if start < 0 {
		start = 0
	}
	out := make([]ActionItem, len(m.actions)-start)
	copy(out, m.actions[start:])
	return out
}

// scanProgress returns scan completion in [0, 1]
func (m *Model) scanProgress() float64 {
	if m.discovered == 0 {
		return 0
	}
	p := float64(m.scanned) / float64(m.discovered)
	if p > 1.0 {
		p = 1.0
	}
	return p
}

// phaseReached reports whether the named phase is current or past
func (m *Model) phaseReached(name string) bool {
	current := -1
	target := -1
	for i, p := range phaseOrder {
		if p == m.phase {
			current = i
		}
		if p == name {
			target = i
		}
	}
	return current >= 0 && target >= 0 && current >= target
}
