package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Cyberpunk color palette
	neonCyan    = lipgloss.Color("#00FFFF")
	neonMagenta = lipgloss.Color("#FF00FF")
	neonGreen   = lipgloss.Color("#39FF14")
	neonYellow  = lipgloss.Color("#FFFF00")
	neonOrange  = lipgloss.Color("#FF6700")
	darkBg      = lipgloss.Color("#0A0E27")
	darkBg2     = lipgloss.Color("#1A1E37")
	dimWhite    = lipgloss.Color("#B0B0B0")

	// Base styles
	baseStyle = lipgloss.NewStyle().
			Background(darkBg).
			Foreground(dimWhite)

	// Logo style
	logoStyle = lipgloss.NewStyle().
			Foreground(neonCyan).
			Bold(true).
			Padding(1, 0).
			Align(lipgloss.Center)

	// Panel styles
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(neonMagenta).
			Background(darkBg2).
			Padding(1, 2)

	// Phase strip styles
	phaseDoneStyle = lipgloss.NewStyle().
			Foreground(neonGreen)

	phaseActiveStyle = lipgloss.NewStyle().
				Foreground(neonMagenta).
				Bold(true)

	phaseTodoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	// Stats styles
	statsLabelStyle = lipgloss.NewStyle().
			Foreground(neonCyan).
			Bold(true)

	statsValueStyle = lipgloss.NewStyle().
			Foreground(neonYellow)

	// Status styles
	successStyle = lipgloss.NewStyle().
			Foreground(neonGreen).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(neonOrange).
			Bold(true)

	// Event pane styles
	eventOkStyle = lipgloss.NewStyle().
			Foreground(neonGreen).
			PaddingLeft(2)

	eventFailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			PaddingLeft(2)

	eventPlanStyle = lipgloss.NewStyle().
			Foreground(neonYellow).
			PaddingLeft(2)

	// Progress bar styles
	progressEmptyStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#333333"))

	// Log styles
	logTimestampStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666"))

	logMessageStyle = lipgloss.NewStyle().
			Foreground(dimWhite)

	// Help style
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Padding(1, 0, 0, 2)

	// Title styles for panels
	titleStyle = lipgloss.NewStyle().
			Background(neonMagenta).
			Foreground(darkBg).
			Bold(true).
			Padding(0, 1)

	// Batch budget styles
	budgetNormalStyle = lipgloss.NewStyle().
				Foreground(neonGreen)

	budgetWarningStyle = lipgloss.NewStyle().
				Foreground(neonOrange)

	budgetCriticalStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FF0000"))
)

// GetBudgetStyle returns the appropriate style based on how much of
// the action batch is already spent
func GetBudgetStyle(usage float64) lipgloss.Style {
	switch {
	case usage >= 90:
		return budgetCriticalStyle
	case usage >= 70:
		return budgetWarningStyle
	default:
		return budgetNormalStyle
	}
}
