package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"tokclean/pkg/ui"
)

// View renders the entire TUI
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var sections []string

	// Banner and phase strip
	sections = append(sections, m.renderLogo())
	sections = append(sections, m.renderPhaseStrip())

	if m.recap != nil {
		sections = append(sections, m.renderSummary())
	} else {
		leftColumn := m.renderLeftColumn()
		rightColumn := m.renderRightColumn()

		mainContent := lipgloss.JoinHorizontal(
			lipgloss.Top,
			leftColumn,
			"  ", // spacing
			rightColumn,
		)
		sections = append(sections, mainContent)
	}

	// Help
	if m.showHelp {
		sections = append(sections, m.renderHelp())
	} else {
		sections = append(sections, helpStyle.Render("Press ? for help"))
	}

	return baseStyle.Width(m.width).Height(m.height).Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...),
	)
}

// renderLogo renders the banner
func (m Model) renderLogo() string {
	return logoStyle.Width(m.width).Render(ui.ASCIILogo)
}

// renderPhaseStrip renders the run phases left to right
func (m Model) renderPhaseStrip() string {
	var parts []string
	for _, phase := range phaseOrder {
		label := phaseLabels[phase]
		switch {
		case phase == m.phase:
			parts = append(parts, phaseActiveStyle.Render(m.spinner.View()+label))
		case m.phaseReached(phase):
			parts = append(parts, phaseDoneStyle.Render("✓ "+label))
		default:
			parts = append(parts, phaseTodoStyle.Render("  "+label))
		}
	}

	return lipgloss.NewStyle().Padding(0, 2).Render(
		strings.Join(parts, phaseTodoStyle.Render("  →  ")),
	)
}

// renderLeftColumn renders the scan and events panels
func (m Model) renderLeftColumn() string {
	width := (m.width - 4) / 2

	var sections []string
	sections = append(sections, m.renderScanPanel(width))
	sections = append(sections, m.renderEventsPanel(width))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderRightColumn renders the run info and logs panels
func (m Model) renderRightColumn() string {
	width := (m.width - 4) / 2

	var sections []string
	sections = append(sections, m.renderRunInfoPanel(width))
	sections = append(sections, m.renderLogsPanel(width))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderScanPanel renders the profile scan progress
func (m Model) renderScanPanel(width int) string {
	title := titleStyle.Render(" PROFILE SCAN ")

	bar := m.scanBar
	bar.Width = width - 8

	lines := []string{
		bar.ViewAs(m.scanProgress()),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Checked:"),
			statsValueStyle.Render(fmt.Sprintf("%d/%d", m.scanned, m.discovered))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Flagged:"),
			warningStyle.Render(fmt.Sprintf("%d", m.found))),
	}
	if m.lastHandle != "" {
		lines = append(lines, fmt.Sprintf("%s %s", statsLabelStyle.Render("Current:"),
			statsValueStyle.Render("@"+m.lastHandle)))
	}
	if m.stopRequested {
		lines = append(lines, warningStyle.Render("⏹  STOPPING"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

// renderEventsPanel renders recent unfollow attempts
func (m Model) renderEventsPanel(width int) string {
	title := titleStyle.Render(" UNFOLLOWS ")

	actions := m.RecentActions(8)
	if len(actions) == 0 {
		content := lipgloss.NewStyle().Foreground(dimWhite).Render("No unfollows yet")
		return panelStyle.Width(width).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, content),
		)
	}

	var items []string
	for _, action := range actions {
		switch {
		case action.DryRun:
			items = append(items, eventPlanStyle.Render("• would unfollow @"+action.Handle))
		case action.Err != nil:
			items = append(items, eventFailStyle.Render("✗ @"+action.Handle))
		default:
			items = append(items, eventOkStyle.Render("✓ @"+action.Handle))
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left, items...)

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

// renderRunInfoPanel renders run identity and the batch budget
func (m Model) renderRunInfoPanel(width int) string {
	title := titleStyle.Render(" RUN STATUS ")

	mode := successStyle.Render("LIVE")
	if m.dryRun {
		mode = warningStyle.Render("DRY RUN")
	}

	used := m.ActionsUsed()
	usage := 0.0
	if m.batchSize > 0 {
		usage = float64(used) / float64(m.batchSize) * 100
	}

	barWidth := width - 8
	if barWidth < 4 {
		barWidth = 4
	}
	filled := int(usage * float64(barWidth) / 100)
	if filled > barWidth {
		filled = barWidth
	}
	budgetStyle := GetBudgetStyle(usage)
	bar := budgetStyle.Render(strings.Repeat("█", filled)) +
		progressEmptyStyle.Render(strings.Repeat("░", barWidth-filled))

	elapsed := time.Since(m.sessionStartTime)

	content := []string{
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Run ID:"), statsValueStyle.Render(m.runID)),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Mode:"), mode),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Batch:"),
			budgetStyle.Render(fmt.Sprintf("%d/%d", used, m.batchSize))),
		bar,
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Elapsed:"), statsValueStyle.Render(formatDuration(elapsed))),
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(content, "\n")),
	)
}

// renderLogsPanel renders the logs panel
func (m Model) renderLogsPanel(width int) string {
	title := titleStyle.Render(" RUN LOG ")

	// Get recent logs
	start := len(m.logMessages) - 10
	if start < 0 {
		start = 0
	}

	var logs []string
	for i := start; i < len(m.logMessages); i++ {
		log := m.logMessages[i]
		timestamp := logTimestampStyle.Render(log.Time.Format("15:04:05"))
		level := lipgloss.NewStyle().Foreground(log.Color).Bold(true).Render(fmt.Sprintf("[%-7s]", log.Level))
		message := logMessageStyle.Render(log.Message)

		// Truncate message if too long
		maxMsgLen := width - 25
		if maxMsgLen > 3 && len(message) > maxMsgLen {
			message = message[:maxMsgLen-3] + "..."
		}

		logs = append(logs, fmt.Sprintf("%s %s %s", timestamp, level, message))
	}

	content := strings.Join(logs, "\n")
	if content == "" {
		content = lipgloss.NewStyle().Foreground(dimWhite).Render("No logs yet...")
	}

	// Fill the remaining vertical space
	logsHeight := m.height - 30
	if logsHeight < 5 {
		logsHeight = 5
	}

	return panelStyle.Width(width).Height(logsHeight).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

// renderSummary renders the closing screen once the recap arrived
func (m Model) renderSummary() string {
	r := m.recap

	status := successStyle.Render("✓ " + r.Status)
	switch r.Status {
	case "aborted":
		status = warningStyle.Render("⏹ " + r.Status)
	case "failed":
		status = errorStyle.Render("✗ " + r.Status)
	}

	rows := []string{
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Status:"), status),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Discovered:"), statsValueStyle.Render(fmt.Sprintf("%d", r.Discovered))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Checked:"), statsValueStyle.Render(fmt.Sprintf("%d", r.Scanned))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Flagged:"), statsValueStyle.Render(fmt.Sprintf("%d", r.Found))),
	}
	if r.DryRun {
		rows = append(rows, fmt.Sprintf("%s %s", statsLabelStyle.Render("Would unfollow:"),
			statsValueStyle.Render(fmt.Sprintf("%d", r.Planned))))
	} else {
		rows = append(rows,
			fmt.Sprintf("%s %s", statsLabelStyle.Render("Unfollowed:"), successStyle.Render(fmt.Sprintf("%d", r.Succeeded))),
			fmt.Sprintf("%s %s", statsLabelStyle.Render("Failed:"), errorStyle.Render(fmt.Sprintf("%d", r.Failed))),
		)
	}
	if r.Pending > 0 {
		rows = append(rows, fmt.Sprintf("%s %s", statsLabelStyle.Render("Left for next run:"),
			statsValueStyle.Render(fmt.Sprintf("%d", r.Pending))))
	}
	rows = append(rows, "", helpStyle.Render("Press q to exit"))

	title := titleStyle.Render(" RUN COMPLETE ")
	content := lipgloss.JoinVertical(lipgloss.Left, rows...)

	return panelStyle.Width(m.width - 4).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

// renderHelp renders the help panel
func (m Model) renderHelp() string {
	help := `
  Navigation:
    q/Q      - Request a clean stop, press again to exit
    ctrl+c   - Exit immediately
    ?        - Toggle this help
    ctrl+l   - Clear the run log

  Status Indicators:
    ` + successStyle.Render("Green") + `    - Unfollowed/Healthy
    ` + warningStyle.Render("Orange") + `   - Dry run/Stopping
    ` + errorStyle.Render("Red") + `      - Failed attempt

  Icons:
    ✓        - Confirmed unfollow
    ✗        - Failed unfollow
    •        - Dry-run plan
    █        - Batch budget used
`

	return panelStyle.Width(m.width).Render(help)
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < 0 {
		return "00:00:00"
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
