package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	VerdictInvalid = "invalid"

	scanBarWidth = 20
)

// RunProgress is the plain-terminal progress surface for a cleanup
// run: a phase line per stage, a single rewriting line during the
// scan, one line per unfollow attempt.
type RunProgress struct {
	mu         sync.Mutex
	out        io.Writer
	startTime  time.Time
	phase      string
	scanned    int
	discovered int
	found      int
	succeeded  int
	failed     int
	planned    int
}

// NewRunProgress creates a progress display writing to stdout
func NewRunProgress() *RunProgress {
	return NewRunProgressWithWriter(os.Stdout)
}

// NewRunProgressWithWriter creates a progress display with a custom writer
func NewRunProgressWithWriter(w io.Writer) *RunProgress {
	return &RunProgress{
		out:       w,
		startTime: time.Now(),
	}
}

// Phase announces a phase change
func (p *RunProgress) Phase(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.phase == name {
		return
	}
	endedScan := p.phase == "scanning"
	p.phase = name

	switch name {
	case "login":
		fmt.Fprintf(p.out, "%s Logging in...\n", Magenta("→"))
	case "discover":
		fmt.Fprintf(p.out, "%s Loading following list...\n", Magenta("→"))
	case "scanning":
		fmt.Fprintf(p.out, "%s Checking accounts...\n", Magenta("→"))
	case "processing":
		if endedScan {
			fmt.Fprintln(p.out)
		}
		fmt.Fprintf(p.out, "%s Processing flagged accounts...\n", Magenta("→"))
	case "done":
		if endedScan {
			fmt.Fprintln(p.out)
		}
	}
}

// Scanned updates the rewriting scan progress line
func (p *RunProgress) Scanned(scanned, discovered int, handle, verdict string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.scanned = scanned
	p.discovered = discovered
	if verdict == VerdictInvalid {
		p.found++
	}

	progress := 0.0
	if discovered > 0 {
		progress = float64(scanned) / float64(discovered)
	}
	filled := int(progress * float64(scanBarWidth))
	bar := strings.Repeat("━", filled) + strings.Repeat("─", scanBarWidth-filled)

	line := fmt.Sprintf("[%s] %d/%d • @%s", bar, scanned, discovered, handle)
	if p.found > 0 {
		line += " • " + Yellow(fmt.Sprintf("%d flagged", p.found))
	}

	// Clear line and rewrite
	fmt.Fprintf(p.out, "\r%s\r%s", strings.Repeat(" ", 110), line)
}

// Acted prints one line per unfollow attempt
func (p *RunProgress) Acted(handle string, dryRun bool, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case dryRun:
		p.planned++
		fmt.Fprintf(p.out, "%s Would unfollow @%s\n", Yellow("•"), handle)
	case err != nil:
		p.failed++
		fmt.Fprintf(p.out, "%s @%s: %v\n", Red("✗"), handle, err)
	default:
		p.succeeded++
		fmt.Fprintf(p.out, "%s Unfollowed @%s\n", Green("✓"), handle)
	}
}

// Finish ends the live display. The recap table follows separately.
func (p *RunProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.startTime)
	fmt.Fprintf(p.out, "\n%s Run finished in %s\n", Green("✓"), formatDuration(elapsed))
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
