package ui

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// RunRecap is everything the post-run summary needs, with plain
// fields so callers stay decoupled from the engine's types.
type RunRecap struct {
	RunID      string
	Status     string
	DryRun     bool
	StartedAt  time.Time
	FinishedAt time.Time

	Discovered int
	Scanned    int
	Skipped    int
	Found      int
	Attempted  int
	Succeeded  int
	Failed     int
	Planned    int
	Pending    int

	RateLimited    bool
	NextEligibleAt time.Time
	Remaining      time.Duration
}

// newTable builds a borderless left-aligned table
func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)
}

// PrintRunRecap prints the post-run summary to stdout
func PrintRunRecap(recap RunRecap) {
	FprintRunRecap(os.Stdout, recap)
}

// FprintRunRecap prints the post-run summary table, or the wait
// notice when the run was refused by the rate limiter
func FprintRunRecap(w io.Writer, recap RunRecap) {
	if recap.RateLimited {
		fmt.Fprintf(w, "\n%s\n", Yellow("Run skipped: the previous run is still cooling down."))
		fmt.Fprintf(w, "%s: %s (%s from now)\n",
			Cyan("Next eligible"),
			recap.NextEligibleAt.Local().Format("2006-01-02 15:04:05"),
			formatDuration(recap.Remaining),
		)
		return
	}

	fmt.Fprintf(w, "\n%s %s", Bold("Run "+recap.RunID), StatusBadge(recap.Status))
	if recap.DryRun {
		fmt.Fprintf(w, " %s", Yellow("[dry run]"))
	}
	fmt.Fprintln(w)

	table := newTable(w)
	rows := [][]string{
		{"Following discovered", strconv.Itoa(recap.Discovered)},
		{"Profiles checked", strconv.Itoa(recap.Scanned)},
		{"Skipped (already checked)", strconv.Itoa(recap.Skipped)},
		{"Flagged invalid", strconv.Itoa(recap.Found)},
	}
	if recap.DryRun {
		rows = append(rows, []string{"Would unfollow", strconv.Itoa(recap.Planned)})
	} else {
		rows = append(rows,
			[]string{"Unfollow attempts", strconv.Itoa(recap.Attempted)},
			[]string{"Unfollowed", strconv.Itoa(recap.Succeeded)},
			[]string{"Failed", strconv.Itoa(recap.Failed)},
		)
	}
	if recap.Pending > 0 {
		rows = append(rows, []string{"Left for next run", strconv.Itoa(recap.Pending)})
	}
	table.Bulk(rows)
	table.Render()
}

// PrintRunHistory prints recent runs to stdout, oldest first
func PrintRunHistory(recaps []RunRecap) {
	FprintRunHistory(os.Stdout, recaps)
}

// FprintRunHistory prints recent runs as a table
func FprintRunHistory(w io.Writer, recaps []RunRecap) {
	if len(recaps) == 0 {
		fmt.Fprintln(w, Dim("No runs recorded yet."))
		return
	}

	table := newTable(w)
	table.Header([]string{"run", "when", "status", "mode", "checked", "flagged", "unfollowed"})

	rows := make([][]string, 0, len(recaps))
	for _, r := range recaps {
		mode := "live"
		if r.DryRun {
			mode = "dry-run"
		}
		rows = append(rows, []string{
			r.RunID,
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Status,
			mode,
			strconv.Itoa(r.Scanned),
			strconv.Itoa(r.Found),
			strconv.Itoa(r.Succeeded),
		})
	}
	table.Bulk(rows)
	table.Render()
}

// StatusBadge returns a colored dot plus the status word
func StatusBadge(status string) string {
	switch status {
	case "completed":
		return Green("● " + status)
	case "aborted", "skipped":
		return Yellow("● " + status)
	default:
		return Red("● " + status)
	}
}
