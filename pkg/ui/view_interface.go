package ui

// RunView is a live progress surface for one cleanup run. Both the
// plain-terminal RunProgress and the full-screen TUI implement it.
type RunView interface {
	Phase(name string)
	Scanned(scanned, discovered int, handle, verdict string)
	Acted(handle string, dryRun bool, err error)
}
