// Package state persists what previous cleanup runs already did.
//
// The store remembers three things across runs:
//   - When the last run completed (drives the between-runs cooldown)
//   - Which handles were already classified (never re-examined)
//   - Which handles were unfollowed, with timestamps
//
// State files live in platform-specific data directories:
//   - Linux: ~/.local/share/tokclean/state.json
//   - macOS: ~/Library/Application Support/tokclean/state.json
//   - Windows: %APPDATA%/tokclean/state.json
//
// Loading never fails the caller: a missing file yields defaults and a
// malformed file is preserved byte for byte as state.json.backup before
// defaults take over. Saves are atomic so a crash mid-write cannot
// corrupt the file.
package state
