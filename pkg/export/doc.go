// Package export writes the invalid-account report.
//
// Every account the classifier marks invalid is appended to a CSV file
// at detection time, so dry runs produce the same report as real runs.
// The file is append-only across runs with a single header row, and
// each row is flushed as it is written.
package export
