package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tokclean/pkg/classifier"
	"tokclean/pkg/errors"
	"tokclean/pkg/logger"
	"tokclean/pkg/state"
)

var csvHeader = []string{"timestamp", "handle", "reason"}

// CSVSink appends newly detected invalid accounts to a CSV report.
// The file is append-only across runs; the header is written only when
// the file is new. Rows are flushed as they are written so a crash
// never loses already-detected accounts.
type CSVSink struct {
	path   string
	file   *os.File
	writer *csv.Writer
	logger logger.Logger
	now    func() time.Time
}

// NewCSVSink opens (or creates) the export file at path. An empty path
// selects the default platform data location.
func NewCSVSink(path string) (*CSVSink, error) {
	if path == "" {
		defaultPath, err := DefaultExportPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve export path: %w", err)
		}
		path = defaultPath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(errors.ErrorTypePersistence, "failed to create export directory", err)
	}

	needHeader := true
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		needHeader = false
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypePersistence, "failed to open export file", err)
	}

	sink := &CSVSink{
		path:   path,
		file:   file,
		writer: csv.NewWriter(file),
		logger: logger.GetLogger(),
		now:    time.Now,
	}

	if needHeader {
		if err := sink.writer.Write(csvHeader); err != nil {
			file.Close()
			return nil, errors.Wrap(errors.ErrorTypePersistence, "failed to write export header", err)
		}
		sink.writer.Flush()
		if err := sink.writer.Error(); err != nil {
			file.Close()
			return nil, errors.Wrap(errors.ErrorTypePersistence, "failed to flush export header", err)
		}
	}

	return sink, nil
}

// Path returns the export file location
func (s *CSVSink) Path() string {
	return s.path
}

// WriteRecord appends one invalid-account row and flushes it
func (s *CSVSink) WriteRecord(record classifier.AccountRecord) error {
	row := []string{
		s.now().Format(time.RFC3339),
		record.Handle,
		record.Reason,
	}
	if err := s.writer.Write(row); err != nil {
		return errors.Wrap(errors.ErrorTypePersistence, "failed to write export row", err)
	}

	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return errors.Wrap(errors.ErrorTypePersistence, "failed to flush export row", err)
	}

	s.logger.DebugWithFields("Export row written", map[string]interface{}{
		"handle": record.Handle,
		"reason": record.Reason,
	})
	return nil
}

// Close flushes and closes the export file
func (s *CSVSink) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return errors.Wrap(errors.ErrorTypePersistence, "failed to flush export file", err)
	}
	if err := s.file.Close(); err != nil {
		return errors.Wrap(errors.ErrorTypePersistence, "failed to close export file", err)
	}
	return nil
}

// DefaultExportPath returns the platform-specific export file location
func DefaultExportPath() (string, error) {
	dataDir, err := state.DataDirectory()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "invalid_accounts.csv"), nil
}
