package output

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/wonny/prebloom/internal/contracts"
)

// WriteCSV writes the header and every ranked row
func WriteCSV(w io.Writer, ranking *contracts.Ranking) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range ranking.Rows {
		if err := cw.Write(Record(row)); err != nil {
			return fmt.Errorf("write csv row %s: %w", row.Ticker, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVSink writes each scan's ranking to a file (overwritten per run)
type CSVSink struct {
	path string
}

// NewCSVSink creates a CSV sink
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

// Name implements scan.Sink
func (s *CSVSink) Name() string {
	return "csv"
}

// Path returns the output file path
func (s *CSVSink) Path() string {
	return s.path
}

// Write implements scan.Sink
// The file is written to a temp name and renamed so readers never see a partial table.
func (s *CSVSink) Write(_ context.Context, result *contracts.ScanResult) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".prebloom-*.csv")
	if err != nil {
		return fmt.Errorf("create temp csv: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteCSV(tmp, result.Ranking); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp csv: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("rename csv: %w", err)
	}
	return nil
}
