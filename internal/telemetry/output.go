package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// Writer appends Records to a CSV stream, writing the header once.
type Writer struct {
	out           io.Writer
	closer        io.Closer
	headerWritten bool
	rows          int
}

// NewWriter writes records to out. Close does not close out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Create opens path for writing, creating parent directories as needed.
func Create(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return &Writer{out: f, closer: f}, nil
}

// Write appends one record.
func (w *Writer) Write(r Record) error {
	records := []Record{r}
	if !w.headerWritten {
		if err := gocsv.Marshal(records, w.out); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
		w.headerWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, w.out); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
	}
	w.rows++
	return nil
}

// Rows returns the number of records written.
func (w *Writer) Rows() int { return w.rows }

// Close closes the underlying file when the writer owns it.
func (w *Writer) Close() error {
	if w == nil || w.closer == nil {
		return nil
	}
	return w.closer.Close()
}

// ReadRecords decodes a CSV stream written by Writer.
func ReadRecords(in io.Reader) ([]Record, error) {
	var records []Record
	if err := gocsv.Unmarshal(in, &records); err != nil {
		return nil, fmt.Errorf("reading telemetry: %w", err)
	}
	return records, nil
}
