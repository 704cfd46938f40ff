package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// CSVReader reads comma-separated files with a header row.
type CSVReader struct{}

func (CSVReader) Read(path string) (*Frame, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return parseDelimited(fh, ',')
}

// parseDelimited reads a header row and records. Blank lines are skipped and
// an empty input gives an empty frame.
func parseDelimited(r io.Reader, delim rune) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &Frame{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return frameFromRecords(header, records), nil
}
