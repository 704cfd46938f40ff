package ingest

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFile is returned for file types no reader handles.
	ErrUnsupportedFile = errors.New("ingest: unsupported file type")
	// ErrEmptyFrame marks files that produced no rows.
	ErrEmptyFrame = errors.New("ingest: no rows")
	// ErrFilesDirMissing is returned when the input directory does not exist.
	ErrFilesDirMissing = errors.New("ingest: files directory not found")
)

// Reader turns a file into a frame.
type Reader interface {
	Read(path string) (*Frame, error)
}

// ReaderFunc adapts a function to Reader.
type ReaderFunc func(path string) (*Frame, error)

func (fn ReaderFunc) Read(path string) (*Frame, error) { return fn(path) }

// Registry maps lower-case extensions (".csv") to readers.
type Registry map[string]Reader

// DefaultRegistry returns readers for .csv, .json, .txt and .xlsx. The text
// reader splits on textDelimiter.
func DefaultRegistry(textDelimiter rune) Registry {
	if textDelimiter == 0 {
		textDelimiter = ','
	}
	return Registry{
		".csv":  CSVReader{},
		".json": JSONReader{},
		".txt":  TextReader{Delimiter: textDelimiter},
		".xlsx": XLSXReader{},
	}
}

// Lookup finds the reader for ext, case-insensitively.
func (r Registry) Lookup(ext string) (Reader, bool) {
	rd, ok := r[strings.ToLower(ext)]
	return rd, ok
}

// Read dispatches path to the reader for its extension.
func (r Registry) Read(path string) (*Frame, error) {
	rd, ok := r.Lookup(filepath.Ext(path))
	if !ok {
		return nil, ErrUnsupportedFile
	}
	return rd.Read(path)
}

// FileType returns the lower-case extension of name, including the dot.
func FileType(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// TableName derives a table name from a file name: the base name without
// its extension, lower-cased.
func TableName(name string) string {
	base := filepath.Base(name)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}
