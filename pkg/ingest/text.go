package ingest

import (
	"bufio"
	"bytes"
	"os"
	"strings"
)

// ContentColumn holds one line per row when a text file is not tabular.
const ContentColumn = "content"

// TextReader reads .txt files. A file is taken as delimited when parsing
// yields several columns, or a single non-blank column with a delimiter other
// than a comma; otherwise every line becomes a row of ContentColumn.
type TextReader struct {
	Delimiter rune
}

func (t TextReader) Read(path string) (*Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	delim := t.Delimiter
	if delim == 0 {
		delim = ','
	}
	if f, err := parseDelimited(bytes.NewReader(data), delim); err == nil && tabular(f, delim) {
		return f, nil
	}
	return readLines(data)
}

func tabular(f *Frame, delim rune) bool {
	switch len(f.Columns) {
	case 0:
		return false
	case 1:
		return delim != ',' && !strings.HasPrefix(f.Columns[0].Name, "Unnamed: ")
	default:
		return true
	}
}

func readLines(data []byte) (*Frame, error) {
	f := &Frame{Columns: []Column{{Name: ContentColumn, Kind: KindString}}}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		f.Rows = append(f.Rows, []any{strings.TrimSpace(sc.Text())})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return f, nil
}
