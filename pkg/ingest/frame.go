package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/TechXTT/dbload/pkg/internal/typeconv"
)

// Kind is the logical type of a column.
type Kind = typeconv.Kind

const (
	KindString = typeconv.String
	KindInt    = typeconv.Int
	KindFloat  = typeconv.Float
	KindBool   = typeconv.Bool
	KindTime   = typeconv.Time
)

// Column is a named, typed frame column.
type Column struct {
	Name string
	Kind Kind
}

// Frame is an in-memory table. Cells hold nil (null), string, int64,
// float64, bool or time.Time; every row has len(Columns) cells.
type Frame struct {
	Columns []Column
	Rows    [][]any
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Rows)
}

// Empty reports whether the frame has no rows or no columns.
func (f *Frame) Empty() bool {
	return f == nil || len(f.Columns) == 0 || len(f.Rows) == 0
}

// Index returns the position of the named column, or -1.
func (f *Frame) Index(name string) int {
	for i, c := range f.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Names returns the column names in order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		names[i] = c.Name
	}
	return names
}

// Clone deep-copies the frame's column list and rows.
func (f *Frame) Clone() *Frame {
	out := &Frame{
		Columns: append([]Column(nil), f.Columns...),
		Rows:    make([][]any, len(f.Rows)),
	}
	for i, row := range f.Rows {
		out.Rows[i] = append([]any(nil), row...)
	}
	return out
}

// filter keeps the rows for which keep returns true and reports how many were dropped.
func (f *Frame) filter(keep func(row []any) bool) int {
	kept := f.Rows[:0]
	for _, row := range f.Rows {
		if keep(row) {
			kept = append(kept, row)
		}
	}
	removed := len(f.Rows) - len(kept)
	f.Rows = kept
	return removed
}

// frameFromRecords builds a frame from a header and text records. Empty
// cells are null; short rows are padded, long rows add "Unnamed: N" columns.
// Column kinds are inferred from the text.
func frameFromRecords(header []string, records [][]string) *Frame {
	width := len(header)
	for _, rec := range records {
		if len(rec) > width {
			width = len(rec)
		}
	}
	names := make([]string, width)
	copy(names, header)
	names = uniqueNames(names)

	rows := make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, width)
		for j := range row {
			if j < len(rec) && rec[j] != "" {
				row[j] = rec[j]
			}
		}
		rows[i] = row
	}
	f := &Frame{Columns: make([]Column, width), Rows: rows}
	for j, name := range names {
		f.Columns[j] = Column{Name: name, Kind: inferText(rows, j)}
	}
	return f
}

// uniqueNames fills blank names and suffixes repeats with ".N".
func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		candidate := name
		for n := 1; seen[candidate]; n++ {
			candidate = fmt.Sprintf("%s.%d", name, n)
		}
		seen[candidate] = true
		out[i] = candidate
	}
	return out
}

// inferText converts column j of text cells to int, float or bool when every
// non-null cell parses as one, and returns the resulting kind.
func inferText(rows [][]any, j int) Kind {
	ints, floats, bools, seen := true, true, true, false
	for _, row := range rows {
		s, ok := row[j].(string)
		if !ok {
			continue
		}
		seen = true
		t := strings.TrimSpace(s)
		if ints {
			if _, err := strconv.ParseInt(t, 10, 64); err != nil {
				ints = false
			}
		}
		if floats {
			if _, ok := typeconv.ParseFloat(t); !ok {
				floats = false
			}
		}
		if bools {
			switch strings.ToLower(t) {
			case "true", "false":
			default:
				bools = false
			}
		}
	}
	var kind Kind
	switch {
	case !seen:
		return KindString
	case ints:
		kind = KindInt
	case floats:
		kind = KindFloat
	case bools:
		kind = KindBool
	default:
		return KindString
	}
	for _, row := range rows {
		if row[j] != nil {
			row[j], _ = typeconv.Coerce(row[j], kind)
		}
	}
	return kind
}

// inferValues settles the kind of column j of already-typed cells, widening
// int to float and falling back to text for mixed columns.
func inferValues(rows [][]any, j int) Kind {
	var hasInt, hasFloat, hasBool, hasOther bool
	for _, row := range rows {
		switch row[j].(type) {
		case nil:
		case int64:
			hasInt = true
		case float64:
			hasFloat = true
		case bool:
			hasBool = true
		default:
			hasOther = true
		}
	}
	var kind Kind
	switch {
	case hasOther || hasBool && (hasInt || hasFloat):
		kind = KindString
	case hasFloat:
		kind = KindFloat
	case hasInt:
		kind = KindInt
	case hasBool:
		kind = KindBool
	default:
		return KindString
	}
	for _, row := range rows {
		if row[j] != nil {
			row[j], _ = typeconv.Coerce(row[j], kind)
		}
	}
	return kind
}
