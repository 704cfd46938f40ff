package ingest

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// JSONReader reads either an array of records or an object of columns.
// Columns keyed by index ({"name": {"0": "a", "1": "b"}}) and plain column
// arrays ({"name": ["a", "b"]}) are both accepted.
type JSONReader struct{}

func (JSONReader) Read(path string) (*Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return &Frame{}, nil
	}
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON document")
	}
	root := gjson.ParseBytes(data)
	switch {
	case root.IsArray():
		return jsonRecords(root), nil
	case root.IsObject():
		return jsonColumns(root)
	default:
		return nil, fmt.Errorf("unexpected JSON %s at top level", root.Type)
	}
}

// table accumulates cells by column name in first-seen order.
type table struct {
	names []string
	index map[string]int
	rows  []map[int]any
}

func newTable() *table { return &table{index: map[string]int{}} }

func (t *table) column(name string) int {
	j, ok := t.index[name]
	if !ok {
		j = len(t.names)
		t.index[name] = j
		t.names = append(t.names, name)
	}
	return j
}

func (t *table) frame() *Frame {
	f := &Frame{Columns: make([]Column, len(t.names)), Rows: make([][]any, len(t.rows))}
	for i, cells := range t.rows {
		row := make([]any, len(t.names))
		for j, v := range cells {
			row[j] = v
		}
		f.Rows[i] = row
	}
	for j, name := range t.names {
		f.Columns[j] = Column{Name: name, Kind: inferValues(f.Rows, j)}
	}
	return f
}

func jsonRecords(root gjson.Result) *Frame {
	t := newTable()
	root.ForEach(func(_, rec gjson.Result) bool {
		cells := map[int]any{}
		if rec.IsObject() {
			rec.ForEach(func(k, v gjson.Result) bool {
				cells[t.column(k.String())] = jsonValue(v)
				return true
			})
		} else {
			cells[t.column("0")] = jsonValue(rec)
		}
		t.rows = append(t.rows, cells)
		return true
	})
	return t.frame()
}

func jsonColumns(root gjson.Result) (*Frame, error) {
	t := newTable()
	rowOf := map[string]int{}
	row := func(key string) map[int]any {
		i, ok := rowOf[key]
		if !ok {
			i = len(t.rows)
			rowOf[key] = i
			t.rows = append(t.rows, map[int]any{})
		}
		return t.rows[i]
	}
	var err error
	root.ForEach(func(name, col gjson.Result) bool {
		j := t.column(name.String())
		switch {
		case col.IsArray():
			for i, v := range col.Array() {
				row(fmt.Sprint(i))[j] = jsonValue(v)
			}
		case col.IsObject():
			col.ForEach(func(k, v gjson.Result) bool {
				row(k.String())[j] = jsonValue(v)
				return true
			})
		default:
			err = fmt.Errorf("column %q is a scalar; expected an array or object", name.String())
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return t.frame(), nil
}

func jsonValue(v gjson.Result) any {
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.True, gjson.False:
		return v.Bool()
	case gjson.Number:
		if !strings.ContainsAny(v.Raw, ".eE") {
			if n, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
				return n
			}
			// outside int64: keep the digits rather than a rounded float
			return v.Raw
		}
		return v.Float()
	case gjson.String:
		return v.String()
	default:
		return v.Raw
	}
}
