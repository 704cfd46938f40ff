package ingest

import (
	"log/slog"
	"strings"

	"github.com/TechXTT/dbload/pkg/internal/typeconv"
)

// FieldType pins a column to a kind.
type FieldType struct {
	Name string
	Kind Kind
}

// Rule is the validation configuration for one table.
type Rule struct {
	Required []string
	Types    []FieldType
}

// Stats summarises one ValidateAndClean run.
type Stats struct {
	Initial         int
	Duplicates      int
	MissingRequired int
	// InvalidTypes counts rows dropped because a typed column was null
	// after conversion.
	InvalidTypes int
	Remaining    int
	// MissingColumns lists required columns absent from the frame.
	MissingColumns []string
}

// Validator deduplicates, drops incomplete rows and coerces column kinds.
type Validator struct {
	rule   Rule
	logger *slog.Logger
}

func NewValidator(rule Rule, opts ...Option) *Validator {
	o := applyOptions(opts)
	return &Validator{rule: rule, logger: o.logger}
}

// RemoveDuplicates drops rows equal to an earlier row, in place.
func (v *Validator) RemoveDuplicates(f *Frame) int {
	if f.Empty() {
		return 0
	}
	seen := make(map[string]struct{}, len(f.Rows))
	removed := f.filter(func(row []any) bool {
		key := rowKey(row)
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		return true
	})
	if removed > 0 {
		v.logger.Info("removed duplicate rows", "count", removed)
	}
	return removed
}

// RemoveNulls drops rows with a null in any of the subset columns, or in any
// column when subset is empty. Subset names absent from the frame are ignored.
func (v *Validator) RemoveNulls(f *Frame, subset []string) int {
	if f.Empty() {
		return 0
	}
	var idx []int
	if len(subset) == 0 {
		for j := range f.Columns {
			idx = append(idx, j)
		}
	} else {
		for _, name := range subset {
			if j := f.Index(name); j >= 0 {
				idx = append(idx, j)
			}
		}
	}
	if len(idx) == 0 {
		return 0
	}
	removed := f.filter(func(row []any) bool {
		for _, j := range idx {
			if row[j] == nil {
				return false
			}
		}
		return true
	})
	if removed > 0 {
		v.logger.Info("removed rows with null values", "count", removed)
	}
	return removed
}

// Coerce converts each typed column present in the frame, in place. Cells
// that fail conversion become null; the count of such cells is returned.
func (v *Validator) Coerce(f *Frame) int {
	invalid := 0
	for _, ft := range v.rule.Types {
		j := f.Index(ft.Name)
		if j < 0 {
			v.logger.Warn("typed column missing", "column", ft.Name)
			continue
		}
		bad := 0
		for _, row := range f.Rows {
			if row[j] == nil {
				continue
			}
			val, ok := typeconv.Coerce(row[j], ft.Kind)
			if !ok {
				bad++
				val = nil
			}
			row[j] = val
		}
		f.Columns[j].Kind = ft.Kind
		if bad > 0 {
			v.logger.Warn("values could not be converted", "column", ft.Name, "kind", ft.Kind.String(), "count", bad)
		}
		invalid += bad
	}
	return invalid
}

// ValidateAndClean works on a copy of f: duplicates go first, then rows
// missing a required field; typed columns are converted and rows left with a
// null typed cell are dropped. f itself is left untouched.
func (v *Validator) ValidateAndClean(f *Frame) (*Frame, Stats) {
	if f == nil {
		f = &Frame{}
	}
	out := f.Clone()
	st := Stats{Initial: out.Len()}

	st.Duplicates = v.RemoveDuplicates(out)

	for _, name := range v.rule.Required {
		if out.Index(name) < 0 {
			st.MissingColumns = append(st.MissingColumns, name)
		}
	}
	if len(st.MissingColumns) > 0 {
		v.logger.Warn("required columns missing", "columns", strings.Join(st.MissingColumns, ","))
	}
	if len(v.rule.Required) > 0 {
		if len(st.MissingColumns) == len(v.rule.Required) {
			v.logger.Warn("none of the required columns are present; null check skipped")
		} else {
			st.MissingRequired = v.RemoveNulls(out, v.rule.Required)
		}
	}

	v.Coerce(out)
	var typed []string
	for _, ft := range v.rule.Types {
		if out.Index(ft.Name) >= 0 {
			typed = append(typed, ft.Name)
		}
	}
	if len(typed) > 0 {
		st.InvalidTypes = v.RemoveNulls(out, typed)
	}
	st.Remaining = out.Len()
	v.logger.Info("validation finished",
		"initial", st.Initial,
		"duplicates", st.Duplicates,
		"missing_required", st.MissingRequired,
		"invalid_types", st.InvalidTypes,
		"remaining", st.Remaining,
	)
	return out, st
}

func rowKey(row []any) string {
	var b strings.Builder
	for i, cell := range row {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		if cell == nil {
			b.WriteString("\x00")
			continue
		}
		switch cell.(type) {
		case string:
			b.WriteByte('s')
		case int64:
			b.WriteByte('i')
		case float64:
			b.WriteByte('f')
		case bool:
			b.WriteByte('b')
		default:
			b.WriteByte('t')
		}
		b.WriteString(typeconv.Format(cell))
	}
	return b.String()
}
