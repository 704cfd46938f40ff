package typeconv

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind is the logical type of a frame column.
type Kind int

const (
	String Kind = iota
	Int
	Float
	Bool
	Time
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Time:
		return "datetime"
	default:
		return "str"
	}
}

// ParseKind maps rule names ("int", "float", "str", "bool", "datetime") to kinds.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "str", "string", "text":
		return String, nil
	case "int", "integer":
		return Int, nil
	case "float", "real", "number":
		return Float, nil
	case "bool", "boolean":
		return Bool, nil
	case "datetime", "date", "time", "timestamp":
		return Time, nil
	default:
		return String, fmt.Errorf("typeconv: unknown kind %q", name)
	}
}

// SQLType maps a kind to a column type for the given driver.
func SQLType(k Kind, driver string) string {
	pg := driver == "postgres"
	switch k {
	case Int:
		if pg {
			return "BIGINT"
		}
		return "INTEGER"
	case Float:
		if pg {
			return "DOUBLE PRECISION"
		}
		return "REAL"
	case Bool:
		return "BOOLEAN"
	case Time:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
}

// Coerce converts v to kind k. Values that cannot be converted yield ok=false;
// nil is never converted.
func Coerce(v any, k Kind) (any, bool) {
	if v == nil {
		return nil, false
	}
	switch k {
	case Int:
		return toInt(v)
	case Float:
		return toFloat(v)
	case Bool:
		return toBool(v)
	case Time:
		return toTime(v)
	default:
		return Format(v), true
	}
}

// Format renders a cell as text.
func Format(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}

// ParseInt accepts integers and integral decimals such as "3.0".
func ParseInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	if f, ok := ParseFloat(s); ok {
		return floatToInt(f)
	}
	return 0, false
}

// ParseFloat accepts finite decimal numbers.
func ParseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// ParseTime tries the supported layouts in order.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func toInt(v any) (any, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case float64:
		return floatToInt(t)
	case bool:
		if t {
			return int64(1), true
		}
		return int64(0), true
	case string:
		return ParseInt(t)
	default:
		return nil, false
	}
}

func floatToInt(f float64) (int64, bool) {
	if f != math.Trunc(f) || f >= float64(math.MaxInt64) || f < float64(math.MinInt64) {
		return 0, false
	}
	return int64(f), true
}

func toFloat(v any) (any, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int64:
		return float64(t), true
	case string:
		return ParseFloat(t)
	default:
		return nil, false
	}
}

func toBool(v any) (any, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case int64:
		return t != 0, true
	case float64:
		return t != 0, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "t", "yes", "y", "1":
			return true, true
		case "false", "f", "no", "n", "0":
			return false, true
		}
	}
	return nil, false
}

func toTime(v any) (any, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		return ParseTime(t)
	default:
		return nil, false
	}
}
