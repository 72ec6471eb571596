package table

import (
	"fmt"
	"strconv"
	"time"
)

// SchemaError reports a column expected by a transform but absent from
// its input table. It is fatal to the run; there is no retry.
type SchemaError struct {
	Table  string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("table %s: missing column %q", e.Table, e.Column)
}

// Float coerces a numeric cell to float64. The second return is false
// for NULL and non-numeric cells.
func Float(v Value) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case int:
		return float64(x), true
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Int coerces a cell to int64. Floats must be integral; anything else
// reports false.
func Int(v Value) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int32:
		return int64(x), true
	case int:
		return int64(x), true
	case float64:
		if x == float64(int64(x)) {
			return int64(x), true
		}
		return 0, false
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// Truthy maps a cell onto strict boolean semantics: NULL is false,
// numeric cells are true when non-zero, strings when non-empty.
func Truthy(v Value) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case time.Time:
		return !x.IsZero()
	default:
		if f, ok := Float(v); ok {
			return f != 0
		}
		return true
	}
}

// Blank reports whether a cell is NULL or an all-whitespace string.
func Blank(v Value) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
