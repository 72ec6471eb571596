// Package transform reshapes cleaned source tables into the star-schema
// model: dimensions with surrogate keys, a fact table with resolved
// foreign keys, and many-to-many bridge tables. Every function returns
// a new table and leaves its inputs untouched.
package transform

import (
	"fmt"
	"time"

	"jobmart/internal/table"
)

// Placeholder marks text cells that arrived blank or null. It is
// distinguishable from legitimate data by convention, not type.
const Placeholder = "Not Defined"

// CleanSpec assigns columns to null-fill policies.
type CleanSpec struct {
	Bool     []string // null -> 0 (false)
	Text     []string // blank-or-null -> Placeholder
	Numeric  []string // null -> 0
	Required []string // rows with a null here are dropped
}

// Clean deduplicates and null-fills a raw table. Exact-duplicate rows
// are dropped first so they never count toward fill statistics; fills
// run next; rows missing a required field are dropped last, so a fill
// on another column cannot rescue them.
func Clean(t *table.Table, spec CleanSpec) (*table.Table, error) {
	out := t.Distinct()

	for _, col := range spec.Bool {
		j, err := out.Index(col)
		if err != nil {
			return nil, err
		}
		fillColumn(out, j, func(v table.Value) table.Value {
			if v == nil {
				return int64(0)
			}
			return v
		})
	}
	for _, col := range spec.Text {
		j, err := out.Index(col)
		if err != nil {
			return nil, err
		}
		fillColumn(out, j, func(v table.Value) table.Value {
			if table.Blank(v) {
				return Placeholder
			}
			return v
		})
	}
	for _, col := range spec.Numeric {
		j, err := out.Index(col)
		if err != nil {
			return nil, err
		}
		fillColumn(out, j, func(v table.Value) table.Value {
			if v == nil {
				return float64(0)
			}
			return v
		})
	}

	if len(spec.Required) > 0 {
		idx := make([]int, len(spec.Required))
		for i, col := range spec.Required {
			j, err := out.Index(col)
			if err != nil {
				return nil, err
			}
			idx[i] = j
		}
		kept := table.New(out.Name(), out.Columns()...)
		for r := 0; r < out.NumRows(); r++ {
			missing := false
			for _, j := range idx {
				if out.At(r, j) == nil {
					missing = true
					break
				}
			}
			if missing {
				continue
			}
			if err := kept.Append(out.Row(r)...); err != nil {
				return nil, err
			}
		}
		out = kept
	}
	return out, nil
}

// Standardize parses epoch-millisecond time columns into calendar dates
// (time of day discarded, UTC) and coerces boolean columns to strict
// bool. NULL cells stay NULL.
func Standardize(t *table.Table, timeCols, boolCols []string) (*table.Table, error) {
	out := t.Clone()
	for _, col := range timeCols {
		j, err := out.Index(col)
		if err != nil {
			return nil, err
		}
		for r := 0; r < out.NumRows(); r++ {
			v := out.At(r, j)
			if v == nil {
				continue
			}
			ts, err := epochMillisDate(v)
			if err != nil {
				return nil, fmt.Errorf("column %s row %d: %w", col, r, err)
			}
			out.Set(r, j, ts)
		}
	}
	for _, col := range boolCols {
		j, err := out.Index(col)
		if err != nil {
			return nil, err
		}
		fillColumn(out, j, func(v table.Value) table.Value {
			if v == nil {
				return nil
			}
			return table.Truthy(v)
		})
	}
	return out, nil
}

func epochMillisDate(v table.Value) (time.Time, error) {
	ms, ok := table.Float(v)
	if !ok {
		return time.Time{}, fmt.Errorf("not an epoch-millisecond value: %v", v)
	}
	ts := time.UnixMilli(int64(ms)).UTC()
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil
}

func fillColumn(t *table.Table, j int, fn func(table.Value) table.Value) {
	for r := 0; r < t.NumRows(); r++ {
		t.Set(r, j, fn(t.At(r, j)))
	}
}
