// Package table implements the ordered-column, unordered-row batches that
// pipeline stages exchange. A Table owns its rows: transforms operate on
// defensive copies and return new tables, never mutating their input.
package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Value is a single cell. A nil Value marks NULL. Cells produced by the
// source decoder are one of string, int64, float64, bool, or time.Time.
type Value = any

// Table is an ordered set of named columns over an unordered row set.
type Table struct {
	name  string
	cols  []string
	index map[string]int
	rows  [][]Value
}

// New constructs an empty table with the given name and column order.
func New(name string, cols ...string) *Table {
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		index[c] = i
	}
	return &Table{name: name, cols: append([]string(nil), cols...), index: index}
}

// Name returns the table's dataset name.
func (t *Table) Name() string { return t.name }

// Columns returns a copy of the ordered column names.
func (t *Table) Columns() []string { return append([]string(nil), t.cols...) }

// NumRows reports the number of rows.
func (t *Table) NumRows() int { return len(t.rows) }

// NumCols reports the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Index resolves a column name to its position, returning a SchemaError
// when the column is absent.
func (t *Table) Index(col string) (int, error) {
	i, ok := t.index[col]
	if !ok {
		return 0, &SchemaError{Table: t.name, Column: col}
	}
	return i, nil
}

// Append adds one row. The row length must match the column count.
func (t *Table) Append(row ...Value) error {
	if len(row) != len(t.cols) {
		return fmt.Errorf("table %s: row has %d values, want %d", t.name, len(row), len(t.cols))
	}
	t.rows = append(t.rows, append([]Value(nil), row...))
	return nil
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []Value {
	return append([]Value(nil), t.rows[i]...)
}

// At returns the cell at row i, column j without copying.
func (t *Table) At(i, j int) Value { return t.rows[i][j] }

// Set overwrites the cell at row i, column j.
func (t *Table) Set(i, j int, v Value) { t.rows[i][j] = v }

// Value returns the cell at row i in the named column.
func (t *Table) Value(i int, col string) (Value, error) {
	j, err := t.Index(col)
	if err != nil {
		return nil, err
	}
	return t.rows[i][j], nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := New(t.name, t.cols...)
	out.rows = make([][]Value, len(t.rows))
	for i, row := range t.rows {
		out.rows[i] = append([]Value(nil), row...)
	}
	return out
}

// Project returns a new table holding only the named columns, in the
// given order. A missing column is a SchemaError.
func (t *Table) Project(cols ...string) (*Table, error) {
	idx := make([]int, len(cols))
	for i, c := range cols {
		j, err := t.Index(c)
		if err != nil {
			return nil, err
		}
		idx[i] = j
	}
	out := New(t.name, cols...)
	out.rows = make([][]Value, len(t.rows))
	for r, row := range t.rows {
		sel := make([]Value, len(idx))
		for i, j := range idx {
			sel[i] = row[j]
		}
		out.rows[r] = sel
	}
	return out, nil
}

// RenameColumn returns a new table with column old renamed to new.
func (t *Table) RenameColumn(old, new string) (*Table, error) {
	j, err := t.Index(old)
	if err != nil {
		return nil, err
	}
	out := t.Clone()
	out.cols[j] = new
	delete(out.index, old)
	out.index[new] = j
	return out, nil
}

// Distinct returns a new table with exact-duplicate rows removed,
// keeping first occurrences in order.
func (t *Table) Distinct() *Table {
	out := New(t.name, t.cols...)
	seen := make(map[string]struct{}, len(t.rows))
	for _, row := range t.rows {
		k := rowKey(row)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out.rows = append(out.rows, append([]Value(nil), row...))
	}
	return out
}

// DistinctValues returns the distinct non-null values of a column in
// first-observed order.
func (t *Table) DistinctValues(col string) ([]Value, error) {
	j, err := t.Index(col)
	if err != nil {
		return nil, err
	}
	var out []Value
	seen := make(map[string]struct{})
	for _, row := range t.rows {
		v := row[j]
		if v == nil {
			continue
		}
		k := Key(v)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}

// Key encodes a cell into a comparable string usable as a join or
// set-membership key. Integral floats collapse onto their integer
// encoding so that keys survive a numeric round trip through the store.
func Key(v Value) string {
	switch x := v.(type) {
	case nil:
		return "\x00"
	case string:
		return "s:" + x
	case bool:
		if x {
			return "i:1"
		}
		return "i:0"
	case int64:
		return "i:" + strconv.FormatInt(x, 10)
	case int32:
		return "i:" + strconv.FormatInt(int64(x), 10)
	case int:
		return "i:" + strconv.FormatInt(int64(x), 10)
	case float64:
		if x == float64(int64(x)) {
			return "i:" + strconv.FormatInt(int64(x), 10)
		}
		return "f:" + strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return Key(float64(x))
	case time.Time:
		return "t:" + strconv.FormatInt(x.UnixNano(), 10)
	default:
		return fmt.Sprintf("x:%v", x)
	}
}

func rowKey(row []Value) string {
	var b strings.Builder
	for _, v := range row {
		b.WriteString(Key(v))
		b.WriteByte('\x1f')
	}
	return b.String()
}
