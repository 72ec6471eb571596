package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"jobmart/internal/table"
)

// DecodeCSV parses a headed CSV stream into a table named after the
// dataset. Cell types are inferred per value: empty cells become NULL,
// integral text becomes int64, decimal text becomes float64, everything
// else stays a string.
func DecodeCSV(r io.Reader, name string) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("dataset %s: empty input", name)
	}
	if err != nil {
		return nil, fmt.Errorf("dataset %s: read header: %w", name, err)
	}
	t := table.New(name, append([]string(nil), header...)...)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset %s: read row: %w", name, err)
		}
		row := make([]table.Value, len(record))
		for i, cell := range record {
			row[i] = inferValue(cell)
		}
		if err := t.Append(row...); err != nil {
			return nil, fmt.Errorf("dataset %s: %w", name, err)
		}
	}
	return t, nil
}

func inferValue(cell string) table.Value {
	if cell == "" {
		return nil
	}
	if n, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return f
	}
	return cell
}
