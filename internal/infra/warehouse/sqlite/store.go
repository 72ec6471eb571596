// Package sqlite provides an embedded warehouse backend for local runs
// and tests, using the pure Go sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"jobmart/internal/table"
	"jobmart/internal/warehouse/core"
)

// Compile-time contract assertion ensuring the store satisfies the backend interface.
var _ core.Store = (*Store)(nil)

// Store executes each load inside one transaction against a sqlite
// file. Destinations are plain table names; sqlite has no schemas.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the sqlite file at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "jobmart.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// DB exposes the underlying handle for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Load appends the listed columns of t into dest inside one
// transaction: either the whole batch lands or none of it does.
func (s *Store) Load(ctx context.Context, dest core.Destination, t *table.Table, cols []string) error {
	idx := make([]int, len(cols))
	for i, c := range cols {
		j, err := t.Index(c)
		if err != nil {
			return &core.LoadError{Dest: dest, Err: err}
		}
		idx[i] = j
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &core.LoadError{Dest: dest, Err: fmt.Errorf("begin: %w", err)}
	}
	defer func() { _ = tx.Rollback() }()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",")
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(dest.Table), strings.Join(quoted, ", "), placeholders))
	if err != nil {
		return &core.LoadError{Dest: dest, Err: err}
	}
	defer func() { _ = stmt.Close() }()

	for r := 0; r < t.NumRows(); r++ {
		args := make([]any, len(idx))
		for i, j := range idx {
			args[i] = bindValue(t.At(r, j))
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return &core.LoadError{Dest: dest, Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &core.LoadError{Dest: dest, Err: fmt.Errorf("commit: %w", err)}
	}
	return nil
}

// Read returns the full current contents of dest.
func (s *Store) Read(ctx context.Context, dest core.Destination) (*table.Table, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(dest.Table))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dest, err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read %s: columns: %w", dest, err)
	}
	t := table.New(dest.String(), cols...)
	for rows.Next() {
		cells := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("read %s: scan: %w", dest, err)
		}
		row := make([]table.Value, len(cells))
		for i, v := range cells {
			row[i] = normalize(v)
		}
		if err := t.Append(row...); err != nil {
			return nil, fmt.Errorf("read %s: %w", dest, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", dest, err)
	}
	return t, nil
}

// Close closes the database handle.
func (s *Store) Close() error { return s.db.Close() }

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// bindValue maps table cells onto driver bind types. Dates are stored
// as ISO-8601 text, the sqlite convention.
func bindValue(v table.Value) any {
	if ts, ok := v.(time.Time); ok {
		return ts.UTC().Format(time.RFC3339)
	}
	return v
}

func normalize(v any) table.Value {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case string:
		if ts, err := time.Parse(time.RFC3339, x); err == nil {
			return ts.UTC()
		}
		return x
	default:
		return v
	}
}
