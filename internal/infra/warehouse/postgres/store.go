// Package postgres provides the PostgreSQL warehouse backend. Bulk
// loads go through the COPY protocol with an explicit column list; a
// connection is dialed per logical operation and released on every exit
// path, so no connection or transaction spans pipeline stages.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"jobmart/internal/table"
	"jobmart/internal/warehouse/core"
)

// Compile-time contract assertion ensuring the store satisfies the backend interface.
var _ core.Store = (*Store)(nil)

// Store dials the configured DSN once per load or read.
type Store struct {
	cfg *pgx.ConnConfig
}

// NewStore validates the DSN up front; it does not dial.
func NewStore(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn required")
	}
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	return &Store{cfg: cfg}, nil
}

// Load appends the listed columns of t into dest via COPY.
func (s *Store) Load(ctx context.Context, dest core.Destination, t *table.Table, cols []string) error {
	idx := make([]int, len(cols))
	for i, c := range cols {
		j, err := t.Index(c)
		if err != nil {
			return &core.LoadError{Dest: dest, Err: err}
		}
		idx[i] = j
	}
	rows := make([][]any, t.NumRows())
	for r := range rows {
		row := make([]any, len(idx))
		for i, j := range idx {
			row[i] = t.At(r, j)
		}
		rows[r] = row
	}

	conn, err := pgx.ConnectConfig(ctx, s.cfg)
	if err != nil {
		return &core.LoadError{Dest: dest, Err: fmt.Errorf("connect: %w", err)}
	}
	defer func() { _ = conn.Close(ctx) }()

	if _, err := conn.CopyFrom(ctx, identifier(dest), cols, pgx.CopyFromRows(rows)); err != nil {
		return &core.LoadError{Dest: dest, Err: err}
	}
	return nil
}

// Read returns the full current contents of dest.
func (s *Store) Read(ctx context.Context, dest core.Destination) (*table.Table, error) {
	conn, err := pgx.ConnectConfig(ctx, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("read %s: connect: %w", dest, err)
	}
	defer func() { _ = conn.Close(ctx) }()

	rows, err := conn.Query(ctx, "SELECT * FROM "+identifier(dest).Sanitize())
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dest, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}
	t := table.New(dest.String(), cols...)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read %s: scan: %w", dest, err)
		}
		row := make([]table.Value, len(values))
		for i, v := range values {
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

// Close is a no-op; connections are scoped per operation.
func (s *Store) Close() error { return nil }

func identifier(dest core.Destination) pgx.Identifier {
	if dest.Schema == "" {
		return pgx.Identifier{dest.Table}
	}
	return pgx.Identifier{dest.Schema, dest.Table}
}

// normalize maps driver scan types onto the table cell types used by
// the transforms.
func normalize(v any) table.Value {
	switch x := v.(type) {
	case nil:
		return nil
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int:
		return int64(x)
	case uint32:
		return int64(x)
	case float32:
		return float64(x)
	case []byte:
		return string(x)
	case pgtype.Numeric:
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	default:
		return v
	}
}
