// Package core declares the warehouse backend contract shared by the
// facade and the infra implementations.
package core

import (
	"context"
	"fmt"

	"jobmart/internal/table"
)

// Destination names a fully qualified store table.
type Destination struct {
	Schema string
	Table  string
}

// String renders schema.table, or just the table name when no schema
// is configured (embedded backends).
func (d Destination) String() string {
	if d.Schema == "" {
		return d.Table
	}
	return d.Schema + "." + d.Table
}

// LoadError reports a batch rejected by the sink. It always carries the
// destination identity and aborts the run; the fingerprint map is never
// committed after one.
type LoadError struct {
	Dest Destination
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Dest, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Store is the contract implemented by concrete warehouse drivers.
// Load appends the listed columns of t to dest; the column list maps
// table columns onto destination columns regardless of destination
// order. Read returns the full current contents of dest.
type Store interface {
	Load(ctx context.Context, dest Destination, t *table.Table, cols []string) error
	Read(ctx context.Context, dest Destination) (*table.Table, error)
	Close() error
}
