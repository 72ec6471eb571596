// Package warehouse is the facade over the analytical store backends.
// It exposes bulk loading with explicit column-list mapping, full-table
// reads for the read-after-write round trip, and the typed load errors
// of the pipeline's failure taxonomy. Concrete backends live under
// internal/infra/warehouse and must only be imported from here.
package warehouse

import (
	"context"

	"jobmart/internal/table"
	"jobmart/internal/warehouse/core"
)

// Re-exported backend contract types; see core for documentation.
type (
	Destination = core.Destination
	LoadError   = core.LoadError
	Backend     = core.Store
)

// PersistedTable is a table read back from the store, carrying the
// surrogate keys the store assigned on write. Only a store read
// produces one: builders that need store-assigned keys take a
// PersistedTable so an in-memory derivation cannot stand in for the
// read-after-write round trip.
type PersistedTable struct {
	t    *table.Table
	dest Destination
}

// Table returns the persisted contents.
func (p PersistedTable) Table() *table.Table { return p.t }

// Dest returns the destination the table was read from.
func (p PersistedTable) Dest() Destination { return p.dest }

// IsZero reports whether p was never produced by a store read.
func (p PersistedTable) IsZero() bool { return p.t == nil }

// Store wraps a backend behind the facade types.
type Store struct {
	backend Backend
}

// NewStore wraps a backend.
func NewStore(b Backend) *Store { return &Store{backend: b} }

// Load bulk-appends the listed columns of t into dest.
func (s *Store) Load(ctx context.Context, dest Destination, t *table.Table, cols []string) error {
	return s.backend.Load(ctx, dest, t, cols)
}

// ReadTable reads back the full contents of dest, yielding the only
// valid source of store-assigned surrogate keys.
func (s *Store) ReadTable(ctx context.Context, dest Destination) (PersistedTable, error) {
	t, err := s.backend.Read(ctx, dest)
	if err != nil {
		return PersistedTable{}, err
	}
	return PersistedTable{t: t, dest: dest}, nil
}

// Close releases backend resources.
func (s *Store) Close() error { return s.backend.Close() }
