// Package memory provides an in-memory warehouse backend that emulates
// store-assigned surrogate keys, so orchestrator behavior around the
// read-after-write round trip is exercised without a server.
package memory

import (
	"context"
	"fmt"
	"sync"

	"jobmart/internal/table"
	"jobmart/internal/warehouse/core"
)

// Compile-time contract assertion ensuring the store satisfies the backend interface.
var _ core.Store = (*Store)(nil)

// Store keeps destination tables in memory. When a destination has an
// identity column configured, Load assigns it sequentially from 1 in
// arrival order, mimicking a store-side identity sequence.
type Store struct {
	mu       sync.Mutex
	identity map[string]string // destination -> surrogate column
	seq      map[string]int64
	tables   map[string]*table.Table
	failures map[string]error
}

// NewStore constructs an empty backend. identity maps destination
// strings (see core.Destination.String) to the surrogate column the
// store assigns on write; it may be nil.
func NewStore(identity map[string]string) *Store {
	if identity == nil {
		identity = map[string]string{}
	}
	return &Store{
		identity: identity,
		seq:      map[string]int64{},
		tables:   map[string]*table.Table{},
		failures: map[string]error{},
	}
}

// FailWith makes every subsequent Load into dest fail with err,
// simulating a rejected batch. A nil err clears the failure.
func (s *Store) FailWith(dest core.Destination, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, dest.String())
		return
	}
	s.failures[dest.String()] = err
}

// Load appends the listed columns of t into dest, assigning identity
// keys when configured.
func (s *Store) Load(ctx context.Context, dest core.Destination, t *table.Table, cols []string) error {
	if err := ctx.Err(); err != nil {
		return &core.LoadError{Dest: dest, Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := dest.String()
	if err, ok := s.failures[key]; ok {
		return &core.LoadError{Dest: dest, Err: err}
	}

	idx := make([]int, len(cols))
	for i, c := range cols {
		j, err := t.Index(c)
		if err != nil {
			return &core.LoadError{Dest: dest, Err: err}
		}
		idx[i] = j
	}

	idCol := s.identity[key]
	stored, ok := s.tables[key]
	if !ok {
		storedCols := append([]string(nil), cols...)
		if idCol != "" {
			storedCols = append([]string{idCol}, storedCols...)
		}
		stored = table.New(key, storedCols...)
		s.tables[key] = stored
	}

	for r := 0; r < t.NumRows(); r++ {
		row := make([]table.Value, 0, len(idx)+1)
		if idCol != "" {
			s.seq[key]++
			row = append(row, s.seq[key])
		}
		for _, j := range idx {
			row = append(row, t.At(r, j))
		}
		if err := stored.Append(row...); err != nil {
			return &core.LoadError{Dest: dest, Err: err}
		}
	}
	return nil
}

// Read returns a copy of the destination's current contents.
func (s *Store) Read(ctx context.Context, dest core.Destination) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.tables[dest.String()]
	if !ok {
		return nil, fmt.Errorf("read %s: destination not loaded", dest)
	}
	return stored.Clone(), nil
}

// Rows reports the number of rows currently held for dest, for test
// assertions.
func (s *Store) Rows(dest core.Destination) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.tables[dest.String()]
	if !ok {
		return 0
	}
	return stored.NumRows()
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
