package source

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"jobmart/internal/table"
)

// Memory is an in-memory reader for tests and ephemeral runs.
type Memory struct {
	mu       sync.Mutex
	datasets map[string]*table.Table
	prints   map[string]string
}

var _ Reader = (*Memory)(nil)

// NewMemory constructs an empty in-memory reader.
func NewMemory() *Memory {
	return &Memory{datasets: map[string]*table.Table{}, prints: map[string]string{}}
}

// Put registers or replaces a dataset with the given fingerprint.
func (m *Memory) Put(name, fingerprint string, t *table.Table) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.datasets[name] = t.Clone()
	m.prints[name] = fingerprint
}

// List enumerates registered datasets in name order.
func (m *Memory) List(_ context.Context) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, 0, len(m.datasets))
	for name := range m.datasets {
		out = append(out, Entry{Name: name, Fingerprint: m.prints[name]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Read returns a copy of a registered dataset.
func (m *Memory) Read(_ context.Context, name string) (*table.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.datasets[name]
	if !ok {
		return nil, fmt.Errorf("dataset %s not registered", name)
	}
	return t.Clone(), nil
}
