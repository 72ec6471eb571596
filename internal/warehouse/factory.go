package warehouse

import (
	"fmt"

	"jobmart/internal/infra/warehouse/memory"
	"jobmart/internal/infra/warehouse/postgres"
	"jobmart/internal/infra/warehouse/sqlite"
)

// Driver identifies a concrete warehouse backend.
type Driver string

const (
	DriverMemory   Driver = "memory"   // in-memory only (tests / ephemeral)
	DriverSQLite   Driver = "sqlite"   // embedded sqlite file
	DriverPostgres Driver = "postgres" // PostgreSQL server
)

// Config selects and parameterizes a warehouse backend.
type Config struct {
	Driver Driver
	DSN    string // postgres connection string when Driver == postgres
	Path   string // sqlite file path when Driver == sqlite

	// Identity tells the memory backend which surrogate-key column to
	// assign per destination, emulating store-side key assignment.
	Identity map[string]string
}

// Open constructs the store selected by cfg. An empty driver defaults
// to sqlite.
func Open(cfg Config) (*Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}
	switch driver {
	case DriverMemory:
		return NewStore(memory.NewStore(cfg.Identity)), nil
	case DriverSQLite:
		b, err := sqlite.NewStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		return NewStore(b), nil
	case DriverPostgres:
		b, err := postgres.NewStore(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return NewStore(b), nil
	default:
		return nil, fmt.Errorf("unknown warehouse driver %s", driver)
	}
}

// FailableBackend is the extra surface the memory backend offers for
// cross-package tests: rejected-batch injection and row assertions.
type FailableBackend interface {
	Backend
	FailWith(dest Destination, err error)
	Rows(dest Destination) int
}

// NewMemoryForTests returns a facade store over a fresh memory backend
// together with the backend handle for failure injection.
func NewMemoryForTests(identity map[string]string) (*Store, FailableBackend) {
	b := memory.NewStore(identity)
	return NewStore(b), b
}
