// Package source reads raw tabular datasets from a configurable backing
// store and detects which of them changed since the last successful
// pipeline run. Fingerprinting never requires reading dataset content.
package source

import (
	"context"
	"fmt"

	"jobmart/internal/table"
)

// Driver identifies a concrete source backend.
type Driver string

const (
	DriverFilesystem Driver = "fs"     // CSV files in a directory
	DriverS3         Driver = "s3"     // CSV objects in an S3-compatible bucket
	DriverMemory     Driver = "memory" // in-memory datasets (tests / ephemeral)
)

// Entry names one eligible dataset together with its current
// fingerprint, an opaque version token such as a modification time or
// object ETag.
type Entry struct {
	Name        string
	Fingerprint string
}

// Reader enumerates and decodes source datasets. List must not read
// dataset content; Read parses one dataset into a table.
type Reader interface {
	List(ctx context.Context) ([]Entry, error)
	Read(ctx context.Context, name string) (*table.Table, error)
}

// Config selects and parameterizes a source backend. It is passed in
// explicitly; the package keeps no ambient state.
type Config struct {
	Driver Driver
	Root   string // directory root when Driver == fs
	S3     S3Config
}

// Open constructs the reader selected by cfg. An empty driver defaults
// to the filesystem backend.
func Open(ctx context.Context, cfg Config) (Reader, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		return NewFilesystem(cfg.Root)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown source driver %s", driver)
	}
}
