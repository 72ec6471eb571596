package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"jobmart/internal/table"
)

// Filesystem reads CSV datasets from a directory. The dataset name is
// the file basename without the .csv suffix; the fingerprint combines
// modification time and size so it never requires opening the file.
type Filesystem struct {
	root string
}

var _ Reader = (*Filesystem)(nil)

// NewFilesystem constructs a filesystem reader rooted at dir.
func NewFilesystem(dir string) (*Filesystem, error) {
	if dir == "" {
		return nil, fmt.Errorf("source directory required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat source dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path %s is not a directory", dir)
	}
	return &Filesystem{root: dir}, nil
}

// List enumerates eligible CSV files with their fingerprints.
func (f *Filesystem) List(_ context.Context) ([]Entry, error) {
	dirents, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("list source dir: %w", err)
	}
	var out []Entry
	for _, de := range dirents {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".csv") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", de.Name(), err)
		}
		out = append(out, Entry{
			Name:        strings.TrimSuffix(de.Name(), ".csv"),
			Fingerprint: fmt.Sprintf("%d-%d", info.ModTime().UnixNano(), info.Size()),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Read parses one dataset.
func (f *Filesystem) Read(_ context.Context, name string) (*table.Table, error) {
	fh, err := os.Open(filepath.Join(f.root, name+".csv"))
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", name, err)
	}
	defer func() { _ = fh.Close() }()
	return DecodeCSV(fh, name)
}
