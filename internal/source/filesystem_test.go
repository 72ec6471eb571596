package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestFilesystemListAndRead(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "postings.csv", "job_id,title\n1,engineer\n")
	writeCSV(t, dir, "companies.csv", "company_id,name\n7,acme\n")
	writeCSV(t, dir, "notes.txt", "ignored")

	fs, err := NewFilesystem(dir)
	if err != nil {
		t.Fatalf("new filesystem: %v", err)
	}
	entries, err := fs.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "companies" || entries[1].Name != "postings" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	for _, e := range entries {
		if e.Fingerprint == "" {
			t.Fatalf("missing fingerprint for %s", e.Name)
		}
	}

	tbl, err := fs.Read(context.Background(), "postings")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if tbl.NumRows() != 1 {
		t.Fatalf("unexpected rows %d", tbl.NumRows())
	}
	if v, _ := tbl.Value(0, "title"); v != "engineer" {
		t.Fatalf("unexpected cell %v", v)
	}
}

func TestFilesystemFingerprintChangesOnRewrite(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "postings.csv", "job_id\n1\n")
	fs, err := NewFilesystem(dir)
	if err != nil {
		t.Fatalf("new filesystem: %v", err)
	}
	before, err := fs.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// Push the mtime forward explicitly; rewrites within the clock
	// granularity would otherwise be invisible.
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	after, err := fs.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if before[0].Fingerprint == after[0].Fingerprint {
		t.Fatalf("fingerprint did not change on modification")
	}
}

func TestNewFilesystemRejectsMissingDir(t *testing.T) {
	if _, err := NewFilesystem(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := NewFilesystem(""); err == nil {
		t.Fatalf("expected error for empty dir")
	}
}

func TestOpenSelectsDriver(t *testing.T) {
	dir := t.TempDir()
	r, err := Open(context.Background(), Config{Driver: DriverFilesystem, Root: dir})
	if err != nil {
		t.Fatalf("open fs: %v", err)
	}
	if _, ok := r.(*Filesystem); !ok {
		t.Fatalf("expected filesystem reader, got %T", r)
	}
	if _, err := Open(context.Background(), Config{Driver: "bogus"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
	if _, ok := mustOpen(t, Config{Driver: DriverMemory}).(*Memory); !ok {
		t.Fatalf("expected memory reader")
	}
}

func mustOpen(t *testing.T, cfg Config) Reader {
	t.Helper()
	r, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return r
}
