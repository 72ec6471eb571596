package source

import (
	"strings"
	"testing"
)

func TestDecodeCSVInfersCellTypes(t *testing.T) {
	in := "job_id,title,salary,active\n1,engineer,100.5,1\n2,,,\n"
	tbl, err := DecodeCSV(strings.NewReader(in), "postings")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tbl.Name() != "postings" {
		t.Fatalf("unexpected name %s", tbl.Name())
	}
	if got := tbl.Columns(); len(got) != 4 || got[0] != "job_id" {
		t.Fatalf("unexpected columns %v", got)
	}
	if v, _ := tbl.Value(0, "job_id"); v != int64(1) {
		t.Fatalf("integer cell not inferred: %T %v", v, v)
	}
	if v, _ := tbl.Value(0, "salary"); v != float64(100.5) {
		t.Fatalf("float cell not inferred: %T %v", v, v)
	}
	if v, _ := tbl.Value(0, "title"); v != "engineer" {
		t.Fatalf("string cell wrong: %v", v)
	}
	if v, _ := tbl.Value(1, "title"); v != nil {
		t.Fatalf("empty cell must be NULL, got %v", v)
	}
}

func TestDecodeCSVEmptyInputFails(t *testing.T) {
	if _, err := DecodeCSV(strings.NewReader(""), "x"); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestDecodeCSVRaggedRowFails(t *testing.T) {
	if _, err := DecodeCSV(strings.NewReader("a,b\n1\n"), "x"); err == nil {
		t.Fatalf("expected error for ragged row")
	}
}
