package memory

import (
	"context"
	"errors"
	"testing"

	"jobmart/internal/table"
	"jobmart/internal/warehouse/core"
)

func TestLoadAssignsIdentitySequence(t *testing.T) {
	s := NewStore(map[string]string{"dim_company": "company_sk"})
	dest := core.Destination{Table: "dim_company"}

	in := table.New("dim_company", "company_id")
	for _, id := range []int64{7, 8} {
		if err := in.Append(id); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	ctx := context.Background()
	if err := s.Load(ctx, dest, in, in.Columns()); err != nil {
		t.Fatalf("load: %v", err)
	}
	// A second batch continues the sequence.
	if err := s.Load(ctx, dest, in, in.Columns()); err != nil {
		t.Fatalf("second load: %v", err)
	}

	out, err := s.Read(ctx, dest)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if out.NumRows() != 4 {
		t.Fatalf("want 4 rows, got %d", out.NumRows())
	}
	for r := 0; r < out.NumRows(); r++ {
		if v, _ := out.Value(r, "company_sk"); v != int64(r+1) {
			t.Fatalf("row %d surrogate = %v, want %d", r, v, r+1)
		}
	}
}

func TestLoadMapsColumnSubset(t *testing.T) {
	s := NewStore(nil)
	dest := core.Destination{Table: "stg_company"}
	in := table.New("companies", "company_id", "name", "state")
	if err := in.Append(int64(1), "Acme", "CA"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Load(context.Background(), dest, in, []string{"company_id", "name"}); err != nil {
		t.Fatalf("load: %v", err)
	}
	out, err := s.Read(context.Background(), dest)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if out.NumCols() != 2 {
		t.Fatalf("stored columns = %v", out.Columns())
	}
	if !out.HasColumn("name") || out.HasColumn("state") {
		t.Fatalf("column subset not honored: %v", out.Columns())
	}
}

func TestLoadUnknownColumnFailsAsLoadError(t *testing.T) {
	s := NewStore(nil)
	in := table.New("x", "a")
	err := s.Load(context.Background(), core.Destination{Table: "x"}, in, []string{"missing"})
	var le *core.LoadError
	if !errors.As(err, &le) {
		t.Fatalf("want LoadError, got %v", err)
	}
}

func TestFailWithInjectsAndClears(t *testing.T) {
	s := NewStore(nil)
	dest := core.Destination{Table: "fact_tech_job"}
	boom := errors.New("disk full")
	s.FailWith(dest, boom)

	in := table.New("fact", "job_id")
	if err := in.Append(int64(1)); err != nil {
		t.Fatalf("append: %v", err)
	}
	err := s.Load(context.Background(), dest, in, in.Columns())
	if !errors.Is(err, boom) {
		t.Fatalf("injected failure not surfaced: %v", err)
	}
	if s.Rows(dest) != 0 {
		t.Fatalf("failed load stored rows")
	}

	s.FailWith(dest, nil)
	if err := s.Load(context.Background(), dest, in, in.Columns()); err != nil {
		t.Fatalf("load after clear: %v", err)
	}
	if s.Rows(dest) != 1 {
		t.Fatalf("rows = %d, want 1", s.Rows(dest))
	}
}

func TestReadReturnsCopy(t *testing.T) {
	s := NewStore(nil)
	dest := core.Destination{Table: "dim_skill"}
	in := table.New("dim_skill", "skill_abr")
	if err := in.Append("SQL"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Load(context.Background(), dest, in, in.Columns()); err != nil {
		t.Fatalf("load: %v", err)
	}
	out, err := s.Read(context.Background(), dest)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	out.Set(0, 0, "GO")
	again, err := s.Read(context.Background(), dest)
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if v, _ := again.Value(0, "skill_abr"); v != "SQL" {
		t.Fatalf("stored contents mutated through a read copy: %v", v)
	}
}

func TestReadUnknownDestination(t *testing.T) {
	s := NewStore(nil)
	if _, err := s.Read(context.Background(), core.Destination{Table: "nope"}); err == nil {
		t.Fatalf("expected error")
	}
}
