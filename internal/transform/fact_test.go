package transform

import (
	"context"
	"testing"
	"time"

	"jobmart/internal/table"
	"jobmart/internal/warehouse"
)

// persist loads t into a fresh memory store under dest, with the store
// assigning idCol, and reads it back.
func persist(t *testing.T, dest string, idCol string, tbl *table.Table) warehouse.PersistedTable {
	t.Helper()
	identity := map[string]string{}
	if idCol != "" {
		identity[dest] = idCol
	}
	store, _ := warehouse.NewMemoryForTests(identity)
	d := warehouse.Destination{Table: dest}
	if err := store.Load(context.Background(), d, tbl, tbl.Columns()); err != nil {
		t.Fatalf("load %s: %v", dest, err)
	}
	pt, err := store.ReadTable(context.Background(), d)
	if err != nil {
		t.Fatalf("read %s: %v", dest, err)
	}
	return pt
}

func factFixtureDims(t *testing.T) FactDims {
	t.Helper()
	return FactDims{
		Company: persist(t, "dim_company", "company_sk", mustTable(t, "dim_company",
			[]string{"company_id", "company_name"},
			[]table.Value{int64(7), "Acme"},
		)),
		Location: persist(t, "dim_location", "location_id", mustTable(t, "dim_location",
			[]string{"location", "region", "country"},
			[]table.Value{"London, United Kingdom", "London", "United Kingdom"},
		)),
		WorkType: persist(t, "dim_work_type", "work_type_id", mustTable(t, "dim_work_type",
			[]string{"work_type_name"},
			[]table.Value{"Full-time"},
		)),
		ExperienceLevel: persist(t, "dim_experience_level", "experience_level_id", mustTable(t, "dim_experience_level",
			[]string{"experience_level_name"},
			[]table.Value{"Entry level"},
		)),
	}
}

func TestBuildFact(t *testing.T) {
	listed := time.Date(2023, 7, 4, 10, 0, 0, 0, time.UTC)
	postings := mustTable(t, "postings",
		[]string{"job_id", "title", "original_listed_time", "company_id",
			"location", "formatted_work_type", "formatted_experience_level",
			"remote_allowed", "normalized_salary"},
		[]table.Value{int64(1), "engineer", listed, int64(7),
			"London, United Kingdom", "Full-time", "Entry level",
			true, float64(90000)},
		[]table.Value{int64(2), "analyst", listed, int64(99),
			"Atlantis", "Part-time", "Director",
			false, float64(0)},
	)

	fact, err := BuildFact(postings, factFixtureDims(t))
	if err != nil {
		t.Fatalf("build fact: %v", err)
	}
	if fact.NumRows() != 2 {
		t.Fatalf("want 2 fact rows, got %d", fact.NumRows())
	}

	if v, _ := fact.Value(0, "listing_date_key"); v != int64(20230704) {
		t.Fatalf("date key = %v, want 20230704", v)
	}
	if v, _ := fact.Value(0, "company_id"); v != int64(1) {
		t.Fatalf("company surrogate = %v, want store-assigned 1", v)
	}
	if v, _ := fact.Value(0, "salary_exist"); v != true {
		t.Fatalf("positive salary must set salary_exist: %v", v)
	}

	// Unmatched dimension keys keep the row with null foreign keys.
	for _, col := range []string{"company_id", "location_id", "work_type_id", "experience_level_id"} {
		if v, _ := fact.Value(1, col); v != nil {
			t.Fatalf("unmatched %s = %v, want null", col, v)
		}
	}
	if v, _ := fact.Value(1, "salary_exist"); v != false {
		t.Fatalf("zero salary must clear salary_exist: %v", v)
	}
}

func TestBuildFactRejectsUnpersistedDimension(t *testing.T) {
	dims := factFixtureDims(t)
	dims.Location = warehouse.PersistedTable{}
	postings := mustTable(t, "postings",
		[]string{"job_id", "title", "original_listed_time", "company_id",
			"location", "formatted_work_type", "formatted_experience_level",
			"remote_allowed", "normalized_salary"})
	if _, err := BuildFact(postings, dims); err == nil {
		t.Fatalf("expected error for un-persisted dimension")
	}
}

func TestDateKey(t *testing.T) {
	ts := time.Date(2023, 7, 4, 10, 0, 0, 0, time.UTC)
	got, err := DateKey(ts)
	if err != nil || got != int64(20230704) {
		t.Fatalf("DateKey(time) = %v, %v", got, err)
	}
	got, err = DateKey(float64(ts.UnixMilli()))
	if err != nil || got != int64(20230704) {
		t.Fatalf("DateKey(epoch ms) = %v, %v", got, err)
	}
	got, err = DateKey(nil)
	if err != nil || got != nil {
		t.Fatalf("DateKey(nil) = %v, %v", got, err)
	}
	if _, err := DateKey("tomorrow"); err == nil {
		t.Fatalf("expected error for non-timestamp")
	}
	// Truncation to the UTC day, not the local one.
	late := time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC)
	got, err = DateKey(late)
	if err != nil || got != int64(20231231) {
		t.Fatalf("DateKey(year end) = %v, %v", got, err)
	}
}
