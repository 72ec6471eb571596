package transform

import (
	"fmt"
	"time"

	"jobmart/internal/table"
	"jobmart/internal/warehouse"
)

// FactDims carries the dimensions the fact joins against. Each must
// have been read back from the store after loading, so every row holds
// the surrogate key the store assigned; the PersistedTable type makes
// an un-persisted dimension unrepresentable here.
type FactDims struct {
	Company         warehouse.PersistedTable // company_sk, company_id, ...
	Location        warehouse.PersistedTable // location_id, location, ...
	WorkType        warehouse.PersistedTable // work_type_id, work_type_name
	ExperienceLevel warehouse.PersistedTable // experience_level_id, experience_level_name
}

// BuildFact joins filtered tech postings against the persisted
// dimensions to produce the fact table. Dimension joins are left-outer
// on the natural key: an unmatched posting keeps its row with a NULL
// foreign key. The date key is the listing timestamp's UTC calendar day
// encoded as an 8-digit integer, and salary_exist is true iff a
// strictly positive salary is present.
func BuildFact(techPostings *table.Table, dims FactDims) (*table.Table, error) {
	companyKeys, err := lookupColumn(dims.Company, "company_id", "company_sk")
	if err != nil {
		return nil, err
	}
	locationKeys, err := lookupColumn(dims.Location, "location", "location_id")
	if err != nil {
		return nil, err
	}
	workTypeKeys, err := lookupColumn(dims.WorkType, "work_type_name", "work_type_id")
	if err != nil {
		return nil, err
	}
	expLevelKeys, err := lookupColumn(dims.ExperienceLevel, "experience_level_name", "experience_level_id")
	if err != nil {
		return nil, err
	}

	idx, err := columnIndexes(techPostings,
		"job_id", "title", "original_listed_time", "company_id",
		"location", "formatted_work_type", "formatted_experience_level",
		"remote_allowed", "normalized_salary")
	if err != nil {
		return nil, err
	}

	out := table.New("fact_tech_job",
		"job_id", "job_title", "listing_date_key", "company_id",
		"location_id", "work_type_id", "experience_level_id",
		"remote_allowed", "salary_exist", "normalized_salary")
	for r := 0; r < techPostings.NumRows(); r++ {
		at := func(col string) table.Value { return techPostings.At(r, idx[col]) }

		dateKey, err := DateKey(at("original_listed_time"))
		if err != nil {
			return nil, fmt.Errorf("posting row %d: %w", r, err)
		}
		salary := at("normalized_salary")
		salaryVal, salaryOK := table.Float(salary)

		if err := out.Append(
			at("job_id"),
			at("title"),
			dateKey,
			joined(companyKeys, at("company_id")),
			joined(locationKeys, at("location")),
			joined(workTypeKeys, at("formatted_work_type")),
			joined(expLevelKeys, at("formatted_experience_level")),
			at("remote_allowed"),
			salaryOK && salaryVal > 0,
			salary,
		); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DateKey truncates a listing timestamp to its UTC calendar day and
// encodes it as YYYYMMDD. The timestamp may be a time.Time or an
// epoch-milliseconds numeric; NULL yields NULL.
func DateKey(v table.Value) (table.Value, error) {
	if v == nil {
		return nil, nil
	}
	ts, ok := v.(time.Time)
	if !ok {
		ms, numeric := table.Float(v)
		if !numeric {
			return nil, fmt.Errorf("not a timestamp: %v", v)
		}
		ts = time.UnixMilli(int64(ms)).UTC()
	}
	ts = ts.UTC()
	return int64(ts.Year()*10000 + int(ts.Month())*100 + ts.Day()), nil
}

// lookupColumn builds a natural-key -> surrogate-key map from a
// persisted dimension.
func lookupColumn(dim warehouse.PersistedTable, naturalCol, surrogateCol string) (map[string]table.Value, error) {
	if dim.IsZero() {
		return nil, fmt.Errorf("dimension for %s has not been persisted", naturalCol)
	}
	t := dim.Table()
	nat, err := t.Index(naturalCol)
	if err != nil {
		return nil, err
	}
	sur, err := t.Index(surrogateCol)
	if err != nil {
		return nil, err
	}
	keys := make(map[string]table.Value, t.NumRows())
	for r := 0; r < t.NumRows(); r++ {
		if v := t.At(r, nat); v != nil {
			keys[table.Key(v)] = t.At(r, sur)
		}
	}
	return keys, nil
}

func joined(keys map[string]table.Value, natural table.Value) table.Value {
	if natural == nil {
		return nil
	}
	return keys[table.Key(natural)] // missing -> nil, the left-outer case
}

func columnIndexes(t *table.Table, cols ...string) (map[string]int, error) {
	idx := make(map[string]int, len(cols))
	for _, c := range cols {
		j, err := t.Index(c)
		if err != nil {
			return nil, err
		}
		idx[c] = j
	}
	return idx, nil
}
