package transform

import (
	"fmt"
	"strings"

	"jobmart/internal/table"
	"jobmart/internal/transform/countries"
)

// DeriveDimension builds a dimension from the distinct non-null values
// of keyCol: one row per value, columns [idCol, nameCol]. Identifiers
// are assigned sequentially from 1 in first-observed order; they are
// provisional and stable across re-derivation, but are never loaded to
// the store, which assigns its own surrogate keys on write.
func DeriveDimension(t *table.Table, keyCol, idCol, nameCol string) (*table.Table, error) {
	values, err := t.DistinctValues(keyCol)
	if err != nil {
		return nil, err
	}
	out := table.New("dim_"+keyCol, idCol, nameCol)
	for i, v := range values {
		if err := out.Append(int64(i+1), v); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ParseLocation splits a free-text locale string into a region and a
// recognized country. The first comma-separated token that resolves to
// a country wins; all remaining tokens are rejoined into the region.
// Unresolved or empty input yields NULL for both.
func ParseLocation(loc table.Value) (region, country table.Value) {
	s, ok := loc.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var regionParts []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if name, isCountry := countries.Lookup(part); isCountry && country == nil {
			country = name
			continue
		}
		regionParts = append(regionParts, part)
	}
	if len(regionParts) > 0 {
		region = strings.Join(regionParts, ", ")
	}
	return region, country
}

// TransformLocationDimension derives the location dimension: one row
// per distinct original locale string, columns [locationCol, region,
// country], with duplicates across the full derived tuple collapsed.
func TransformLocationDimension(t *table.Table, locationCol string) (*table.Table, error) {
	j, err := t.Index(locationCol)
	if err != nil {
		return nil, err
	}
	out := table.New("dim_location", locationCol, "region", "country")
	for r := 0; r < t.NumRows(); r++ {
		region, country := ParseLocation(t.At(r, j))
		if err := out.Append(t.At(r, j), region, country); err != nil {
			return nil, err
		}
	}
	return out.Distinct(), nil
}

// TransformCompanyDimension projects the company attributes the
// dimension keeps, renames the display name to company_name, and
// coerces company_size to a nullable integer.
func TransformCompanyDimension(companies *table.Table) (*table.Table, error) {
	out, err := companies.Project("company_id", "name", "company_size", "description", "url")
	if err != nil {
		return nil, err
	}
	out, err = out.RenameColumn("name", "company_name")
	if err != nil {
		return nil, err
	}
	sizeIdx, err := out.Index("company_size")
	if err != nil {
		return nil, err
	}
	for r := 0; r < out.NumRows(); r++ {
		v := out.At(r, sizeIdx)
		if v == nil {
			continue
		}
		n, ok := table.Int(v)
		if !ok {
			return nil, fmt.Errorf("company_size row %d: not an integer: %v", r, v)
		}
		out.Set(r, sizeIdx, n)
	}
	return out, nil
}
