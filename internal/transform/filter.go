package transform

import (
	"regexp"

	"jobmart/internal/table"
)

// techPattern matches industry names on whole words only, so "IT" never
// matches inside words like "within".
var techPattern = regexp.MustCompile(`(?i)\b(software|data|information|it|technology)\b`)

// FilterTechPostings narrows postings to those associated with a
// technology industry. Industry names are matched against the keyword
// pattern, resolved to posting identifiers through the association
// table, and the posting table is restricted to that identifier set.
func FilterTechPostings(postings, industries, postingIndustries *table.Table) (*table.Table, error) {
	nameIdx, err := industries.Index("industry_name")
	if err != nil {
		return nil, err
	}
	indIDIdx, err := industries.Index("industry_id")
	if err != nil {
		return nil, err
	}
	techIndustries := make(map[string]struct{})
	for r := 0; r < industries.NumRows(); r++ {
		name, ok := industries.At(r, nameIdx).(string)
		if !ok || !techPattern.MatchString(name) {
			continue
		}
		techIndustries[table.Key(industries.At(r, indIDIdx))] = struct{}{}
	}

	assocIndIdx, err := postingIndustries.Index("industry_id")
	if err != nil {
		return nil, err
	}
	assocJobIdx, err := postingIndustries.Index("job_id")
	if err != nil {
		return nil, err
	}
	techJobs := make(map[string]struct{})
	for r := 0; r < postingIndustries.NumRows(); r++ {
		if _, ok := techIndustries[table.Key(postingIndustries.At(r, assocIndIdx))]; !ok {
			continue
		}
		techJobs[table.Key(postingIndustries.At(r, assocJobIdx))] = struct{}{}
	}

	jobIdx, err := postings.Index("job_id")
	if err != nil {
		return nil, err
	}
	out := table.New(postings.Name(), postings.Columns()...)
	for r := 0; r < postings.NumRows(); r++ {
		if _, ok := techJobs[table.Key(postings.At(r, jobIdx))]; !ok {
			continue
		}
		if err := out.Append(postings.Row(r)...); err != nil {
			return nil, err
		}
	}
	return out, nil
}
