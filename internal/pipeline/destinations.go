package pipeline

import (
	"fmt"

	"jobmart/internal/warehouse"
)

// Source dataset names, matching the CSV basenames the extractor sees.
const (
	DatasetPostings      = "postings"
	DatasetCompanies     = "companies"
	DatasetIndustries    = "industries"
	DatasetSkills        = "skills"
	DatasetJobIndustries = "job_industries"
	DatasetJobSkills     = "job_skills"
)

// RequiredDatasets lists every dataset a run consumes, in read order.
var RequiredDatasets = []string{
	DatasetPostings,
	DatasetCompanies,
	DatasetIndustries,
	DatasetSkills,
	DatasetJobIndustries,
	DatasetJobSkills,
}

// Destinations names the warehouse tables a run writes. Table names are
// configuration, not pipeline semantics.
type Destinations struct {
	// Staging maps dataset names to their raw landing tables; datasets
	// without an entry are not staged.
	Staging map[string]warehouse.Destination

	DimIndustry        warehouse.Destination
	DimSkill           warehouse.Destination
	DimCompany         warehouse.Destination
	DimLocation        warehouse.Destination
	DimWorkType        warehouse.Destination
	DimExperienceLevel warehouse.Destination
	FactTechJob        warehouse.Destination
	BridgeJobIndustry  warehouse.Destination
	BridgeJobSkill     warehouse.Destination
}

// Validate ensures every non-staging destination is named.
func (d Destinations) Validate() error {
	named := map[string]warehouse.Destination{
		"dim_industry":         d.DimIndustry,
		"dim_skill":            d.DimSkill,
		"dim_company":          d.DimCompany,
		"dim_location":         d.DimLocation,
		"dim_work_type":        d.DimWorkType,
		"dim_experience_level": d.DimExperienceLevel,
		"fact_tech_job":        d.FactTechJob,
		"bridge_job_industry":  d.BridgeJobIndustry,
		"bridge_job_skill":     d.BridgeJobSkill,
	}
	for key, dest := range named {
		if dest.Table == "" {
			return fmt.Errorf("destination %s not configured", key)
		}
	}
	return nil
}

// IdentityColumns maps each surrogate-keyed destination to the column
// the store assigns on write. The memory warehouse driver uses this to
// emulate store-side key assignment.
func (d Destinations) IdentityColumns() map[string]string {
	return map[string]string{
		d.DimCompany.String():         "company_sk",
		d.DimLocation.String():        "location_id",
		d.DimWorkType.String():        "work_type_id",
		d.DimExperienceLevel.String(): "experience_level_id",
		d.FactTechJob.String():        "job_sk",
	}
}
