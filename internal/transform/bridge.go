package transform

import (
	"jobmart/internal/table"
	"jobmart/internal/warehouse"
)

// BridgeSpec names the columns a bridge build joins and emits.
type BridgeSpec struct {
	DimKeyCol        string // dimension key column in the association table
	JoinKey          string // natural key shared by association and fact
	FactSurrogateCol string // store-assigned fact key column
	OutputFactCol    string // emitted name for the fact key
}

// BuildBridge resolves a many-to-many association into a bridge table
// keyed by the fact's store-assigned surrogate. The association is
// inner-joined to the persisted fact on the natural key, so
// associations to postings filtered out upstream are dropped. When dim
// is non-nil, rows whose dimension key is not among the dimension's
// known values are silently pruned. Output is deduplicated on the
// (fact surrogate, dimension key) pair.
func BuildBridge(assoc *table.Table, dim *warehouse.PersistedTable, fact warehouse.PersistedTable, spec BridgeSpec) (*table.Table, error) {
	factKeys, err := lookupColumn(fact, spec.JoinKey, spec.FactSurrogateCol)
	if err != nil {
		return nil, err
	}

	var validDimKeys map[string]struct{}
	if dim != nil {
		dimKeyIdx, err := dim.Table().Index(spec.DimKeyCol)
		if err != nil {
			return nil, err
		}
		validDimKeys = make(map[string]struct{}, dim.Table().NumRows())
		for r := 0; r < dim.Table().NumRows(); r++ {
			if v := dim.Table().At(r, dimKeyIdx); v != nil {
				validDimKeys[table.Key(v)] = struct{}{}
			}
		}
	}

	joinIdx, err := assoc.Index(spec.JoinKey)
	if err != nil {
		return nil, err
	}
	dimIdx, err := assoc.Index(spec.DimKeyCol)
	if err != nil {
		return nil, err
	}

	out := table.New("bridge_"+spec.DimKeyCol, spec.OutputFactCol, spec.DimKeyCol)
	for r := 0; r < assoc.NumRows(); r++ {
		natural := assoc.At(r, joinIdx)
		if natural == nil {
			continue
		}
		surrogate, ok := factKeys[table.Key(natural)]
		if !ok {
			continue // association to a posting absent from the fact
		}
		dimKey := assoc.At(r, dimIdx)
		if validDimKeys != nil {
			if dimKey == nil {
				continue
			}
			if _, known := validDimKeys[table.Key(dimKey)]; !known {
				continue
			}
		}
		if err := out.Append(surrogate, dimKey); err != nil {
			return nil, err
		}
	}
	return out.Distinct(), nil
}
