package source

import (
	"context"
	"fmt"
	"sort"

	"jobmart/internal/state"
)

// Extract compares the reader's current fingerprints to the map
// committed after the last successful run and returns the names of
// datasets that are new or modified, together with the full current
// map. A nil previous map is treated as empty. Extract has no side
// effects: persisting the current map is the caller's responsibility
// and must wait until downstream processing succeeds.
func Extract(ctx context.Context, r Reader, prev state.Map) (changed []string, current state.Map, err error) {
	entries, err := r.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list sources: %w", err)
	}
	current = make(state.Map, len(entries))
	for _, e := range entries {
		current[e.Name] = e.Fingerprint
		if prevFP, ok := prev[e.Name]; !ok || prevFP != e.Fingerprint {
			changed = append(changed, e.Name)
		}
	}
	sort.Strings(changed)
	return changed, current, nil
}
