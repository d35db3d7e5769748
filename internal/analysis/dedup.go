package analysis

import (
	"sort"

	"github.com/fireline/fireline/internal/types"
)

// DeduplicateIncidents reduces mobilisation-level records to incident level:
// records are ordered by PumpOrder ascending (stable, so ties keep their
// original input order) and only the first row per IncidentNumber is kept.
// Attendance time is a property of the incident, constant across its pumps,
// so the surviving first-pump row carries every incident-scoped attribute.
//
// The input slice is never modified; the result is a fresh slice.
func DeduplicateIncidents(records []types.Record) []types.Record {
	ordered := make([]types.Record, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PumpOrder < ordered[j].PumpOrder
	})

	seen := make(map[string]struct{}, len(ordered))
	incidents := make([]types.Record, 0, len(ordered))
	for i := range ordered {
		num := ordered[i].IncidentNumber
		if _, ok := seen[num]; ok {
			continue
		}
		seen[num] = struct{}{}
		incidents = append(incidents, ordered[i])
	}
	return incidents
}
