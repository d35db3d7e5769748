package geo

import (
	"math"
	"sort"

	"github.com/fireline/fireline/internal/analysis"
	"github.com/fireline/fireline/internal/types"
)

// Aggregate holds one borough's computed statistics joined against its
// boundary attributes. AreaKm2 and IncidentsPer1000 are NaN when the borough
// name had no match in the boundary or population reference; such rows are
// excluded from area-based statistics rather than treated as zero.
type Aggregate struct {
	Borough               string      `json:"borough"`
	MedianResponseMinutes types.Float `json:"median_response_minutes"`
	CompliancePercent     types.Float `json:"compliance_percent"`
	IncidentCount         int         `json:"incident_count"`
	AreaKm2               types.Float `json:"area_km2"`
	AreaType              string      `json:"area_type,omitempty"`
	Population            int         `json:"population,omitempty"`
	IncidentsPer1000      types.Float `json:"incidents_per_1000"`
}

// HasBoundary reports whether the boundary join succeeded for this borough.
func (a *Aggregate) HasBoundary() bool {
	return !math.IsNaN(float64(a.AreaKm2))
}

// AggregateBoroughs computes per-borough statistics over the deduplicated
// incident set and joins them against the boundary and population reference
// data by normalized name. Results are sorted by borough name.
func AggregateBoroughs(incidents []types.Record, boroughs []Borough, population map[string]int, t analysis.Targets) []Aggregate {
	byKey := make(map[string]*Borough, len(boroughs))
	for i := range boroughs {
		byKey[boroughs[i].Key] = &boroughs[i]
	}

	attendance := make(map[string][]float64)
	names := make(map[string]string)
	for i := range incidents {
		r := &incidents[i]
		if r.BoroughName == "" {
			continue
		}
		key := NormalizeName(r.BoroughName)
		attendance[key] = append(attendance[key], r.AttendanceSeconds)
		names[key] = r.BoroughName
	}

	out := make([]Aggregate, 0, len(attendance))
	for key, xs := range attendance {
		agg := Aggregate{
			Borough:               names[key],
			MedianResponseMinutes: types.Float(analysis.Median(xs) / 60),
			CompliancePercent:     types.Float(analysis.RateAtOrBelow(t.AttendanceTargetSeconds, xs)),
			IncidentCount:         len(xs),
			AreaKm2:               types.Float(math.NaN()),
			IncidentsPer1000:      types.Float(math.NaN()),
		}
		if b, ok := byKey[key]; ok {
			agg.AreaKm2 = types.Float(b.AreaKm2)
			agg.AreaType = b.AreaType()
		}
		if pop, ok := population[key]; ok && pop > 0 {
			agg.Population = pop
			agg.IncidentsPer1000 = types.Float(float64(len(xs)) / float64(pop) * 1000)
		}
		out = append(out, agg)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Borough < out[j].Borough })
	return out
}

// InnerOuterComparison contrasts the mean of borough median response times
// between Inner and Outer London.
type InnerOuterComparison struct {
	InnerMeanMedianMinutes types.Float `json:"inner_mean_median_minutes"`
	OuterMeanMedianMinutes types.Float `json:"outer_mean_median_minutes"`
	GapMinutes             types.Float `json:"gap_minutes"`
	GapSeconds             types.Float `json:"gap_seconds"`
	GapPercent             types.Float `json:"gap_percent"`
}

// CompareInnerOuter averages the borough medians within each classification.
// Boroughs without a boundary match carry no classification and are skipped.
func CompareInnerOuter(aggs []Aggregate) (InnerOuterComparison, bool) {
	var inner, outer []float64
	for i := range aggs {
		switch aggs[i].AreaType {
		case InnerLondon:
			inner = append(inner, float64(aggs[i].MedianResponseMinutes))
		case OuterLondon:
			outer = append(outer, float64(aggs[i].MedianResponseMinutes))
		}
	}
	if len(inner) == 0 || len(outer) == 0 {
		return InnerOuterComparison{}, false
	}

	innerMean := analysis.Mean(inner)
	outerMean := analysis.Mean(outer)
	gap := outerMean - innerMean
	cmp := InnerOuterComparison{
		InnerMeanMedianMinutes: types.Float(innerMean),
		OuterMeanMedianMinutes: types.Float(outerMean),
		GapMinutes:             types.Float(gap),
		GapSeconds:             types.Float(gap * 60),
	}
	if innerMean > 0 {
		cmp.GapPercent = types.Float(gap / innerMean * 100)
	}
	return cmp, true
}

// RankBy sorts a copy of the aggregates by the given metric, ascending or
// descending. Metric is one of "median", "compliance" or "volume".
func RankBy(aggs []Aggregate, metric string, descending bool) []Aggregate {
	ranked := make([]Aggregate, len(aggs))
	copy(ranked, aggs)

	less := func(i, j int) bool {
		switch metric {
		case "compliance":
			return ranked[i].CompliancePercent < ranked[j].CompliancePercent
		case "volume":
			return ranked[i].IncidentCount < ranked[j].IncidentCount
		default:
			return ranked[i].MedianResponseMinutes < ranked[j].MedianResponseMinutes
		}
	}
	if descending {
		sort.SliceStable(ranked, func(i, j int) bool { return less(j, i) })
	} else {
		sort.SliceStable(ranked, less)
	}
	return ranked
}
