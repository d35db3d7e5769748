package analysis

import (
	"sort"

	"github.com/fireline/fireline/internal/types"
)

// GroupShare is one incident group's slice of the filtered workload.
type GroupShare struct {
	IncidentGroup string  `json:"incident_group"`
	Count         int     `json:"count"`
	Percent       float64 `json:"percent"`
}

// canonicalGroupOrder is the presentation order used across the dashboard.
var canonicalGroupOrder = []string{"Fire", "Special Service", "False Alarm"}

// IncidentMix computes the share of each incident group among the
// deduplicated incidents, in canonical presentation order with any
// unexpected categories appended alphabetically.
func IncidentMix(incidents []types.Record) []GroupShare {
	counts := make(map[string]int)
	for i := range incidents {
		counts[incidents[i].IncidentGroup]++
	}

	ordered := make([]string, 0, len(counts))
	for _, g := range canonicalGroupOrder {
		if _, ok := counts[g]; ok {
			ordered = append(ordered, g)
		}
	}
	var extra []string
	for g := range counts {
		known := false
		for _, c := range canonicalGroupOrder {
			if g == c {
				known = true
				break
			}
		}
		if !known {
			extra = append(extra, g)
		}
	}
	sort.Strings(extra)
	ordered = append(ordered, extra...)

	total := float64(len(incidents))
	mix := make([]GroupShare, 0, len(ordered))
	for _, g := range ordered {
		mix = append(mix, GroupShare{
			IncidentGroup: g,
			Count:         counts[g],
			Percent:       float64(counts[g]) / total * 100,
		})
	}
	return mix
}

// MonthlyCount is the incident count for one calendar month.
type MonthlyCount struct {
	Month     int    `json:"month"`
	MonthName string `json:"month_name"`
	Count     int    `json:"count"`
}

// MonthlySeries is a monthly trend line for one incident group. The series
// labeled AllIncidentsSeries aggregates every group.
type MonthlySeries struct {
	IncidentGroup string         `json:"incident_group"`
	Points        []MonthlyCount `json:"points"`
}

// AllIncidentsSeries labels the trend line that covers every incident group.
const AllIncidentsSeries = "All Incidents"

// MonthlyTrends computes incident counts per calendar month, per incident
// group plus an all-incidents total. Months with no incidents are omitted
// from a series.
func MonthlyTrends(incidents []types.Record) []MonthlySeries {
	perGroup := make(map[string]map[int]int)
	total := make(map[int]int)
	for i := range incidents {
		g := incidents[i].IncidentGroup
		if perGroup[g] == nil {
			perGroup[g] = make(map[int]int)
		}
		perGroup[g][incidents[i].Month]++
		total[incidents[i].Month]++
	}

	buildPoints := func(counts map[int]int) []MonthlyCount {
		points := make([]MonthlyCount, 0, 12)
		for m := 1; m <= 12; m++ {
			if c, ok := counts[m]; ok {
				points = append(points, MonthlyCount{
					Month:     m,
					MonthName: types.MonthNames[m-1],
					Count:     c,
				})
			}
		}
		return points
	}

	groups := make([]string, 0, len(perGroup))
	for g := range perGroup {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	series := make([]MonthlySeries, 0, len(groups)+1)
	series = append(series, MonthlySeries{
		IncidentGroup: AllIncidentsSeries,
		Points:        buildPoints(total),
	})
	for _, g := range groups {
		series = append(series, MonthlySeries{
			IncidentGroup: g,
			Points:        buildPoints(perGroup[g]),
		})
	}
	return series
}

// MonthlyPeak summarizes the seasonal swing of one trend line.
type MonthlyPeak struct {
	PeakMonth        string  `json:"peak_month"`
	PeakCount        int     `json:"peak_count"`
	LowMonth         string  `json:"low_month"`
	LowCount         int     `json:"low_count"`
	SeasonalRangePct float64 `json:"seasonal_range_pct"`
}

// SeasonalPeak finds the busiest and quietest months of a series. The range
// percentage is the peak-to-trough swing relative to the trough.
func SeasonalPeak(points []MonthlyCount) (MonthlyPeak, bool) {
	if len(points) == 0 {
		return MonthlyPeak{}, false
	}
	peak := points[0]
	low := points[0]
	for _, p := range points[1:] {
		if p.Count > peak.Count {
			peak = p
		}
		if p.Count < low.Count {
			low = p
		}
	}
	mp := MonthlyPeak{
		PeakMonth: peak.MonthName,
		PeakCount: peak.Count,
		LowMonth:  low.MonthName,
		LowCount:  low.Count,
	}
	if low.Count > 0 {
		mp.SeasonalRangePct = float64(peak.Count-low.Count) / float64(low.Count) * 100
	}
	return mp, true
}

// Heatmap is a weekday-by-hour incident count matrix, Monday first.
type Heatmap struct {
	Weekdays []string `json:"weekdays"`
	// Counts[d][h] is the incident count for weekday d at hour h (0-23).
	Counts [][]int `json:"counts"`
}

// WeekdayHourHeatmap counts incidents per weekday and hour of call,
// optionally restricted to one incident group ("All" for no restriction).
func WeekdayHourHeatmap(incidents []types.Record, incidentGroup string) Heatmap {
	hm := Heatmap{
		Weekdays: types.WeekdayNames,
		Counts:   make([][]int, len(types.WeekdayNames)),
	}
	for d := range hm.Counts {
		hm.Counts[d] = make([]int, 24)
	}

	dayIndex := make(map[string]int, len(types.WeekdayNames))
	for i, d := range types.WeekdayNames {
		dayIndex[d] = i
	}

	for i := range incidents {
		r := &incidents[i]
		if incidentGroup != "" && incidentGroup != All && r.IncidentGroup != incidentGroup {
			continue
		}
		d, ok := dayIndex[r.Weekday]
		if !ok || r.HourOfCall < 0 || r.HourOfCall > 23 {
			continue
		}
		hm.Counts[d][r.HourOfCall]++
	}
	return hm
}
