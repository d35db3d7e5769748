package analysis

import (
	"math"
	"sort"

	"github.com/fireline/fireline/internal/types"
)

// ResponseBandLabels are the attendance bands of the stacked performance
// chart, in presentation order.
var ResponseBandLabels = []string{"<= 6 min", "6-8 min", "8-10 min", "> 10 min"}

// responseBand assigns an attendance time (seconds) to a band index.
// Boundaries are right-closed: exactly 360s still meets the target.
func responseBand(seconds float64) int {
	switch {
	case seconds <= 360:
		return 0
	case seconds <= 480:
		return 1
	case seconds <= 600:
		return 2
	default:
		return 3
	}
}

// BandShare is one band's share within an incident group.
type BandShare struct {
	Band    string  `json:"band"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// GroupBands holds the band distribution for one incident group. Percentages
// are within the group, so each group's bands sum to 100.
type GroupBands struct {
	IncidentGroup string      `json:"incident_group"`
	Bands         []BandShare `json:"bands"`
	Count         int         `json:"count"`
}

// ResponseBands partitions each incident group's attendance times into the
// four target bands.
func ResponseBands(incidents []types.Record) []GroupBands {
	counts := make(map[string]*[4]int)
	totals := make(map[string]int)
	for i := range incidents {
		r := &incidents[i]
		if !r.HasAttendance() {
			continue
		}
		c := counts[r.IncidentGroup]
		if c == nil {
			c = &[4]int{}
			counts[r.IncidentGroup] = c
		}
		c[responseBand(r.AttendanceSeconds)]++
		totals[r.IncidentGroup]++
	}

	groups := make([]string, 0, len(counts))
	for g := range counts {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	out := make([]GroupBands, 0, len(groups))
	for _, g := range groups {
		gb := GroupBands{IncidentGroup: g, Count: totals[g]}
		for b, label := range ResponseBandLabels {
			gb.Bands = append(gb.Bands, BandShare{
				Band:    label,
				Count:   counts[g][b],
				Percent: float64(counts[g][b]) / float64(totals[g]) * 100,
			})
		}
		out = append(out, gb)
	}
	return out
}

// SeasonalPoint is the median response time for one calendar month.
type SeasonalPoint struct {
	Month         int     `json:"month"`
	MonthName     string  `json:"month_name"`
	MedianMinutes float64 `json:"median_minutes"`
	Count         int     `json:"count"`
}

// SeasonalSeries is a monthly median line for one incident group.
type SeasonalSeries struct {
	IncidentGroup string          `json:"incident_group"`
	Points        []SeasonalPoint `json:"points"`
}

// SeasonalMedians computes the median attendance time per calendar month for
// each incident group plus an all-incidents line. Minutes are derived at this
// boundary only.
func SeasonalMedians(incidents []types.Record) []SeasonalSeries {
	perGroup := make(map[string]map[int][]float64)
	total := make(map[int][]float64)
	for i := range incidents {
		r := &incidents[i]
		if perGroup[r.IncidentGroup] == nil {
			perGroup[r.IncidentGroup] = make(map[int][]float64)
		}
		perGroup[r.IncidentGroup][r.Month] = append(perGroup[r.IncidentGroup][r.Month], r.AttendanceSeconds)
		total[r.Month] = append(total[r.Month], r.AttendanceSeconds)
	}

	buildPoints := func(byMonth map[int][]float64) []SeasonalPoint {
		points := make([]SeasonalPoint, 0, 12)
		for m := 1; m <= 12; m++ {
			xs, ok := byMonth[m]
			if !ok {
				continue
			}
			med := Median(xs)
			if math.IsNaN(med) {
				continue
			}
			points = append(points, SeasonalPoint{
				Month:         m,
				MonthName:     types.MonthNames[m-1],
				MedianMinutes: med / 60,
				Count:         len(xs),
			})
		}
		return points
	}

	groups := make([]string, 0, len(perGroup))
	for g := range perGroup {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	series := make([]SeasonalSeries, 0, len(groups)+1)
	series = append(series, SeasonalSeries{
		IncidentGroup: AllIncidentsSeries,
		Points:        buildPoints(total),
	})
	for _, g := range groups {
		series = append(series, SeasonalSeries{
			IncidentGroup: g,
			Points:        buildPoints(perGroup[g]),
		})
	}
	return series
}

// HourlyPoint is the median response time for one hour of the day.
type HourlyPoint struct {
	Hour          int     `json:"hour"`
	MedianMinutes float64 `json:"median_minutes"`
	Count         int     `json:"count"`
}

// HourlyMedians computes the median attendance time per hour of call.
func HourlyMedians(incidents []types.Record) []HourlyPoint {
	byHour := make(map[int][]float64)
	for i := range incidents {
		r := &incidents[i]
		if r.HourOfCall >= 0 && r.HourOfCall <= 23 {
			byHour[r.HourOfCall] = append(byHour[r.HourOfCall], r.AttendanceSeconds)
		}
	}

	points := make([]HourlyPoint, 0, 24)
	for h := 0; h < 24; h++ {
		xs, ok := byHour[h]
		if !ok {
			continue
		}
		med := Median(xs)
		if math.IsNaN(med) {
			continue
		}
		points = append(points, HourlyPoint{
			Hour:          h,
			MedianMinutes: med / 60,
			Count:         len(xs),
		})
	}
	return points
}

// BoxStats summarizes one incident group's attendance distribution for the
// boxplot view, in minutes.
type BoxStats struct {
	IncidentGroup string      `json:"incident_group"`
	MedianMinutes types.Float `json:"median_minutes"`
	Q1Minutes     types.Float `json:"q1_minutes"`
	Q3Minutes     types.Float `json:"q3_minutes"`
	IQRMinutes    types.Float `json:"iqr_minutes"`
	Count         int         `json:"count"`
}

// AttendanceBoxStats computes quartile statistics per incident group.
func AttendanceBoxStats(incidents []types.Record) []BoxStats {
	byGroup := make(map[string][]float64)
	for i := range incidents {
		r := &incidents[i]
		byGroup[r.IncidentGroup] = append(byGroup[r.IncidentGroup], r.AttendanceSeconds)
	}

	groups := make([]string, 0, len(byGroup))
	for g := range byGroup {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	out := make([]BoxStats, 0, len(groups))
	for _, g := range groups {
		xs := byGroup[g]
		q1 := Quantile(0.25, xs) / 60
		q3 := Quantile(0.75, xs) / 60
		out = append(out, BoxStats{
			IncidentGroup: g,
			MedianMinutes: types.Float(Median(xs) / 60),
			Q1Minutes:     types.Float(q1),
			Q3Minutes:     types.Float(q3),
			IQRMinutes:    types.Float(q3 - q1),
			Count:         len(xs),
		})
	}
	return out
}
