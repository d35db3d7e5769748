package analysis

import (
	"math"

	"github.com/fireline/fireline/internal/types"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Targets holds the fixed response-time thresholds, in seconds.
type Targets struct {
	AttendanceTargetSeconds float64
	ExtremeDelaySeconds     float64
}

// DefaultTargets returns the official benchmarks: first pump within 6
// minutes, extreme delays above 10 minutes.
func DefaultTargets() Targets {
	return Targets{
		AttendanceTargetSeconds: 360,
		ExtremeDelaySeconds:     600,
	}
}

// KPIs are the headline figures shown on the summary and performance pages.
// Values are converted to minutes at this boundary; all intermediate
// aggregation stays in seconds.
type KPIs struct {
	TotalIncidents        int         `json:"total_incidents"`
	MedianResponseMinutes types.Float `json:"median_response_minutes"`
	WithinTargetPercent   types.Float `json:"within_target_percent"`
	P90ResponseMinutes    types.Float `json:"p90_response_minutes"`
	ExtremeDelayPercent   types.Float `json:"extreme_delay_percent"`
}

// attendanceSeconds collects the attendance time of each incident.
func attendanceSeconds(incidents []types.Record) []float64 {
	xs := make([]float64, len(incidents))
	for i := range incidents {
		xs[i] = incidents[i].AttendanceSeconds
	}
	return xs
}

// ComputeKPIs reduces a deduplicated incident set to the headline figures.
func ComputeKPIs(incidents []types.Record, t Targets) KPIs {
	xs := attendanceSeconds(incidents)
	return KPIs{
		TotalIncidents:        len(incidents),
		MedianResponseMinutes: types.Float(Median(xs) / 60),
		WithinTargetPercent:   types.Float(RateAtOrBelow(t.AttendanceTargetSeconds, xs)),
		P90ResponseMinutes:    types.Float(Quantile(0.90, xs) / 60),
		ExtremeDelayPercent:   types.Float(RateAbove(t.ExtremeDelaySeconds, xs)),
	}
}

// HistogramBin is one bar of the response time distribution, in minutes.
type HistogramBin struct {
	LowMinutes  float64 `json:"low_minutes"`
	HighMinutes float64 `json:"high_minutes"`
	Percent     float64 `json:"percent"`
}

// Distribution describes the shape of the attendance time distribution. Bins
// cover [0, CapMinutes); incidents beyond the cap are reported separately via
// PercentAboveCap so the bin percentages and the overflow sum to 100.
type Distribution struct {
	Bins                 []HistogramBin `json:"bins"`
	CapMinutes           float64        `json:"cap_minutes"`
	PercentAboveCap      float64        `json:"percent_above_cap"`
	MedianMinutes        types.Float    `json:"median_minutes"`
	MeanMinutes          types.Float    `json:"mean_minutes"`
	P90Minutes           types.Float    `json:"p90_minutes"`
	Skewness             types.Float    `json:"skewness"`
	MeanMedianGapMinutes types.Float    `json:"mean_median_gap_minutes"`
}

// ResponseDistribution bins attendance times (in minutes) into binCount equal
// bins capped at capMinutes.
func ResponseDistribution(incidents []types.Record, binCount int, capMinutes float64) Distribution {
	minutes := make([]float64, 0, len(incidents))
	for i := range incidents {
		if incidents[i].HasAttendance() {
			minutes = append(minutes, incidents[i].AttendanceSeconds/60)
		}
	}

	d := Distribution{
		CapMinutes:    capMinutes,
		MedianMinutes: types.Float(Median(minutes)),
		MeanMinutes:   types.Float(Mean(minutes)),
		P90Minutes:    types.Float(Quantile(0.90, minutes)),
		Skewness:      types.Float(Skewness(minutes)),
	}
	d.MeanMedianGapMinutes = d.MeanMinutes - d.MedianMinutes

	if len(minutes) == 0 || binCount <= 0 {
		return d
	}

	inRange := make([]float64, 0, len(minutes))
	above := 0
	for _, m := range minutes {
		if m < 0 {
			// malformed cells can parse to negative times; clamp into the first bin
			m = 0
		}
		if m >= capMinutes {
			above++
			continue
		}
		inRange = append(inRange, m)
	}
	d.PercentAboveCap = float64(above) / float64(len(minutes)) * 100

	dividers := make([]float64, binCount+1)
	floats.Span(dividers, 0, capMinutes)
	// stat.Histogram requires sorted samples within the divider range
	sorted := validSorted(inRange)
	counts := stat.Histogram(nil, dividers, sorted, nil)

	d.Bins = make([]HistogramBin, binCount)
	total := float64(len(minutes))
	for i := 0; i < binCount; i++ {
		d.Bins[i] = HistogramBin{
			LowMinutes:  dividers[i],
			HighMinutes: dividers[i+1],
			Percent:     counts[i] / total * 100,
		}
	}
	return d
}

// MinutesOrNaN converts seconds to minutes, preserving missing values.
func MinutesOrNaN(seconds float64) float64 {
	if math.IsNaN(seconds) {
		return math.NaN()
	}
	return seconds / 60
}
