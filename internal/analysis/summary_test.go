package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/fireline/fireline/internal/types"
)

// fourIncidents is the worked reference scenario: attendance times of 300,
// 360, 420 and 900 seconds against the 360s target and 600s extreme
// threshold.
func fourIncidents() []types.Record {
	date := time.Date(2023, time.July, 3, 0, 0, 0, 0, time.UTC)
	return []types.Record{
		mkRecord("A1", 1, date, 10, "Fire", "Camden", 300),
		mkRecord("B2", 1, date, 11, "Fire", "Camden", 360),
		mkRecord("C3", 1, date, 12, "False Alarm", "Bromley", 420),
		mkRecord("D4", 1, date, 13, "Special Service", "Hackney", 900),
	}
}

func TestComputeKPIs(t *testing.T) {
	k := ComputeKPIs(fourIncidents(), DefaultTargets())

	if k.TotalIncidents != 4 {
		t.Errorf("TotalIncidents = %d, want 4", k.TotalIncidents)
	}
	if !approxEqual(float64(k.MedianResponseMinutes), 6.5, 1e-9) {
		t.Errorf("MedianResponseMinutes = %v, want 6.5 (390s)", k.MedianResponseMinutes)
	}
	if !approxEqual(float64(k.WithinTargetPercent), 50, 1e-9) {
		t.Errorf("WithinTargetPercent = %v, want 50: 360s exactly on target counts as within", k.WithinTargetPercent)
	}
	if !approxEqual(float64(k.P90ResponseMinutes), 756.0/60, 1e-9) {
		t.Errorf("P90ResponseMinutes = %v, want 12.6", k.P90ResponseMinutes)
	}
	if !approxEqual(float64(k.ExtremeDelayPercent), 25, 1e-9) {
		t.Errorf("ExtremeDelayPercent = %v, want 25", k.ExtremeDelayPercent)
	}
	if !approxEqual(float64(k.WithinTargetPercent)+RateAbove(360, []float64{300, 360, 420, 900}), 100, 1e-9) {
		t.Error("compliance and exceedance shares must sum to 100")
	}
}

func TestComputeKPIsSkipsMissingAttendance(t *testing.T) {
	records := fourIncidents()
	records = append(records, mkRecord("E5", 1, records[0].CallDate, 14, "Fire", "Camden", math.NaN()))

	k := ComputeKPIs(records, DefaultTargets())
	if k.TotalIncidents != 5 {
		t.Errorf("TotalIncidents = %d, want 5: missing attendance still counts the incident", k.TotalIncidents)
	}
	if !approxEqual(float64(k.MedianResponseMinutes), 6.5, 1e-9) {
		t.Errorf("MedianResponseMinutes = %v, want 6.5: missing values are skipped in the median", k.MedianResponseMinutes)
	}
}

func TestResponseDistribution(t *testing.T) {
	d := ResponseDistribution(fourIncidents(), 25, 15)

	if len(d.Bins) != 25 {
		t.Fatalf("got %d bins, want 25", len(d.Bins))
	}
	if !approxEqual(d.CapMinutes, 15, 1e-9) {
		t.Errorf("CapMinutes = %v, want 15", d.CapMinutes)
	}
	// 900s = 15 minutes sits exactly on the cap and overflows.
	if !approxEqual(d.PercentAboveCap, 25, 1e-9) {
		t.Errorf("PercentAboveCap = %v, want 25", d.PercentAboveCap)
	}

	sum := d.PercentAboveCap
	for _, b := range d.Bins {
		sum += b.Percent
	}
	if !approxEqual(sum, 100, 1e-9) {
		t.Errorf("bin percentages plus overflow sum to %v, want 100", sum)
	}

	if !approxEqual(float64(d.MedianMinutes), 6.5, 1e-9) {
		t.Errorf("MedianMinutes = %v, want 6.5", d.MedianMinutes)
	}
	if !approxEqual(float64(d.MeanMedianGapMinutes), float64(d.MeanMinutes-d.MedianMinutes), 1e-9) {
		t.Errorf("MeanMedianGapMinutes inconsistent: %v", d.MeanMedianGapMinutes)
	}
}

func TestResponseDistributionNegativeAttendance(t *testing.T) {
	date := time.Date(2023, time.July, 3, 0, 0, 0, 0, time.UTC)
	records := []types.Record{
		mkRecord("A1", 1, date, 10, "Fire", "Camden", 300),
		mkRecord("B2", 1, date, 11, "Fire", "Camden", -5),
	}

	d := ResponseDistribution(records, 25, 15)
	if !approxEqual(d.Bins[0].Percent, 50, 1e-9) {
		t.Errorf("first bin = %v%%, want 50: a negative value lands in the first bin", d.Bins[0].Percent)
	}

	sum := d.PercentAboveCap
	for _, b := range d.Bins {
		sum += b.Percent
	}
	if !approxEqual(sum, 100, 1e-9) {
		t.Errorf("bin percentages plus overflow sum to %v, want 100", sum)
	}
}

func TestResponseDistributionEmptyBins(t *testing.T) {
	d := ResponseDistribution(nil, 25, 15)
	if len(d.Bins) != 0 {
		t.Errorf("expected no bins for an empty set, got %d", len(d.Bins))
	}
	if !math.IsNaN(float64(d.MedianMinutes)) {
		t.Errorf("MedianMinutes = %v, want NaN", d.MedianMinutes)
	}
}
