package analysis

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/fireline/fireline/internal/types"
)

func mkComponentRecord(incident, borough string, hour int, turnout, travel float64) types.Record {
	r := mkRecord(incident, 1, time.Date(2023, time.July, 3, 0, 0, 0, 0, time.UTC), hour, "Fire", borough, turnout+travel)
	r.TurnoutSeconds = turnout
	r.TravelSeconds = travel
	return r
}

var allColumns = types.ColumnSet{Turnout: true, Travel: true, DelayCodes: true, Deployment: true}

func TestComponentDecomposition(t *testing.T) {
	// Component medians: turnout 120, travel 200. Per-incident sums are 360,
	// 220 and 380, whose median is 360. The sum of medians (320) must differ,
	// proving medians are not additive.
	records := []types.Record{
		mkComponentRecord("A1", "Camden", 10, 60, 300),
		mkComponentRecord("B2", "Camden", 11, 120, 100),
		mkComponentRecord("C3", "Camden", 12, 180, 200),
	}

	d, err := ComponentDecomposition(records, allColumns)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(float64(d.TurnoutMedianMinutes), 2, 1e-9) {
		t.Errorf("TurnoutMedianMinutes = %v, want 2", d.TurnoutMedianMinutes)
	}
	if !approxEqual(float64(d.TravelMedianMinutes), 200.0/60, 1e-9) {
		t.Errorf("TravelMedianMinutes = %v, want 3.33", d.TravelMedianMinutes)
	}
	if !approxEqual(float64(d.SumOfMediansMinutes), 320.0/60, 1e-9) {
		t.Errorf("SumOfMediansMinutes = %v, want 5.33", d.SumOfMediansMinutes)
	}
	if !approxEqual(float64(d.MedianOfSumMinutes), 6, 1e-9) {
		t.Errorf("MedianOfSumMinutes = %v, want 6", d.MedianOfSumMinutes)
	}
	if approxEqual(float64(d.SumOfMediansMinutes), float64(d.MedianOfSumMinutes), 1e-9) {
		t.Error("sum of medians equals median of sums; the test data should distinguish them")
	}
	if !approxEqual(float64(d.TravelSharePercent), 200.0/320*100, 1e-9) {
		t.Errorf("TravelSharePercent = %v, want 62.5", d.TravelSharePercent)
	}
}

func TestComponentDecompositionMissingColumn(t *testing.T) {
	records := []types.Record{mkComponentRecord("A1", "Camden", 10, 60, 300)}

	_, err := ComponentDecomposition(records, types.ColumnSet{Travel: true})
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn for absent turnout column, got %v", err)
	}
	_, err = ComponentDecomposition(records, types.ColumnSet{Turnout: true})
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn for absent travel column, got %v", err)
	}
}

func TestSlowestBoroughDecomposition(t *testing.T) {
	records := []types.Record{
		mkComponentRecord("A1", "Camden", 10, 60, 120),
		mkComponentRecord("B2", "Bromley", 11, 90, 400),
		mkComponentRecord("C3", "Hackney", 12, 80, 250),
	}

	out, err := SlowestBoroughDecomposition(records, allColumns, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d boroughs, want top 2", len(out))
	}
	if out[0].Borough != "Bromley" || out[1].Borough != "Hackney" {
		t.Errorf("ranking = %s, %s; want Bromley, Hackney", out[0].Borough, out[1].Borough)
	}
	if !approxEqual(out[0].TotalMinutes, 490.0/60, 1e-9) {
		t.Errorf("Bromley total = %v, want 8.17", out[0].TotalMinutes)
	}
}

func TestDelayCodeBreakdown(t *testing.T) {
	date := time.Date(2023, time.July, 3, 0, 0, 0, 0, time.UTC)
	mkDelay := func(id string, attendance float64, code string) types.Record {
		r := mkRecord(id, 1, date, 10, "Fire", "Camden", attendance)
		r.DelayCode = code
		return r
	}

	records := []types.Record{
		mkDelay("A1", 300, ""),                  // within target
		mkDelay("B2", 500, "Traffic calming"),   // exceedance
		mkDelay("C3", 700, "Traffic calming"),   // exceedance
		mkDelay("D4", 800, NotHeldUpCode),       // exceedance, no specific factor
		mkDelay("E5", 900, "Weather"),           // exceedance
		mkDelay("F6", 1000, "Address problems"), // exceedance
		mkDelay("G7", 1100, ""),                 // exceedance without a code, not counted
	}

	db, err := DelayCodeBreakdown(records, allColumns, DefaultTargets(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db.TotalExceedances != 5 {
		t.Fatalf("TotalExceedances = %d, want 5", db.TotalExceedances)
	}
	if len(db.Top) != 2 {
		t.Fatalf("got %d top codes, want 2", len(db.Top))
	}
	if db.Top[0].Description != "Traffic calming" || db.Top[0].Count != 2 {
		t.Errorf("top code = %+v", db.Top[0])
	}
	if db.Other.Count != 2 {
		t.Errorf("Other.Count = %d, want 2 folded codes", db.Other.Count)
	}
	if !approxEqual(db.NotHeldUpPercent, 20, 1e-9) {
		t.Errorf("NotHeldUpPercent = %v, want 20", db.NotHeldUpPercent)
	}

	sum := db.Other.Percent
	for _, s := range db.Top {
		sum += s.Percent
	}
	if !approxEqual(sum, 100, 1e-9) {
		t.Errorf("delay shares sum to %v, want 100", sum)
	}
}

func TestDelayCodeBreakdownMissingColumn(t *testing.T) {
	_, err := DelayCodeBreakdown(nil, types.ColumnSet{}, DefaultTargets(), 4)
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestCrossGroundRate(t *testing.T) {
	date := time.Date(2023, time.July, 3, 0, 0, 0, 0, time.UTC)
	mkDeploy := func(id, ground, from string) types.Record {
		r := mkRecord(id, 1, date, 10, "Fire", "Camden", 300)
		r.IncidentStationGround = ground
		r.DeployedFromStation = from
		return r
	}

	records := []types.Record{
		mkDeploy("A1", "Soho", "Soho"),
		mkDeploy("B2", "Soho", "Euston"),
		mkDeploy("C3", "", ""), // no deployment data, excluded from the base
	}

	rate, err := CrossGroundRate(records, allColumns)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(rate, 50, 1e-9) {
		t.Errorf("CrossGroundRate = %v, want 50", rate)
	}

	empty, err := CrossGroundRate([]types.Record{mkDeploy("D4", "", "")}, allColumns)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsNaN(empty) {
		t.Errorf("rate without deployment data = %v, want NaN", empty)
	}
}

func TestComponentStability(t *testing.T) {
	records := []types.Record{
		mkComponentRecord("A1", "Camden", 10, 100, 200),
		mkComponentRecord("B2", "Bromley", 11, 110, 500),
		mkComponentRecord("C3", "Hackney", 12, 105, 350),
	}

	sc, err := ComponentStability(records, allColumns)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(float64(sc.TurnoutBoroughMinMinutes), 100.0/60, 1e-9) || !approxEqual(float64(sc.TurnoutBoroughMaxMinutes), 110.0/60, 1e-9) {
		t.Errorf("turnout spread = %v..%v", sc.TurnoutBoroughMinMinutes, sc.TurnoutBoroughMaxMinutes)
	}
	if !approxEqual(float64(sc.TravelBoroughMinMinutes), 200.0/60, 1e-9) || !approxEqual(float64(sc.TravelBoroughMaxMinutes), 500.0/60, 1e-9) {
		t.Errorf("travel spread = %v..%v", sc.TravelBoroughMinMinutes, sc.TravelBoroughMaxMinutes)
	}
	if sc.TravelBoroughIQRSeconds <= sc.TurnoutBoroughIQRSeconds {
		t.Errorf("travel IQR (%v) should exceed turnout IQR (%v) in this scenario",
			sc.TravelBoroughIQRSeconds, sc.TurnoutBoroughIQRSeconds)
	}
}
