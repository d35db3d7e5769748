package analysis

import (
	"testing"
	"time"

	"github.com/fireline/fireline/internal/types"
)

func TestDeduplicateIncidents(t *testing.T) {
	date := time.Date(2023, time.July, 3, 0, 0, 0, 0, time.UTC)
	// Second pump of A1 appears before its first pump in the input.
	records := []types.Record{
		mkRecord("A1", 2, date, 14, "Fire", "Camden", 300),
		mkRecord("A1", 1, date, 14, "Fire", "Camden", 300),
		mkRecord("B2", 1, date, 2, "False Alarm", "Bromley", 360),
	}

	got := DeduplicateIncidents(records)
	if len(got) != 2 {
		t.Fatalf("got %d incidents, want 2", len(got))
	}
	if got[0].IncidentNumber != "A1" || got[0].PumpOrder != 1 {
		t.Errorf("incident A1 kept pump %d, want pump 1", got[0].PumpOrder)
	}
	if got[1].IncidentNumber != "B2" {
		t.Errorf("second incident = %s, want B2", got[1].IncidentNumber)
	}
}

func TestDeduplicateStableOnTies(t *testing.T) {
	date := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	// Equal pump orders must keep input order, so C3 stays before D4.
	records := []types.Record{
		mkRecord("C3", 1, date, 9, "Fire", "Camden", 420),
		mkRecord("D4", 1, date, 9, "Fire", "Hackney", 900),
	}

	got := DeduplicateIncidents(records)
	if len(got) != 2 || got[0].IncidentNumber != "C3" || got[1].IncidentNumber != "D4" {
		t.Fatalf("tie order not preserved: %+v", incidentNumbers(got))
	}
}

func TestDeduplicateIdempotent(t *testing.T) {
	date := time.Date(2023, time.July, 3, 0, 0, 0, 0, time.UTC)
	records := []types.Record{
		mkRecord("A1", 2, date, 14, "Fire", "Camden", 300),
		mkRecord("A1", 1, date, 14, "Fire", "Camden", 300),
		mkRecord("B2", 1, date, 2, "False Alarm", "Bromley", 360),
	}

	once := DeduplicateIncidents(records)
	twice := DeduplicateIncidents(once)
	if len(once) != len(twice) {
		t.Fatalf("dedup changed an already-deduplicated set: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].IncidentNumber != twice[i].IncidentNumber {
			t.Errorf("index %d: %s vs %s", i, once[i].IncidentNumber, twice[i].IncidentNumber)
		}
	}
}

func TestDeduplicateDoesNotMutateInput(t *testing.T) {
	date := time.Date(2023, time.July, 3, 0, 0, 0, 0, time.UTC)
	records := []types.Record{
		mkRecord("A1", 2, date, 14, "Fire", "Camden", 300),
		mkRecord("A1", 1, date, 14, "Fire", "Camden", 300),
	}

	DeduplicateIncidents(records)
	if records[0].PumpOrder != 2 {
		t.Fatal("input slice was reordered")
	}
}

func incidentNumbers(records []types.Record) []string {
	out := make([]string, len(records))
	for i := range records {
		out[i] = records[i].IncidentNumber
	}
	return out
}
