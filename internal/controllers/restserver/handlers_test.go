package restserver

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/fireline/fireline/internal/dataset"
	"github.com/fireline/fireline/internal/geo"
	"github.com/fireline/fireline/internal/log"
	"github.com/fireline/fireline/internal/types"
	"github.com/fireline/fireline/pkg/config"
)

func testRecord(id string, pump int, date time.Time, hour int, group, borough string, attendance float64) types.Record {
	r := types.Record{
		IncidentNumber:    id,
		PumpOrder:         pump,
		CallDate:          date,
		HourOfCall:        hour,
		IncidentGroup:     group,
		BoroughName:       borough,
		AttendanceSeconds: attendance,
		TurnoutSeconds:    math.NaN(),
		TravelSeconds:     math.NaN(),
	}
	r.DeriveTemporal()
	return r
}

func testController(t *testing.T) *Controller {
	t.Helper()
	if err := log.Init(false); err != nil {
		t.Fatal(err)
	}

	jul23 := time.Date(2023, time.July, 3, 0, 0, 0, 0, time.UTC)
	jan24 := time.Date(2024, time.January, 9, 0, 0, 0, 0, time.UTC)
	records := []types.Record{
		testRecord("A1", 1, jul23, 14, "Fire", "Camden", 300),
		testRecord("A1", 2, jul23, 14, "Fire", "Camden", 300), // second pump, deduplicated away
		testRecord("B2", 1, jul23, 2, "False Alarm", "Bromley", 360),
		testRecord("C3", 1, jan24, 18, "Fire", "Camden", 420),
		testRecord("D4", 1, jan24, 9, "Special Service", "Hackney", 900),
	}
	store, err := dataset.NewStore(records, types.ColumnSet{})
	if err != nil {
		t.Fatal(err)
	}

	boroughs := []geo.Borough{
		{Name: "Camden", Key: "CAMDEN", AreaKm2: 21.8, Inner: true},
		{Name: "Bromley", Key: "BROMLEY", AreaKm2: 150.1, Inner: false},
	}

	cfg := &config.ConfigData{}
	cfg.ApplyDefaults()

	var wg sync.WaitGroup
	ctrl, err := NewController(context.Background(), &wg, cfg, store, boroughs, nil, log.GetSugaredLogger())
	if err != nil {
		t.Fatal(err)
	}
	return ctrl
}

func TestGetFilters(t *testing.T) {
	ctrl := testController(t)
	req := httptest.NewRequest(http.MethodGet, "/api/filters", nil)
	w := httptest.NewRecorder()
	ctrl.handlers.GetFilters(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp FiltersResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Years) != 3 || resp.Years[0] != "All" {
		t.Errorf("Years = %v, want All plus two years", resp.Years)
	}
	if resp.Months[0] != "All" || len(resp.Months) != 13 {
		t.Errorf("Months = %v", resp.Months)
	}
	if resp.MinYear != 2023 || resp.MaxYear != 2024 {
		t.Errorf("year span = %d-%d", resp.MinYear, resp.MaxYear)
	}
}

func TestGetSummary(t *testing.T) {
	ctrl := testController(t)
	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	w := httptest.NewRecorder()
	ctrl.handlers.GetSummary(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	var resp SummaryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.KPIs.TotalIncidents != 4 {
		t.Errorf("TotalIncidents = %d, want 4 after dedup", resp.KPIs.TotalIncidents)
	}
	if resp.KPIs.MedianResponseMinutes != 6.5 {
		t.Errorf("MedianResponseMinutes = %v, want 6.5", resp.KPIs.MedianResponseMinutes)
	}
	if resp.Scope.Period != "2023-2024" {
		t.Errorf("Period = %q", resp.Scope.Period)
	}
	if len(resp.Insights) == 0 {
		t.Error("expected insight lines")
	}
}

func TestGetSummaryFiltered(t *testing.T) {
	ctrl := testController(t)
	req := httptest.NewRequest(http.MethodGet, "/api/summary?year=2023&incident_type=Fire", nil)
	w := httptest.NewRecorder()
	ctrl.handlers.GetSummary(w, req)

	var resp SummaryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.KPIs.TotalIncidents != 1 {
		t.Errorf("TotalIncidents = %d, want 1", resp.KPIs.TotalIncidents)
	}
	if resp.Scope.IncidentScope != "Fire incidents" {
		t.Errorf("IncidentScope = %q", resp.Scope.IncidentScope)
	}
}

func TestGetSummaryBadSelector(t *testing.T) {
	ctrl := testController(t)
	req := httptest.NewRequest(http.MethodGet, "/api/summary?month=Smarch", nil)
	w := httptest.NewRecorder()
	ctrl.handlers.GetSummary(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetSummaryEmptyResult(t *testing.T) {
	ctrl := testController(t)
	req := httptest.NewRequest(http.MethodGet, "/api/summary?year=1999", nil)
	w := httptest.NewRecorder()
	ctrl.handlers.GetSummary(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for an empty filter result", w.Code)
	}
}

func TestGetSummaryMsgPack(t *testing.T) {
	ctrl := testController(t)
	req := httptest.NewRequest(http.MethodGet, "/api/summary?format=msgpack", nil)
	w := httptest.NewRecorder()
	ctrl.handlers.GetSummary(w, req)

	if ct := w.Header().Get("Content-Type"); ct != "application/x-msgpack" {
		t.Fatalf("Content-Type = %q", ct)
	}
	var resp map[string]any
	dec := msgpack.NewDecoder(w.Body)
	if err := dec.Decode(&resp); err != nil {
		t.Fatalf("decoding msgpack: %v", err)
	}
	if _, ok := resp["kpis"]; !ok {
		t.Errorf("msgpack payload missing kpis: %v", resp)
	}
}

func TestGetCompositionHeatmapType(t *testing.T) {
	ctrl := testController(t)
	req := httptest.NewRequest(http.MethodGet, "/api/composition?heatmap_type=Fire", nil)
	w := httptest.NewRecorder()
	ctrl.handlers.GetComposition(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	var resp CompositionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	// 2023-07-03 is a Monday: the Fire incident called at 14:00 stays, the
	// False Alarm at 02:00 is excluded by the heatmap restriction.
	if resp.Heatmap.Counts[0][14] != 1 {
		t.Errorf("Monday 14:00 = %d, want 1", resp.Heatmap.Counts[0][14])
	}
	if resp.Heatmap.Counts[0][2] != 0 {
		t.Errorf("Monday 02:00 = %d, want 0 under the Fire restriction", resp.Heatmap.Counts[0][2])
	}
}

func TestGetCompositionUnknownHeatmapType(t *testing.T) {
	ctrl := testController(t)
	req := httptest.NewRequest(http.MethodGet, "/api/composition?heatmap_type=Flood", nil)
	w := httptest.NewRecorder()
	ctrl.handlers.GetComposition(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for an unknown heatmap_type", w.Code)
	}
}

func TestGetDriversMissingColumns(t *testing.T) {
	ctrl := testController(t)
	req := httptest.NewRequest(http.MethodGet, "/api/drivers", nil)
	w := httptest.NewRecorder()
	ctrl.handlers.GetDrivers(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp DriversResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Decomposition != nil {
		t.Error("decomposition should be omitted without turnout/travel columns")
	}
	if len(resp.MissingColumns) == 0 {
		t.Error("expected the missing columns to be reported")
	}
}

func TestGetGeographic(t *testing.T) {
	ctrl := testController(t)
	req := httptest.NewRequest(http.MethodGet, "/api/geographic", nil)
	w := httptest.NewRecorder()
	ctrl.handlers.GetGeographic(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp GeographicResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Boroughs) != 3 {
		t.Errorf("got %d boroughs, want 3", len(resp.Boroughs))
	}
	if resp.InnerOuter == nil {
		t.Error("expected an inner/outer comparison: both classes have incidents")
	}
}

func TestGetGeographicVolumeMetric(t *testing.T) {
	ctrl := testController(t)
	req := httptest.NewRequest(http.MethodGet, "/api/geographic?metric=volume", nil)
	w := httptest.NewRecorder()
	ctrl.handlers.GetGeographic(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp GeographicResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	var volumeLine string
	for _, line := range resp.Insights {
		if strings.HasPrefix(line, "Incident volume ranges") {
			volumeLine = line
		}
	}
	if volumeLine == "" {
		t.Fatalf("no volume ranking insight in %v", resp.Insights)
	}
	// Camden handles 2 incidents, the busiest borough, so it leads the line.
	if !strings.Contains(volumeLine, "from 2 in Camden") {
		t.Errorf("ranking line = %q, want the busiest borough first", volumeLine)
	}
}

func TestGetHealth(t *testing.T) {
	ctrl := testController(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	ctrl.handlers.GetHealth(w, req)

	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Status != "ok" || resp.Records != 5 {
		t.Errorf("health = %+v", resp)
	}
}
