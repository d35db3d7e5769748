package restserver

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/fireline/fireline/internal/analysis"
	"github.com/fireline/fireline/internal/geo"
	"github.com/fireline/fireline/internal/log"
	"github.com/fireline/fireline/internal/narrative"
	"github.com/fireline/fireline/internal/types"
	"github.com/fireline/fireline/pkg/responseformat"
)

// Histogram shape used by the summary distribution view.
const (
	distributionBins       = 25
	distributionCapMinutes = 15
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// filteredIncidents parses the filter selectors, applies them and
// deduplicates to one record per incident. On failure it writes the error
// reply itself and reports ok=false.
func (h *Handlers) filteredIncidents(w http.ResponseWriter, req *http.Request) ([]types.Record, analysis.Filter, bool) {
	q := req.URL.Query()
	f, err := analysis.ParseFilter(q.Get("year"), q.Get("month"), q.Get("incident_type"))
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
		return nil, f, false
	}

	filtered, err := analysis.Apply(h.controller.store.Records(), f)
	if err != nil {
		if errors.Is(err, analysis.ErrEmptyResult) {
			h.formatter.WriteError(w, req, http.StatusNotFound, "no incidents match the selected filters")
		} else {
			log.Errorf("filtering incidents: %v", err)
			h.formatter.WriteError(w, req, http.StatusInternalServerError, "internal error")
		}
		return nil, f, false
	}

	return analysis.DeduplicateIncidents(filtered), f, true
}

// scope describes the filtered slice for response metadata and insight text.
func (h *Handlers) scope(f analysis.Filter, incidents int) Scope {
	minYear, maxYear := h.controller.store.YearSpan()
	return Scope{
		Period:        narrative.PeriodLabel(f, minYear, maxYear),
		IncidentScope: narrative.IncidentLabel(f.IncidentGroup),
		Incidents:     incidents,
	}
}

func (h *Handlers) write(w http.ResponseWriter, req *http.Request, data any) {
	if err := h.formatter.WriteResponse(w, req, data, nil); err != nil {
		log.Errorf("writing response: %v", err)
	}
}

// GetFilters returns the selector values for each filter dimension.
func (h *Handlers) GetFilters(w http.ResponseWriter, req *http.Request) {
	store := h.controller.store
	minYear, maxYear := store.YearSpan()

	years := []string{analysis.All}
	for _, y := range store.Years() {
		years = append(years, strconv.Itoa(y))
	}

	resp := FiltersResponse{
		Years:          years,
		Months:         append([]string{analysis.All}, types.MonthNames...),
		IncidentGroups: append([]string{analysis.All}, store.IncidentGroups()...),
		Boroughs:       store.Boroughs(),
		MinYear:        minYear,
		MaxYear:        maxYear,
	}
	h.write(w, req, resp)
}

// GetSummary returns the executive summary: headline KPIs and the response
// time distribution.
func (h *Handlers) GetSummary(w http.ResponseWriter, req *http.Request) {
	incidents, f, ok := h.filteredIncidents(w, req)
	if !ok {
		return
	}

	t := h.controller.targets
	kpis := analysis.ComputeKPIs(incidents, t)
	dist := analysis.ResponseDistribution(incidents, distributionBins, distributionCapMinutes)

	insights := narrative.SummaryInsights(kpis, t)
	insights = append(insights, narrative.DistributionInsight(dist))

	h.write(w, req, SummaryResponse{
		Scope:        h.scope(f, len(incidents)),
		KPIs:         kpis,
		Distribution: dist,
		Insights:     insights,
	})
}

// GetComposition returns the incident mix, monthly trends and the
// weekday/hour heatmap. The heatmap can be restricted to one incident group
// via heatmap_type, independently of the incident_type filter.
func (h *Handlers) GetComposition(w http.ResponseWriter, req *http.Request) {
	incidents, f, ok := h.filteredIncidents(w, req)
	if !ok {
		return
	}

	heatmapType := req.URL.Query().Get("heatmap_type")
	if heatmapType == "" {
		heatmapType = analysis.All
	}
	if heatmapType != analysis.All {
		known := false
		for _, g := range h.controller.store.IncidentGroups() {
			if g == heatmapType {
				known = true
				break
			}
		}
		if !known {
			h.formatter.WriteError(w, req, http.StatusBadRequest, fmt.Sprintf("unknown heatmap_type %q", heatmapType))
			return
		}
	}

	mix := analysis.IncidentMix(incidents)
	trends := analysis.MonthlyTrends(incidents)
	heatmap := analysis.WeekdayHourHeatmap(incidents, heatmapType)

	insights := narrative.MixInsights(mix)
	for _, series := range trends {
		if series.IncidentGroup != analysis.AllIncidentsSeries {
			continue
		}
		if peak, ok := analysis.SeasonalPeak(series.Points); ok {
			insights = append(insights, narrative.SeasonalInsight("Incidents", peak))
		}
	}

	h.write(w, req, CompositionResponse{
		Scope:    h.scope(f, len(incidents)),
		Mix:      mix,
		Trends:   trends,
		Heatmap:  heatmap,
		Insights: insights,
	})
}

// GetPerformance returns the target band distribution, seasonal and hourly
// medians and the per-group quartile statistics.
func (h *Handlers) GetPerformance(w http.ResponseWriter, req *http.Request) {
	incidents, f, ok := h.filteredIncidents(w, req)
	if !ok {
		return
	}

	t := h.controller.targets
	kpis := analysis.ComputeKPIs(incidents, t)

	h.write(w, req, PerformanceResponse{
		Scope:    h.scope(f, len(incidents)),
		KPIs:     kpis,
		Bands:    analysis.ResponseBands(incidents),
		Seasonal: analysis.SeasonalMedians(incidents),
		Hourly:   analysis.HourlyMedians(incidents),
		BoxStats: analysis.AttendanceBoxStats(incidents),
		Insights: narrative.SummaryInsights(kpis, t),
	})
}

// GetGeographic returns the borough aggregates, the Inner/Outer comparison
// and the area regressions.
func (h *Handlers) GetGeographic(w http.ResponseWriter, req *http.Request) {
	incidents, f, ok := h.filteredIncidents(w, req)
	if !ok {
		return
	}

	c := h.controller
	aggs := geo.AggregateBoroughs(incidents, c.boroughs, c.population, c.targets)
	regs := geo.ComputeAreaRegressions(aggs)

	metric := req.URL.Query().Get("metric")
	insights := []string{narrative.MapInsight(metric)}
	// compliance and volume rank best-first descending; median best-first ascending
	descending := metric == "compliance" || metric == "volume"
	ranked := geo.RankBy(aggs, metric, descending)
	if line := narrative.RankingInsight(ranked, metric); line != "" {
		insights = append(insights, line)
	}

	resp := GeographicResponse{
		Scope:       h.scope(f, len(incidents)),
		Boroughs:    aggs,
		Regressions: regs,
	}
	if cmp, ok := geo.CompareInnerOuter(aggs); ok {
		resp.InnerOuter = &cmp
		insights = append(insights, narrative.InnerOuterInsights(cmp)...)
	}
	insights = append(insights, narrative.RegressionInsights(regs)...)
	resp.Insights = insights

	h.write(w, req, resp)
}

// GetDrivers returns the turnout/travel decomposition and the delay code
// breakdown. Sections whose source columns the dataset lacks are omitted.
func (h *Handlers) GetDrivers(w http.ResponseWriter, req *http.Request) {
	incidents, f, ok := h.filteredIncidents(w, req)
	if !ok {
		return
	}

	c := h.controller
	cols := c.store.Columns()
	resp := DriversResponse{Scope: h.scope(f, len(incidents))}
	var insights []string

	if cols.Turnout && cols.Travel {
		if d, err := analysis.ComponentDecomposition(incidents, cols); err == nil {
			resp.Decomposition = &d
			insights = append(insights, narrative.DecompositionInsights(d)...)
		}
		if slowest, err := analysis.SlowestBoroughDecomposition(incidents, cols, 10); err == nil {
			resp.SlowestBoroughs = slowest
		}
		if hourly, err := analysis.HourlyComponents(incidents, cols); err == nil {
			resp.HourlyComponents = hourly
		}
		if sc, err := analysis.ComponentStability(incidents, cols); err == nil {
			resp.Stability = &sc
			insights = append(insights, narrative.StabilityInsight(sc))
		}
	} else {
		if !cols.Turnout {
			resp.MissingColumns = append(resp.MissingColumns, "TurnoutTimeSeconds")
		}
		if !cols.Travel {
			resp.MissingColumns = append(resp.MissingColumns, "TravelTimeSeconds")
		}
	}

	if cols.DelayCodes {
		if db, err := analysis.DelayCodeBreakdown(incidents, cols, c.targets, 4); err == nil {
			resp.Delays = &db
			insights = append(insights, narrative.DelayInsights(db)...)
		}
	} else {
		resp.MissingColumns = append(resp.MissingColumns, "DelayCode_Description")
	}

	if cols.Deployment {
		if rate, err := analysis.CrossGroundRate(incidents, cols); err == nil && !math.IsNaN(rate) {
			resp.CrossGroundPercent = &rate
		}
	} else {
		resp.MissingColumns = append(resp.MissingColumns, "DeployedFromStation_Name")
	}

	resp.Insights = insights
	h.write(w, req, resp)
}

// GetHealth reports liveness and the loaded dataset's shape.
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	minYear, maxYear := h.controller.store.YearSpan()
	h.write(w, req, HealthResponse{
		Status:  "ok",
		Records: h.controller.store.Len(),
		MinYear: minYear,
		MaxYear: maxYear,
	})
}
