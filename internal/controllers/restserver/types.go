package restserver

import (
	"github.com/fireline/fireline/internal/analysis"
	"github.com/fireline/fireline/internal/geo"
)

// FiltersResponse lists the selector values the dashboard offers. Each
// dimension is prefixed with the "All" sentinel.
type FiltersResponse struct {
	Years          []string `json:"years"`
	Months         []string `json:"months"`
	IncidentGroups []string `json:"incident_groups"`
	Boroughs       []string `json:"boroughs"`
	MinYear        int      `json:"min_year"`
	MaxYear        int      `json:"max_year"`
}

// Scope describes the filtered slice a response was computed over.
type Scope struct {
	Period        string `json:"period"`
	IncidentScope string `json:"incident_scope"`
	Incidents     int    `json:"incidents"`
}

// SummaryResponse is the executive summary page payload.
type SummaryResponse struct {
	Scope        Scope                 `json:"scope"`
	KPIs         analysis.KPIs         `json:"kpis"`
	Distribution analysis.Distribution `json:"distribution"`
	Insights     []string              `json:"insights"`
}

// CompositionResponse is the incident composition page payload.
type CompositionResponse struct {
	Scope    Scope                    `json:"scope"`
	Mix      []analysis.GroupShare    `json:"mix"`
	Trends   []analysis.MonthlySeries `json:"trends"`
	Heatmap  analysis.Heatmap         `json:"heatmap"`
	Insights []string                 `json:"insights"`
}

// PerformanceResponse is the response performance page payload.
type PerformanceResponse struct {
	Scope    Scope                     `json:"scope"`
	KPIs     analysis.KPIs             `json:"kpis"`
	Bands    []analysis.GroupBands     `json:"bands"`
	Seasonal []analysis.SeasonalSeries `json:"seasonal"`
	Hourly   []analysis.HourlyPoint    `json:"hourly"`
	BoxStats []analysis.BoxStats       `json:"box_stats"`
	Insights []string                  `json:"insights"`
}

// GeographicResponse is the geographic performance page payload. InnerOuter
// is omitted when the filtered data covers only one of the two areas.
type GeographicResponse struct {
	Scope       Scope                     `json:"scope"`
	Boroughs    []geo.Aggregate           `json:"boroughs"`
	InnerOuter  *geo.InnerOuterComparison `json:"inner_outer,omitempty"`
	Regressions geo.AreaRegressions       `json:"regressions"`
	Insights    []string                  `json:"insights"`
}

// DriversResponse is the drivers page payload. Sections depending on columns
// the dataset does not carry are omitted and listed in MissingColumns.
type DriversResponse struct {
	Scope              Scope                        `json:"scope"`
	Decomposition      *analysis.Decomposition      `json:"decomposition,omitempty"`
	SlowestBoroughs    []analysis.BoroughComponents `json:"slowest_boroughs,omitempty"`
	HourlyComponents   []analysis.HourComponents    `json:"hourly_components,omitempty"`
	Stability          *analysis.StabilityCheck     `json:"stability,omitempty"`
	Delays             *analysis.DelayBreakdown     `json:"delays,omitempty"`
	CrossGroundPercent *float64                     `json:"cross_ground_percent,omitempty"`
	MissingColumns     []string                     `json:"missing_columns,omitempty"`
	Insights           []string                     `json:"insights"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
	MinYear int    `json:"min_year"`
	MaxYear int    `json:"max_year"`
}
