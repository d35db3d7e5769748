package geo

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/fireline/fireline/internal/types"
)

// Regression is an ordinary least-squares fit of y against x with the usual
// summary statistics. PValue is the two-sided p-value of the correlation
// under the null hypothesis of no linear relationship.
type Regression struct {
	Slope     types.Float `json:"slope"`
	Intercept types.Float `json:"intercept"`
	R         types.Float `json:"r"`
	RSquared  types.Float `json:"r_squared"`
	PValue    types.Float `json:"p_value"`
	N         int         `json:"n"`
}

// Linregress fits y = intercept + slope*x by ordinary least squares.
func Linregress(x, y []float64) Regression {
	n := len(x)
	nan := types.Float(math.NaN())
	if n < 2 || len(y) != n {
		return Regression{Slope: nan, Intercept: nan, R: nan, RSquared: nan, PValue: nan, N: n}
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)
	r := stat.Correlation(x, y, nil)
	r2 := r * r

	p := math.NaN()
	if n > 2 && !math.IsNaN(r) && r2 < 1 {
		t := r * math.Sqrt(float64(n-2)/(1-r2))
		dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
		p = 2 * dist.Survival(math.Abs(t))
	} else if r2 >= 1 {
		p = 0
	}

	return Regression{
		Slope:     types.Float(slope),
		Intercept: types.Float(intercept),
		R:         types.Float(r),
		RSquared:  types.Float(r2),
		PValue:    types.Float(p),
		N:         n,
	}
}

// AreaRegressions relates borough area to response performance: overall and
// within each classification against median response time, plus area against
// compliance rate.
type AreaRegressions struct {
	MedianVsArea      Regression `json:"median_vs_area"`
	MedianVsAreaInner Regression `json:"median_vs_area_inner"`
	MedianVsAreaOuter Regression `json:"median_vs_area_outer"`
	ComplianceVsArea  Regression `json:"compliance_vs_area"`
}

// ComputeAreaRegressions fits the area regressions over aggregates that
// joined successfully against the boundary data. Boroughs without a boundary
// match have no area and are excluded.
func ComputeAreaRegressions(aggs []Aggregate) AreaRegressions {
	var areas, medians, compliance []float64
	var innerAreas, innerMedians []float64
	var outerAreas, outerMedians []float64

	for i := range aggs {
		a := &aggs[i]
		if !a.HasBoundary() {
			continue
		}
		areas = append(areas, float64(a.AreaKm2))
		medians = append(medians, float64(a.MedianResponseMinutes))
		compliance = append(compliance, float64(a.CompliancePercent))
		switch a.AreaType {
		case InnerLondon:
			innerAreas = append(innerAreas, float64(a.AreaKm2))
			innerMedians = append(innerMedians, float64(a.MedianResponseMinutes))
		case OuterLondon:
			outerAreas = append(outerAreas, float64(a.AreaKm2))
			outerMedians = append(outerMedians, float64(a.MedianResponseMinutes))
		}
	}

	return AreaRegressions{
		MedianVsArea:      Linregress(areas, medians),
		MedianVsAreaInner: Linregress(innerAreas, innerMedians),
		MedianVsAreaOuter: Linregress(outerAreas, outerMedians),
		ComplianceVsArea:  Linregress(areas, compliance),
	}
}
