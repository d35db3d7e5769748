// Package narrative renders computed statistics into the short plain-text
// insight lines shown alongside each dashboard view.
package narrative

import (
	"fmt"

	"github.com/fireline/fireline/internal/analysis"
	"github.com/fireline/fireline/internal/geo"
)

// PeriodLabel describes the filtered time window in words, e.g. "2021-2025",
// "2023, January-December", "July months between 2021 and 2025" or
// "July 2023". minYear and maxYear bound the loaded dataset.
func PeriodLabel(f analysis.Filter, minYear, maxYear int) string {
	switch {
	case f.AllYears() && f.AllMonths():
		if minYear == maxYear {
			return fmt.Sprintf("%d", minYear)
		}
		return fmt.Sprintf("%d-%d", minYear, maxYear)
	case f.AllMonths():
		return fmt.Sprintf("%d, January-December", f.Year)
	case f.AllYears():
		if minYear == maxYear {
			return fmt.Sprintf("%s %d", f.Month, minYear)
		}
		return fmt.Sprintf("%s months between %d and %d", f.Month, minYear, maxYear)
	default:
		return fmt.Sprintf("%s %d", f.Month, f.Year)
	}
}

// IncidentLabel names the filtered incident scope, e.g. "all incidents" or
// "Fire incidents".
func IncidentLabel(incidentGroup string) string {
	if incidentGroup == "" || incidentGroup == analysis.All {
		return "all incidents"
	}
	return incidentGroup + " incidents"
}

// SummaryInsights narrates the headline figures.
func SummaryInsights(k analysis.KPIs, t analysis.Targets) []string {
	targetMin := t.AttendanceTargetSeconds / 60
	extremeMin := t.ExtremeDelaySeconds / 60
	return []string{
		fmt.Sprintf("The median first-pump response time is %.1f minutes across %d incidents.",
			k.MedianResponseMinutes, k.TotalIncidents),
		fmt.Sprintf("%.1f%% of incidents were reached within the %.0f-minute target.",
			k.WithinTargetPercent, targetMin),
		fmt.Sprintf("90%% of incidents were reached within %.1f minutes, and %.1f%% took longer than %.0f minutes.",
			k.P90ResponseMinutes, k.ExtremeDelayPercent, extremeMin),
	}
}

// DistributionInsight narrates the shape of the response time histogram.
func DistributionInsight(d analysis.Distribution) string {
	shape := "roughly symmetric"
	if d.Skewness > 0.5 {
		shape = "right-skewed, with a long tail of slow responses"
	} else if d.Skewness < -0.5 {
		shape = "left-skewed"
	}
	gap := float64(d.MeanMedianGapMinutes)
	return fmt.Sprintf("The distribution is %s: the mean (%.1f min) sits %.1f minutes %s the median (%.1f min).",
		shape, d.MeanMinutes, absOf(gap), aboveBelow(gap), d.MedianMinutes)
}

// MixInsights narrates the incident composition.
func MixInsights(mix []analysis.GroupShare) []string {
	if len(mix) == 0 {
		return nil
	}
	largest := mix[0]
	for _, g := range mix[1:] {
		if g.Count > largest.Count {
			largest = g
		}
	}
	out := []string{
		fmt.Sprintf("%s incidents dominate the workload at %.1f%% (%d incidents).",
			largest.IncidentGroup, largest.Percent, largest.Count),
	}
	for _, g := range mix {
		if g.IncidentGroup == largest.IncidentGroup {
			continue
		}
		out = append(out, fmt.Sprintf("%s incidents account for %.1f%% (%d incidents).",
			g.IncidentGroup, g.Percent, g.Count))
	}
	return out
}

// SeasonalInsight narrates the peak-to-trough swing of a monthly series.
func SeasonalInsight(label string, peak analysis.MonthlyPeak) string {
	return fmt.Sprintf("%s peak in %s (%d incidents) and bottom out in %s (%d incidents), a %.0f%% seasonal swing.",
		label, peak.PeakMonth, peak.PeakCount, peak.LowMonth, peak.LowCount, peak.SeasonalRangePct)
}

// MapInsight explains what the choropleth metric shows.
func MapInsight(metric string) string {
	switch metric {
	case "compliance":
		return "Darker boroughs reach a larger share of incidents within the attendance target."
	case "volume":
		return "Darker boroughs handle more incidents over the selected period."
	default:
		return "Darker boroughs wait longer for the first pump, measured by the median response time."
	}
}

// RankingInsight narrates the gap between the best and worst borough on a
// metric. The ranked slice must be sorted for the metric already.
func RankingInsight(ranked []geo.Aggregate, metric string) string {
	if len(ranked) < 2 {
		return ""
	}
	best := ranked[0]
	worst := ranked[len(ranked)-1]
	switch metric {
	case "compliance":
		return fmt.Sprintf("Target compliance ranges from %.1f%% in %s down to %.1f%% in %s.",
			best.CompliancePercent, best.Borough, worst.CompliancePercent, worst.Borough)
	case "volume":
		return fmt.Sprintf("Incident volume ranges from %d in %s down to %d in %s.",
			best.IncidentCount, best.Borough, worst.IncidentCount, worst.Borough)
	default:
		return fmt.Sprintf("Median response times range from %.1f minutes in %s to %.1f minutes in %s, a gap of %.1f minutes.",
			best.MedianResponseMinutes, best.Borough, worst.MedianResponseMinutes, worst.Borough,
			absOf(float64(worst.MedianResponseMinutes-best.MedianResponseMinutes)))
	}
}

// InnerOuterInsights narrates the Inner vs Outer London comparison.
func InnerOuterInsights(cmp geo.InnerOuterComparison) []string {
	faster, slower := geo.InnerLondon, geo.OuterLondon
	if cmp.GapMinutes < 0 {
		faster, slower = geo.OuterLondon, geo.InnerLondon
	}
	return []string{
		fmt.Sprintf("%s boroughs average a %.1f-minute median response against %.1f minutes in %s.",
			geo.InnerLondon, cmp.InnerMeanMedianMinutes, cmp.OuterMeanMedianMinutes, geo.OuterLondon),
		fmt.Sprintf("%s is faster than %s by %.0f seconds (%.0f%%) on the mean of borough medians.",
			faster, slower, absOf(float64(cmp.GapSeconds)), absOf(float64(cmp.GapPercent))),
	}
}

// EffectStrength classifies the magnitude of a correlation coefficient.
func EffectStrength(r float64) string {
	switch abs := absOf(r); {
	case abs >= 0.7:
		return "Strong"
	case abs >= 0.4:
		return "Moderate"
	case abs >= 0.2:
		return "Weak"
	default:
		return "Very weak"
	}
}

// EffectDirection names the sign of a regression slope.
func EffectDirection(slope float64) string {
	if slope < 0 {
		return "negative"
	}
	return "positive"
}

// FormatP renders a p-value, collapsing tiny values to "< 0.001".
func FormatP(p float64) string {
	if p < 0.001 {
		return "< 0.001"
	}
	return fmt.Sprintf("%.4f", p)
}

// SignificanceLabel renders the conventional 5% significance verdict.
func SignificanceLabel(p float64) string {
	if p < 0.05 {
		return "statistically significant"
	}
	return "not statistically significant"
}

// RegressionInsight narrates one fitted relationship between borough area and
// a response metric.
func RegressionInsight(label string, reg geo.Regression) string {
	return fmt.Sprintf("%s: %s %s relationship (r = %.2f, R² = %.2f, p = %s, %s across %d boroughs).",
		label, EffectStrength(float64(reg.R)), EffectDirection(float64(reg.Slope)),
		reg.R, reg.RSquared, FormatP(float64(reg.PValue)), SignificanceLabel(float64(reg.PValue)), reg.N)
}

// RegressionInsights narrates the full set of area regressions.
func RegressionInsights(regs geo.AreaRegressions) []string {
	return []string{
		RegressionInsight("Borough area vs median response", regs.MedianVsArea),
		RegressionInsight("Borough area vs median response, Inner London", regs.MedianVsAreaInner),
		RegressionInsight("Borough area vs median response, Outer London", regs.MedianVsAreaOuter),
		RegressionInsight("Borough area vs target compliance", regs.ComplianceVsArea),
	}
}

// DecompositionInsights narrates the turnout/travel split. The sum of the two
// component medians is labeled an approximation because medians do not add.
func DecompositionInsights(d analysis.Decomposition) []string {
	split := fmt.Sprintf("Travel time (median %.1f min) outweighs turnout time (median %.1f min), contributing %.0f%% of the combined response.",
		d.TravelMedianMinutes, d.TurnoutMedianMinutes, d.TravelSharePercent)
	if d.TurnoutMedianMinutes > d.TravelMedianMinutes {
		split = fmt.Sprintf("Turnout time (median %.1f min) outweighs travel time (median %.1f min), leaving travel at %.0f%% of the combined response.",
			d.TurnoutMedianMinutes, d.TravelMedianMinutes, d.TravelSharePercent)
	}
	return []string{
		split,
		fmt.Sprintf("The component medians sum to %.1f minutes, an approximation of the %.1f-minute median of per-incident totals.",
			d.SumOfMediansMinutes, d.MedianOfSumMinutes),
	}
}

// StabilityInsight narrates the borough-level spread of the two components.
func StabilityInsight(sc analysis.StabilityCheck) string {
	return fmt.Sprintf("Turnout medians vary little across boroughs (%.1f-%.1f min, IQR %.0fs) while travel medians spread from %.1f to %.1f minutes (IQR %.0fs), so travel drives the geographic differences.",
		sc.TurnoutBoroughMinMinutes, sc.TurnoutBoroughMaxMinutes, sc.TurnoutBoroughIQRSeconds,
		sc.TravelBoroughMinMinutes, sc.TravelBoroughMaxMinutes, sc.TravelBoroughIQRSeconds)
}

// DelayInsights narrates the delay code breakdown over target exceedances.
func DelayInsights(db analysis.DelayBreakdown) []string {
	out := []string{
		fmt.Sprintf("%d incidents (%.1f%%) exceeded the attendance target with a recorded delay code.",
			db.TotalExceedances, db.ExceedancePercent),
	}
	if len(db.Top) > 0 {
		top := db.Top[0]
		out = append(out, fmt.Sprintf("The most common factor is %q at %.1f%% of exceedances.",
			top.Description, top.Percent))
	}
	if db.NotHeldUpPercent > 0 {
		out = append(out, fmt.Sprintf("%.1f%% of exceedances record no specific hold-up, pointing to distance or demand rather than an identifiable delay.",
			db.NotHeldUpPercent))
	}
	return out
}

func absOf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func aboveBelow(gap float64) string {
	if gap < 0 {
		return "below"
	}
	return "above"
}
