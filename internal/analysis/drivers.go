package analysis

import (
	"math"
	"sort"

	"github.com/fireline/fireline/internal/types"
)

// Decomposition splits response time into its turnout and travel components.
//
// Medians are not additive: median(turnout) + median(travel) is generally not
// the median of the per-incident sums. Both figures are reported so callers
// can label the sum-of-medians as an approximation, and TravelSharePercent is
// defined as median(travel) / (median(turnout) + median(travel)).
type Decomposition struct {
	TurnoutMedianMinutes types.Float `json:"turnout_median_minutes"`
	TravelMedianMinutes  types.Float `json:"travel_median_minutes"`
	SumOfMediansMinutes  types.Float `json:"sum_of_medians_minutes"`
	MedianOfSumMinutes   types.Float `json:"median_of_sum_minutes"`
	TravelSharePercent   types.Float `json:"travel_share_percent"`
	Count                int         `json:"count"`
}

func turnoutSeconds(incidents []types.Record) []float64 {
	xs := make([]float64, len(incidents))
	for i := range incidents {
		xs[i] = incidents[i].TurnoutSeconds
	}
	return xs
}

func travelSeconds(incidents []types.Record) []float64 {
	xs := make([]float64, len(incidents))
	for i := range incidents {
		xs[i] = incidents[i].TravelSeconds
	}
	return xs
}

// componentSumSeconds collects per-incident turnout+travel sums, keeping only
// incidents where both components are present.
func componentSumSeconds(incidents []types.Record) []float64 {
	xs := make([]float64, 0, len(incidents))
	for i := range incidents {
		r := &incidents[i]
		if math.IsNaN(r.TurnoutSeconds) || math.IsNaN(r.TravelSeconds) {
			continue
		}
		xs = append(xs, r.TurnoutSeconds+r.TravelSeconds)
	}
	return xs
}

// ComponentDecomposition computes the turnout/travel split over the
// deduplicated incident set.
func ComponentDecomposition(incidents []types.Record, cols types.ColumnSet) (Decomposition, error) {
	if !cols.Turnout {
		return Decomposition{}, MissingColumn("TurnoutTimeSeconds")
	}
	if !cols.Travel {
		return Decomposition{}, MissingColumn("TravelTimeSeconds")
	}

	turnout := Median(turnoutSeconds(incidents)) / 60
	travel := Median(travelSeconds(incidents)) / 60
	d := Decomposition{
		TurnoutMedianMinutes: types.Float(turnout),
		TravelMedianMinutes:  types.Float(travel),
		SumOfMediansMinutes:  types.Float(turnout + travel),
		MedianOfSumMinutes:   types.Float(Median(componentSumSeconds(incidents)) / 60),
		Count:                len(incidents),
	}
	if total := turnout + travel; total > 0 {
		d.TravelSharePercent = types.Float(travel / total * 100)
	}
	return d, nil
}

// BoroughComponents is the component decomposition for one borough.
type BoroughComponents struct {
	Borough              string  `json:"borough"`
	TurnoutMedianMinutes float64 `json:"turnout_median_minutes"`
	TravelMedianMinutes  float64 `json:"travel_median_minutes"`
	TotalMinutes         float64 `json:"total_minutes"`
	Count                int     `json:"count"`
}

// SlowestBoroughDecomposition ranks boroughs by the sum of their component
// medians, descending, and returns the slowest topN.
func SlowestBoroughDecomposition(incidents []types.Record, cols types.ColumnSet, topN int) ([]BoroughComponents, error) {
	if !cols.Turnout {
		return nil, MissingColumn("TurnoutTimeSeconds")
	}
	if !cols.Travel {
		return nil, MissingColumn("TravelTimeSeconds")
	}

	byBorough := make(map[string][]types.Record)
	for i := range incidents {
		b := incidents[i].BoroughName
		if b == "" {
			continue
		}
		byBorough[b] = append(byBorough[b], incidents[i])
	}

	out := make([]BoroughComponents, 0, len(byBorough))
	for b, recs := range byBorough {
		turnout := Median(turnoutSeconds(recs)) / 60
		travel := Median(travelSeconds(recs)) / 60
		if math.IsNaN(turnout) || math.IsNaN(travel) {
			continue
		}
		out = append(out, BoroughComponents{
			Borough:              b,
			TurnoutMedianMinutes: turnout,
			TravelMedianMinutes:  travel,
			TotalMinutes:         turnout + travel,
			Count:                len(recs),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalMinutes != out[j].TotalMinutes {
			return out[i].TotalMinutes > out[j].TotalMinutes
		}
		return out[i].Borough < out[j].Borough
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out, nil
}

// HourComponents is the component decomposition for one hour of the day.
type HourComponents struct {
	Hour                 int     `json:"hour"`
	TurnoutMedianMinutes float64 `json:"turnout_median_minutes"`
	TravelMedianMinutes  float64 `json:"travel_median_minutes"`
	TotalMinutes         float64 `json:"total_minutes"`
}

// HourlyComponents computes turnout and travel medians per hour of call.
func HourlyComponents(incidents []types.Record, cols types.ColumnSet) ([]HourComponents, error) {
	if !cols.Turnout {
		return nil, MissingColumn("TurnoutTimeSeconds")
	}
	if !cols.Travel {
		return nil, MissingColumn("TravelTimeSeconds")
	}

	byHour := make(map[int][]types.Record)
	for i := range incidents {
		h := incidents[i].HourOfCall
		if h >= 0 && h <= 23 {
			byHour[h] = append(byHour[h], incidents[i])
		}
	}

	out := make([]HourComponents, 0, 24)
	for h := 0; h < 24; h++ {
		recs, ok := byHour[h]
		if !ok {
			continue
		}
		turnout := Median(turnoutSeconds(recs)) / 60
		travel := Median(travelSeconds(recs)) / 60
		if math.IsNaN(turnout) || math.IsNaN(travel) {
			continue
		}
		out = append(out, HourComponents{
			Hour:                 h,
			TurnoutMedianMinutes: turnout,
			TravelMedianMinutes:  travel,
			TotalMinutes:         turnout + travel,
		})
	}
	return out, nil
}

// StabilityCheck contrasts how much the borough-level medians of each
// component vary: a stable turnout but widely varying travel points to travel
// as the geographic driver.
type StabilityCheck struct {
	TurnoutOverallMedianMinutes types.Float `json:"turnout_overall_median_minutes"`
	TurnoutBoroughMinMinutes    types.Float `json:"turnout_borough_min_minutes"`
	TurnoutBoroughMaxMinutes    types.Float `json:"turnout_borough_max_minutes"`
	TurnoutBoroughIQRSeconds    types.Float `json:"turnout_borough_iqr_seconds"`
	TravelOverallMedianMinutes  types.Float `json:"travel_overall_median_minutes"`
	TravelBoroughMinMinutes     types.Float `json:"travel_borough_min_minutes"`
	TravelBoroughMaxMinutes     types.Float `json:"travel_borough_max_minutes"`
	TravelBoroughIQRSeconds     types.Float `json:"travel_borough_iqr_seconds"`
}

// ComponentStability computes the spread of per-borough component medians.
func ComponentStability(incidents []types.Record, cols types.ColumnSet) (StabilityCheck, error) {
	if !cols.Turnout {
		return StabilityCheck{}, MissingColumn("TurnoutTimeSeconds")
	}
	if !cols.Travel {
		return StabilityCheck{}, MissingColumn("TravelTimeSeconds")
	}

	byBorough := make(map[string][]types.Record)
	for i := range incidents {
		if b := incidents[i].BoroughName; b != "" {
			byBorough[b] = append(byBorough[b], incidents[i])
		}
	}

	var turnoutMedians, travelMedians []float64
	for _, recs := range byBorough {
		turnout := Median(turnoutSeconds(recs))
		travel := Median(travelSeconds(recs))
		if math.IsNaN(turnout) || math.IsNaN(travel) {
			continue
		}
		turnoutMedians = append(turnoutMedians, turnout)
		travelMedians = append(travelMedians, travel)
	}

	sc := StabilityCheck{
		TurnoutOverallMedianMinutes: types.Float(Median(turnoutSeconds(incidents)) / 60),
		TravelOverallMedianMinutes:  types.Float(Median(travelSeconds(incidents)) / 60),
	}
	if len(turnoutMedians) > 0 {
		sorted := validSorted(turnoutMedians)
		sc.TurnoutBoroughMinMinutes = types.Float(sorted[0] / 60)
		sc.TurnoutBoroughMaxMinutes = types.Float(sorted[len(sorted)-1] / 60)
		sc.TurnoutBoroughIQRSeconds = types.Float(IQR(turnoutMedians))
	}
	if len(travelMedians) > 0 {
		sorted := validSorted(travelMedians)
		sc.TravelBoroughMinMinutes = types.Float(sorted[0] / 60)
		sc.TravelBoroughMaxMinutes = types.Float(sorted[len(sorted)-1] / 60)
		sc.TravelBoroughIQRSeconds = types.Float(IQR(travelMedians))
	}
	return sc, nil
}

// DelayShare is one delay code's share of target exceedances.
type DelayShare struct {
	Description string  `json:"description"`
	Count       int     `json:"count"`
	Percent     float64 `json:"percent"`
}

// DelayBreakdown analyses the recorded delay codes of incidents that
// exceeded the attendance target.
type DelayBreakdown struct {
	TotalExceedances  int          `json:"total_exceedances"`
	ExceedancePercent float64      `json:"exceedance_percent"`
	Top               []DelayShare `json:"top"`
	Other             DelayShare   `json:"other"`
	NotHeldUpPercent  float64      `json:"not_held_up_percent"`
}

// NotHeldUpCode is the delay description recorded when no specific delay
// factor applied.
const NotHeldUpCode = "Not held up"

// DelayCodeBreakdown counts delay codes over target exceedances that carry a
// recorded code, keeping the topN codes individually and folding the rest
// into an "Other Delay Codes" bucket.
func DelayCodeBreakdown(incidents []types.Record, cols types.ColumnSet, t Targets, topN int) (DelayBreakdown, error) {
	if !cols.DelayCodes {
		return DelayBreakdown{}, MissingColumn("DelayCode_Description")
	}

	counts := make(map[string]int)
	exceedances := 0
	for i := range incidents {
		r := &incidents[i]
		if !r.HasAttendance() || r.AttendanceSeconds <= t.AttendanceTargetSeconds {
			continue
		}
		if r.DelayCode == "" {
			continue
		}
		counts[r.DelayCode]++
		exceedances++
	}

	db := DelayBreakdown{TotalExceedances: exceedances}
	if len(incidents) > 0 {
		db.ExceedancePercent = float64(exceedances) / float64(len(incidents)) * 100
	}
	if exceedances == 0 {
		return db, nil
	}

	shares := make([]DelayShare, 0, len(counts))
	for code, c := range counts {
		shares = append(shares, DelayShare{
			Description: code,
			Count:       c,
			Percent:     float64(c) / float64(exceedances) * 100,
		})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Count != shares[j].Count {
			return shares[i].Count > shares[j].Count
		}
		return shares[i].Description < shares[j].Description
	})

	if c, ok := counts[NotHeldUpCode]; ok {
		db.NotHeldUpPercent = float64(c) / float64(exceedances) * 100
	}

	if topN <= 0 || topN >= len(shares) {
		db.Top = shares
		return db, nil
	}
	db.Top = shares[:topN]
	other := DelayShare{Description: "Other Delay Codes"}
	for _, s := range shares[topN:] {
		other.Count += s.Count
		other.Percent += s.Percent
	}
	db.Other = other
	return db, nil
}

// CrossGroundRate returns the share of incidents whose first pump was
// dispatched from outside the incident's own station ground, as a percentage
// of incidents carrying deployment data.
func CrossGroundRate(incidents []types.Record, cols types.ColumnSet) (float64, error) {
	if !cols.Deployment {
		return 0, MissingColumn("DeployedFromStation_Name")
	}

	total := 0
	cross := 0
	for i := range incidents {
		r := &incidents[i]
		if r.IncidentStationGround == "" || r.DeployedFromStation == "" {
			continue
		}
		total++
		if r.CrossGround() {
			cross++
		}
	}
	if total == 0 {
		return math.NaN(), nil
	}
	return float64(cross) / float64(total) * 100, nil
}
