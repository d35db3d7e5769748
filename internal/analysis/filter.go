package analysis

import (
	"fmt"
	"strconv"

	"github.com/fireline/fireline/internal/types"
)

// All is the sentinel filter value that imposes no constraint.
const All = "All"

// Filter selects mobilisation records by year, month name and incident group.
// Each dimension is an independent optional predicate; the zero value matches
// everything. Predicates are combined by conjunction, so any number of them
// may be active at once.
type Filter struct {
	Year          int    // 0 selects all years
	Month         string // "" or "All" selects all months
	IncidentGroup string // "" or "All" selects all incident groups
}

// ParseFilter builds a Filter from raw selector strings, validating the month
// name and year format. Empty strings are treated as "All".
func ParseFilter(year, month, incidentGroup string) (Filter, error) {
	f := Filter{Month: month, IncidentGroup: incidentGroup}

	if year != "" && year != All {
		y, err := strconv.Atoi(year)
		if err != nil {
			return Filter{}, fmt.Errorf("invalid year selector %q", year)
		}
		f.Year = y
	}

	if month != "" && month != All {
		valid := false
		for _, m := range types.MonthNames {
			if m == month {
				valid = true
				break
			}
		}
		if !valid {
			return Filter{}, fmt.Errorf("invalid month selector %q", month)
		}
	}

	return f, nil
}

// Matches reports whether the record passes every active predicate.
func (f Filter) Matches(r *types.Record) bool {
	if f.Year != 0 && r.Year != f.Year {
		return false
	}
	if f.Month != "" && f.Month != All && r.MonthName != f.Month {
		return false
	}
	if f.IncidentGroup != "" && f.IncidentGroup != All && r.IncidentGroup != f.IncidentGroup {
		return false
	}
	return true
}

// AllYears reports whether the year dimension is unconstrained.
func (f Filter) AllYears() bool { return f.Year == 0 }

// AllMonths reports whether the month dimension is unconstrained.
func (f Filter) AllMonths() bool { return f.Month == "" || f.Month == All }

// AllGroups reports whether the incident group dimension is unconstrained.
func (f Filter) AllGroups() bool { return f.IncidentGroup == "" || f.IncidentGroup == All }

// Apply filters records into a new slice, never mutating the input. It
// returns ErrEmptyResult when nothing survives, so no aggregation ever runs
// on an empty set.
func Apply(records []types.Record, f Filter) ([]types.Record, error) {
	out := make([]types.Record, 0, len(records))
	for i := range records {
		if f.Matches(&records[i]) {
			out = append(out, records[i])
		}
	}
	if len(out) == 0 {
		return nil, ErrEmptyResult
	}
	return out, nil
}
