// Package types contains the shared domain model for mobilisation records.
package types

import (
	"math"
	"time"
)

// Record is one mobilisation row: a single pump dispatched to an incident.
// Several records can share an IncidentNumber, one per responding vehicle.
// Optional numeric fields use NaN when the value is missing for a row;
// whether the column existed at all is tracked on the dataset store.
type Record struct {
	IncidentNumber string
	PumpOrder      int
	CallDate       time.Time
	HourOfCall     int
	IncidentGroup  string
	BoroughName    string

	// AttendanceSeconds is FirstPumpArriving_AttendanceTime: seconds from
	// call receipt to arrival of the first pump. Identical for every record
	// of the same incident.
	AttendanceSeconds float64

	TurnoutSeconds float64
	TravelSeconds  float64

	// DelayCode is the recorded delay explanation, empty when none was logged.
	DelayCode string

	IncidentStationGround string
	DeployedFromStation   string
	DeployedFromLocation  string

	// Derived at load time, immutable afterwards.
	Year      int
	Month     int // 1-12
	MonthName string
	Weekday   string
}

// DeriveTemporal fills the derived calendar fields from CallDate.
func (r *Record) DeriveTemporal() {
	r.Year = r.CallDate.Year()
	r.Month = int(r.CallDate.Month())
	r.MonthName = r.CallDate.Month().String()
	r.Weekday = r.CallDate.Weekday().String()
}

// HasAttendance reports whether the record carries an attendance time.
func (r *Record) HasAttendance() bool {
	return !math.IsNaN(r.AttendanceSeconds)
}

// CrossGround reports whether the responding vehicle came from outside the
// station ground that owns the incident location.
func (r *Record) CrossGround() bool {
	return r.IncidentStationGround != "" &&
		r.DeployedFromStation != "" &&
		r.IncidentStationGround != r.DeployedFromStation
}

// ColumnSet records which optional columns were present in the loaded
// dataset. Metrics depending on an absent column are omitted rather than
// computed over garbage.
type ColumnSet struct {
	Turnout    bool
	Travel     bool
	DelayCodes bool
	Deployment bool
}

// MonthNames lists the canonical month names in calendar order, as used by
// the month filter.
var MonthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// WeekdayNames lists day names Monday first, the order used by the
// weekday/hour heatmap.
var WeekdayNames = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}
