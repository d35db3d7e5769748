package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fireline/fireline/internal/types"
)

// dateFormats are tried in order when parsing DateOfCall. The published
// extracts have switched format between releases.
var dateFormats = []string{
	"02/01/2006",
	"2006-01-02",
	"02-Jan-06",
	"02 Jan 2006",
}

// columnIndex maps header names to positions, case-insensitively, accepting
// the aliases that appear across dataset releases.
type columnIndex map[string]int

func buildColumnIndex(header []string) columnIndex {
	idx := make(columnIndex, len(header))
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return idx
}

func (c columnIndex) find(names ...string) (int, bool) {
	for _, n := range names {
		if i, ok := c[strings.ToLower(n)]; ok {
			return i, true
		}
	}
	return -1, false
}

func parseCallDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseSeconds parses an optional numeric field, returning NaN when the cell
// is empty or not a number.
func parseSeconds(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// LoadCSV reads a mobilisation extract. The required columns are the incident
// number, call date, hour of call, incident group, borough, pump order and
// first-pump attendance time; turnout, travel, delay code and deployment
// columns are optional and their presence is reported in the ColumnSet.
func LoadCSV(path string) ([]types.Record, types.ColumnSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, types.ColumnSet{}, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, types.ColumnSet{}, fmt.Errorf("reading dataset header: %w", err)
	}
	idx := buildColumnIndex(header)

	required := map[string][]string{
		"incident number": {"IncidentNumber"},
		"call date":       {"DateOfCall", "CallDate"},
		"hour of call":    {"HourOfCall"},
		"incident group":  {"IncidentGroup"},
		"borough":         {"IncGeo_BoroughName", "BoroughName"},
		"attendance time": {"FirstPumpArriving_AttendanceTime", "AttendanceTimeSeconds"},
		"pump order":      {"PumpOrder"},
	}
	pos := make(map[string]int, len(required))
	for name, aliases := range required {
		i, ok := idx.find(aliases...)
		if !ok {
			return nil, types.ColumnSet{}, fmt.Errorf("dataset %s missing %s column (%s)", path, name, strings.Join(aliases, " or "))
		}
		pos[name] = i
	}

	turnoutIdx, hasTurnout := idx.find("TurnoutTimeSeconds")
	travelIdx, hasTravel := idx.find("TravelTimeSeconds")
	delayIdx, hasDelay := idx.find("DelayCode_Description", "DelayCodeDescription")
	groundIdx, hasGround := idx.find("IncidentStationGround")
	deployedIdx, hasDeployed := idx.find("DeployedFromStation_Name", "DeployedFromStation")
	locationIdx, _ := idx.find("DeployedFromLocation")

	cols := types.ColumnSet{
		Turnout:    hasTurnout,
		Travel:     hasTravel,
		DelayCodes: hasDelay,
		Deployment: hasGround && hasDeployed,
	}

	cell := func(row []string, i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []types.Record
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, types.ColumnSet{}, fmt.Errorf("reading dataset line %d: %w", line, err)
		}

		rec := types.Record{
			IncidentNumber:    cell(row, pos["incident number"]),
			IncidentGroup:     cell(row, pos["incident group"]),
			BoroughName:       cell(row, pos["borough"]),
			AttendanceSeconds: parseSeconds(cell(row, pos["attendance time"])),
			TurnoutSeconds:    math.NaN(),
			TravelSeconds:     math.NaN(),
		}
		if rec.IncidentNumber == "" {
			continue
		}

		rec.CallDate, err = parseCallDate(cell(row, pos["call date"]))
		if err != nil {
			return nil, types.ColumnSet{}, fmt.Errorf("dataset line %d: %w", line, err)
		}
		rec.DeriveTemporal()

		if h, err := strconv.Atoi(cell(row, pos["hour of call"])); err == nil {
			rec.HourOfCall = h
		} else {
			rec.HourOfCall = -1
		}
		if p, err := strconv.Atoi(cell(row, pos["pump order"])); err == nil {
			rec.PumpOrder = p
		}

		if hasTurnout {
			rec.TurnoutSeconds = parseSeconds(cell(row, turnoutIdx))
		}
		if hasTravel {
			rec.TravelSeconds = parseSeconds(cell(row, travelIdx))
		}
		if hasDelay {
			rec.DelayCode = cell(row, delayIdx)
		}
		if cols.Deployment {
			rec.IncidentStationGround = cell(row, groundIdx)
			rec.DeployedFromStation = cell(row, deployedIdx)
			rec.DeployedFromLocation = cell(row, locationIdx)
		}

		records = append(records, rec)
	}
	return records, cols, nil
}
