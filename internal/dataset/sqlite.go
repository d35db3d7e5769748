package dataset

import (
	"database/sql"
	"fmt"
	"math"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/fireline/fireline/internal/types"
)

// sqliteColumns reads the table's column names via PRAGMA table_info, lowered
// for case-insensitive matching.
func sqliteColumns(db *sql.DB, table string) (map[string]string, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return nil, fmt.Errorf("reading table info for %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]string)
	for rows.Next() {
		var (
			cid       int
			name, typ string
			notNull   int
			dflt      sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scanning table info: %w", err)
		}
		cols[strings.ToLower(name)] = name
	}
	return cols, rows.Err()
}

func pickColumn(cols map[string]string, names ...string) (string, bool) {
	for _, n := range names {
		if actual, ok := cols[strings.ToLower(n)]; ok {
			return actual, true
		}
	}
	return "", false
}

func nullSeconds(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

// LoadSQLite reads the mobilisation table from a SQLite file. Column
// detection mirrors the CSV loader so the same extract can be served from
// either source.
func LoadSQLite(path, table string) ([]types.Record, types.ColumnSet, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, types.ColumnSet{}, fmt.Errorf("opening sqlite dataset: %w", err)
	}
	defer db.Close()

	if table == "" {
		table = "mobilisations"
	}
	available, err := sqliteColumns(db, table)
	if err != nil {
		return nil, types.ColumnSet{}, err
	}
	if len(available) == 0 {
		return nil, types.ColumnSet{}, fmt.Errorf("sqlite dataset %s has no table %q", path, table)
	}

	type requiredCol struct {
		name    string
		aliases []string
	}
	required := []requiredCol{
		{"incident number", []string{"IncidentNumber"}},
		{"call date", []string{"DateOfCall", "CallDate"}},
		{"hour of call", []string{"HourOfCall"}},
		{"incident group", []string{"IncidentGroup"}},
		{"borough", []string{"IncGeo_BoroughName", "BoroughName"}},
		{"attendance time", []string{"FirstPumpArriving_AttendanceTime", "AttendanceTimeSeconds"}},
		{"pump order", []string{"PumpOrder"}},
	}
	selected := make([]string, 0, len(required))
	for _, rc := range required {
		actual, ok := pickColumn(available, rc.aliases...)
		if !ok {
			return nil, types.ColumnSet{}, fmt.Errorf("table %s missing %s column (%s)", table, rc.name, strings.Join(rc.aliases, " or "))
		}
		selected = append(selected, actual)
	}

	turnoutCol, hasTurnout := pickColumn(available, "TurnoutTimeSeconds")
	travelCol, hasTravel := pickColumn(available, "TravelTimeSeconds")
	delayCol, hasDelay := pickColumn(available, "DelayCode_Description", "DelayCodeDescription")
	groundCol, hasGround := pickColumn(available, "IncidentStationGround")
	deployedCol, hasDeployed := pickColumn(available, "DeployedFromStation_Name", "DeployedFromStation")
	locationCol, hasLocation := pickColumn(available, "DeployedFromLocation")

	cols := types.ColumnSet{
		Turnout:    hasTurnout,
		Travel:     hasTravel,
		DelayCodes: hasDelay,
		Deployment: hasGround && hasDeployed,
	}

	optional := []struct {
		name string
		ok   bool
	}{
		{turnoutCol, hasTurnout},
		{travelCol, hasTravel},
		{delayCol, hasDelay},
		{groundCol, cols.Deployment},
		{deployedCol, cols.Deployment},
		{locationCol, cols.Deployment && hasLocation},
	}
	for _, o := range optional {
		if o.ok {
			selected = append(selected, o.name)
		} else {
			// keep the scan positions fixed
			selected = append(selected, "NULL")
		}
	}

	quoted := make([]string, len(selected))
	for i, c := range selected {
		if c == "NULL" {
			quoted[i] = "NULL"
			continue
		}
		quoted[i] = fmt.Sprintf("%q", c)
	}
	query := fmt.Sprintf("SELECT %s FROM %q", strings.Join(quoted, ", "), table)

	rows, err := db.Query(query)
	if err != nil {
		return nil, types.ColumnSet{}, fmt.Errorf("querying sqlite dataset: %w", err)
	}
	defer rows.Close()

	var records []types.Record
	for rows.Next() {
		var (
			incidentNumber sql.NullString
			callDate       sql.NullString
			hourOfCall     sql.NullInt64
			incidentGroup  sql.NullString
			borough        sql.NullString
			attendance     sql.NullFloat64
			pumpOrder      sql.NullInt64
			turnout        sql.NullFloat64
			travel         sql.NullFloat64
			delay          sql.NullString
			ground         sql.NullString
			deployed       sql.NullString
			location       sql.NullString
		)
		if err := rows.Scan(&incidentNumber, &callDate, &hourOfCall, &incidentGroup, &borough,
			&attendance, &pumpOrder, &turnout, &travel, &delay, &ground, &deployed, &location); err != nil {
			return nil, types.ColumnSet{}, fmt.Errorf("scanning sqlite row: %w", err)
		}
		if !incidentNumber.Valid || incidentNumber.String == "" {
			continue
		}

		rec := types.Record{
			IncidentNumber:        incidentNumber.String,
			PumpOrder:             int(pumpOrder.Int64),
			HourOfCall:            int(hourOfCall.Int64),
			IncidentGroup:         strings.TrimSpace(incidentGroup.String),
			BoroughName:           strings.TrimSpace(borough.String),
			AttendanceSeconds:     nullSeconds(attendance),
			TurnoutSeconds:        nullSeconds(turnout),
			TravelSeconds:         nullSeconds(travel),
			DelayCode:             strings.TrimSpace(delay.String),
			IncidentStationGround: strings.TrimSpace(ground.String),
			DeployedFromStation:   strings.TrimSpace(deployed.String),
			DeployedFromLocation:  strings.TrimSpace(location.String),
		}
		if !hourOfCall.Valid {
			rec.HourOfCall = -1
		}

		rec.CallDate, err = parseCallDate(callDate.String)
		if err != nil {
			return nil, types.ColumnSet{}, fmt.Errorf("sqlite dataset: %w", err)
		}
		rec.DeriveTemporal()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, types.ColumnSet{}, fmt.Errorf("iterating sqlite dataset: %w", err)
	}
	return records, cols, nil
}
