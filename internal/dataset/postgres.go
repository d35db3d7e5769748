package dataset

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fireline/fireline/internal/log"
	"github.com/fireline/fireline/internal/types"
)

// mobilisationRow mirrors the published extract's column names. Optional
// columns scan as NULL when absent from the table.
type mobilisationRow struct {
	IncidentNumber        string          `gorm:"column:incidentnumber"`
	PumpOrder             sql.NullInt64   `gorm:"column:pumporder"`
	DateOfCall            sql.NullString  `gorm:"column:dateofcall"`
	HourOfCall            sql.NullInt64   `gorm:"column:hourofcall"`
	IncidentGroup         sql.NullString  `gorm:"column:incidentgroup"`
	BoroughName           sql.NullString  `gorm:"column:boroughname"`
	AttendanceSeconds     sql.NullFloat64 `gorm:"column:attendanceseconds"`
	TurnoutSeconds        sql.NullFloat64 `gorm:"column:turnoutseconds"`
	TravelSeconds         sql.NullFloat64 `gorm:"column:travelseconds"`
	DelayDescription      sql.NullString  `gorm:"column:delaydescription"`
	IncidentStationGround sql.NullString  `gorm:"column:incidentstationground"`
	DeployedFromStation   sql.NullString  `gorm:"column:deployedfromstation"`
	DeployedFromLocation  sql.NullString  `gorm:"column:deployedfromlocation"`
}

// connect opens a gorm connection with the standard logger configuration.
func connect(connectionString string) (*gorm.DB, error) {
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	log.Info("connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(connectionString), &gorm.Config{Logger: dbLogger})
	if err != nil {
		log.Warn("warning: unable to create a Postgres connection:", err)
		return nil, err
	}
	return db, nil
}

// postgresColumns reads the table's column names from information_schema.
func postgresColumns(db *gorm.DB, table string) (map[string]bool, error) {
	var names []string
	err := db.Raw(
		"SELECT column_name FROM information_schema.columns WHERE table_name = ?", table,
	).Scan(&names).Error
	if err != nil {
		return nil, fmt.Errorf("reading columns of %s: %w", table, err)
	}
	cols := make(map[string]bool, len(names))
	for _, n := range names {
		cols[strings.ToLower(n)] = true
	}
	return cols, nil
}

// LoadPostgres reads the mobilisation table from Postgres.
func LoadPostgres(connectionString, table string) ([]types.Record, types.ColumnSet, error) {
	db, err := connect(connectionString)
	if err != nil {
		return nil, types.ColumnSet{}, err
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	if table == "" {
		table = "mobilisations"
	}
	available, err := postgresColumns(db, table)
	if err != nil {
		return nil, types.ColumnSet{}, err
	}
	if len(available) == 0 {
		return nil, types.ColumnSet{}, fmt.Errorf("postgres dataset has no table %q", table)
	}

	cols := types.ColumnSet{
		Turnout:    available["turnoutseconds"],
		Travel:     available["travelseconds"],
		DelayCodes: available["delaydescription"],
		Deployment: available["incidentstationground"] && available["deployedfromstation"],
	}

	var rows []mobilisationRow
	if err := db.Table(table).Find(&rows).Error; err != nil {
		return nil, types.ColumnSet{}, fmt.Errorf("querying postgres dataset: %w", err)
	}
	log.Infof("loaded %d mobilisation rows from Postgres", len(rows))

	records := make([]types.Record, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		if row.IncidentNumber == "" {
			continue
		}
		rec := types.Record{
			IncidentNumber:        row.IncidentNumber,
			PumpOrder:             int(row.PumpOrder.Int64),
			HourOfCall:            int(row.HourOfCall.Int64),
			IncidentGroup:         strings.TrimSpace(row.IncidentGroup.String),
			BoroughName:           strings.TrimSpace(row.BoroughName.String),
			AttendanceSeconds:     nullSeconds(row.AttendanceSeconds),
			TurnoutSeconds:        nullSeconds(row.TurnoutSeconds),
			TravelSeconds:         nullSeconds(row.TravelSeconds),
			DelayCode:             strings.TrimSpace(row.DelayDescription.String),
			IncidentStationGround: strings.TrimSpace(row.IncidentStationGround.String),
			DeployedFromStation:   strings.TrimSpace(row.DeployedFromStation.String),
			DeployedFromLocation:  strings.TrimSpace(row.DeployedFromLocation.String),
		}
		if !row.HourOfCall.Valid {
			rec.HourOfCall = -1
		}

		rec.CallDate, err = parseCallDate(row.DateOfCall.String)
		if err != nil {
			return nil, types.ColumnSet{}, fmt.Errorf("postgres dataset: %w", err)
		}
		rec.DeriveTemporal()
		records = append(records, rec)
	}
	return records, cols, nil
}
