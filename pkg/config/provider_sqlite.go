package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	cfg := &ConfigData{}

	dataset, err := s.GetDatasetConfig()
	if err != nil {
		return nil, err
	}
	cfg.Dataset = *dataset

	httpCfg, err := s.GetHTTPConfig()
	if err != nil {
		return nil, err
	}
	cfg.HTTP = *httpCfg

	targets, err := s.GetTargets()
	if err != nil {
		return nil, err
	}
	cfg.Targets = *targets

	geo, err := s.getGeoConfig()
	if err != nil {
		return nil, err
	}
	cfg.Geo = *geo

	logCfg, err := s.getLogConfig()
	if err != nil {
		return nil, err
	}
	cfg.Log = *logCfg

	cfg.ApplyDefaults()

	if cfg.Dataset.Source == "" {
		return nil, fmt.Errorf("dataset source must be set to one of csv, sqlite or postgres")
	}

	return cfg, nil
}

// GetDatasetConfig loads the dataset section from the dataset_config table
func (s *SQLiteProvider) GetDatasetConfig() (*DatasetData, error) {
	d := &DatasetData{}
	row := s.db.QueryRow(`SELECT source, COALESCE(path, ''), COALESCE(connection_string, ''), COALESCE(table_name, '') FROM dataset_config LIMIT 1`)
	if err := row.Scan(&d.Source, &d.Path, &d.ConnectionString, &d.Table); err != nil {
		return nil, fmt.Errorf("failed to load dataset config: %w", err)
	}
	return d, nil
}

// GetHTTPConfig loads the HTTP section from the http_config table
func (s *SQLiteProvider) GetHTTPConfig() (*HTTPData, error) {
	h := &HTTPData{}
	row := s.db.QueryRow(`SELECT COALESCE(listen_addr, ''), COALESCE(port, 0) FROM http_config LIMIT 1`)
	if err := row.Scan(&h.ListenAddr, &h.Port); err != nil {
		if err == sql.ErrNoRows {
			return h, nil
		}
		return nil, fmt.Errorf("failed to load http config: %w", err)
	}
	return h, nil
}

// GetTargets loads the response-time targets from the targets_config table
func (s *SQLiteProvider) GetTargets() (*TargetsData, error) {
	t := &TargetsData{}
	row := s.db.QueryRow(`SELECT COALESCE(attendance_target_seconds, 0), COALESCE(extreme_delay_seconds, 0) FROM targets_config LIMIT 1`)
	if err := row.Scan(&t.AttendanceTargetSeconds, &t.ExtremeDelaySeconds); err != nil {
		if err == sql.ErrNoRows {
			return t, nil
		}
		return nil, fmt.Errorf("failed to load targets config: %w", err)
	}
	return t, nil
}

func (s *SQLiteProvider) getGeoConfig() (*GeoData, error) {
	g := &GeoData{}
	row := s.db.QueryRow(`SELECT COALESCE(boundaries_path, ''), COALESCE(population_path, '') FROM geo_config LIMIT 1`)
	if err := row.Scan(&g.BoundariesPath, &g.PopulationPath); err != nil {
		if err == sql.ErrNoRows {
			return g, nil
		}
		return nil, fmt.Errorf("failed to load geo config: %w", err)
	}
	return g, nil
}

func (s *SQLiteProvider) getLogConfig() (*LogData, error) {
	l := &LogData{}
	row := s.db.QueryRow(`SELECT COALESCE(file, ''), COALESCE(max_size_mb, 0), COALESCE(max_backups, 0), COALESCE(max_age_days, 0) FROM log_config LIMIT 1`)
	if err := row.Scan(&l.File, &l.MaxSizeMB, &l.MaxBackups, &l.MaxAgeDays); err != nil {
		if err == sql.ErrNoRows {
			return l, nil
		}
		return nil, fmt.Errorf("failed to load log config: %w", err)
	}
	return l, nil
}

// IsReadOnly returns false: the SQLite backend can be edited in place
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}
