package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetDatasetConfig() (*DatasetData, error)
	GetHTTPConfig() (*HTTPData, error)
	GetTargets() (*TargetsData, error)

	// Configuration management
	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Dataset DatasetData `json:"dataset"`
	Geo     GeoData     `json:"geo,omitempty"`
	HTTP    HTTPData    `json:"http,omitempty"`
	Targets TargetsData `json:"targets,omitempty"`
	Log     LogData     `json:"log,omitempty"`
}

// DatasetData selects where the mobilisation records are loaded from.
// Source is one of "csv", "sqlite" or "postgres".
type DatasetData struct {
	Source           string `json:"source"`
	Path             string `json:"path,omitempty"`
	ConnectionString string `json:"connection_string,omitempty"`
	Table            string `json:"table,omitempty"`
}

// GeoData holds paths to the static reference files loaded once per process
type GeoData struct {
	BoundariesPath string `json:"boundaries_path,omitempty"`
	PopulationPath string `json:"population_path,omitempty"`
}

// HTTPData holds the REST server listen configuration
type HTTPData struct {
	ListenAddr string `json:"listen_addr,omitempty"`
	Port       int    `json:"port,omitempty"`
}

// TargetsData holds the fixed response-time targets, in seconds
type TargetsData struct {
	AttendanceTargetSeconds int `json:"attendance_target_seconds,omitempty"`
	ExtremeDelaySeconds     int `json:"extreme_delay_seconds,omitempty"`
}

// LogData holds optional log file rotation settings
type LogData struct {
	File       string `json:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty"`
}

// ApplyDefaults fills unset fields with operational defaults: the official
// 6-minute attendance target and the 10-minute extreme delay threshold.
func (c *ConfigData) ApplyDefaults() {
	if c.Targets.AttendanceTargetSeconds == 0 {
		c.Targets.AttendanceTargetSeconds = 360
	}
	if c.Targets.ExtremeDelaySeconds == 0 {
		c.Targets.ExtremeDelaySeconds = 600
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.Dataset.Table == "" {
		c.Dataset.Table = "mobilisations"
	}
}
