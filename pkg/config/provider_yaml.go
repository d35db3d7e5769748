package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		Dataset struct {
			Source           string `yaml:"source"`
			Path             string `yaml:"path"`
			ConnectionString string `yaml:"connection_string"`
			Table            string `yaml:"table"`
		} `yaml:"dataset"`
		Geo struct {
			Boundaries string `yaml:"boundaries"`
			Population string `yaml:"population"`
		} `yaml:"geo"`
		HTTP struct {
			ListenAddr string `yaml:"listen_addr"`
			Port       int    `yaml:"port"`
		} `yaml:"http"`
		Targets struct {
			AttendanceTargetSeconds int `yaml:"attendance_target_seconds"`
			ExtremeDelaySeconds     int `yaml:"extreme_delay_seconds"`
		} `yaml:"targets"`
		Log struct {
			File       string `yaml:"file"`
			MaxSizeMB  int    `yaml:"max_size_mb"`
			MaxBackups int    `yaml:"max_backups"`
			MaxAgeDays int    `yaml:"max_age_days"`
		} `yaml:"log"`
	}

	if err := yaml.Unmarshal(cfgFile, &yamlConfig); err != nil {
		return nil, fmt.Errorf("error parsing YAML config: %w", err)
	}

	cfg := &ConfigData{
		Dataset: DatasetData{
			Source:           yamlConfig.Dataset.Source,
			Path:             yamlConfig.Dataset.Path,
			ConnectionString: yamlConfig.Dataset.ConnectionString,
			Table:            yamlConfig.Dataset.Table,
		},
		Geo: GeoData{
			BoundariesPath: yamlConfig.Geo.Boundaries,
			PopulationPath: yamlConfig.Geo.Population,
		},
		HTTP: HTTPData{
			ListenAddr: yamlConfig.HTTP.ListenAddr,
			Port:       yamlConfig.HTTP.Port,
		},
		Targets: TargetsData{
			AttendanceTargetSeconds: yamlConfig.Targets.AttendanceTargetSeconds,
			ExtremeDelaySeconds:     yamlConfig.Targets.ExtremeDelaySeconds,
		},
		Log: LogData{
			File:       yamlConfig.Log.File,
			MaxSizeMB:  yamlConfig.Log.MaxSizeMB,
			MaxBackups: yamlConfig.Log.MaxBackups,
			MaxAgeDays: yamlConfig.Log.MaxAgeDays,
		},
	}

	cfg.ApplyDefaults()

	if cfg.Dataset.Source == "" {
		return nil, fmt.Errorf("dataset.source must be set to one of csv, sqlite or postgres")
	}

	y.config = cfg
	return cfg, nil
}

// GetDatasetConfig returns the dataset section
func (y *YAMLProvider) GetDatasetConfig() (*DatasetData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return &y.config.Dataset, nil
}

// GetHTTPConfig returns the HTTP server section
func (y *YAMLProvider) GetHTTPConfig() (*HTTPData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return &y.config.HTTP, nil
}

// GetTargets returns the response-time targets section
func (y *YAMLProvider) GetTargets() (*TargetsData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return &y.config.Targets, nil
}

// IsReadOnly returns true: YAML configs are not modified at runtime
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML providers
func (y *YAMLProvider) Close() error {
	return nil
}
