package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dmitrijs2005/musclemap/internal/flagx"
	"github.com/dmitrijs2005/musclemap/internal/timex"
)

// FileConfig is the DTO decoded from a JSON or TOML file. Zero values leave
// the current setting alone.
type FileConfig struct {
	DatabaseDSN  string         `json:"database_dsn" toml:"database_dsn"`
	TickInterval timex.Duration `json:"tick_interval" toml:"tick_interval"`
	Location     string         `json:"location" toml:"location"`

	LogLevel  string `json:"log_level" toml:"log_level"`
	LogFormat string `json:"log_format" toml:"log_format"`
	LogFile   string `json:"log_file" toml:"log_file"`

	MetricsAddr string `json:"metrics_addr" toml:"metrics_addr"`

	PhotoMaxWidth int `json:"photo_max_width" toml:"photo_max_width"`
	PhotoQuality  int `json:"photo_quality" toml:"photo_quality"`

	S3Bucket    string `json:"s3_bucket" toml:"s3_bucket"`
	S3Region    string `json:"s3_region" toml:"s3_region"`
	S3Endpoint  string `json:"s3_endpoint" toml:"s3_endpoint"`
	S3AccessKey string `json:"s3_access_key" toml:"s3_access_key"`
	S3SecretKey string `json:"s3_secret_key" toml:"s3_secret_key"`
}

// parseFile overlays cfg with the file given by -c/-config, if any.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}
	fc, err := readFile(path)
	if err != nil {
		return err
	}
	fc.apply(cfg)
	return nil
}

func readFile(path string) (FileConfig, error) {
	var fc FileConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), &fc); err != nil {
			return fc, fmt.Errorf("decode toml config %s: %w", path, err)
		}
		return fc, nil
	}
	if err := json.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("decode json config %s: %w", path, err)
	}
	return fc, nil
}

func (fc FileConfig) apply(cfg *Config) {
	setString(&cfg.DatabaseDSN, fc.DatabaseDSN)
	if fc.TickInterval.Duration > 0 {
		cfg.TickInterval = fc.TickInterval.Duration
	}
	setString(&cfg.Location, fc.Location)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)
	setString(&cfg.LogFile, fc.LogFile)
	setString(&cfg.MetricsAddr, fc.MetricsAddr)
	if fc.PhotoMaxWidth > 0 {
		cfg.PhotoMaxWidth = fc.PhotoMaxWidth
	}
	if fc.PhotoQuality > 0 {
		cfg.PhotoQuality = fc.PhotoQuality
	}
	setString(&cfg.S3Bucket, fc.S3Bucket)
	setString(&cfg.S3Region, fc.S3Region)
	setString(&cfg.S3Endpoint, fc.S3Endpoint)
	setString(&cfg.S3AccessKey, fc.S3AccessKey)
	setString(&cfg.S3SecretKey, fc.S3SecretKey)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
