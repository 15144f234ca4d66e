package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/musclemap/internal/logging"
	"github.com/dmitrijs2005/musclemap/internal/storage/photoarchive"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "MUSCLEMAP_"

type Config struct {
	DatabaseDSN  string        `env:"DSN"`
	TickInterval time.Duration `env:"TICK_INTERVAL"`
	// Location is the IANA zone used for calendar-day math.
	Location string `env:"LOCATION"`

	LogLevel  string `env:"LOG_LEVEL"`
	LogFormat string `env:"LOG_FORMAT"`
	LogFile   string `env:"LOG_FILE"`

	MetricsAddr string `env:"METRICS_ADDR"`

	PhotoMaxWidth int `env:"PHOTO_MAX_WIDTH"`
	PhotoQuality  int `env:"PHOTO_QUALITY"`

	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "musclemap.db"
	c.TickInterval = time.Second
	c.Location = "Local"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.PhotoMaxWidth = 800
	c.PhotoQuality = 70
	c.S3Region = "us-east-1"
}

// Load builds a Config from defaults, the config file named in args, the
// environment and finally args itself. args excludes the program name.
func Load(args []string, environ map[string]string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, environ); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges that the loaders cannot.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database dsn is required"))
	}
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick interval must be positive, got %s", c.TickInterval))
	}
	if c.PhotoMaxWidth <= 0 {
		errs = append(errs, fmt.Errorf("photo max width must be positive, got %d", c.PhotoMaxWidth))
	}
	if c.PhotoQuality < 1 || c.PhotoQuality > 100 {
		errs = append(errs, fmt.Errorf("photo quality must be within 1..100, got %d", c.PhotoQuality))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.TimeLocation(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// TimeLocation resolves Location. Empty and "Local" mean the host zone.
func (c *Config) TimeLocation() (*time.Location, error) {
	if c.Location == "" || c.Location == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return nil, fmt.Errorf("load location %q: %w", c.Location, err)
	}
	return loc, nil
}

func (c *Config) Logging() logging.Options {
	return logging.Options{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		File:       c.LogFile,
		MaxSizeMB:  10,
		MaxBackups: 3,
	}
}

func (c *Config) Archive() photoarchive.Config {
	return photoarchive.Config{
		Region:    c.S3Region,
		Endpoint:  c.S3Endpoint,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
		Bucket:    c.S3Bucket,
	}
}
