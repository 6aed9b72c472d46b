// Package config defines the monitor configuration and its defaults.
//
// Conventions:
// - New() returns a Config with defaults; Load layers file and env on top.
// - Nil exclusion lists mean "use the built-in denylists".
// - Validate reports the first problem wrapped in ErrInvalidConfig.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Timezone is used for human-facing timestamps in reports.
	Timezone string `koanf:"timezone"`

	// LowStockThreshold is the inclusive quantity at or below which an option alerts.
	LowStockThreshold int `koanf:"low_stock_threshold"`

	// Concurrency caps in-flight catalog lookups.
	Concurrency int `koanf:"concurrency"`

	SponsorExclusions []string `koanf:"sponsor_exclusions"`
	ItemExclusions    []string `koanf:"item_exclusions"`

	Catalog  CatalogConfig  `koanf:"catalog"`
	Database DatabaseConfig `koanf:"database"`
	Listing  ListingConfig  `koanf:"listing"`
	Excel    ExcelConfig    `koanf:"excel"`
	Mail     MailConfig     `koanf:"mail"`
	Archive  ArchiveConfig  `koanf:"archive"`
	Schedule ScheduleConfig `koanf:"schedule"`
}

// CatalogConfig configures the GraphQL lookup client.
type CatalogConfig struct {
	Endpoint      string            `koanf:"endpoint"`
	Timeout       time.Duration     `koanf:"timeout"`
	RatePerSecond float64           `koanf:"rate_per_second"`
	Burst         int               `koanf:"burst"`
	Headers       map[string]string `koanf:"headers"`
}

// DatabaseConfig configures the identifier source database.
type DatabaseConfig struct {
	DSN      string        `koanf:"dsn"`
	Query    string        `koanf:"query"`
	Timeout  time.Duration `koanf:"timeout"`
	MaxConns int32         `koanf:"max_conns"`
}

// ListingConfig configures the transient listing file.
type ListingConfig struct {
	// Path is where the per-run listing is written and removed.
	Path string `koanf:"path"`

	// SourceFile, when set, replaces the database as the identifier source.
	SourceFile string `koanf:"source_file"`
}

type ExcelConfig struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
}

type MailConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Host     string        `koanf:"host"`
	Port     int           `koanf:"port"`
	Username string        `koanf:"username"`
	Password string        `koanf:"password"`
	From     string        `koanf:"from"`
	To       []string      `koanf:"to"`
	Timeout  time.Duration `koanf:"timeout"`
	// AttachSpreadsheet attaches the excel report when both are enabled.
	AttachSpreadsheet bool `koanf:"attach_spreadsheet"`
}

type ArchiveConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Bucket   string        `koanf:"bucket"`
	Prefix   string        `koanf:"prefix"`
	Region   string        `koanf:"region"`
	Endpoint string        `koanf:"endpoint"`
	Retries  int           `koanf:"retries"`
	Backoff  time.Duration `koanf:"backoff"`
}

type ScheduleConfig struct {
	Interval time.Duration `koanf:"interval"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		Timezone:          "UTC",
		LowStockThreshold: 50,
		Concurrency:       10,
		Catalog: CatalogConfig{
			Endpoint: "https://runningland.com.br/graphql",
			Timeout:  15 * time.Second,
			Burst:    1,
		},
		Database: DatabaseConfig{
			Timeout:  30 * time.Second,
			MaxConns: 4,
		},
		Listing: ListingConfig{
			Path: "url.json",
		},
		Excel: ExcelConfig{
			Dir: "reports",
		},
		Mail: MailConfig{
			Port:              587,
			Timeout:           30 * time.Second,
			AttachSpreadsheet: true,
		},
		Archive: ArchiveConfig{
			Prefix:  "stockwatch",
			Region:  "us-east-1",
			Retries: 2,
			Backoff: 500 * time.Millisecond,
		},
		Schedule: ScheduleConfig{
			Interval: time.Hour,
		},
	}
}

// Location resolves Timezone, falling back to UTC when empty.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Validate checks the configuration for values the monitor cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LowStockThreshold < 0:
		return fmt.Errorf("%w: low_stock_threshold must be >= 0, got %d", ErrInvalidConfig, c.LowStockThreshold)
	case c.Concurrency < 1:
		return fmt.Errorf("%w: concurrency must be >= 1, got %d", ErrInvalidConfig, c.Concurrency)
	case c.Schedule.Interval <= 0:
		return fmt.Errorf("%w: schedule.interval must be positive", ErrInvalidConfig)
	case c.Catalog.Timeout <= 0:
		return fmt.Errorf("%w: catalog.timeout must be positive", ErrInvalidConfig)
	case c.Catalog.RatePerSecond < 0:
		return fmt.Errorf("%w: catalog.rate_per_second must be >= 0", ErrInvalidConfig)
	case c.Listing.Path == "":
		return fmt.Errorf("%w: listing.path must not be empty", ErrInvalidConfig)
	case c.Database.DSN == "" && c.Listing.SourceFile == "":
		return fmt.Errorf("%w: one of database.dsn or listing.source_file is required", ErrInvalidConfig)
	}

	if u, err := url.Parse(c.Catalog.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: catalog.endpoint %q is not an absolute URL", ErrInvalidConfig, c.Catalog.Endpoint)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: timezone: %w", ErrInvalidConfig, err)
	}
	if c.Excel.Enabled && c.Excel.Dir == "" {
		return fmt.Errorf("%w: excel.dir must not be empty", ErrInvalidConfig)
	}
	if c.Mail.Enabled {
		if c.Mail.Host == "" || c.Mail.From == "" || len(c.Mail.To) == 0 {
			return fmt.Errorf("%w: mail requires host, from and to", ErrInvalidConfig)
		}
	}
	if c.Archive.Enabled && c.Archive.Bucket == "" {
		return fmt.Errorf("%w: archive.bucket must not be empty", ErrInvalidConfig)
	}
	return nil
}
