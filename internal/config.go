package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/grapebaby/grape/internal/civil"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	SQLite   SQLiteConfig      `yaml:"sqlite"`
	Data     DataConfig        `yaml:"data"`
	Tracking TrackingConfig    `yaml:"tracking"`
	Backup   BackupConfig      `yaml:"backup"`
	Inbox    InboxConfig       `yaml:"inbox"`
	SSE      SSEConfig         `yaml:"sse"`
	Metrics  MetricsConfig     `yaml:"metrics"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Data.Validate(); err != nil {
		return err
	}
	if err := c.Tracking.Validate(); err != nil {
		return err
	}
	if err := c.Backup.Validate(); err != nil {
		return err
	}
	return c.SSE.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	Log      LogConfig  `yaml:"log"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// LogConfig controls the optional rotated log file. Logs always go to stdout;
// File adds a second destination.
type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Validate validates the log configuration.
func (c *LogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxSizeMB, validation.Min(0)),
		validation.Field(&c.MaxBackups, validation.Min(0)),
		validation.Field(&c.MaxAgeDays, validation.Min(0)),
	)
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// DataConfig holds the root directory for inbox/ and backups/.
type DataConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the data configuration.
func (c *DataConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// TrackingConfig describes the single tracked baby and the offset its days
// are read at.
type TrackingConfig struct {
	SubjectID   string `yaml:"subject_id"`
	SubjectName string `yaml:"subject_name"`
	BirthDate   string `yaml:"birth_date"`
	Gender      string `yaml:"gender"`
	UTCOffset   string `yaml:"utc_offset"`
}

// Validate validates the tracking configuration.
func (c *TrackingConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.SubjectID, validation.Required),
		validation.Field(&c.UTCOffset, validation.Required),
	); err != nil {
		return err
	}
	if _, err := c.Offset(); err != nil {
		return fmt.Errorf("tracking: utc_offset: %w", err)
	}
	if _, err := c.Birth(); err != nil {
		return fmt.Errorf("tracking: birth_date: %w", err)
	}
	return nil
}

// Offset parses UTCOffset.
func (c *TrackingConfig) Offset() (civil.Offset, error) {
	return civil.ParseOffset(c.UTCOffset)
}

// Birth parses BirthDate. An empty value yields the zero Date.
func (c *TrackingConfig) Birth() (civil.Date, error) {
	if c.BirthDate == "" {
		return civil.Date{}, nil
	}
	return civil.ParseDate(c.BirthDate)
}

// BackupConfig controls the periodic export writer.
type BackupConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	Keep     int           `yaml:"keep"`
}

// Validate validates the backup configuration.
func (c *BackupConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Interval < time.Minute {
		return errors.New("backup: interval must be at least 1m")
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Keep, validation.Min(0)),
	)
}

// InboxConfig toggles the import inbox watcher.
type InboxConfig struct {
	Enabled bool `yaml:"enabled"`
}

// SSEConfig controls the event stream.
type SSEConfig struct {
	Throttle time.Duration `yaml:"throttle"`
}

// Validate validates the SSE configuration.
func (c *SSEConfig) Validate() error {
	if c.Throttle < 0 {
		return errors.New("sse: throttle must not be negative")
	}
	return nil
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			Log: LogConfig{
				MaxSizeMB:  50,
				MaxBackups: 5,
				MaxAgeDays: 30,
			},
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./grape.db",
		},
		Data: DataConfig{
			Path: "./data",
		},
		Tracking: TrackingConfig{
			SubjectID:   "default-baby",
			SubjectName: "Baby",
			UTCOffset:   civil.ChinaStandardTime.String(),
		},
		Backup: BackupConfig{
			Enabled:  true,
			Interval: 24 * time.Hour,
			Keep:     14,
		},
		Inbox: InboxConfig{
			Enabled: true,
		},
		SSE: SSEConfig{
			Throttle: 2 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}
