package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/gsea-browser/internal/index"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Data   DataConfig        `yaml:"data"`
	Table  TableConfig       `yaml:"table"`
	Index  IndexConfig       `yaml:"index"`
	Watch  WatchConfig       `yaml:"watch"`
	Events EventsConfig      `yaml:"events"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Data.Validate(); err != nil {
		return err
	}
	if err := c.Table.Validate(); err != nil {
		return err
	}
	if err := c.Index.Validate(); err != nil {
		return err
	}
	if c.Watch.Enabled && !c.Index.Enabled {
		return fmt.Errorf("watch: enabled requires index.enabled")
	}
	return c.Events.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	Title    string     `yaml:"title"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Title, validation.Required, validation.Length(1, 120)),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
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

// DataConfig holds the path to the directory of project folders.
type DataConfig struct {
	Root string `yaml:"root"`
}

// Validate validates the data configuration.
func (c *DataConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
	)
}

// TableConfig controls the results table.
type TableConfig struct {
	PageSize int `yaml:"page_size"`
}

// Validate validates the table configuration.
func (c *TableConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.PageSize, validation.Required, validation.Min(1), validation.Max(500)),
	)
}

// IndexConfig holds the catalog index configuration.
//
// The index is rebuilt from the data root on every start. DSN defaults to an
// in-memory database; a file path keeps it on disk between restarts, which
// only saves the initial parse.
type IndexConfig struct {
	Enabled bool   `yaml:"enabled"`
	DSN     string `yaml:"dsn"`
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DSN, validation.When(c.Enabled, validation.Required)),
	)
}

// WatchConfig controls the data root watcher.
type WatchConfig struct {
	Enabled bool `yaml:"enabled"`
}

// EventsConfig controls Server-Sent Events.
type EventsConfig struct {
	Throttle time.Duration `yaml:"throttle"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Throttle, validation.Min(100*time.Millisecond)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			Title:    "GSEA Results Dashboard",
			HTTP: HTTPConfig{
				Port: 8050,
			},
		},
		Data: DataConfig{
			Root: "./data",
		},
		Table: TableConfig{
			PageSize: 10,
		},
		Index: IndexConfig{
			Enabled: true,
			DSN:     index.MemoryDSN,
		},
		Watch: WatchConfig{
			Enabled: true,
		},
		Events: EventsConfig{
			Throttle: 2 * time.Second,
		},
	}
}
