package config

import "time"

// SyncerConfig is the root configuration for a pricesync instance.
type SyncerConfig struct {
	Instance  InstanceConfig  `yaml:"instance"`
	API       APIConfig       `yaml:"api"`
	Database  DatabaseConfig  `yaml:"database"`
	Sync      SyncConfig      `yaml:"sync"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
}

// InstanceConfig identifies this syncer.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// APIConfig holds remote source settings.
type APIConfig struct {
	PriceURL     string        `yaml:"price_url"`   // Base URL of the daily price API
	CatalogURL   string        `yaml:"catalog_url"` // Full URL of the listed-company download
	PageSize     int           `yaml:"page_size"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// DatabaseConfig selects and configures the store.
type DatabaseConfig struct {
	Driver   string       `yaml:"driver"` // "postgres" or "sqlite"
	Postgres DBConfig     `yaml:"postgres"`
	SQLite   SQLiteConfig `yaml:"sqlite"`
}

// DBConfig holds a single PostgreSQL connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// SQLiteConfig holds the SQLite database location.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// SyncConfig holds price synchronizer settings.
type SyncConfig struct {
	PagesFile         string        `yaml:"pages_file"`    // Page cap file (pages_to_fetch)
	DefaultPages      int           `yaml:"default_pages"` // Fallback written when the file is unreadable
	Concurrency       int           `yaml:"concurrency"`
	InstrumentTimeout time.Duration `yaml:"instrument_timeout"`
	MergeTimeout      time.Duration `yaml:"merge_timeout"`
}

// SchedulerConfig holds the daily trigger settings.
type SchedulerConfig struct {
	AnchorTime string `yaml:"anchor_time"` // "HH:MM", local time
	RunOnStart *bool  `yaml:"run_on_start"`
}

// ServerConfig holds the read endpoint settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}
