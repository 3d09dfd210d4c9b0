package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultPriceURL          = "https://m.stock.naver.com/api/stock"
	DefaultCatalogURL        = "http://kind.krx.co.kr/corpgeneral/corpList.do?method=download&searchType=13"
	DefaultPageSize          = 10
	DefaultAPITimeout        = 30 * time.Second
	DefaultMaxRetries        = 3
	DefaultRetryBackoff      = 1 * time.Second
	DefaultDriver            = DriverPostgres
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultMaxConns          = 10
	DefaultMinConns          = 2
	DefaultSQLitePath        = "pricesync.db"
	DefaultPagesFile         = "pages.yaml"
	DefaultPages             = 100
	DefaultConcurrency       = 4
	DefaultInstrumentTimeout = 5 * time.Minute
	DefaultMergeTimeout      = time.Minute
	DefaultAnchorTime        = "17:00"
	DefaultServerPort        = 9090
	DefaultLogLevel          = "info"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ApplyDefaults fills unset optional fields.
func (c *SyncerConfig) ApplyDefaults() {
	// API defaults
	if c.API.PriceURL == "" {
		c.API.PriceURL = DefaultPriceURL
	}
	if c.API.CatalogURL == "" {
		c.API.CatalogURL = DefaultCatalogURL
	}
	if c.API.PageSize == 0 {
		c.API.PageSize = DefaultPageSize
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}
	if c.API.RetryBackoff == 0 {
		c.API.RetryBackoff = DefaultRetryBackoff
	}

	// Database defaults
	if c.Database.Driver == "" {
		c.Database.Driver = DefaultDriver
	}
	applyDBDefaults(&c.Database.Postgres)
	if c.Database.SQLite.Path == "" {
		c.Database.SQLite.Path = DefaultSQLitePath
	}

	// Sync defaults
	if c.Sync.PagesFile == "" {
		c.Sync.PagesFile = DefaultPagesFile
	}
	if c.Sync.DefaultPages == 0 {
		c.Sync.DefaultPages = DefaultPages
	}
	if c.Sync.Concurrency == 0 {
		c.Sync.Concurrency = DefaultConcurrency
	}
	if c.Sync.InstrumentTimeout == 0 {
		c.Sync.InstrumentTimeout = DefaultInstrumentTimeout
	}
	if c.Sync.MergeTimeout == 0 {
		c.Sync.MergeTimeout = DefaultMergeTimeout
	}

	// Scheduler defaults
	if c.Scheduler.AnchorTime == "" {
		c.Scheduler.AnchorTime = DefaultAnchorTime
	}
	if c.Scheduler.RunOnStart == nil {
		runOnStart := true
		c.Scheduler.RunOnStart = &runOnStart
	}

	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
