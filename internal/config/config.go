// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Table    TableConfig
	Export   ExportConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response; exports
	// of large tables may need more (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds row source settings.
type DatabaseConfig struct {
	// Driver selects the row source: postgres or sqlite (default: sqlite)
	Driver string `env:"DB_DRIVER" default:"sqlite"`

	// URL is the PostgreSQL connection string, required for the postgres driver.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// SQLitePath is the database file for the sqlite driver (default: tableview.db)
	SQLitePath string `env:"SQLITE_PATH" default:"tableview.db"`

	// Seed loads the demo datasets when their tables are empty (default: true)
	Seed bool `env:"DB_SEED" default:"true"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 2)
	MinConns int `env:"DB_MIN_CONNS" default:"2"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// QueryTimeout bounds a single page fetch (default: 10s)
	QueryTimeout time.Duration `env:"DB_QUERY_TIMEOUT" default:"10s"`
}

// TableConfig holds the defaults every table view starts from.
type TableConfig struct {
	// DefaultPageSize is the initial page size (default: 20)
	DefaultPageSize int `env:"TABLE_DEFAULT_PAGE_SIZE" default:"20"`

	// PageSizeOptions are the sizes offered in the page size picker
	PageSizeOptions []int `env:"TABLE_PAGE_SIZE_OPTIONS" default:"10,20,50,100"`

	// MaxPageSize caps any requested page size (default: 1000)
	MaxPageSize int `env:"TABLE_MAX_PAGE_SIZE" default:"1000"`

	// EmptyMessage is shown for an empty result (default: No data available)
	EmptyMessage string `env:"TABLE_EMPTY_MESSAGE" default:"No data available"`

	// SessionIdleTimeout drops a web client's table state after this long
	// without a request; 0 keeps it for the life of the process (default: 30m)
	SessionIdleTimeout time.Duration `env:"TABLE_SESSION_IDLE_TIMEOUT" default:"30m"`
}

// ExportConfig holds export settings.
type ExportConfig struct {
	// Dir is where the terminal host writes export files (default: exports)
	Dir string `env:"EXPORT_DIR" default:"exports"`

	// Orientation is the default document orientation (default: landscape)
	Orientation string `env:"EXPORT_ORIENTATION" default:"landscape"`

	// PaperSize is the default document paper size (default: A4)
	PaperSize string `env:"EXPORT_PAPER_SIZE" default:"A4"`

	// MaxRows caps how many rows an "all rows" export fetches (default: 50000)
	MaxRows int `env:"EXPORT_MAX_ROWS" default:"50000"`

	// MaxConcurrent is how many exports may encode at once (default: 3)
	MaxConcurrent int `env:"EXPORT_MAX_CONCURRENT" default:"3"`

	// MaxWait is how long an export waits for a free slot (default: 10s)
	MaxWait time.Duration `env:"EXPORT_MAX_WAIT" default:"10s"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey gates the JSON API behind X-API-Key (default: false)
	RequireAPIKey bool `env:"SECURITY_REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"SECURITY_API_KEYS"`

	// RateLimit is the per-client request budget per minute; 0 disables it (default: 300)
	RateLimit int `env:"SECURITY_RATE_LIMIT" default:"300"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`

	// File receives logs from the terminal host, which owns stdout (default: tableview.log)
	File string `env:"LOG_FILE" default:"tableview.log"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
