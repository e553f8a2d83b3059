// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Dataset sources.
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Dataset  DatasetConfig
	Database DatabaseConfig
	Report   ReportConfig
	Rate     RateLimitConfig
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

	// WriteTimeout is the maximum duration for writing response (default: 0 for the live socket)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// MaxBodySize caps request bodies in bytes (default: 1MB)
	MaxBodySize int64 `env:"SERVER_MAX_BODY_SIZE" default:"1048576"`
}

// DatasetConfig selects where the price list is read from.
type DatasetConfig struct {
	// Source is file or postgres (default: file)
	Source string `env:"DATASET_SOURCE" default:"file"`

	// Path is the JSON document read when Source is file
	Path string `env:"DATASET_PATH" default:"resultados_precios.json"`

	// ID selects a stored extraction when Source is postgres; empty means latest
	ID string `env:"DATASET_ID"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string, required for the postgres source.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int `env:"DB_MIN_CONNS" default:"0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// ReportConfig holds email report settings.
type ReportConfig struct {
	// Endpoint is the email service URL (default: http://127.0.0.1:8000/email)
	Endpoint string `env:"REPORT_ENDPOINT" default:"http://127.0.0.1:8000/email"`

	// Timeout bounds a single send (default: 30s)
	Timeout time.Duration `env:"REPORT_TIMEOUT" default:"30s"`

	// DefaultSubject replaces a blank subject (default: Reporte de precios)
	DefaultSubject string `env:"REPORT_DEFAULT_SUBJECT" default:"Reporte de precios"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 120)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// ReportLimit is requests per minute for report endpoints (default: 10)
	ReportLimit int `env:"RATE_LIMIT_REPORT" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey protects /api with X-API-Key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`

	// File, when set, also writes logs to a rotating file
	File string `env:"LOG_FILE"`

	// FileMaxSizeMB rotates the log file after this size (default: 10)
	FileMaxSizeMB int `env:"LOG_FILE_MAX_SIZE_MB" default:"10"`

	// FileMaxBackups is how many rotated files to keep (default: 5)
	FileMaxBackups int `env:"LOG_FILE_MAX_BACKUPS" default:"5"`

	// FileMaxAgeDays removes rotated files older than this (default: 30)
	FileMaxAgeDays int `env:"LOG_FILE_MAX_AGE_DAYS" default:"30"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
