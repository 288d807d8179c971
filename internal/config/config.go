// Package config loads the application configuration from environment
// variables, applies defaults and validates everything on startup so a
// misconfigured deployment fails fast.
package config

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Upload   UploadConfig
	Cashback CashbackConfig
	Session  SessionConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout bounds a single request, reconciliation included (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// UploadConfig holds limits for uploaded exports.
type UploadConfig struct {
	// MaxFileSize is the maximum size of one export in bytes (default: 20MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"20971520"`

	// MaxFiles is the maximum number of sales exports per run (default: 24)
	MaxFiles int `env:"UPLOAD_MAX_FILES" default:"24"`

	// MaxConcurrent is the maximum number of parallel runs (default: 4)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long a run waits for a slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`
}

// CashbackConfig holds the default reconciliation settings. A scheme file,
// when configured, adds named alternatives on top of these.
type CashbackConfig struct {
	// Rate is the fraction of each sale returned as cashback (default: 0.10)
	Rate decimal.Decimal `env:"CASHBACK_RATE" default:"0.10"`

	// UnitPrice is the value of one reward unit; zero disables units
	UnitPrice decimal.Decimal `env:"CASHBACK_UNIT_PRICE" default:"0"`

	// Sort is the default ranking column: cashback, total_spent or name
	Sort string `env:"CASHBACK_SORT" default:"cashback"`

	// Dir is the default ranking direction; empty picks the column default
	Dir string `env:"CASHBACK_SORT_DIR"`

	// MessageTemplate overrides the invitation text
	MessageTemplate string `env:"CASHBACK_MESSAGE_TEMPLATE"`

	// SchemesFile is an optional YAML file of named cashback schemes
	SchemesFile string `env:"CASHBACK_SCHEMES_FILE"`
}

// SessionConfig holds browser session settings.
type SessionConfig struct {
	// IdleTimeout drops sessions untouched for this long (default: 2h)
	IdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" default:"2h"`

	// CookieName is the session cookie (default: cashback_session)
	CookieName string `env:"SESSION_COOKIE_NAME" default:"cashback_session"`

	// SecureCookie sets the Secure flag; enable behind HTTPS
	SecureCookie bool `env:"SESSION_SECURE_COOKIE" default:"false"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// AccessPIN is the shared secret required to generate invitation links
	AccessPIN string `env:"ACCESS_PIN" required:"true"`

	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// PINAttempts is how many PIN submissions one IP may make per minute (default: 10)
	PINAttempts int `env:"SECURITY_PIN_ATTEMPTS" default:"10"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
