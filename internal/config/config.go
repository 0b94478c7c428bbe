// Package config loads dashboard settings from environment variables.
// Every setting has a default, so the server starts with no configuration;
// values are validated on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Upload   UploadConfig
	Session  SessionConfig
	Dataset  DatasetConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1)
	Host string `env:"SERVER_HOST" default:"127.0.0.1"`

	// Port is the port to listen on (default: 8501)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8501"`

	// ReadTimeout bounds reading a request, including uploads (default: 2m)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"2m"`

	// WriteTimeout bounds writing a response (default: 2m)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"2m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is how long to wait for in-flight requests on exit (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for non-upload requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// UploadConfig holds file ingestion settings.
type UploadConfig struct {
	// MaxFileSize is the largest accepted file, after decompression (default: 200MB)
	MaxFileSize ByteSize `env:"UPLOAD_MAX_FILE_SIZE" default:"200MB"`

	// MaxFiles is the most files accepted in one upload (default: 20)
	MaxFiles int `env:"UPLOAD_MAX_FILES" default:"20"`

	// ChunkSize is the number of rows read per chunk (default: 10000)
	ChunkSize int `env:"UPLOAD_CHUNK_SIZE" default:"10000"`

	// MaxConcurrent is the number of uploads parsed in parallel (default: 4)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long an upload waits for a parse slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`

	// Timeout bounds parsing one upload (default: 5m)
	Timeout time.Duration `env:"UPLOAD_TIMEOUT" default:"5m"`
}

// SessionConfig holds per-user session settings.
type SessionConfig struct {
	// TTL is how long an unused session keeps its table (default: 2h)
	TTL time.Duration `env:"SESSION_TTL" default:"2h"`

	// SweepInterval is how often expired sessions are removed (default: 1m)
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" default:"1m"`

	// CookieName names the session cookie (default: nsqip_session)
	CookieName string `env:"SESSION_COOKIE_NAME" default:"nsqip_session"`

	// SecureCookie marks the cookie Secure; enable behind HTTPS (default: false)
	SecureCookie bool `env:"SESSION_SECURE_COOKIE" default:"false"`
}

// DatasetConfig names the registry columns the dashboard works with.
type DatasetConfig struct {
	// SpecialtyColumn drives the first filter (default: SURGSPEC)
	SpecialtyColumn string `env:"DATASET_SPECIALTY_COLUMN" default:"SURGSPEC"`

	// CodeColumn drives the second filter and the export filename (default: CPT)
	CodeColumn string `env:"DATASET_CODE_COLUMN" default:"CPT"`

	// SexColumn is summarized on the dashboard (default: SEX)
	SexColumn string `env:"DATASET_SEX_COLUMN" default:"SEX"`

	// PreviewRows is the default number of rows in the preview (default: 100)
	PreviewRows int `env:"DATASET_PREVIEW_ROWS" default:"100"`

	// HistogramBins is the number of bins on numeric axes (default: 20)
	HistogramBins int `env:"DATASET_HISTOGRAM_BINS" default:"20"`

	// ExportDir pre-fills the save-to-folder field (default: empty)
	ExportDir string `env:"DATASET_EXPORT_DIR"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 240)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"240"`

	// UploadLimit is requests per minute for the upload endpoint (default: 10)
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	// Enabled serves metrics at Path (default: true)
	Enabled bool `env:"METRICS_ENABLED" default:"true"`

	// Path is the metrics endpoint (default: /metrics)
	Path string `env:"METRICS_PATH" default:"/metrics"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
