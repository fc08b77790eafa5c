package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP      HTTPConfig
	Store     StoreConfig
	Logging   LoggingConfig
	Lifecycle LifecycleConfig
	Archive   ArchiveConfig
	Insights  InsightsConfig
	Telemetry TelemetryConfig
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host             string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port             int           `env:"SERVER_PORT" envDefault:"8080"`
	ReadTimeout      time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout     time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout      time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout  time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MetricsEnabled   bool          `env:"SERVER_METRICS_ENABLED" envDefault:"true"`
	AllowedOrigins   []string      `env:"SERVER_ALLOWED_ORIGINS" envSeparator:","`
	AllowCredentials bool          `env:"SERVER_ALLOW_CREDENTIALS"`
}

// StoreConfig describes connectivity to the record store.
type StoreConfig struct {
	Driver         string `env:"STORE_DRIVER" envDefault:"memory"`
	DSN            string `env:"STORE_DSN"`
	Database       string `env:"STORE_DATABASE"`
	Username       string `env:"STORE_USERNAME"`
	Password       string `env:"STORE_PASSWORD"`
	MaxConnections int    `env:"STORE_MAX_CONNECTIONS" envDefault:"10"`
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string `env:"LOG_LEVEL" envDefault:"info"`
	Format        string `env:"LOG_FORMAT" envDefault:"text"` // text|json
	Colored       bool   `env:"LOG_COLOR"`
	IncludeCaller bool   `env:"LOG_INCLUDE_CALLER"`
}

// LifecycleConfig controls complete client deletion.
type LifecycleConfig struct {
	ClientDeletePolicy string `env:"LIFECYCLE_CLIENT_DELETE_POLICY" envDefault:"always"`
}

// ArchiveConfig selects where deletion reports are kept.
type ArchiveConfig struct {
	Driver      string `env:"ARCHIVE_DRIVER" envDefault:"none"`
	FSRoot      string `env:"ARCHIVE_FS_ROOT" envDefault:"./deletion-reports"`
	S3Bucket    string `env:"ARCHIVE_S3_BUCKET"`
	S3Region    string `env:"ARCHIVE_S3_REGION" envDefault:"us-east-1"`
	S3Endpoint  string `env:"ARCHIVE_S3_ENDPOINT"`
	S3PathStyle bool   `env:"ARCHIVE_S3_PATH_STYLE"`
}

// InsightsConfig points at the narrative generation endpoint. An empty
// endpoint disables generation.
type InsightsConfig struct {
	Endpoint string        `env:"INSIGHTS_ENDPOINT"`
	Model    string        `env:"INSIGHTS_MODEL" envDefault:"llama3"`
	Timeout  time.Duration `env:"INSIGHTS_TIMEOUT" envDefault:"60s"`
}

// TelemetryConfig controls OpenTelemetry span export.
type TelemetryConfig struct {
	Enabled     bool   `env:"OTEL_ENABLED"`
	Endpoint    string `env:"OTEL_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"clientdesk"`
}

// Load reads configuration from environment variables, applying defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("port %d is out of range", c.HTTP.Port)
	}

	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	switch c.Store.Driver {
	case "memory", "sqlite", "postgres", "neo4j":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Store.Driver != "memory" && c.Store.DSN == "" {
		return fmt.Errorf("STORE_DSN is required for driver %s", c.Store.Driver)
	}

	switch c.Lifecycle.ClientDeletePolicy {
	case "always", "if-clean":
	default:
		return fmt.Errorf("unknown LIFECYCLE_CLIENT_DELETE_POLICY %q", c.Lifecycle.ClientDeletePolicy)
	}

	c.Archive.Driver = strings.ToLower(strings.TrimSpace(c.Archive.Driver))
	switch c.Archive.Driver {
	case "none", "memory", "fs", "s3":
	default:
		return fmt.Errorf("unknown ARCHIVE_DRIVER %q", c.Archive.Driver)
	}
	if c.Archive.Driver == "s3" && c.Archive.S3Bucket == "" {
		return fmt.Errorf("ARCHIVE_S3_BUCKET is required for the s3 archive")
	}

	origins := c.HTTP.AllowedOrigins[:0]
	for _, origin := range c.HTTP.AllowedOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	c.HTTP.AllowedOrigins = origins
	return nil
}
