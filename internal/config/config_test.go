package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Port != 8080 || cfg.HTTP.Host != "0.0.0.0" {
		t.Fatalf("unexpected http defaults: %+v", cfg.HTTP)
	}
	if cfg.HTTP.ReadTimeout != 10*time.Second {
		t.Fatalf("expected 10s read timeout, got %v", cfg.HTTP.ReadTimeout)
	}
	if cfg.Store.Driver != "memory" {
		t.Fatalf("expected memory store by default, got %s", cfg.Store.Driver)
	}
	if cfg.Lifecycle.ClientDeletePolicy != "always" {
		t.Fatalf("expected always policy, got %s", cfg.Lifecycle.ClientDeletePolicy)
	}
	if cfg.Archive.Driver != "none" {
		t.Fatalf("expected archive disabled, got %s", cfg.Archive.Driver)
	}
	if cfg.Insights.Endpoint != "" || cfg.Telemetry.Enabled {
		t.Fatalf("expected optional integrations disabled")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("STORE_DSN", "file:test.db")
	t.Setenv("LIFECYCLE_CLIENT_DELETE_POLICY", "if-clean")
	t.Setenv("INSIGHTS_TIMEOUT", "5s")
	t.Setenv("LOG_COLOR", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if len(cfg.HTTP.AllowedOrigins) != 2 || cfg.HTTP.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins: %v", cfg.HTTP.AllowedOrigins)
	}
	if cfg.Store.Driver != "sqlite" {
		t.Fatalf("expected normalized driver, got %s", cfg.Store.Driver)
	}
	if cfg.Insights.Timeout != 5*time.Second || !cfg.Logging.Colored {
		t.Fatalf("unexpected overrides: %+v %+v", cfg.Insights, cfg.Logging)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"port out of range", map[string]string{"SERVER_PORT": "70000"}, "out of range"},
		{"port not int", map[string]string{"SERVER_PORT": "abc"}, "parse env"},
		{"bad duration", map[string]string{"SERVER_READ_TIMEOUT": "soon"}, "parse env"},
		{"unknown driver", map[string]string{"STORE_DRIVER": "mongo"}, "STORE_DRIVER"},
		{"missing dsn", map[string]string{"STORE_DRIVER": "postgres"}, "STORE_DSN"},
		{"bad policy", map[string]string{"LIFECYCLE_CLIENT_DELETE_POLICY": "never"}, "POLICY"},
		{"s3 without bucket", map[string]string{"ARCHIVE_DRIVER": "s3"}, "ARCHIVE_S3_BUCKET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
