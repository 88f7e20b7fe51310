package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
server:
  addr: ":9090"
  read_timeout: 10s
remote:
  base_url: http://localhost:8000/wp-json
  timeout: 2s
cache:
  backend: memory
  max_size: 50
render:
  views_dir: /srv/views
workers:
  warm_slugs: [my-plugin, other]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr = %q, want %q", cfg.Server.Addr, ":9090")
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("read_timeout = %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != 30*time.Second {
		t.Errorf("write_timeout default = %v", cfg.Server.WriteTimeout)
	}
	if cfg.Remote.BaseURL != "http://localhost:8000/wp-json" || cfg.Remote.Timeout != 2*time.Second {
		t.Errorf("remote = %+v", cfg.Remote)
	}
	if cfg.Remote.InsecureSkipVerify {
		t.Error("TLS verification must stay on unless configured")
	}
	if cfg.Cache.Backend != BackendMemory || cfg.Cache.MaxSize != 50 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Render.ViewsDir != "/srv/views" {
		t.Errorf("views_dir = %q", cfg.Render.ViewsDir)
	}
	if len(cfg.Workers.WarmSlugs) != 2 {
		t.Errorf("warm_slugs = %v", cfg.Workers.WarmSlugs)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "{}\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Remote.BaseURL != "https://wpaddons.io/wp-json" {
		t.Errorf("base_url = %q", cfg.Remote.BaseURL)
	}
	if cfg.Cache.Backend != BackendSQLite {
		t.Errorf("backend = %q", cfg.Cache.Backend)
	}
	if cfg.Log.Format != "json" || cfg.Log.Level != "info" {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestExpandEnv(t *testing.T) {
	// Cannot use t.Parallel() with t.Setenv
	t.Setenv("TEST_ADMIN_KEY", "secret-123")

	cfg, err := Load(writeConfig(t, "auth:\n  admin_key: ${TEST_ADMIN_KEY}\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Auth.AdminKey != "secret-123" {
		t.Errorf("admin_key = %q, want expanded value", cfg.Auth.AdminKey)
	}

	if got := string(expandEnv([]byte("x: ${WPADDONS_UNSET_VAR}"))); got != "x: ${WPADDONS_UNSET_VAR}" {
		t.Errorf("unset var should be kept verbatim, got %q", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown backend", func(c *Config) { c.Cache.Backend = "redis" }, "cache.backend"},
		{"memory size", func(c *Config) { c.Cache.Backend = BackendMemory; c.Cache.MaxSize = 0 }, "cache.max_size"},
		{"sqlite dsn", func(c *Config) { c.Database.DSN = "" }, "database.dsn"},
		{"sweep interval", func(c *Config) { c.Workers.SweepInterval = 0 }, "sweep_interval"},
		{"timeout", func(c *Config) { c.Remote.Timeout = 0 }, "remote.timeout"},
		{"warm interval", func(c *Config) { c.Workers.WarmSlugs = []string{"a"}; c.Workers.WarmInterval = 0 }, "warm_interval"},
		{"tracing endpoint", func(c *Config) { c.Telemetry.Tracing.Enabled = true }, "tracing.endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.want)
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}
