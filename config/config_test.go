package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// clearEnv hides overrides set in the test environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvDatabaseURL, EnvRedisAddr, EnvAddr, EnvUploadsDir} {
		t.Setenv(key, "")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
redis:
  addr: "localhost:6379"
  ttl: 2m
pdf:
  organization: "Acme Studio"
  conforme_qr: true
  margins:
    top: 20
`)
	clearEnv(t)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := Default()
	want.Server.Addr = ":9090"
	want.Redis.Addr = "localhost:6379"
	want.Redis.TTL = 2 * time.Minute
	want.PDF.Organization = "Acme Studio"
	want.PDF.ConformeQR = true
	want.PDF.Margins.Top = 20
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "database:\n  dsn: file.db\n")
	t.Setenv(EnvDatabaseURL, "postgres://u:p@db/proposals")
	t.Setenv(EnvRedisAddr, "redis:6379")
	t.Setenv(EnvAddr, ":7000")
	t.Setenv(EnvUploadsDir, "/srv/uploads")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.DSN != "postgres://u:p@db/proposals" {
		t.Errorf("dsn = %q", cfg.Database.DSN)
	}
	if cfg.Redis.Addr != "redis:6379" || cfg.Server.Addr != ":7000" || cfg.Assets.UploadsDir != "/srv/uploads" {
		t.Errorf("env not applied: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Load(writeConfig(t, "server: [unclosed")); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadOrDefault(t *testing.T) {
	clearEnv(t)
	for _, path := range []string{"", filepath.Join(t.TempDir(), "none.yaml")} {
		cfg, err := LoadOrDefault(path)
		if err != nil {
			t.Fatalf("LoadOrDefault(%q): %v", path, err)
		}
		if diff := cmp.Diff(Default(), cfg); diff != "" {
			t.Errorf("LoadOrDefault(%q) mismatch (-want +got):\n%s", path, diff)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty addr", func(c *Config) { c.Server.Addr = " " }, true},
		{"empty dsn", func(c *Config) { c.Database.DSN = "" }, true},
		{"json logs", func(c *Config) { c.Log.Format = "JSON" }, false},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"negative ttl", func(c *Config) { c.Redis.TTL = -time.Second }, true},
		{"negative margin", func(c *Config) { c.PDF.Margins.Left = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.PDF.AmountInWords = true
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	clearEnv(t)
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
