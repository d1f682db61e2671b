// Package config loads the service configuration from YAML with
// environment overrides for deploy-time values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lvillar/proposalpdf/pdfengine"
)

// Environment variables that override file values.
const (
	EnvDatabaseURL = "DB_URL"
	EnvRedisAddr   = "REDIS_ADDR"
	EnvAddr        = "PROPOSALPDF_ADDR"
	EnvUploadsDir  = "PROPOSALPDF_UPLOADS_DIR"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Assets   AssetsConfig   `yaml:"assets"`
	PDF      PDFConfig      `yaml:"pdf"`
	Schemas  SchemasConfig  `yaml:"schemas"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type DatabaseConfig struct {
	// DSN is a postgres URL or a SQLite file path.
	DSN string `yaml:"dsn"`
}

// RedisConfig configures the rendered-PDF cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AssetsConfig struct {
	AppRoot    string `yaml:"app_root"`
	UploadsDir string `yaml:"uploads_dir"`
}

type PDFConfig struct {
	Organization  string       `yaml:"organization"`
	Stylesheet    string       `yaml:"stylesheet"`
	PageSize      string       `yaml:"page_size"`
	Margins       MarginConfig `yaml:"margins"`
	DateFormat    string       `yaml:"date_format"`
	ConformeQR    bool         `yaml:"conforme_qr"`
	AmountInWords bool         `yaml:"amount_in_words"`
}

// MarginConfig holds page margins in millimetres.
type MarginConfig struct {
	Top    float64 `yaml:"top"`
	Right  float64 `yaml:"right"`
	Bottom float64 `yaml:"bottom"`
	Left   float64 `yaml:"left"`
}

// Engine converts the margins for the PDF engine.
func (m MarginConfig) Engine() pdfengine.Margins {
	return pdfengine.Margins{Top: m.Top, Right: m.Right, Bottom: m.Bottom, Left: m.Left}
}

type SchemasConfig struct {
	// Dir holds YAML definitions overriding the built-in ones.
	Dir string `yaml:"dir"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	m := pdfengine.DefaultMargins
	return &Config{
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{DSN: "proposalpdf.db"},
		Redis:    RedisConfig{TTL: 10 * time.Minute},
		Assets:   AssetsConfig{AppRoot: ".", UploadsDir: "uploads"},
		PDF: PDFConfig{
			Organization: "Proposal Studio",
			PageSize:     "A4",
			Margins:      MarginConfig{Top: m.Top, Right: m.Right, Bottom: m.Bottom, Left: m.Left},
			DateFormat:   "2-01-2006",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults and applies environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

// LoadOrDefault loads path, or returns the defaults with environment
// overrides when path is empty or does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	cfg := Default()
	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(EnvDatabaseURL, &c.Database.DSN)
	set(EnvRedisAddr, &c.Redis.Addr)
	set(EnvAddr, &c.Server.Addr)
	set(EnvUploadsDir, &c.Assets.UploadsDir)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("config: server.addr is empty")
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("config: database.dsn is empty")
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: unknown log.format %q", c.Log.Format)
	}
	if c.Redis.TTL < 0 {
		return fmt.Errorf("config: negative redis.ttl %s", c.Redis.TTL)
	}
	m := c.PDF.Margins
	if m.Top < 0 || m.Right < 0 || m.Bottom < 0 || m.Left < 0 {
		return errors.New("config: negative pdf.margins")
	}
	return nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
