package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Model    ModelConfig    `yaml:"model"`
	Database DatabaseConfig `yaml:"database"`
	History  HistoryConfig  `yaml:"history"`
	Events   EventsConfig   `yaml:"events"`
	Slack    SlackConfig    `yaml:"slack"`
	Report   ReportConfig   `yaml:"report"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port            int             `yaml:"port"`
	ReadTimeout     time.Duration   `yaml:"readTimeout"`
	WriteTimeout    time.Duration   `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration   `yaml:"shutdownTimeout"`
	MetricsPort     int             `yaml:"metricsPort"`
	APIToken        string          `yaml:"apiToken"`
	BodyLimitBytes  int64           `yaml:"bodyLimitBytes"`
	RateLimit       RateLimitConfig `yaml:"rateLimit"`
}

type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	TrustProxyHeaders bool `yaml:"trustProxyHeaders"`
}

type ModelConfig struct {
	Provider string        `yaml:"provider"`
	Forest   ForestConfig  `yaml:"forest"`
	Sidecar  SidecarConfig `yaml:"sidecar"`
	// ExplainerEnabled turns feature attribution on. When off every
	// prediction carries the degraded attribution.
	ExplainerEnabled bool `yaml:"explainerEnabled"`
}

type ForestConfig struct {
	Path string `yaml:"path"`
}

type SidecarConfig struct {
	BaseURL string        `yaml:"baseURL"`
	Timeout time.Duration `yaml:"timeout"`
}

type DatabaseConfig struct {
	Driver   string         `yaml:"driver"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type SQLiteConfig struct {
	Path              string `yaml:"path"`
	MaxOpenConns      int    `yaml:"maxOpenConns"`
	PragmaJournalMode string `yaml:"pragmaJournalMode"`
	PragmaBusyTimeout int    `yaml:"pragmaBusyTimeout"`
}

type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
}

type HistoryConfig struct {
	DefaultPageSize int `yaml:"defaultPageSize"`
	MaxPageSize     int `yaml:"maxPageSize"`
}

type EventsConfig struct {
	Redis RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Enabled bool          `yaml:"enabled"`
	URL     string        `yaml:"url"`
	Channel string        `yaml:"channel"`
	Timeout time.Duration `yaml:"timeout"`
}

type SlackConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"botToken"`
	Channel  string `yaml:"channel"`
}

type ReportConfig struct {
	Title    string `yaml:"title"`
	Currency string `yaml:"currency"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// Output is "stdout", "stderr" or a file path. Files are rotated.
	Output     string `yaml:"output"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	Compress   bool   `yaml:"compress"`
}

// Load reads a YAML config file and returns a Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment without overriding variables that are already set. A missing
// file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MetricsPort:     9090,
			BodyLimitBytes:  10 << 20,
			RateLimit:       RateLimitConfig{Enabled: true, RequestsPerMinute: 120},
		},
		Model: ModelConfig{
			Provider:         "forest",
			Forest:           ForestConfig{Path: "models/forest.json"},
			Sidecar:          SidecarConfig{BaseURL: "http://localhost:8500", Timeout: 10 * time.Second},
			ExplainerEnabled: true,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{
				Path:              "/data/pdm.db",
				MaxOpenConns:      1,
				PragmaJournalMode: "wal",
				PragmaBusyTimeout: 5000,
			},
			Postgres: PostgresConfig{MaxConns: 10},
		},
		History: HistoryConfig{
			DefaultPageSize: 10,
			MaxPageSize:     200,
		},
		Events: EventsConfig{
			Redis: RedisConfig{
				URL:     "redis://localhost:6379/0",
				Channel: "pdm:predictions",
				Timeout: 2 * time.Second,
			},
		},
		Slack: SlackConfig{
			Channel: "#maintenance-alerts",
		},
		Report: ReportConfig{
			Title:    "Predictive Maintenance Report",
			Currency: "INR",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			Output:     "stdout",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
	}
}

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// ${VAR:-default} falls back to default when VAR is unset or empty; a plain
// ${VAR} that is unset is left as is.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		if name, def, ok := strings.Cut(key, ":-"); ok {
			if val := os.Getenv(name); val != "" {
				return val
			}
			return def
		}
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return "${" + key + "}"
	})
}

// RateLimitPerMinute returns the effective limit, 0 when disabled.
func (c ServerConfig) RateLimitPerMinute() int {
	if !c.RateLimit.Enabled {
		return 0
	}
	return c.RateLimit.RequestsPerMinute
}
