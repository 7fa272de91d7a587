package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the config for errors and reports all of them at once.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	if cfg.Server.MetricsPort < 0 || cfg.Server.MetricsPort > 65535 {
		errs = append(errs, "server.metricsPort must be between 0 and 65535")
	}
	if cfg.Server.MetricsPort != 0 && cfg.Server.MetricsPort == cfg.Server.Port {
		errs = append(errs, "server.metricsPort must differ from server.port")
	}
	if cfg.Server.RateLimit.Enabled && cfg.Server.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, "server.rateLimit.requestsPerMinute must be positive when rate limiting is enabled")
	}

	switch cfg.Model.Provider {
	case "forest":
		if cfg.Model.Forest.Path == "" {
			errs = append(errs, "model.forest.path is required when provider is forest")
		}
	case "sidecar":
		if u, err := url.Parse(cfg.Model.Sidecar.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("model.sidecar.baseURL must be an absolute URL (got %q)", cfg.Model.Sidecar.BaseURL))
		}
	default:
		errs = append(errs, fmt.Sprintf("model.provider must be forest or sidecar (got %q)", cfg.Model.Provider))
	}

	validDrivers := map[string]bool{"sqlite": true, "postgres": true}
	if !validDrivers[cfg.Database.Driver] {
		errs = append(errs, fmt.Sprintf("database.driver must be sqlite or postgres (got %q)", cfg.Database.Driver))
	}
	if cfg.Database.Driver == "sqlite" && cfg.Database.SQLite.Path == "" {
		errs = append(errs, "database.sqlite.path is required when driver is sqlite")
	}
	if cfg.Database.Driver == "postgres" && cfg.Database.Postgres.DSN == "" {
		errs = append(errs, "database.postgres.dsn is required when driver is postgres")
	}

	if cfg.History.DefaultPageSize <= 0 {
		errs = append(errs, "history.defaultPageSize must be positive")
	}
	if cfg.History.MaxPageSize < cfg.History.DefaultPageSize {
		errs = append(errs, "history.maxPageSize must be at least history.defaultPageSize")
	}

	if cfg.Events.Redis.Enabled && cfg.Events.Redis.URL == "" {
		errs = append(errs, "events.redis.url is required when redis events are enabled")
	}

	if cfg.Slack.Enabled {
		if cfg.Slack.BotToken == "" {
			errs = append(errs, "slack.botToken is required when slack is enabled")
		}
		if cfg.Slack.Channel == "" {
			errs = append(errs, "slack.channel is required when slack is enabled")
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("logging.level must be debug, info, warn or error (got %q)", cfg.Logging.Level))
	}
	if cfg.Logging.Format != "json" && cfg.Logging.Format != "text" {
		errs = append(errs, fmt.Sprintf("logging.format must be json or text (got %q)", cfg.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
