package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonny/pdm-service/internal/adapter/outbound/events/redis"
	"github.com/jonny/pdm-service/internal/adapter/outbound/notification"
	slacknotifier "github.com/jonny/pdm-service/internal/adapter/outbound/notification/slack"
	"github.com/jonny/pdm-service/internal/adapter/outbound/persistence/postgres"
	"github.com/jonny/pdm-service/internal/adapter/outbound/persistence/sqlite"
	"github.com/jonny/pdm-service/internal/adapter/outbound/scoring/forest"
	"github.com/jonny/pdm-service/internal/adapter/outbound/scoring/sidecar"
	"github.com/jonny/pdm-service/internal/config"
	"github.com/jonny/pdm-service/internal/domain/port/outbound"
	"github.com/jonny/pdm-service/internal/domain/service"
)

// database is the configured record store with its lifecycle hooks.
type database struct {
	repo  outbound.PredictionRepository
	ping  func(ctx context.Context) error
	close func() error
}

func (d database) Close() error { return d.close() }

func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (database, error) {
	switch cfg.Driver {
	case "postgres":
		store, err := postgres.NewStore(ctx, postgres.Config{
			DSN:      cfg.Postgres.DSN,
			MaxConns: cfg.Postgres.MaxConns,
		})
		if err != nil {
			return database{}, err
		}
		return database{repo: postgres.NewPredictionRepo(store), ping: store.Ping, close: store.Close}, nil
	case "sqlite":
		store, err := sqlite.NewStore(ctx, sqlite.Config{
			Path:              cfg.SQLite.Path,
			MaxOpenConns:      cfg.SQLite.MaxOpenConns,
			PragmaJournalMode: cfg.SQLite.PragmaJournalMode,
			PragmaBusyTimeout: cfg.SQLite.PragmaBusyTimeout,
		})
		if err != nil {
			return database{}, err
		}
		return database{repo: sqlite.NewPredictionRepo(store), ping: store.Ping, close: store.Close}, nil
	default:
		return database{}, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// loadModel builds the classifier and explainer. Any failure here is fatal:
// the service must not accept traffic without a model.
func loadModel(ctx context.Context, cfg config.ModelConfig) (outbound.Classifier, outbound.Explainer, error) {
	var (
		classifier outbound.Classifier
		explainer  outbound.Explainer
	)
	switch cfg.Provider {
	case "forest":
		m, err := forest.Load(cfg.Forest.Path)
		if err != nil {
			return nil, nil, err
		}
		classifier, explainer = m, m
	case "sidecar":
		c := sidecar.NewClient(sidecar.Config{
			BaseURL: cfg.Sidecar.BaseURL,
			Timeout: cfg.Sidecar.Timeout,
		})
		classifier, explainer = c, c
	default:
		return nil, nil, fmt.Errorf("unsupported model provider %q", cfg.Provider)
	}

	if err := classifier.HealthCheck(ctx); err != nil {
		return nil, nil, err
	}
	if !cfg.ExplainerEnabled {
		explainer = service.DisabledExplainer{}
	}
	return classifier, explainer, nil
}

// buildSinks wires the best-effort side channels. A channel that is enabled
// but cannot connect at start-up is logged and replaced by a no-op.
func buildSinks(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.Sinks, func()) {
	sinks := service.Sinks{
		Publisher: notification.NewNoopPublisher(logger),
		Notifier:  notification.NewNoopNotifier(logger),
	}
	closeFn := func() {}

	if cfg.Events.Redis.Enabled {
		pub, err := redis.NewPublisher(ctx, redis.Config{
			URL:     cfg.Events.Redis.URL,
			Channel: cfg.Events.Redis.Channel,
			Timeout: cfg.Events.Redis.Timeout,
		})
		if err != nil {
			logger.Error("redis events unavailable, publishing disabled", "error", err)
		} else {
			sinks.Publisher = pub
			closeFn = func() { _ = pub.Close() }
		}
	}

	if cfg.Slack.Enabled {
		sinks.Notifier = slacknotifier.NewNotifier(slacknotifier.Config{
			BotToken: cfg.Slack.BotToken,
			Channel:  cfg.Slack.Channel,
		})
	}

	return sinks, closeFn
}
