// Package redis publishes stored predictions on a Redis pub/sub channel.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jonny/pdm-service/internal/domain/model"
	"github.com/jonny/pdm-service/internal/domain/port/outbound"
)

// DefaultChannel is the pub/sub channel predictions are published on.
const DefaultChannel = "pdm:predictions"

// Config holds Redis publisher configuration.
type Config struct {
	URL     string
	Channel string
	Timeout time.Duration
}

// publishClient is the subset of *goredis.Client the publisher uses.
type publishClient interface {
	Publish(ctx context.Context, channel string, message any) *goredis.IntCmd
	Ping(ctx context.Context) *goredis.StatusCmd
	Close() error
}

// Publisher implements outbound.EventPublisher over Redis PUBLISH.
type Publisher struct {
	client  publishClient
	channel string
	timeout time.Duration
}

// Event is the JSON message published for every stored prediction.
type Event struct {
	Type   string                 `json:"type"`
	Record model.PredictionRecord `json:"record"`
}

// EventPredictionStored is the Event.Type of a newly stored prediction.
const EventPredictionStored = "prediction.stored"

// NewPublisher connects to the Redis server at cfg.URL and verifies it answers.
func NewPublisher(ctx context.Context, cfg Config) (*Publisher, error) {
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return newPublisher(client, cfg), nil
}

func newPublisher(client publishClient, cfg Config) *Publisher {
	channel := cfg.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Publisher{client: client, channel: channel, timeout: timeout}
}

var _ outbound.EventPublisher = (*Publisher)(nil)

// PublishPrediction publishes rec as an Event.
func (p *Publisher) PublishPrediction(ctx context.Context, rec model.PredictionRecord) error {
	data, err := json.Marshal(Event{Type: EventPredictionStored, Record: rec})
	if err != nil {
		return fmt.Errorf("encoding prediction event: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", p.channel, err)
	}
	return nil
}

// Ping checks that Redis is reachable.
func (p *Publisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close releases the Redis connection pool.
func (p *Publisher) Close() error { return p.client.Close() }
