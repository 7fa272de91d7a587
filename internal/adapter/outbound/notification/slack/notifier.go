package slack

import (
	"context"
	"fmt"

	slackapi "github.com/slack-go/slack"

	"github.com/jonny/pdm-service/internal/adapter/outbound/notification/slack/template"
	"github.com/jonny/pdm-service/internal/domain/port/outbound"
)

// Config holds Slack notifier configuration.
type Config struct {
	BotToken string
	Channel  string
	// APIURL overrides the Slack endpoint; tests point it at a local server.
	APIURL string
}

// Notifier implements outbound.Notifier via the Slack API.
type Notifier struct {
	client *slackapi.Client
	config Config
}

// NewNotifier creates a new Slack Notifier.
func NewNotifier(cfg Config) *Notifier {
	var opts []slackapi.Option
	if cfg.APIURL != "" {
		opts = append(opts, slackapi.OptionAPIURL(cfg.APIURL))
	}
	return &Notifier{
		client: slackapi.New(cfg.BotToken, opts...),
		config: cfg,
	}
}

var _ outbound.Notifier = (*Notifier)(nil)

// NotifyHighRisk posts a Block Kit risk card to the configured channel.
func (n *Notifier) NotifyHighRisk(ctx context.Context, notification outbound.RiskNotification) error {
	_, _, err := n.client.PostMessageContext(ctx, n.config.Channel,
		slackapi.MsgOptionBlocks(template.BuildRiskBlocks(notification)...),
		slackapi.MsgOptionText(template.FallbackText(notification), false),
	)
	if err != nil {
		return fmt.Errorf("slack NotifyHighRisk: %w", err)
	}
	return nil
}
