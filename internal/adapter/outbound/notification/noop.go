package notification

import (
	"context"
	"log/slog"

	"github.com/jonny/pdm-service/internal/domain/model"
	"github.com/jonny/pdm-service/internal/domain/port/outbound"
)

// NoopNotifier logs high-risk notifications instead of sending them.
// Used when Slack is not configured.
type NoopNotifier struct {
	logger *slog.Logger
}

// NewNoopNotifier creates a new NoopNotifier.
func NewNoopNotifier(logger *slog.Logger) *NoopNotifier {
	return &NoopNotifier{logger: logger}
}

func (n *NoopNotifier) NotifyHighRisk(_ context.Context, notification outbound.RiskNotification) error {
	n.logger.Info("noop: high risk notification",
		"recordID", notification.RecordID,
		"machineID", notification.MachineID,
		"failureProbability", notification.FailureProbability,
		"topRiskFactor", notification.TopRiskFactor,
	)
	return nil
}

// NoopPublisher logs stored predictions instead of publishing them.
type NoopPublisher struct {
	logger *slog.Logger
}

// NewNoopPublisher creates a new NoopPublisher.
func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger}
}

func (p *NoopPublisher) PublishPrediction(_ context.Context, rec model.PredictionRecord) error {
	p.logger.Debug("noop: prediction event",
		"id", rec.ID,
		"machineID", rec.MachineID,
		"riskLevel", rec.RiskLevel,
	)
	return nil
}

var (
	_ outbound.Notifier       = (*NoopNotifier)(nil)
	_ outbound.EventPublisher = (*NoopPublisher)(nil)
)
