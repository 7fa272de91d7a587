package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonny/pdm-service/internal/domain/model"
	"github.com/jonny/pdm-service/internal/domain/port/inbound"
	"github.com/jonny/pdm-service/internal/domain/port/outbound"
)

// Pipeline stages reported to Metrics.IncError.
const (
	StageValidation  = "validation"
	StageInference   = "inference"
	StagePersistence = "persistence"
)

// Side channels reported to Metrics.IncSideEffectFailure.
const (
	ChannelEvents = "events"
	ChannelSlack  = "slack"
)

// Metrics receives pipeline observations. Implementations must be safe for
// concurrent use.
type Metrics interface {
	ObservePrediction(risk model.RiskLevel, elapsed time.Duration)
	IncError(stage string)
	IncAttributionDegraded()
	IncSideEffectFailure(channel string)
	IncHistoryExport()
}

type nopMetrics struct{}

func (nopMetrics) ObservePrediction(model.RiskLevel, time.Duration) {}
func (nopMetrics) IncError(string)                                  {}
func (nopMetrics) IncAttributionDegraded()                          {}
func (nopMetrics) IncSideEffectFailure(string)                      {}
func (nopMetrics) IncHistoryExport()                                {}

// Sinks groups the best-effort consumers of stored predictions.
type Sinks struct {
	Publisher outbound.EventPublisher
	Notifier  outbound.Notifier
}

// Orchestrator runs the prediction pipeline and implements inbound.PredictionPort.
type Orchestrator struct {
	scorer     *Scorer
	attributor *Attributor
	repo       outbound.PredictionRepository
	sinks      Sinks
	metrics    Metrics
	logger     *slog.Logger
	now        func() time.Time
}

// NewOrchestrator creates an Orchestrator with all required dependencies.
// Nil sinks are skipped and a nil metrics sink discards observations.
func NewOrchestrator(
	scorer *Scorer,
	attributor *Attributor,
	repo outbound.PredictionRepository,
	sinks Sinks,
	metrics Metrics,
	logger *slog.Logger,
) *Orchestrator {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{
		scorer:     scorer,
		attributor: attributor,
		repo:       repo,
		sinks:      sinks,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock returns a copy of the orchestrator that stamps records using now.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	cp := *o
	cp.now = now
	return &cp
}

// Ensure Orchestrator satisfies the inbound port at compile time.
var _ inbound.PredictionPort = (*Orchestrator)(nil)

// Predict implements inbound.PredictionPort. Validation failures return a
// *model.ValidationError before the classifier is touched; a storage failure
// wraps model.ErrPersistence and nothing is returned to the caller.
func (o *Orchestrator) Predict(ctx context.Context, raw model.RawReading) (model.PredictionResult, error) {
	start := time.Now()

	// 1. Validate.
	reading, costs, err := ValidateRequest(raw)
	if err != nil {
		o.metrics.IncError(StageValidation)
		return model.PredictionResult{}, err
	}

	// 2. Score.
	score, err := o.scorer.Score(ctx, reading)
	if err != nil {
		o.metrics.IncError(StageInference)
		return model.PredictionResult{}, fmt.Errorf("score reading: %w", err)
	}

	// 3. Explain. Never fatal.
	attr := o.attributor.Explain(ctx, reading)
	if attr.IsDegraded() {
		o.metrics.IncAttributionDegraded()
	}

	// 4. Persist.
	rec := model.NewPredictionRecord(reading, score.FailureProbability, costs, o.now())
	saved, err := o.repo.Create(ctx, rec)
	if err != nil {
		o.metrics.IncError(StagePersistence)
		return model.PredictionResult{}, fmt.Errorf("%w: save prediction: %w", model.ErrPersistence, err)
	}

	// 5. Fan out.
	o.fanOut(ctx, saved, attr)

	o.metrics.ObservePrediction(saved.RiskLevel, time.Since(start))
	o.logger.Info("prediction stored",
		"id", saved.ID,
		"machine_id", saved.MachineID,
		"failure_probability", saved.FailureProbability.String(),
		"risk_level", saved.RiskLevel,
	)

	return model.NewPredictionResult(saved, score, attr), nil
}

// fanOut publishes the stored record and raises a high-risk notification.
// Failures are logged and counted; the prediction has already been stored.
func (o *Orchestrator) fanOut(ctx context.Context, rec model.PredictionRecord, attr model.Attribution) {
	if o.sinks.Publisher != nil {
		if err := o.sinks.Publisher.PublishPrediction(ctx, rec); err != nil {
			o.metrics.IncSideEffectFailure(ChannelEvents)
			o.logger.Warn("publish prediction", "id", rec.ID, "error", err)
		}
	}

	if rec.RiskLevel != model.RiskHigh || o.sinks.Notifier == nil {
		return
	}
	err := o.sinks.Notifier.NotifyHighRisk(ctx, outbound.RiskNotification{
		RecordID:           rec.ID,
		MachineID:          rec.MachineID,
		RiskLevel:          string(rec.RiskLevel),
		FailureProbability: rec.FailureProbability.Float64(),
		HealthScore:        rec.HealthScore.Float64(),
		MonthlySavings:     rec.MonthlySavings,
		TopRiskFactor:      attr.TopFeature,
		TopImpactValue:     attr.TopImpact,
		Timestamp:          rec.Timestamp,
	})
	if err != nil {
		o.metrics.IncSideEffectFailure(ChannelSlack)
		o.logger.Warn("notify high risk", "id", rec.ID, "error", err)
	}
}
