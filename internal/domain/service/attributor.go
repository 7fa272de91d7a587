package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/jonny/pdm-service/internal/domain/model"
	"github.com/jonny/pdm-service/internal/domain/port/outbound"
)

// contributionDecimals is the precision contributions are reported with.
const contributionDecimals = 4

// Attributor explains a scored reading feature by feature. It never fails:
// any explainer problem yields model.DegradedAttribution.
type Attributor struct {
	explainer outbound.Explainer
	logger    *slog.Logger
}

// NewAttributor creates an Attributor. A nil logger discards output.
func NewAttributor(explainer outbound.Explainer, logger *slog.Logger) *Attributor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Attributor{explainer: explainer, logger: logger}
}

// Explain returns the per-feature contributions toward failure, the dominant
// feature and one recommendation line per feature.
func (a *Attributor) Explain(ctx context.Context, reading model.SensorReading) model.Attribution {
	attr, err := a.Attribute(ctx, reading)
	if err != nil {
		a.logger.Warn("attribution degraded",
			"machine_id", reading.MachineID,
			"error", err,
		)
		return model.DegradedAttribution()
	}
	return attr
}

// Attribute is Explain without the fallback. Errors wrap model.ErrAttribution.
func (a *Attributor) Attribute(ctx context.Context, reading model.SensorReading) (attr model.Attribution, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: explainer panic: %v", model.ErrAttribution, r)
		}
	}()

	if a.explainer == nil {
		return model.Attribution{}, fmt.Errorf("%w: no explainer configured", model.ErrAttribution)
	}
	out, err := a.explainer.Explain(ctx, reading.Features())
	if err != nil {
		return model.Attribution{}, fmt.Errorf("%w: %w", model.ErrAttribution, err)
	}
	values, err := failureContributions(out)
	if err != nil {
		return model.Attribution{}, fmt.Errorf("%w: %w", model.ErrAttribution, err)
	}
	return buildAttribution(values), nil
}

// failureContributions selects the failure-class vector from either explainer shape.
func failureContributions(out outbound.ExplainerOutput) ([]float64, error) {
	values := out.Values
	if len(out.PerClass) > 0 {
		if len(out.PerClass) <= outbound.ClassFailure {
			return nil, fmt.Errorf("explainer returned %d class vectors, want 2", len(out.PerClass))
		}
		values = out.PerClass[outbound.ClassFailure]
	}
	if len(values) != len(model.FeatureNames) {
		return nil, fmt.Errorf("explainer returned %d contributions, want %d", len(values), len(model.FeatureNames))
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("contribution for %s is not finite", model.FeatureNames[i])
		}
	}
	return values, nil
}

func buildAttribution(values []float64) model.Attribution {
	rounded := make([]float64, len(values))
	magnitudes := make([]float64, len(values))
	contributions := make(map[string]float64, len(values))
	recommendations := make([]string, 0, len(values))

	for i, v := range values {
		rounded[i] = model.Round(v, contributionDecimals)
		magnitudes[i] = math.Abs(rounded[i])
		name := model.FeatureNames[i]
		contributions[name] = rounded[i]
		recommendations = append(recommendations, model.Recommend(name, rounded[i]))
	}

	// MaxIdx keeps the first index on ties, i.e. training order.
	top := floats.MaxIdx(magnitudes)
	return model.Attribution{
		Contributions:  contributions,
		TopFeature:     model.FeatureNames[top],
		TopImpact:      rounded[top],
		Recommendation: recommendations,
	}
}

// errNoExplainer is returned by explainers that were disabled in configuration.
var errNoExplainer = errors.New("explainer disabled")

// DisabledExplainer always fails, so every attribution degrades.
type DisabledExplainer struct{}

func (DisabledExplainer) Explain(context.Context, model.FeatureVector) (outbound.ExplainerOutput, error) {
	return outbound.ExplainerOutput{}, errNoExplainer
}
