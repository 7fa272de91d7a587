package service

import (
	"context"
	"fmt"
	"math"

	"github.com/jonny/pdm-service/internal/domain/model"
	"github.com/jonny/pdm-service/internal/domain/port/outbound"
)

// Scorer turns a validated reading into a failure probability using the
// loaded classifier.
type Scorer struct {
	classifier outbound.Classifier
}

// NewScorer creates a Scorer backed by classifier.
func NewScorer(classifier outbound.Classifier) *Scorer {
	return &Scorer{classifier: classifier}
}

// Score returns the failure probability and the model's confidence, both on
// the 0-100 scale rounded to 2 decimals.
func (s *Scorer) Score(ctx context.Context, reading model.SensorReading) (model.Score, error) {
	probs, err := s.classifier.PredictProba(ctx, reading.Features())
	if err != nil {
		return model.Score{}, fmt.Errorf("predict proba: %w", err)
	}
	if len(probs) <= outbound.ClassFailure {
		return model.Score{}, fmt.Errorf("classifier returned %d class probabilities, want 2", len(probs))
	}
	for i, p := range probs {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return model.Score{}, fmt.Errorf("class %d probability %v outside [0,1]", i, p)
		}
	}

	failure := probs[outbound.ClassFailure]
	return model.Score{
		FailureProbability: model.PercentFromRatio(failure),
		Confidence:         model.PercentFromRatio(math.Max(failure, probs[outbound.ClassNoFailure])),
	}, nil
}

// Ready reports whether the classifier can currently serve predictions.
func (s *Scorer) Ready(ctx context.Context) error {
	return s.classifier.HealthCheck(ctx)
}

// Info describes the loaded classifier.
func (s *Scorer) Info(ctx context.Context) (outbound.ModelInfo, error) {
	return s.classifier.ModelInfo(ctx)
}
