package outbound

import (
	"context"

	"github.com/jonny/pdm-service/internal/domain/model"
)

// Class indices of the binary failure classifier.
const (
	ClassNoFailure = 0
	ClassFailure   = 1
)

type ModelInfo struct {
	Provider string
	Version  string
	Trees    int
	Features []string
}

// Classifier scores feature vectors with a pre-trained binary model.
// Implementations are read-only after construction and safe for concurrent use.
type Classifier interface {
	// PredictProba returns one probability per class, indexed by ClassNoFailure/ClassFailure.
	PredictProba(ctx context.Context, x model.FeatureVector) ([]float64, error)
	HealthCheck(ctx context.Context) error
	ModelInfo(ctx context.Context) (ModelInfo, error)
}

// ExplainerOutput mirrors the two shapes tree explainers produce: a single
// contribution vector, or one vector per class. Exactly one is set.
type ExplainerOutput struct {
	Values   []float64
	PerClass [][]float64
}

// Explainer attributes a scored example to its input features.
type Explainer interface {
	Explain(ctx context.Context, x model.FeatureVector) (ExplainerOutput, error)
}
