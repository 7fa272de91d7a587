package outbound

import (
	"context"

	"github.com/jonny/pdm-service/internal/domain/model"
)

// EventPublisher fans stored predictions out to other consumers.
type EventPublisher interface {
	PublishPrediction(ctx context.Context, rec model.PredictionRecord) error
}
