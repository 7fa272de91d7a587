package outbound

import (
	"context"

	"github.com/jonny/pdm-service/internal/domain/model"
)

type PageResult[T any] struct {
	Items      []T
	TotalCount int64
	Page       int
	Size       int
}

// PredictionRepository is the append-only prediction history. There is no
// update or delete path.
type PredictionRepository interface {
	// Create stores one record atomically and returns it with its assigned id.
	Create(ctx context.Context, rec model.PredictionRecord) (model.PredictionRecord, error)
	List(ctx context.Context, q model.HistoryQuery) (PageResult[model.PredictionRecord], error)
	// Export returns every record matching filter, ignoring pagination.
	Export(ctx context.Context, filter model.HistoryFilter, order model.SortOrder) ([]model.PredictionRecord, error)
	Ping(ctx context.Context) error
}
