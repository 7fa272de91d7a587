package inbound

import (
	"context"
	"io"

	"github.com/jonny/pdm-service/internal/domain/model"
	"github.com/jonny/pdm-service/internal/domain/port/outbound"
)

// PredictionPort runs the scoring pipeline for one request.
type PredictionPort interface {
	Predict(ctx context.Context, raw model.RawReading) (model.PredictionResult, error)
}

// HistoryPort reads the stored prediction history.
type HistoryPort interface {
	List(ctx context.Context, q model.HistoryQuery) (outbound.PageResult[model.PredictionRecord], error)
	// Export writes every record matching filter to w and returns the row count.
	Export(ctx context.Context, filter model.HistoryFilter, order model.SortOrder, w io.Writer) (int, error)
	ContentType() string
	FileName() string
}

// ReportPort renders a prediction summary document.
type ReportPort interface {
	RenderReport(ctx context.Context, req model.ReportRequest, w io.Writer) error
	ContentType() string
	FileName() string
}
