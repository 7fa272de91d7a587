package service

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/jonny/pdm-service/internal/domain/model"
	"github.com/jonny/pdm-service/internal/domain/port/inbound"
	"github.com/jonny/pdm-service/internal/domain/port/outbound"
)

// Page size bounds used when the configuration sets none.
const (
	DefaultPageSize = 10
	MaxPageSize     = 200
)

// HistoryService serves paginated history and full exports.
type HistoryService struct {
	repo            outbound.PredictionRepository
	encoder         outbound.HistoryEncoder
	metrics         Metrics
	defaultPageSize int
	maxPageSize     int
}

// NewHistoryService creates a HistoryService. Non-positive sizes fall back to
// DefaultPageSize and MaxPageSize.
func NewHistoryService(
	repo outbound.PredictionRepository,
	encoder outbound.HistoryEncoder,
	metrics Metrics,
	defaultPageSize, maxPageSize int,
) *HistoryService {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if maxPageSize <= 0 {
		maxPageSize = MaxPageSize
	}
	if defaultPageSize <= 0 {
		defaultPageSize = DefaultPageSize
	}
	if defaultPageSize > maxPageSize {
		defaultPageSize = maxPageSize
	}
	return &HistoryService{
		repo:            repo,
		encoder:         encoder,
		metrics:         metrics,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

var _ inbound.HistoryPort = (*HistoryService)(nil)

// List implements inbound.HistoryPort. A zero Page or Limit means "not given"
// and takes the default; negative values are rejected. Limit is capped at the
// maximum page size.
func (s *HistoryService) List(ctx context.Context, q model.HistoryQuery) (outbound.PageResult[model.PredictionRecord], error) {
	q, err := s.normalize(q)
	if err != nil {
		return outbound.PageResult[model.PredictionRecord]{}, err
	}
	page, err := s.repo.List(ctx, q)
	if err != nil {
		return outbound.PageResult[model.PredictionRecord]{}, fmt.Errorf("%w: list history: %w", model.ErrPersistence, err)
	}
	if page.Items == nil {
		page.Items = []model.PredictionRecord{}
	}
	return page, nil
}

// Export implements inbound.HistoryPort.
func (s *HistoryService) Export(ctx context.Context, filter model.HistoryFilter, order model.SortOrder, w io.Writer) (int, error) {
	if order == "" {
		order = model.OrderDesc
	}
	records, err := s.repo.Export(ctx, filter, order)
	if err != nil {
		return 0, fmt.Errorf("%w: export history: %w", model.ErrPersistence, err)
	}
	if err := s.encoder.EncodeHistory(w, records); err != nil {
		return 0, fmt.Errorf("encode history: %w", err)
	}
	s.metrics.IncHistoryExport()
	return len(records), nil
}

func (s *HistoryService) ContentType() string { return s.encoder.ContentType() }

func (s *HistoryService) FileName() string { return s.encoder.FileName() }

func (s *HistoryService) normalize(q model.HistoryQuery) (model.HistoryQuery, error) {
	var violations []model.Violation
	if q.Page < 0 {
		violations = append(violations, model.Violation{Field: "page", Reason: model.ReasonOutOfRange, Limit: "must be >= 1"})
	}
	if q.Limit < 0 {
		violations = append(violations, model.Violation{Field: "limit", Reason: model.ReasonOutOfRange, Limit: "must be >= 1"})
	}
	if len(violations) > 0 {
		return q, model.NewValidationError(violations)
	}

	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = s.defaultPageSize
	}
	if q.Limit > s.maxPageSize {
		q.Limit = s.maxPageSize
	}
	// The row offset (page-1)*limit must fit in an int.
	if q.Page-1 > math.MaxInt/q.Limit {
		return q, model.NewValidationError([]model.Violation{{
			Field:  "page",
			Reason: model.ReasonOutOfRange,
			Limit:  fmt.Sprintf("must be <= %d", math.MaxInt/q.Limit+1),
		}})
	}
	if q.Order != model.OrderAsc {
		q.Order = model.OrderDesc
	}
	return q, nil
}
