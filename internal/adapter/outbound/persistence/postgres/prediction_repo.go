package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonny/pdm-service/internal/adapter/outbound/persistence/query"
	"github.com/jonny/pdm-service/internal/domain/model"
	"github.com/jonny/pdm-service/internal/domain/port/outbound"
)

// PredictionRepo implements outbound.PredictionRepository using PostgreSQL.
type PredictionRepo struct {
	store *Store
}

// NewPredictionRepo creates a new PredictionRepo backed by the given store.
func NewPredictionRepo(store *Store) *PredictionRepo {
	return &PredictionRepo{store: store}
}

var _ outbound.PredictionRepository = (*PredictionRepo)(nil)

// Create inserts one record and returns it with its serial id.
func (r *PredictionRepo) Create(ctx context.Context, rec model.PredictionRecord) (model.PredictionRecord, error) {
	const q = `INSERT INTO predictions
		(machine_id, air_temp, process_temp, rpm, torque,
		 failure_probability, health_score, risk_level, monthly_savings, timestamp)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id`

	var id int64
	if err := r.store.Pool.QueryRow(ctx, q, query.InsertArgs(rec)...).Scan(&id); err != nil {
		return model.PredictionRecord{}, fmt.Errorf("inserting prediction: %w", err)
	}
	return rec.WithID(id), nil
}

// List returns a filtered, ordered page of records and the total match count.
func (r *PredictionRepo) List(ctx context.Context, q model.HistoryQuery) (outbound.PageResult[model.PredictionRecord], error) {
	b := query.NewBuilder(query.Postgres).Filter(q.Filter)
	where := b.Where()

	var total int64
	if err := r.store.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM predictions"+where, b.Args()...).Scan(&total); err != nil {
		return outbound.PageResult[model.PredictionRecord]{}, fmt.Errorf("counting predictions: %w", err)
	}

	dataQ := "SELECT " + query.Columns + " FROM predictions" + where + query.OrderBy(q.Order) +
		" LIMIT " + b.Arg(q.Limit) + " OFFSET " + b.Arg(q.Offset())
	items, err := r.selectRecords(ctx, dataQ, b.Args())
	if err != nil {
		return outbound.PageResult[model.PredictionRecord]{}, err
	}
	return outbound.PageResult[model.PredictionRecord]{
		Items:      items,
		TotalCount: total,
		Page:       q.Page,
		Size:       q.Limit,
	}, nil
}

// Export returns every matching record in order, ignoring pagination.
func (r *PredictionRepo) Export(ctx context.Context, filter model.HistoryFilter, order model.SortOrder) ([]model.PredictionRecord, error) {
	b := query.NewBuilder(query.Postgres).Filter(filter)
	dataQ := "SELECT " + query.Columns + " FROM predictions" + b.Where() + query.OrderBy(order)
	return r.selectRecords(ctx, dataQ, b.Args())
}

// Ping checks that the database is reachable.
func (r *PredictionRepo) Ping(ctx context.Context) error { return r.store.Ping(ctx) }

func (r *PredictionRepo) selectRecords(ctx context.Context, q string, args []any) ([]model.PredictionRecord, error) {
	rows, err := r.store.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing predictions: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.PredictionRecord, error) {
		return query.ScanRecord(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scanning predictions: %w", err)
	}
	if items == nil {
		items = []model.PredictionRecord{}
	}
	return items, nil
}
