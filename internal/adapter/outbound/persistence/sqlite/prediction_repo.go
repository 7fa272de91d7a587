package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jonny/pdm-service/internal/adapter/outbound/persistence/query"
	"github.com/jonny/pdm-service/internal/domain/model"
	"github.com/jonny/pdm-service/internal/domain/port/outbound"
)

// PredictionRepo implements outbound.PredictionRepository using SQLite.
type PredictionRepo struct {
	store *Store
	db    *sql.DB
}

// NewPredictionRepo creates a new PredictionRepo backed by the given store.
func NewPredictionRepo(store *Store) *PredictionRepo {
	return &PredictionRepo{store: store, db: store.DB}
}

var _ outbound.PredictionRepository = (*PredictionRepo)(nil)

// Create inserts one record and returns it with its AUTOINCREMENT id.
func (r *PredictionRepo) Create(ctx context.Context, rec model.PredictionRecord) (model.PredictionRecord, error) {
	const q = `INSERT INTO predictions
		(machine_id, air_temp, process_temp, rpm, torque,
		 failure_probability, health_score, risk_level, monthly_savings, timestamp)
		VALUES (?,?,?,?,?,?,?,?,?,?)`

	res, err := r.db.ExecContext(ctx, q, query.InsertArgs(rec)...)
	if err != nil {
		return model.PredictionRecord{}, fmt.Errorf("inserting prediction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.PredictionRecord{}, fmt.Errorf("reading prediction id: %w", err)
	}
	return rec.WithID(id), nil
}

// List returns a filtered, ordered page of records and the total match count.
func (r *PredictionRepo) List(ctx context.Context, q model.HistoryQuery) (outbound.PageResult[model.PredictionRecord], error) {
	b := query.NewBuilder(query.SQLite).Filter(q.Filter)
	where := b.Where()

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM predictions"+where, b.Args()...).Scan(&total); err != nil {
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
	b := query.NewBuilder(query.SQLite).Filter(filter)
	dataQ := "SELECT " + query.Columns + " FROM predictions" + b.Where() + query.OrderBy(order)
	return r.selectRecords(ctx, dataQ, b.Args())
}

// Ping checks that the database is reachable.
func (r *PredictionRepo) Ping(ctx context.Context) error { return r.store.Ping(ctx) }

func (r *PredictionRepo) selectRecords(ctx context.Context, q string, args []any) ([]model.PredictionRecord, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing predictions: %w", err)
	}
	defer rows.Close()

	items := []model.PredictionRecord{}
	for rows.Next() {
		rec, err := query.ScanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning prediction: %w", err)
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating predictions: %w", err)
	}
	return items, nil
}
