package query

import "github.com/jonny/pdm-service/internal/domain/model"

// Scanner is satisfied by *sql.Row, *sql.Rows and pgx.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// ScanRecord reads one row selected with Columns.
func ScanRecord(s Scanner) (model.PredictionRecord, error) {
	var (
		r               model.PredictionRecord
		failure, health float64
		risk            string
	)
	err := s.Scan(
		&r.ID, &r.MachineID,
		&r.AirTemp, &r.ProcessTemp, &r.RPM, &r.Torque,
		&failure, &health, &risk,
		&r.MonthlySavings, &r.Timestamp,
	)
	if err != nil {
		return model.PredictionRecord{}, err
	}
	r.FailureProbability = model.PercentFromFloat(failure)
	r.HealthScore = model.PercentFromFloat(health)
	r.RiskLevel = model.RiskLevel(risk)
	return r, nil
}

// InsertArgs returns the values for every column but id, in Columns order.
func InsertArgs(r model.PredictionRecord) []any {
	return []any{
		r.MachineID,
		r.AirTemp, r.ProcessTemp, r.RPM, r.Torque,
		r.FailureProbability.Float64(), r.HealthScore.Float64(), string(r.RiskLevel),
		r.MonthlySavings, r.Timestamp,
	}
}
