package model

import "time"

// TimestampLayout is the local-time format records are stamped with.
const TimestampLayout = "2006-01-02 15:04:05"

// PredictionRecord is one row of the append-only prediction history.
type PredictionRecord struct {
	ID                 int64     `json:"id"`
	MachineID          string    `json:"machine_id"`
	AirTemp            float64   `json:"air_temp"`
	ProcessTemp        float64   `json:"process_temp"`
	RPM                float64   `json:"rpm"`
	Torque             float64   `json:"torque"`
	FailureProbability Percent   `json:"failure_probability"`
	HealthScore        Percent   `json:"health_score"`
	RiskLevel          RiskLevel `json:"risk_level"`
	MonthlySavings     float64   `json:"monthly_savings"`
	Timestamp          string    `json:"timestamp"`
}

// NewPredictionRecord derives a record from a scored reading. The health score
// is the exact complement of the failure probability. ID is assigned by the store.
func NewPredictionRecord(reading SensorReading, failure Percent, costs CostInputs, at time.Time) PredictionRecord {
	return PredictionRecord{
		MachineID:          reading.MachineID,
		AirTemp:            reading.AirTemp,
		ProcessTemp:        reading.ProcessTemp,
		RPM:                reading.RPM,
		Torque:             reading.Torque,
		FailureProbability: failure,
		HealthScore:        failure.Complement(),
		RiskLevel:          ClassifyRisk(failure),
		MonthlySavings:     EstimateMonthlySavings(failure, costs),
		Timestamp:          at.Local().Format(TimestampLayout),
	}
}

// WithID returns a copy of the record carrying the store-assigned id.
func (r PredictionRecord) WithID(id int64) PredictionRecord {
	r.ID = id
	return r
}
