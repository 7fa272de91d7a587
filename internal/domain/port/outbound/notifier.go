package outbound

import "context"

type RiskNotification struct {
	RecordID           int64
	MachineID          string
	RiskLevel          string
	FailureProbability float64
	HealthScore        float64
	MonthlySavings     float64
	TopRiskFactor      string
	TopImpactValue     float64
	Timestamp          string
}

// Notifier tells operators about predictions that need attention.
type Notifier interface {
	NotifyHighRisk(ctx context.Context, n RiskNotification) error
}
