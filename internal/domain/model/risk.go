package model

// RiskLevel is the ordinal risk bucket derived from a failure probability.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Bucket boundaries on the 0-100 failure probability scale.
const (
	MediumRiskThreshold Percent = 1500
	HighRiskThreshold   Percent = 3000
)

// ClassifyRisk maps a failure probability to its risk bucket.
// Boundary values belong to the upper bucket.
func ClassifyRisk(p Percent) RiskLevel {
	switch {
	case p >= HighRiskThreshold:
		return RiskHigh
	case p >= MediumRiskThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Valid reports whether r is one of the known levels.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}
