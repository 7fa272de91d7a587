package model

// Score is the classifier's verdict for one reading.
type Score struct {
	FailureProbability Percent
	Confidence         Percent
}

// HealthScore is the complement of the failure probability.
func (s Score) HealthScore() Percent {
	return s.FailureProbability.Complement()
}

// PredictionResult is the full response of one pipeline run.
type PredictionResult struct {
	ID                 int64              `json:"id"`
	MachineID          string             `json:"machine_id"`
	FailureProbability Percent            `json:"failure_probability"`
	HealthScore        Percent            `json:"health_score"`
	RiskLevel          RiskLevel          `json:"risk_level"`
	MonthlySavings     float64            `json:"monthly_savings"`
	Timestamp          string             `json:"timestamp"`
	ConfidenceScore    Percent            `json:"confidence_score"`
	Explanation        map[string]float64 `json:"shap_explanation"`
	Recommendation     []string           `json:"recommendation_detail"`
	TopRiskFactor      string             `json:"top_risk_factor"`
	TopImpactValue     float64            `json:"top_impact_value"`
}

// NewPredictionResult assembles the response from the stored record, the
// classifier score and the attribution.
func NewPredictionResult(rec PredictionRecord, score Score, attr Attribution) PredictionResult {
	return PredictionResult{
		ID:                 rec.ID,
		MachineID:          rec.MachineID,
		FailureProbability: rec.FailureProbability,
		HealthScore:        rec.HealthScore,
		RiskLevel:          rec.RiskLevel,
		MonthlySavings:     rec.MonthlySavings,
		Timestamp:          rec.Timestamp,
		ConfidenceScore:    score.Confidence,
		Explanation:        attr.Contributions,
		Recommendation:     attr.Recommendation,
		TopRiskFactor:      attr.TopFeature,
		TopImpactValue:     attr.TopImpact,
	}
}
