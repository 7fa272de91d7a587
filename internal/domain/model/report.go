package model

// ReportRequest carries a prior prediction to be rendered as a document.
// Charts maps a chart title to a base64 PNG, optionally as a data URL.
type ReportRequest struct {
	MachineID          string             `json:"machine_id"`
	FailureProbability float64            `json:"failure_probability"`
	HealthScore        float64            `json:"health_score"`
	RiskLevel          string             `json:"risk_level"`
	MonthlySavings     float64            `json:"monthly_savings"`
	Timestamp          string             `json:"timestamp"`
	ConfidenceScore    float64            `json:"confidence_score"`
	TopRiskFactor      string             `json:"top_risk_factor"`
	TopImpactValue     float64            `json:"top_impact_value"`
	Explanation        map[string]float64 `json:"shap_explanation"`
	Recommendation     []string           `json:"recommendation_detail"`
	Charts             map[string]string  `json:"charts"`
}

// Chart is a decoded image embedded in a report.
type Chart struct {
	Title string
	PNG   []byte
}
