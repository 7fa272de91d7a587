package model

import "fmt"

// NoTopFeature marks an attribution that could not be computed.
const NoTopFeature = "N/A"

// Attribution explains how each input pushed the prediction toward or away from failure.
type Attribution struct {
	Contributions  map[string]float64 `json:"shap_explanation"`
	TopFeature     string             `json:"top_risk_factor"`
	TopImpact      float64            `json:"top_impact_value"`
	Recommendation []string           `json:"recommendation_detail"`
}

// DegradedAttribution is returned in place of an explanation when attribution fails.
func DegradedAttribution() Attribution {
	return Attribution{
		Contributions:  map[string]float64{},
		TopFeature:     NoTopFeature,
		TopImpact:      0,
		Recommendation: []string{},
	}
}

// IsDegraded reports whether the attribution is the failure placeholder.
func (a Attribution) IsDegraded() bool {
	return a.TopFeature == NoTopFeature && len(a.Contributions) == 0
}

// Recommend returns the per-feature direction statement for a contribution.
// Zero counts as stabilizing.
func Recommend(feature string, contribution float64) string {
	if contribution > 0 {
		return fmt.Sprintf("%s is increasing failure probability.", feature)
	}
	return fmt.Sprintf("%s is stabilizing machine condition.", feature)
}
