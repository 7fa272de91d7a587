package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

// ---- Percent tests ----

func TestPercentFromRatio(t *testing.T) {
	tests := []struct {
		ratio float64
		want  Percent
	}{
		{0, 0},
		{1, PercentWhole},
		{0.42, 4200},
		{0.123456, 1235},
		{0.15, 1500},
	}
	for _, tt := range tests {
		if got := PercentFromRatio(tt.ratio); got != tt.want {
			t.Errorf("PercentFromRatio(%v) = %d, want %d", tt.ratio, got, tt.want)
		}
	}
}

func TestPercent_ComplementIsExact(t *testing.T) {
	for _, ratio := range []float64{0.0001, 0.1234, 0.3333, 0.5, 0.9999} {
		p := PercentFromRatio(ratio)
		if p+p.Complement() != PercentWhole {
			t.Errorf("%v + complement != 100", p)
		}
	}
}

func TestPercent_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		P Percent `json:"p"`
	}{P: 1234})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"p":12.34}` {
		t.Errorf("marshal = %s", data)
	}

	var p Percent
	if err := json.Unmarshal([]byte("42.5"), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p != 4250 {
		t.Errorf("unmarshal = %d, want 4250", p)
	}
	if p.String() != "42.50" {
		t.Errorf("String() = %q", p.String())
	}
}

// ---- Risk tests ----

func TestClassifyRisk(t *testing.T) {
	tests := []struct {
		p    Percent
		want RiskLevel
	}{
		{0, RiskLow},
		{1499, RiskLow},
		{1500, RiskMedium},
		{2999, RiskMedium},
		{3000, RiskHigh},
		{PercentWhole, RiskHigh},
	}
	for _, tt := range tests {
		if got := ClassifyRisk(tt.p); got != tt.want {
			t.Errorf("ClassifyRisk(%v) = %s, want %s", tt.p, got, tt.want)
		}
	}
}

func TestRiskLevel_Valid(t *testing.T) {
	for _, r := range []RiskLevel{RiskLow, RiskMedium, RiskHigh} {
		if !r.Valid() {
			t.Errorf("%s should be valid", r)
		}
	}
	if RiskLevel("low").Valid() {
		t.Error("lower-case level should be invalid")
	}
}

// ---- Savings tests ----

func TestEstimateMonthlySavings(t *testing.T) {
	tests := []struct {
		p     Percent
		costs CostInputs
		want  float64
	}{
		{2000, DefaultCostInputs(), 30000},
		{1234, CostInputs{BreakdownCost: 1000, FailuresPerMonth: 1}, 123.4},
		{333, CostInputs{BreakdownCost: 999.99, FailuresPerMonth: 0.5}, 16.65},
		{5000, CostInputs{BreakdownCost: 0, FailuresPerMonth: 3}, 0},
	}
	for _, tt := range tests {
		if got := EstimateMonthlySavings(tt.p, tt.costs); got != tt.want {
			t.Errorf("EstimateMonthlySavings(%v, %+v) = %v, want %v", tt.p, tt.costs, got, tt.want)
		}
	}
}

func TestRound(t *testing.T) {
	if got := Round(0.123456, 4); got != 0.1235 {
		t.Errorf("Round = %v", got)
	}
	if got := Round(-0.45678, 2); got != -0.46 {
		t.Errorf("Round = %v", got)
	}

	data, err := json.Marshal(Round(-0.00004, 4))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "0" {
		t.Errorf("tiny negative rounds to %s, want 0", data)
	}
}

// ---- Record tests ----

func TestNewPredictionRecord(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local)
	reading := SensorReading{AirTemp: 298.1, ProcessTemp: 308.6, RPM: 1551, Torque: 42.8, MachineID: "Press-7"}

	rec := NewPredictionRecord(reading, 4200, DefaultCostInputs(), at)

	if rec.ID != 0 {
		t.Errorf("expected unassigned id, got %d", rec.ID)
	}
	if rec.HealthScore != 5800 || rec.RiskLevel != RiskHigh {
		t.Errorf("health/risk = %v/%s", rec.HealthScore, rec.RiskLevel)
	}
	if rec.MonthlySavings != 63000 {
		t.Errorf("savings = %v", rec.MonthlySavings)
	}
	if rec.Timestamp != "2025-03-14 09:26:53" {
		t.Errorf("timestamp = %q", rec.Timestamp)
	}
	if rec.RPM != 1551 || rec.MachineID != "Press-7" {
		t.Errorf("reading not copied: %+v", rec)
	}
	if got := rec.WithID(9); got.ID != 9 || rec.ID != 0 {
		t.Errorf("WithID must copy: %d/%d", got.ID, rec.ID)
	}
}

func TestSensorReading_Features(t *testing.T) {
	r := SensorReading{AirTemp: 1, ProcessTemp: 2, RPM: 3, Torque: 4}
	v := r.Features()
	if v != (FeatureVector{1, 2, 3, 4}) {
		t.Errorf("Features() = %v", v)
	}
	s := v.Slice()
	s[0] = 99
	if v[0] != 1 {
		t.Error("Slice must copy")
	}
}

// ---- Attribution tests ----

func TestDegradedAttribution(t *testing.T) {
	a := DegradedAttribution()
	if !a.IsDegraded() {
		t.Error("expected degraded")
	}
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"shap_explanation":{},"top_risk_factor":"N/A","top_impact_value":0,"recommendation_detail":[]}`
	if string(data) != want {
		t.Errorf("marshal = %s", data)
	}
}

func TestRecommend(t *testing.T) {
	if got := Recommend("rpm", 0.1); got != "rpm is increasing failure probability." {
		t.Errorf("positive = %q", got)
	}
	if got := Recommend("torque", 0); got != "torque is stabilizing machine condition." {
		t.Errorf("zero = %q", got)
	}
}

// ---- History tests ----

func TestParseSortOrder(t *testing.T) {
	tests := map[string]SortOrder{
		"asc":  OrderAsc,
		"ASC":  OrderAsc,
		" Asc": OrderAsc,
		"desc": OrderDesc,
		"":     OrderDesc,
		"up":   OrderDesc,
	}
	for in, want := range tests {
		if got := ParseSortOrder(in); got != want {
			t.Errorf("ParseSortOrder(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestHistoryQuery_Offset(t *testing.T) {
	if got := (HistoryQuery{Page: 2, Limit: 5}).Offset(); got != 5 {
		t.Errorf("offset = %d, want 5", got)
	}
	if got := (HistoryQuery{Page: 0, Limit: 5}).Offset(); got != 0 {
		t.Errorf("offset = %d, want 0", got)
	}
}

// ---- Error tests ----

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("predict: %w", NewValidationError([]Violation{
		{Field: FeatureAirTemp, Reason: ReasonOutOfRange, Limit: "must be <= 400"},
		{Field: FeatureRPM, Reason: ReasonInvalid},
	}))

	if !IsValidation(err) {
		t.Fatal("expected IsValidation")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatal("expected errors.As to find *ValidationError")
	}
	if ve.Field != FeatureAirTemp || ve.Reason != ReasonOutOfRange {
		t.Errorf("first violation = %s/%s", ve.Field, ve.Reason)
	}
	want := "air_temp: out of range (must be <= 400); rpm: missing/invalid field"
	if ve.Error() != want {
		t.Errorf("Error() = %q, want %q", ve.Error(), want)
	}
	if IsValidation(ErrPersistence) {
		t.Error("ErrPersistence is not a validation error")
	}
}
