package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonny/pdm-service/internal/domain/model"
)

// Optional request keys that override the savings assumptions.
const (
	FieldMachineID        = "machine_id"
	FieldBreakdownCost    = "breakdown_cost"
	FieldFailuresPerMonth = "failures_per_month"
)

var readingValidate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report violations under the JSON names clients send.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateRequest checks every field of a prediction payload before anything
// is scored. All four sensor fields and both cost overrides are evaluated; the
// returned *model.ValidationError lists every violation in field order.
func ValidateRequest(raw model.RawReading) (model.SensorReading, model.CostInputs, error) {
	reading, readingViolations := validateReading(raw)
	costs, costViolations := validateCosts(raw)

	violations := append(readingViolations, costViolations...)
	if len(violations) > 0 {
		return model.SensorReading{}, model.CostInputs{}, model.NewValidationError(violations)
	}
	return reading, costs, nil
}

// ValidateReading checks the four sensor fields and the machine id only.
func ValidateReading(raw model.RawReading) (model.SensorReading, error) {
	reading, violations := validateReading(raw)
	if len(violations) > 0 {
		return model.SensorReading{}, model.NewValidationError(violations)
	}
	return reading, nil
}

func validateReading(raw model.RawReading) (model.SensorReading, []model.Violation) {
	byField := make(map[string]model.Violation)
	values := make(map[string]float64, len(model.FeatureNames))

	for _, name := range model.FeatureNames {
		v, ok := numberField(raw[name])
		if !ok {
			byField[name] = model.Violation{Field: name, Reason: model.ReasonInvalid}
			continue
		}
		values[name] = v
	}

	reading := model.SensorReading{
		AirTemp:     values[model.FeatureAirTemp],
		ProcessTemp: values[model.FeatureProcessTemp],
		RPM:         values[model.FeatureRPM],
		Torque:      values[model.FeatureTorque],
		MachineID:   machineID(raw[FieldMachineID]),
	}

	for _, v := range rangeViolations(reading) {
		if _, seen := byField[v.Field]; !seen {
			byField[v.Field] = v
		}
	}

	var violations []model.Violation
	for _, name := range model.FeatureNames {
		if v, ok := byField[name]; ok {
			violations = append(violations, v)
		}
	}
	return reading, violations
}

func validateCosts(raw model.RawReading) (model.CostInputs, []model.Violation) {
	costs := model.DefaultCostInputs()
	var violations []model.Violation

	overrides := []struct {
		field string
		dst   *float64
	}{
		{FieldBreakdownCost, &costs.BreakdownCost},
		{FieldFailuresPerMonth, &costs.FailuresPerMonth},
	}
	invalid := make(map[string]bool)
	for _, o := range overrides {
		value, present := raw[o.field]
		if !present || isBlank(value) {
			continue
		}
		v, ok := numberField(value)
		if !ok {
			invalid[o.field] = true
			violations = append(violations, model.Violation{Field: o.field, Reason: model.ReasonInvalid})
			continue
		}
		*o.dst = v
	}

	for _, v := range rangeViolations(costs) {
		if !invalid[v.Field] {
			violations = append(violations, v)
		}
	}
	return costs, violations
}

// rangeViolations runs the struct-tag bounds of s and converts the failures.
func rangeViolations(s any) []model.Violation {
	err := readingValidate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []model.Violation{{Field: "request", Reason: model.ReasonInvalid}}
	}
	out := make([]model.Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, model.Violation{
			Field:  fe.Field(),
			Reason: model.ReasonOutOfRange,
			Limit:  describeLimit(fe.Tag(), fe.Param()),
		})
	}
	return out
}

func describeLimit(tag, param string) string {
	switch tag {
	case "gte":
		return "must be >= " + param
	case "lte":
		return "must be <= " + param
	case "gt":
		return "must be > " + param
	case "lt":
		return "must be < " + param
	}
	return fmt.Sprintf("%s=%s", tag, param)
}

// numberField accepts JSON numbers and numeric strings. Non-finite values are rejected.
func numberField(value any) (float64, bool) {
	var f float64
	switch v := value.(type) {
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func machineID(value any) string {
	var id string
	switch v := value.(type) {
	case string:
		id = strings.TrimSpace(v)
	case json.Number:
		id = v.String()
	}
	if id == "" {
		return model.DefaultMachineID
	}
	return id
}

func isBlank(value any) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && strings.TrimSpace(s) == ""
}
