package model

// DefaultMachineID is used when a request does not name a machine.
const DefaultMachineID = "Machine-1"

// Feature names in the order the classifier artifact was trained on.
const (
	FeatureAirTemp     = "air_temp"
	FeatureProcessTemp = "process_temp"
	FeatureRPM         = "rpm"
	FeatureTorque      = "torque"
)

// FeatureNames lists the model inputs in training order. Callers must not modify it.
var FeatureNames = []string{FeatureAirTemp, FeatureProcessTemp, FeatureRPM, FeatureTorque}

// RawReading is the undecoded key/value payload of a prediction request.
// Values are whatever the JSON decoder produced (json.Number, string, bool, nil, ...).
type RawReading map[string]any

// SensorReading is a validated set of measurements for one machine.
type SensorReading struct {
	AirTemp     float64 `json:"air_temp" validate:"gte=250,lte=400"`
	ProcessTemp float64 `json:"process_temp" validate:"gte=250,lte=500"`
	RPM         float64 `json:"rpm" validate:"gte=500,lte=5000"`
	Torque      float64 `json:"torque" validate:"gte=1,lte=1000"`
	MachineID   string  `json:"machine_id"`
}

// Features returns the reading as a vector in training order.
func (r SensorReading) Features() FeatureVector {
	return FeatureVector{r.AirTemp, r.ProcessTemp, r.RPM, r.Torque}
}

// FeatureVector holds one value per entry of FeatureNames.
type FeatureVector [4]float64

// Slice returns a copy of the vector as a slice.
func (v FeatureVector) Slice() []float64 {
	out := make([]float64, len(v))
	copy(out, v[:])
	return out
}

// CostInputs parameterizes the savings estimate for one request.
type CostInputs struct {
	BreakdownCost    float64 `json:"breakdown_cost" validate:"gte=0"`
	FailuresPerMonth float64 `json:"failures_per_month" validate:"gte=0"`
}

// DefaultCostInputs returns the cost assumptions used when a request sets none.
func DefaultCostInputs() CostInputs {
	return CostInputs{
		BreakdownCost:    DefaultBreakdownCost,
		FailuresPerMonth: DefaultFailuresPerMonth,
	}
}
