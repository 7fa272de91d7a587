package model

import "math"

const (
	DefaultBreakdownCost    = 50000.0
	DefaultFailuresPerMonth = 3.0
)

// EstimateMonthlySavings returns the expected monthly loss avoided for a machine:
// probability x cost per breakdown x breakdowns per month, rounded to cents.
func EstimateMonthlySavings(p Percent, costs CostInputs) float64 {
	return Round(p.Float64()/100*costs.BreakdownCost*costs.FailuresPerMonth, 2)
}

// Round rounds v half away from zero to the given number of decimals.
// Values that round to zero return +0, never -0.
func Round(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	r := math.Round(v*scale) / scale
	if r == 0 {
		return 0
	}
	return r
}
