package model

import (
	"encoding/json"
	"math"
	"strconv"
)

// Percent is a percentage stored in hundredths of a percent, so 12.34% is 1234.
// Holding the value as an integer keeps complements exact.
type Percent int64

// PercentWhole is 100.00%.
const PercentWhole Percent = 10000

// PercentFromRatio converts a probability in [0,1] to a Percent rounded to 2 decimals.
func PercentFromRatio(ratio float64) Percent {
	return Percent(math.Round(ratio * 10000))
}

// PercentFromFloat converts a value already expressed in percent (e.g. 12.34).
func PercentFromFloat(pct float64) Percent {
	return Percent(math.Round(pct * 100))
}

// Float64 returns the percentage as a float, e.g. 12.34.
func (p Percent) Float64() float64 {
	return float64(p) / 100
}

// Complement returns 100% minus p.
func (p Percent) Complement() Percent {
	return PercentWhole - p
}

func (p Percent) String() string {
	return strconv.FormatFloat(p.Float64(), 'f', 2, 64)
}

func (p Percent) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(p.Float64(), 'f', -1, 64)), nil
}

func (p *Percent) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*p = PercentFromFloat(f)
	return nil
}
