package scoring

import "math"

// OverheatDetector flags securities whose RSI runs above a configurable
// ceiling and converts the excess into a damping penalty.
type OverheatDetector struct {
	Threshold float64 // RSI level above which a position is overheated
}

// NewOverheatDetector creates a detector with the default threshold of 80.
func NewOverheatDetector() *OverheatDetector {
	return &OverheatDetector{Threshold: 80}
}

// Penalty returns a value in [0,1]: 0 at or below the threshold, rising
// linearly to 1 at RSI 100, rounded to two decimals. NaN RSI yields 0.
func (d *OverheatDetector) Penalty(rsi float64) float64 {
	if math.IsNaN(rsi) || rsi <= d.Threshold {
		return 0
	}
	penalty := (rsi - d.Threshold) / (100 - d.Threshold)
	if penalty > 1 {
		penalty = 1
	}
	return math.Round(penalty*100) / 100
}
