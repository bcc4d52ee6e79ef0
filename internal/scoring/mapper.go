// Package scoring maps raw indicator values into bounded 0-100 sub-scores,
// detects discrete cross-over signals between consecutive snapshots, and
// combines sub-scores into one composite score per security per day.
package scoring

import "math"

// Threshold pairs for the range mapper. Lower raw values are bullish.
const (
	RSILow  = 30.0
	RSIHigh = 70.0
	KDLow   = 20.0
	KDHigh  = 80.0
)

// symCap bounds the symmetric mapper's input range to [-symCap, +symCap].
const symCap = 2.0

// MapRange maps a raw indicator value into [0,100] with a "lower is bullish"
// convention: value <= low scores 100, value >= high scores 0, and the
// interior interpolates linearly. NaN input scores 0 (no evidence of
// opportunity).
func MapRange(value, low, high float64) float64 {
	if math.IsNaN(value) {
		return 0
	}
	if value <= low {
		return 100
	}
	if value >= high {
		return 0
	}
	return (high - value) / (high - low) * 100
}

// MapSymmetric maps an unbounded-but-capped indicator (MACD histogram) into
// [0,100]: the raw value is clamped to [-2,2] and mapped linearly, so -2
// scores 0 and +2 scores 100. NaN input scores 0.
func MapSymmetric(value float64) float64 {
	if math.IsNaN(value) {
		return 0
	}
	clamped := math.Max(math.Min(value, symCap), -symCap)
	return (clamped + symCap) / (2 * symCap) * 100
}

// Clamp bounds a score to [0,100].
func Clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
