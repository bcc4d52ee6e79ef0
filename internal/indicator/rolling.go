package indicator

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Rolling helpers operate on NaN-tolerant series: an NaN input value is
// excluded from the window, and a window with fewer than minPeriods valid
// values yields NaN. Windows look backward from the current index only.

// rollingMean computes the backward-looking rolling mean.
func rollingMean(vals []float64, window, minPeriods int) []float64 {
	out := make([]float64, len(vals))
	for i := range vals {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		sum, count := 0.0, 0
		for j := lo; j <= i; j++ {
			if !math.IsNaN(vals[j]) {
				sum += vals[j]
				count++
			}
		}
		if count < minPeriods || count == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(count)
	}
	return out
}

// rollingMin computes the backward-looking rolling minimum.
func rollingMin(vals []float64, window, minPeriods int) []float64 {
	return rollingExtreme(vals, window, minPeriods, func(a, b float64) bool { return a < b })
}

// rollingMax computes the backward-looking rolling maximum.
func rollingMax(vals []float64, window, minPeriods int) []float64 {
	return rollingExtreme(vals, window, minPeriods, func(a, b float64) bool { return a > b })
}

func rollingExtreme(vals []float64, window, minPeriods int, better func(a, b float64) bool) []float64 {
	out := make([]float64, len(vals))
	for i := range vals {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		best, count := math.NaN(), 0
		for j := lo; j <= i; j++ {
			if math.IsNaN(vals[j]) {
				continue
			}
			if count == 0 || better(vals[j], best) {
				best = vals[j]
			}
			count++
		}
		if count < minPeriods || count == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = best
	}
	return out
}

// rollingStd computes the backward-looking rolling sample standard deviation.
// Sample stdev needs at least two observations regardless of minPeriods.
func rollingStd(vals []float64, window, minPeriods int) []float64 {
	if minPeriods < 2 {
		minPeriods = 2
	}
	out := make([]float64, len(vals))
	buf := make([]float64, 0, window)
	for i := range vals {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		buf = buf[:0]
		for j := lo; j <= i; j++ {
			if !math.IsNaN(vals[j]) {
				buf = append(buf, vals[j])
			}
		}
		if len(buf) < minPeriods {
			out[i] = math.NaN()
			continue
		}
		out[i] = stat.StdDev(buf, nil)
	}
	return out
}

// ema computes the recursively defined exponential moving average with
// smoothing factor 2/(span+1), seeded with the first value.
func ema(vals []float64, span int) []float64 {
	out := make([]float64, len(vals))
	if len(vals) == 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = vals[0]
	for i := 1; i < len(vals); i++ {
		out[i] = alpha*vals[i] + (1-alpha)*out[i-1]
	}
	return out
}

// nanMean returns the arithmetic mean of the non-NaN values, or NaN if none.
func nanMean(vals []float64) float64 {
	sum, count := 0.0, 0
	for _, v := range vals {
		if !math.IsNaN(v) {
			sum += v
			count++
		}
	}
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}
