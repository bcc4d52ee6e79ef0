// Package metrics derives realized performance statistics from daily close
// series: win rate, average daily return and maximum drawdown.
package metrics

import (
	"gonum.org/v1/gonum/stat"
)

// dailyReturns computes day-over-day percentage changes of a close series.
// Closes with a non-positive predecessor are skipped to avoid dividing by
// zero on halted days. The result has up to len(closes)-1 entries.
func dailyReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 {
			continue
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}
	return returns
}

// winRate is the share of strictly positive daily returns.
func winRate(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	positive := 0
	for _, r := range returns {
		if r > 0 {
			positive++
		}
	}
	return float64(positive) / float64(len(returns))
}

// meanReturn is the arithmetic mean of the daily returns.
func meanReturn(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	return stat.Mean(returns, nil)
}

// maxDrawdown walks the compounded return curve and reports the deepest
// peak-to-trough decline as a positive fraction (0.15 = 15% drawdown).
func maxDrawdown(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	cum := 1.0
	peak := 1.0
	worst := 0.0
	for _, r := range returns {
		cum *= 1 + r
		if cum > peak {
			peak = cum
		}
		if dd := (cum - peak) / peak; dd < worst {
			worst = dd
		}
	}
	return -worst
}
