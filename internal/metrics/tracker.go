package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/q5089877/stock-analysis/internal/storage"
)

// PerformanceMetrics summarizes one security's realized performance over a
// date range.
type PerformanceMetrics struct {
	SecurityID     string
	WinRate        float64 // share of up days among trading days
	AvgDailyReturn float64 // mean day-over-day return
	MaxDrawdown    float64 // deepest peak-to-trough decline, positive fraction
	TradingDays    int     // daily returns the metrics were computed over
}

// PerformanceTracker computes performance metrics from stored price bars.
type PerformanceTracker struct {
	priceBarStore storage.PriceBarStore
}

// NewPerformanceTracker creates a tracker over the given bar store.
func NewPerformanceTracker(priceBarStore storage.PriceBarStore) *PerformanceTracker {
	return &PerformanceTracker{priceBarStore: priceBarStore}
}

// Compute loads the close series for a security within [start, end] and
// derives its metrics. Fewer than two bars yields all-zero metrics rather
// than an error: a security without history has no performance to report.
func (t *PerformanceTracker) Compute(ctx context.Context, securityID string, start, end time.Time) (*PerformanceMetrics, error) {
	bars, err := t.priceBarStore.GetByDateRange(ctx, securityID, start, end)
	if err != nil {
		return nil, fmt.Errorf("load bars for %s: %w", securityID, err)
	}

	m := &PerformanceMetrics{SecurityID: securityID}
	if len(bars) < 2 {
		return m, nil
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	returns := dailyReturns(closes)
	m.WinRate = winRate(returns)
	m.AvgDailyReturn = meanReturn(returns)
	m.MaxDrawdown = maxDrawdown(returns)
	m.TradingDays = len(returns)
	return m, nil
}
