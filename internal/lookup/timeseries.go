package lookup

import (
	"errors"
	"math"
	"time"

	"github.com/q5089877/stock-analysis/internal/domain"
)

// Errors returned by lookup functions.
var (
	ErrNoBarData   = errors.New("no price bar data available")
	ErrNoScoreData = errors.New("no score data available")
)

// ScoreOn returns the score record at or before the target date.
// If no record exists at or before the target, returns the first available
// record. Returns ErrNoScoreData if the slice is empty. Records must be
// ordered by date ASC.
func ScoreOn(target time.Time, records []*domain.ScoreRecord) (*domain.ScoreRecord, error) {
	if len(records) == 0 {
		return nil, ErrNoScoreData
	}

	// Find closest record at or before target
	for i := len(records) - 1; i >= 0; i-- {
		if !records[i].Date.After(target) {
			return records[i], nil
		}
	}

	// If no record before target, use first available
	return records[0], nil
}

// BarOn returns the bar for the target trading day, or nil when the day has
// no bar (holiday, halt). Bars must be ordered by date ASC.
func BarOn(target time.Time, bars []*domain.PriceBar) *domain.PriceBar {
	day := domain.Day(target)
	for i := len(bars) - 1; i >= 0; i-- {
		if bars[i].Date.Equal(day) {
			return bars[i]
		}
		if bars[i].Date.Before(day) {
			return nil
		}
	}
	return nil
}

// LastValidOpen returns the most recent bar whose opening price is tradable
// (positive and defined). Used to liquidate positions still held at the end
// of an evaluation window. Returns ErrNoBarData when no bar qualifies.
func LastValidOpen(bars []*domain.PriceBar) (*domain.PriceBar, error) {
	for i := len(bars) - 1; i >= 0; i-- {
		if bars[i].Open > 0 && !math.IsNaN(bars[i].Open) {
			return bars[i], nil
		}
	}
	return nil, ErrNoBarData
}
