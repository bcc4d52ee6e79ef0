package domain

import (
	"errors"
	"time"
)

// Validation errors for indicator parameters.
var (
	ErrNonPositiveWindow = errors.New("indicator window must be positive")
	ErrFastNotBelowSlow  = errors.New("macd fast span must be below slow span")
)

// IndicatorParams holds every window and factor used by the indicator
// calculator. All fields have defaults from DefaultIndicatorParams; a zero
// MALongerWindow disables the third moving average.
type IndicatorParams struct {
	MAShortWindow  int     // simple moving average, short window
	MALongWindow   int     // simple moving average, long window
	MALongerWindow int     // optional third average for alignment checks, 0 = off
	MACDFast       int     // EMA fast span
	MACDSlow       int     // EMA slow span
	MACDSignal     int     // EMA span of the signal line
	RSIPeriod      int     // RSI rolling window
	ATRPeriod      int     // ATR rolling window
	BBPeriod       int     // Bollinger band rolling window
	BBStdevFactor  float64 // Bollinger band width multiplier
	KDPeriod       int     // stochastic high/low window
	KDSmoothK      int     // %K smoothing window
	KDSmoothD      int     // %D smoothing window
	MinBars        int     // minimum series length before anything is computed
}

// DefaultIndicatorParams returns the standard parameter set.
func DefaultIndicatorParams() IndicatorParams {
	return IndicatorParams{
		MAShortWindow: 20,
		MALongWindow:  60,
		MACDFast:      12,
		MACDSlow:      26,
		MACDSignal:    9,
		RSIPeriod:     14,
		ATRPeriod:     14,
		BBPeriod:      20,
		BBStdevFactor: 2.0,
		KDPeriod:      9,
		KDSmoothK:     3,
		KDSmoothD:     3,
		MinBars:       30,
	}
}

// Validate rejects non-positive windows. Fails before any computation runs.
func (p IndicatorParams) Validate() error {
	windows := []int{
		p.MAShortWindow, p.MALongWindow, p.MACDFast, p.MACDSlow, p.MACDSignal,
		p.RSIPeriod, p.ATRPeriod, p.BBPeriod, p.KDPeriod, p.KDSmoothK,
		p.KDSmoothD, p.MinBars,
	}
	for _, w := range windows {
		if w <= 0 {
			return ErrNonPositiveWindow
		}
	}
	if p.MALongerWindow < 0 {
		return ErrNonPositiveWindow
	}
	if p.BBStdevFactor <= 0 {
		return ErrNonPositiveWindow
	}
	if p.MACDFast >= p.MACDSlow {
		return ErrFastNotBelowSlow
	}
	return nil
}

// IndicatorSnapshot holds every derived indicator value for one security on
// one day. Undefined values (not enough history, degenerate math) are NaN.
// Snapshots are recomputed on demand and never treated as source of truth.
type IndicatorSnapshot struct {
	SecurityID string
	Date       time.Time
	Close      float64

	MAShort  float64
	MALong   float64
	MALonger float64 // NaN when the third average is disabled

	RSI float64

	MACD       float64
	MACDSignal float64
	MACDHist   float64

	KDK float64
	KDD float64

	BBMid  float64
	BBUp   float64
	BBDown float64

	ATR float64
}
