// Package indicator derives technical indicator series from daily OHLC bars.
//
// All windows look backward from the current bar; there is no look-ahead.
// Two fill conventions exist among callers and both are supported explicitly:
// FillStrict withholds values until a full window of history exists, while
// FillWiden computes over whatever history is available. Values that cannot
// be computed are NaN, never fabricated.
package indicator

import (
	"errors"
	"math"

	"github.com/q5089877/stock-analysis/internal/domain"
)

// ErrInsufficientData is returned when a price series is shorter than the
// configured minimum window. Callers treat it as "no score", not a failure.
var ErrInsufficientData = errors.New("insufficient data: series shorter than minimum window")

// FillMode selects how rolling windows behave before a full window of
// history has accumulated.
type FillMode int

const (
	// FillStrict yields NaN until window observations exist.
	FillStrict FillMode = iota

	// FillWiden computes over the available observations (min periods 1).
	FillWiden
)

// Calculator turns a price series into aligned derived series.
type Calculator struct {
	params domain.IndicatorParams
	mode   FillMode
}

// NewCalculator validates the parameters and returns a calculator.
func NewCalculator(params domain.IndicatorParams, mode FillMode) (*Calculator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{params: params, mode: mode}, nil
}

// Params returns the parameter set the calculator was built with.
func (c *Calculator) Params() domain.IndicatorParams {
	return c.params
}

// minPeriods maps the fill mode to the effective min periods of a window.
func (c *Calculator) minPeriods(window int) int {
	if c.mode == FillWiden {
		return 1
	}
	return window
}

// Compute derives every indicator series from ascending-by-date bars.
// Returns ErrInsufficientData when fewer than MinBars bars are given, so
// downstream callers never see a partially-NaN series they did not ask for.
func (c *Calculator) Compute(bars []*domain.PriceBar) (*Series, error) {
	p := c.params
	if len(bars) < p.MinBars {
		return nil, ErrInsufficientData
	}

	s := newSeries(bars)

	s.MAShort = rollingMean(s.Close, p.MAShortWindow, c.minPeriods(p.MAShortWindow))
	s.MALong = rollingMean(s.Close, p.MALongWindow, c.minPeriods(p.MALongWindow))
	if p.MALongerWindow > 0 {
		s.MALonger = rollingMean(s.Close, p.MALongerWindow, c.minPeriods(p.MALongerWindow))
	} else {
		s.MALonger = nanSlice(len(bars))
	}

	s.RSI = c.computeRSI(s.Close)
	s.MACD, s.MACDSignal, s.MACDHist = c.computeMACD(s.Close)
	s.KDK, s.KDD = c.computeKD(s.Close, s.High, s.Low)
	s.BBMid, s.BBUp, s.BBDown = c.computeBollinger(s.Close)
	s.ATR = c.computeATR(s.High, s.Low, s.Close)

	return s, nil
}

// computeRSI uses simple rolling means of positive/negative deltas.
// A zero average loss means undefined RS; the substitute is RSI 100
// (maximal strength), never NaN.
func (c *Calculator) computeRSI(close []float64) []float64 {
	p := c.params
	n := len(close)
	gain := make([]float64, n)
	loss := make([]float64, n)
	gain[0], loss[0] = math.NaN(), math.NaN()
	for i := 1; i < n; i++ {
		delta := close[i] - close[i-1]
		if delta > 0 {
			gain[i], loss[i] = delta, 0
		} else {
			gain[i], loss[i] = 0, -delta
		}
	}

	minP := c.minPeriods(p.RSIPeriod)
	avgGain := rollingMean(gain, p.RSIPeriod, minP)
	avgLoss := rollingMean(loss, p.RSIPeriod, minP)

	rsi := make([]float64, n)
	for i := range rsi {
		switch {
		case math.IsNaN(avgGain[i]) || math.IsNaN(avgLoss[i]):
			rsi[i] = math.NaN()
		case avgLoss[i] == 0:
			rsi[i] = 100
		default:
			rs := avgGain[i] / avgLoss[i]
			rsi[i] = 100 - 100/(1+rs)
		}
	}
	return rsi
}

// computeMACD builds the MACD line, signal line and histogram from
// recursively defined EMAs. EMAs are defined from the first bar in both
// fill modes.
func (c *Calculator) computeMACD(close []float64) (line, signal, hist []float64) {
	p := c.params
	emaFast := ema(close, p.MACDFast)
	emaSlow := ema(close, p.MACDSlow)

	line = make([]float64, len(close))
	for i := range line {
		line[i] = emaFast[i] - emaSlow[i]
	}
	signal = ema(line, p.MACDSignal)
	hist = make([]float64, len(close))
	for i := range hist {
		hist[i] = line[i] - signal[i]
	}
	return line, signal, hist
}

// computeKD builds the stochastic %K/%D pair. A flat window
// (highest == lowest) leaves the raw %K undefined; the NaN propagates and
// is excluded from the smoothing means rather than dividing by zero.
func (c *Calculator) computeKD(close, high, low []float64) (k, d []float64) {
	p := c.params
	lowest := rollingMin(low, p.KDPeriod, c.minPeriods(p.KDPeriod))
	highest := rollingMax(high, p.KDPeriod, c.minPeriods(p.KDPeriod))

	kRaw := make([]float64, len(close))
	for i := range kRaw {
		if math.IsNaN(lowest[i]) || math.IsNaN(highest[i]) || highest[i] == lowest[i] {
			kRaw[i] = math.NaN()
			continue
		}
		kRaw[i] = 100 * (close[i] - lowest[i]) / (highest[i] - lowest[i])
	}

	k = rollingMean(kRaw, p.KDSmoothK, c.minPeriods(p.KDSmoothK))
	d = rollingMean(k, p.KDSmoothD, c.minPeriods(p.KDSmoothD))
	return k, d
}

// computeBollinger builds the mid band plus upper/lower bands at
// BBStdevFactor sample standard deviations.
func (c *Calculator) computeBollinger(close []float64) (mid, up, down []float64) {
	p := c.params
	mid = rollingMean(close, p.BBPeriod, c.minPeriods(p.BBPeriod))
	std := rollingStd(close, p.BBPeriod, c.minPeriods(p.BBPeriod))

	up = make([]float64, len(close))
	down = make([]float64, len(close))
	for i := range close {
		width := p.BBStdevFactor * std[i]
		up[i] = mid[i] + width
		down[i] = mid[i] - width
	}
	return mid, up, down
}

// computeATR builds the average true range. The first bar has no previous
// close, so its true range falls back to high−low.
func (c *Calculator) computeATR(high, low, close []float64) []float64 {
	p := c.params
	tr := make([]float64, len(close))
	for i := range tr {
		hl := high[i] - low[i]
		if i == 0 {
			tr[i] = hl
			continue
		}
		hpc := math.Abs(high[i] - close[i-1])
		lpc := math.Abs(low[i] - close[i-1])
		tr[i] = math.Max(hl, math.Max(hpc, lpc))
	}
	return rollingMean(tr, p.ATRPeriod, c.minPeriods(p.ATRPeriod))
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
