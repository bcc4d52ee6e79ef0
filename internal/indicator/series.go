package indicator

import (
	"time"

	"github.com/q5089877/stock-analysis/internal/domain"
)

// Series holds date-aligned derived series for one security. Every slice has
// the same length as the input bars; undefined entries are NaN.
type Series struct {
	SecurityID string
	Dates      []time.Time
	Open       []float64
	High       []float64
	Low        []float64
	Close      []float64

	MAShort  []float64
	MALong   []float64
	MALonger []float64

	RSI []float64

	MACD       []float64
	MACDSignal []float64
	MACDHist   []float64

	KDK []float64
	KDD []float64

	BBMid  []float64
	BBUp   []float64
	BBDown []float64

	ATR []float64
}

func newSeries(bars []*domain.PriceBar) *Series {
	s := &Series{
		Dates: make([]time.Time, len(bars)),
		Open:  make([]float64, len(bars)),
		High:  make([]float64, len(bars)),
		Low:   make([]float64, len(bars)),
		Close: make([]float64, len(bars)),
	}
	if len(bars) > 0 {
		s.SecurityID = bars[0].SecurityID
	}
	for i, b := range bars {
		s.Dates[i] = b.Date
		s.Open[i] = b.Open
		s.High[i] = b.High
		s.Low[i] = b.Low
		s.Close[i] = b.Close
	}
	return s
}

// Len returns the number of bars in the series.
func (s *Series) Len() int {
	return len(s.Dates)
}

// Snapshot extracts the indicator values at index i.
func (s *Series) Snapshot(i int) domain.IndicatorSnapshot {
	return domain.IndicatorSnapshot{
		SecurityID: s.SecurityID,
		Date:       s.Dates[i],
		Close:      s.Close[i],
		MAShort:    s.MAShort[i],
		MALong:     s.MALong[i],
		MALonger:   s.MALonger[i],
		RSI:        s.RSI[i],
		MACD:       s.MACD[i],
		MACDSignal: s.MACDSignal[i],
		MACDHist:   s.MACDHist[i],
		KDK:        s.KDK[i],
		KDD:        s.KDD[i],
		BBMid:      s.BBMid[i],
		BBUp:       s.BBUp[i],
		BBDown:     s.BBDown[i],
		ATR:        s.ATR[i],
	}
}

// MeanATR returns the mean of the defined ATR values, used as the trailing
// volatility baseline over the evaluation window.
func (s *Series) MeanATR() float64 {
	return nanMean(s.ATR)
}
