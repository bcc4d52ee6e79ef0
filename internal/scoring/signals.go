package scoring

import (
	"math"

	"github.com/q5089877/stock-analysis/internal/domain"
)

// Signal labels, also used verbatim in score records and reports.
const (
	LabelBullishAlignment = "bullish alignment"
	LabelGoldenCross      = "golden cross"
	LabelDeathCross       = "death cross"
	LabelMACDPositive     = "macd positive"
	LabelMACDCross        = "macd golden cross"
	LabelRSIOversold      = "rsi oversold"
	LabelRSIOverbought    = "rsi overbought"
	LabelHighVolatility   = "high volatility"
	LabelBreakoutUp       = "band breakout up"
	LabelBreakoutDown     = "band breakout down"
)

// Signal is one detected condition: a label for explainability and a signed
// point delta for the additive composite.
type Signal struct {
	Label string
	Delta float64
}

// SignalConfig holds the detection thresholds and the point delta per signal
// family. Each family is independently configurable.
type SignalConfig struct {
	RSIOversold   float64
	RSIOverbought float64

	DeltaBullishAlignment float64
	DeltaGoldenCross      float64
	DeltaDeathCross       float64
	DeltaMACDPositive     float64
	DeltaMACDCross        float64
	DeltaRSIOversold      float64
	DeltaRSIOverbought    float64
	DeltaHighVolatility   float64
	DeltaBreakout         float64
}

// DefaultSignalConfig returns the swing-model point weights.
func DefaultSignalConfig() SignalConfig {
	return SignalConfig{
		RSIOversold:           30,
		RSIOverbought:         70,
		DeltaBullishAlignment: 25,
		DeltaGoldenCross:      20,
		DeltaDeathCross:       -30,
		DeltaMACDPositive:     15,
		DeltaMACDCross:        15,
		DeltaRSIOversold:      10,
		DeltaRSIOverbought:    -10,
		DeltaHighVolatility:   -10,
		DeltaBreakout:         10,
	}
}

// Detect compares the previous and current snapshots of one security and
// returns every triggered signal. It is purely functional: no state beyond
// the two snapshots and the trailing mean ATR baseline.
//
// Golden and death crosses are mutually exclusive by construction: one needs
// prev short below long and current short above, the other the inverse.
func Detect(prev, cur domain.IndicatorSnapshot, meanATR float64, cfg SignalConfig) []Signal {
	var out []Signal

	if aligned(cur) {
		out = append(out, Signal{LabelBullishAlignment, cfg.DeltaBullishAlignment})
	}
	if crossedAbove(prev.MAShort, prev.MALong, cur.MAShort, cur.MALong) {
		out = append(out, Signal{LabelGoldenCross, cfg.DeltaGoldenCross})
	}
	if crossedAbove(prev.MALong, prev.MAShort, cur.MALong, cur.MAShort) {
		out = append(out, Signal{LabelDeathCross, cfg.DeltaDeathCross})
	}

	if cur.MACDHist > 0 {
		out = append(out, Signal{LabelMACDPositive, cfg.DeltaMACDPositive})
	}
	if crossedAbove(prev.MACD, prev.MACDSignal, cur.MACD, cur.MACDSignal) {
		out = append(out, Signal{LabelMACDCross, cfg.DeltaMACDCross})
	}

	if cur.RSI < cfg.RSIOversold {
		out = append(out, Signal{LabelRSIOversold, cfg.DeltaRSIOversold})
	} else if cur.RSI > cfg.RSIOverbought {
		out = append(out, Signal{LabelRSIOverbought, cfg.DeltaRSIOverbought})
	}

	if !math.IsNaN(meanATR) && cur.ATR > meanATR {
		out = append(out, Signal{LabelHighVolatility, cfg.DeltaHighVolatility})
	}

	if cur.Close > cur.BBUp {
		out = append(out, Signal{LabelBreakoutUp, cfg.DeltaBreakout})
	} else if cur.Close < cur.BBDown {
		out = append(out, Signal{LabelBreakoutDown, cfg.DeltaBreakout})
	}

	return out
}

// aligned reports a bullish moving-average stack. The third average only
// participates when configured (non-NaN).
func aligned(cur domain.IndicatorSnapshot) bool {
	if cur.MAShort <= cur.MALong {
		return false
	}
	if !math.IsNaN(cur.MALonger) && cur.MALong <= cur.MALonger {
		return false
	}
	// NaN short/long averages never satisfy the first comparison above for
	// the bullish side, so nothing more to guard.
	return !math.IsNaN(cur.MAShort) && !math.IsNaN(cur.MALong)
}

// crossedAbove reports whether a moved from below b to above b between the
// two snapshots. Any NaN operand means no cross.
func crossedAbove(prevA, prevB, curA, curB float64) bool {
	return prevA < prevB && curA > curB
}

// Labels extracts the label strings in detection order.
func Labels(signals []Signal) []string {
	if len(signals) == 0 {
		return nil
	}
	out := make([]string, len(signals))
	for i, s := range signals {
		out[i] = s.Label
	}
	return out
}
