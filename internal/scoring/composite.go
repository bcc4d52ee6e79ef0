package scoring

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/q5089877/stock-analysis/internal/domain"
	"github.com/q5089877/stock-analysis/internal/indicator"
)

// Mode selects how the technical composite is built.
type Mode int

const (
	// ModeAdditive starts at the neutral score 50 and applies the signed
	// point delta of every triggered signal, clamped to [0,100] at the end.
	ModeAdditive Mode = iota

	// ModeAveraging takes the arithmetic mean of the per-indicator
	// sub-scores (RSI, MACD histogram, %K, %D), each already in [0,100].
	ModeAveraging
)

// String returns the mode name used in score IDs and metrics labels.
func (m Mode) String() string {
	switch m {
	case ModeAveraging:
		return "averaging"
	default:
		return "additive"
	}
}

// ParseMode converts a mode name as accepted on the command line.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "additive":
		return ModeAdditive, nil
	case "averaging":
		return ModeAveraging, nil
	}
	return 0, fmt.Errorf("unknown scoring mode %q: must be additive or averaging", s)
}

// MissingPolicy declares how a multi-factor composite treats a factor that
// reported insufficient data. Both behaviors exist among callers, so the
// policy is explicit rather than assumed.
type MissingPolicy int

const (
	// MissingExclude drops the factor from the average (smaller divisor).
	MissingExclude MissingPolicy = iota

	// MissingZero keeps the factor in the average as a zero.
	MissingZero
)

// ErrNoFactors is returned by Combine when nothing can be averaged.
var ErrNoFactors = errors.New("no sub-scores to combine")

// neutralScore is the additive mode's starting point.
const neutralScore = 50.0

// Scorer builds the per-day technical composite from an indicator series.
type Scorer struct {
	mode Mode
	cfg  SignalConfig
}

// NewScorer creates a composite scorer.
func NewScorer(mode Mode, cfg SignalConfig) *Scorer {
	return &Scorer{mode: mode, cfg: cfg}
}

// ScoreAt computes the technical composite for bar index i of the series,
// returning the score and the contributing signal labels. Index 0 has no
// previous snapshot: signals cannot fire there, so the additive mode yields
// the neutral score and the averaging mode only its sub-scores.
func (sc *Scorer) ScoreAt(series *indicator.Series, i int) (float64, []string) {
	cur := series.Snapshot(i)

	var signals []Signal
	if i > 0 {
		signals = Detect(series.Snapshot(i-1), cur, series.MeanATR(), sc.cfg)
	}

	switch sc.mode {
	case ModeAveraging:
		return averageSubScores(cur), Labels(signals)
	default:
		score := neutralScore
		for _, s := range signals {
			score += s.Delta
		}
		return Clamp(score), Labels(signals)
	}
}

// ScoreSeries computes the composite for every bar, aligned with the series
// dates. Bars whose sub-scores are all undefined still yield a defined score
// (0 in averaging mode, neutral in additive mode) per the mapper's NaN rule.
func (sc *Scorer) ScoreSeries(series *indicator.Series) []float64 {
	out := make([]float64, series.Len())
	for i := range out {
		out[i], _ = sc.ScoreAt(series, i)
	}
	return out
}

// TechnicalDefined reports whether the averaging sub-scores have any defined
// input at index i. Callers that must distinguish "score 0" from "no data"
// use this before trusting a zero.
func TechnicalDefined(series *indicator.Series, i int) bool {
	return !math.IsNaN(series.RSI[i]) || !math.IsNaN(series.MACDHist[i]) ||
		!math.IsNaN(series.KDK[i]) || !math.IsNaN(series.KDD[i])
}

// averageSubScores maps RSI, the MACD histogram and the stochastic pair to
// sub-scores and means them.
func averageSubScores(snap domain.IndicatorSnapshot) float64 {
	scores := []float64{
		MapRange(snap.RSI, RSILow, RSIHigh),
		MapSymmetric(snap.MACDHist),
		MapRange(snap.KDK, KDLow, KDHigh),
		MapRange(snap.KDD, KDLow, KDHigh),
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

// Combine averages factor sub-scores into a multi-factor composite. The
// slice holds one entry per configured factor source; a nil entry means that
// source reported insufficient data. Under MissingZero the divisor counts
// every configured source (missing ones contribute 0); under MissingExclude
// only the defined ones. Returns ErrNoFactors when the average is undefined
// (no sources, or nothing defined under MissingExclude).
func Combine(factors []*float64, policy MissingPolicy) (float64, error) {
	sum, defined := 0.0, 0
	for _, f := range factors {
		if f != nil {
			sum += Clamp(*f)
			defined++
		}
	}

	switch policy {
	case MissingZero:
		if len(factors) == 0 {
			return 0, ErrNoFactors
		}
		return sum / float64(len(factors)), nil
	default:
		if defined == 0 {
			return 0, ErrNoFactors
		}
		return sum / float64(defined), nil
	}
}
