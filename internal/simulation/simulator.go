// Package simulation runs the single-position trading state machine over
// daily bars and composite scores.
package simulation

import (
	"errors"
	"math"
	"time"

	"github.com/q5089877/stock-analysis/internal/domain"
	"github.com/q5089877/stock-analysis/internal/lookup"
)

// Simulator errors
var (
	ErrSeriesMismatch = errors.New("bars and scores must have equal length")
	ErrNoBars         = errors.New("no bars to simulate")
)

// Input holds the aligned series one simulation run consumes. TechScores[i]
// is the composite technical score for the trading day Bars[i].
// FundamentalScore is a single per-security value, constant over the window.
type Input struct {
	SecurityID       string
	Bars             []*domain.PriceBar
	TechScores       []float64
	FundamentalScore float64
}

// Result is the realized outcome of one simulation run.
type Result struct {
	SecurityID  string
	ReturnPct   float64 // realized return over initial capital, percent
	Trades      int     // completed round trips
	ForcedExits int     // exits triggered purely by the holding limit
	FinalCash   float64
}

// Simulator is the two-state (flat/holding) trading machine. Decisions are
// made on yesterday's score and executed at today's open, so no bar ever
// trades on information from its own close.
type Simulator struct {
	params domain.SimulationParams
}

// NewSimulator creates a simulator. Parameter validation is fatal here,
// before any run starts.
func NewSimulator(params domain.SimulationParams) (*Simulator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Simulator{params: params}, nil
}

// Run executes the state machine over the input series.
//
// Entry (flat): yesterday's tech score >= entry threshold and the
// fundamental gate passes. The whole cash balance buys at today's open,
// net of the proportional fee.
//
// Exit (holding): yesterday's tech score <= exit threshold, or the
// fundamental gate turns negative, or the position has been held at least
// MaxHoldDays calendar days. Sells at today's open, net of the fee.
//
// Days with a non-positive or NaN open are skipped entirely: state carries
// forward unchanged. A position still open after the last bar is liquidated
// at the last valid open price.
func (s *Simulator) Run(input Input) (*Result, error) {
	if len(input.Bars) == 0 {
		return nil, ErrNoBars
	}
	if len(input.Bars) != len(input.TechScores) {
		return nil, ErrSeriesMismatch
	}

	p := s.params
	cash := p.InitialCapital
	pos := 0.0
	var entryDate time.Time

	res := &Result{SecurityID: input.SecurityID}

	for i := 1; i < len(input.Bars); i++ {
		price := input.Bars[i].Open
		if math.IsNaN(price) || price <= 0 {
			continue
		}

		if pos == 0 {
			if s.entrySignal(input.TechScores[i-1], input.FundamentalScore) {
				pos = cash * (1 - p.FeeRate) / price
				cash = 0
				entryDate = input.Bars[i].Date
			}
			continue
		}

		exit := s.exitSignal(input.TechScores[i-1], input.FundamentalScore)
		forced := heldDays(entryDate, input.Bars[i].Date) >= p.MaxHoldDays
		if exit || forced {
			cash = pos * price * (1 - p.FeeRate)
			pos = 0
			res.Trades++
			if forced && !exit {
				res.ForcedExits++
			}
		}
	}

	if pos > 0 {
		last, err := lookup.LastValidOpen(input.Bars)
		if err != nil {
			return nil, err
		}
		cash = pos * last.Open * (1 - p.FeeRate)
		res.Trades++
	}

	res.FinalCash = cash
	res.ReturnPct = (cash - p.InitialCapital) / p.InitialCapital * 100
	return res, nil
}

// entrySignal reports whether yesterday's scores allow opening a position.
// The fundamental gate passes when no fundamental evidence exists (score
// <= 0) or the evidence is strong (>= the entry threshold).
func (s *Simulator) entrySignal(techScore, finScore float64) bool {
	// An undefined score is no evidence to trade on.
	if math.IsNaN(techScore) || techScore < s.params.EntryThreshold {
		return false
	}
	return finScore <= 0 || finScore >= s.params.FinEntryThreshold
}

// exitSignal reports whether yesterday's scores demand closing a position.
// Weak but present fundamental evidence (0 < score <= exit threshold)
// forces an exit regardless of the technical score.
func (s *Simulator) exitSignal(techScore, finScore float64) bool {
	if techScore <= s.params.ExitThreshold {
		return true
	}
	return finScore > 0 && finScore <= s.params.FinExitThreshold
}

// heldDays counts whole calendar days between the entry day and today.
func heldDays(entry, today time.Time) int {
	return int(today.Sub(entry).Hours() / 24)
}
