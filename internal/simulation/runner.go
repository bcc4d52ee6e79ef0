package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/q5089877/stock-analysis/internal/domain"
	"github.com/q5089877/stock-analysis/internal/idhash"
	"github.com/q5089877/stock-analysis/internal/indicator"
	"github.com/q5089877/stock-analysis/internal/observability"
	"github.com/q5089877/stock-analysis/internal/scoring"
	"github.com/q5089877/stock-analysis/internal/storage"
)

// Runner executes simulations for securities backed by the storage layer.
type Runner struct {
	priceBarStore     storage.PriceBarStore
	fundamentalsStore storage.FundamentalsStore
	resultStore       storage.BacktestResultStore
}

// RunnerOptions contains configuration for creating a Runner.
// ResultStore may be nil; results are then only returned, not persisted.
type RunnerOptions struct {
	PriceBarStore     storage.PriceBarStore
	FundamentalsStore storage.FundamentalsStore
	ResultStore       storage.BacktestResultStore
}

// NewRunner creates a simulation runner.
func NewRunner(opts RunnerOptions) *Runner {
	return &Runner{
		priceBarStore:     opts.PriceBarStore,
		fundamentalsStore: opts.FundamentalsStore,
		resultStore:       opts.ResultStore,
	}
}

// RunRequest identifies one simulation unit of work.
type RunRequest struct {
	SecurityID string
	Segment    string
	Start, End time.Time

	IndicatorParams  domain.IndicatorParams
	SimulationParams domain.SimulationParams

	// ScoringMode selects the technical composite (additive or averaging).
	ScoringMode scoring.Mode
}

// Run executes one simulation for a security.
// Steps:
//  1. Load bars for the date range
//  2. Compute the indicator series (strict window fill)
//  3. Build the per-day technical composite in the requested mode
//  4. Load the fundamental score
//  5. Run the state machine
//  6. Persist the realized result when a result store is configured
//
// A series shorter than the indicator minimum propagates
// indicator.ErrInsufficientData; callers count those as skipped, never as
// zero-return runs.
func (r *Runner) Run(ctx context.Context, req RunRequest) (*domain.BacktestResult, error) {
	bars, err := r.priceBarStore.GetByDateRange(ctx, req.SecurityID, req.Start, req.End)
	if err != nil {
		return nil, fmt.Errorf("load bars for %s: %w", req.SecurityID, err)
	}

	calc, err := indicator.NewCalculator(req.IndicatorParams, indicator.FillStrict)
	if err != nil {
		return nil, err
	}
	series, err := calc.Compute(bars)
	if err != nil {
		return nil, err // propagates indicator.ErrInsufficientData
	}

	scorer := scoring.NewScorer(req.ScoringMode, scoring.DefaultSignalConfig())
	scores := scorer.ScoreSeries(series)

	finScore, err := scoring.NewFundamentalScorer(r.fundamentalsStore).Score(ctx, req.SecurityID)
	if err != nil {
		return nil, err
	}

	sim, err := NewSimulator(req.SimulationParams)
	if err != nil {
		return nil, err
	}
	simStart := time.Now()
	outcome, err := sim.Run(Input{
		SecurityID:       req.SecurityID,
		Bars:             bars,
		TechScores:       scores,
		FundamentalScore: finScore,
	})
	if err != nil {
		return nil, err
	}
	observability.DefaultMetrics.SimulationLatency.Observe(time.Since(simStart).Seconds())
	observability.RecordSimulation(outcome.Trades, outcome.ForcedExits)

	result := &domain.BacktestResult{
		ResultID: idhash.ComputeResultID(
			req.SecurityID, req.Segment,
			req.SimulationParams.EntryThreshold, req.SimulationParams.ExitThreshold,
			req.Start, req.End,
		),
		SecurityID:     req.SecurityID,
		Segment:        req.Segment,
		EntryThreshold: req.SimulationParams.EntryThreshold,
		ExitThreshold:  req.SimulationParams.ExitThreshold,
		ReturnPct:      outcome.ReturnPct,
		Trades:         outcome.Trades,
		ForcedExits:    outcome.ForcedExits,
		CreatedAt:      time.Now().UnixMilli(),
	}

	if r.resultStore != nil {
		// Result IDs are deterministic, so a duplicate means this exact run
		// is already stored.
		if err := r.resultStore.Insert(ctx, result); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return nil, fmt.Errorf("persist result for %s: %w", req.SecurityID, err)
		}
	}

	return result, nil
}
