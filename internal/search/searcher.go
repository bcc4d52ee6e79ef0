package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/q5089877/stock-analysis/internal/domain"
	"github.com/q5089877/stock-analysis/internal/indicator"
	"github.com/q5089877/stock-analysis/internal/observability"
	"github.com/q5089877/stock-analysis/internal/scoring"
	"github.com/q5089877/stock-analysis/internal/simulation"
	"github.com/q5089877/stock-analysis/internal/storage"
)

// ErrEmptySegment is returned when a segment has no eligible securities.
var ErrEmptySegment = errors.New("segment has no eligible securities")

// defaultPoolSize caps how many securities per segment are simulated.
const defaultPoolSize = 100

// defaultConcurrency bounds parallel per-security simulations per pair.
const defaultConcurrency = 8

// PairResult aggregates one threshold pair across the segment sample.
type PairResult struct {
	Pair          Pair
	MeanReturnPct float64 // mean realized return, rounded to 2 decimals
	SampleSize    int     // securities that produced a result
	Skipped       int     // securities excluded for lacking history
}

// Searcher runs the grid search. Per-security simulations within one pair
// run concurrently; the mean is aggregated only after every run of that
// pair finished, so the sample set is always complete and consistent.
type Searcher struct {
	securityStore     storage.SecurityStore
	priceBarStore     storage.PriceBarStore
	fundamentalsStore storage.FundamentalsStore
	resultStore       storage.BacktestResultStore

	grid            GridConfig
	indicatorParams domain.IndicatorParams
	baseSimParams   domain.SimulationParams
	scoringMode     scoring.Mode
	poolSize        int
	concurrency     int
}

// Options contains configuration for creating a Searcher.
// ResultStore may be nil; per-run results are then not persisted.
type Options struct {
	SecurityStore     storage.SecurityStore
	PriceBarStore     storage.PriceBarStore
	FundamentalsStore storage.FundamentalsStore
	ResultStore       storage.BacktestResultStore

	Grid             GridConfig
	IndicatorParams  domain.IndicatorParams
	SimulationParams domain.SimulationParams // thresholds are overwritten per pair
	ScoringMode      scoring.Mode
	PoolSize         int // 0 = default 100
	Concurrency      int // 0 = default 8
}

// NewSearcher creates a grid searcher. An invalid grid fails here, before
// any simulation runs.
func NewSearcher(opts Options) (*Searcher, error) {
	if err := opts.Grid.Validate(); err != nil {
		return nil, err
	}
	if opts.PoolSize <= 0 {
		opts.PoolSize = defaultPoolSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	return &Searcher{
		securityStore:     opts.SecurityStore,
		priceBarStore:     opts.PriceBarStore,
		fundamentalsStore: opts.FundamentalsStore,
		resultStore:       opts.ResultStore,
		grid:              opts.Grid,
		indicatorParams:   opts.IndicatorParams,
		baseSimParams:     opts.SimulationParams,
		scoringMode:       opts.ScoringMode,
		poolSize:          opts.PoolSize,
		concurrency:       opts.Concurrency,
	}, nil
}

// SearchSegment runs the full grid for one segment and returns the best
// pair plus every pair's aggregate. Best is the pair with the strictly
// highest mean return; ties keep the first pair in grid order.
func (s *Searcher) SearchSegment(ctx context.Context, segment string, start, end time.Time) (*domain.SegmentBest, []PairResult, error) {
	searchStart := time.Now()

	pool, err := s.samplePool(ctx, segment)
	if err != nil {
		return nil, nil, err
	}
	if len(pool) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrEmptySegment, segment)
	}

	pairs := s.grid.Pairs()
	results := make([]PairResult, 0, len(pairs))

	best := &domain.SegmentBest{Segment: segment, MeanReturnPct: math.Inf(-1)}
	for _, pair := range pairs {
		pr, err := s.runPair(ctx, segment, pool, pair, start, end)
		if err != nil {
			return nil, nil, err
		}
		results = append(results, pr)

		if pr.MeanReturnPct > best.MeanReturnPct {
			best.EntryThreshold = pair.Entry
			best.ExitThreshold = pair.Exit
			best.MeanReturnPct = pr.MeanReturnPct
			best.SampleSize = pr.SampleSize
			best.Skipped = pr.Skipped
		}
	}

	observability.RecordSearchSegment(segment, len(pairs), time.Since(searchStart).Seconds())
	return best, results, nil
}

// samplePool returns the segment's securities that have nonzero EPS
// history, in ascending ID order, capped at the pool size.
func (s *Searcher) samplePool(ctx context.Context, segment string) ([]string, error) {
	securities, err := s.securityStore.GetBySegment(ctx, segment)
	if err != nil {
		return nil, fmt.Errorf("load segment %s: %w", segment, err)
	}

	withEPS, err := s.fundamentalsStore.ListSecurityIDsWithEPS(ctx)
	if err != nil {
		return nil, fmt.Errorf("list securities with eps: %w", err)
	}
	eligible := make(map[string]struct{}, len(withEPS))
	for _, id := range withEPS {
		eligible[id] = struct{}{}
	}

	var pool []string
	for _, sec := range securities {
		if _, ok := eligible[sec.SecurityID]; ok {
			pool = append(pool, sec.SecurityID)
			if len(pool) == s.poolSize {
				break
			}
		}
	}
	return pool, nil
}

// runPair simulates every pooled security with one threshold pair. Runs are
// concurrent but results land in per-security slots, so the aggregate is
// identical regardless of scheduling.
func (s *Searcher) runPair(ctx context.Context, segment string, pool []string, pair Pair, start, end time.Time) (PairResult, error) {
	simParams := s.baseSimParams
	simParams.EntryThreshold = pair.Entry
	simParams.ExitThreshold = pair.Exit
	if err := simParams.Validate(); err != nil {
		return PairResult{}, err
	}

	runner := simulation.NewRunner(simulation.RunnerOptions{
		PriceBarStore:     s.priceBarStore,
		FundamentalsStore: s.fundamentalsStore,
		ResultStore:       s.resultStore,
	})

	returns := make([]*float64, len(pool))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.concurrency)
	for i, securityID := range pool {
		eg.Go(func() error {
			result, err := runner.Run(egCtx, simulation.RunRequest{
				SecurityID:       securityID,
				Segment:          segment,
				Start:            start,
				End:              end,
				IndicatorParams:  s.indicatorParams,
				SimulationParams: simParams,
				ScoringMode:      s.scoringMode,
			})
			if err != nil {
				// Securities without enough history are skipped, not failed.
				if errors.Is(err, indicator.ErrInsufficientData) {
					observability.RecordSkip("insufficient_history")
					return nil
				}
				observability.DefaultMetrics.SimulationErrors.WithLabelValues("run").Inc()
				return err
			}
			returns[i] = &result.ReturnPct
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return PairResult{}, err
	}

	pr := PairResult{Pair: pair}
	sum := 0.0
	for _, r := range returns {
		if r == nil {
			pr.Skipped++
			continue
		}
		sum += *r
		pr.SampleSize++
	}
	if pr.SampleSize > 0 {
		pr.MeanReturnPct = round2(sum / float64(pr.SampleSize))
	}
	return pr, nil
}

// round2 rounds to two decimal places, matching how means are reported and
// compared.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
