// Package orchestrator provides E2E pipeline orchestration.
// It coordinates: scoring → grid search → screening → reporting
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/q5089877/stock-analysis/internal/domain"
	"github.com/q5089877/stock-analysis/internal/idhash"
	"github.com/q5089877/stock-analysis/internal/indicator"
	"github.com/q5089877/stock-analysis/internal/metrics"
	"github.com/q5089877/stock-analysis/internal/observability"
	"github.com/q5089877/stock-analysis/internal/reporting"
	"github.com/q5089877/stock-analysis/internal/screener"
	"github.com/q5089877/stock-analysis/internal/scoring"
	"github.com/q5089877/stock-analysis/internal/search"
	"github.com/q5089877/stock-analysis/internal/storage"
)

// Orchestrator coordinates the full pipeline execution.
// Flow: daily scoring → per-segment grid search → watch-list screening
type Orchestrator struct {
	// Stores
	securityStore     storage.SecurityStore
	priceBarStore     storage.PriceBarStore
	fundamentalsStore storage.FundamentalsStore
	scoreStore        storage.ScoreStore
	resultStore       storage.BacktestResultStore

	// Configs
	segments        []string
	start, end      time.Time
	indicatorParams domain.IndicatorParams
	simParams       domain.SimulationParams
	grid            search.GridConfig
	scoringMode     scoring.Mode

	// Options
	skipScoring bool
	log         zerolog.Logger
}

// Options for creating Orchestrator.
type Options struct {
	// Required stores
	SecurityStore     storage.SecurityStore
	PriceBarStore     storage.PriceBarStore
	FundamentalsStore storage.FundamentalsStore
	ScoreStore        storage.ScoreStore
	ResultStore       storage.BacktestResultStore

	// Segments to process; empty means every stored segment
	Segments []string

	// Simulation window
	Start time.Time
	End   time.Time

	// Parameter sets; zero values take the package defaults
	IndicatorParams  domain.IndicatorParams
	SimulationParams domain.SimulationParams
	Grid             search.GridConfig
	ScoringMode      scoring.Mode

	// Options
	SkipScoring bool // Skip if score records already exist
	Logger      *zerolog.Logger
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	if opts.IndicatorParams == (domain.IndicatorParams{}) {
		opts.IndicatorParams = domain.DefaultIndicatorParams()
	}
	if opts.SimulationParams == (domain.SimulationParams{}) {
		opts.SimulationParams = domain.DefaultSimulationParams()
	}
	if opts.Grid == (search.GridConfig{}) {
		opts.Grid = search.DefaultGridConfig()
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Orchestrator{
		securityStore:     opts.SecurityStore,
		priceBarStore:     opts.PriceBarStore,
		fundamentalsStore: opts.FundamentalsStore,
		scoreStore:        opts.ScoreStore,
		resultStore:       opts.ResultStore,
		segments:          opts.Segments,
		start:             opts.Start,
		end:               opts.End,
		indicatorParams:   opts.IndicatorParams,
		simParams:         opts.SimulationParams,
		grid:              opts.Grid,
		scoringMode:       opts.ScoringMode,
		skipScoring:       opts.SkipScoring,
		log:               logger,
	}
}

// RunResult contains results from orchestrator execution.
type RunResult struct {
	SegmentsProcessed int
	SecuritiesScored  int
	ScoresStored      int
	SegmentBests      []*domain.SegmentBest
	WatchList         []screener.Candidate
	Report            *reporting.Report
	Errors            []string
}

// Run executes the full pipeline.
// Phases:
//  1. Resolve segments
//  2. Score every security (persist daily score records)
//  3. Grid-search each segment (persist backtest results)
//  4. Screen the watch list as of the window end
//  5. Generate the report
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}

	// Phase 1: Resolve segments
	segments, err := o.resolveSegments(ctx)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (resolve segments) failed: %w", err)
	}
	o.log.Info().Int("segments", len(segments)).Msg("phase 1: segments resolved")

	if len(segments) == 0 {
		return result, nil
	}

	// Phase 2: Scoring
	if !o.skipScoring {
		scored, stored, scoreErrors := o.runScoring(ctx, segments)
		result.SecuritiesScored = scored
		result.ScoresStored = stored
		result.Errors = append(result.Errors, scoreErrors...)
		o.log.Info().
			Int("securities", scored).
			Int("records", stored).
			Int("errors", len(scoreErrors)).
			Msg("phase 2: scoring complete")
	} else {
		o.log.Info().Msg("phase 2: scoring skipped")
	}

	// Phase 3: Grid search
	bests, searchErrors := o.runSearch(ctx, segments)
	result.SegmentBests = bests
	result.SegmentsProcessed = len(bests)
	result.Errors = append(result.Errors, searchErrors...)
	o.log.Info().
		Int("segments", len(bests)).
		Int("errors", len(searchErrors)).
		Msg("phase 3: grid search complete")

	// Phase 4: Screening
	watch, err := o.runScreening(ctx, segments)
	if err != nil {
		return nil, fmt.Errorf("phase 4 (screening) failed: %w", err)
	}
	result.WatchList = watch
	o.log.Info().Int("watch_list", len(watch)).Msg("phase 4: screening complete")

	// Phase 5: Reporting
	perf, perfErrors := o.trackPerformance(ctx, watch)
	result.Errors = append(result.Errors, perfErrors...)

	report, err := reporting.NewGenerator(o.resultStore).Generate(ctx, reporting.Input{
		Segments:     segments,
		Watch:        watch,
		SegmentBests: bests,
		Performance:  perf,
	})
	if err != nil {
		return nil, fmt.Errorf("phase 5 (reporting) failed: %w", err)
	}
	result.Report = report
	observability.DefaultMetrics.LastSuccessfulRun.SetToCurrentTime()
	o.log.Info().
		Int("segments", result.SegmentsProcessed).
		Int("scores", result.ScoresStored).
		Int("watch_list", len(watch)).
		Msg("pipeline completed")

	return result, nil
}

// trackPerformance computes each watch-list security's realized window
// performance. A failed computation drops the security's metrics from the
// report but never the report itself.
func (o *Orchestrator) trackPerformance(ctx context.Context, watch []screener.Candidate) (map[string]*metrics.PerformanceMetrics, []string) {
	tracker := metrics.NewPerformanceTracker(o.priceBarStore)
	perf := make(map[string]*metrics.PerformanceMetrics, len(watch))
	var errs []string
	for _, c := range watch {
		m, err := tracker.Compute(ctx, c.SecurityID, o.start, o.end)
		if err != nil {
			errs = append(errs, fmt.Sprintf("performance for %s: %v", c.SecurityID, err))
			continue
		}
		perf[c.SecurityID] = m
	}
	return perf, errs
}

// resolveSegments returns the configured segments, or every stored segment
// when none were configured.
func (o *Orchestrator) resolveSegments(ctx context.Context) ([]string, error) {
	if len(o.segments) > 0 {
		return o.segments, nil
	}
	return o.securityStore.ListSegments(ctx)
}

// runScoring computes and persists the daily score series for every
// security in the given segments. Securities with too little history and
// already-scored securities are skipped, not errors.
func (o *Orchestrator) runScoring(ctx context.Context, segments []string) (scored, stored int, errs []string) {
	calc, err := indicator.NewCalculator(o.indicatorParams, indicator.FillStrict)
	if err != nil {
		return 0, 0, []string{fmt.Sprintf("build calculator: %v", err)}
	}
	scorer := scoring.NewScorer(o.scoringMode, scoring.DefaultSignalConfig())
	fund := scoring.NewFundamentalScorer(o.fundamentalsStore)

	seen := make(map[string]struct{})
	for _, segment := range segments {
		securities, err := o.securityStore.GetBySegment(ctx, segment)
		if err != nil {
			errs = append(errs, fmt.Sprintf("load segment %s: %v", segment, err))
			continue
		}

		for _, sec := range securities {
			if _, ok := seen[sec.SecurityID]; ok {
				continue
			}
			seen[sec.SecurityID] = struct{}{}

			n, err := o.scoreSecurity(ctx, calc, scorer, fund, sec.SecurityID)
			if err != nil {
				if errors.Is(err, indicator.ErrInsufficientData) {
					continue
				}
				if errors.Is(err, storage.ErrDuplicateKey) {
					continue
				}
				observability.DefaultMetrics.ScoringErrors.WithLabelValues("score_security").Inc()
				errs = append(errs, fmt.Sprintf("score %s: %v", sec.SecurityID, err))
				continue
			}
			scored++
			stored += n
		}
	}
	return scored, stored, errs
}

// scoreSecurity computes one security's daily multi-factor scores over the
// window and persists them, returning the number of records written. The
// technical composite varies per day; the fundamental sub-score is one value
// per security, averaged in under the exclude-missing policy so securities
// without filings keep a pure technical series.
func (o *Orchestrator) scoreSecurity(ctx context.Context, calc *indicator.Calculator, scorer *scoring.Scorer, fund *scoring.FundamentalScorer, securityID string) (int, error) {
	scoreStart := time.Now()
	defer func() {
		observability.DefaultMetrics.ScoringLatency.Observe(time.Since(scoreStart).Seconds())
	}()

	bars, err := o.priceBarStore.GetByDateRange(ctx, securityID, o.start, o.end)
	if err != nil {
		return 0, err
	}

	series, err := calc.Compute(bars)
	if err != nil {
		return 0, err
	}

	finScore, err := fund.Score(ctx, securityID)
	if err != nil {
		return 0, err
	}

	now := time.Now().UnixMilli()
	records := make([]*domain.ScoreRecord, series.Len())
	for i := 0; i < series.Len(); i++ {
		tech, labels := scorer.ScoreAt(series, i)

		subs := domain.SubScores{Technical: &tech}
		if o.scoringMode == scoring.ModeAveraging && !scoring.TechnicalDefined(series, i) {
			subs.Technical = nil
		}
		if finScore > 0 {
			subs.Fundamental = &finScore
		}

		score, err := scoring.Combine(subs.Factors(), scoring.MissingExclude)
		if err != nil {
			// No factor defined for the day; keep the technical value so
			// the stored series stays aligned with the bars.
			score = tech
		}

		records[i] = &domain.ScoreRecord{
			ScoreID:    idhash.ComputeScoreID(securityID, bars[i].Date, o.scoringMode.String()),
			SecurityID: securityID,
			Date:       bars[i].Date,
			Score:      score,
			Signals:    labels,
			CreatedAt:  now,
		}
		observability.RecordScore(o.scoringMode.String())
		for _, label := range labels {
			observability.RecordSignal(label)
		}
	}

	if err := o.scoreStore.InsertBulk(ctx, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// runSearch grid-searches every segment, persisting results through the
// searcher's result store.
func (o *Orchestrator) runSearch(ctx context.Context, segments []string) ([]*domain.SegmentBest, []string) {
	searcher, err := search.NewSearcher(search.Options{
		SecurityStore:     o.securityStore,
		PriceBarStore:     o.priceBarStore,
		FundamentalsStore: o.fundamentalsStore,
		ResultStore:       o.resultStore,
		Grid:              o.grid,
		IndicatorParams:   o.indicatorParams,
		SimulationParams:  o.simParams,
		ScoringMode:       o.scoringMode,
	})
	if err != nil {
		return nil, []string{fmt.Sprintf("build searcher: %v", err)}
	}

	var bests []*domain.SegmentBest
	var errs []string

	for _, segment := range segments {
		best, _, err := searcher.SearchSegment(ctx, segment, o.start, o.end)
		if err != nil {
			// Segments without eligible securities are expected
			if errors.Is(err, search.ErrEmptySegment) {
				continue
			}
			errs = append(errs, fmt.Sprintf("search %s: %v", segment, err))
			continue
		}
		bests = append(bests, best)
	}

	return bests, errs
}

// runScreening builds the watch list across all segments as of the window
// end.
func (o *Orchestrator) runScreening(ctx context.Context, segments []string) ([]screener.Candidate, error) {
	scr := screener.New(screener.Options{
		SecurityStore: o.securityStore,
		PriceBarStore: o.priceBarStore,
		ScoreStore:    o.scoreStore,
	})

	var ids []string
	seen := make(map[string]struct{})
	for _, segment := range segments {
		securities, err := o.securityStore.GetBySegment(ctx, segment)
		if err != nil {
			return nil, err
		}
		for _, sec := range securities {
			if _, ok := seen[sec.SecurityID]; ok {
				continue
			}
			seen[sec.SecurityID] = struct{}{}
			ids = append(ids, sec.SecurityID)
		}
	}

	watch, err := scr.Screen(ctx, ids, o.end)
	if err != nil {
		return nil, err
	}
	observability.UpdateWatchList(len(ids), len(watch))
	return watch, nil
}
