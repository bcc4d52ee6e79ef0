package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/q5089877/stock-analysis/internal/domain"
	"github.com/q5089877/stock-analysis/internal/scoring"
	"github.com/q5089877/stock-analysis/internal/search"
	"github.com/q5089877/stock-analysis/internal/storage/memory"
)

type testStores struct {
	securities   *memory.SecurityStore
	bars         *memory.PriceBarStore
	fundamentals *memory.FundamentalsStore
	scores       *memory.ScoreStore
	results      *memory.BacktestResultStore
}

func newTestStores() *testStores {
	return &testStores{
		securities:   memory.NewSecurityStore(),
		bars:         memory.NewPriceBarStore(),
		fundamentals: memory.NewFundamentalsStore(),
		scores:       memory.NewScoreStore(),
		results:      memory.NewBacktestResultStore(),
	}
}

// seedSecurity registers one security with n rising daily bars and growing
// EPS so the search pool accepts it.
func (s *testStores) seedSecurity(t *testing.T, id, segment string, n int) {
	t.Helper()
	ctx := context.Background()

	err := s.securities.Insert(ctx, &domain.Security{
		SecurityID: id,
		Name:       "name-" + id,
		Market:     domain.MarketTWSE,
		Segment:    segment,
	})
	if err != nil {
		t.Fatalf("Insert security %s failed: %v", id, err)
	}

	bars := make([]*domain.PriceBar, n)
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		c := 100.0 + float64(i)
		bars[i] = &domain.PriceBar{
			SecurityID: id,
			Date:       date.AddDate(0, 0, i),
			Open:       c - 0.5,
			High:       c + 1,
			Low:        c - 1,
			Close:      c,
			Volume:     500000,
		}
	}
	if err := s.bars.InsertBulk(ctx, bars); err != nil {
		t.Fatalf("InsertBulk bars for %s failed: %v", id, err)
	}

	err = s.fundamentals.InsertEPS(ctx, []*domain.QuarterlyEPS{
		{SecurityID: id, Year: 2023, Quarter: 3, EPS: 2.0},
		{SecurityID: id, Year: 2023, Quarter: 4, EPS: 2.5},
	})
	if err != nil {
		t.Fatalf("InsertEPS for %s failed: %v", id, err)
	}
}

func (s *testStores) options() Options {
	return Options{
		SecurityStore:     s.securities,
		PriceBarStore:     s.bars,
		FundamentalsStore: s.fundamentals,
		ScoreStore:        s.scores,
		ResultStore:       s.results,
		Start:             time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:               time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		Grid:              search.GridConfig{EntryMin: 60, EntryMax: 60, ExitMin: 40, Step: 20},
		ScoringMode:       scoring.ModeAdditive,
	}
}

func TestRun_FullPipeline(t *testing.T) {
	stores := newTestStores()
	stores.seedSecurity(t, "2330", "semiconductor", 90)
	stores.seedSecurity(t, "2454", "semiconductor", 90)

	result, err := New(stores.options()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", result.Errors)
	}
	if result.SecuritiesScored != 2 {
		t.Errorf("expected 2 securities scored, got %d", result.SecuritiesScored)
	}
	if result.ScoresStored != 180 {
		t.Errorf("expected 180 score records, got %d", result.ScoresStored)
	}
	if result.SegmentsProcessed != 1 || len(result.SegmentBests) != 1 {
		t.Fatalf("expected 1 segment processed, got %d", result.SegmentsProcessed)
	}

	best := result.SegmentBests[0]
	if best.Segment != "semiconductor" {
		t.Errorf("unexpected best segment: %s", best.Segment)
	}
	if best.SampleSize != 2 || best.Skipped != 0 {
		t.Errorf("unexpected sample: %+v", best)
	}

	// Every security x pair combination persisted a result.
	results, err := stores.results.GetBySegment(context.Background(), "semiconductor")
	if err != nil {
		t.Fatalf("GetBySegment failed: %v", err)
	}
	if len(results) != 2 { // 2 securities x 1 pair
		t.Errorf("expected 2 stored results, got %d", len(results))
	}

	// Rising series with high volume ends up on the watch list.
	if len(result.WatchList) != 2 {
		t.Errorf("expected 2 watch-list entries, got %d", len(result.WatchList))
	}

	if result.Report == nil || len(result.Report.SegmentBests) != 1 {
		t.Fatalf("expected report with 1 segment best, got %+v", result.Report)
	}
	if len(result.Report.PairResults) != 1 {
		t.Errorf("expected 1 pair row in report, got %d", len(result.Report.PairResults))
	}

	// Watch-list rows carry each security's realized window performance.
	// A monotonically rising series wins every day and never draws down.
	if len(result.Report.WatchList) != 2 {
		t.Fatalf("expected 2 watch rows in report, got %d", len(result.Report.WatchList))
	}
	for _, row := range result.Report.WatchList {
		if row.WinRate != 1.0 || row.MaxDrawdown != 0 || row.TradingDays != 89 {
			t.Errorf("unexpected performance for %s: %+v", row.SecurityID, row)
		}
	}
}

// seedFullEPS completes the fixture's two quarters to a full eight, with the
// prior year at half the level. EPS growth saturates its cap, so the
// fundamental sub-score lands at exactly 50 (EPS 100, revenue 0).
func (s *testStores) seedFullEPS(t *testing.T, id string) {
	t.Helper()
	rows := []*domain.QuarterlyEPS{
		{SecurityID: id, Year: 2022, Quarter: 1, EPS: 1.0},
		{SecurityID: id, Year: 2022, Quarter: 2, EPS: 1.0},
		{SecurityID: id, Year: 2022, Quarter: 3, EPS: 1.0},
		{SecurityID: id, Year: 2022, Quarter: 4, EPS: 1.0},
		{SecurityID: id, Year: 2023, Quarter: 1, EPS: 2.0},
		{SecurityID: id, Year: 2023, Quarter: 2, EPS: 2.0},
	}
	if err := s.fundamentals.InsertEPS(context.Background(), rows); err != nil {
		t.Fatalf("InsertEPS for %s failed: %v", id, err)
	}
}

func TestRun_FundamentalsAveragedIntoStoredScores(t *testing.T) {
	stores := newTestStores()
	// Identical bar histories, so the technical series match day for day.
	// 1101 carries a full filing history (fundamental sub-score 50), 2330
	// keeps the fixture's two quarters, which is too little to score.
	stores.seedSecurity(t, "1101", "cement", 90)
	stores.seedSecurity(t, "2330", "semiconductor", 90)
	stores.seedFullEPS(t, "1101")

	if _, err := New(stores.options()).Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	ctx := context.Background()
	withFund, err := stores.scores.GetBySecurityID(ctx, "1101")
	if err != nil {
		t.Fatalf("GetBySecurityID 1101 failed: %v", err)
	}
	techOnly, err := stores.scores.GetBySecurityID(ctx, "2330")
	if err != nil {
		t.Fatalf("GetBySecurityID 2330 failed: %v", err)
	}
	if len(withFund) == 0 || len(withFund) != len(techOnly) {
		t.Fatalf("expected matching non-empty series, got %d vs %d", len(withFund), len(techOnly))
	}

	for i := range withFund {
		want := (techOnly[i].Score + 50) / 2
		if got := withFund[i].Score; got != want {
			t.Fatalf("day %d: expected two-factor mean %.2f, got %.2f (technical %.2f)",
				i, want, got, techOnly[i].Score)
		}
	}
}

func TestRun_NoSegments(t *testing.T) {
	stores := newTestStores()

	result, err := New(stores.options()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.SegmentsProcessed != 0 || result.SecuritiesScored != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestRun_SkipScoring(t *testing.T) {
	stores := newTestStores()
	stores.seedSecurity(t, "2330", "semiconductor", 90)

	opts := stores.options()
	opts.SkipScoring = true

	result, err := New(opts).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.ScoresStored != 0 {
		t.Errorf("expected no scores stored, got %d", result.ScoresStored)
	}
	// The search phase still runs.
	if result.SegmentsProcessed != 1 {
		t.Errorf("expected 1 segment processed, got %d", result.SegmentsProcessed)
	}
	// Nothing scored means nothing to screen.
	if len(result.WatchList) != 0 {
		t.Errorf("expected empty watch list, got %d entries", len(result.WatchList))
	}
}

func TestRun_SegmentFilter(t *testing.T) {
	stores := newTestStores()
	stores.seedSecurity(t, "2330", "semiconductor", 90)
	stores.seedSecurity(t, "2603", "shipping", 90)

	opts := stores.options()
	opts.Segments = []string{"shipping"}

	result, err := New(opts).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.SecuritiesScored != 1 {
		t.Errorf("expected 1 security scored, got %d", result.SecuritiesScored)
	}
	if len(result.SegmentBests) != 1 || result.SegmentBests[0].Segment != "shipping" {
		t.Errorf("unexpected bests: %+v", result.SegmentBests)
	}
}

func TestRun_RerunSkipsDuplicateScores(t *testing.T) {
	stores := newTestStores()
	stores.seedSecurity(t, "2330", "semiconductor", 90)

	orch := New(stores.options())
	if _, err := orch.Run(context.Background()); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}

	// Second run finds every score already stored and skips without error.
	// Backtest result inserts are idempotent by deterministic ID as well.
	result, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("expected no errors on rerun, got %v", result.Errors)
	}
	if result.ScoresStored != 0 {
		t.Errorf("expected no new scores on rerun, got %d", result.ScoresStored)
	}
}
