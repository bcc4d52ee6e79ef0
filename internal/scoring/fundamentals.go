package scoring

import (
	"context"
	"fmt"

	"github.com/q5089877/stock-analysis/internal/observability"
	"github.com/q5089877/stock-analysis/internal/storage"
)

// Fundamental scoring windows and growth caps.
const (
	epsQuarters   = 8   // quarters of EPS history required
	revenueMonths = 24  // months of revenue history required
	epsGrowthCap  = 0.5 // EPS growth mapping saturates at +50%
	revGrowthCap  = 0.3 // revenue growth mapping saturates at +30%
)

// FundamentalScorer derives a 0-100 fundamental sub-score from quarterly EPS
// growth and yearly revenue growth. A security without enough history on
// either source scores that component 0; with neither source it scores 0
// overall, which downstream callers read as "no fundamental evidence".
type FundamentalScorer struct {
	store storage.FundamentalsStore
}

// NewFundamentalScorer creates a fundamental scorer over the given store.
func NewFundamentalScorer(store storage.FundamentalsStore) *FundamentalScorer {
	return &FundamentalScorer{store: store}
}

// Score computes the fundamental sub-score for one security.
func (f *FundamentalScorer) Score(ctx context.Context, securityID string) (float64, error) {
	epsScore, err := f.epsGrowthScore(ctx, securityID)
	if err != nil {
		return 0, fmt.Errorf("eps growth score for %s: %w", securityID, err)
	}

	revScore, err := f.revenueGrowthScore(ctx, securityID)
	if err != nil {
		return 0, fmt.Errorf("revenue growth score for %s: %w", securityID, err)
	}

	observability.DefaultMetrics.FundamentalScores.Inc()
	return (epsScore + revScore) / 2, nil
}

// epsGrowthScore compares the average EPS of the latest four quarters to the
// four before them. Growth <= 0 scores 0, growth >= the cap scores 100,
// linear in between. A non-positive prior average makes the growth rate
// meaningless, so it scores 0.
func (f *FundamentalScorer) epsGrowthScore(ctx context.Context, securityID string) (float64, error) {
	rows, err := f.store.LatestEPS(ctx, securityID, epsQuarters)
	if err != nil {
		return 0, err
	}
	if len(rows) < epsQuarters {
		return 0, nil
	}

	// Rows are newest first: 0..3 are the latest four quarters.
	recent, prior := 0.0, 0.0
	for i := 0; i < 4; i++ {
		recent += rows[i].EPS
		prior += rows[i+4].EPS
	}
	recent /= 4
	prior /= 4

	if prior <= 0 {
		return 0, nil
	}
	return growthScore((recent-prior)/prior, epsGrowthCap), nil
}

// revenueGrowthScore compares the latest twelve months of revenue to the
// twelve before them.
func (f *FundamentalScorer) revenueGrowthScore(ctx context.Context, securityID string) (float64, error) {
	rows, err := f.store.LatestRevenue(ctx, securityID, revenueMonths)
	if err != nil {
		return 0, err
	}
	if len(rows) < revenueMonths {
		return 0, nil
	}

	last, prev := 0.0, 0.0
	for i := 0; i < 12; i++ {
		last += rows[i].Revenue
		prev += rows[i+12].Revenue
	}

	if prev <= 0 {
		return 0, nil
	}
	return growthScore((last-prev)/prev, revGrowthCap), nil
}

// growthScore maps a growth rate into [0,100] with saturation at limit.
func growthScore(growth, limit float64) float64 {
	if growth <= 0 {
		return 0
	}
	if growth >= limit {
		return 100
	}
	return growth / limit * 100
}
