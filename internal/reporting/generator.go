package reporting

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/q5089877/stock-analysis/internal/domain"
	"github.com/q5089877/stock-analysis/internal/metrics"
	"github.com/q5089877/stock-analysis/internal/screener"
	"github.com/q5089877/stock-analysis/internal/storage"
)

// Generator produces reports from stored backtest results.
type Generator struct {
	resultStore storage.BacktestResultStore
	now         func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(resultStore storage.BacktestResultStore) *Generator {
	return &Generator{
		resultStore: resultStore,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Input carries the pipeline outcomes one report is generated from.
// SegmentBests are the searcher's per-segment winners; stored results carry
// no trace of excluded securities, so the skip counts must travel here.
// Performance maps security IDs to their realized window metrics; securities
// absent from the map render with zero performance columns.
type Input struct {
	Segments     []string
	Watch        []screener.Candidate
	SegmentBests []*domain.SegmentBest
	Performance  map[string]*metrics.PerformanceMetrics
}

// Generate produces a complete parameter-search report. The watch list is
// passed through in screening order.
func (g *Generator) Generate(ctx context.Context, in Input) (*Report, error) {
	var pairRows []PairResultRow
	var bests []SegmentBestRow
	securitySet := make(map[string]struct{})

	skips := make(map[string]int, len(in.SegmentBests))
	for _, b := range in.SegmentBests {
		if b != nil {
			skips[b.Segment] = b.Skipped
		}
	}

	sorted := append([]string(nil), in.Segments...)
	sort.Strings(sorted)

	for _, segment := range sorted {
		results, err := g.resultStore.GetBySegment(ctx, segment)
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			continue
		}
		for _, r := range results {
			securitySet[r.SecurityID] = struct{}{}
		}

		rows := aggregatePairs(segment, results)
		pairRows = append(pairRows, rows...)

		best := bestPair(rows)
		best.Skipped = skips[segment]
		bests = append(bests, best)
	}

	return &Report{
		GeneratedAt:   g.now(),
		SegmentCount:  len(bests),
		SecurityCount: len(securitySet),
		SegmentBests:  bests,
		PairResults:   pairRows,
		WatchList:     buildWatchList(in.Watch, in.Performance),
	}, nil
}

// aggregatePairs groups a segment's results by threshold pair and computes
// the per-pair mean return. Results arrive ordered (entry, exit, security)
// ASC, so groups come out in grid order.
func aggregatePairs(segment string, results []*domain.BacktestResult) []PairResultRow {
	var rows []PairResultRow

	i := 0
	for i < len(results) {
		entry := results[i].EntryThreshold
		exit := results[i].ExitThreshold

		var sum float64
		row := PairResultRow{
			Segment:        segment,
			EntryThreshold: entry,
			ExitThreshold:  exit,
		}
		for i < len(results) && results[i].EntryThreshold == entry && results[i].ExitThreshold == exit {
			sum += results[i].ReturnPct
			row.SampleSize++
			row.TotalTrades += results[i].Trades
			row.ForcedExits += results[i].ForcedExits
			i++
		}
		row.MeanReturnPct = math.Round(sum/float64(row.SampleSize)*100) / 100
		rows = append(rows, row)
	}

	return rows
}

// bestPair picks the pair with the highest mean return. Ties keep the
// earlier pair in grid order.
func bestPair(rows []PairResultRow) SegmentBestRow {
	best := rows[0]
	for _, row := range rows[1:] {
		if row.MeanReturnPct > best.MeanReturnPct {
			best = row
		}
	}
	return SegmentBestRow{
		Segment:        best.Segment,
		EntryThreshold: best.EntryThreshold,
		ExitThreshold:  best.ExitThreshold,
		MeanReturnPct:  best.MeanReturnPct,
		SampleSize:     best.SampleSize,
	}
}

// buildWatchList converts screened candidates into report rows, assigning
// ranks in screening order and attaching window performance where known.
func buildWatchList(watch []screener.Candidate, perf map[string]*metrics.PerformanceMetrics) []WatchListRow {
	rows := make([]WatchListRow, len(watch))
	for i, c := range watch {
		rows[i] = WatchListRow{
			Rank:       i + 1,
			SecurityID: c.SecurityID,
			Name:       c.Name,
			Segment:    c.Segment,
			Score:      c.Score,
			Signals:    append([]string(nil), c.Signals...),
			Volume:     c.Volume,
		}
		if m := perf[c.SecurityID]; m != nil {
			rows[i].WinRate = m.WinRate
			rows[i].AvgDailyReturn = m.AvgDailyReturn
			rows[i].MaxDrawdown = m.MaxDrawdown
			rows[i].TradingDays = m.TradingDays
		}
	}
	return rows
}
