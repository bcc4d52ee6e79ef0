// Package reporting assembles the segment parameter-search report from
// stored backtest results and renders it as Markdown or CSV.
package reporting

import "time"

// Report represents the parameter-search report structure.
type Report struct {
	// Metadata
	GeneratedAt   time.Time
	SegmentCount  int
	SecurityCount int

	// Best threshold pair per segment (sorted by segment)
	SegmentBests []SegmentBestRow

	// Per-pair mean returns (sorted by segment, entry, exit)
	PairResults []PairResultRow

	// Liquid high-score securities (ranking order)
	WatchList []WatchListRow
}

// SegmentBestRow represents the winning threshold pair for one segment.
type SegmentBestRow struct {
	Segment        string
	EntryThreshold float64
	ExitThreshold  float64
	MeanReturnPct  float64
	SampleSize     int
	Skipped        int // securities excluded for lacking history
}

// PairResultRow represents one threshold pair's aggregate outcome.
type PairResultRow struct {
	Segment        string
	EntryThreshold float64
	ExitThreshold  float64
	MeanReturnPct  float64
	SampleSize     int
	TotalTrades    int
	ForcedExits    int
}

// WatchListRow represents one ranked watch-list entry. The performance
// fields describe the security's realized behavior over the evaluation
// window and stay zero when no metrics were computed for it.
type WatchListRow struct {
	Rank       int
	SecurityID string
	Name       string
	Segment    string
	Score      float64
	Signals    []string
	Volume     int64

	WinRate        float64 // share of up days among trading days
	AvgDailyReturn float64 // mean day-over-day return
	MaxDrawdown    float64 // deepest peak-to-trough decline, positive fraction
	TradingDays    int
}
